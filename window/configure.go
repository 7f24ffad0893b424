package window

import "github.com/bnema/wayloop/dpi"

// Configure is one configure sequence sent by the compositor for a toplevel.
//
// A zero dimension in NewSize or SuggestedBounds means the compositor left
// that dimension to the client.
type Configure struct {
	NewSize         dpi.LogicalSize
	SuggestedBounds dpi.LogicalSize
	DecorationMode  DecorationMode
	State           State
	Capabilities    WMCapabilities
}

// HasSize reports whether both dimensions were suggested.
func (c Configure) HasSize() bool {
	return c.NewSize.Width != 0 && c.NewSize.Height != 0
}

func (c Configure) IsMaximized() bool  { return c.State.Has(StateMaximized) }
func (c Configure) IsFullscreen() bool { return c.State.Has(StateFullscreen) }
func (c Configure) IsTiled() bool      { return c.State.Any(StateTiled) }
func (c Configure) IsResizing() bool   { return c.State.Has(StateResizing) }
func (c Configure) IsActivated() bool  { return c.State.Has(StateActivated) }
func (c Configure) IsSuspended() bool  { return c.State.Has(StateSuspended) }
