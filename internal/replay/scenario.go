// Package replay runs scripted compositor sessions through the event loop
// on the headless backend and records the callbacks they produce.
package replay

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bnema/wayloop/seat"
	"github.com/bnema/wayloop/window"
)

// Scenario is a scripted session. Each step is followed by one loop
// iteration.
type Scenario struct {
	Name string `yaml:"name"`
	// Decorations lets the backend draw client-side frames
	Decorations bool `yaml:"decorations"`
	// Lock configures the outputs that get lock surfaces; nil disables
	// session locking
	Lock  *LockSetup `yaml:"lock,omitempty"`
	Steps []Step     `yaml:"steps"`
}

// LockSetup describes the outputs of a lockable session.
type LockSetup struct {
	Width   uint32 `yaml:"width"`
	Height  uint32 `yaml:"height"`
	Outputs int    `yaml:"outputs"`
}

// Step holds exactly one action. Windows are referenced by the order in
// which the application saw them created, starting at 0.
type Step struct {
	Open       *OpenStep       `yaml:"open,omitempty"`
	Configure  *ConfigureStep  `yaml:"configure,omitempty"`
	Scale      *ScaleStep      `yaml:"scale,omitempty"`
	Redraw     *int            `yaml:"redraw,omitempty"`
	Frame      *int            `yaml:"frame,omitempty"`
	Close      *int            `yaml:"close,omitempty"`
	Event      *string         `yaml:"event,omitempty"`
	Capability *CapabilityStep `yaml:"capability,omitempty"`
	Pointer    *PointerStep    `yaml:"pointer,omitempty"`
	Focus      *FocusStep      `yaml:"focus,omitempty"`
	Key        *KeyStep        `yaml:"key,omitempty"`
	Touch      *TouchStep      `yaml:"touch,omitempty"`
	Lock       bool            `yaml:"lock,omitempty"`
	Unlock     bool            `yaml:"unlock,omitempty"`
	Stop       bool            `yaml:"stop,omitempty"`
}

type OpenStep struct {
	Title     string `yaml:"title"`
	Width     uint32 `yaml:"width"`
	Height    uint32 `yaml:"height"`
	MinWidth  uint32 `yaml:"min_width"`
	MinHeight uint32 `yaml:"min_height"`
	// Decorations defaults to true
	Decorations *bool `yaml:"decorations"`
}

type ConfigureStep struct {
	Window int      `yaml:"window"`
	Width  uint32   `yaml:"width"`
	Height uint32   `yaml:"height"`
	States []string `yaml:"states"`
	// ClientSide asks the application to draw its own frame
	ClientSide bool `yaml:"client_side"`
}

type ScaleStep struct {
	Window int   `yaml:"window"`
	Factor int32 `yaml:"factor"`
}

type CapabilityStep struct {
	Seat   uint32 `yaml:"seat"`
	Name   string `yaml:"name"`
	Remove bool   `yaml:"remove"`
}

type PointerStep struct {
	Window int     `yaml:"window"`
	Kind   string  `yaml:"kind"` // enter, leave, motion, press, release or axis
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Button uint32  `yaml:"button"` // evdev code, BTN_LEFT when zero
	Serial uint32  `yaml:"serial"`
}

type FocusStep struct {
	Window  int  `yaml:"window"`
	Focused bool `yaml:"focused"`
}

type KeyStep struct {
	Key     uint32 `yaml:"key"`
	Pressed bool   `yaml:"pressed"`
}

type TouchStep struct {
	Window  int     `yaml:"window"`
	Kind    string  `yaml:"kind"` // down, up, motion or cancel
	Contact int32   `yaml:"contact"`
	X       float64 `yaml:"x"`
	Y       float64 `yaml:"y"`
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and validates a scenario. Unknown keys are rejected.
func Parse(data []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks that every step is well formed.
func (s *Scenario) Validate() error {
	if len(s.Steps) == 0 {
		return fmt.Errorf("scenario has no steps")
	}
	// The loop ends as soon as no window is left
	if s.Steps[0].Open == nil {
		return fmt.Errorf("the first step must open a window")
	}
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Action names the step's action.
func (st Step) Action() string {
	var names []string
	add := func(set bool, name string) {
		if set {
			names = append(names, name)
		}
	}
	add(st.Open != nil, "open")
	add(st.Configure != nil, "configure")
	add(st.Scale != nil, "scale")
	add(st.Redraw != nil, "redraw")
	add(st.Frame != nil, "frame")
	add(st.Close != nil, "close")
	add(st.Event != nil, "event")
	add(st.Capability != nil, "capability")
	add(st.Pointer != nil, "pointer")
	add(st.Focus != nil, "focus")
	add(st.Key != nil, "key")
	add(st.Touch != nil, "touch")
	add(st.Lock, "lock")
	add(st.Unlock, "unlock")
	add(st.Stop, "stop")
	if len(names) != 1 {
		return ""
	}
	return names[0]
}

func (st Step) validate() error {
	action := st.Action()
	if action == "" {
		return fmt.Errorf("a step must hold exactly one action")
	}
	switch {
	case st.Configure != nil:
		for _, name := range st.Configure.States {
			if _, ok := window.ParseState(name); !ok {
				return fmt.Errorf("unknown window state %q", name)
			}
		}
	case st.Scale != nil:
		if st.Scale.Factor < 1 {
			return fmt.Errorf("scale factor must be positive, got %d", st.Scale.Factor)
		}
	case st.Capability != nil:
		if _, ok := seat.ParseCapability(st.Capability.Name); !ok {
			return fmt.Errorf("unknown capability %q", st.Capability.Name)
		}
	case st.Pointer != nil:
		if _, ok := pointerKinds[st.Pointer.Kind]; !ok {
			return fmt.Errorf("unknown pointer kind %q", st.Pointer.Kind)
		}
	case st.Touch != nil:
		switch st.Touch.Kind {
		case "down", "up", "motion", "cancel":
		default:
			return fmt.Errorf("unknown touch kind %q", st.Touch.Kind)
		}
	}
	return nil
}
