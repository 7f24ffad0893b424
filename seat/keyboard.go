package seat

import (
	"regexp"
	"strings"
	"time"
)

// Modifiers is the set of active keyboard modifiers.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCapsLock
	ModCtrl
	ModAlt
	ModNumLock
	ModLogo
)

// ModifierMap tells which xkb real modifier bits carry each modifier.
type ModifierMap struct {
	Shift    uint32
	CapsLock uint32
	Ctrl     uint32
	Alt      uint32
	NumLock  uint32
	Logo     uint32
}

// Real modifier bits, in xkb order.
var realModifiers = map[string]uint32{
	"shift":   1 << 0,
	"lock":    1 << 1,
	"control": 1 << 2,
	"mod1":    1 << 3,
	"mod2":    1 << 4,
	"mod3":    1 << 5,
	"mod4":    1 << 6,
	"mod5":    1 << 7,
}

// DefaultModifierMap is the layout of the usual evdev keymaps.
var DefaultModifierMap = ModifierMap{
	Shift:    realModifiers["shift"],
	CapsLock: realModifiers["lock"],
	Ctrl:     realModifiers["control"],
	Alt:      realModifiers["mod1"],
	NumLock:  realModifiers["mod2"],
	Logo:     realModifiers["mod4"],
}

// Modifiers folds the depressed, latched and locked xkb masks.
func (mm ModifierMap) Modifiers(depressed, latched, locked uint32) Modifiers {
	mask := depressed | latched | locked
	var m Modifiers
	for _, f := range []struct {
		bits uint32
		mod  Modifiers
	}{
		{mm.Shift, ModShift},
		{mm.CapsLock, ModCapsLock},
		{mm.Ctrl, ModCtrl},
		{mm.Alt, ModAlt},
		{mm.NumLock, ModNumLock},
		{mm.Logo, ModLogo},
	} {
		if f.bits != 0 && mask&f.bits != 0 {
			m |= f.mod
		}
	}
	return m
}

// ModifiersFromXKB folds the masks using DefaultModifierMap.
func ModifiersFromXKB(depressed, latched, locked uint32) Modifiers {
	return DefaultModifierMap.Modifiers(depressed, latched, locked)
}

var modifierMapStmt = regexp.MustCompile(`(?i)modifier_map\s+(\w+)\s*\{([^}]*)\}`)

// Keys and keysyms that identify the virtual modifiers.
var (
	altKeys     = []string{"<LALT>", "<RALT>", "<ALT>", "<META>", "Alt_L", "Alt_R", "Meta_L", "Meta_R"}
	logoKeys    = []string{"<LWIN>", "<RWIN>", "<SUPR>", "Super_L", "Super_R"}
	numLockKeys = []string{"<NMLK>", "Num_Lock"}
)

// ParseModifierMap reads the modifier_map statements of an xkb_v1 keymap
// and returns where Alt, NumLock and Logo live. Modifiers the keymap does
// not map keep their default bit.
func ParseModifierMap(keymap string) ModifierMap {
	mm := DefaultModifierMap
	found := map[*uint32]bool{}
	for _, match := range modifierMapStmt.FindAllStringSubmatch(keymap, -1) {
		bit, ok := realModifiers[strings.ToLower(match[1])]
		if !ok || bit <= realModifiers["control"] {
			continue
		}
		for _, target := range []struct {
			field *uint32
			keys  []string
		}{
			{&mm.Alt, altKeys},
			{&mm.NumLock, numLockKeys},
			{&mm.Logo, logoKeys},
		} {
			if !containsAny(match[2], target.keys) {
				continue
			}
			if !found[target.field] {
				*target.field = 0
				found[target.field] = true
			}
			*target.field |= bit
		}
	}
	return mm
}

func containsAny(list string, keys []string) bool {
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		for _, k := range keys {
			if item == k {
				return true
			}
		}
	}
	return false
}

func (m Modifiers) String() string {
	names := []string{"shift", "caps", "ctrl", "alt", "num", "logo"}
	var parts []string
	for i, n := range names {
		if m&(1<<i) != 0 {
			parts = append(parts, n)
		}
	}
	return strings.Join(parts, "+")
}

// KeyState is whether a key went down or up.
type KeyState int

const (
	KeyReleased KeyState = iota
	KeyPressed
)

func (s KeyState) String() string {
	if s == KeyPressed {
		return "pressed"
	}
	return "released"
}

// KeyboardEvent is a key press or release delivered to the focused window.
// Key is the evdev key code.
type KeyboardEvent struct {
	Key       uint32
	State     KeyState
	Time      time.Duration
	Modifiers Modifiers
}
