package seat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const swappedKeymap = `xkb_keymap {
xkb_symbols "pc+us+inet(evdev)" {
	key <LALT> { [ Alt_L, Meta_L ] };
	key <LWIN> { [ Super_L ] };
	modifier_map Control { <LCTL> };
	modifier_map Mod2 { <NMLK> };
	modifier_map Mod3 { <LALT>, <RALT> };
	modifier_map Mod5 { <LWIN>, <RWIN> };
};
};`

func TestParseModifierMap(t *testing.T) {
	tests := []struct {
		name   string
		keymap string
		want   ModifierMap
	}{
		{"empty keymap keeps defaults", "", DefaultModifierMap},
		{
			name: "standard keymap",
			keymap: `modifier_map Mod1 { <LALT>, <META> };
modifier_map Mod2 { <NMLK> };
modifier_map Mod4 { <LWIN>, <RWIN>, <SUPR> };`,
			want: DefaultModifierMap,
		},
		{
			name:   "non-standard order",
			keymap: swappedKeymap,
			want: ModifierMap{
				Shift: 1 << 0, CapsLock: 1 << 1, Ctrl: 1 << 2,
				Alt: 1 << 5, NumLock: 1 << 4, Logo: 1 << 7,
			},
		},
		{
			name:   "keysym entries",
			keymap: "modifier_map mod3 { Super_L };",
			want: ModifierMap{
				Shift: 1 << 0, CapsLock: 1 << 1, Ctrl: 1 << 2,
				Alt: 1 << 3, NumLock: 1 << 4, Logo: 1 << 5,
			},
		},
		{"real modifiers cannot move", "modifier_map Control { <LALT> };", DefaultModifierMap},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseModifierMap(tt.keymap))
		})
	}
}

func TestModifierMapFoldsMasks(t *testing.T) {
	mm := ParseModifierMap(swappedKeymap)

	assert.Equal(t, ModAlt, mm.Modifiers(1<<5, 0, 0))
	assert.Equal(t, ModLogo|ModShift, mm.Modifiers(1<<0, 1<<7, 0))
	assert.Zero(t, mm.Modifiers(1<<3|1<<6, 0, 0), "mod1 and mod4 carry nothing here")
	assert.Equal(t, ModNumLock, mm.Modifiers(0, 0, 1<<4))
}
