package x11

import (
	"fmt"

	"github.com/1broseidon/wmkit/internal/modmask"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
)

// Keymap is a static view of the server's keyboard mapping and modifier
// mapping. It satisfies modmask.KeyTranslator.
type Keymap struct {
	minKeycode xproto.Keycode
	perKeycode int
	keysyms    []xproto.Keysym
	reverse    map[xproto.Keycode][]string
}

var _ modmask.KeyTranslator = (*Keymap)(nil)

// NewKeymap snapshots the mappings loaded by keybind.Initialize.
func NewKeymap(xu *xgbutil.XUtil) (*Keymap, error) {
	if xu == nil {
		return nil, fmt.Errorf("no X connection")
	}
	keyMap := keybind.KeyMapGet(xu)
	modMap := keybind.ModMapGet(xu)
	if keyMap == nil || modMap == nil {
		return nil, fmt.Errorf("keyboard mapping not loaded; call keybind.Initialize first")
	}
	setup := xproto.Setup(xu.Conn())
	return newKeymap(setup.MinKeycode, int(keyMap.KeysymsPerKeycode), keyMap.Keysyms,
		int(modMap.KeycodesPerModifier), modMap.Keycodes), nil
}

func newKeymap(minKeycode xproto.Keycode, perKeycode int, keysyms []xproto.Keysym, perModifier int, modKeycodes []xproto.Keycode) *Keymap {
	return &Keymap{
		minKeycode: minKeycode,
		perKeycode: perKeycode,
		keysyms:    keysyms,
		reverse:    reverseModmap(perModifier, modKeycodes),
	}
}

// reverseModmap maps each keycode in the modifier mapping to the modifier
// rows it belongs to. Row i covers keycodes[i*per:(i+1)*per]; zero entries
// are padding.
func reverseModmap(perModifier int, keycodes []xproto.Keycode) map[xproto.Keycode][]string {
	out := make(map[xproto.Keycode][]string)
	if perModifier <= 0 {
		return out
	}
	for row, name := range modmask.ModifierOrder {
		start := row * perModifier
		if start >= len(keycodes) {
			break
		}
		end := min(start+perModifier, len(keycodes))
		for _, kc := range keycodes[start:end] {
			if kc == 0 {
				continue
			}
			out[kc] = append(out[kc], name)
		}
	}
	return out
}

// KeycodeForKeysym returns the first keycode producing keysym in any column.
// A keysym absent from the keyboard yields keycode 0, which has no modifier.
func (k *Keymap) KeycodeForKeysym(keysym xproto.Keysym) (xproto.Keycode, error) {
	if k.perKeycode <= 0 {
		return 0, fmt.Errorf("keyboard mapping has no keysyms per keycode")
	}
	for i, sym := range k.keysyms {
		if sym == keysym {
			return k.minKeycode + xproto.Keycode(i/k.perKeycode), nil
		}
	}
	return 0, nil
}

// ModifiersForKeycode returns the modifier rows keycode is assigned to.
func (k *Keymap) ModifiersForKeycode(keycode xproto.Keycode) []string {
	return k.reverse[keycode]
}
