package modmask

import (
	"errors"
	"testing"

	"github.com/BurntSushi/xgb/xproto"
)

type fakeKeyboard struct {
	keycodes map[xproto.Keysym]xproto.Keycode
	modmap   map[xproto.Keycode][]string
	lookups  int
}

func (f *fakeKeyboard) KeycodeForKeysym(keysym xproto.Keysym) (xproto.Keycode, error) {
	f.lookups++
	return f.keycodes[keysym], nil
}

func (f *fakeKeyboard) ModifiersForKeycode(keycode xproto.Keycode) []string {
	return f.modmap[keycode]
}

// newFakeKeyboard models a common layout: NumLock on mod2, Super_L on mod4,
// ScrollLock present but not bound to a modifier row.
func newFakeKeyboard() *fakeKeyboard {
	return &fakeKeyboard{
		keycodes: map[xproto.Keysym]xproto.Keycode{
			DefaultKeysyms["Num_Lock"]:    77,
			DefaultKeysyms["Super_L"]:     133,
			DefaultKeysyms["Scroll_Lock"]: 78,
			DefaultKeysyms["Caps_Lock"]:   66,
		},
		modmap: map[xproto.Keycode][]string{
			77:  {"mod2"},
			133: {"mod4"},
			66:  {"lock"},
		},
	}
}

func TestMasks_CoreModifiersMatchTable(t *testing.T) {
	r := NewResolver(newFakeKeyboard())
	for name, want := range DefaultModMasks {
		got, err := r.Masks([]string{name})
		if err != nil {
			t.Fatalf("Masks(%q) error: %v", name, err)
		}
		if len(got) != 1 || got[0] != want {
			t.Fatalf("Masks(%q) = %v, want [%d]", name, got, want)
		}
		again, err := r.Masks([]string{name})
		if err != nil {
			t.Fatalf("second Masks(%q) error: %v", name, err)
		}
		if again[0] != got[0] {
			t.Fatalf("expected stable mask for %q, got %d then %d", name, got[0], again[0])
		}
	}
}

func TestMasks_PreservesOrder(t *testing.T) {
	r := NewResolver(newFakeKeyboard())
	got, err := r.Masks([]string{"mod4", "shift", "control"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []uint16{64, 1, 4}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Masks() = %v, want %v", got, want)
		}
	}
}

func TestMasks_KeysymResolvesThroughModmap(t *testing.T) {
	kb := newFakeKeyboard()
	r := NewResolver(kb)

	got, err := r.Masks([]string{"Num_Lock"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != xproto.ModMask2 {
		t.Fatalf("expected Num_Lock to resolve to mod2 (%d), got %d", xproto.ModMask2, got[0])
	}

	if _, err := r.Masks([]string{"Num_Lock"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if kb.lookups != 1 {
		t.Fatalf("expected cached lookup, translator called %d times", kb.lookups)
	}
	if _, ok := r.Cache().Get("Num_Lock"); !ok {
		t.Fatalf("expected cache entry under requested name")
	}
	if _, ok := r.Cache().Get("mod2"); ok {
		t.Fatalf("did not expect cache entry under the alias")
	}
}

func TestMasks_UnassignedKeysymIsZero(t *testing.T) {
	r := NewResolver(newFakeKeyboard())
	got, err := r.Masks([]string{"Scroll_Lock"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != 0 {
		t.Fatalf("expected 0 for unassigned modifier, got %d", got[0])
	}
}

func TestMasks_UnknownModifier(t *testing.T) {
	r := NewResolver(newFakeKeyboard())
	_, err := r.Masks([]string{"shift", "hyperdrive"})
	if err == nil {
		t.Fatalf("expected error for unknown modifier")
	}
	var unknown *UnknownModifierError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownModifierError, got %T: %v", err, err)
	}
	if unknown.Name != "hyperdrive" {
		t.Fatalf("expected name hyperdrive, got %q", unknown.Name)
	}
}

func TestMask_ORsAndEmptyIsZero(t *testing.T) {
	r := NewResolver(newFakeKeyboard())

	empty, err := r.Mask(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if empty != 0 {
		t.Fatalf("expected 0 for empty input, got %d", empty)
	}

	got, err := r.Mask([]string{"mod4", "shift", "Num_Lock"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := uint16(64 | 1 | 16); got != want {
		t.Fatalf("Mask() = %d, want %d", got, want)
	}
}

func TestWithCache_SharedAcrossResolvers(t *testing.T) {
	cache := NewMaskCache()
	first := NewResolver(newFakeKeyboard(), WithCache(cache))
	if _, err := first.Masks([]string{"Num_Lock"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	kb := newFakeKeyboard()
	second := NewResolver(kb, WithCache(cache))
	got, err := second.Masks([]string{"Num_Lock"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != xproto.ModMask2 {
		t.Fatalf("expected cached mod2, got %d", got[0])
	}
	if kb.lookups != 0 {
		t.Fatalf("expected shared cache hit, translator called %d times", kb.lookups)
	}
}

func TestWithModMasks_CustomTable(t *testing.T) {
	r := NewResolver(newFakeKeyboard(), WithModMasks(ModMaskTable{"super": 64, "mod2": 16}))
	got, err := r.Mask([]string{"super", "Num_Lock"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 80 {
		t.Fatalf("expected 80, got %d", got)
	}
	if _, err := r.Mask([]string{"shift"}); err == nil {
		t.Fatalf("expected shift to be unknown with a custom table")
	}
}

func TestNewResolver_IsolatedFromDefaultTables(t *testing.T) {
	r := NewResolver(newFakeKeyboard())

	numLock := DefaultKeysyms["Num_Lock"]
	DefaultModMasks["hyper"] = 64
	DefaultKeysyms["Num_Lock"] = 0xffff
	t.Cleanup(func() {
		delete(DefaultModMasks, "hyper")
		DefaultKeysyms["Num_Lock"] = numLock
	})

	if _, err := r.Mask([]string{"hyper"}); err == nil {
		t.Fatalf("expected hyper added after construction to stay unknown")
	}
	got, err := r.Mask([]string{"Num_Lock"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 16 {
		t.Fatalf("expected Num_Lock to keep resolving to 16, got %d", got)
	}
}
