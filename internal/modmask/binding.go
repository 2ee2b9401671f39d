package modmask

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// Kind identifies what a binding grabs.
type Kind int

const (
	KindKey Kind = iota
	KindClick
	KindDrag
)

func (k Kind) String() string {
	switch k {
	case KindKey:
		return "key"
	case KindClick:
		return "click"
	case KindDrag:
		return "drag"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Binding is a user binding ready to be grabbed. Config is the caller's
// opaque reference (usually the config entry the binding came from).
type Binding struct {
	Kind      Kind
	Modifiers []string
	Keycode   xproto.Keycode
	Button    xproto.Button
	Config    any
}

// KeyBinding returns a key binding for keycode.
func KeyBinding(keycode xproto.Keycode, modifiers []string, cfg any) Binding {
	return Binding{Kind: KindKey, Modifiers: modifiers, Keycode: keycode, Config: cfg}
}

// ClickBinding returns a button click binding.
func ClickBinding(button xproto.Button, modifiers []string, cfg any) Binding {
	return Binding{Kind: KindClick, Modifiers: modifiers, Button: button, Config: cfg}
}

// DragBinding returns a button drag binding.
func DragBinding(button xproto.Button, modifiers []string, cfg any) Binding {
	return Binding{Kind: KindDrag, Modifiers: modifiers, Button: button, Config: cfg}
}

// Code is the keycode for key bindings and the button number otherwise.
func (b Binding) Code() uint8 {
	if b.Kind == KindKey {
		return uint8(b.Keycode)
	}
	return uint8(b.Button)
}

// Grab is one (code, mask) pair to register with the server.
type Grab struct {
	Kind    Kind
	Code    uint8
	Mask    uint16
	Binding Binding
}

// IgnoreGroup is a set of modifiers that are ignored together.
type IgnoreGroup []string

// Ignore builds an ignore group; a single name is a one-element group.
func Ignore(names ...string) IgnoreGroup {
	return IgnoreGroup(names)
}

// DefaultIgnoreGroups grabs once with CapsLock+NumLock and once with NumLock
// alone, in addition to the exact match.
var DefaultIgnoreGroups = []IgnoreGroup{
	Ignore("lock", "Num_Lock"),
	Ignore("Num_Lock"),
}

// BaseMask resolves the binding's own modifiers.
func (r *Resolver) BaseMask(b Binding) (uint16, error) {
	return r.Mask(b.Modifiers)
}

// Expand returns the exact grab for b followed by one grab per distinct
// mask produced by OR-ing each ignore group into the base mask.
func (r *Resolver) Expand(b Binding, ignore []IgnoreGroup) ([]Grab, error) {
	base, err := r.BaseMask(b)
	if err != nil {
		return nil, err
	}
	return r.ExpandMask(base, b, ignore)
}

// ExpandMask is Expand with an already resolved base mask.
func (r *Resolver) ExpandMask(base uint16, b Binding, ignore []IgnoreGroup) ([]Grab, error) {
	code := b.Code()
	grabs := []Grab{{Kind: b.Kind, Code: code, Mask: base, Binding: b}}
	seen := map[uint16]struct{}{base: {}}

	for _, group := range ignore {
		ignoreMask, err := r.Mask(group)
		if err != nil {
			return nil, err
		}
		candidate := base | ignoreMask
		if _, ok := seen[candidate]; ok {
			continue
		}
		seen[candidate] = struct{}{}
		grabs = append(grabs, Grab{Kind: b.Kind, Code: code, Mask: candidate, Binding: b})
	}
	return grabs, nil
}

// ExpandAll expands every binding, stopping at the first one that fails.
func (r *Resolver) ExpandAll(bindings []Binding, ignore []IgnoreGroup) ([]Grab, error) {
	var out []Grab
	for _, b := range bindings {
		grabs, err := r.Expand(b, ignore)
		if err != nil {
			return nil, fmt.Errorf("%s binding %d: %w", b.Kind, b.Code(), err)
		}
		out = append(out, grabs...)
	}
	return out, nil
}

// IgnoreMasks returns the distinct ignore masks, starting with 0. Event
// dispatch strips these from the event state before matching.
func (r *Resolver) IgnoreMasks(ignore []IgnoreGroup) ([]uint16, error) {
	out := []uint16{0}
	seen := map[uint16]struct{}{0: {}}
	for _, group := range ignore {
		mask, err := r.Mask(group)
		if err != nil {
			return nil, err
		}
		if _, ok := seen[mask]; ok {
			continue
		}
		seen[mask] = struct{}{}
		out = append(out, mask)
	}
	return out, nil
}
