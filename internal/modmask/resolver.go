// Package modmask turns symbolic modifier names into X11 modifier masks and
// expands bindings into every mask variant that has to be grabbed so that
// CapsLock and NumLock do not swallow a binding.
package modmask

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// KeyTranslator exposes the parts of the server keyboard state the
// resolver needs. The x11 package provides the live implementation.
type KeyTranslator interface {
	KeycodeForKeysym(keysym xproto.Keysym) (xproto.Keycode, error)
	// ModifiersForKeycode returns the modifier rows a keycode currently
	// serves, in modmap order. An empty result means the key is not bound
	// to any modifier.
	ModifiersForKeycode(keycode xproto.Keycode) []string
}

// UnknownModifierError is returned when a name is neither a core modifier
// nor a known modifier keysym.
type UnknownModifierError struct {
	Name string
}

func (e *UnknownModifierError) Error() string {
	return fmt.Sprintf("unknown modifier %q", e.Name)
}

// MaskCache memoizes resolved masks by requested name. Entries are never
// overwritten. It has a single writer; share it between resolvers only when
// they run on the same goroutine.
type MaskCache struct {
	masks map[string]uint16
}

// NewMaskCache returns an empty cache.
func NewMaskCache() *MaskCache {
	return &MaskCache{masks: make(map[string]uint16)}
}

// Get returns the cached mask for name.
func (c *MaskCache) Get(name string) (uint16, bool) {
	mask, ok := c.masks[name]
	return mask, ok
}

func (c *MaskCache) put(name string, mask uint16) {
	if _, ok := c.masks[name]; ok {
		return
	}
	c.masks[name] = mask
}

// Len reports how many names are cached.
func (c *MaskCache) Len() int {
	return len(c.masks)
}

// Resolver resolves modifier names against a fixed modifier table, falling
// back to the keyboard's modifier mapping for keysym-backed names such as
// "Num_Lock". Modifier maps are assumed static for the resolver's lifetime.
type Resolver struct {
	translator KeyTranslator
	modMasks   ModMaskTable
	keysyms    KeysymTable
	cache      *MaskCache
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithModMasks replaces the core modifier table.
func WithModMasks(t ModMaskTable) Option {
	return func(r *Resolver) {
		r.modMasks = t.clone()
	}
}

// WithKeysyms replaces the modifier keysym table.
func WithKeysyms(t KeysymTable) Option {
	return func(r *Resolver) {
		r.keysyms = t.clone()
	}
}

// WithCache makes the resolver use an externally owned cache.
func WithCache(c *MaskCache) Option {
	return func(r *Resolver) {
		if c != nil {
			r.cache = c
		}
	}
}

// NewResolver creates a resolver backed by translator.
func NewResolver(translator KeyTranslator, opts ...Option) *Resolver {
	r := &Resolver{
		translator: translator,
		modMasks:   DefaultModMasks.clone(),
		keysyms:    DefaultKeysyms.clone(),
		cache:      NewMaskCache(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Cache returns the cache the resolver writes to.
func (r *Resolver) Cache() *MaskCache {
	return r.cache
}

// Masks resolves each name to its mask, preserving order.
func (r *Resolver) Masks(names []string) ([]uint16, error) {
	out := make([]uint16, 0, len(names))
	for _, name := range names {
		mask, err := r.resolve(name)
		if err != nil {
			return nil, err
		}
		out = append(out, mask)
	}
	return out, nil
}

// Mask returns the OR of all named modifiers. An empty list yields 0.
func (r *Resolver) Mask(names []string) (uint16, error) {
	masks, err := r.Masks(names)
	if err != nil {
		return 0, err
	}
	var mask uint16
	for _, m := range masks {
		mask |= m
	}
	return mask, nil
}

func (r *Resolver) resolve(name string) (uint16, error) {
	if mask, ok := r.cache.Get(name); ok {
		return mask, nil
	}

	if mask, ok := r.modMasks[name]; ok {
		r.cache.put(name, mask)
		return mask, nil
	}

	keysym, ok := r.keysyms[name]
	if !ok {
		return 0, &UnknownModifierError{Name: name}
	}
	if r.translator == nil {
		return 0, fmt.Errorf("resolve %q: no keyboard translator", name)
	}
	keycode, err := r.translator.KeycodeForKeysym(keysym)
	if err != nil {
		return 0, fmt.Errorf("resolve %q: %w", name, err)
	}

	// A modifier keysym without a modmap row is unassigned, not an error.
	var mask uint16
	if rows := r.translator.ModifiersForKeycode(keycode); len(rows) > 0 {
		mask = r.modMasks[rows[0]]
	}
	r.cache.put(name, mask)
	return mask, nil
}
