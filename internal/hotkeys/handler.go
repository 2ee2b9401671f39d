// Package hotkeys grabs key and pointer bindings on the root window and
// dispatches the matching events to actions.
package hotkeys

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/1broseidon/wmkit/internal/modmask"
	"github.com/1broseidon/wmkit/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Action runs when a grabbed binding fires.
type Action func(b modmask.Binding)

// grabber registers passive grabs with the server.
type grabber interface {
	GrabKey(mask uint16, keycode xproto.Keycode) error
	UngrabKey(mask uint16, keycode xproto.Keycode) error
	GrabButton(mask uint16, button xproto.Button, drag bool) error
	UngrabButton(mask uint16, button xproto.Button) error
}

type trigger struct {
	button bool
	code   uint8
	mask   uint16
}

type entry struct {
	binding modmask.Binding
	action  Action
}

// Handler manages global key and button grabs.
type Handler struct {
	grabber  grabber
	resolver *modmask.Resolver
	ignore   []modmask.IgnoreGroup
	logger   *slog.Logger

	mu          sync.Mutex
	ignoreMasks []uint16
	actions     map[trigger]entry
	grabs       []modmask.Grab
}

// NewHandler creates a handler grabbing on conn's root window.
func NewHandler(conn *x11.Connection, resolver *modmask.Resolver, ignore []modmask.IgnoreGroup, logger *slog.Logger) (*Handler, error) {
	h, err := newHandler(&xGrabber{xu: conn.XUtil, root: conn.Root}, resolver, ignore, logger)
	if err != nil {
		return nil, err
	}
	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		h.dispatch(false, uint8(ev.Detail), ev.State)
	}).Connect(conn.XUtil, conn.Root)
	xevent.ButtonPressFun(func(xu *xgbutil.XUtil, ev xevent.ButtonPressEvent) {
		h.dispatch(true, uint8(ev.Detail), ev.State)
	}).Connect(conn.XUtil, conn.Root)
	return h, nil
}

func newHandler(g grabber, resolver *modmask.Resolver, ignore []modmask.IgnoreGroup, logger *slog.Logger) (*Handler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	masks, err := resolver.IgnoreMasks(ignore)
	if err != nil {
		return nil, fmt.Errorf("resolve ignore modifiers: %w", err)
	}
	return &Handler{
		grabber:     g,
		resolver:    resolver,
		ignore:      ignore,
		logger:      logger,
		ignoreMasks: masks,
		actions:     make(map[trigger]entry),
	}, nil
}

// Bind grabs b with every ignore-group variant and runs action when it fires.
func (h *Handler) Bind(b modmask.Binding, action Action) error {
	grabs, err := h.resolver.Expand(b, h.ignore)
	if err != nil {
		return fmt.Errorf("%s binding %d: %w", b.Kind, b.Code(), err)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	// A binding is registered only once all of its variants are grabbed.
	for i, g := range grabs {
		if err := h.grab(g); err != nil {
			for _, done := range grabs[:i] {
				if uerr := h.ungrab(done); uerr != nil {
					h.logger.Warn("failed to release partial grab", "kind", done.Kind.String(), "code", done.Code, "mask", done.Mask, "error", uerr)
				}
			}
			return fmt.Errorf("grab %s %d mask %#x: %w", g.Kind, g.Code, g.Mask, err)
		}
	}
	for _, g := range grabs {
		h.grabs = append(h.grabs, g)
		h.actions[trigger{button: g.Kind != modmask.KindKey, code: g.Code, mask: g.Mask}] = entry{binding: b, action: action}
		h.logger.Debug("grabbed binding", "kind", g.Kind.String(), "code", g.Code, "mask", g.Mask)
	}
	return nil
}

func (h *Handler) grab(g modmask.Grab) error {
	if g.Kind == modmask.KindKey {
		return h.grabber.GrabKey(g.Mask, xproto.Keycode(g.Code))
	}
	return h.grabber.GrabButton(g.Mask, xproto.Button(g.Code), g.Kind == modmask.KindDrag)
}

func (h *Handler) ungrab(g modmask.Grab) error {
	if g.Kind == modmask.KindKey {
		return h.grabber.UngrabKey(g.Mask, xproto.Keycode(g.Code))
	}
	return h.grabber.UngrabButton(g.Mask, xproto.Button(g.Code))
}

// Grabs returns the grabs registered so far.
func (h *Handler) Grabs() []modmask.Grab {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]modmask.Grab(nil), h.grabs...)
}

// Close releases every grab.
func (h *Handler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var firstErr error
	for _, g := range h.grabs {
		if err := h.ungrab(g); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	h.grabs = nil
	h.actions = make(map[trigger]entry)
	return firstErr
}

// lookup matches an event against the bindings. Pointer button state bits
// are dropped first; each ignore mask that is fully present in state is then
// stripped in turn, starting with the exact state.
func (h *Handler) lookup(button bool, code uint8, state uint16) (entry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	state &= 0xff
	for _, ignore := range h.ignoreMasks {
		if state&ignore != ignore {
			continue
		}
		if e, ok := h.actions[trigger{button: button, code: code, mask: state &^ ignore}]; ok {
			return e, true
		}
	}
	return entry{}, false
}

func (h *Handler) dispatch(button bool, code uint8, state uint16) {
	e, ok := h.lookup(button, code, state)
	if !ok {
		h.logger.Debug("unbound event", "button", button, "code", code, "state", state)
		return
	}
	h.logger.Debug("binding fired", "kind", e.binding.Kind.String(), "code", code, "state", state)
	e.action(e.binding)
}

type xGrabber struct {
	xu   *xgbutil.XUtil
	root xproto.Window
}

func (g *xGrabber) GrabKey(mask uint16, keycode xproto.Keycode) error {
	return xproto.GrabKeyChecked(g.xu.Conn(), true, g.root, mask, keycode,
		xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
}

func (g *xGrabber) UngrabKey(mask uint16, keycode xproto.Keycode) error {
	return xproto.UngrabKeyChecked(g.xu.Conn(), keycode, g.root, mask).Check()
}

func (g *xGrabber) GrabButton(mask uint16, button xproto.Button, drag bool) error {
	events := uint16(xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease)
	if drag {
		events |= xproto.EventMaskButtonMotion
	}
	return xproto.GrabButtonChecked(g.xu.Conn(), false, g.root, events,
		xproto.GrabModeAsync, xproto.GrabModeAsync, xproto.WindowNone, xproto.CursorNone,
		byte(button), mask).Check()
}

func (g *xGrabber) UngrabButton(mask uint16, button xproto.Button) error {
	return xproto.UngrabButtonChecked(g.xu.Conn(), byte(button), g.root, mask).Check()
}
