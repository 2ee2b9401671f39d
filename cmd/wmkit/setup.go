package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/wmkit/internal/config"
	"github.com/1broseidon/wmkit/internal/images"
	"github.com/1broseidon/wmkit/internal/modmask"
	"github.com/1broseidon/wmkit/internal/xdgpath"
	"github.com/BurntSushi/xgb/xproto"
)

func ignoreGroups(cfg *config.Config) []modmask.IgnoreGroup {
	out := make([]modmask.IgnoreGroup, 0, len(cfg.IgnoreModifiers))
	for _, group := range cfg.IgnoreModifiers {
		out = append(out, modmask.Ignore(group...))
	}
	return out
}

// iconDirs returns extra, then the configured directories, then the theme
// directories, without duplicates.
func iconDirs(cfg *config.Config, extra []string, themeDirs func(string, int) []string) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(dirs []string) {
		for _, dir := range dirs {
			if _, ok := seen[dir]; ok {
				continue
			}
			seen[dir] = struct{}{}
			out = append(out, dir)
		}
	}
	add(extra)
	add(cfg.IconDirs)
	if cfg.IconTheme != "" && themeDirs != nil {
		add(themeDirs(cfg.IconTheme, cfg.IconSize))
	}
	return out
}

func newLoader(cfg *config.Config, extraDirs []string, logger *slog.Logger) *images.Loader {
	return images.NewLoader(
		images.WithSearchDirs(iconDirs(cfg, extraDirs, xdgpath.IconDirs)...),
		images.WithSize(cfg.IconWidth, cfg.IconHeight),
		images.WithCacheSize(cfg.SurfaceCacheSize),
		images.WithLogger(logger),
	)
}

// buildBindings turns the configured keys and buttons into grab bindings.
// Config on each binding is the command to run. A key that maps to several
// keycodes yields one binding per keycode.
func buildBindings(cfg *config.Config, keycodes func(string) []xproto.Keycode) ([]modmask.Binding, error) {
	var out []modmask.Binding
	for i, key := range cfg.Keys {
		codes := keycodes(key.Key)
		if len(codes) == 0 {
			return nil, fmt.Errorf("keys[%d]: no keycode for %q", i, key.Key)
		}
		for _, code := range codes {
			out = append(out, modmask.KeyBinding(code, key.Modifiers, key.Command))
		}
	}
	for _, btn := range cfg.Buttons {
		button := xproto.Button(btn.Button)
		if btn.Kind == config.ButtonDrag {
			out = append(out, modmask.DragBinding(button, btn.Modifiers, btn.Command))
		} else {
			out = append(out, modmask.ClickBinding(button, btn.Modifiers, btn.Command))
		}
	}
	return out, nil
}

// prepareBindings builds the configured bindings and expands all of them up
// front, so a bad modifier name fails before anything is grabbed. It
// returns the bindings and the number of grabs they expand to.
func prepareBindings(cfg *config.Config, keycodes func(string) []xproto.Keycode, resolver *modmask.Resolver) ([]modmask.Binding, int, error) {
	bindings, err := buildBindings(cfg, keycodes)
	if err != nil {
		return nil, 0, err
	}
	grabs, err := resolver.ExpandAll(bindings, ignoreGroups(cfg))
	if err != nil {
		return nil, 0, err
	}
	return bindings, len(grabs), nil
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
