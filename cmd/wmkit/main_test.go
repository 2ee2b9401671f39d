package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/wmkit/internal/config"
	"github.com/1broseidon/wmkit/internal/images"
	"github.com/1broseidon/wmkit/internal/modmask"
	"github.com/BurntSushi/xgb/xproto"
)

func writeTestPNG(t *testing.T, path string, w, h int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestBuildBindings(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Keys = []config.KeyBinding{{Modifiers: []string{"mod4"}, Key: "t", Command: "xterm"}}
	cfg.Buttons = []config.ButtonBinding{
		{Modifiers: []string{"mod1"}, Button: 1, Kind: config.ButtonDrag, Command: "move"},
		{Button: 3, Command: "menu"},
	}
	keycodes := func(key string) []xproto.Keycode {
		if key == "t" {
			return []xproto.Keycode{28, 200}
		}
		return nil
	}

	bindings, err := buildBindings(cfg, keycodes)
	if err != nil {
		t.Fatalf("buildBindings: %v", err)
	}
	if len(bindings) != 4 {
		t.Fatalf("expected 4 bindings, got %d", len(bindings))
	}
	if bindings[0].Kind != modmask.KindKey || bindings[0].Code() != 28 || bindings[1].Code() != 200 {
		t.Fatalf("expected one key binding per keycode, got %+v", bindings[:2])
	}
	if bindings[0].Config != "xterm" {
		t.Fatalf("expected command as config, got %v", bindings[0].Config)
	}
	if bindings[2].Kind != modmask.KindDrag || bindings[3].Kind != modmask.KindClick {
		t.Fatalf("unexpected button kinds %v %v", bindings[2].Kind, bindings[3].Kind)
	}
}

func TestBuildBindings_UnknownKey(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Keys = []config.KeyBinding{{Key: "NoSuchKey", Command: "x"}}
	_, err := buildBindings(cfg, func(string) []xproto.Keycode { return nil })
	if err == nil || !strings.Contains(err.Error(), "keys[0]") {
		t.Fatalf("expected keys[0] error, got %v", err)
	}
}

func TestIgnoreGroups(t *testing.T) {
	groups := ignoreGroups(config.DefaultConfig())
	if len(groups) != 2 || len(groups[0]) != 2 || groups[1][0] != "Num_Lock" {
		t.Fatalf("unexpected ignore groups %v", groups)
	}
}

func TestIconDirs_OrderAndDedup(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.IconDirs = []string{"/b", "/a"}
	cfg.IconTheme = "Adwaita"
	theme := func(name string, size int) []string {
		if name != "Adwaita" || size != 24 {
			t.Fatalf("unexpected theme lookup %s %d", name, size)
		}
		return []string{"/theme/24x24", "/b"}
	}
	got := iconDirs(cfg, []string{"/a"}, theme)
	want := []string{"/a", "/b", "/theme/24x24"}
	if strings.Join(got, " ") != strings.Join(want, " ") {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestWriteMasks(t *testing.T) {
	var buf bytes.Buffer
	writeMasks(&buf, []string{"shift", "mod4"}, []uint16{1, 64}, false)
	if buf.String() != "shift\t1\nmod4\t64\n" {
		t.Fatalf("unexpected TSV output %q", buf.String())
	}

	buf.Reset()
	writeMasks(&buf, []string{"mod4"}, []uint16{64}, true)
	if !strings.HasPrefix(buf.String(), "NAME") || !strings.Contains(buf.String(), "0x40") {
		t.Fatalf("unexpected table output %q", buf.String())
	}
}

func TestIconJob_RunAndRender(t *testing.T) {
	iconDir := t.TempDir()
	writeTestPNG(t, filepath.Join(iconDir, "battery.png"), 16, 16)
	outDir := filepath.Join(t.TempDir(), "out")

	job := iconJob{
		loader:    images.NewLoader(images.WithSearchDirs(iconDir), images.WithLogger(quietLogger())),
		names:     []string{"battery", "missing"},
		width:     8,
		height:    8,
		theta:     90,
		renderDir: outDir,
	}
	var buf bytes.Buffer
	if code := job.run(&buf); code != 0 {
		t.Fatalf("expected success, got exit %d", code)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "battery\ttrue\t8\t8\t") || !strings.HasPrefix(lines[1], "missing\tfalse") {
		t.Fatalf("unexpected output %q", buf.String())
	}

	f, err := os.Open(filepath.Join(outDir, "battery.png"))
	if err != nil {
		t.Fatalf("expected rendered icon: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode rendered icon: %v", err)
	}
	if cfg.Width != 8 || cfg.Height != 8 {
		t.Fatalf("expected 8x8 render, got %dx%d", cfg.Width, cfg.Height)
	}
	if _, err := os.Stat(filepath.Join(outDir, "missing.png")); !os.IsNotExist(err) {
		t.Fatalf("expected no render for missing icon")
	}
}

func TestIconJob_RequireFails(t *testing.T) {
	job := iconJob{
		loader:  images.NewLoader(images.WithSearchDirs(t.TempDir()), images.WithLogger(quietLogger())),
		names:   []string{"missing"},
		require: true,
	}
	var buf bytes.Buffer
	if code := job.run(&buf); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
}

func TestSetupLogger_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wmkit.log")
	logger, closer, err := setupLogger(config.LoggingConfig{Level: "debug", File: path}, false)
	if err != nil {
		t.Fatalf("setupLogger: %v", err)
	}
	logger.Debug("grabbed binding", "code", 28)
	if err := closer.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "code=28") {
		t.Fatalf("expected log entry, got %q", data)
	}
}

func TestSetupLogger_StateDirDefault(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)
	_, closer, err := setupLogger(config.LoggingConfig{}, true)
	if err != nil {
		t.Fatalf("setupLogger: %v", err)
	}
	closer.Close()
	if _, err := os.Stat(filepath.Join(state, "wmkit", "wmkit.log")); err != nil {
		t.Fatalf("expected log file in state dir: %v", err)
	}
}

func TestIconJob_ThetaUsesLoaderDefaultSize(t *testing.T) {
	iconDir := t.TempDir()
	writeTestPNG(t, filepath.Join(iconDir, "battery.png"), 8, 8)
	outDir := filepath.Join(t.TempDir(), "out")

	job := iconJob{
		loader: images.NewLoader(
			images.WithSearchDirs(iconDir),
			images.WithSize(16, 16),
			images.WithLogger(quietLogger()),
		),
		names:     []string{"battery"},
		theta:     180,
		renderDir: outDir,
	}
	var buf bytes.Buffer
	if code := job.run(&buf); code != 0 {
		t.Fatalf("expected success, got exit %d", code)
	}
	if !strings.HasPrefix(buf.String(), "battery\ttrue\t16\t16\t") {
		t.Fatalf("expected 16x16 output, got %q", buf.String())
	}

	f, err := os.Open(filepath.Join(outDir, "battery.png"))
	if err != nil {
		t.Fatalf("expected rendered icon: %v", err)
	}
	defer f.Close()
	rendered, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode rendered icon: %v", err)
	}
	if b := rendered.Bounds(); b.Dx() != 16 || b.Dy() != 16 {
		t.Fatalf("expected 16x16 render, got %v", b)
	}
}

type numLockOnMod2 struct{}

func (numLockOnMod2) KeycodeForKeysym(keysym xproto.Keysym) (xproto.Keycode, error) {
	if keysym == 0xff7f {
		return 77, nil
	}
	return 0, nil
}

func (numLockOnMod2) ModifiersForKeycode(keycode xproto.Keycode) []string {
	if keycode == 77 {
		return []string{"mod2"}
	}
	return nil
}

func TestPrepareBindings_CountsGrabs(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Keys = []config.KeyBinding{{Modifiers: []string{"mod4"}, Key: "t", Command: "xterm"}}
	cfg.Buttons = []config.ButtonBinding{{Button: 3, Command: "menu"}}
	keycodes := func(string) []xproto.Keycode { return []xproto.Keycode{28} }

	bindings, planned, err := prepareBindings(cfg, keycodes, modmask.NewResolver(numLockOnMod2{}))
	if err != nil {
		t.Fatalf("prepareBindings: %v", err)
	}
	// Each binding: exact, lock|Num_Lock, Num_Lock.
	if len(bindings) != 2 || planned != 6 {
		t.Fatalf("expected 2 bindings and 6 grabs, got %d and %d", len(bindings), planned)
	}
}

func TestPrepareBindings_RejectsUnknownModifierBeforeGrabbing(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Keys = []config.KeyBinding{
		{Modifiers: []string{"mod4"}, Key: "t", Command: "xterm"},
		{Modifiers: []string{"hyper"}, Key: "t", Command: "xterm"},
	}
	keycodes := func(string) []xproto.Keycode { return []xproto.Keycode{28} }

	_, _, err := prepareBindings(cfg, keycodes, modmask.NewResolver(numLockOnMod2{}))
	var unknown *modmask.UnknownModifierError
	if !errors.As(err, &unknown) || unknown.Name != "hyper" {
		t.Fatalf("expected UnknownModifierError for hyper, got %v", err)
	}
}
