package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/1broseidon/wmkit/internal/images"
	"golang.org/x/term"
)

func runIcons(args []string) int {
	fs := flag.NewFlagSet("icons", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/wmkit/config.yaml)")
	var dirs stringList
	fs.Var(&dirs, "dir", "Icon directory searched before the configured ones (repeatable)")
	width := fs.Int("width", 0, "Output width (default: icon_width or intrinsic)")
	height := fs.Int("height", 0, "Output height (default: icon_height or intrinsic)")
	theta := fs.Float64("theta", 0, "Rotation in degrees applied when rendering")
	renderDir := fs.String("render", "", "Write each loaded icon as PNG into this directory")
	require := fs.Bool("require", false, "Fail when any icon cannot be loaded")
	watch := fs.Bool("watch", false, "Keep running and reload icons when files change")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wmkit icons [options] <name>...")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Find icons by name in the icon directories and load them.")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	names := fs.Args()
	if len(names) == 0 {
		fmt.Fprintln(os.Stderr, "icons requires at least one name")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config
	logger, closer, err := setupLogger(cfg.Logging, false)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closer.Close()

	loader := newLoader(cfg, dirs, logger)
	job := iconJob{
		loader:    loader,
		names:     names,
		width:     *width,
		height:    *height,
		theta:     *theta,
		renderDir: *renderDir,
		require:   *require,
		tty:       term.IsTerminal(int(os.Stdout.Fd())),
	}

	code := job.run(os.Stdout)
	if !*watch && !cfg.WatchIcons {
		return code
	}
	return watchIcons(job, logger)
}

type iconJob struct {
	loader    *images.Loader
	names     []string
	width     int
	height    int
	theta     float64
	renderDir string
	require   bool
	tty       bool
}

func (j iconJob) run(w io.Writer) int {
	var (
		loaded []images.LoadedImage
		err    error
	)
	opts := images.LoadOptions{Width: j.width, Height: j.height, Theta: j.theta}
	if j.require {
		loaded, err = j.loader.RequireIconsWithOptions(j.names, opts)
	} else {
		loaded, err = j.loader.IconsWithOptions(j.names, opts)
	}
	var loadErr *images.LoadingError
	if err != nil && !errors.As(err, &loadErr) {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	writeIcons(w, loaded, j.tty)
	if j.renderDir != "" {
		if err := renderIcons(j.renderDir, loaded); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}
	if loadErr != nil {
		fmt.Fprintln(os.Stderr, loadErr)
		return 1
	}
	return 0
}

func watchIcons(job iconJob, logger *slog.Logger) int {
	watcher, err := images.NewWatcher(job.loader)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	changed := make(chan struct{}, 1)
	watcher.OnChange = func(string) {
		select {
		case changed <- struct{}{}:
		default:
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	done := make(chan error, 1)
	go func() {
		done <- watcher.Run(ctx)
	}()

	for {
		select {
		case <-changed:
			logger.Info("Icon directory changed, reloading")
			job.run(os.Stdout)
		case err := <-done:
			if err != nil {
				logger.Error("Icon watcher stopped", "error", err)
				return 1
			}
			return 0
		}
	}
}

// writeIcons prints one line per requested name; aligned columns for a
// terminal and tab separated values otherwise.
func writeIcons(w io.Writer, loaded []images.LoadedImage, tty bool) {
	if !tty {
		for _, img := range loaded {
			fmt.Fprintf(w, "%s\t%t\t%d\t%d\t%s\n", img.Name, img.Success, img.Width, img.Height, img.Path)
		}
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSTATUS\tSIZE\tPATH")
	for _, img := range loaded {
		status := "missing"
		size := "-"
		if img.Success {
			status = "ok"
			size = fmt.Sprintf("%dx%d", img.Width, img.Height)
		}
		p := img.Path
		if p == "" {
			p = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", img.Name, status, size, p)
	}
	tw.Flush()
}

// renderIcons paints each loaded icon at its output size into dir as
// <name>.png.
func renderIcons(dir string, loaded []images.LoadedImage) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for _, img := range loaded {
		if !img.Success {
			continue
		}
		dst := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
		if err := img.Pattern.Render(dst); err != nil {
			return fmt.Errorf("render %s: %w", img.Name, err)
		}
		out := filepath.Join(dir, filepath.Base(img.Name)+".png")
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := png.Encode(f, dst); err != nil {
			f.Close()
			return fmt.Errorf("encode %s: %w", out, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
	}
	return nil
}
