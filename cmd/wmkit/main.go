package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/1broseidon/wmkit/internal/config"
	"github.com/1broseidon/wmkit/internal/logfile"
	"github.com/1broseidon/wmkit/internal/xdgpath"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "grab":
		os.Exit(runGrab(os.Args[2:]))
	case "masks":
		os.Exit(runMasks(os.Args[2:]))
	case "icons":
		os.Exit(runIcons(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: wmkit <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  grab                Grab configured bindings and run their commands (foreground)")
	fmt.Fprintln(w, "  masks               Resolve modifier names to X11 masks")
	fmt.Fprintln(w, "  icons               Find and load icons by name")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'wmkit <command> --help' for command-specific options.")
}

// parseFlags parses args, mapping -h to exit code 0 and other errors to 2.
// ok is false when the caller should return code.
func parseFlags(fs *flag.FlagSet, args []string) (code int, ok bool) {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	return 0, true
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

// setupLogger builds the process logger from cfg. The returned closer is
// never nil.
func setupLogger(cfg config.LoggingConfig, toFile bool) (*slog.Logger, io.Closer, error) {
	level := logfile.ParseLevel(cfg.Level)
	if !toFile && cfg.File == "" {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		return logger, nopCloser{}, nil
	}

	path := cfg.File
	if path == "" {
		p, err := xdgpath.LogPath()
		if err != nil {
			return nil, nil, err
		}
		path = p
	}
	w, err := logfile.Open(logfile.Config{
		Path:      path,
		Level:     level,
		MaxSizeMB: cfg.MaxSizeMB,
		MaxFiles:  cfg.MaxFiles,
	})
	if err != nil {
		return nil, nil, err
	}
	return w.Logger(), w, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  wmkit config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  wmkit config print [--path PATH] [--defaults]")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/wmkit/config.yaml)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/wmkit/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if code, ok := parseFlags(fs, args[1:]); !ok {
			return code
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			if res.File != "" {
				fmt.Printf("# source: %s\n", res.File)
			}
			cfg = res.Config
		}
		data, err := config.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config command: %s\n", args[0])
		return 2
	}
}
