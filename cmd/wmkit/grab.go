package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	"github.com/1broseidon/wmkit/internal/hotkeys"
	"github.com/1broseidon/wmkit/internal/modmask"
	"github.com/1broseidon/wmkit/internal/x11"
)

func runGrab(args []string) int {
	fs := flag.NewFlagSet("grab", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/wmkit/config.yaml)")
	logToFile := fs.Bool("log-file", false, "Log to the state directory instead of stderr")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wmkit grab [--path PATH] [--log-file]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Grab the configured keys and buttons and run their commands until interrupted.")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "grab takes no arguments")
		fs.Usage()
		return 2
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	cfg := res.Config

	logger, closer, err := setupLogger(cfg.Logging, *logToFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		return 1
	}
	defer closer.Close()

	conn, err := x11.NewConnection(cfg.Display)
	if err != nil {
		logger.Error("Failed to connect to display", "error", err)
		return 1
	}
	defer conn.Close()

	keymap, err := conn.Keymap()
	if err != nil {
		logger.Error("Failed to read keyboard mapping", "error", err)
		return 1
	}
	resolver := modmask.NewResolver(keymap)

	handler, err := hotkeys.NewHandler(conn, resolver, ignoreGroups(cfg), logger)
	if err != nil {
		logger.Error("Failed to set up hotkeys", "error", err)
		return 1
	}
	defer handler.Close()

	bindings, planned, err := prepareBindings(cfg, conn.KeycodesFor, resolver)
	if err != nil {
		logger.Error("Invalid binding", "error", err)
		return 1
	}
	run := commandRunner(logger)
	for _, b := range bindings {
		if err := handler.Bind(b, run); err != nil {
			logger.Warn("Failed to grab binding", "kind", b.Kind.String(), "code", b.Code(), "error", err)
		}
	}
	logger.Info("wmkit grab started", "bindings", len(bindings), "planned", planned, "grabs", len(handler.Grabs()))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("Shutting down", "signal", sig.String())
		conn.Quit()
	}()

	conn.EventLoop()
	return 0
}

// commandRunner starts the binding's command through the shell without
// waiting for it in the event loop.
func commandRunner(logger *slog.Logger) hotkeys.Action {
	return func(b modmask.Binding) {
		command, _ := b.Config.(string)
		if command == "" {
			return
		}
		cmd := exec.Command("sh", "-c", command)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
		if err := cmd.Start(); err != nil {
			logger.Warn("Failed to start command", "command", command, "error", err)
			return
		}
		go func() {
			if err := cmd.Wait(); err != nil {
				logger.Debug("Command exited", "command", command, "error", err)
			}
		}()
	}
}
