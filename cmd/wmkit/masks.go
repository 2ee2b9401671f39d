package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/1broseidon/wmkit/internal/modmask"
	"github.com/1broseidon/wmkit/internal/x11"
	"golang.org/x/term"
)

var defaultMaskNames = []string{
	"shift", "lock", "control", "mod1", "mod2", "mod3", "mod4", "mod5",
	"Num_Lock", "Caps_Lock", "Scroll_Lock", "Super_L", "Alt_L", "Meta_L", "Hyper_L",
}

func runMasks(args []string) int {
	fs := flag.NewFlagSet("masks", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/wmkit/config.yaml)")
	showIgnore := fs.Bool("ignore", false, "Also print the configured ignore masks")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: wmkit masks [--path PATH] [--ignore] [name...]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Resolve modifier and keysym names to X11 modifier masks.")
		fs.PrintDefaults()
	}
	if code, ok := parseFlags(fs, args); !ok {
		return code
	}

	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	conn, err := x11.NewConnection(res.Config.Display)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer conn.Close()

	keymap, err := conn.Keymap()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	resolver := modmask.NewResolver(keymap)

	names := fs.Args()
	if len(names) == 0 {
		names = defaultMaskNames
	}
	masks, err := resolver.Masks(names)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	tty := term.IsTerminal(int(os.Stdout.Fd()))
	writeMasks(os.Stdout, names, masks, tty)

	if *showIgnore {
		ignore, err := resolver.IgnoreMasks(ignoreGroups(res.Config))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println()
		for _, m := range ignore {
			fmt.Printf("ignore\t%#04x\n", m)
		}
	}
	return 0
}

// writeMasks prints one name per line; aligned columns for a terminal and
// tab separated values otherwise.
func writeMasks(w io.Writer, names []string, masks []uint16, tty bool) {
	if !tty {
		for i, name := range names {
			fmt.Fprintf(w, "%s\t%d\n", name, masks[i])
		}
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMASK\tHEX")
	for i, name := range names {
		fmt.Fprintf(tw, "%s\t%d\t%#04x\n", name, masks[i], masks[i])
	}
	tw.Flush()
}
