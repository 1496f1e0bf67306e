// wsc assigns workshop variables for a compilation unit and prints the
// resulting variables block.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/wsc/ledger"
	"github.com/chazu/wsc/manifest"
	"github.com/chazu/wsc/storage"
	"github.com/chazu/wsc/workshop"
)

var log = commonlog.GetLogger("wsc")

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	configPath := flag.String("config", "", "Path to wsc.toml (default: search upward from the current directory)")
	ruleClass := flag.String("context", "global", "Rule class contextual variables are lowered under: global or player")
	ledgerPath := flag.String("ledger", "", "SQLite ledger recording layouts across compiles")
	snapshotPath := flag.String("snapshot", "", "Write the layout as CBOR to this file")
	showFrames := flag.Bool("frames", false, "Print the frame push and pop actions of recursive variables")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: wsc [options] decls.toml...\n\n")
		fmt.Fprintf(os.Stderr, "Assigns workshop variables for the declarations and prints the variables block.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  wsc main.decl.toml                      # Print the variables block\n")
		fmt.Fprintf(os.Stderr, "  wsc -context player hud.decl.toml       # Lower under a player rule\n")
		fmt.Fprintf(os.Stderr, "  wsc -ledger .wsc/ledger.db *.decl.toml  # Report variables that moved\n")
	}
	flag.Parse()

	if *verbose {
		commonlog.Configure(2, nil)
	} else {
		commonlog.Configure(0, nil)
	}

	paths := flag.Args()
	if len(paths) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	class, err := workshop.ParseClass(*ruleClass)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var entries []manifest.Entry
	for _, path := range paths {
		e, err := manifest.LoadDeclarations(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		entries = append(entries, e...)
	}
	log.Infof("loaded %d declarations from %d files", len(entries), len(paths))

	u := compile(cfg, entries, class)
	for _, s := range u.diags.Strings() {
		fmt.Fprintln(os.Stderr, s)
	}
	if u.diags.HasErrors() {
		os.Exit(1)
	}

	layout := u.alloc.Layout()
	fmt.Print(layout.Render())
	if l := u.listing(); l != "" {
		fmt.Println()
		fmt.Print(l)
	}
	if *showFrames {
		out, err := u.frames()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if out != "" {
			fmt.Println()
			fmt.Print(out)
		}
	}

	if *snapshotPath != "" {
		data, err := storage.MarshalLayout(layout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*snapshotPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing snapshot: %v\n", err)
			os.Exit(1)
		}
	}

	if *ledgerPath != "" {
		if err := record(os.Stderr, *ledgerPath, unitName(cfg, paths), layout); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

func loadConfig(path string) (*manifest.Config, error) {
	if path != "" {
		return manifest.LoadFile(path)
	}
	cfg, err := manifest.FindAndLoad(".")
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return &manifest.Config{}, nil
	}
	return cfg, nil
}

// unitName identifies the unit in the ledger: the project name, or the
// first declaration file without its extensions.
func unitName(cfg *manifest.Config, paths []string) string {
	if cfg.Project.Name != "" {
		return cfg.Project.Name
	}
	base := filepath.Base(paths[0])
	if i := strings.Index(base, "."); i > 0 {
		base = base[:i]
	}
	return base
}

// record stores layout in the ledger and reports to w what moved since the
// previous compile of the unit.
func record(w io.Writer, path, unit string, layout *storage.Layout) error {
	ctx := context.Background()
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating ledger dir: %w", err)
		}
	}
	l, err := ledger.Open(ctx, path)
	if err != nil {
		return err
	}
	defer l.Close()

	prev, err := l.Latest(ctx, unit)
	switch {
	case err == nil:
		for _, c := range ledger.Diff(prev.Layout, layout) {
			fmt.Fprintf(w, "wsc: %s\n", c)
		}
	case !errors.Is(err, ledger.ErrNoSnapshot):
		return err
	}
	_, err = l.Record(ctx, unit, layout)
	return err
}
