package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/phobologic/scriptgraph/internal/config"
)

// runInit implements the `scriptgraph init` subcommand, which writes a
// starter scriptgraph.toml.
func runInit(args []string, stdout, stderr io.Writer) error {
	fset := flag.NewFlagSet("scriptgraph init", flag.ContinueOnError)
	fset.SetOutput(stderr)

	var dryRun, force bool
	fset.BoolVar(&dryRun, "dry-run", false, "print the config instead of writing it")
	fset.BoolVar(&force, "force", false, "overwrite an existing config file")

	fset.Usage = func() {
		fmt.Fprintf(stderr, `Usage: scriptgraph init [flags] [path]

Write a starter scriptgraph configuration with every setting at its default
value. path defaults to ./%s.

Flags:
`, config.DefaultPath)
		fset.PrintDefaults()
	}

	if err := fset.Parse(args); err != nil {
		return err
	}

	content, err := starterConfig(config.Default())
	if err != nil {
		return err
	}

	if dryRun {
		_, _ = fmt.Fprint(stdout, content)
		return nil
	}

	path := config.DefaultPath
	if fset.NArg() > 0 {
		path = fset.Arg(0)
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use -force to overwrite)", path)
		} else if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("checking %s: %w", path, err)
		}
	}

	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	_, _ = fmt.Fprintf(stderr, "wrote scriptgraph config to %s\n", path)
	return nil
}

// starterConfig renders cfg as a commented TOML document.
func starterConfig(cfg *config.Config) (string, error) {
	settings := map[string]any{
		"format":           cfg.Format,
		"direction":        cfg.Direction,
		"default_language": cfg.DefaultLanguage,
		"max_file_size":    cfg.MaxFileSize,
		"exclude":          []string{"*.Tests.ps1"},
	}

	var b strings.Builder
	b.WriteString(`# scriptgraph configuration.
#
# title = "Deploy scripts"   # diagram title (default: first input's file name)
# root = "main"              # scope that receives top-level calls
#
# format is one of ` + strings.Join(config.Formats, ", ") + `.

`)
	if err := toml.NewEncoder(&b).Encode(settings); err != nil {
		return "", fmt.Errorf("encoding config: %w", err)
	}
	b.WriteString(`
# Map extra file extensions to a dialect (powershell or bash).
[extensions]
# ".psrc" = "powershell"

[watch]
debounce = "` + cfg.Watch.Debounce.String() + `"
`)
	return b.String(), nil
}
