// scriptgraph generates a function call graph for PowerShell and shell
// scripts, following dot-sourced includes.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/phobologic/scriptgraph/internal/config"
	"github.com/phobologic/scriptgraph/internal/discover"
	"github.com/phobologic/scriptgraph/internal/graph"
	"github.com/phobologic/scriptgraph/internal/lang"
	"github.com/phobologic/scriptgraph/internal/logging"
	"github.com/phobologic/scriptgraph/internal/model"
	"github.com/phobologic/scriptgraph/internal/parse"
	"github.com/phobologic/scriptgraph/internal/ranking"
	"github.com/phobologic/scriptgraph/internal/render"
	"github.com/phobologic/scriptgraph/internal/toon"
	"github.com/phobologic/scriptgraph/internal/watch"
)

var version = "dev"

func main() {
	var err error
	if len(os.Args) > 1 && os.Args[1] == "init" {
		err = runInit(os.Args[2:], os.Stdout, os.Stderr)
	} else {
		err = run(os.Args[1:], os.Stdout, os.Stderr)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("scriptgraph", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		output      string
		configPath  string
		format      string
		title       string
		root        string
		direction   string
		top         int
		verbose     bool
		watchMode   bool
		showVersion bool
	)

	fs.StringVar(&output, "o", "", "output file (default stdout)")
	fs.StringVar(&output, "output", "", "output file (default stdout)")
	fs.StringVar(&configPath, "c", "", "config file (default ./"+config.DefaultPath+" if present)")
	fs.StringVar(&configPath, "config", "", "config file (default ./"+config.DefaultPath+" if present)")
	fs.StringVar(&format, "f", "", "output format: "+strings.Join(config.Formats, ", "))
	fs.StringVar(&format, "format", "", "output format: "+strings.Join(config.Formats, ", "))
	fs.StringVar(&title, "t", "", "diagram title (default: base name of the first input)")
	fs.StringVar(&title, "title", "", "diagram title (default: base name of the first input)")
	fs.StringVar(&root, "root", "", "name of the scope for top-level calls (default \""+model.DefaultRoot+"\")")
	fs.StringVar(&direction, "direction", "", "Mermaid graph direction: "+strings.Join(render.Directions, ", "))
	fs.IntVar(&top, "top", 0, "keep only the N most central functions")
	fs.BoolVar(&verbose, "verbose", false, "log per-file progress")
	fs.BoolVar(&watchMode, "watch", false, "regenerate the output whenever a script changes")
	fs.BoolVar(&showVersion, "V", false, "show version and exit")
	fs.BoolVar(&showVersion, "version", false, "show version and exit")

	fs.Usage = func() {
		fmt.Fprintf(stderr, `Usage: scriptgraph [flags] <path[,path...]> [output]
       scriptgraph init [-dry-run] [path]

Scan the given scripts (and the files they dot-source) and write their call
graph. Directories are expanded to the scripts they contain.

Flags:
`)
		fs.PrintDefaults()
	}

	if err := fs.Parse(reorderArgs(args)); err != nil {
		return err
	}

	if showVersion {
		_, _ = fmt.Fprintf(stdout, "scriptgraph %s\n", version)
		return nil
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no input files given")
	}
	inputs := splitInputs(fs.Arg(0))
	if len(inputs) == 0 {
		return errors.New("no input files given")
	}
	if output == "" && fs.NArg() > 1 {
		output = fs.Arg(1)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if format != "" {
		cfg.Format = format
	}
	if direction != "" {
		cfg.Direction = direction
	}
	if title != "" {
		cfg.Title = title
	}
	if root != "" {
		cfg.Root = root
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if top < 0 {
		return fmt.Errorf("-top must not be negative")
	}
	if cfg.Title == "" {
		cfg.Title = filepath.Base(inputs[0])
	}

	g := &generator{
		cfg:    cfg,
		inputs: inputs,
		output: output,
		top:    top,
		stdout: stdout,
		logger: logging.New(stderr, verbose),
	}
	if err := g.generate(); err != nil {
		return err
	}

	if !watchMode {
		return nil
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return g.watch(ctx)
}

// generator runs the scan-and-render pipeline for one configuration.
type generator struct {
	cfg    *config.Config
	inputs []string
	output string
	top    int
	stdout io.Writer
	logger *slog.Logger
}

func (g *generator) generate() error {
	paths, err := discover.Inputs(g.inputs, discover.Options{
		Extensions: g.cfg.Extensions,
		Exclude:    g.cfg.Exclude,
	})
	if err != nil {
		return err
	}

	reader := &parse.Reader{
		Fallback:    g.cfg.DefaultLanguage,
		Extensions:  g.cfg.Extensions,
		MaxFileSize: g.cfg.MaxFileSize,
	}
	reg := graph.NewWalker(reader, g.logger).Build(paths, g.cfg.Root)

	var view render.Graph = reg
	if g.top > 0 {
		view = ranking.Select(reg, g.top)
	}

	text := g.render(view, paths)

	if g.output == "" {
		_, err := fmt.Fprintln(g.stdout, text)
		return err
	}
	if err := os.WriteFile(g.output, []byte(text), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", g.output, err)
	}
	g.logger.Info("wrote call graph", "path", g.output, "functions", len(view.Names()))
	return nil
}

func (g *generator) render(view render.Graph, paths []string) string {
	switch g.cfg.Format {
	case "dot":
		return render.DOT(view, g.cfg.Title)
	case "toon":
		rootName := model.Normalize(g.cfg.Root)
		if rootName == "" {
			rootName = model.DefaultRoot
		}
		return toon.Encode(&model.GraphMap{
			Title:     g.cfg.Title,
			Root:      rootName,
			Inputs:    paths,
			Functions: ranking.Rank(view),
			Calls:     edges(view),
		})
	default:
		return render.Mermaid(view, g.cfg.Title, g.cfg.Direction)
	}
}

// watch regenerates the output on every batch of script changes until ctx
// is cancelled.
func (g *generator) watch(ctx context.Context) error {
	w, err := watch.New(g.cfg.Watch.Debounce, g.cfg.Exclude, g.isScript, g.logger, func(changed []string) {
		g.logger.Info("regenerating call graph", "changed", len(changed))
		if err := g.generate(); err != nil {
			g.logger.Error("regeneration failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer w.Close()

	if err := w.Watch(g.inputs); err != nil {
		return fmt.Errorf("watching inputs: %w", err)
	}
	g.logger.Info("watching for changes", "inputs", strings.Join(g.inputs, ","))

	<-ctx.Done()
	return nil
}

func (g *generator) isScript(path string) bool {
	if g.output != "" && filepath.Clean(path) == filepath.Clean(g.output) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	if _, ok := g.cfg.Extensions[ext]; ok {
		return true
	}
	return lang.ForExtension(ext) != ""
}

func edges(view render.Graph) []model.CallEdge {
	var out []model.CallEdge
	for _, name := range view.Names() {
		for _, callee := range view.Callees(name) {
			out = append(out, model.CallEdge{Caller: name, Callee: callee})
		}
	}
	return out
}

// splitInputs parses the comma-separated input list, dropping empty entries.
func splitInputs(arg string) []string {
	var inputs []string
	for _, p := range strings.Split(arg, ",") {
		if p = strings.TrimSpace(p); p != "" {
			inputs = append(inputs, p)
		}
	}
	return inputs
}

// flagsWithValue lists flags that take a value argument.
var flagsWithValue = map[string]bool{
	"-o": true, "--o": true,
	"-output": true, "--output": true,
	"-c": true, "--c": true,
	"-config": true, "--config": true,
	"-f": true, "--f": true,
	"-format": true, "--format": true,
	"-t": true, "--t": true,
	"-title": true, "--title": true,
	"-root": true, "--root": true,
	"-direction": true, "--direction": true,
	"-top": true, "--top": true,
}

// reorderArgs moves positional arguments after all flags so Go's flag package
// can parse them correctly (it stops at the first non-flag arg).
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			positional = append(positional, args[i+1:]...)
			break
		}
		if len(args[i]) > 0 && args[i][0] == '-' {
			flags = append(flags, args[i])
			if flagsWithValue[args[i]] && i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, args[i])
		}
	}
	return append(flags, positional...)
}
