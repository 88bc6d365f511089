package graph

import (
	"log/slog"
	"path/filepath"

	"github.com/phobologic/scriptgraph/internal/include"
	"github.com/phobologic/scriptgraph/internal/logging"
	"github.com/phobologic/scriptgraph/internal/model"
	"github.com/phobologic/scriptgraph/internal/parse"
)

// SourceReader loads and tokenizes one script file.
type SourceReader interface {
	Read(path string) (*parse.Source, error)
}

// Walker runs the definition and call-attribution passes over script files,
// following dot-sourced includes depth-first.
type Walker struct {
	Reader SourceReader
	Logger *slog.Logger
}

// NewWalker returns a Walker reading through r. A nil logger discards output.
func NewWalker(r SourceReader, logger *slog.Logger) *Walker {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Walker{Reader: r, Logger: logger}
}

// Build runs both passes over paths and returns the populated registry.
// root names the synthetic scope for top-level calls; empty means "main".
func (w *Walker) Build(paths []string, root string) *Registry {
	if root == "" {
		root = model.DefaultRoot
	}

	reg := NewRegistry()
	reg.EnsureDefault(root)
	for _, p := range paths {
		w.Discover(p, reg)
	}

	scopes := NewScopeStack(root)
	for _, p := range paths {
		height := scopes.Len()
		w.Attribute(p, reg, scopes)
		// Frames left open by an unbalanced file must not swallow the
		// next file's top-level calls.
		scopes.Truncate(height)
	}

	logging.LogVerbose(w.Logger, "call graph built", "functions", reg.Len(), "edges", len(reg.Edges()))
	return reg
}

// read loads path unless it is already being walked further up the include
// chain. Failures are logged and reported as ok=false.
func (w *Walker) read(path string, chain []string) (*parse.Source, bool) {
	if onChain(chain, path) {
		logging.Log(w.Logger, "skipping recursive include", logging.Warning, "path", path, "included_from", chain[len(chain)-1])
		return nil, false
	}

	src, err := w.Reader.Read(path)
	if err != nil {
		if len(chain) == 0 {
			logging.Log(w.Logger, "cannot read script", logging.Error, "path", path, "error", err)
		} else {
			logging.Log(w.Logger, "cannot read included script", logging.Warning, "path", path, "included_from", chain[len(chain)-1], "error", err)
		}
		return nil, false
	}

	logging.Log(w.Logger, "scanning script", logging.Verbose, "path", path, "language", src.Language.Name, "tokens", len(src.Tokens))
	return src, true
}

// target resolves an include token found in the file at path.
func target(path string, tok model.Token) string {
	return include.Resolve(path, include.Clean(tok.Text))
}

// isName reports whether tok can serve as a function name after a definition
// keyword. Line breaks and block delimiters cannot.
func isName(tok model.Token) bool {
	if tok.Kind == model.BlockOpen || tok.Kind == model.BlockClose {
		return false
	}
	return model.Normalize(tok.Text) != ""
}

func chainKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

func onChain(chain []string, path string) bool {
	key := chainKey(path)
	for _, c := range chain {
		if c == key {
			return true
		}
	}
	return false
}
