// Package parse loads script files and turns them into token streams.
package parse

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/phobologic/scriptgraph/internal/lang"
	"github.com/phobologic/scriptgraph/internal/model"
)

// ErrSourceUnavailable is returned when a script cannot be located or read.
// Callers treat it as non-fatal: the affected file is skipped.
var ErrSourceUnavailable = errors.New("source unavailable")

// Source is one tokenized script file.
type Source struct {
	Path     string
	Language *lang.Language
	Tokens   []model.Token
}

// Reader loads scripts from disk.
type Reader struct {
	// Fallback names the dialect used when a file's extension is not
	// registered. Empty means "powershell".
	Fallback string

	// Extensions maps extra file extensions (".ps1x") to dialect names.
	Extensions map[string]string

	// MaxFileSize skips files larger than this many bytes. Zero disables
	// the limit.
	MaxFileSize int64
}

// Read checks that path exists, reads it in full and tokenizes it with the
// dialect selected by its extension.
func (r *Reader) Read(path string) (*Source, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s: is a directory", ErrSourceUnavailable, path)
	}
	if r.MaxFileSize > 0 && info.Size() > r.MaxFileSize {
		return nil, fmt.Errorf("%w: %s: exceeds %d bytes", ErrSourceUnavailable, path, r.MaxFileSize)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}

	l, err := r.languageFor(path)
	if err != nil {
		return nil, err
	}

	tokens, err := l.Tokenize(source)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrSourceUnavailable, path, err)
	}

	return &Source{Path: path, Language: l, Tokens: tokens}, nil
}

func (r *Reader) languageFor(path string) (*lang.Language, error) {
	ext := strings.ToLower(filepath.Ext(path))

	name := r.Extensions[ext]
	if name == "" {
		name = lang.ForExtension(ext)
	}
	if name == "" {
		name = r.Fallback
	}
	if name == "" {
		name = "powershell"
	}

	l, ok := lang.Languages[name]
	if !ok {
		return nil, fmt.Errorf("unsupported language %q for %s", name, path)
	}
	return l, nil
}
