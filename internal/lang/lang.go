// Package lang provides a dialect registry mapping file extensions to
// script tokenizers.
package lang

import (
	"fmt"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phobologic/scriptgraph/internal/model"
)

// Language describes one script dialect: how to tokenize it and which tokens
// define functions or pull in other files.
type Language struct {
	Name       string
	Extensions []string

	// DefinitionKeywords holds the lower-cased keywords that introduce a
	// named function definition.
	DefinitionKeywords map[string]struct{}

	// IncludeOperators holds the operator texts that dot-source a file.
	IncludeOperators map[string]struct{}

	// Tokenize converts raw file content into non-comment tokens.
	Tokenize func(source []byte) ([]model.Token, error)

	// lang is set only for dialects tokenized through tree-sitter.
	lang *sitter.Language
}

// NewParser creates a fresh tree-sitter parser for this language.
// Each goroutine must use its own parser (not thread-safe). Dialects with a
// hand-written scanner have no grammar and return an error.
func (l *Language) NewParser() (*sitter.Parser, error) {
	if l.lang == nil {
		return nil, fmt.Errorf("%s: no tree-sitter grammar", l.Name)
	}
	p := sitter.NewParser()
	p.SetLanguage(l.lang)
	return p, nil
}

// IsDefinition reports whether tok introduces a function definition.
func (l *Language) IsDefinition(tok model.Token) bool {
	if tok.Kind != model.Keyword {
		return false
	}
	_, ok := l.DefinitionKeywords[strings.ToLower(tok.Text)]
	return ok
}

// IsInclude reports whether tok is a standalone inclusion operator.
func (l *Language) IsInclude(tok model.Token) bool {
	if tok.Kind != model.Operator {
		return false
	}
	_, ok := l.IncludeOperators[strings.ToLower(tok.Text)]
	return ok
}

// Languages maps language names to their configuration.
// Populated by init() functions in per-language files.
var Languages = map[string]*Language{}

// extensionMap is built lazily after all init() functions have run.
var extensionMap map[string]string
var extensionOnce sync.Once

func getExtensionMap() map[string]string {
	extensionOnce.Do(func() {
		extensionMap = make(map[string]string)
		for _, l := range Languages {
			for _, ext := range l.Extensions {
				extensionMap[ext] = l.Name
			}
		}
	})
	return extensionMap
}

// ForExtension returns the language name for a file extension, or "" if unsupported.
// Extensions are matched case-insensitively (".PS1" and ".ps1" are the same).
func ForExtension(ext string) string {
	return getExtensionMap()[strings.ToLower(ext)]
}

func keywordSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}
