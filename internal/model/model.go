// Package model defines core data structures for scriptgraph.
package model

import "strings"

// TokenKind classifies a lexical unit produced by a dialect tokenizer.
type TokenKind string

const (
	Keyword    TokenKind = "keyword"
	Identifier TokenKind = "identifier"
	Argument   TokenKind = "argument"
	Operator   TokenKind = "operator"
	BlockOpen  TokenKind = "block-open"
	BlockClose TokenKind = "block-close"
	Other      TokenKind = "other"
)

// Token is a single non-comment lexical unit from a script file.
type Token struct {
	Kind TokenKind
	Text string
	Line int
}

// DefaultRoot names the synthetic scope that owns top-level calls.
const DefaultRoot = "main"

// Normalize returns the canonical registry identity for a function name.
// Every name stored in or compared against the registry passes through here.
func Normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CallEdge is a caller→callee pair in the rendered graph.
type CallEdge struct {
	Caller string
	Callee string
}

// FunctionRank summarizes one registry entry for ranked output.
type FunctionRank struct {
	Name    string
	Callees int
	Callers int
	Rank    float64
}

// GraphMap is the complete analyzed call graph, ready for serialization.
type GraphMap struct {
	Title     string
	Root      string
	Inputs    []string
	Functions []FunctionRank
	Calls     []CallEdge
}
