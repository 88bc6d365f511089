package lang

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"

	"github.com/phobologic/scriptgraph/internal/model"
)

func init() {
	l := &Language{
		Name:               "bash",
		Extensions:         []string{".sh", ".bash"},
		DefinitionKeywords: keywordSet("function"),
		IncludeOperators:   keywordSet(".", "source"),
		lang:               bash.GetLanguage(),
	}
	l.Tokenize = func(source []byte) ([]model.Token, error) {
		return bashTokenize(l, source)
	}
	Languages["bash"] = l
}

var bashKeywords = keywordSet(
	"case", "do", "done", "elif", "else", "esac", "fi", "for", "function",
	"if", "in", "select", "then", "until", "while",
)

// bashTokenize flattens a bash parse tree into the same token stream the
// hand-written scanners produce.
func bashTokenize(l *Language, source []byte) ([]model.Token, error) {
	if len(source) == 0 {
		return nil, nil
	}

	parser, err := l.NewParser()
	if err != nil {
		return nil, err
	}
	tree, err := parser.ParseCtx(context.Background(), nil, source)
	if err != nil {
		return nil, fmt.Errorf("parsing bash source: %w", err)
	}
	defer tree.Close()

	w := &bashWalker{source: source}
	w.walk(tree.RootNode())
	return w.tokens, nil
}

type bashWalker struct {
	source []byte
	tokens []model.Token
}

func (w *bashWalker) emit(kind model.TokenKind, text string, node *sitter.Node) {
	w.tokens = append(w.tokens, model.Token{
		Kind: kind,
		Text: text,
		Line: int(node.StartPoint().Row) + 1,
	})
}

func (w *bashWalker) walk(node *sitter.Node) {
	switch node.Type() {
	case "comment":
		return
	case "function_definition":
		w.function(node)
		return
	case "command":
		w.command(node)
		return
	}

	if node.ChildCount() == 0 {
		w.leaf(node)
		return
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		w.walk(node.Child(i))
	}
}

// function emits a definition keyword even for the name() { ... } form so
// both spellings look the same to the graph passes. Bodies that are not brace
// groups, such as f() ( ... ), are wrapped in synthetic block delimiters so
// the scope still closes where the body ends.
func (w *bashWalker) function(node *sitter.Node) {
	first := node.Child(0)
	if first != nil && first.Type() != "function" {
		w.emit(model.Keyword, "function", first)
	}
	name := node.ChildByFieldName("name")
	body := node.ChildByFieldName("body")
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch {
		case sameNode(child, name):
			w.emit(model.Identifier, child.Content(w.source), child)
		case sameNode(child, body) && child.Type() != "compound_statement":
			w.emit(model.BlockOpen, "{", child)
			w.walk(child)
			w.tokens = append(w.tokens, model.Token{
				Kind: model.BlockClose,
				Text: "}",
				Line: int(child.EndPoint().Row) + 1,
			})
		default:
			w.walk(child)
		}
	}
}

func (w *bashWalker) command(node *sitter.Node) {
	include := false
	targetDone := false
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		switch {
		case child.Type() == "command_name":
			name := child.Content(w.source)
			if name == "." || name == "source" {
				include = true
				w.emit(model.Operator, name, child)
			} else {
				w.emit(model.Identifier, name, child)
			}
		case include && !targetDone && isArgument(child):
			targetDone = true
			w.emit(model.Identifier, unquote(child.Content(w.source)), child)
		case child.Type() == "word":
			w.emit(model.Argument, child.Content(w.source), child)
		default:
			w.walk(child)
		}
	}
}

func (w *bashWalker) leaf(node *sitter.Node) {
	text := node.Content(w.source)
	parent := node.Parent()

	switch {
	case text == "{" && parent != nil && parent.Type() == "compound_statement":
		w.emit(model.BlockOpen, text, node)
	case text == "}" && parent != nil && parent.Type() == "compound_statement":
		w.emit(model.BlockClose, text, node)
	case !node.IsNamed():
		if _, ok := bashKeywords[text]; ok {
			w.emit(model.Keyword, text, node)
			return
		}
		w.emit(model.Operator, text, node)
	case node.Type() == "word":
		w.emit(model.Argument, text, node)
	default:
		w.emit(model.Other, text, node)
	}
}

var bashArgumentTypes = keywordSet(
	"word", "string", "raw_string", "concatenation", "simple_expansion", "expansion", "number",
)

func isArgument(node *sitter.Node) bool {
	_, ok := bashArgumentTypes[node.Type()]
	return ok
}

func sameNode(a, b *sitter.Node) bool {
	if a == nil || b == nil {
		return false
	}
	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}
