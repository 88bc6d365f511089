package graph

import "github.com/phobologic/scriptgraph/internal/model"

// Attribute records a caller→callee edge for every reference to a known
// function in path, attributing it to the innermost enclosing function on
// scopes. Included files are walked with the same stack.
func (w *Walker) Attribute(path string, reg *Registry, scopes *ScopeStack) {
	w.attribute(path, reg, scopes, nil)
}

func (w *Walker) attribute(path string, reg *Registry, scopes *ScopeStack, chain []string) {
	src, ok := w.read(path, chain)
	if !ok {
		return
	}
	chain = append(chain[:len(chain):len(chain)], chainKey(path))

	depth := 0
	var expectName, expectInclude bool
	for _, tok := range src.Tokens {
		if src.Language.IsDefinition(tok) {
			expectName = true
			continue
		}

		if expectName {
			expectName = false
			if isName(tok) {
				scopes.Push(tok.Text, depth)
				continue
			}
		}

		if src.Language.IsInclude(tok) {
			expectInclude = true
			continue
		}

		if expectInclude {
			expectInclude = false
			if tok.Kind == model.Identifier {
				// The included file's top level belongs to the root scope; the
				// includer resumes with its own scope once the walk returns.
				height := scopes.Len()
				scopes.PushRoot()
				w.attribute(target(path, tok), reg, scopes, chain)
				scopes.Truncate(height)
				continue
			}
			// Block delimiters still count toward depth.
			if tok.Kind != model.BlockOpen && tok.Kind != model.BlockClose {
				continue
			}
		}

		switch tok.Kind {
		case model.BlockOpen:
			depth++
		case model.BlockClose:
			depth--
			if !scopes.AtRoot() && depth == scopes.TopDepth() {
				scopes.Pop()
			}
		case model.Identifier, model.Argument:
			if reg.Has(tok.Text) {
				reg.AddEdge(scopes.Top(), tok.Text)
			}
		}
	}
}
