package graph

import "github.com/phobologic/scriptgraph/internal/model"

// Discover registers every function defined in path and, transitively, in
// the files it dot-sources. Includes are followed at the point they appear
// and are re-read at every inclusion site.
func (w *Walker) Discover(path string, reg *Registry) {
	w.discover(path, reg, nil)
}

func (w *Walker) discover(path string, reg *Registry, chain []string) {
	src, ok := w.read(path, chain)
	if !ok {
		return
	}
	chain = append(chain[:len(chain):len(chain)], chainKey(path))

	var expectName, expectInclude bool
	for _, tok := range src.Tokens {
		if src.Language.IsDefinition(tok) {
			expectName = true
			continue
		}
		if expectName {
			expectName = false
			if isName(tok) {
				reg.Define(tok.Text)
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
				w.discover(target(path, tok), reg, chain)
			}
		}
	}
}
