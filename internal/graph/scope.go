package graph

import "github.com/phobologic/scriptgraph/internal/model"

// frame is one open function scope and the brace depth at which its body
// was entered.
type frame struct {
	name  string
	depth int
	root  bool
}

// ScopeStack tracks the functions whose bodies enclose the current token.
// The bottom frame is the synthetic root and is never popped.
type ScopeStack struct {
	frames []frame
}

// NewScopeStack returns a stack seeded with root.
func NewScopeStack(root string) *ScopeStack {
	return &ScopeStack{frames: []frame{{name: model.Normalize(root), root: true}}}
}

// Push opens a function scope entered at the given brace depth.
func (s *ScopeStack) Push(name string, depth int) {
	s.frames = append(s.frames, frame{name: model.Normalize(name), depth: depth})
}

// PushRoot opens a fresh root scope, used while an included file is walked.
func (s *ScopeStack) PushRoot() {
	s.frames = append(s.frames, frame{name: s.frames[0].name, root: true})
}

// Pop closes the innermost scope. Root scopes are never removed.
func (s *ScopeStack) Pop() {
	if s.AtRoot() {
		return
	}
	s.frames = s.frames[:len(s.frames)-1]
}

// Top returns the innermost scope name.
func (s *ScopeStack) Top() string {
	return s.frames[len(s.frames)-1].name
}

// TopDepth returns the brace depth at which the innermost scope was entered.
func (s *ScopeStack) TopDepth() int {
	return s.frames[len(s.frames)-1].depth
}

// AtRoot reports whether the innermost scope is a root scope.
func (s *ScopeStack) AtRoot() bool {
	return s.frames[len(s.frames)-1].root
}

// Len returns the number of open scopes, root included.
func (s *ScopeStack) Len() int {
	return len(s.frames)
}

// Truncate discards scopes above n, restoring an earlier stack height.
func (s *ScopeStack) Truncate(n int) {
	if n < 1 {
		n = 1
	}
	if n < len(s.frames) {
		s.frames = s.frames[:n]
	}
}
