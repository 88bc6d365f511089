// Package graph builds a function call graph from tokenized scripts.
package graph

import "github.com/phobologic/scriptgraph/internal/model"

// Registry maps each known function to the functions it calls. Keys and
// callee lists keep insertion order so rendering is deterministic.
type Registry struct {
	order   []string
	callees map[string][]string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{callees: make(map[string][]string)}
}

// Define registers name with an empty callee list, discarding any edges
// recorded for an earlier definition of the same name.
func (r *Registry) Define(name string) {
	name = model.Normalize(name)
	if _, ok := r.callees[name]; !ok {
		r.order = append(r.order, name)
	}
	r.callees[name] = []string{}
}

// EnsureDefault registers name only if it is not already known.
func (r *Registry) EnsureDefault(name string) {
	name = model.Normalize(name)
	if _, ok := r.callees[name]; ok {
		return
	}
	r.order = append(r.order, name)
	r.callees[name] = []string{}
}

// Has reports whether name is a known function.
func (r *Registry) Has(name string) bool {
	_, ok := r.callees[model.Normalize(name)]
	return ok
}

// AddEdge records that caller invokes callee. Unknown callees and repeated
// edges are ignored.
func (r *Registry) AddEdge(caller, callee string) {
	caller = model.Normalize(caller)
	callee = model.Normalize(callee)
	if _, ok := r.callees[callee]; !ok {
		return
	}
	if _, ok := r.callees[caller]; !ok {
		r.order = append(r.order, caller)
	}
	if contains(r.callees[caller], callee) {
		return
	}
	r.callees[caller] = append(r.callees[caller], callee)
}

// Names returns every registered function in insertion order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Callees returns the functions called by name, in the order first seen.
func (r *Registry) Callees(name string) []string {
	return append([]string(nil), r.callees[model.Normalize(name)]...)
}

// Len returns the number of registered functions.
func (r *Registry) Len() int {
	return len(r.order)
}

// Edges flattens the registry into caller→callee pairs in render order.
func (r *Registry) Edges() []model.CallEdge {
	var edges []model.CallEdge
	for _, caller := range r.order {
		for _, callee := range r.callees[caller] {
			edges = append(edges, model.CallEdge{Caller: caller, Callee: callee})
		}
	}
	return edges
}

func contains(slice []string, s string) bool {
	for _, v := range slice {
		if v == s {
			return true
		}
	}
	return false
}
