// Package ranking orders functions by PageRank over the call graph and
// selects the most central ones.
package ranking

import (
	"math"
	"sort"

	"github.com/phobologic/scriptgraph/internal/model"
)

// Graph is the read-only call graph view ranking operates on.
type Graph interface {
	Names() []string
	Callees(name string) []string
}

// Rank applies PageRank to g and returns every function sorted by rank
// descending, ties broken by name. Edges point from caller to callee, so
// heavily-called helpers rank highest.
func Rank(g Graph) []model.FunctionRank {
	names := g.Names()
	if len(names) == 0 {
		return nil
	}

	// nodes keeps a fixed order so floating-point sums are reproducible.
	nodes := append([]string(nil), names...)
	seen := make(map[string]struct{}, len(names))
	outEdges := make(map[string][]string)
	outDegree := make(map[string]int)
	callers := make(map[string]int)
	for _, name := range names {
		seen[name] = struct{}{}
	}
	for _, name := range names {
		for _, callee := range g.Callees(name) {
			outEdges[name] = append(outEdges[name], callee)
			outDegree[name]++
			callers[callee]++
			if _, ok := seen[callee]; !ok {
				seen[callee] = struct{}{}
				nodes = append(nodes, callee)
			}
		}
	}

	ranks := pageRank(nodes, outEdges, outDegree, 0.85, 100, 1e-6)

	result := make([]model.FunctionRank, 0, len(names))
	for _, name := range names {
		result = append(result, model.FunctionRank{
			Name:    name,
			Callees: outDegree[name],
			Callers: callers[name],
			Rank:    ranks[name],
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		if result[i].Rank != result[j].Rank {
			return result[i].Rank > result[j].Rank
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// Select returns a view of g restricted to its n highest-ranked functions.
// Registry order and edges between selected functions are preserved.
// If n is <= 0 or covers every function, g is returned unchanged.
func Select(g Graph, n int) Graph {
	names := g.Names()
	if n <= 0 || n >= len(names) {
		return g
	}

	keep := make(map[string]struct{}, n)
	for _, r := range Rank(g)[:n] {
		keep[r.Name] = struct{}{}
	}
	return &subgraph{parent: g, keep: keep}
}

type subgraph struct {
	parent Graph
	keep   map[string]struct{}
}

func (s *subgraph) Names() []string {
	var names []string
	for _, name := range s.parent.Names() {
		if _, ok := s.keep[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

func (s *subgraph) Callees(name string) []string {
	if _, ok := s.keep[name]; !ok {
		return nil
	}
	var callees []string
	for _, callee := range s.parent.Callees(name) {
		if _, ok := s.keep[callee]; ok {
			callees = append(callees, callee)
		}
	}
	return callees
}

func pageRank(
	nodes []string,
	outEdges map[string][]string,
	outDegree map[string]int,
	alpha float64,
	maxIter int,
	tol float64,
) map[string]float64 {
	n := len(nodes)
	if n == 0 {
		return nil
	}

	rank := make(map[string]float64, n)
	initial := 1.0 / float64(n)
	for _, node := range nodes {
		rank[node] = initial
	}

	teleport := (1.0 - alpha) / float64(n)

	for iter := 0; iter < maxIter; iter++ {
		newRank := make(map[string]float64, n)

		// Dangling node contribution (nodes with no outgoing edges)
		var danglingSum float64
		for _, node := range nodes {
			if outDegree[node] == 0 {
				danglingSum += rank[node]
			}
		}
		danglingContrib := alpha * danglingSum / float64(n)

		for _, node := range nodes {
			newRank[node] = teleport + danglingContrib
		}

		for _, src := range nodes {
			targets := outEdges[src]
			if len(targets) == 0 {
				continue
			}
			contrib := alpha * rank[src] / float64(outDegree[src])
			for _, tgt := range targets {
				newRank[tgt] += contrib
			}
		}

		var diff float64
		for _, node := range nodes {
			diff += math.Abs(newRank[node] - rank[node])
		}

		rank = newRank

		if diff < tol {
			break
		}
	}

	return rank
}
