// Package render serializes a call graph into diagram text.
package render

import (
	"fmt"
	"strings"
)

// Graph is the read-only view of a call graph the renderers need.
// Names and Callees must return entries in insertion order.
type Graph interface {
	Names() []string
	Callees(name string) []string
}

// Directions lists the Mermaid flowchart directions accepted by Mermaid.
var Directions = []string{"TD", "TB", "BT", "LR", "RL"}

// Mermaid renders g as a Mermaid flowchart. Every function with callees gets
// one "caller --> callee" line per callee; functions without callees get a
// bare node line. Entries keep registry order and the result has no
// trailing newline.
func Mermaid(g Graph, title, direction string) string {
	if direction == "" {
		direction = "TD"
	}

	lines := []string{
		"---",
		"title: " + title,
		"---",
		"graph " + direction,
	}
	for _, name := range g.Names() {
		callees := g.Callees(name)
		if len(callees) == 0 {
			lines = append(lines, "    "+name)
			continue
		}
		for _, callee := range callees {
			lines = append(lines, "    "+name+" --> "+callee)
		}
	}
	return strings.Join(lines, "\n")
}

// DOT renders g as a Graphviz digraph in the same order as Mermaid.
func DOT(g Graph, title string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "digraph %s {\n", quoteID(title))
	fmt.Fprintf(&b, "  label=%s;\n", quoteID(title))
	b.WriteString("  labelloc=t;\n")
	b.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	for _, name := range g.Names() {
		callees := g.Callees(name)
		if len(callees) == 0 {
			fmt.Fprintf(&b, "  %s;\n", quoteID(name))
			continue
		}
		for _, callee := range callees {
			fmt.Fprintf(&b, "  %s -> %s;\n", quoteID(name), quoteID(callee))
		}
	}
	b.WriteString("}")
	return b.String()
}

func quoteID(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}
