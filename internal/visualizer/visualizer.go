// Package visualizer renders graphs as Graphviz DOT source.
package visualizer

import (
	"bytes"
	"fmt"
	"slices"
	"strings"

	"github.com/comalice/graphfsm"
)

// ExportDOT generates Graphviz DOT source for g. The current node of g and of
// every running sub-machine is highlighted, decision nodes are diamonds and the
// initial node has a double border.
func ExportDOT(g *graphfsm.Graph) string {
	var buf bytes.Buffer
	buf.WriteString(`digraph Graph {
  rankdir=LR;
  node [shape=box, fontsize=10, style=rounded];
  edge [fontsize=9];
`)
	renderGraph(&buf, g, "", "  ")
	buf.WriteString("}\n")
	return buf.String()
}

// renderGraph writes the nodes and edges of g. Node ids are prefixed with the
// path of their host nodes so nested graphs may reuse state names.
func renderGraph(buf *bytes.Buffer, g *graphfsm.Graph, prefix, indent string) {
	current := g.Current().ID()
	initial := g.Initial().ID()

	for _, n := range g.Nodes() {
		id := prefix + n.ID.Name()
		if child := n.Subgraph(); child != nil {
			fmt.Fprintf(buf, "%ssubgraph %q {\n", indent, "cluster_"+id)
			style := ""
			if n.ID == current {
				style = " style=filled fillcolor=orange"
			}
			fmt.Fprintf(buf, "%s  label=%q%s;\n", indent, n.ID.Name(), style)
			fmt.Fprintf(buf, "%s  %q [label=%q shape=ellipse%s];\n", indent, id, n.ID.Name(), style)
			renderGraph(buf, child, id+"/", indent+"  ")
			renderExits(buf, n, id+"/", indent+"  ")
			fmt.Fprintf(buf, "%s}\n", indent)
			continue
		}

		var attrs []string
		if n.Decision != nil {
			attrs = append(attrs, "shape=diamond")
		}
		if n.ID == initial {
			attrs = append(attrs, "peripheries=2")
		}
		if n.ID == current {
			attrs = append(attrs, "style=filled fillcolor=lightgreen")
		}
		fmt.Fprintf(buf, "%s%q [label=%q%s];\n", indent, id, n.ID.Name(), joinAttrs(attrs))
	}

	for _, e := range collectEdges(g) {
		if e.Label == "" {
			fmt.Fprintf(buf, "%s%q -> %q;\n", indent, prefix+e.From, prefix+e.To)
			continue
		}
		fmt.Fprintf(buf, "%s%q -> %q [label=%q];\n", indent, prefix+e.From, prefix+e.To, e.Label)
	}
}

func renderExits(buf *bytes.Buffer, host *graphfsm.Node, prefix, indent string) {
	exits := host.Exits()
	slices.SortFunc(exits, func(a, b graphfsm.State) int { return strings.Compare(a.Name(), b.Name()) })
	for _, s := range exits {
		fmt.Fprintf(buf, "%s%q [color=red];\n", indent, prefix+s.Name())
	}
}

// Edge is one rendered transition.
type Edge struct {
	From  string
	To    string
	Label string
}

// collectEdges lists event transitions, sorted by event name per node, followed
// by registered edges no event leads through.
func collectEdges(g *graphfsm.Graph) []Edge {
	var edges []Edge
	labelled := make(map[*graphfsm.Edge]bool)

	for _, n := range g.Nodes() {
		events := make([]graphfsm.Event, 0, len(n.Transitions))
		for ev := range n.Transitions {
			events = append(events, ev)
		}
		slices.SortFunc(events, func(a, b graphfsm.Event) int { return strings.Compare(a.Name(), b.Name()) })

		for _, ev := range events {
			e := n.Transitions[ev]
			labelled[e] = true
			edges = append(edges, Edge{From: e.From.ID.Name(), To: e.To.ID.Name(), Label: ev.Name()})
		}
	}

	for _, e := range g.Edges() {
		if !labelled[e] {
			edges = append(edges, Edge{From: e.From.ID.Name(), To: e.To.ID.Name()})
		}
	}
	return edges
}

func joinAttrs(attrs []string) string {
	if len(attrs) == 0 {
		return ""
	}
	return " " + strings.Join(attrs, " ")
}
