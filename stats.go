package hwt

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Stats is a human-readable snapshot of a Tree's internal shape, useful
// for diagnostics. The core itself never logs or formats anything on its
// own initiative; Stats is an opt-in, read-only introspection helper.
type Stats struct {
	Features  int
	LeafNodes int
	MapNodes  int
}

// Stats walks the node slab and summarizes it.
func (t *Tree) Stats() Stats {
	s := Stats{Features: t.count}
	for _, n := range t.nodes {
		if n.isMap {
			s.MapNodes++
		} else {
			s.LeafNodes++
		}
	}
	return s
}

// String renders s with locale-aware thousands separators, e.g.
// "12,345,678 features across 9 map nodes, 41,002 leaf nodes" under the
// English printer.
func (s Stats) String() string {
	p := message.NewPrinter(language.English)
	var b strings.Builder
	p.Fprintf(&b, "%d features across %d map nodes, %d leaf nodes", s.Features, s.MapNodes, s.LeafNodes)
	return b.String()
}
