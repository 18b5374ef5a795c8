package learnmap

import "strings"

// DedupeWithinNode drops exact repeats of a URL inside one node; the first
// occurrence is kept.
func DedupeWithinNode(rs []Resource) []Resource {
	out := make([]Resource, 0, len(rs))
	seen := make(map[string]struct{}, len(rs))
	for _, r := range rs {
		if _, dup := seen[r.URL]; dup {
			continue
		}
		seen[r.URL] = struct{}{}
		out = append(out, r)
	}
	return out
}

// DedupeAcrossMap walks nodes in document order with one case-insensitive
// seen-set, so a URL stays with the earliest node that cites it. It returns
// how many resources were removed.
func DedupeAcrossMap(m *LearningMap) int {
	removed := 0
	seen := map[string]struct{}{}
	m.eachNode(func(_, _ int, n *Node) {
		kept := n.Resources[:0]
		for _, r := range n.Resources {
			key := strings.ToLower(r.URL)
			if _, dup := seen[key]; dup {
				removed++
				continue
			}
			seen[key] = struct{}{}
			kept = append(kept, r)
		}
		n.Resources = kept
	})
	return removed
}

// TruncateResources keeps at most max resources per node, earliest first.
func TruncateResources(m *LearningMap, max int) {
	if max < 0 {
		max = 0
	}
	m.eachNode(func(_, _ int, n *Node) {
		if len(n.Resources) > max {
			n.Resources = n.Resources[:max]
		}
	})
}

// FilterReachable keeps the resources whose URL is marked reachable. URLs
// missing from the map count as unreachable.
func FilterReachable(m *LearningMap, reachable map[string]bool) {
	m.eachNode(func(_, _ int, n *Node) {
		kept := n.Resources[:0]
		for _, r := range n.Resources {
			if reachable[r.URL] {
				kept = append(kept, r)
			}
		}
		n.Resources = kept
	})
}
