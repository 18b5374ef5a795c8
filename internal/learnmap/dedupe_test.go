package learnmap

import (
	"strings"
	"testing"
)

func res(url string) Resource {
	return Resource{Title: "t", URL: url, Type: ResourceArticle}
}

func mapWith(nodes ...[]Resource) *LearningMap {
	b := Branch{ID: "b1", Level: LevelBeginner}
	for i, rs := range nodes {
		b.Nodes = append(b.Nodes, Node{ID: "n" + string(rune('1'+i)), EstimatedHours: 1, Resources: rs})
	}
	return &LearningMap{Topic: "Go", Branches: []Branch{b}}
}

func TestDedupeWithinNodeIsCaseSensitive(t *testing.T) {
	out := DedupeWithinNode([]Resource{
		res("https://a.example/x"),
		res("https://a.example/x"),
		res("https://a.example/X"),
	})
	if len(out) != 2 || out[1].URL != "https://a.example/X" {
		t.Fatalf("unexpected %+v", out)
	}
}

func TestDedupeAcrossMapKeepsEarliestNode(t *testing.T) {
	m := mapWith(
		[]Resource{res("https://a.example/x")},
		[]Resource{res("https://A.EXAMPLE/x"), res("https://a.example/y")},
	)
	removed := DedupeAcrossMap(m)
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
	first := m.Branches[0].Nodes[0].Resources
	second := m.Branches[0].Nodes[1].Resources
	if len(first) != 1 || first[0].URL != "https://a.example/x" {
		t.Fatalf("first node changed: %+v", first)
	}
	if len(second) != 1 || second[0].URL != "https://a.example/y" {
		t.Fatalf("second node: %+v", second)
	}
}

func TestDedupeAcrossMapLeavesNoCaseInsensitiveRepeats(t *testing.T) {
	urls := []string{"https://x.example/a", "https://X.example/A", "https://x.example/b", "https://x.example/a"}
	var nodes [][]Resource
	for i := 0; i < 4; i++ {
		var rs []Resource
		for j := 0; j < 3; j++ {
			rs = append(rs, res(urls[(i+j)%len(urls)]))
		}
		nodes = append(nodes, DedupeWithinNode(rs))
	}
	m := mapWith(nodes...)
	DedupeAcrossMap(m)

	seen := map[string]bool{}
	for _, u := range m.ResourceURLs() {
		k := strings.ToLower(u)
		if seen[k] {
			t.Fatalf("duplicate %q survived", u)
		}
		seen[k] = true
	}
}

func TestTruncateResources(t *testing.T) {
	m := mapWith(
		[]Resource{res("https://a/1"), res("https://a/2"), res("https://a/3"), res("https://a/4"), res("https://a/5")},
		[]Resource{res("https://b/1")},
	)
	TruncateResources(m, MaxResourcesPerNode)
	got := m.Branches[0].Nodes[0].Resources
	if len(got) != 3 || got[0].URL != "https://a/1" || got[2].URL != "https://a/3" {
		t.Fatalf("unexpected %+v", got)
	}
	if len(m.Branches[0].Nodes[1].Resources) != 1 {
		t.Fatalf("short node changed")
	}
}

func TestFilterReachable(t *testing.T) {
	m := mapWith([]Resource{res("https://a/1"), res("https://a/2"), res("https://a/3")})
	FilterReachable(m, map[string]bool{"https://a/1": true, "https://a/3": true, "https://a/2": false})
	got := m.Branches[0].Nodes[0].Resources
	if len(got) != 2 || got[0].URL != "https://a/1" || got[1].URL != "https://a/3" {
		t.Fatalf("unexpected %+v", got)
	}
	if m.ResourceCount() != 2 || m.NodeCount() != 1 {
		t.Fatalf("counts: %d resources, %d nodes", m.ResourceCount(), m.NodeCount())
	}
}
