package learnmap

import (
	"regexp"
	"testing"

	"github.com/yungbote/learnmap-backend/internal/platform/apierr"
)

const draftJSON = `{
  "description": "  All about Go.  ",
  "branches": [
    {
      "name": "Basics",
      "level": "expert",
      "nodes": [
        {
          "id": "dup",
          "name": "Syntax",
          "estimatedHours": "2.5",
          "prerequisites": [" a ", "a", "", "b"],
          "resources": [
            {"title": "Tour", "url": "https://go.dev/tour/welcome/1", "type": "article"},
            {"title": "Tour again", "url": "https://go.dev/tour/welcome/1", "type": "article"},
            {"title": "Home", "url": "https://go.dev/", "type": "article"},
            "not an object"
          ]
        },
        {
          "id": "dup",
          "name": "Types",
          "estimatedHours": 0,
          "resources": [{"url": "https://youtu.be/ABCDEFGHIJK", "type": "video"}]
        },
        {"name": "Tools"}
      ]
    },
    {"id": "adv", "level": "Advanced", "nodes": []},
    42
  ],
  "relatedTopics": [" Rust ", "", "Zig"]
}`

func TestDecodeDraftAndAssemble(t *testing.T) {
	d, err := DecodeDraft(draftJSON)
	if err != nil {
		t.Fatalf("DecodeDraft: %v", err)
	}
	if d.RawResourceCount != 5 {
		t.Fatalf("RawResourceCount = %d, want 5", d.RawResourceCount)
	}
	if len(d.Branches) != 2 {
		t.Fatalf("branches = %d, want 2", len(d.Branches))
	}

	m := d.Assemble("Go", LevelIntermediate)
	if m.Topic != "Go" || m.Description != "All about Go." {
		t.Fatalf("topic/description: %q %q", m.Topic, m.Description)
	}
	if len(m.RelatedTopics) != 2 || m.RelatedTopics[0] != "Rust" {
		t.Fatalf("relatedTopics: %v", m.RelatedTopics)
	}

	b0, b1 := m.Branches[0], m.Branches[1]
	if b0.ID != "branch-1" || b0.Level != LevelIntermediate {
		t.Fatalf("branch 0: id=%q level=%q", b0.ID, b0.Level)
	}
	if b1.ID != "adv" || b1.Level != LevelAdvanced || b1.Nodes == nil {
		t.Fatalf("branch 1: %+v", b1)
	}

	n0, n1, n2 := b0.Nodes[0], b0.Nodes[1], b0.Nodes[2]
	if n0.ID != "dup" {
		t.Fatalf("first dup id = %q", n0.ID)
	}
	if !regexp.MustCompile(`^dup-[a-z0-9]{6}$`).MatchString(n1.ID) {
		t.Fatalf("repeated id not repaired: %q", n1.ID)
	}
	if n2.ID != "node-1-3" {
		t.Fatalf("missing id = %q", n2.ID)
	}
	if n0.EstimatedHours != 3 || n1.EstimatedHours != 1 || n2.EstimatedHours != 1 {
		t.Fatalf("hours: %d %d %d", n0.EstimatedHours, n1.EstimatedHours, n2.EstimatedHours)
	}
	if len(n0.Prerequisites) != 2 || n0.Prerequisites[0] != "a" || n0.Prerequisites[1] != "b" {
		t.Fatalf("prerequisites: %v", n0.Prerequisites)
	}
	if n2.Prerequisites == nil || n2.Resources == nil {
		t.Fatalf("empty lists should be non-nil")
	}
	if len(n0.Resources) != 1 || n0.Resources[0].Title != "Tour" {
		t.Fatalf("node 0 resources: %+v", n0.Resources)
	}
	if len(n1.Resources) != 1 || n1.Resources[0].URL != "https://www.youtube.com/watch?v=ABCDEFGHIJK" {
		t.Fatalf("node 1 resources: %+v", n1.Resources)
	}
}

func TestDecodeDraftRefusal(t *testing.T) {
	d, err := DecodeDraft(`{"error": "Insufficient real resources found for Quantum Basketweaving"}`)
	if err != nil {
		t.Fatalf("DecodeDraft: %v", err)
	}
	if d.Refusal == "" || len(d.Branches) != 0 {
		t.Fatalf("unexpected draft %+v", d)
	}
}

func TestDecodeDraftParseFailures(t *testing.T) {
	for _, raw := range []string{
		`{"topic": "Go", "branches": [`,
		`[1, 2, 3]`,
		`{"topic": "Go", "branches": {"id": "b"}}`,
	} {
		_, err := DecodeDraft(raw)
		if !apierr.Is(err, apierr.KindParse) {
			t.Fatalf("DecodeDraft(%q) = %v, want parse failure", raw, err)
		}
	}
}

func TestIDSetClaim(t *testing.T) {
	s := newIDSet()
	if got := s.claim("", "node-1-1"); got != "node-1-1" {
		t.Fatalf("fallback = %q", got)
	}
	a := s.claim("x", "f")
	b := s.claim("x", "f")
	if a != "x" || b == "x" {
		t.Fatalf("claims: %q %q", a, b)
	}
}
