package learnmap

import (
	"strings"
	"testing"

	"github.com/yungbote/learnmap-backend/internal/platform/apierr"
)

func validMap() *LearningMap {
	return &LearningMap{
		Topic: "Go",
		Branches: []Branch{{
			ID:    "b1",
			Level: LevelBeginner,
			Nodes: []Node{
				{ID: "n1", EstimatedHours: 2, Prerequisites: []string{}, Resources: []Resource{res("https://go.dev/doc/tutorial")}},
				{ID: "n2", EstimatedHours: 1, Prerequisites: []string{"n1"}, Resources: []Resource{
					{Title: "v", URL: "https://www.youtube.com/watch?v=ABCDEFGHIJK", Type: ResourceVideo},
				}},
			},
		}},
		RelatedTopics: []string{},
	}
}

func TestValidateAcceptsCompleteMap(t *testing.T) {
	if err := Validate(validMap()); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateRejectsEmptyNode(t *testing.T) {
	m := validMap()
	m.Branches[0].Nodes[1].Resources = nil
	err := Validate(m)
	e, ok := apierr.As(err)
	if !ok || e.Kind != apierr.KindInsufficientResources {
		t.Fatalf("expected insufficient resources, got %v", err)
	}
	if !strings.Contains(e.Message, "Insufficient real resources found for Go") {
		t.Fatalf("message = %q", e.Message)
	}
	if !strings.Contains(e.Details, "n2") {
		t.Fatalf("details = %q", e.Details)
	}
	if e.HTTPStatusCode() != 500 {
		t.Fatalf("status = %d", e.HTTPStatusCode())
	}
}

func TestValidateRejectsMapWithoutNodes(t *testing.T) {
	for _, m := range []*LearningMap{
		{Topic: "Go"},
		{Topic: "Go", Branches: []Branch{{ID: "b1", Level: LevelBeginner, Nodes: []Node{}}}},
	} {
		if err := Validate(m); !apierr.Is(err, apierr.KindInsufficientResources) {
			t.Fatalf("expected insufficient resources, got %v", err)
		}
	}
}

func TestValidateAllowsEmptyBranchBesideFullOne(t *testing.T) {
	m := validMap()
	m.Branches = append(m.Branches, Branch{ID: "b2", Level: LevelAdvanced, Nodes: []Node{}})
	if err := Validate(m); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateStructTags(t *testing.T) {
	m := validMap()
	m.Branches[0].Nodes[0].EstimatedHours = 0
	m.Branches[0].Level = "expert"
	err := Validate(m)
	e, ok := apierr.As(err)
	if !ok || e.Kind != apierr.KindParse {
		t.Fatalf("expected parse failure, got %v", err)
	}
	if !strings.Contains(e.Details, "EstimatedHours") || !strings.Contains(e.Details, "Level") {
		t.Fatalf("details = %q", e.Details)
	}

	m = validMap()
	m.Branches[0].Nodes[0].Resources = append(m.Branches[0].Nodes[0].Resources,
		res("https://a/2"), res("https://a/3"), res("https://a/4"))
	if err := Validate(m); !apierr.Is(err, apierr.KindParse) {
		t.Fatalf("expected parse failure for four resources, got %v", err)
	}
}

func TestStatsRate(t *testing.T) {
	if (Stats{}).Rate() != nil {
		t.Fatalf("expected nil rate without probes")
	}
	r := Stats{Probed: 3, Reachable: 2}.Rate()
	if r == nil || *r != 67 {
		t.Fatalf("rate = %v", r)
	}
	if (Stats{Probed: 3, Reachable: 2}).Low() {
		t.Fatalf("67%% is not low")
	}
	if !(Stats{Probed: 4, Reachable: 1}).Low() {
		t.Fatalf("25%% is low")
	}
}
