package learnmap

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/yungbote/learnmap-backend/internal/platform/apierr"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

var resourcesPath = jp.MustParseString("$.branches[*].nodes[*].resources[*]")

// Draft is the loosely typed learning map decoded from model output. Every
// field has been coerced to its Go type but nothing is validated yet.
type Draft struct {
	Topic         string
	Description   string
	Branches      []DraftBranch
	RelatedTopics []string

	// Refusal carries a top-level "error" message the model returned instead
	// of a map.
	Refusal string
	// RawResourceCount counts resource entries before any filtering.
	RawResourceCount int
}

type DraftBranch struct {
	ID          string
	Name        string
	Description string
	Level       string
	Nodes       []DraftNode
}

type DraftNode struct {
	ID             string
	Name           string
	Description    string
	EstimatedHours float64
	Prerequisites  []string
	Resources      []RawResource
}

// DecodeDraft parses extracted JSON text leniently and coerces it into a
// Draft. Syntax errors and non-object roots are parse failures.
func DecodeDraft(raw string) (*Draft, error) {
	root, err := oj.ParseString(raw)
	if err != nil {
		return nil, apierr.New(apierr.KindParse, "Failed to parse AI response", err).WithDetails(err.Error())
	}
	obj, ok := root.(map[string]any)
	if !ok {
		return nil, apierr.Newf(apierr.KindParse, "Failed to parse AI response").
			WithDetails(fmt.Sprintf("expected a JSON object, got %T", root))
	}

	d := &Draft{
		Topic:            str(obj["topic"]),
		Description:      str(obj["description"]),
		RelatedTopics:    strList(obj["relatedTopics"], false),
		Refusal:          str(obj["error"]),
		RawResourceCount: len(resourcesPath.Get(obj)),
	}

	if v, present := obj["branches"]; present && v != nil {
		branches, ok := v.([]any)
		if !ok {
			return nil, apierr.Newf(apierr.KindParse, "Failed to parse AI response").
				WithDetails(fmt.Sprintf("branches must be an array, got %T", v))
		}
		for _, b := range branches {
			bm, ok := b.(map[string]any)
			if !ok {
				continue
			}
			d.Branches = append(d.Branches, decodeBranch(bm))
		}
	}
	return d, nil
}

func decodeBranch(bm map[string]any) DraftBranch {
	b := DraftBranch{
		ID:          str(bm["id"]),
		Name:        str(bm["name"]),
		Description: str(bm["description"]),
		Level:       str(bm["level"]),
	}
	nodes, _ := bm["nodes"].([]any)
	for _, n := range nodes {
		nm, ok := n.(map[string]any)
		if !ok {
			continue
		}
		node := DraftNode{
			ID:             str(nm["id"]),
			Name:           str(nm["name"]),
			Description:    str(nm["description"]),
			EstimatedHours: number(nm["estimatedHours"]),
			Prerequisites:  strList(nm["prerequisites"], true),
		}
		resources, _ := nm["resources"].([]any)
		for _, r := range resources {
			rm, ok := r.(map[string]any)
			if !ok {
				continue
			}
			node.Resources = append(node.Resources, RawResource{
				Title: str(rm["title"]),
				URL:   str(rm["url"]),
				Type:  str(rm["type"]),
			})
		}
		b.Nodes = append(b.Nodes, node)
	}
	return b
}

// Assemble coerces the draft into a LearningMap: defaults are filled in, ids
// are made unique, and each node's resources are normalized and deduplicated.
func (d *Draft) Assemble(topic string, level Level) *LearningMap {
	m := &LearningMap{
		Topic:         strings.TrimSpace(d.Topic),
		Description:   strings.TrimSpace(d.Description),
		Branches:      make([]Branch, 0, len(d.Branches)),
		RelatedTopics: d.RelatedTopics,
	}
	if m.Topic == "" {
		m.Topic = strings.TrimSpace(topic)
	}
	if m.RelatedTopics == nil {
		m.RelatedTopics = []string{}
	}

	branchIDs := newIDSet()
	nodeIDs := newIDSet()
	for bi, db := range d.Branches {
		lvl, ok := ParseLevel(db.Level)
		if !ok {
			lvl = level
		}
		b := Branch{
			ID:          branchIDs.claim(db.ID, fmt.Sprintf("branch-%d", bi+1)),
			Name:        strings.TrimSpace(db.Name),
			Description: strings.TrimSpace(db.Description),
			Level:       lvl,
			Nodes:       make([]Node, 0, len(db.Nodes)),
		}
		for ni, dn := range db.Nodes {
			prereqs := dn.Prerequisites
			if prereqs == nil {
				prereqs = []string{}
			}
			b.Nodes = append(b.Nodes, Node{
				ID:             nodeIDs.claim(dn.ID, fmt.Sprintf("node-%d-%d", bi+1, ni+1)),
				Name:           strings.TrimSpace(dn.Name),
				Description:    strings.TrimSpace(dn.Description),
				EstimatedHours: hours(dn.EstimatedHours),
				Prerequisites:  prereqs,
				Resources:      DedupeWithinNode(NormalizeResources(dn.Resources)),
			})
		}
		m.Branches = append(m.Branches, b)
	}
	return m
}

type idSet map[string]struct{}

func newIDSet() idSet { return idSet{} }

// claim returns id, or fallback when id is blank, with a random suffix when
// the choice is already taken.
func (s idSet) claim(id, fallback string) string {
	id = strings.TrimSpace(id)
	if id == "" {
		id = fallback
	}
	for candidate := id; ; {
		if _, taken := s[candidate]; !taken {
			s[candidate] = struct{}{}
			return candidate
		}
		suffix, err := gonanoid.Generate(idAlphabet, 6)
		if err != nil {
			suffix = strconv.Itoa(len(s))
		}
		candidate = id + "-" + suffix
	}
}

func hours(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 1
	}
	return int(math.Ceil(v))
}

func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

func number(v any) float64 {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case int:
		return float64(t)
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// strList trims entries and drops blanks; with unique set it also drops
// repeats, keeping the first.
func strList(v any, unique bool) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	seen := map[string]struct{}{}
	for _, it := range items {
		s := str(it)
		if s == "" {
			continue
		}
		if unique {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
		}
		out = append(out, s)
	}
	return out
}
