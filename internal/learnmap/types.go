package learnmap

import "strings"

type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// ParseLevel is case-insensitive; ok is false for anything outside the
// three known levels.
func ParseLevel(s string) (Level, bool) {
	switch Level(strings.ToLower(strings.TrimSpace(s))) {
	case LevelBeginner:
		return LevelBeginner, true
	case LevelIntermediate:
		return LevelIntermediate, true
	case LevelAdvanced:
		return LevelAdvanced, true
	default:
		return "", false
	}
}

type ResourceType string

const (
	ResourceArticle ResourceType = "article"
	ResourceVideo   ResourceType = "video"
)

const MaxResourcesPerNode = 3

type LearningMap struct {
	Topic         string   `json:"topic" validate:"required"`
	Description   string   `json:"description"`
	Branches      []Branch `json:"branches" validate:"required,min=1,dive"`
	RelatedTopics []string `json:"relatedTopics"`
}

type Branch struct {
	ID          string `json:"id" validate:"required"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       Level  `json:"level" validate:"oneof=beginner intermediate advanced"`
	Nodes       []Node `json:"nodes" validate:"dive"`
}

type Node struct {
	ID             string     `json:"id" validate:"required"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	EstimatedHours int        `json:"estimatedHours" validate:"gt=0"`
	Prerequisites  []string   `json:"prerequisites"`
	Resources      []Resource `json:"resources" validate:"max=3,dive"`
}

type Resource struct {
	Title string       `json:"title" validate:"required"`
	URL   string       `json:"url" validate:"required,url"`
	Type  ResourceType `json:"type" validate:"oneof=article video"`
}

// RawResource is a resource as the model wrote it, before normalization.
type RawResource struct {
	Title string
	URL   string
	Type  string
}

// eachNode visits nodes in document order.
func (m *LearningMap) eachNode(fn func(bi, ni int, n *Node)) {
	if m == nil {
		return
	}
	for bi := range m.Branches {
		for ni := range m.Branches[bi].Nodes {
			fn(bi, ni, &m.Branches[bi].Nodes[ni])
		}
	}
}

// ResourceURLs lists every resource URL in document order.
func (m *LearningMap) ResourceURLs() []string {
	var out []string
	m.eachNode(func(_, _ int, n *Node) {
		for _, r := range n.Resources {
			out = append(out, r.URL)
		}
	})
	return out
}

func (m *LearningMap) NodeCount() int {
	count := 0
	m.eachNode(func(_, _ int, _ *Node) { count++ })
	return count
}

func (m *LearningMap) ResourceCount() int {
	count := 0
	m.eachNode(func(_, _ int, n *Node) { count += len(n.Resources) })
	return count
}
