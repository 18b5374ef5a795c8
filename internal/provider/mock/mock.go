package mock

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/yungbote/learnmap-backend/internal/provider"
)

var (
	mapTopicRe = regexp.MustCompile(`learning map for "([^"]+)"`)
	levelRe    = regexp.MustCompile(`at the (beginner|intermediate|advanced) level`)
)

// Engine answers deterministically without network access. Map prompts get a
// fenced JSON learning map; anything else gets a short echo.
type Engine struct{}

func New() *Engine { return &Engine{} }

func (e *Engine) GenerateText(ctx context.Context, model string, messages []provider.Message, opts provider.GenerateOptions) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var user string
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.EqualFold(messages[i].Role, "user") {
			user = messages[i].Content
			break
		}
	}
	if m := mapTopicRe.FindStringSubmatch(user); m != nil {
		level := "beginner"
		if lm := levelRe.FindStringSubmatch(user); lm != nil {
			level = lm[1]
		}
		b, err := json.MarshalIndent(sampleMap(m[1], level), "", "  ")
		if err != nil {
			return "", err
		}
		return "Here is the learning map you asked for:\n```json\n" + string(b) + "\n```\n", nil
	}
	if strings.TrimSpace(user) == "" {
		return "mock: ok", nil
	}
	return fmt.Sprintf("mock (%s): %s", model, strings.TrimSpace(user)), nil
}

func sampleMap(topic, level string) map[string]any {
	q := url.QueryEscape(topic)
	resource := func(title, u, typ string) map[string]any {
		return map[string]any{"title": title, "url": u, "type": typ}
	}
	return map[string]any{
		"topic":       topic,
		"description": fmt.Sprintf("A structured path through %s.", topic),
		"branches": []any{
			map[string]any{
				"id":          "foundations",
				"name":        "Foundations",
				"description": "Core vocabulary and first steps.",
				"level":       level,
				"nodes": []any{
					map[string]any{
						"id":             "overview",
						"name":           "Overview",
						"description":    "What " + topic + " is and why it matters.",
						"estimatedHours": 2,
						"prerequisites":  []string{},
						"resources": []any{
							resource("Encyclopedia overview", "https://en.wikipedia.org/wiki/Special:Search?search="+q, "article"),
							resource("Video introduction", "https://youtu.be/rfscVS0vtbw", "video"),
						},
					},
					map[string]any{
						"id":             "first-project",
						"name":           "First project",
						"description":    "Build something small end to end.",
						"estimatedHours": 4,
						"prerequisites":  []string{"overview"},
						"resources": []any{
							resource("Project ideas", "https://github.com/topics/"+strings.ToLower(strings.ReplaceAll(topic, " ", "-")), "article"),
						},
					},
				},
			},
		},
		"relatedTopics": []string{topic + " tooling", topic + " best practices"},
	}
}
