package learnmap

import (
	"strings"
	"testing"

	"github.com/yungbote/learnmap-backend/internal/platform/apierr"
)

func TestExtractFencedWithProse(t *testing.T) {
	raw := "Here you go:\n```json\n{\"topic\":\"Go\",\"branches\":[]}\n```\nHope this helps!"
	got, err := Extract(raw)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != `{"topic":"Go","branches":[]}` {
		t.Fatalf("Extract = %q", got)
	}
}

func TestExtract(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"leading object with trailing prose", `{"a":{"b":2}} and that's it }`, `{"a":{"b":2}}`},
		{"braces inside strings", `{"t":"a { b","u":"} c"}`, `{"t":"a { b","u":"} c"}`},
		{"escaped quote in string", `{"t":"say \"}\" loudly"}`, `{"t":"say \"}\" loudly"}`},
		{"prose on both sides with stray brace", `Result: {"a":[1,2]} done }`, `{"a":[1,2]}`},
		{"skips non-json span", `note {this} then {"a":true}`, `{"a":true}`},
		{"reasoning block removed", "<think>maybe {x}</think>\n{\"a\":1}", `{"a":1}`},
		{"nested object inside prose", `intro {"a": {"b": 1} } tail`, `{"a": {"b": 1} }`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Extract(tc.raw)
			if err != nil {
				t.Fatalf("Extract: %v", err)
			}
			if got != tc.want {
				t.Fatalf("Extract = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestExtractGreedyFallback(t *testing.T) {
	got, err := Extract(`oops {"a": 1, trailing } end`)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if got != `{"a": 1, trailing }` {
		t.Fatalf("Extract = %q", got)
	}
}

func TestExtractFailure(t *testing.T) {
	raw := "I could not build a map. " + strings.Repeat("x", 400)
	_, err := Extract(raw)
	e, ok := apierr.As(err)
	if !ok || e.Kind != apierr.KindExtraction {
		t.Fatalf("expected extraction failure, got %v", err)
	}
	if e.Message != "Could not find valid JSON in AI response" {
		t.Fatalf("message = %q", e.Message)
	}
	if len([]rune(e.Details)) != previewRunes || !strings.HasPrefix(e.Details, "I could not") {
		t.Fatalf("unexpected preview %q", e.Details)
	}
}

func TestMatchBrace(t *testing.T) {
	if _, ok := matchBrace(`{"a":1`, 0); ok {
		t.Fatalf("expected unbalanced")
	}
	end, ok := matchBrace(`x{}`, 1)
	if !ok || end != 2 {
		t.Fatalf("matchBrace = %d %v", end, ok)
	}
}
