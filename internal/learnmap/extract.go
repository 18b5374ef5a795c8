package learnmap

import (
	"errors"
	"regexp"
	"strings"

	"github.com/ohler55/ojg/oj"

	"github.com/yungbote/learnmap-backend/internal/platform/apierr"
)

var (
	fenceRe = regexp.MustCompile("```json\\n?|```")
	thinkRe = regexp.MustCompile(`(?s)<think>.*?</think>`)
)

const previewRunes = 200

// Extract isolates the JSON object embedded in a model reply. Code fences and
// reasoning blocks are removed first. A reply that starts with "{" is scanned
// with a string-aware brace matcher; otherwise the first balanced span that
// parses as JSON wins, and the last resort is the span from the first "{" to
// the last "}".
func Extract(raw string) (string, error) {
	text := thinkRe.ReplaceAllString(raw, "")
	text = strings.TrimSpace(fenceRe.ReplaceAllString(text, ""))

	if strings.HasPrefix(text, "{") {
		if end, ok := matchBrace(text, 0); ok {
			return text[:end+1], nil
		}
	} else {
		for i := strings.IndexByte(text, '{'); i >= 0; {
			if end, ok := matchBrace(text, i); ok {
				span := text[i : end+1]
				if _, err := oj.ParseString(span); err == nil {
					return span, nil
				}
			}
			next := strings.IndexByte(text[i+1:], '{')
			if next < 0 {
				break
			}
			i += next + 1
		}
	}

	first := strings.IndexByte(text, '{')
	last := strings.LastIndexByte(text, '}')
	if first >= 0 && last > first {
		return text[first : last+1], nil
	}
	return "", apierr.New(apierr.KindExtraction, "Could not find valid JSON in AI response", errors.New("no JSON object in model output")).
		WithDetails(preview(raw))
}

// matchBrace returns the index of the "}" closing the "{" at start. Braces
// inside string literals are ignored and backslash escapes are honoured.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func preview(raw string) string {
	r := []rune(raw)
	if len(r) <= previewRunes {
		return raw
	}
	return string(r[:previewRunes])
}
