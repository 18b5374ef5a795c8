package learnmap

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

const canonicalWatchPrefix = "https://www.youtube.com/watch?v="

var (
	videoIDRe       = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
	watchHostRe     = regexp.MustCompile(`^(www\.)?youtube\.com$`)
	indexBasenameRe = regexp.MustCompile(`(?i)^(index|default)(\.(html?|php|aspx?|jsp))?$`)
)

// NormalizeResource canonicalizes one resource or reports that it must be
// dropped. Applying it to its own output returns the same resource.
func NormalizeResource(r RawResource) (Resource, bool) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		title = "Resource"
	}

	typ := ResourceType(strings.ToLower(strings.TrimSpace(r.Type)))
	if typ == "" {
		typ = ResourceArticle
	}
	if typ != ResourceArticle && typ != ResourceVideo {
		return Resource{}, false
	}

	u := strings.TrimSpace(r.URL)
	if u == "" {
		return Resource{}, false
	}
	u = CanonicalVideoURL(u)
	if !IsValidHTTPURL(u) {
		return Resource{}, false
	}

	switch typ {
	case ResourceArticle:
		if IsHomepageShaped(u) {
			return Resource{}, false
		}
	case ResourceVideo:
		if !IsCanonicalVideoURL(u) {
			return Resource{}, false
		}
	}
	return Resource{Title: title, URL: u, Type: typ}, true
}

// NormalizeResources keeps the resources that survive NormalizeResource, in
// order.
func NormalizeResources(raw []RawResource) []Resource {
	out := make([]Resource, 0, len(raw))
	for _, r := range raw {
		if n, ok := NormalizeResource(r); ok {
			out = append(out, n)
		}
	}
	return out
}

// IsValidHTTPURL is true for absolute http(s) URLs with a host.
func IsValidHTTPURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u == nil {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return false
	}
	return u.Hostname() != ""
}

// CanonicalVideoURL rewrites youtu.be short links and /shorts/ paths to the
// watch form. Any other input is returned unchanged.
func CanonicalVideoURL(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u == nil {
		return raw
	}
	host := strings.ToLower(u.Hostname())
	segs := pathSegments(u.Path)

	switch {
	case host == "youtu.be" || host == "www.youtu.be":
		if len(segs) > 0 {
			return canonicalWatchPrefix + segs[0]
		}
	case host == "youtube.com" || strings.HasSuffix(host, ".youtube.com"):
		if len(segs) >= 2 && segs[0] == "shorts" {
			return canonicalWatchPrefix + segs[1]
		}
	}
	return raw
}

// IsHomepageShaped is true when the URL points at a site root: an empty path,
// "/", or a lone index file such as /index.html.
func IsHomepageShaped(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u == nil {
		return false
	}
	segs := pathSegments(u.Path)
	switch len(segs) {
	case 0:
		return true
	case 1:
		return indexBasenameRe.MatchString(segs[0])
	default:
		return false
	}
}

func IsValidVideoID(id string) bool {
	return videoIDRe.MatchString(id)
}

// IsCanonicalVideoURL requires youtube.com (optionally www.), the exact
// /watch path and a valid v parameter.
func IsCanonicalVideoURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u == nil {
		return false
	}
	if !watchHostRe.MatchString(strings.ToLower(u.Hostname())) {
		return false
	}
	if u.Path != "/watch" {
		return false
	}
	return IsValidVideoID(u.Query().Get("v"))
}

func pathSegments(p string) []string {
	var out []string
	for _, s := range strings.Split(path.Clean("/"+p), "/") {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
