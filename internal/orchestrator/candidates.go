package orchestrator

import "github.com/yungbote/learnmap-backend/internal/provider"

type Candidate struct {
	Endpoint string
	Model    string
}

func (c Candidate) String() string {
	return c.Endpoint + "/" + c.Model
}

// BuildCandidates flattens endpoints into the attempt order: every model of
// the first endpoint, then every model of the next. Repeated pairs are kept
// once.
func BuildCandidates(endpoints []provider.Endpoint) []Candidate {
	out := []Candidate{}
	seen := map[Candidate]bool{}
	for _, ep := range endpoints {
		for _, m := range ep.Models {
			c := Candidate{Endpoint: ep.Name, Model: m}
			if m == "" || seen[c] {
				continue
			}
			seen[c] = true
			out = append(out, c)
		}
	}
	return out
}
