package learnmap

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/learnmap-backend/internal/platform/apierr"
)

// LowReachabilityPercent is the verification rate under which a map is still
// delivered but logged as suspicious.
const LowReachabilityPercent = 50

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks a sanitized map. A map without nodes, or with any node left
// without resources, fails with InsufficientResources naming the topic. Field
// level violations of the struct tags are reported as parse failures.
func Validate(m *LearningMap) error {
	if m == nil {
		return apierr.Newf(apierr.KindParse, "Failed to parse AI response").WithDetails("empty learning map")
	}
	topic := m.Topic
	if strings.TrimSpace(topic) == "" {
		topic = "this topic"
	}
	if len(m.Branches) == 0 || m.NodeCount() == 0 {
		return insufficient(topic, "map has no learning nodes")
	}
	var empty []string
	m.eachNode(func(_, _ int, n *Node) {
		if len(n.Resources) == 0 {
			empty = append(empty, n.ID)
		}
	})
	if len(empty) > 0 {
		return insufficient(topic, "nodes without resources: "+strings.Join(empty, ", "))
	}

	if err := structValidator().Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
			}
			return apierr.New(apierr.KindParse, "Failed to parse AI response", err).
				WithDetails(strings.Join(fields, "; "))
		}
		return apierr.New(apierr.KindParse, "Failed to parse AI response", err)
	}
	return nil
}

func insufficient(topic, details string) error {
	return apierr.Newf(apierr.KindInsufficientResources,
		"Insufficient real resources found for %s. The AI may have failed to perform web searches. Please try again.", topic).
		WithDetails(details)
}

// Stats summarizes link verification for the response envelope.
type Stats struct {
	Probed    int
	Reachable int
}

// Rate is the rounded percentage of reachable URLs, or nil when nothing was
// probed.
func (s Stats) Rate() *int {
	if s.Probed <= 0 {
		return nil
	}
	r := int(math.Round(float64(s.Reachable) / float64(s.Probed) * 100))
	return &r
}

func (s Stats) Low() bool {
	r := s.Rate()
	return r != nil && *r < LowReachabilityPercent
}
