// Package suggest drafts task descriptions and time estimates, either
// through the OpenAI chat-completions API or a deterministic keyword
// fallback. Suggest never fails: any upstream problem degrades to the
// fallback path.
package suggest

import (
	"context"
	"log/slog"
	"strings"
)

const (
	minEstimateMinutes = 15
	maxEstimateMinutes = 480
	maxTags            = 5
)

// Suggestion is the normalized result returned to clients. All fields
// are clamped before leaving this package.
type Suggestion struct {
	SuggestedDescription string      `json:"suggestedDescription"`
	EstimatedMinutes     int         `json:"estimatedMinutes"`
	SuggestedTags        []string    `json:"suggestedTags,omitempty"`
	Confidence           float64     `json:"confidence"`
	RecommendedUser      *RosterUser `json:"recommendedUser,omitempty"`
}

// RosterUser is an assignable team member offered by the caller.
type RosterUser struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Skills   string `json:"skills,omitempty"`
}

// Service produces task suggestions. A nil client means fallback-only
// mode (no API key configured).
type Service struct {
	client *openAIClient
	logger *slog.Logger
}

// NewService builds a suggestion service. apiKey may be empty, in which
// case every request takes the fallback path.
func NewService(apiKey, baseURL, model string, logger *slog.Logger) *Service {
	s := &Service{logger: logger}
	if apiKey != "" {
		s.client = newOpenAIClient(apiKey, baseURL, model)
	}
	return s
}

// Mode reports which path suggestions take: "openai" or "fallback".
func (s *Service) Mode() string {
	if s.client != nil {
		return "openai"
	}
	return "fallback"
}

// Suggest drafts a description and estimate for the given task title.
// context is optional free text; roster, when non-empty, additionally
// yields a recommended assignee.
func (s *Service) Suggest(ctx context.Context, title, taskContext string, roster []RosterUser) Suggestion {
	var sg Suggestion
	if s.client != nil {
		raw, err := s.client.complete(ctx, buildPrompt(title, taskContext, roster))
		if err != nil {
			s.logger.Warn("completion API failed, using fallback", slog.String("error", err.Error()))
			sg = fallbackSuggestion(title, taskContext)
		} else {
			sg = normalize(raw)
		}
	} else {
		sg = fallbackSuggestion(title, taskContext)
	}

	sg.RecommendedUser = recommendUser(roster, sg.SuggestedTags, title)
	return sg
}

// normalize fills defaults and clamps an API reply into range.
func normalize(raw rawSuggestion) Suggestion {
	sg := Suggestion{
		SuggestedDescription: raw.SuggestedDescription,
		EstimatedMinutes:     raw.EstimatedMinutes,
		SuggestedTags:        raw.SuggestedTags,
		Confidence:           raw.Confidence,
	}
	if sg.SuggestedDescription == "" {
		sg.SuggestedDescription = "Complete the specified task following software development best practices."
	}
	if sg.EstimatedMinutes == 0 {
		sg.EstimatedMinutes = 120
	}
	if sg.Confidence == 0 {
		sg.Confidence = 0.7
	}
	if len(sg.SuggestedTags) == 0 {
		sg.SuggestedTags = []string{"general"}
	}
	return clamp(sg)
}

func clamp(sg Suggestion) Suggestion {
	if sg.EstimatedMinutes < minEstimateMinutes {
		sg.EstimatedMinutes = minEstimateMinutes
	}
	if sg.EstimatedMinutes > maxEstimateMinutes {
		sg.EstimatedMinutes = maxEstimateMinutes
	}
	if sg.Confidence < 0 {
		sg.Confidence = 0
	}
	if sg.Confidence > 1 {
		sg.Confidence = 1
	}
	if len(sg.SuggestedTags) > maxTags {
		sg.SuggestedTags = sg.SuggestedTags[:maxTags]
	}
	return sg
}

// recommendUser picks the roster member whose skills share the most
// keywords with the suggested tags and title. Nil when the roster is
// empty or nothing overlaps.
func recommendUser(roster []RosterUser, tags []string, title string) *RosterUser {
	if len(roster) == 0 {
		return nil
	}

	keywords := make([]string, 0, len(tags)+4)
	for _, t := range tags {
		keywords = append(keywords, strings.ToLower(t))
	}
	for _, w := range strings.Fields(strings.ToLower(title)) {
		if len(w) >= 3 {
			keywords = append(keywords, w)
		}
	}

	var best *RosterUser
	bestScore := 0
	for i := range roster {
		skills := strings.ToLower(roster[i].Skills)
		if skills == "" {
			continue
		}
		score := 0
		for _, kw := range keywords {
			if strings.Contains(skills, kw) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = &roster[i]
		}
	}
	if best == nil {
		return nil
	}
	// copy so callers cannot mutate the roster slice through the result
	out := *best
	return &out
}
