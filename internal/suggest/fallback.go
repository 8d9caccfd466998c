package suggest

import (
	"fmt"
	"strings"
)

// fallbackRule pairs a keyword predicate with a canned template. Rules
// are evaluated top to bottom; the first match wins.
type fallbackRule struct {
	keywords   []string
	describe   func(title, taskContext string) string
	minutes    int
	tags       []string
	confidence float64
}

var fallbackRules = []fallbackRule{
	{
		keywords: []string{"bug", "fix", "error"},
		describe: func(title, _ string) string {
			return fmt.Sprintf("Investigate and resolve the issue: %q. Steps: 1) Reproduce the bug, 2) Identify root cause, 3) Implement fix, 4) Test thoroughly, 5) Document the solution.", title)
		},
		minutes:    120,
		tags:       []string{"bug", "urgent", "debugging"},
		confidence: 0.85,
	},
	{
		keywords: []string{"feature", "implement", "add"},
		describe: func(title, _ string) string {
			return fmt.Sprintf("Develop new feature: %q. Requirements: 1) Analyze requirements, 2) Design architecture, 3) Implement core functionality, 4) Add tests, 5) Update documentation.", title)
		},
		minutes:    240,
		tags:       []string{"feature", "development", "enhancement"},
		confidence: 0.8,
	},
	{
		keywords: []string{"test", "testing"},
		describe: func(title, _ string) string {
			return fmt.Sprintf("Create comprehensive tests for: %q. Include: 1) Unit tests, 2) Integration tests, 3) Edge cases, 4) Performance validation, 5) Documentation updates.", title)
		},
		minutes:    90,
		tags:       []string{"testing", "quality-assurance", "automation"},
		confidence: 0.9,
	},
	{
		keywords: []string{"refactor", "optimize", "improve"},
		describe: func(title, _ string) string {
			return fmt.Sprintf("Refactor and optimize: %q. Process: 1) Analyze current implementation, 2) Identify improvement opportunities, 3) Refactor code, 4) Validate performance gains, 5) Update tests.", title)
		},
		minutes:    180,
		tags:       []string{"refactoring", "optimization", "code-quality"},
		confidence: 0.75,
	},
	{
		keywords: []string{"doc", "documentation"},
		describe: func(title, _ string) string {
			return fmt.Sprintf("Create or update documentation for: %q. Include: 1) Technical specifications, 2) Usage examples, 3) API documentation, 4) Best practices, 5) Troubleshooting guide.", title)
		},
		minutes:    60,
		tags:       []string{"documentation", "knowledge-sharing"},
		confidence: 0.9,
	},
}

var defaultFallback = fallbackRule{
	describe: func(title, taskContext string) string {
		ctx := ""
		if taskContext != "" {
			ctx = fmt.Sprintf("Context: %s. ", taskContext)
		}
		return fmt.Sprintf("Complete task: %q. %sRecommended approach: 1) Break down into smaller subtasks, 2) Research requirements, 3) Plan implementation, 4) Execute step by step, 5) Review and validate results.", title, ctx)
	},
	minutes:    120,
	tags:       []string{"general", "planning"},
	confidence: 0.6,
}

// fallbackSuggestion is the deterministic path used when the completion
// API is unconfigured or unreachable.
func fallbackSuggestion(title, taskContext string) Suggestion {
	lower := strings.ToLower(title)

	rule := defaultFallback
	for _, r := range fallbackRules {
		if matchesAny(lower, r.keywords) {
			rule = r
			break
		}
	}

	return clamp(Suggestion{
		SuggestedDescription: rule.describe(title, taskContext),
		EstimatedMinutes:     rule.minutes,
		SuggestedTags:        rule.tags,
		Confidence:           rule.confidence,
	})
}

func matchesAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
