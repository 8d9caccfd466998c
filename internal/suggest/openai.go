package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const systemPrompt = "You are an expert software development task planning assistant. " +
	"You help break down tasks, estimate time, and provide actionable descriptions. " +
	"Always respond with valid JSON in the exact format requested."

// openAIClient talks to the chat-completions endpoint. One bounded
// attempt per suggestion; failures are the caller's cue to fall back.
type openAIClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// rawSuggestion is the JSON shape the model is asked to produce.
type rawSuggestion struct {
	SuggestedDescription string   `json:"suggestedDescription"`
	EstimatedMinutes     int      `json:"estimatedMinutes"`
	SuggestedTags        []string `json:"suggestedTags"`
	Confidence           float64  `json:"confidence"`
}

func newOpenAIClient(apiKey, baseURL, model string) *openAIClient {
	return &openAIClient{
		apiKey:  apiKey,
		baseURL: baseURL,
		model:   model,
		client:  &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *openAIClient) complete(ctx context.Context, userPrompt string) (rawSuggestion, error) {
	var zero rawSuggestion

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return zero, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return zero, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return zero, fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr chatError
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error.Message != "" {
			return zero, fmt.Errorf("completion API error (%d): %s", resp.StatusCode, apiErr.Error.Message)
		}
		return zero, fmt.Errorf("completion API error (%d)", resp.StatusCode)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return zero, fmt.Errorf("decode response: %w", err)
	}
	if len(chatResp.Choices) == 0 || chatResp.Choices[0].Message.Content == "" {
		return zero, fmt.Errorf("empty completion")
	}

	var raw rawSuggestion
	if err := json.Unmarshal([]byte(chatResp.Choices[0].Message.Content), &raw); err != nil {
		return zero, fmt.Errorf("decode suggestion JSON: %w", err)
	}
	return raw, nil
}

// buildPrompt embeds the title, optional context, and roster into the
// instruction the model answers with structured JSON.
func buildPrompt(title, taskContext string, roster []RosterUser) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Task Title: %q", title)
	if taskContext != "" {
		fmt.Fprintf(&b, "\nAdditional context: %s", taskContext)
	}
	if len(roster) > 0 {
		b.WriteString("\nTeam roster (username, id, skills):")
		for _, u := range roster {
			fmt.Fprintf(&b, "\n- %s (id=%d): %s", u.Username, u.ID, u.Skills)
		}
	}

	b.WriteString(`

Please analyze this task and provide a structured response in the following JSON format:

{
  "suggestedDescription": "Detailed step-by-step description of how to complete this task",
  "estimatedMinutes": 120,
  "suggestedTags": ["tag1", "tag2", "tag3"],
  "confidence": 0.85
}

Guidelines:
- suggestedDescription: Provide a clear, actionable description with 3-5 numbered steps
- estimatedMinutes: Realistic time estimate in minutes (15-480 range typical)
- suggestedTags: 2-4 relevant tags for categorization (lowercase, hyphenated)
- confidence: Your confidence in the suggestion (0.0-1.0, where 1.0 is highest confidence)

Consider the type of task (bug fix, feature, refactoring, testing, documentation, etc.) and provide appropriate guidance.`)

	return b.String()
}
