package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/yukikurage/tasknest/internal/models"
)

type AIService struct {
	client *openai.Client
	model  string
}

// TaskDraft is a task suggested by the model. Drafts are never stored directly.
type TaskDraft struct {
	Title    string          `json:"title"`
	Priority models.Priority `json:"priority"`
	Tags     []string        `json:"tags"`
}

type draftResponse struct {
	Tasks []TaskDraft `json:"tasks"`
}

func NewAIService(apiKey, model string) *AIService {
	return NewAIServiceWithClient(openai.NewClient(apiKey), model)
}

// NewAIServiceWithClient uses a preconfigured client, e.g. one pointed at another base URL.
func NewAIServiceWithClient(client *openai.Client, model string) *AIService {
	if model == "" {
		model = openai.GPT4o
	}
	return &AIService{
		client: client,
		model:  model,
	}
}

// DraftTasksFromText asks the model to break free text into task drafts
func (s *AIService) DraftTasksFromText(ctx context.Context, text string) ([]TaskDraft, error) {
	if s.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(`You are a task extraction assistant. Extract concrete, actionable tasks from the text below.

Text:
%s

Respond with a JSON object of this shape:
{
  "tasks": [
    {
      "title": "short task title, 3 to 255 characters",
      "priority": "one of low, medium, high",
      "tags": ["short tag names, 2 to 50 characters"]
    }
  ]
}

Rules:
- Return {"tasks": []} when the text contains no tasks
- Use "medium" when the urgency is unclear
- Return only JSON, no explanations`, text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Temperature: 0.3,
		},
	)

	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	content := stripCodeFence(resp.Choices[0].Message.Content)

	var drafts draftResponse
	if err := json.Unmarshal([]byte(content), &drafts); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return drafts.Tasks, nil
}

func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}

	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}
