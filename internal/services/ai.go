package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/todo-reminder-api/internal/models"
)

// GeneratedTask is a task suggestion that has not been saved.
type GeneratedTask struct {
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Priority    models.Priority `json:"priority"`
	DueDate     *time.Time      `json:"dueDate"`
}

// OpenAIDrafter drafts tasks with a chat completion model.
type OpenAIDrafter struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

// NewOpenAIDrafter creates a drafter for apiKey.
func NewOpenAIDrafter(apiKey string) *OpenAIDrafter {
	return &OpenAIDrafter{
		client: openai.NewClient(apiKey),
		model:  openai.GPT4o,
		now:    time.Now,
	}
}

const draftPrompt = `You extract concrete to-do items from free text.

Current time (UTC): %s

Text:
%s

Reply with a JSON array only, no prose:
[
  {
    "title": "short title, at most 100 characters",
    "description": "details, at most 500 characters",
    "priority": "Low | Medium | High",
    "dueDate": "ISO 8601 timestamp such as 2025-10-28T23:59:59Z, or null"
  }
]

Rules:
- Return [] when there is nothing to do.
- Resolve relative dates like "tomorrow" or "next week" against the current time.
- Use Medium when the text gives no hint of urgency.`

// DraftTasks analyzes text and extracts task suggestions.
func (d *OpenAIDrafter) DraftTasks(ctx context.Context, text string) ([]GeneratedTask, error) {
	if d.client == nil {
		return nil, fmt.Errorf("OpenAI client not initialized")
	}

	prompt := fmt.Sprintf(draftPrompt, d.now().UTC().Format(time.RFC3339), text)

	resp, err := d.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: d.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
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

	return parseDrafts(resp.Choices[0].Message.Content)
}

// parseDrafts decodes the model reply, tolerating a fenced code block.
func parseDrafts(content string) ([]GeneratedTask, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var tasks []GeneratedTask
	if err := json.Unmarshal([]byte(content), &tasks); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w (response: %s)", err, content)
	}

	return tasks, nil
}
