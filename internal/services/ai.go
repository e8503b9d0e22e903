package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/taskboard/internal/models"
)

const MaxDraftTasks = 20

var (
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
	ErrAINoTasksGenerated     = errors.New("AI did not generate any tasks")
	ErrAITooManyTasks         = fmt.Errorf("AI generated too many tasks (max %d)", MaxDraftTasks)
)

// ChatCompleter is the subset of the OpenAI client used for drafting.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type AIService struct {
	client ChatCompleter
	now    func() time.Time
}

// TaskDraft is a suggested task; nothing is stored until the user creates it.
type TaskDraft struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"due_date"`
}

func NewAIService(apiKey string) *AIService {
	return NewAIServiceWithClient(openai.NewClient(apiKey))
}

// NewAIServiceWithClient wires a custom completion client.
func NewAIServiceWithClient(client ChatCompleter) *AIService {
	return &AIService{
		client: client,
		now:    time.Now,
	}
}

func (s *AIService) WithClock(now func() time.Time) *AIService {
	s.now = now
	return s
}

// DraftTasks extracts task suggestions from free text. Drafts without a
// title are dropped, unknown priorities become Medium and due dates in the
// past are cleared.
func (s *AIService) DraftTasks(ctx context.Context, text string) ([]TaskDraft, error) {
	if s == nil || s.client == nil {
		return nil, ErrAIServiceNotConfigured
	}

	today := models.DateOnly(s.now().UTC())
	prompt := fmt.Sprintf(`You are a task extraction assistant. Extract concrete tasks from the text below.

Today: %s

Text:
%s

Return only a JSON array, no prose:
[
  {
    "title": "short task title (max 255 characters)",
    "description": "details",
    "priority": "Low | Medium | High",
    "due_date": "YYYY-MM-DD, or null when no deadline is stated"
  }
]

Rules:
- Return [] when the text contains no tasks
- Convert relative deadlines ("tomorrow", "next week") to calendar dates`, today.Format("2006-01-02"), text)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: openai.GPT4o,
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

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimSuffix(strings.TrimPrefix(content, "```"), "```")

	var raw []struct {
		Title       string  `json:"title"`
		Description string  `json:"description"`
		Priority    string  `json:"priority"`
		DueDate     *string `json:"due_date"`
	}
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	if len(raw) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(raw) > MaxDraftTasks {
		return nil, ErrAITooManyTasks
	}

	drafts := make([]TaskDraft, 0, len(raw))
	for _, r := range raw {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}
		if runes := []rune(title); len(runes) > 255 {
			title = string(runes[:255])
		}

		draft := TaskDraft{
			Title:       title,
			Description: strings.TrimSpace(r.Description),
			Priority:    models.TaskPriority(r.Priority),
		}
		if !draft.Priority.Valid() {
			draft.Priority = models.TaskPriorityMedium
		}
		if r.DueDate != nil {
			if due, err := time.Parse("2006-01-02", strings.TrimSpace(*r.DueDate)); err == nil && !due.Before(today) {
				draft.DueDate = &due
			}
		}

		drafts = append(drafts, draft)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}

	return drafts, nil
}
