package insights

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sashabaranov/go-openai"
)

// Chart kinds a plan may ask for.
const (
	ChartNone = "none"
	ChartBar  = "bar"
	ChartLine = "line"
	ChartPie  = "pie"
)

// ErrModel wraps failures of the language model call or its answer.
var ErrModel = errors.New("language model request failed")

// Plan is the model's answer to a statistics question.
type Plan struct {
	SQL   string `json:"sql"`
	Chart string `json:"chart"`
	X     string `json:"x"`
	Y     string `json:"y"`
	Title string `json:"title"`
}

// WantsChart reports whether the plan asks for an image.
func (p Plan) WantsChart() bool {
	return p.Chart != ChartNone && p.X != "" && p.Y != ""
}

// Completer is the part of *openai.Client the planner calls.
type Completer interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Planner turns questions into SQL plans and caches them by normalized question.
type Planner struct {
	client Completer
	model  string
	cache  *lru.Cache[string, Plan]
}

// NewOpenAIClient builds a go-openai client. baseURL may point at any
// OpenAI-compatible endpoint.
func NewOpenAIClient(apiKey, baseURL string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(cfg)
}

func NewPlanner(client Completer, model string, cacheSize int) (*Planner, error) {
	if cacheSize <= 0 {
		cacheSize = 256
	}
	cache, err := lru.New[string, Plan](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create plan cache: %w", err)
	}
	return &Planner{client: client, model: model, cache: cache}, nil
}

func normalizeQuestion(q string) string {
	return strings.Join(strings.Fields(strings.ToLower(q)), " ")
}

// Plan returns a cached plan or asks the model for a new one.
func (p *Planner) Plan(ctx context.Context, question string) (Plan, error) {
	key := normalizeQuestion(question)
	if plan, ok := p.cache.Get(key); ok {
		return plan, nil
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.model,
		Temperature: 0,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: question},
		},
	})
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrModel, err)
	}
	if len(resp.Choices) == 0 {
		return Plan{}, fmt.Errorf("%w: empty answer", ErrModel)
	}

	plan, err := parsePlan(resp.Choices[0].Message.Content)
	if err != nil {
		return Plan{}, fmt.Errorf("%w: %v", ErrModel, err)
	}
	// Only statements the guard accepts are remembered.
	if _, err := CheckReadOnly(plan.SQL); err == nil {
		p.cache.Add(key, plan)
	}
	return plan, nil
}

// Forget drops the cached plan for question so the model is asked again.
func (p *Planner) Forget(question string) {
	p.cache.Remove(normalizeQuestion(question))
}

// parsePlan accepts the JSON object, optionally inside a markdown fence.
func parsePlan(content string) (Plan, error) {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}

	var plan Plan
	if err := json.Unmarshal([]byte(s), &plan); err != nil {
		return Plan{}, fmt.Errorf("decode plan: %w", err)
	}
	if strings.TrimSpace(plan.SQL) == "" {
		return Plan{}, errors.New("plan has no sql")
	}
	switch plan.Chart {
	case ChartBar, ChartLine, ChartPie, ChartNone:
	case "":
		plan.Chart = ChartNone
	default:
		plan.Chart = ChartBar
	}
	return plan, nil
}

const systemPrompt = `You translate questions about an event platform into PostgreSQL.
Answer with one JSON object and nothing else:
{"sql": "<one SELECT statement>", "chart": "none|bar|line|pie", "x": "<label column>", "y": "<numeric column>", "title": "<chart title>"}
Rules:
- Only a single SELECT (CTEs allowed). Never modify data.
- Use "none" when a table answers the question better than a chart.
- x and y must be column aliases produced by the query.

Schema:
users(id, username, email, full_name, country, is_admin, created_at)
organizers(id, name, email, phone)
categories(id, name)
events(id, name, description, location, city, country, date, max_capacity, price, organizer_id -> organizers.id)
event_categories(event_id -> events.id, category_id -> categories.id)
registrations(id, user_id -> users.id, event_id -> events.id, status 'registered'|'canceled', registration_date)
feedbacks(id, user_id -> users.id, event_id -> events.id, comment_text, rating_value 1..5, timestamp)`
