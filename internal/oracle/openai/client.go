// Package openai implements the oracle interfaces against an OpenAI-style
// chat-completions API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/prepdeck/study-planner-api/internal/models"
	"github.com/prepdeck/study-planner-api/internal/oracle"
)

// Client talks to the chat-completions endpoint with bounded retries. It
// never decides fallback behavior itself: callers handle any returned error
// by switching to the deterministic estimator.
type Client struct {
	httpClient       *resty.Client
	model            string
	maxRetryAttempts uint
	logger           *zap.Logger
}

// NewClient builds a client against the given base URL.
func NewClient(baseURL, apiKey, model string, timeout time.Duration, retryAttempts uint, logger *zap.Logger) *Client {
	httpClient := resty.New()
	httpClient.SetBaseURL(baseURL)
	httpClient.SetHeader("Authorization", "Bearer "+apiKey)
	httpClient.SetHeader("Content-Type", "application/json")
	httpClient.SetTimeout(timeout)

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		httpClient:       httpClient,
		model:            model,
		maxRetryAttempts: retryAttempts,
		logger:           logger,
	}
}

// Close releases the underlying HTTP client.
func (c *Client) Close() error {
	return c.httpClient.Close()
}

type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float32   `json:"temperature,omitempty"`
}

type message struct {
	Role    role   `json:"role"`
	Content string `json:"content"`
}

type role string

const (
	roleSystem role = "system"
	roleUser   role = "user"
)

type chatCompletionResponse struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []choice `json:"choices"`
}

type choice struct {
	Index        int           `json:"index"`
	Message      choiceMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type choiceMessage struct {
	Role    role   `json:"role"`
	Content string `json:"content"`
}

// isRetryableError determines if an error should trigger a retry.
func isRetryableError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()

	// Incomplete payloads often decode as truncated JSON.
	if strings.Contains(errStr, "json.Unmarshal") || strings.Contains(errStr, "unexpected end of JSON input") {
		return true
	}

	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Server errors and rate limiting.
	if strings.Contains(errStr, "response error 5") || strings.Contains(errStr, "response error 429") {
		return true
	}

	return false
}

func (c *Client) withRetry(ctx context.Context, op func() error) error {
	return retry.Do(
		func() error {
			if err := op(); err != nil {
				if !isRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.maxRetryAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	)
}

const estimateSystemPrompt = `You are an exam-preparation planning assistant for secondary-school students.

Given an exam's subject, paper type, unit list, days remaining, and the student's available study hours, estimate the total preparation hours needed.

STRICT OUTPUT: return ONLY a JSON object, no text outside it:
{
  "estimatedHours": <number>,
  "breakdown": {"<unit>": <hours>, ...},
  "reasoning": "<one or two sentences explaining the estimate>",
  "recommendation": "<one actionable study recommendation>"
}

Hours must be realistic for the paper type and unit count. The breakdown keys must be exactly the units provided.`

// estimatePayload mirrors the contract; pointer fields let us distinguish
// missing keys from zero values during validation.
type estimatePayload struct {
	EstimatedHours *float64           `json:"estimatedHours"`
	Breakdown      map[string]float64 `json:"breakdown"`
	Reasoning      *string            `json:"reasoning"`
	Recommendation *string            `json:"recommendation"`
}

// EstimateExamPrep implements oracle.Estimator.
func (c *Client) EstimateExamPrep(ctx context.Context, req oracle.EstimateRequest) (oracle.Estimate, error) {
	var result oracle.Estimate
	err := c.withRetry(ctx, func() error {
		estimate, err := c.estimateExamPrep(ctx, req)
		if err != nil {
			return err
		}
		result = estimate
		return nil
	})
	if err != nil {
		return oracle.Estimate{}, err
	}
	return result, nil
}

func (c *Client) estimateExamPrep(ctx context.Context, req oracle.EstimateRequest) (oracle.Estimate, error) {
	userJSON, err := json.Marshal(req)
	if err != nil {
		return oracle.Estimate{}, fmt.Errorf("marshal estimate request: %w", err)
	}

	requestBody := chatCompletionRequest{
		Model:       c.model,
		Temperature: 0.2,
		Messages: []message{
			{Role: roleSystem, Content: estimateSystemPrompt},
			{Role: roleUser, Content: string(userJSON)},
		},
	}

	response, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&chatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return oracle.Estimate{}, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return oracle.Estimate{}, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody, ok := response.Result().(*chatCompletionResponse)
	if !ok || responseBody == nil || len(responseBody.Choices) == 0 {
		return oracle.Estimate{}, fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := responseBody.Choices[0].Message.Content
	if content == "" {
		return oracle.Estimate{}, fmt.Errorf("empty response content: %s", response.String())
	}

	var payload estimatePayload
	if err := json.Unmarshal([]byte(extractJSONObject(content)), &payload); err != nil {
		return oracle.Estimate{}, fmt.Errorf("json.Unmarshal(%s) > %w", content, err)
	}

	// Out-of-contract payloads are rejected so the caller falls back.
	if payload.EstimatedHours == nil || payload.Breakdown == nil ||
		payload.Reasoning == nil || payload.Recommendation == nil {
		return oracle.Estimate{}, retry.Unrecoverable(fmt.Errorf("estimate payload missing required fields: %s", content))
	}

	c.logger.Debug("oracle estimate received",
		zap.String("subject", req.Subject),
		zap.Float64("estimated_hours", *payload.EstimatedHours),
	)

	return oracle.Estimate{
		Hours:          *payload.EstimatedHours,
		Breakdown:      payload.Breakdown,
		Reasoning:      *payload.Reasoning,
		Recommendation: *payload.Recommendation,
		Source:         models.EstimateSourceOracle,
	}, nil
}

const generateSystemPrompt = `You are an exam-preparation planning assistant producing a study session list.

Emit a line-delimited stream. Announce each session with a tool-invocation triple:
tool_start
tool_data {"topic": "<unit or topic>", "difficulty": "easy|medium|hard"}
tool_end

Emit exactly the requested number of tool_data lines, one session each, ordered easiest first. Any other lines are treated as free-text narrative for the student. Never include dates or times; scheduling is handled elsewhere.`

// GenerateSessions implements oracle.SessionGenerator. The raw body is
// consumed as a line stream and converted into typed events.
func (c *Client) GenerateSessions(ctx context.Context, req oracle.GenerateRequest) ([]oracle.ScheduleEvent, error) {
	var events []oracle.ScheduleEvent
	err := c.withRetry(ctx, func() error {
		parsed, err := c.generateSessions(ctx, req)
		if err != nil {
			return err
		}
		events = parsed
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

func (c *Client) generateSessions(ctx context.Context, req oracle.GenerateRequest) ([]oracle.ScheduleEvent, error) {
	userJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	requestBody := chatCompletionRequest{
		Model:       c.model,
		Temperature: 0.4,
		Messages: []message{
			{Role: roleSystem, Content: generateSystemPrompt},
			{Role: roleUser, Content: string(userJSON)},
		},
	}

	response, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(requestBody).
		SetResult(&chatCompletionResponse{}).
		Post("/chat/completions")
	if err != nil {
		return nil, fmt.Errorf("httpClient.Post > %w", err)
	}
	if response.IsError() {
		return nil, fmt.Errorf("response error %d: %s", response.StatusCode(), response.String())
	}

	responseBody, ok := response.Result().(*chatCompletionResponse)
	if !ok || responseBody == nil || len(responseBody.Choices) == 0 {
		return nil, fmt.Errorf("empty response body or choices: %s", response.String())
	}

	content := responseBody.Choices[0].Message.Content
	if content == "" {
		return nil, fmt.Errorf("empty response content: %s", response.String())
	}

	events, dropped, err := oracle.ParseScheduleStream(strings.NewReader(content))
	if err != nil {
		return nil, err
	}
	if dropped > 0 {
		c.logger.Warn("dropped malformed session lines from generation stream",
			zap.Int("dropped", dropped),
			zap.String("subject", req.Subject),
		)
	}

	return events, nil
}

// extractJSONObject trims any prose the model wraps around the JSON object.
func extractJSONObject(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start >= 0 && end > start {
		return content[start : end+1]
	}
	return content
}
