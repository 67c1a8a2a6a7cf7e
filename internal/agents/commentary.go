// Package agents provides the optional AI commentary over diagnostic reports.
package agents

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"decay-monitor/internal/models"
)

// LLMClient defines the interface for LLM completions.
type LLMClient interface {
	CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAIClient implements LLMClient using the OpenAI API.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAI LLM client.
func NewOpenAIClient(apiKey string, model string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// CompleteWithSystem sends a prompt with system message to the LLM.
func (c *OpenAIClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}

const commentarySystemPrompt = `You are a quantitative analyst. Given trend/drag
efficiency metrics for a leveraged instrument, write a short (3-4 sentence)
plain-language assessment of whether holding it over the horizon looks favorable.
Do not give financial advice; describe what the numbers imply.`

// Commentator produces a narrative over a diagnostic report.
type Commentator struct {
	client LLMClient
}

// NewCommentator creates a commentator backed by the given LLM client.
func NewCommentator(client LLMClient) *Commentator {
	return &Commentator{client: client}
}

// Narrate asks the LLM for a short assessment of the report.
func (c *Commentator) Narrate(ctx context.Context, report *models.DiagnosticReport) (string, error) {
	prompt := fmt.Sprintf(
		"Ticker: %s\nLeverage: %.1fx\nLookback window: %d days\nHorizon: %d trading days\n"+
			"Forward implied variance: %.6f\nAvg trend: %.4f\nAvg drag: %.4f\nAvg efficiency: %.4f\nRegime: %s",
		report.Drag.Ticker,
		report.Drag.LeverageK,
		report.Drag.LookbackWindow,
		report.Simulation.DaysToExpiry,
		report.Simulation.ForwardVariance,
		report.Metrics.AvgTrend,
		report.Metrics.AvgDrag,
		report.Metrics.AvgEfficiency,
		report.Regime,
	)
	return c.client.CompleteWithSystem(ctx, commentarySystemPrompt, prompt)
}
