package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gpt "github.com/sashabaranov/go-openai"
)

// Fallback is returned whenever the upstream call fails; recommendation
// generation never surfaces an error past this package.
const Fallback = "Unable to generate recommendations at this time."

const systemPrompt = "You are a helpful assistant providing mental health recommendations."

const promptTemplate = `Based on the following transcription and Fitbit data, suggest three actionable recommendations to improve mental health tomorrow:

Transcription: %s
Fitbit Data: %s

Format each recommendation exactly like this:
Recommendation 1:
[Title]
[Description]

Recommendation 2:
[Title]
[Description]

Recommendation 3:
[Title]
[Description]`

type Recommender struct {
	client *gpt.Client
	model  string
	logger *slog.Logger
}

func NewRecommender(apiKey, model string, timeout time.Duration, logger *slog.Logger) *Recommender {
	cfg := gpt.DefaultConfig(apiKey)
	cfg.HTTPClient = &http.Client{Timeout: timeout}
	return NewRecommenderWithClient(gpt.NewClientWithConfig(cfg), model, logger)
}

func NewRecommenderWithClient(client *gpt.Client, model string, logger *slog.Logger) *Recommender {
	if model == "" {
		model = gpt.GPT3Dot5Turbo
	}
	return &Recommender{
		client: client,
		model:  model,
		logger: logger,
	}
}

func (r *Recommender) Recommend(ctx context.Context, transcription string, fitness any) string {
	fitnessJSON, err := json.Marshal(fitness)
	if err != nil {
		fitnessJSON = []byte("{}")
	}

	prompt := fmt.Sprintf(promptTemplate, transcription, fitnessJSON)

	r.logger.Info("generating recommendations")

	resp, err := r.client.CreateChatCompletion(ctx, gpt.ChatCompletionRequest{
		Model: r.model,
		Messages: []gpt.ChatCompletionMessage{
			{Role: gpt.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: gpt.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   300,
		Temperature: 0.7,
	})
	if err != nil {
		r.logger.Error("generating recommendations", "error", err)
		return Fallback
	}

	if len(resp.Choices) == 0 {
		r.logger.Error("generating recommendations", "error", "empty choices in response")
		return Fallback
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content)
}
