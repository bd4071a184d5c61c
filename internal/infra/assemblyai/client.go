package assemblyai

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	aai "github.com/AssemblyAI/assemblyai-go-sdk"

	"mood-journal/internal/domain"
)

// NoSummary is substituted when the service returns a transcript without a
// summary.
const NoSummary = "No summary available."

// Client submits recorded audio for transcription with sentiment analysis
// and a bullet-style informative summary, blocking until the transcript
// completes. The SDK handles the upload and polling cycle.
type Client struct {
	client *aai.Client
	logger *slog.Logger
}

func NewClient(apiKey string, logger *slog.Logger) *Client {
	return &Client{
		client: aai.NewClient(apiKey),
		logger: logger,
	}
}

func (c *Client) Transcribe(ctx context.Context, path string) (*domain.Transcript, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening audio file: %w", err)
	}
	defer f.Close()

	c.logger.Info("transcribing audio", "path", path)

	params := &aai.TranscriptOptionalParams{
		SentimentAnalysis: aai.Bool(true),
		Summarization:     aai.Bool(true),
		SummaryModel:      "informative",
		SummaryType:       "bullets",
	}

	transcript, err := c.client.Transcripts.TranscribeFromReader(ctx, f, params)
	if err != nil {
		return nil, fmt.Errorf("transcribing audio: %w", err)
	}

	result := &domain.Transcript{
		Text:      aai.ToString(transcript.Text),
		Summary:   NoSummary,
		Sentiment: transcript.SentimentAnalysisResults,
	}
	if summary := aai.ToString(transcript.Summary); summary != "" {
		result.Summary = summary
	}

	return result, nil
}
