package application

import (
	"context"

	"mood-journal/internal/domain"
)

// Transcriber turns a recorded audio file into text, a summary, and
// sentiment analysis. The call blocks until the upstream service completes.
type Transcriber interface {
	Transcribe(ctx context.Context, path string) (*domain.Transcript, error)
}
