package application

import "context"

// Recommender produces actionable wellbeing recommendations from a
// transcription and fitness data. It never fails: implementations substitute
// a fixed fallback message on any upstream error.
type Recommender interface {
	Recommend(ctx context.Context, transcription string, fitness any) string
}
