package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"mood-journal/internal/domain"
)

// Journal sequences one recording session: capture, transcription, fitness
// fetch, recommendations. It owns the process-wide "latest results" value.
type Journal struct {
	recorder Recorder
	stt      Transcriber
	fitness  FitnessProvider
	advisor  Recommender
	notifier Notifier
	logger   *slog.Logger

	mu     sync.Mutex
	latest *domain.SessionResult
}

func NewJournal(
	recorder Recorder,
	stt Transcriber,
	fitness FitnessProvider,
	advisor Recommender,
	notifier Notifier,
	logger *slog.Logger,
) *Journal {
	return &Journal{
		recorder: recorder,
		stt:      stt,
		fitness:  fitness,
		advisor:  advisor,
		notifier: notifier,
		logger:   logger,
	}
}

// StartRecording begins a capture session. Starting while one is active is
// not an error; it reports "Already recording" and leaves the session alone.
func (j *Journal) StartRecording(ctx context.Context) (string, error) {
	err := j.recorder.Start(ctx)
	if errors.Is(err, ErrAlreadyRecording) {
		return "Already recording", nil
	}
	if err != nil {
		return "", fmt.Errorf("starting recording: %w", err)
	}

	j.logger.Info("recording started")
	return "Recording started", nil
}

// StopRecording ends the capture session and runs the full pipeline before
// returning. Transcription failure aborts the pipeline; the recommendation
// step never fails, it falls back to a fixed message.
func (j *Journal) StopRecording(ctx context.Context) (string, error) {
	path, err := j.recorder.Stop()
	if errors.Is(err, ErrNotRecording) {
		return "Not currently recording", nil
	}
	if err != nil {
		return "", fmt.Errorf("stopping recording: %w", err)
	}

	j.logger.Info("recording saved", "path", path)

	transcript, err := j.stt.Transcribe(ctx, path)
	if err != nil {
		return "", fmt.Errorf("transcribing session audio: %w", err)
	}

	snapshot := j.fitness.FetchToday(ctx)
	recommendations := j.advisor.Recommend(ctx, transcript.Text, snapshot)

	result := &domain.SessionResult{
		Audio:           *transcript,
		Fitness:         snapshot,
		Recommendations: recommendations,
	}

	j.mu.Lock()
	j.latest = result
	j.mu.Unlock()

	j.logger.Info("session processed")

	if err := j.notifier.Notify(ctx, "Journal session processed, recommendations ready"); err != nil {
		j.logger.Error("notifying session completion", "error", err)
	}

	return "Recording stopped and processing complete", nil
}

// Results returns the most recently processed session, if any.
func (j *Journal) Results() (*domain.SessionResult, bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.latest == nil {
		return nil, false
	}
	return j.latest, true
}

// Recommend generates recommendations from externally supplied inputs,
// bypassing the recording pipeline.
func (j *Journal) Recommend(ctx context.Context, transcription string, fitness any) string {
	return j.advisor.Recommend(ctx, transcription, fitness)
}
