package application

import (
	"context"

	"mood-journal/internal/domain"
)

// FitnessProvider fetches today's tracker metrics. Implementations are
// best-effort: per-metric failures are recorded on the snapshot instead of
// returned, so a partial day is still usable.
type FitnessProvider interface {
	FetchToday(ctx context.Context) domain.Snapshot
}
