// internal/dataset/seed.go
package dataset

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ammerola/api-framework/internal/core/domain"
	"github.com/ammerola/api-framework/internal/core/ports"
)

const syncPeopleSequence = "SELECT setval(pg_get_serial_sequence('people', 'id'), COALESCE(MAX(id), 1)) FROM people"

// SeedResult summarizes a Seed run.
type SeedResult struct {
	Deleted  int64
	Inserted int64
	Duration time.Duration
}

// Seed replaces the contents of the people table with the embedded fixture.
func Seed(ctx context.Context, database ports.Database, logger *slog.Logger) (*SeedResult, error) {
	people, err := People()
	if err != nil {
		return nil, err
	}
	return SeedPeople(ctx, database, people, logger)
}

// SeedPeople replaces the contents of the people table with people, which
// must carry explicit ids. Everything runs in one transaction, so a failed
// seed leaves the previous rows in place. The id sequence is moved past the
// seeded ids so later inserts do not collide.
func SeedPeople(ctx context.Context, database ports.Database, people []domain.Person, logger *slog.Logger) (*SeedResult, error) {
	start := time.Now()

	deleted, inserted, err := NewPeopleRepository(database, logger).ReplaceAll(ctx, people)
	if err != nil {
		return nil, fmt.Errorf("seed people: %w", err)
	}

	result := &SeedResult{
		Deleted:  deleted,
		Inserted: inserted,
		Duration: time.Since(start),
	}

	logger.InfoContext(ctx, "people dataset seeded",
		slog.Int64("deleted", result.Deleted),
		slog.Int64("inserted", result.Inserted),
		slog.Duration("duration", result.Duration),
	)

	return result, nil
}
