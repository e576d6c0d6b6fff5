package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/database"
)

// VacuumDatabaseJob reclaims space left behind by rewritten series documents
type VacuumDatabaseJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewVacuumDatabaseJob creates a new VacuumDatabaseJob
func NewVacuumDatabaseJob(db *database.DB, log zerolog.Logger) *VacuumDatabaseJob {
	return &VacuumDatabaseJob{
		db:  db,
		log: log.With().Str("job", "vacuum_database").Logger(),
	}
}

// Name returns the job name
func (j *VacuumDatabaseJob) Name() string {
	return "vacuum_database"
}

// Run executes VACUUM and logs the reclaimed size
func (j *VacuumDatabaseJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	startTime := time.Now()
	sizeBefore, err := j.sizeMB(ctx)
	if err != nil {
		return err
	}

	if _, err := j.db.Conn().ExecContext(ctx, "VACUUM"); err != nil {
		return fmt.Errorf("VACUUM failed: %w", err)
	}

	sizeAfter, err := j.sizeMB(ctx)
	if err != nil {
		return err
	}

	j.log.Info().
		Str("database", j.db.Name()).
		Float64("size_before_mb", sizeBefore).
		Float64("size_after_mb", sizeAfter).
		Float64("space_reclaimed_mb", sizeBefore-sizeAfter).
		Dur("duration_ms", time.Since(startTime)).
		Msg("VACUUM completed")

	return nil
}

func (j *VacuumDatabaseJob) sizeMB(ctx context.Context) (float64, error) {
	var pageCount, pageSize int64
	if err := j.db.Conn().QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err != nil {
		return 0, fmt.Errorf("failed to read page count: %w", err)
	}
	if err := j.db.Conn().QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize); err != nil {
		return 0, fmt.Errorf("failed to read page size: %w", err)
	}
	return float64(pageCount*pageSize) / 1024 / 1024, nil
}
