package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/portfolio-analytics/internal/config"
	"github.com/aristath/portfolio-analytics/internal/scheduler"
)

const (
	// walCheckSchedule runs the WAL maintenance job hourly.
	walCheckSchedule = "0 0 * * * *"
	// vacuumSchedule runs VACUUM on Sundays at 03:00.
	vacuumSchedule = "0 0 3 * * SUN"
)

// JobInstances holds the registered jobs for manual triggering
type JobInstances struct {
	DailySync           *scheduler.DailySyncJob
	CheckWALCheckpoints *scheduler.CheckWALCheckpointsJob // nil on PostgreSQL
	VacuumDatabase      *scheduler.VacuumDatabaseJob      // nil on PostgreSQL
}

// All returns the registered jobs.
func (j *JobInstances) All() []scheduler.Job {
	jobs := []scheduler.Job{j.DailySync}
	if j.CheckWALCheckpoints != nil {
		jobs = append(jobs, j.CheckWALCheckpoints)
	}
	if j.VacuumDatabase != nil {
		jobs = append(jobs, j.VacuumDatabase)
	}
	return jobs
}

// RegisterJobs creates the jobs and registers them with sched
func RegisterJobs(container *Container, cfg *config.Config, sched *scheduler.Scheduler, log zerolog.Logger) (*JobInstances, error) {
	jobs := &JobInstances{
		DailySync: scheduler.NewDailySyncJob(container.StockService, container.PortfolioService, cfg.SyncTimeout, log),
	}
	if err := sched.AddJob(cfg.SyncSchedule, jobs.DailySync); err != nil {
		return nil, fmt.Errorf("failed to register daily sync job: %w", err)
	}

	if container.SQLiteDB != nil {
		jobs.CheckWALCheckpoints = scheduler.NewCheckWALCheckpointsJob(container.SQLiteDB, log)
		if err := sched.AddJob(walCheckSchedule, jobs.CheckWALCheckpoints); err != nil {
			return nil, fmt.Errorf("failed to register WAL checkpoint job: %w", err)
		}

		jobs.VacuumDatabase = scheduler.NewVacuumDatabaseJob(container.SQLiteDB, log)
		if err := sched.AddJob(vacuumSchedule, jobs.VacuumDatabase); err != nil {
			return nil, fmt.Errorf("failed to register vacuum job: %w", err)
		}
	}

	return jobs, nil
}
