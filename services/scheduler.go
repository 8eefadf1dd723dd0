// services/scheduler.go
package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/jonboulle/clockwork"
)

// MaintenanceJob is one periodic background task.
type MaintenanceJob struct {
	Name  string
	Every time.Duration
	Run   func(ctx context.Context) error
}

// StartMaintenanceScheduler registers the jobs and starts the scheduler.
// Jobs never overlap with themselves; a run still going at the next tick is skipped.
func StartMaintenanceScheduler(ctx context.Context, clock clockwork.Clock, jobs ...MaintenanceJob) (gocron.Scheduler, error) {
	sched, err := gocron.NewScheduler(gocron.WithClock(clock))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	for _, job := range jobs {
		if job.Every <= 0 {
			_ = sched.Shutdown()
			return nil, fmt.Errorf("job %s: interval must be positive", job.Name)
		}
		_, err := sched.NewJob(
			gocron.DurationJob(job.Every),
			gocron.NewTask(func() {
				if err := job.Run(ctx); err != nil {
					log.Printf("[Scheduler] %s failed: %v", job.Name, err)
				}
			}),
			gocron.WithName(job.Name),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			_ = sched.Shutdown()
			return nil, fmt.Errorf("register job %s: %w", job.Name, err)
		}
		log.Printf("🗓️ [Scheduler] %s every %s", job.Name, job.Every)
	}

	sched.Start()
	return sched, nil
}
