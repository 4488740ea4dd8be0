package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/hiddentreasuresnetwork/platform/internal/pkg/bootstrap"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/env"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/metrics/counter"
	"github.com/hiddentreasuresnetwork/platform/internal/pkg/schedule"
)

// runTimeout bounds a single pass over due reports.
const runTimeout = 10 * time.Minute

func main() {
	env.SetupEnvFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	services, err := bootstrap.New(ctx)
	if err != nil {
		log.Fatalf("[Scheduler] startup failed: %v", err)
	}
	defer services.Close()
	if services.Schedule == nil {
		log.Fatal("[Scheduler] database not configured")
	}

	interval := time.Duration(env.GetInt("SCHEDULER_INTERVAL_MINUTES", 15)) * time.Minute
	s, err := gocron.NewScheduler()
	if err != nil {
		log.Fatalf("[Scheduler] create scheduler: %v", err)
	}

	_, err = s.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { runDue(ctx, services.Schedule) }),
		gocron.WithName("scheduled-reports"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		log.Fatalf("[Scheduler] register job: %v", err)
	}

	if services.Activity != nil {
		flushEvery := time.Duration(env.GetInt("ACTIVITY_FLUSH_MINUTES", 5)) * time.Minute
		_, err = s.NewJob(
			gocron.DurationJob(flushEvery),
			gocron.NewTask(func() { flushActivity(ctx, services.Activity) }),
			gocron.WithName("activity-flush"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			log.Fatalf("[Scheduler] register activity job: %v", err)
		}
	} else {
		log.Warn("[Scheduler] redis unavailable, activity flushing disabled")
	}

	log.Infof("[Scheduler] running due reports every %s", interval)
	s.Start()

	<-ctx.Done()
	if err := s.Shutdown(); err != nil {
		log.Errorf("[Scheduler] shutdown: %v", err)
	}
}

func runDue(ctx context.Context, svc *schedule.Service) {
	ctx, cancel := context.WithTimeout(ctx, runTimeout)
	defer cancel()

	summary, err := svc.RunDue(ctx)
	if summary != nil {
		log.Infof("[Scheduler] processed=%d sent=%d partial=%d failed=%d",
			summary.Processed, summary.Sent, summary.Partial, summary.Failed)
	}
	if err != nil {
		log.Errorf("[Scheduler] run due reports: %v", err)
	}
}

func flushActivity(ctx context.Context, c *counter.Counter) {
	ctx, cancel := context.WithTimeout(ctx, time.Minute)
	defer cancel()
	if _, err := c.Flush(ctx); err != nil {
		log.Errorf("[Scheduler] flush activity: %v", err)
	}
}
