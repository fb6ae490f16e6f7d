package helper

import (
	"log"
	"time"

	"resto_manager/service"

	"github.com/go-co-op/gocron/v2"
	"github.com/robfig/cron/v3"
)

var (
	sweepScheduler     *cron.Cron
	retentionScheduler gocron.Scheduler
)

// StartIntentSweeper persists read-time expiry for overdue checkout intents
// every minute. Overlapping runs are skipped, not queued.
func StartIntentSweeper(intents *service.IntentService) {
	sweepScheduler = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
	))

	_, err := sweepScheduler.AddFunc("@every 1m", func() {
		n, err := intents.ExpireOverdue()
		if err != nil {
			log.Printf("intent sweep failed: %v", err)
			return
		}
		if n > 0 {
			log.Printf("expired %d overdue checkout intents", n)
		}
	})
	if err != nil {
		log.Printf("failed to schedule intent sweep: %v", err)
		return
	}

	sweepScheduler.Start()
}

func StopIntentSweeper() {
	if sweepScheduler != nil {
		sweepScheduler.Stop()
	}
}

// StartRetentionScheduler purges settled intents older than 30 days, daily at
// 04:10 Peru time when the restaurants are closed.
func StartRetentionScheduler(intents *service.IntentService) {
	s, err := gocron.NewScheduler(
		gocron.WithLocation(time.FixedZone("PET", -5*3600)),
	)
	if err != nil {
		log.Fatal(err)
	}

	retentionScheduler = s

	_, err = s.NewJob(
		gocron.DailyJob(
			1,
			gocron.NewAtTimes(
				gocron.NewAtTime(4, 10, 0),
			),
		),
		gocron.NewTask(func() {
			n, err := intents.PurgeStale(30 * 24 * time.Hour)
			if err != nil {
				log.Printf("intent purge failed: %v", err)
				return
			}
			if n > 0 {
				log.Printf("purged %d stale checkout intents", n)
			}
		}),
	)
	if err != nil {
		log.Printf("failed to schedule intent purge: %v", err)
		return
	}

	s.Start()
}

func StopRetentionScheduler() {
	if retentionScheduler != nil {
		_ = retentionScheduler.Shutdown()
	}
}
