package retention

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"feedbackbot/internal/config"
	"feedbackbot/internal/storage/sqlite"
)

type PurgeResult struct {
	Purged int64
	Kept   int
}

// PurgeExpired deletes download batches older than retention and reports how
// many are left.
func PurgeExpired(db *sql.DB, retention time.Duration, now time.Time) (PurgeResult, error) {
	cutoff := now.Add(-retention)
	n, err := sqlite.PurgeBatchesBefore(db, cutoff)
	if err != nil {
		return PurgeResult{}, fmt.Errorf("purge before %s: %w", cutoff.Format(time.RFC3339), err)
	}
	kept, err := sqlite.CountBatches(db)
	if err != nil {
		return PurgeResult{Purged: n}, fmt.Errorf("count batches: %w", err)
	}
	return PurgeResult{Purged: n, Kept: kept}, nil
}

func FormatPurgeSummary(res PurgeResult, retention time.Duration) string {
	if res.Purged == 0 {
		return fmt.Sprintf("no download batches older than %s, %d kept", retention, res.Kept)
	}
	return fmt.Sprintf("purged %d download batches older than %s, %d kept", res.Purged, retention, res.Kept)
}

// StartPurgeScheduler runs PurgeExpired on the standard 5-field cron
// expression in cfg.PurgeSchedule until ctx is done. An empty schedule
// disables purging.
func StartPurgeScheduler(ctx context.Context, cfg config.Config, db *sql.DB) {
	schedule := strings.TrimSpace(cfg.PurgeSchedule)
	if schedule == "" {
		log.Println("Download purge disabled (purge_schedule not set)")
		return
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(schedule)
	if err != nil {
		log.Printf("Invalid purge_schedule '%s': %v, download purge disabled", schedule, err)
		return
	}
	retention := cfg.DownloadRetention()
	log.Printf("Download purge scheduled (cron: %s, retention: %s)", schedule, retention)

	go func() {
		for {
			now := time.Now().In(cfg.Location)
			next := sched.Next(now)
			wait := next.Sub(now)
			log.Printf("Next download purge at %s (in %s)", next.Format("Mon Jan 2 15:04"), wait.Round(time.Minute))

			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				log.Println("Download purge scheduler stopped")
				return
			case <-timer.C:
			}

			res, purgeErr := PurgeExpired(db, retention, time.Now())
			if purgeErr != nil {
				log.Printf("Download purge error: %v", purgeErr)
				continue
			}
			log.Printf("Download purge complete: %s", FormatPurgeSummary(res, retention))
		}
	}()
}
