package cron

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/clockwise-hq/attendance-backend-go/internal/domain/attendance"
	"github.com/clockwise-hq/attendance-backend-go/internal/service/evidence"
)

// sweepWindowDays bounds how far back the sweeper looks. Orphans only come
// from registrations whose compensating delete failed, so a short window
// is enough; anything older was already swept.
const sweepWindowDays = 7

type EvidenceJobs struct {
	evidenceService evidence.Service
	eventRepo       attendance.EventRepository
}

func NewEvidenceJobs(evidenceService evidence.Service, eventRepo attendance.EventRepository) *EvidenceJobs {
	return &EvidenceJobs{
		evidenceService: evidenceService,
		eventRepo:       eventRepo,
	}
}

func (j *EvidenceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob("sweep_orphaned_evidence", 6*time.Hour, j.SweepOrphanedEvidence)
}

// SweepOrphanedEvidence deletes evidence files that no committed event
// references. A failed registration normally deletes its own photo; this
// job is the offline backstop for the cases where that delete itself
// failed.
func (j *EvidenceJobs) SweepOrphanedEvidence(ctx context.Context) error {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	windowStart := today.AddDate(0, 0, -sweepWindowDays)

	// Today's folder is skipped: a file there may belong to a
	// registration still in flight.
	stored, err := j.evidenceService.ListRefs(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to list stored evidence: %w", err)
	}

	live, err := j.eventRepo.ListEvidenceRefs(ctx, windowStart)
	if err != nil {
		return fmt.Errorf("failed to list referenced evidence: %w", err)
	}
	liveSet := make(map[string]struct{}, len(live))
	for _, ref := range live {
		liveSet[ref] = struct{}{}
	}

	windowStartStr := windowStart.Format("2006-01-02")
	removed := 0
	for _, ref := range stored {
		parts := strings.Split(filepath.ToSlash(ref), "/")
		if len(parts) < 3 || parts[1] < windowStartStr {
			continue
		}
		if _, ok := liveSet[ref]; ok {
			continue
		}
		if err := j.evidenceService.Delete(ctx, ref); err != nil {
			slog.Warn("Cron: failed to delete orphaned evidence", "ref", ref, "error", err)
			continue
		}
		removed++
	}

	if removed > 0 {
		slog.Info("Cron: swept orphaned evidence", "removed", removed)
	}
	return nil
}
