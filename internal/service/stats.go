package service

import (
	"github.com/copperline/courier/internal/domain"
)

// statsSnapshotLimit caps how many entries one stats computation reads.
const statsSnapshotLimit = 10000

// ComputeStats derives engagement metrics from a snapshot of log
// entries. Pure aggregation over current status: an entry that was
// delivered and later opened counts only under opened, since status is
// a single current field, not a set of passed-through states.
//
// The "sent" metric counts entries currently sent or delivered -
// "left pending state successfully" - which undercounts entries that
// have progressed further.
func ComputeStats(entries []*domain.EmailLogEntry) domain.EmailStats {
	stats := domain.EmailStats{Total: len(entries)}

	for _, entry := range entries {
		switch entry.Status {
		case domain.StatusSent:
			stats.Sent++
		case domain.StatusDelivered:
			stats.Sent++
			stats.Delivered++
		case domain.StatusOpened:
			stats.Opened++
		case domain.StatusClicked:
			stats.Clicked++
		case domain.StatusBounced:
			stats.Bounced++
		case domain.StatusComplained:
			stats.Complained++
		case domain.StatusFailed:
			stats.Failed++
		}
	}

	// Division by zero is defined as 0, never NaN or an error.
	if stats.Delivered > 0 {
		stats.OpenRate = float64(stats.Opened) / float64(stats.Delivered) * 100
		stats.ClickRate = float64(stats.Clicked) / float64(stats.Delivered) * 100
	}
	if stats.Sent > 0 {
		stats.BounceRate = float64(stats.Bounced) / float64(stats.Sent) * 100
	}

	return stats
}
