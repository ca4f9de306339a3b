package service

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/copperline/courier/internal/domain"
)

func entriesWithStatuses(statuses ...domain.EmailStatus) []*domain.EmailLogEntry {
	entries := make([]*domain.EmailLogEntry, len(statuses))
	for i, s := range statuses {
		entries[i] = &domain.EmailLogEntry{Status: s}
	}
	return entries
}

func TestComputeStatsEmpty(t *testing.T) {
	stats := ComputeStats(nil)

	assert.Equal(t, 0, stats.Total)
	assert.Equal(t, float64(0), stats.OpenRate)
	assert.Equal(t, float64(0), stats.ClickRate)
	assert.Equal(t, float64(0), stats.BounceRate)
	assert.False(t, math.IsNaN(stats.OpenRate))
}

func TestComputeStatsRates(t *testing.T) {
	// Sent is defined as count(status in {sent, delivered}), so this mix
	// yields sent=2 and bounceRate=50. Do not "correct" these numbers to
	// sent=3 / bounceRate 33.33: that would count the opened entry as
	// sent, which the current-status definition rules out.
	entries := entriesWithStatuses(
		domain.StatusDelivered,
		domain.StatusDelivered,
		domain.StatusOpened,
		domain.StatusBounced,
		domain.StatusFailed,
	)

	stats := ComputeStats(entries)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Sent) // delivered entries count as sent
	assert.Equal(t, 2, stats.Delivered)
	assert.Equal(t, 1, stats.Opened)
	assert.Equal(t, 1, stats.Bounced)
	assert.Equal(t, 1, stats.Failed)

	assert.InDelta(t, 50.0, stats.OpenRate, 0.001)
	assert.InDelta(t, 0.0, stats.ClickRate, 0.001)
	assert.InDelta(t, 50.0, stats.BounceRate, 0.001)
}

func TestComputeStatsCurrentStatusOnly(t *testing.T) {
	// An opened email no longer counts under delivered or sent: status
	// is a single current field, not a set of passed-through states.
	entries := entriesWithStatuses(domain.StatusOpened, domain.StatusClicked)

	stats := ComputeStats(entries)

	assert.Equal(t, 0, stats.Sent)
	assert.Equal(t, 0, stats.Delivered)
	assert.Equal(t, 1, stats.Opened)
	assert.Equal(t, 1, stats.Clicked)

	// No delivered entries means rates stay 0 even with opens recorded.
	assert.Equal(t, float64(0), stats.OpenRate)
	assert.Equal(t, float64(0), stats.ClickRate)
}

func TestComputeStatsNoBounces(t *testing.T) {
	entries := entriesWithStatuses(
		domain.StatusSent,
		domain.StatusSent,
		domain.StatusDelivered,
		domain.StatusPending,
	)

	stats := ComputeStats(entries)

	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Sent)
	assert.Equal(t, float64(0), stats.BounceRate)
}
