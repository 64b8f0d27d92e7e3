package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronServiceSchedulesJobs(t *testing.T) {
	fx := newCirculationFixture(date(2026, time.June, 1))
	service := NewCronService(fx.reservations, nil)

	service.Start()
	defer service.Stop()

	entries := service.cron.Entries()
	require.Len(t, entries, 2)

	// Sweep at midnight, token purge half an hour later. Entries are
	// sorted by next activation, so compare as a set.
	reference := time.Date(2026, time.June, 1, 12, 0, 0, 0, time.Local)
	next := []time.Time{
		entries[0].Schedule.Next(reference),
		entries[1].Schedule.Next(reference),
	}
	assert.ElementsMatch(t, []time.Time{
		time.Date(2026, time.June, 2, 0, 0, 0, 0, time.Local),
		time.Date(2026, time.June, 2, 0, 30, 0, 0, time.Local),
	}, next)
}
