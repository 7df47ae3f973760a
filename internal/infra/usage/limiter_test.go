package usage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDailyLimitBlocks(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(2, 100, func() time.Time { return now })

	require.True(t, l.CanProceed("acme").Allowed)
	l.Record("acme", 100)
	l.Record("acme", 200)

	d := l.CanProceed("acme")
	require.False(t, d.Allowed)
	require.Equal(t, "daily limit of 2 requests reached", d.Reason)

	// other tenants are unaffected
	require.True(t, l.CanProceed("globex").Allowed)
}

func TestMonthlyLimitBlocks(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(100, 3, func() time.Time { return now })

	for i := 0; i < 3; i++ {
		l.Record("acme", 0)
	}

	d := l.CanProceed("acme")
	require.False(t, d.Allowed)
	require.Equal(t, "monthly limit of 3 requests reached", d.Reason)
}

func TestDailyWindowRollsOverAtMidnight(t *testing.T) {
	now := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	l := NewWithClock(1, 100, func() time.Time { return now })

	l.Record("acme", 0)
	require.False(t, l.CanProceed("acme").Allowed)

	now = time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC)
	require.True(t, l.CanProceed("acme").Allowed)

	// monthly count survives the daily rollover
	require.Equal(t, 1, l.Stats("acme").Monthly)
}

func TestMonthlyWindowRollsOver(t *testing.T) {
	now := time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(100, 1, func() time.Time { return now })

	l.Record("acme", 500)
	require.False(t, l.CanProceed("acme").Allowed)

	now = time.Date(2026, 4, 1, 0, 1, 0, 0, time.UTC)
	require.True(t, l.CanProceed("acme").Allowed)
	require.Equal(t, 0, l.Stats("acme").Monthly)
}

func TestStatsReportsBothCeilings(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewWithClock(50, 1000, func() time.Time { return now })

	l.Record("acme", 100)
	l.Record("acme", 100)

	s := l.Stats("acme")
	require.Equal(t, 2, s.Daily)
	require.Equal(t, 2, s.Monthly)
	require.Equal(t, 50, s.DailyLimit)
	require.Equal(t, 1000, s.MonthlyLimit)
	require.Equal(t, 48, s.RemainingDaily)
	require.Equal(t, 998, s.RemainingMonthly)

	// unknown tenant starts at zero
	s = l.Stats("globex")
	require.Equal(t, 0, s.Daily)
	require.Equal(t, 50, s.RemainingDaily)
}
