package usage

import (
	"fmt"
	"sync"
	"time"

	"github.com/TaylorDurden/rank-everything/internal/domain/ai"
)

const (
	// DefaultDailyLimit is the per-tenant call ceiling per calendar day.
	DefaultDailyLimit = 50
	// DefaultMonthlyLimit is the per-tenant ceiling per calendar month.
	DefaultMonthlyLimit = 1000
)

// Limiter tracks per-tenant daily and monthly completion-call budgets.
// The daily window resets at local midnight via a self-rearming timer and,
// independently, via a lazy date check on every read so correctness never
// depends on the timer firing on time. Safe for concurrent use.
type Limiter struct {
	mu           sync.Mutex
	daily        map[string]int
	monthly      map[string]int
	tokens       map[string]int
	dailyLimit   int
	monthlyLimit int
	currentDate  string // 2006-01-02
	currentMonth string // 2006-01
	now          func() time.Time
}

func New(dailyLimit, monthlyLimit int) *Limiter {
	l := NewWithClock(dailyLimit, monthlyLimit, time.Now)
	go l.scheduleDailyReset()
	return l
}

// NewWithClock injects the clock and skips the reset timer; tests drive
// window rollover through the lazy check instead.
func NewWithClock(dailyLimit, monthlyLimit int, now func() time.Time) *Limiter {
	if dailyLimit <= 0 {
		dailyLimit = DefaultDailyLimit
	}
	if monthlyLimit <= 0 {
		monthlyLimit = DefaultMonthlyLimit
	}
	return &Limiter{
		daily:        make(map[string]int),
		monthly:      make(map[string]int),
		tokens:       make(map[string]int),
		dailyLimit:   dailyLimit,
		monthlyLimit: monthlyLimit,
		currentDate:  now().Format("2006-01-02"),
		currentMonth: now().Format("2006-01"),
		now:          now,
	}
}

// CanProceed reports whether the tenant may make another completion call.
// Either ceiling being reached blocks until its window resets.
func (l *Limiter) CanProceed(tenantID string) ai.Decision {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rolloverLocked()

	if l.daily[tenantID] >= l.dailyLimit {
		return ai.Decision{Allowed: false, Reason: fmt.Sprintf("daily limit of %d requests reached", l.dailyLimit)}
	}
	if l.monthly[tenantID] >= l.monthlyLimit {
		return ai.Decision{Allowed: false, Reason: fmt.Sprintf("monthly limit of %d requests reached", l.monthlyLimit)}
	}
	return ai.Decision{Allowed: true}
}

// Record counts one completed upstream call against both windows.
func (l *Limiter) Record(tenantID string, tokenUsage int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rolloverLocked()

	l.daily[tenantID]++
	l.monthly[tenantID]++
	l.tokens[tenantID] += tokenUsage
}

// Stats returns the tenant's consumption against both ceilings.
func (l *Limiter) Stats(tenantID string) ai.UsageStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rolloverLocked()

	daily := l.daily[tenantID]
	monthly := l.monthly[tenantID]
	return ai.UsageStats{
		Daily:            daily,
		Monthly:          monthly,
		DailyLimit:       l.dailyLimit,
		MonthlyLimit:     l.monthlyLimit,
		RemainingDaily:   max(0, l.dailyLimit-daily),
		RemainingMonthly: max(0, l.monthlyLimit-monthly),
	}
}

// rolloverLocked lazily resets stale windows. Caller holds the lock.
func (l *Limiter) rolloverLocked() {
	date := l.now().Format("2006-01-02")
	if date != l.currentDate {
		l.daily = make(map[string]int)
		l.currentDate = date
	}
	month := l.now().Format("2006-01")
	if month != l.currentMonth {
		l.monthly = make(map[string]int)
		l.tokens = make(map[string]int)
		l.currentMonth = month
	}
}

// scheduleDailyReset fires at local midnight and re-arms itself for the
// next one. A missed tick is harmless: rolloverLocked covers the gap.
func (l *Limiter) scheduleDailyReset() {
	for {
		now := l.now()
		next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
		d := next.Sub(now)
		if d <= 0 {
			d = time.Minute
		}
		timer := time.NewTimer(d)
		<-timer.C

		l.mu.Lock()
		l.rolloverLocked()
		l.mu.Unlock()
	}
}
