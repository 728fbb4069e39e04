// Package quota tracks YouTube API quota consumption for a single batch
// run, in memory. The counter resets at UTC midnight, matching when the API
// itself resets the daily limit.
package quota

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danbi-analytics/channel-collector-go/pkg/logger"
)

// Manager handles YouTube API quota accounting.
type Manager struct {
	mu               sync.Mutex
	used             int
	day              string
	dailyLimit       int
	thresholdPercent int // Stop processing when this % of quota is used

	now func() time.Time
}

// NewManager creates a new quota manager.
func NewManager(dailyLimit, thresholdPercent int) *Manager {
	if dailyLimit <= 0 {
		dailyLimit = 10000 // YouTube API v3 default
	}
	if thresholdPercent <= 0 || thresholdPercent > 100 {
		thresholdPercent = 90 // Stop at 90% by default
	}

	return &Manager{
		dailyLimit:       dailyLimit,
		thresholdPercent: thresholdPercent,
		now:              time.Now,
	}
}

func (m *Manager) threshold() int {
	return (m.dailyLimit * m.thresholdPercent) / 100
}

// rollover resets the counter when the UTC day changed. Caller holds the
// lock.
func (m *Manager) rollover() {
	today := m.now().UTC().Format("2006-01-02")
	if m.day != today {
		m.day = today
		m.used = 0
	}
}

// CheckAvailable reports whether the operation fits under the threshold.
func (m *Manager) CheckAvailable(requiredQuota int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()

	if m.used >= m.threshold() {
		logger.Log.Warn("quota threshold reached",
			zap.Int("used", m.used),
			zap.Int("dailyLimit", m.dailyLimit),
		)
		return false
	}
	if m.used+requiredQuota > m.threshold() {
		logger.Log.Warn("not enough quota for operation",
			zap.Int("required", requiredQuota),
			zap.Int("used", m.used),
			zap.Int("threshold", m.threshold()),
		)
		return false
	}
	return true
}

// Record adds the cost of a completed API call.
func (m *Manager) Record(quotaCost int, operationType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()

	m.used += quotaCost
	logger.Log.Debug("quota used",
		zap.Int("used", m.used),
		zap.Int("dailyLimit", m.dailyLimit),
		zap.Int("cost", quotaCost),
		zap.String("operation", operationType),
	)
}

// Used returns the quota consumed today.
func (m *Manager) Used() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()
	return m.used
}

// UsagePercentage returns the percentage of the daily quota used.
func (m *Manager) UsagePercentage() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()
	return float64(m.used) / float64(m.dailyLimit) * 100
}

// IsExhausted reports whether the threshold has been reached.
func (m *Manager) IsExhausted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()
	return m.used >= m.threshold()
}

// Remaining returns how much quota is left before the threshold.
func (m *Manager) Remaining() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollover()

	remaining := m.threshold() - m.used
	if remaining < 0 {
		return 0
	}
	return remaining
}
