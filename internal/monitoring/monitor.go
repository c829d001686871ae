package monitoring

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/queue"
)

const (
	StatusHealthy  = "healthy"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

// Snapshot is the last sampled state of the job pipeline
type Snapshot struct {
	QueueDepth    int       `json:"queue_depth"`
	DLQDepth      int       `json:"dlq_depth"`
	ProcessedJobs int64     `json:"processed_jobs"`
	FailedJobs    int64     `json:"failed_jobs"`
	LastUpdated   time.Time `json:"last_updated"`
}

// Thresholds control when the monitor raises alerts
type Thresholds struct {
	QueueDepth  int
	DLQDepth    int
	FailureRate float64
}

// DefaultThresholds returns the alert thresholds used by the worker
func DefaultThresholds() Thresholds {
	return Thresholds{
		QueueDepth:  500,
		DLQDepth:    50,
		FailureRate: 0.2,
	}
}

// QueueProvider defines the interface for queue depth sampling
type QueueProvider interface {
	GetQueueDepth() (int, error)
	GetDLQDepth() (int, error)
}

// Monitor samples queue depths and job outcomes for a worker
type Monitor struct {
	queue      QueueProvider
	thresholds Thresholds
	interval   time.Duration
	logger     *logging.Logger

	mu       sync.RWMutex
	snapshot Snapshot
}

// NewMonitor creates a new monitor
func NewMonitor(provider QueueProvider, thresholds Thresholds, interval time.Duration, logger *logging.Logger) *Monitor {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Monitor{
		queue:      provider,
		thresholds: thresholds,
		interval:   interval,
		logger:     logger,
	}
}

// Start samples until ctx is cancelled
func (m *Monitor) Start(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := m.Sample(); err != nil {
				m.logger.WithError(err).Warn("Failed to sample queue depth")
				metrics.RecordError("monitor", "sample")
				continue
			}
			for _, alert := range m.Alerts() {
				m.logger.WithField("status", m.Health()).Warn(alert)
			}
		}
	}
}

// Sample reads the current queue depths
func (m *Monitor) Sample() error {
	depth, err := m.queue.GetQueueDepth()
	if err != nil {
		return fmt.Errorf("failed to get queue depth: %w", err)
	}
	dlqDepth, err := m.queue.GetDLQDepth()
	if err != nil {
		return fmt.Errorf("failed to get DLQ depth: %w", err)
	}

	metrics.RecordQueueDepth(queue.NoteQueueName, depth)
	metrics.RecordQueueDepth(queue.DeadLetterQueueName, dlqDepth)

	m.mu.Lock()
	m.snapshot.QueueDepth = depth
	m.snapshot.DLQDepth = dlqDepth
	m.snapshot.LastUpdated = time.Now()
	m.mu.Unlock()
	return nil
}

// ObserveJob counts the outcome of one processed delivery
func (m *Monitor) ObserveJob(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshot.ProcessedJobs++
	if err != nil {
		m.snapshot.FailedJobs++
	}
}

// Snapshot returns a copy of the last sampled state
func (m *Monitor) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshot
}

// Health returns overall pipeline health
func (m *Monitor) Health() string {
	s := m.Snapshot()

	if m.thresholds.DLQDepth > 0 && s.DLQDepth > m.thresholds.DLQDepth {
		return StatusCritical
	}
	if m.thresholds.QueueDepth > 0 && s.QueueDepth > m.thresholds.QueueDepth {
		return StatusWarning
	}
	if m.failureRate(s) > m.thresholds.FailureRate {
		return StatusWarning
	}
	return StatusHealthy
}

// Alerts returns human readable alerts for the current state
func (m *Monitor) Alerts() []string {
	s := m.Snapshot()
	var alerts []string

	if m.thresholds.DLQDepth > 0 && s.DLQDepth > m.thresholds.DLQDepth {
		alerts = append(alerts, fmt.Sprintf("High DLQ depth: %d messages", s.DLQDepth))
	}
	if m.thresholds.QueueDepth > 0 && s.QueueDepth > m.thresholds.QueueDepth {
		alerts = append(alerts, fmt.Sprintf("High queue depth: %d jobs pending", s.QueueDepth))
	}
	if rate := m.failureRate(s); rate > m.thresholds.FailureRate {
		alerts = append(alerts, fmt.Sprintf("High failure rate: %.1f%%", rate*100))
	}

	return alerts
}

func (m *Monitor) failureRate(s Snapshot) float64 {
	if s.ProcessedJobs == 0 {
		return 0
	}
	return float64(s.FailedJobs) / float64(s.ProcessedJobs)
}
