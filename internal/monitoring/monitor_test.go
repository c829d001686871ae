package monitoring

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/queue"
)

type MockQueue struct {
	mock.Mock
}

func (m *MockQueue) GetQueueDepth() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func (m *MockQueue) GetDLQDepth() (int, error) {
	args := m.Called()
	return args.Int(0), args.Error(1)
}

func TestSampleRecordsDepths(t *testing.T) {
	q := new(MockQueue)
	q.On("GetQueueDepth").Return(12, nil)
	q.On("GetDLQDepth").Return(3, nil)

	m := NewMonitor(q, DefaultThresholds(), 0, nil)
	require.NoError(t, m.Sample())

	s := m.Snapshot()
	assert.Equal(t, 12, s.QueueDepth)
	assert.Equal(t, 3, s.DLQDepth)
	assert.False(t, s.LastUpdated.IsZero())
	assert.Equal(t, float64(12), testutil.ToFloat64(metrics.QueueDepth.WithLabelValues(queue.NoteQueueName)))
	assert.Equal(t, float64(3), testutil.ToFloat64(metrics.QueueDepth.WithLabelValues(queue.DeadLetterQueueName)))
	assert.Equal(t, StatusHealthy, m.Health())
	assert.Empty(t, m.Alerts())
}

func TestSampleQueueError(t *testing.T) {
	q := new(MockQueue)
	q.On("GetQueueDepth").Return(0, errors.New("channel closed"))

	m := NewMonitor(q, DefaultThresholds(), 0, nil)
	err := m.Sample()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "queue depth")
	q.AssertNotCalled(t, "GetDLQDepth")
}

func TestHealthThresholds(t *testing.T) {
	tests := []struct {
		name     string
		depth    int
		dlq      int
		failures int
		want     string
		alerts   int
	}{
		{name: "healthy", depth: 10, dlq: 0, want: StatusHealthy},
		{name: "deep queue", depth: 501, dlq: 0, want: StatusWarning, alerts: 1},
		{name: "dlq backlog", depth: 10, dlq: 51, want: StatusCritical, alerts: 1},
		{name: "failing jobs", depth: 0, dlq: 0, failures: 5, want: StatusWarning, alerts: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := new(MockQueue)
			q.On("GetQueueDepth").Return(tt.depth, nil)
			q.On("GetDLQDepth").Return(tt.dlq, nil)

			m := NewMonitor(q, DefaultThresholds(), 0, nil)
			require.NoError(t, m.Sample())
			for i := 0; i < 10; i++ {
				var err error
				if i < tt.failures {
					err = errors.New("boom")
				}
				m.ObserveJob(err)
			}

			assert.Equal(t, tt.want, m.Health())
			assert.Len(t, m.Alerts(), tt.alerts)
		})
	}
}

func TestObserveJobCounts(t *testing.T) {
	m := NewMonitor(new(MockQueue), DefaultThresholds(), 0, nil)
	m.ObserveJob(nil)
	m.ObserveJob(errors.New("transient"))

	s := m.Snapshot()
	assert.Equal(t, int64(2), s.ProcessedJobs)
	assert.Equal(t, int64(1), s.FailedJobs)
}
