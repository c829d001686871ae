package notes

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/cache"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/config"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/logging"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/transcript"
	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, videoID string) (*transcript.Result, error) {
	args := m.Called(ctx, videoID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*transcript.Result), args.Error(1)
}

type MockMetadata struct {
	mock.Mock
}

func (m *MockMetadata) Fetch(ctx context.Context, videoID string) models.VideoMetadata {
	args := m.Called(ctx, videoID)
	return args.Get(0).(models.VideoMetadata)
}

type MockAssistant struct {
	mock.Mock
}

func (m *MockAssistant) Summarize(ctx context.Context, title, transcript string) (string, error) {
	args := m.Called(ctx, title, transcript)
	return args.String(0), args.Error(1)
}

func (m *MockAssistant) Chat(ctx context.Context, transcript, message string) (string, error) {
	args := m.Called(ctx, transcript, message)
	return args.String(0), args.Error(1)
}

type MockStore struct {
	mock.Mock
}

func (m *MockStore) CreateNote(ctx context.Context, note *models.Note) error {
	args := m.Called(ctx, note)
	if args.Error(0) == nil && note.ID == "" {
		note.ID = "note-1"
	}
	return args.Error(0)
}

func (m *MockStore) GetNote(ctx context.Context, id, userID string) (*models.Note, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Note), args.Error(1)
}

func (m *MockStore) ListNotes(ctx context.Context, userID string, limit, offset int) ([]*models.NoteSummary, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.NoteSummary), args.Error(1)
}

func (m *MockStore) DeleteNote(ctx context.Context, id, userID string) error {
	return m.Called(ctx, id, userID).Error(0)
}

func (m *MockStore) SetNoteExportKey(ctx context.Context, id, key string) error {
	return m.Called(ctx, id, key).Error(0)
}

type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) ExportNote(ctx context.Context, note *models.Note) (string, error) {
	args := m.Called(ctx, note)
	return args.String(0), args.Error(1)
}

func (m *MockExporter) GetURL(ctx context.Context, objectName string) (string, error) {
	args := m.Called(ctx, objectName)
	return args.String(0), args.Error(1)
}

func (m *MockExporter) Delete(ctx context.Context, objectName string) error {
	return m.Called(ctx, objectName).Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishJob(ctx context.Context, job *models.Job) error {
	return m.Called(ctx, job).Error(0)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) NotifyNoteCompleted(ctx context.Context, job *models.Job, note *models.Note) error {
	return m.Called(ctx, job, note).Error(0)
}

func (m *MockNotifier) NotifyNoteFailed(ctx context.Context, job *models.Job) error {
	return m.Called(ctx, job).Error(0)
}

type fixture struct {
	resolver  *MockResolver
	metadata  *MockMetadata
	assistant *MockAssistant
	store     *MockStore
	exporter  *MockExporter
	publisher *MockPublisher
	notifier  *MockNotifier
	cache     *cache.Cache
	redis     *miniredis.Miniredis
	service   *Service
}

// newFixture wires a Service with mocks and a miniredis-backed cache.
// Pass withCache=false to exercise the cache-less paths.
func newFixture(t *testing.T, withCache bool) *fixture {
	t.Helper()

	f := &fixture{
		resolver:  new(MockResolver),
		metadata:  new(MockMetadata),
		assistant: new(MockAssistant),
		store:     new(MockStore),
		exporter:  new(MockExporter),
		publisher: new(MockPublisher),
		notifier:  new(MockNotifier),
	}

	deps := Deps{
		Resolver:  f.resolver,
		Metadata:  f.metadata,
		Assistant: f.assistant,
		Store:     f.store,
		Exporter:  f.exporter,
		Publisher: f.publisher,
		Notifier:  f.notifier,
		Logger:    logging.Nop(),
	}

	if withCache {
		f.redis = miniredis.RunT(t)
		c, err := cache.NewCache(config.RedisConfig{Host: f.redis.Host(), Port: f.redis.Server().Addr().Port})
		require.NoError(t, err)
		t.Cleanup(func() { c.Close() })
		f.cache = c
		deps.Cache = c
	}

	svc, err := NewService(deps)
	require.NoError(t, err)
	f.service = svc
	return f
}
