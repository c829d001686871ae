package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/therealutkarshpriyadarshi/studynotes/internal/config"
	"github.com/therealutkarshpriyadarshi/studynotes/internal/metrics"
	"github.com/therealutkarshpriyadarshi/studynotes/pkg/models"
)

// Cache provides caching functionality using Redis
type Cache struct {
	client        *redis.Client
	transcriptTTL time.Duration
	metadataTTL   time.Duration
	jobTTL        time.Duration
}

// NewCache creates a new cache instance
func NewCache(cfg config.RedisConfig) (*Cache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{
		client:        client,
		transcriptTTL: orDefault(cfg.TranscriptTTL, 24*time.Hour),
		metadataTTL:   orDefault(cfg.MetadataTTL, 24*time.Hour),
		jobTTL:        orDefault(cfg.JobTTL, 72*time.Hour),
	}, nil
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Close closes the Redis connection
func (c *Cache) Close() error {
	return c.client.Close()
}

// Ping checks the connection
func (c *Cache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Transcript Cache Operations

// SetTranscript caches a resolved transcript
func (c *Cache) SetTranscript(ctx context.Context, t *models.Transcript) error {
	return c.setJSON(ctx, transcriptKey(t.VideoID), t, c.transcriptTTL)
}

// GetTranscript returns the cached transcript, or nil on a miss
func (c *Cache) GetTranscript(ctx context.Context, videoID string) (*models.Transcript, error) {
	var t models.Transcript
	found, err := c.getJSON(ctx, "transcript", transcriptKey(videoID), &t)
	if err != nil || !found {
		return nil, err
	}
	return &t, nil
}

func transcriptKey(videoID string) string {
	return fmt.Sprintf("transcript:%s", videoID)
}

// Metadata Cache Operations

// SetMetadata caches video title and thumbnail. Placeholder metadata is
// not cached so a later lookup can still succeed.
func (c *Cache) SetMetadata(ctx context.Context, meta models.VideoMetadata) error {
	if meta.Title == models.UnknownVideoTitle {
		return nil
	}
	return c.setJSON(ctx, metadataKey(meta.VideoID), meta, c.metadataTTL)
}

// GetMetadata returns cached metadata, or nil on a miss
func (c *Cache) GetMetadata(ctx context.Context, videoID string) (*models.VideoMetadata, error) {
	var meta models.VideoMetadata
	found, err := c.getJSON(ctx, "metadata", metadataKey(videoID), &meta)
	if err != nil || !found {
		return nil, err
	}
	return &meta, nil
}

func metadataKey(videoID string) string {
	return fmt.Sprintf("metadata:%s", videoID)
}

// Job Cache Operations

// SetJob stores the state of an async note job
func (c *Cache) SetJob(ctx context.Context, job *models.Job) error {
	return c.setJSON(ctx, jobKey(job.ID), job, c.jobTTL)
}

// GetJob retrieves job state, or nil when unknown or expired
func (c *Cache) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	found, err := c.getJSON(ctx, "job", jobKey(jobID), &job)
	if err != nil || !found {
		return nil, err
	}
	return &job, nil
}

func jobKey(jobID string) string {
	return fmt.Sprintf("job:%s", jobID)
}

// Quota Operations

// ConsumeDailyQuota counts one note against the user's quota for the current
// UTC day and reports whether it is still within limit. A limit <= 0 means
// unlimited.
func (c *Cache) ConsumeDailyQuota(ctx context.Context, userID string, limit int64) (bool, int64, error) {
	if limit <= 0 {
		return true, 0, nil
	}

	key := fmt.Sprintf("quota:%s:%s", userID, time.Now().UTC().Format("2006-01-02"))

	count, err := c.client.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to increment quota: %w", err)
	}

	// Set expiry on first request
	if count == 1 {
		if err := c.client.Expire(ctx, key, 25*time.Hour).Err(); err != nil {
			return false, count, fmt.Errorf("failed to set expiry: %w", err)
		}
	}

	return count <= limit, count, nil
}

// Locking Operations

// AcquireLock attempts to acquire a distributed lock
func (c *Cache) AcquireLock(ctx context.Context, resource string, ttl time.Duration) (bool, error) {
	key := fmt.Sprintf("lock:%s", resource)
	return c.client.SetNX(ctx, key, "locked", ttl).Result()
}

// ReleaseLock releases a distributed lock
func (c *Cache) ReleaseLock(ctx context.Context, resource string) error {
	key := fmt.Sprintf("lock:%s", resource)
	return c.client.Del(ctx, key).Err()
}

func (c *Cache) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *Cache) getJSON(ctx context.Context, cacheName, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		metrics.RecordCacheAccess(cacheName, false)
		return false, nil
	}
	if err != nil {
		metrics.RecordError("cache", cacheName)
		return false, fmt.Errorf("failed to get %s from cache: %w", cacheName, err)
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", cacheName, err)
	}
	metrics.RecordCacheAccess(cacheName, true)
	return true, nil
}
