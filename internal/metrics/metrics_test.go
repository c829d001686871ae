package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordHTTPRequest(t *testing.T) {
	// Reset metrics
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("POST", "/api/v1/notes", "201", 12.5)

	counter := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/api/v1/notes", "201"))
	if counter != 1.0 {
		t.Errorf("Expected counter to be 1.0, got %f", counter)
	}
}

func TestRecordStrategyAttempt(t *testing.T) {
	TranscriptStrategyAttempts.Reset()
	TranscriptStrategyDuration.Reset()

	RecordStrategyAttempt("captions", "error", 0.4)
	RecordStrategyAttempt("innertube", "empty", 0.9)
	RecordStrategyAttempt("captions", "error", 0.2)
	RecordStrategyAttempt("yt-dlp-module", "success", 8.1)

	if got := testutil.ToFloat64(TranscriptStrategyAttempts.WithLabelValues("captions", "error")); got != 2.0 {
		t.Errorf("Expected captions errors to be 2.0, got %f", got)
	}
	if got := testutil.ToFloat64(TranscriptStrategyAttempts.WithLabelValues("yt-dlp-module", "success")); got != 1.0 {
		t.Errorf("Expected yt-dlp-module successes to be 1.0, got %f", got)
	}
	if got := testutil.CollectAndCount(TranscriptStrategyDuration); got != 3 {
		t.Errorf("Expected 3 duration series, got %d", got)
	}
}

func TestRecordTranscriptResolution(t *testing.T) {
	TranscriptResolutionsTotal.Reset()

	RecordTranscriptResolved("captions", 1200)
	RecordTranscriptResolved("captions", 5400)
	RecordTranscriptUnavailable()

	if got := testutil.ToFloat64(TranscriptResolutionsTotal.WithLabelValues("captions")); got != 2.0 {
		t.Errorf("Expected captions resolutions to be 2.0, got %f", got)
	}
	if got := testutil.ToFloat64(TranscriptResolutionsTotal.WithLabelValues("unavailable")); got != 1.0 {
		t.Errorf("Expected unavailable to be 1.0, got %f", got)
	}
}

func TestRecordLLMRequest(t *testing.T) {
	LLMRequestsTotal.Reset()

	RecordLLMRequest("summarize", "success", 14.2)
	RecordLLMRequest("chat", "error", 1.1)

	if got := testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("summarize", "success")); got != 1.0 {
		t.Errorf("Expected summarize successes to be 1.0, got %f", got)
	}
	if got := testutil.ToFloat64(LLMRequestsTotal.WithLabelValues("chat", "error")); got != 1.0 {
		t.Errorf("Expected chat errors to be 1.0, got %f", got)
	}
}

func TestRecordNoteAndJob(t *testing.T) {
	NotesCreatedTotal.Reset()
	JobsCompletedTotal.Reset()

	RecordNoteCreated("sync")
	RecordNoteCreated("async")
	RecordNoteCreated("sync")
	RecordJobCompleted("completed", 31)

	if got := testutil.ToFloat64(NotesCreatedTotal.WithLabelValues("sync")); got != 2.0 {
		t.Errorf("Expected sync notes to be 2.0, got %f", got)
	}
	if got := testutil.ToFloat64(JobsCompletedTotal.WithLabelValues("completed")); got != 1.0 {
		t.Errorf("Expected completed jobs to be 1.0, got %f", got)
	}
}

func TestRecordStorageOperation(t *testing.T) {
	StorageOperationsTotal.Reset()
	StorageBytesTransferred.Reset()

	RecordStorageOperation("upload", "success", 0.2, 2048)
	RecordStorageOperation("upload", "success", 0.1, 1024)

	if got := testutil.ToFloat64(StorageOperationsTotal.WithLabelValues("upload", "success")); got != 2.0 {
		t.Errorf("Expected uploads to be 2.0, got %f", got)
	}
	if got := testutil.ToFloat64(StorageBytesTransferred.WithLabelValues("upload")); got != 3072 {
		t.Errorf("Expected 3072 bytes, got %f", got)
	}
}

func TestRecordDatabaseOperation(t *testing.T) {
	DatabaseOperationsTotal.Reset()

	RecordDatabaseOperation("create_note", "success", 0.003)
	RecordDatabaseOperation("create_note", "error", 0.010)

	if got := testutil.ToFloat64(DatabaseOperationsTotal.WithLabelValues("create_note", "error")); got != 1.0 {
		t.Errorf("Expected 1 failed insert, got %f", got)
	}
}

func TestRecordCacheAccess(t *testing.T) {
	CacheAccessTotal.Reset()

	RecordCacheAccess("transcript", true)
	RecordCacheAccess("transcript", true)
	RecordCacheAccess("transcript", false)

	hits := testutil.ToFloat64(CacheAccessTotal.WithLabelValues("transcript", "hit"))
	if hits != 2.0 {
		t.Errorf("Expected cache hits to be 2.0, got %f", hits)
	}

	misses := testutil.ToFloat64(CacheAccessTotal.WithLabelValues("transcript", "miss"))
	if misses != 1.0 {
		t.Errorf("Expected cache misses to be 1.0, got %f", misses)
	}
}

func TestRecordError(t *testing.T) {
	ErrorsTotal.Reset()

	RecordError("api", "validation")
	RecordError("worker", "llm")
	RecordError("api", "validation")

	apiErrors := testutil.ToFloat64(ErrorsTotal.WithLabelValues("api", "validation"))
	if apiErrors != 2.0 {
		t.Errorf("Expected API validation errors to be 2.0, got %f", apiErrors)
	}

	workerErrors := testutil.ToFloat64(ErrorsTotal.WithLabelValues("worker", "llm"))
	if workerErrors != 1.0 {
		t.Errorf("Expected worker LLM errors to be 1.0, got %f", workerErrors)
	}
}

func BenchmarkRecordHTTPRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordHTTPRequest("GET", "/api/v1/notes", "200", 0.123)
	}
}

func BenchmarkRecordStrategyAttempt(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordStrategyAttempt("captions", "success", 0.8)
	}
}
