package models

import (
	"encoding/json"
	"testing"
)

func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want bool
	}{
		{"admin", &User{Role: UserRoleAdmin}, true},
		{"regular user", &User{Role: UserRoleUser}, false},
		{"nil user", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.IsAdmin(); got != tt.want {
				t.Errorf("IsAdmin() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUserPasswordHashNotSerialized(t *testing.T) {
	user := User{ID: "u1", Email: "a@b.c", PasswordHash: "secret-hash"}

	data, err := json.Marshal(user)
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	var result map[string]interface{}
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("Failed to unmarshal: %v", err)
	}

	if _, ok := result["password_hash"]; ok {
		t.Error("password hash must not be serialized")
	}
}

func TestPlaceholderMetadata(t *testing.T) {
	meta := PlaceholderMetadata("dGby9BH9bMc")

	if meta.Title != UnknownVideoTitle {
		t.Errorf("Expected title %q, got %q", UnknownVideoTitle, meta.Title)
	}
	if meta.ThumbnailURL != "" {
		t.Errorf("Expected empty thumbnail, got %q", meta.ThumbnailURL)
	}
	if meta.VideoID != "dGby9BH9bMc" {
		t.Errorf("Expected video id to be kept, got %q", meta.VideoID)
	}
}

func TestJobIsFinished(t *testing.T) {
	for status, want := range map[string]bool{
		JobStatusQueued:     false,
		JobStatusProcessing: false,
		JobStatusCompleted:  true,
		JobStatusFailed:     true,
	} {
		job := &Job{Status: status}
		if got := job.IsFinished(); got != want {
			t.Errorf("IsFinished() for %s = %v, want %v", status, got, want)
		}
	}
}

func TestStatsOmitsUnsetCounters(t *testing.T) {
	n := int64(3)
	data, err := json.Marshal(Stats{YourNotes: &n})
	if err != nil {
		t.Fatalf("Failed to marshal: %v", err)
	}

	if string(data) != `{"your_notes":3}` {
		t.Errorf("Unexpected stats json: %s", data)
	}
}
