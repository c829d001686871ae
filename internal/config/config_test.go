package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	tmpfile, err := os.CreateTemp("", "config-*.yaml")
	require.NoError(t, err)
	t.Cleanup(func() { os.Remove(tmpfile.Name()) })

	_, err = tmpfile.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, tmpfile.Close())

	return tmpfile.Name()
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9091
  host: "127.0.0.1"

database:
  host: "testdb"
  port: 5432
  user: "testuser"
  password: "testpass"
  dbname: "testdb"

auth:
  jwtSecret: "test-secret"

transcript:
  enableYtDlpPy: false
  subtitleLangs: ["en", "en-GB"]
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9091, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "127.0.0.1:9091", cfg.Server.Addr())
	assert.Equal(t, "testdb", cfg.Database.Host)
	assert.Equal(t, "test-secret", cfg.Auth.JWTSecret)

	assert.False(t, cfg.Transcript.EnableYtDlpPy)
	assert.True(t, cfg.Transcript.EnableCaptions)
	assert.Equal(t, []string{"en", "en-GB"}, cfg.Transcript.SubtitleLangs)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwtSecret: "test-secret"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "session", cfg.Auth.CookieName)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "gpt-4o-mini", cfg.LLM.Model)
	assert.Equal(t, 50000, cfg.LLM.MaxTranscriptChars)
	assert.Equal(t, 30000, cfg.LLM.MaxChatContext)
	assert.Equal(t, "en", cfg.Transcript.Language)
	assert.Equal(t, 2*time.Minute, cfg.Transcript.SubprocessTimeout)
	assert.Equal(t, []string{"en", "en-US"}, cfg.Transcript.SubtitleLangs)
	assert.Equal(t, 3, cfg.Webhook.MaxAttempts)
}

func TestLoadEnvOverride(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwtSecret: "from-file"
`)
	t.Setenv("STUDYNOTES_AUTH_JWTSECRET", "from-env")
	t.Setenv("STUDYNOTES_LLM_APIKEY", "sk-test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
}

func TestLoadRejectsMissingSecret(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8081
`)

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRequiresStrategy(t *testing.T) {
	cfg := Config{
		Auth: AuthConfig{JWTSecret: "s"},
		LLM:  LLMConfig{Model: "m"},
	}
	assert.Error(t, cfg.Validate())

	cfg.Transcript.EnableInnertube = true
	assert.NoError(t, cfg.Validate())
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Expected error when loading nonexistent file")
	}
}
