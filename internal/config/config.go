package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. STUDYNOTES_LLM_APIKEY
const EnvPrefix = "STUDYNOTES"

// Config holds all configuration for the application
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	Storage    StorageConfig
	Queue      QueueConfig
	Webhook    WebhookConfig
	Auth       AuthConfig
	LLM        LLMConfig
	Transcript TranscriptConfig
	RateLimit  RateLimitConfig
	Logging    LoggingConfig
	Tracing    TracingConfig
	Metrics    MetricsConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Mode            string // gin mode: debug, release, test
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host          string
	Port          int
	Password      string
	DB            int
	TranscriptTTL time.Duration
	MetadataTTL   time.Duration
	JobTTL        time.Duration
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Enabled         bool
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	UseSSL          bool
	PresignExpiry   time.Duration
}

// QueueConfig holds message queue configuration
type QueueConfig struct {
	Enabled         bool
	Host            string
	Port            int
	User            string
	Password        string
	Vhost           string
	Prefetch        int
	JobTimeout      time.Duration
	MonitorInterval time.Duration
}

// WebhookConfig holds job callback delivery configuration
type WebhookConfig struct {
	Secret      string
	Timeout     time.Duration
	MaxAttempts int
	RetryDelay  time.Duration
}

// AuthConfig holds session and bootstrap account configuration
type AuthConfig struct {
	JWTSecret     string
	SessionTTL    time.Duration
	CookieName    string
	CookieSecure  bool
	AdminEmail    string
	AdminPassword string
}

// LLMConfig holds the chat-completion API configuration
type LLMConfig struct {
	APIBase            string
	APIKey             string
	FallbackKeys       []string
	Model              string
	ChatModel          string
	MaxTokens          int
	SummaryTemperature float64
	ChatTemperature    float64
	Timeout            time.Duration
	MaxTranscriptChars int
	MaxChatContext     int
}

// TranscriptConfig holds transcript acquisition configuration
type TranscriptConfig struct {
	Language          string
	AllowAnyLanguage  bool
	HTTPTimeout       time.Duration
	WatchURL          string
	InnertubeURL      string
	TempDir           string
	PythonPath        string
	YtDlpPath         string
	EnableCaptions    bool
	EnableInnertube   bool
	EnableYtDlpPy     bool
	EnableYtDlpBin    bool
	SubtitleLangs     []string
	SubprocessTimeout time.Duration
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	RequestsPerSecond int
	Burst             int
	DailyNoteQuota    int64
}

// LoggingConfig holds logger configuration
type LoggingConfig struct {
	Level  string
	Format string
	Output string
}

// TracingConfig holds Jaeger configuration
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
}

// MetricsConfig holds metrics server configuration
type MetricsConfig struct {
	Enabled bool
	Port    int
}

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate checks the settings no component can run without
func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, errors.New("auth.jwtSecret is required"))
	}
	if c.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}
	t := c.Transcript
	if !t.EnableCaptions && !t.EnableInnertube && !t.EnableYtDlpPy && !t.EnableYtDlpBin {
		errs = append(errs, errors.New("at least one transcript strategy must be enabled"))
	}
	return errors.Join(errs...)
}

// Addr returns the host:port the API server listens on
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.readTimeout", "30s")
	v.SetDefault("server.writeTimeout", "5m") // note generation can run several strategies
	v.SetDefault("server.shutdownTimeout", "10s")
	v.SetDefault("server.mode", "release")

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "studynotes")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.maxConns", 25)
	v.SetDefault("database.minConns", 2)

	// Redis defaults
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.transcriptTTL", "24h")
	v.SetDefault("redis.metadataTTL", "24h")
	v.SetDefault("redis.jobTTL", "72h")

	// Storage defaults
	v.SetDefault("storage.enabled", false)
	v.SetDefault("storage.endpoint", "localhost:9000")
	v.SetDefault("storage.accessKeyID", "minioadmin")
	v.SetDefault("storage.secretAccessKey", "minioadmin")
	v.SetDefault("storage.bucketName", "study-notes")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.useSSL", false)
	v.SetDefault("storage.presignExpiry", "1h")

	// Queue defaults
	v.SetDefault("queue.enabled", false)
	v.SetDefault("queue.host", "localhost")
	v.SetDefault("queue.port", 5672)
	v.SetDefault("queue.user", "guest")
	v.SetDefault("queue.password", "guest")
	v.SetDefault("queue.vhost", "/")
	v.SetDefault("queue.prefetch", 2)
	v.SetDefault("queue.jobTimeout", "10m")
	v.SetDefault("queue.monitorInterval", "15s")

	// Webhook defaults
	v.SetDefault("webhook.secret", "")
	v.SetDefault("webhook.timeout", "10s")
	v.SetDefault("webhook.maxAttempts", 3)
	v.SetDefault("webhook.retryDelay", "2s")

	// Auth defaults
	v.SetDefault("auth.jwtSecret", "")
	v.SetDefault("auth.sessionTTL", "24h")
	v.SetDefault("auth.cookieName", "session")
	v.SetDefault("auth.cookieSecure", false)
	v.SetDefault("auth.adminEmail", "")
	v.SetDefault("auth.adminPassword", "")

	// LLM defaults
	v.SetDefault("llm.apiBase", "https://api.openai.com/v1")
	v.SetDefault("llm.apiKey", "")
	v.SetDefault("llm.fallbackKeys", []string{})
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.chatModel", "")
	v.SetDefault("llm.maxTokens", 4096)
	v.SetDefault("llm.summaryTemperature", 0.5)
	v.SetDefault("llm.chatTemperature", 0.7)
	v.SetDefault("llm.timeout", "120s")
	v.SetDefault("llm.maxTranscriptChars", 50000)
	v.SetDefault("llm.maxChatContext", 30000)

	// Transcript defaults
	v.SetDefault("transcript.language", "en")
	v.SetDefault("transcript.allowAnyLanguage", false)
	v.SetDefault("transcript.httpTimeout", "20s")
	v.SetDefault("transcript.watchURL", "https://www.youtube.com/watch")
	v.SetDefault("transcript.innertubeURL", "https://www.youtube.com/youtubei/v1")
	v.SetDefault("transcript.tempDir", "")
	v.SetDefault("transcript.pythonPath", "")
	v.SetDefault("transcript.ytDlpPath", "yt-dlp")
	v.SetDefault("transcript.enableCaptions", true)
	v.SetDefault("transcript.enableInnertube", true)
	v.SetDefault("transcript.enableYtDlpPy", true)
	v.SetDefault("transcript.enableYtDlpBin", true)
	v.SetDefault("transcript.subtitleLangs", []string{"en", "en-US"})
	v.SetDefault("transcript.subprocessTimeout", "2m")

	// Rate limit defaults
	v.SetDefault("rateLimit.requestsPerSecond", 5)
	v.SetDefault("rateLimit.burst", 10)
	v.SetDefault("rateLimit.dailyNoteQuota", 50)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	// Tracing defaults
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.serviceName", "studynotes")
	v.SetDefault("tracing.endpoint", "http://localhost:14268/api/traces")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
}
