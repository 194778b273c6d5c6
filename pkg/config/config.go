package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	OAuth      OAuthConfig
	JWT        JWTConfig
	Storage    StorageConfig
	LiveKit    LiveKitConfig
	Assembly   AssemblyAIConfig
	VideoIntel VideoIntelConfig
	Analysis   AnalysisConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	AllowedOrigins  []string
	ShutdownTimeout int
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host        string
	Port        string
	User        string
	Password    string
	Name        string
	SSLMode     string
	MaxConns    int
	MinConns    int
	AutoMigrate bool
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// OAuthConfig holds OAuth configuration
type OAuthConfig struct {
	Google GoogleOAuthConfig
}

// GoogleOAuthConfig holds Google OAuth configuration
type GoogleOAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}

// StorageConfig holds storage configuration
type StorageConfig struct {
	Type            string // "minio" or "s3"
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	UseSSL          bool
	PublicURL       string // external URL when behind a reverse proxy
}

// LiveKitConfig holds LiveKit server configuration
type LiveKitConfig struct {
	URL           string
	APIKey        string
	APISecret     string
	WebhookSecret string
	UseMock       bool
}

// AssemblyAIConfig holds AssemblyAI transcription configuration
type AssemblyAIConfig struct {
	APIKey        string
	WebhookSecret string
}

// VideoIntelConfig holds the external video-intelligence service
// configuration.
type VideoIntelConfig struct {
	BaseURL        string
	APIKey         string
	WebhookSecret  string
	WebhookBaseURL string
}

// AnalysisConfig tunes the annotation engine and ingestion limits.
// Loaded via envconfig under the ANALYSIS_ prefix.
type AnalysisConfig struct {
	MaxVideoBytes        int64         `envconfig:"MAX_VIDEO_BYTES" default:"104857600"`
	MisalignTolerance    float64       `envconfig:"MISALIGN_TOLERANCE" default:"2.0"`
	ObjectSampleTol      float64       `envconfig:"OBJECT_SAMPLE_TOLERANCE" default:"0.5"`
	FaceSampleTol        float64       `envconfig:"FACE_SAMPLE_TOLERANCE" default:"0.1"`
	Workers              int           `envconfig:"WORKERS" default:"2"`
	PollInterval         time.Duration `envconfig:"POLL_INTERVAL" default:"5s"`
	PollTimeout          time.Duration `envconfig:"POLL_TIMEOUT" default:"10m"`
	DocumentCacheTTL     time.Duration `envconfig:"DOCUMENT_CACHE_TTL" default:"30m"`
	PlayerSessionTTL     time.Duration `envconfig:"PLAYER_SESSION_TTL" default:"2h"`
	FocusViolationLimit  int           `envconfig:"FOCUS_VIOLATION_LIMIT" default:"3"`
	FocusDebounceSeconds float64       `envconfig:"FOCUS_DEBOUNCE_SECONDS" default:"1.0"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	config := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			Host:            getEnv("HOST", "0.0.0.0"),
			Environment:     getEnv("ENVIRONMENT", "development"),
			AllowedOrigins:  []string{getEnv("ALLOWED_ORIGINS", "http://localhost:3000")},
			ShutdownTimeout: getEnvAsInt("SHUTDOWN_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        getEnv("DB_PORT", "5432"),
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			Name:        getEnv("DB_NAME", "call_manager"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			MaxConns:    getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns:    getEnvAsInt("DB_MIN_CONNS", 5),
			AutoMigrate: getEnvAsBool("DB_AUTO_MIGRATE", false),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OAuth: OAuthConfig{
			Google: GoogleOAuthConfig{
				ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
				ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
				RedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/v1/auth/google/callback"),
			},
		},
		JWT: JWTConfig{
			AccessSecret:  getEnv("JWT_ACCESS_SECRET", "your-access-secret-change-in-production"),
			RefreshSecret: getEnv("JWT_REFRESH_SECRET", "your-refresh-secret-change-in-production"),
			AccessExpiry:  getEnvAsDuration("JWT_ACCESS_EXPIRY", "15m"),
			RefreshExpiry: getEnvAsDuration("JWT_REFRESH_EXPIRY", "168h"),
		},
		Storage: StorageConfig{
			Type:            getEnv("STORAGE_TYPE", "minio"),
			Endpoint:        getEnv("STORAGE_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("STORAGE_ACCESS_KEY", "minioadmin"),
			SecretAccessKey: getEnv("STORAGE_SECRET_KEY", "minioadmin"),
			BucketName:      getEnv("STORAGE_BUCKET", "call-manager"),
			UseSSL:          getEnvAsBool("STORAGE_USE_SSL", false),
			PublicURL:       getEnv("STORAGE_PUBLIC_URL", ""),
		},
		LiveKit: LiveKitConfig{
			URL:           getEnv("LIVEKIT_URL", "ws://localhost:7880"),
			APIKey:        getEnv("LIVEKIT_API_KEY", ""),
			APISecret:     getEnv("LIVEKIT_API_SECRET", ""),
			WebhookSecret: getEnv("LIVEKIT_WEBHOOK_SECRET", ""),
			UseMock:       getEnvAsBool("LIVEKIT_USE_MOCK", false),
		},
		Assembly: AssemblyAIConfig{
			APIKey:        getEnv("ASSEMBLYAI_API_KEY", ""),
			WebhookSecret: getEnv("ASSEMBLYAI_WEBHOOK_SECRET", ""),
		},
		VideoIntel: VideoIntelConfig{
			BaseURL:        getEnv("VIDEOINTEL_BASE_URL", ""),
			APIKey:         getEnv("VIDEOINTEL_API_KEY", ""),
			WebhookSecret:  getEnv("VIDEOINTEL_WEBHOOK_SECRET", ""),
			WebhookBaseURL: getEnv("VIDEOINTEL_WEBHOOK_BASE_URL", ""),
		},
	}

	if err := envconfig.Process("ANALYSIS", &config.Analysis); err != nil {
		return nil, fmt.Errorf("failed to load analysis configuration: %w", err)
	}

	// Validate required fields
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.OAuth.Google.ClientID == "" {
		return fmt.Errorf("GOOGLE_CLIENT_ID is required")
	}
	if c.OAuth.Google.ClientSecret == "" {
		return fmt.Errorf("GOOGLE_CLIENT_SECRET is required")
	}
	if !c.LiveKit.UseMock {
		if c.LiveKit.APIKey == "" || c.LiveKit.APISecret == "" {
			return fmt.Errorf("LIVEKIT_API_KEY and LIVEKIT_API_SECRET are required unless LIVEKIT_USE_MOCK is set")
		}
	}
	if c.Analysis.MaxVideoBytes <= 0 {
		return fmt.Errorf("ANALYSIS_MAX_VIDEO_BYTES must be positive")
	}
	return nil
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}
	return duration
}
