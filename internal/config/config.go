package config

import (
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	JWT     JWTConfig
	Storage StorageConfig
	Upload  UploadConfig
	CORS    CORSConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// JWTConfig holds settings for verifying the platform's session tokens at
// the signing boundary. The boundary only verifies; it never issues tokens.
type JWTConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// StorageConfig selects the storage backend and carries its credentials.
// It is passed into the signer at construction; nothing outside config.Load
// reads the environment.
type StorageConfig struct {
	Backend  string         `mapstructure:"backend"`
	S3       S3Config       `mapstructure:"s3"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
}

// S3Config holds settings for the query-string-signed backend.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// SupabaseConfig holds settings for the bearer-token backend. SessionToken
// is preferred for authorization when present; ServiceKey is the static
// fallback.
type SupabaseConfig struct {
	ProjectURL    string `mapstructure:"project_url"`
	Bucket        string `mapstructure:"bucket"`
	ServiceKey    string `mapstructure:"service_key"`
	APIKey        string `mapstructure:"api_key"`
	PublicBaseURL string `mapstructure:"public_base_url"`
}

// UploadConfig holds upload pipeline policy settings.
type UploadConfig struct {
	RootPrefix      string        `mapstructure:"root_prefix"`
	SingleShotTTL   time.Duration `mapstructure:"single_shot_ttl"`
	ChunkedTTL      time.Duration `mapstructure:"chunked_ttl"`
	TransferTimeout time.Duration `mapstructure:"transfer_timeout"`
	JanitorInterval time.Duration `mapstructure:"janitor_interval"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the COURSEVAULT_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("COURSEVAULT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// JWT defaults
	v.SetDefault("jwt.secret", "change-me-in-production")
	v.SetDefault("jwt.issuer", "coursevault")

	// Storage defaults
	v.SetDefault("storage.backend", "s3")
	v.SetDefault("storage.s3.region", "us-east-1")
	v.SetDefault("storage.s3.bucket", "coursevault-content")
	v.SetDefault("storage.s3.endpoint", "")
	v.SetDefault("storage.s3.access_key", "")
	v.SetDefault("storage.s3.secret_key", "")
	v.SetDefault("storage.s3.public_base_url", "")
	v.SetDefault("storage.supabase.project_url", "")
	v.SetDefault("storage.supabase.bucket", "coursevault-content")
	v.SetDefault("storage.supabase.service_key", "")
	v.SetDefault("storage.supabase.api_key", "")
	v.SetDefault("storage.supabase.public_base_url", "")

	// Upload policy defaults. Single-shot credentials live an hour,
	// chunked sessions two; the janitor sweeps at half the shorter TTL.
	v.SetDefault("upload.root_prefix", "LMS_Uploads")
	v.SetDefault("upload.single_shot_ttl", "1h")
	v.SetDefault("upload.chunked_ttl", "2h")
	v.SetDefault("upload.transfer_timeout", "5m")
	v.SetDefault("upload.janitor_interval", "30m")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                      "COURSEVAULT_SERVER_PORT",
		"server.read_timeout":              "COURSEVAULT_SERVER_READ_TIMEOUT",
		"server.write_timeout":             "COURSEVAULT_SERVER_WRITE_TIMEOUT",
		"server.environment":               "COURSEVAULT_SERVER_ENVIRONMENT",
		"jwt.secret":                       "COURSEVAULT_JWT_SECRET",
		"jwt.issuer":                       "COURSEVAULT_JWT_ISSUER",
		"storage.backend":                  "COURSEVAULT_STORAGE_BACKEND",
		"storage.s3.region":                "COURSEVAULT_STORAGE_S3_REGION",
		"storage.s3.bucket":                "COURSEVAULT_STORAGE_S3_BUCKET",
		"storage.s3.endpoint":              "COURSEVAULT_STORAGE_S3_ENDPOINT",
		"storage.s3.access_key":            "COURSEVAULT_STORAGE_S3_ACCESS_KEY",
		"storage.s3.secret_key":            "COURSEVAULT_STORAGE_S3_SECRET_KEY",
		"storage.s3.public_base_url":       "COURSEVAULT_STORAGE_S3_PUBLIC_BASE_URL",
		"storage.supabase.project_url":     "COURSEVAULT_STORAGE_SUPABASE_PROJECT_URL",
		"storage.supabase.bucket":          "COURSEVAULT_STORAGE_SUPABASE_BUCKET",
		"storage.supabase.service_key":     "COURSEVAULT_STORAGE_SUPABASE_SERVICE_KEY",
		"storage.supabase.api_key":         "COURSEVAULT_STORAGE_SUPABASE_API_KEY",
		"storage.supabase.public_base_url": "COURSEVAULT_STORAGE_SUPABASE_PUBLIC_BASE_URL",
		"upload.root_prefix":               "COURSEVAULT_UPLOAD_ROOT_PREFIX",
		"upload.single_shot_ttl":           "COURSEVAULT_UPLOAD_SINGLE_SHOT_TTL",
		"upload.chunked_ttl":               "COURSEVAULT_UPLOAD_CHUNKED_TTL",
		"upload.transfer_timeout":          "COURSEVAULT_UPLOAD_TRANSFER_TIMEOUT",
		"upload.janitor_interval":          "COURSEVAULT_UPLOAD_JANITOR_INTERVAL",
		"log.level":                        "COURSEVAULT_LOG_LEVEL",
		"log.format":                       "COURSEVAULT_LOG_FORMAT",
		"cors.allowed_origins":             "COURSEVAULT_CORS_ALLOWED_ORIGINS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if COURSEVAULT_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("COURSEVAULT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.JWT = JWTConfig{
		Secret: v.GetString("jwt.secret"),
		Issuer: v.GetString("jwt.issuer"),
	}
	cfg.Storage = StorageConfig{
		Backend: v.GetString("storage.backend"),
		S3: S3Config{
			Region:        v.GetString("storage.s3.region"),
			Bucket:        v.GetString("storage.s3.bucket"),
			Endpoint:      v.GetString("storage.s3.endpoint"),
			AccessKey:     v.GetString("storage.s3.access_key"),
			SecretKey:     v.GetString("storage.s3.secret_key"),
			PublicBaseURL: v.GetString("storage.s3.public_base_url"),
		},
		Supabase: SupabaseConfig{
			ProjectURL:    v.GetString("storage.supabase.project_url"),
			Bucket:        v.GetString("storage.supabase.bucket"),
			ServiceKey:    v.GetString("storage.supabase.service_key"),
			APIKey:        v.GetString("storage.supabase.api_key"),
			PublicBaseURL: v.GetString("storage.supabase.public_base_url"),
		},
	}
	cfg.Upload = UploadConfig{
		RootPrefix:      v.GetString("upload.root_prefix"),
		SingleShotTTL:   v.GetDuration("upload.single_shot_ttl"),
		ChunkedTTL:      v.GetDuration("upload.chunked_ttl"),
		TransferTimeout: v.GetDuration("upload.transfer_timeout"),
		JanitorInterval: v.GetDuration("upload.janitor_interval"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	return cfg, nil
}
