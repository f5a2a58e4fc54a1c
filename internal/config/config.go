package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	S3     S3Config
	Log    LogConfig
	CORS   CORSConfig
	Vision VisionConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	MaxFileSizeMB int64  `mapstructure:"max_file_size_mb"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// VisionConfig holds vision model and extraction orchestration settings.
// It is passed explicitly into the services that need it; nothing reads
// configuration from ambient state.
type VisionConfig struct {
	APIKey             string `mapstructure:"api_key"`
	Model              string `mapstructure:"model"`
	Endpoint           string `mapstructure:"endpoint"`
	TimeoutSecs        int    `mapstructure:"timeout_secs"`
	MaxOutputTokens    int    `mapstructure:"max_output_tokens"`
	IdentificationTTL  int    `mapstructure:"identification_ttl_secs"`
	ExtractMaxAttempts int    `mapstructure:"extract_max_attempts"`
	ExtractRetryBaseMS int    `mapstructure:"extract_retry_base_ms"`
}

// Configured reports whether the vision model can be called at all.
func (v *VisionConfig) Configured() bool {
	return len(v.APIKey) > 10
}

// TTL returns the identification time-to-live as a duration.
func (v *VisionConfig) TTL() time.Duration {
	return time.Duration(v.IdentificationTTL) * time.Second
}

// RetryBaseDelay returns the base delay for linear extraction backoff.
func (v *VisionConfig) RetryBaseDelay() time.Duration {
	return time.Duration(v.ExtractRetryBaseMS) * time.Millisecond
}

// Load reads configuration from environment variables with the INFOGRAPH_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INFOGRAPH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "300s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "infograph")
	v.SetDefault("db.password", "infograph_secret")
	v.SetDefault("db.name", "infograph_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "infograph-uploads")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.max_file_size_mb", 50)
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:5173,http://127.0.0.1:5173")

	// Vision defaults. The model timeout is long on purpose: vision-model
	// latency on dense infographics regularly runs into minutes.
	v.SetDefault("vision.api_key", "")
	v.SetDefault("vision.model", "gpt-4o")
	v.SetDefault("vision.endpoint", "")
	v.SetDefault("vision.timeout_secs", 180)
	v.SetDefault("vision.max_output_tokens", 8192)
	v.SetDefault("vision.identification_ttl_secs", 3600)
	v.SetDefault("vision.extract_max_attempts", 3)
	v.SetDefault("vision.extract_retry_base_ms", 2000)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "INFOGRAPH_SERVER_PORT",
		"server.read_timeout":           "INFOGRAPH_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "INFOGRAPH_SERVER_WRITE_TIMEOUT",
		"server.environment":            "INFOGRAPH_SERVER_ENVIRONMENT",
		"db.host":                       "INFOGRAPH_DB_HOST",
		"db.port":                       "INFOGRAPH_DB_PORT",
		"db.user":                       "INFOGRAPH_DB_USER",
		"db.password":                   "INFOGRAPH_DB_PASSWORD",
		"db.name":                       "INFOGRAPH_DB_NAME",
		"db.sslmode":                    "INFOGRAPH_DB_SSLMODE",
		"db.max_open":                   "INFOGRAPH_DB_MAX_OPEN",
		"db.max_idle":                   "INFOGRAPH_DB_MAX_IDLE",
		"s3.region":                     "INFOGRAPH_S3_REGION",
		"s3.bucket":                     "INFOGRAPH_S3_BUCKET",
		"s3.endpoint":                   "INFOGRAPH_S3_ENDPOINT",
		"s3.access_key":                 "INFOGRAPH_S3_ACCESS_KEY",
		"s3.secret_key":                 "INFOGRAPH_S3_SECRET_KEY",
		"s3.max_file_size_mb":           "INFOGRAPH_S3_MAX_FILE_SIZE_MB",
		"s3.presign_expiry":             "INFOGRAPH_S3_PRESIGN_EXPIRY",
		"log.level":                     "INFOGRAPH_LOG_LEVEL",
		"log.format":                    "INFOGRAPH_LOG_FORMAT",
		"cors.allowed_origins":          "INFOGRAPH_CORS_ALLOWED_ORIGINS",
		"vision.api_key":                "INFOGRAPH_VISION_API_KEY",
		"vision.model":                  "INFOGRAPH_VISION_MODEL",
		"vision.endpoint":               "INFOGRAPH_VISION_ENDPOINT",
		"vision.timeout_secs":           "INFOGRAPH_VISION_TIMEOUT_SECS",
		"vision.max_output_tokens":      "INFOGRAPH_VISION_MAX_OUTPUT_TOKENS",
		"vision.identification_ttl_secs": "INFOGRAPH_VISION_IDENTIFICATION_TTL_SECS",
		"vision.extract_max_attempts":   "INFOGRAPH_VISION_EXTRACT_MAX_ATTEMPTS",
		"vision.extract_retry_base_ms":  "INFOGRAPH_VISION_EXTRACT_RETRY_BASE_MS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if INFOGRAPH_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("INFOGRAPH_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		MaxFileSizeMB: v.GetInt64("s3.max_file_size_mb"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
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

	cfg.Vision = VisionConfig{
		APIKey:             v.GetString("vision.api_key"),
		Model:              v.GetString("vision.model"),
		Endpoint:           v.GetString("vision.endpoint"),
		TimeoutSecs:        v.GetInt("vision.timeout_secs"),
		MaxOutputTokens:    v.GetInt("vision.max_output_tokens"),
		IdentificationTTL:  v.GetInt("vision.identification_ttl_secs"),
		ExtractMaxAttempts: v.GetInt("vision.extract_max_attempts"),
		ExtractRetryBaseMS: v.GetInt("vision.extract_retry_base_ms"),
	}

	return cfg, nil
}
