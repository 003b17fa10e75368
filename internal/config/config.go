package config

import (
	"time"

	"github.com/spf13/viper"
)

type AuthMode string

const (
	AuthModeNone  AuthMode = "none"  // No authentication required (default)
	AuthModeLocal AuthMode = "local" // Local user database with sessions
)

type StorageBackend string

const (
	StorageBackendLocal StorageBackend = "local" // Attachment blobs on the local filesystem
	StorageBackendS3    StorageBackend = "s3"    // Attachment blobs in an S3-compatible store
)

type (
	Config struct {
		HTTP
		Global
		Database
		Storage
		Import
		Tasks
		BlobCleanup
		Auth
	}

	HTTP struct {
		Port int32
		Host string
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}

	Database struct {
		Path string
	}

	Storage struct {
		Backend  StorageBackend
		LocalDir string

		// S3 settings (also usable with MinIO via the endpoint override).
		S3Region       string
		S3Bucket       string
		S3Endpoint     string
		S3AccessKey    string
		S3SecretKey    string
		S3UsePathStyle bool
	}

	Import struct {
		BatchSize int

		// Numeric strings inside [SerialMin, SerialMax] are treated as
		// spreadsheet date serials rather than calendar literals.
		SerialMin float64
		SerialMax float64
	}

	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}

	BlobCleanup struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}

	Auth struct {
		Mode            AuthMode
		SessionSecret   string
		SessionLifetime time.Duration
		BcryptCost      int
		SecureCookies   bool // Set to false for local dev without HTTPS

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Blob storage defaults
	v.SetDefault("storage_backend", "local")
	v.SetDefault("storage_local_dir", DefaultAttachmentsDir)
	v.SetDefault("storage_s3_region", "us-east-1")
	v.SetDefault("storage_s3_bucket", "")
	v.SetDefault("storage_s3_endpoint", "")
	v.SetDefault("storage_s3_access_key", "")
	v.SetDefault("storage_s3_secret_key", "")
	v.SetDefault("storage_s3_use_path_style", true)

	// Import pipeline defaults
	v.SetDefault("import_batch_size", DefaultImportBatchSize)
	v.SetDefault("import_serial_min", DefaultSerialMin)
	v.SetDefault("import_serial_max", DefaultSerialMax)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	// Orphaned blob reconciliation defaults
	v.SetDefault("blob_cleanup_enabled", true)
	v.SetDefault("blob_cleanup_schedule", "0 * * * *") // Hourly at :00

	// Auth defaults
	v.SetDefault("auth_mode", "none")
	v.SetDefault("auth_session_secret", "")      // Auto-generated if empty
	v.SetDefault("auth_session_lifetime", "24h") // 24 hours
	v.SetDefault("auth_bcrypt_cost", 12)         // bcrypt cost factor
	v.SetDefault("auth_secure_cookies", true)    // HTTPS-only cookies
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Storage: Storage{
			Backend:        StorageBackend(v.GetString("STORAGE_BACKEND")),
			LocalDir:       v.GetString("STORAGE_LOCAL_DIR"),
			S3Region:       v.GetString("STORAGE_S3_REGION"),
			S3Bucket:       v.GetString("STORAGE_S3_BUCKET"),
			S3Endpoint:     v.GetString("STORAGE_S3_ENDPOINT"),
			S3AccessKey:    v.GetString("STORAGE_S3_ACCESS_KEY"),
			S3SecretKey:    v.GetString("STORAGE_S3_SECRET_KEY"),
			S3UsePathStyle: v.GetBool("STORAGE_S3_USE_PATH_STYLE"),
		},
		Import: Import{
			BatchSize: v.GetInt("IMPORT_BATCH_SIZE"),
			SerialMin: v.GetFloat64("IMPORT_SERIAL_MIN"),
			SerialMax: v.GetFloat64("IMPORT_SERIAL_MAX"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
		BlobCleanup: BlobCleanup{
			Enabled:  v.GetBool("BLOB_CLEANUP_ENABLED"),
			Schedule: v.GetString("BLOB_CLEANUP_SCHEDULE"),
		},
		Auth: Auth{
			Mode:             AuthMode(v.GetString("AUTH_MODE")),
			SessionSecret:    v.GetString("AUTH_SESSION_SECRET"),
			SessionLifetime:  v.GetDuration("AUTH_SESSION_LIFETIME"),
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			SecureCookies:    v.GetBool("AUTH_SECURE_COOKIES"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
	}
}
