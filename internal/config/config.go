package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Log    LogConfig
	Push   PushConfig
	Backup BackupConfig
	Sweep  SweepConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"RESTOCK_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"RESTOCK_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"RESTOCK_READ_TIMEOUT" default:"5s"`
	WriteTimeout    time.Duration `envconfig:"RESTOCK_WRITE_TIMEOUT" default:"10s"`
	IdleTimeout     time.Duration `envconfig:"RESTOCK_IDLE_TIMEOUT" default:"120s"`
	ShutdownTimeout time.Duration `envconfig:"RESTOCK_SHUTDOWN_TIMEOUT" default:"5s"`
}

// DBConfig holds SQLite settings.
type DBConfig struct {
	Path string `envconfig:"RESTOCK_DB_PATH" default:"restock.db"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `envconfig:"RESTOCK_LOG_LEVEL" default:"info"`
	Format string `envconfig:"RESTOCK_LOG_FORMAT" default:"text"`
}

// PushConfig holds web push (VAPID) settings and dispatcher tuning.
type PushConfig struct {
	VAPIDPublicKey   string        `envconfig:"RESTOCK_VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey  string        `envconfig:"RESTOCK_VAPID_PRIVATE_KEY"`
	Subscriber       string        `envconfig:"RESTOCK_PUSH_SUBSCRIBER" default:"mailto:noreply@restock.local"`
	DispatchInterval time.Duration `envconfig:"RESTOCK_DISPATCH_INTERVAL" default:"30s"`
}

// BackupConfig holds optional S3 snapshot settings. Backups are disabled
// unless Bucket is set.
type BackupConfig struct {
	Endpoint   string        `envconfig:"RESTOCK_BACKUP_S3_ENDPOINT"`
	Bucket     string        `envconfig:"RESTOCK_BACKUP_S3_BUCKET"`
	Region     string        `envconfig:"RESTOCK_BACKUP_S3_REGION" default:"auto"`
	AccessKey  string        `envconfig:"RESTOCK_BACKUP_S3_ACCESS_KEY"`
	SecretKey  string        `envconfig:"RESTOCK_BACKUP_S3_SECRET_KEY"`
	Passphrase string        `envconfig:"RESTOCK_BACKUP_PASSPHRASE"`
	Interval   time.Duration `envconfig:"RESTOCK_BACKUP_INTERVAL" default:"24h"`
}

// SweepConfig tunes the unpurchased-item sweep.
type SweepConfig struct {
	Enabled  bool          `envconfig:"RESTOCK_SWEEP_ENABLED" default:"true"`
	Interval time.Duration `envconfig:"RESTOCK_SWEEP_INTERVAL" default:"1h"`
}

// Enabled reports whether backups are configured.
func (b BackupConfig) Enabled() bool {
	return b.Bucket != ""
}

// Address returns the server address in host:port format.
func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from the environment, consulting a .env file if
// one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	return &cfg, nil
}
