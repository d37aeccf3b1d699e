package config

import (
	"time"

	"github.com/spf13/viper"
)

// StorageBackend selects which provider implements the key-value store.
type StorageBackend string

const (
	StorageBackendJSON   StorageBackend = "json"   // one JSON file per key (default)
	StorageBackendSQLite StorageBackend = "sqlite" // single-file SQLite database
)

type (
	Config struct {
		HTTP
		Storage
		GoogleBooks
		Backup
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Storage struct {
		Backend      StorageBackend
		DataDir      string // Directory for JSON data files
		DatabasePath string // SQLite database path (sqlite backend only)
	}
	GoogleBooks struct {
		APIKey     string
		CoverDelay time.Duration // Delay between sequential cover lookups
	}
	Backup struct {
		Enabled  bool
		Schedule string // Cron format: "0 3 * * *" = daily at 03:00
		Dir      string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("storage_backend", string(StorageBackendJSON))
	v.SetDefault("data_dir", DefaultDataDir)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("google_books_api_key", "")
	v.SetDefault("cover_fetch_delay", "100ms")

	// Backup defaults
	v.SetDefault("backup_enabled", false)
	v.SetDefault("backup_schedule", "0 3 * * *") // Daily at 03:00
	v.SetDefault("backup_dir", DefaultBackupDir)

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Storage: Storage{
			Backend:      StorageBackend(v.GetString("STORAGE_BACKEND")),
			DataDir:      v.GetString("DATA_DIR"),
			DatabasePath: v.GetString("DATABASE_PATH"),
		},
		GoogleBooks: GoogleBooks{
			APIKey:     v.GetString("GOOGLE_BOOKS_API_KEY"),
			CoverDelay: v.GetDuration("COVER_FETCH_DELAY"),
		},
		Backup: Backup{
			Enabled:  v.GetBool("BACKUP_ENABLED"),
			Schedule: v.GetString("BACKUP_SCHEDULE"),
			Dir:      v.GetString("BACKUP_DIR"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
