package config

// Default storage locations
const (
	// DefaultDataDir is where the JSON file store keeps its data files
	DefaultDataDir = "./data"

	// DefaultDatabasePath is the SQLite database location when the sqlite
	// backend is selected
	DefaultDatabasePath = "./booktracker.db"

	// DefaultBackupDir receives scheduled CSV exports
	DefaultBackupDir = "./backups"
)
