// Package cli implements the command-line subcommands.
package cli

import (
	"fmt"

	"github.com/mferrier/booktracker/internal/config"
	"github.com/mferrier/booktracker/internal/storage"
)

// openClient builds the storage client the config selects. The returned
// close function is a no-op for the JSON backend.
func openClient(cfg *config.Config) (storage.Client, func() error, error) {
	switch cfg.Storage.Backend {
	case config.StorageBackendSQLite:
		client, err := storage.NewSQLiteStore(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return client, client.Close, nil
	case config.StorageBackendJSON, "":
		client, err := storage.NewJSONFileStore(cfg.Storage.DataDir)
		if err != nil {
			return nil, nil, fmt.Errorf("open json store: %w", err)
		}
		return client, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}
