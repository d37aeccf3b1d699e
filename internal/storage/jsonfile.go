package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// JSONFileStore keeps one pretty-printed JSON file per key inside a data
// directory, the same on-disk layout the original desktop app used.
type JSONFileStore struct {
	dir string
}

// NewJSONFileStore creates the data directory if needed.
func NewJSONFileStore(dir string) (*JSONFileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &JSONFileStore{dir: dir}, nil
}

func (s *JSONFileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *JSONFileStore) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", key, err)
	}
	return data, nil
}

func (s *JSONFileStore) Save(key string, value []byte) error {
	// Re-indent so the files stay diffable and hand-editable.
	var buf any
	if err := json.Unmarshal(value, &buf); err == nil {
		if pretty, err := json.MarshalIndent(buf, "", "  "); err == nil {
			value = pretty
		}
	}
	if err := os.WriteFile(s.path(key), value, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
