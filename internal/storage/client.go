// Package storage provides the key-value blob store the tracker keeps its
// data in, plus typed accessors for books and reading goals. Core logic
// never touches files or databases directly, only the Client interface.
package storage

// Storage keys used by the tracker. The names predate this implementation
// and must not change, or existing data files stop loading.
const (
	KeyBooks = "bookTrackerData"
	KeyGoals = "readingGoals"
)

// Client is the storage collaborator: an opaque key-value store holding
// JSON-serializable blobs. Load returns (nil, nil) for a missing key.
type Client interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
}
