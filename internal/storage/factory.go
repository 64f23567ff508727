package storage

import "fmt"

// Store backend kinds. Memory serves tests and one-shot CLI runs; sqlite
// keeps simulation history and studies across restarts.
const (
	KindMemory = "memory"
	KindSQLite = "sqlite"
)

// DefaultPath is where the sqlite backend lands when no path is configured.
const DefaultPath = "thrustforge.db"

// NewStore opens the backend named by kind. An empty kind selects memory; an
// empty path selects DefaultPath.
func NewStore(kind, sqlitePath string) (Store, error) {
	if sqlitePath == "" {
		sqlitePath = DefaultPath
	}
	switch kind {
	case "", KindMemory:
		return NewMemoryStore(), nil
	case KindSQLite:
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unknown store kind %q (want %s or %s)", kind, KindMemory, KindSQLite)
	}
}

// CloseIfSupported closes backends that hold resources; the memory store has
// none and passes through.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
