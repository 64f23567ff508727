//go:build !sqlite

package storage

import "fmt"

// Without the sqlite build tag the persistent backend is compiled out and
// only KindMemory is usable.
func newSQLiteStore(_ string) (Store, error) {
	return nil, fmt.Errorf("store kind %s requires a binary built with -tags sqlite", KindSQLite)
}
