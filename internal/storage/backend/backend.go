// Package backend opens the save store named in the configuration.
package backend

import (
	"fmt"

	"chosenoffset.com/deepruins/internal/config"
	"chosenoffset.com/deepruins/internal/storage"
	"chosenoffset.com/deepruins/internal/storage/file"
	"chosenoffset.com/deepruins/internal/storage/sqlite"
)

// Open returns a store for kind. path is a directory for the file backend
// and a database file for sqlite.
func Open(kind, path string) (storage.Store, error) {
	switch kind {
	case config.BackendFile:
		return file.Open(path)
	case config.BackendSQLite:
		return sqlite.Open(path)
	default:
		return nil, fmt.Errorf("unknown save backend %q", kind)
	}
}
