// Package storage defines the durable save-slot contract shared by the
// file and SQLite backends.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a save slot has never been written.
var ErrNotFound = errors.New("save slot not found")

// Store persists opaque save blobs by slot name.
type Store interface {
	// Load returns the blob stored in slot, or ErrNotFound.
	Load(ctx context.Context, slot string) ([]byte, error)
	// Save replaces the blob stored in slot.
	Save(ctx context.Context, slot string, data []byte) error
	// Delete removes slot. Deleting a missing slot is not an error.
	Delete(ctx context.Context, slot string) error
	// Close releases backend resources.
	Close() error
}
