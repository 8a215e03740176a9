// Package storage defines the output directory abstraction.
package storage

import "github.com/starford/mindbox/internal/models"

// Provider is the interface for output file operations.
type Provider interface {
	// Root returns the directory the provider manages.
	Root() string
	// List returns metadata for every regular file or symlink directly under
	// the root whose name ends in ext. Subdirectories are not descended into.
	List(ext string) ([]models.FileMetadata, error)
	// Write atomically replaces the named file with content.
	Write(name string, content []byte) error
	// Delete removes the named file.
	Delete(name string) error
}
