package models

import (
	"time"
)

// NoPath marks a FileEntry that has no backing file on disk. It is used in
// filename-only mode, where the caller supplies bare names with optional
// size/mtime metadata instead of real files.
const NoPath = "(filename-only)"

// FileEntry represents one file discovered during reference indexing or
// target enumeration. Entries are immutable for the lifetime of an
// operation.
type FileEntry struct {
	// Path is the absolute path on disk, or NoPath in filename-only mode
	Path string

	// Name is the base filename including extension
	Name string

	// Size in bytes (zero when unknown)
	Size int64

	// ModTime is the last modification time (zero when unknown)
	ModTime time.Time
}

// HasPath reports whether the entry is backed by a real file.
func (e *FileEntry) HasPath() bool {
	return e.Path != "" && e.Path != NoPath
}

// NameOnly creates an entry for filename-only mode.
func NameOnly(name string, size int64, modTime time.Time) FileEntry {
	return FileEntry{
		Path:    NoPath,
		Name:    name,
		Size:    size,
		ModTime: modTime,
	}
}
