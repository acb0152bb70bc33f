package filesystem

import (
	"io/fs"

	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/core"
)

// FileSystem is the capability surface every backend exposes. Paths are
// slash separated and relative to the backend root; absolute paths and ".."
// segments are rejected with a policy error before storage is touched.
type FileSystem interface {
	core.System

	// OpenWithOptions opens path. Options that imply mutation fail on a
	// readonly filesystem.
	OpenWithOptions(path string, opts OpenOptions) (File, error)
	// Mkdir creates path and any missing parents. Existing directories are fine.
	Mkdir(path string) error
	// Remove deletes a single file or empty directory. The root itself ("" or
	// ".") cannot be removed.
	Remove(path string) error
	// RemoveAll deletes a file or a directory tree. A missing target is an
	// error, and so is the root itself.
	RemoveAll(path string) error
	// Exists reports whether path can be resolved and stat'ed. Every failure,
	// including a rejected path, reads as false.
	Exists(path string) bool
	// Metadata returns a snapshot of path's kind and size.
	Metadata(path string) (Metadata, error)
	// ReadDir lists the direct children of path.
	ReadDir(path string) (*Listing, error)
	// ShutDown releases backend resources. It may be called any number of times.
	ShutDown() error
	// Root returns the host directory backing the filesystem, or false when
	// there is no single host location.
	Root() (string, bool)
}

// Backend is the storage a Sandbox delegates to once a path has been
// sanitized and the readonly policy applied. Names are absolute paths under
// the sandbox root.
type Backend interface {
	OpenFile(name string, flag int, perm fs.FileMode) (File, error)
	MkdirAll(name string, perm fs.FileMode) error
	Remove(name string) error
	RemoveAll(name string) error
	Stat(name string) (fs.FileInfo, error)
	ReadDirNames(name string) ([]string, error)
	Close() error
}
