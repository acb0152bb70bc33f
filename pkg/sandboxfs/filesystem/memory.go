package filesystem

import (
	"github.com/spf13/afero"
)

// NewMemoryFileSystem creates an empty in-memory filesystem. It has no host
// location, so Root reports false.
func NewMemoryFileSystem(readonly bool, opts ...Option) *Sandbox {
	return NewMemoryFileSystemFrom(afero.NewMemMapFs(), readonly, opts...)
}

// NewMemoryFileSystemFrom wraps an existing afero filesystem, which lets tests
// seed content before handing out a readonly view of it.
func NewMemoryFileSystemFrom(fsys afero.Fs, readonly bool, opts ...Option) *Sandbox {
	return newSandbox("memory", Root{Path: "/", ReadOnly: readonly}, false, &aferoBackend{fs: fsys}, opts...)
}
