package filesystem

import (
	"io/fs"
	"os"
	"path/filepath"
)

// NewOSFileSystem creates a disk-backed filesystem rooted at root. A relative
// root is made absolute against the working directory.
func NewOSFileSystem(root string, readonly bool, opts ...Option) *Sandbox {
	root = filepath.Clean(root)
	if !filepath.IsAbs(root) {
		if abs, err := filepath.Abs(root); err == nil {
			root = abs
		}
	}
	return newSandbox("disk", Root{Path: root, ReadOnly: readonly}, true, &osBackend{root: root}, opts...)
}

// osBackend maps Backend calls onto host filesystem calls. On Linux every
// lookup is resolved beneath root, so a symlink inside the sandbox cannot
// lead any operation outside it.
type osBackend struct {
	root string
}

func (b *osBackend) OpenFile(name string, flag int, perm fs.FileMode) (File, error) {
	return openBeneath(b.root, name, flag, perm)
}

func (b *osBackend) MkdirAll(name string, perm fs.FileMode) error {
	return mkdirAllBeneath(b.root, name, perm)
}

func (b *osBackend) Remove(name string) error {
	return removeBeneath(b.root, name)
}

func (b *osBackend) RemoveAll(name string) error {
	return removeAllBeneath(b.root, name)
}

func (b *osBackend) Stat(name string) (fs.FileInfo, error) {
	return statBeneath(b.root, name)
}

func (b *osBackend) ReadDirNames(name string) ([]string, error) {
	return readDirNamesBeneath(b.root, name)
}

func (b *osBackend) Close() error {
	return nil
}

func readDirNamesPlain(name string) ([]string, error) {
	dir, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = dir.Close()
	}()
	return dir.Readdirnames(-1)
}

func openPlain(name string, flag int, perm fs.FileMode) (File, error) {
	f, err := os.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}
