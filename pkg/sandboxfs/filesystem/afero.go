package filesystem

import (
	"io"
	"io/fs"
	"syscall"

	"github.com/spf13/afero"
)

// aferoBackend adapts an afero.Fs to Backend. afero backends are rooted at
// "/" and know nothing of the host filesystem.
type aferoBackend struct {
	fs     afero.Fs
	closer io.Closer
}

func (b *aferoBackend) OpenFile(name string, flag int, perm fs.FileMode) (File, error) {
	f, err := b.fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (b *aferoBackend) MkdirAll(name string, perm fs.FileMode) error {
	return b.fs.MkdirAll(name, perm)
}

// Remove follows the host semantics afero's in-memory fs skips: a directory
// with children is not removed.
func (b *aferoBackend) Remove(name string) error {
	info, err := b.fs.Stat(name)
	if err != nil {
		return err
	}
	if info.IsDir() {
		names, err := b.ReadDirNames(name)
		if err != nil {
			return err
		}
		if len(names) > 0 {
			return &fs.PathError{Op: "remove", Path: name, Err: syscall.ENOTEMPTY}
		}
	}
	return b.fs.Remove(name)
}

func (b *aferoBackend) RemoveAll(name string) error {
	return b.fs.RemoveAll(name)
}

func (b *aferoBackend) Stat(name string) (fs.FileInfo, error) {
	return b.fs.Stat(name)
}

func (b *aferoBackend) ReadDirNames(name string) ([]string, error) {
	dir, err := b.fs.Open(name)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = dir.Close()
	}()
	return dir.Readdirnames(-1)
}

func (b *aferoBackend) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}
