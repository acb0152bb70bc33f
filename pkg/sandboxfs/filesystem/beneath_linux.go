//go:build linux

package filesystem

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sys/unix"
)

var (
	openat2Once      sync.Once
	openat2Supported bool
)

// supportsOpenat2 checks once per process whether openat2 can be used. Kernels
// before 5.6 answer ENOSYS; some seccomp profiles answer EPERM.
func supportsOpenat2(dirfd int) bool {
	openat2Once.Do(func() {
		fd, err := openat2(dirfd, ".", unix.O_PATH|unix.O_DIRECTORY)
		if err != nil {
			openat2Supported = !errors.Is(err, unix.ENOSYS) && !errors.Is(err, unix.EPERM)
			return
		}
		_ = unix.Close(fd)
		openat2Supported = true
	})
	return openat2Supported
}

func openat2(dirfd int, rel string, flags uint64) (int, error) {
	return unix.Openat2(dirfd, rel, &unix.OpenHow{
		Flags:   flags | unix.O_CLOEXEC,
		Resolve: unix.RESOLVE_BENEATH,
	})
}

// beneath runs fn with a descriptor for root and name relative to it. Every
// lookup fn makes through openat2 is confined to root, symlinks included.
// It reports false without calling fn when openat2 is unusable, and the
// caller then falls back to plain calls on name.
func beneath(root, name, op string, fn func(rootfd int, rel string) error) (bool, error) {
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return true, &fs.PathError{Op: op, Path: name, Err: err}
	}

	rootfd, err := unix.Open(root, unix.O_PATH|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return true, &fs.PathError{Op: op, Path: root, Err: err}
	}
	defer func() {
		_ = unix.Close(rootfd)
	}()

	if !supportsOpenat2(rootfd) {
		return false, nil
	}

	err = fn(rootfd, rel)
	var pathErr *fs.PathError
	if err != nil && !errors.As(err, &pathErr) {
		err = &fs.PathError{Op: op, Path: name, Err: err}
	}
	return true, err
}

// openParent returns an O_PATH descriptor for the directory holding rel.
func openParent(rootfd int, rel string) (int, error) {
	return openat2(rootfd, filepath.Dir(rel), unix.O_PATH|unix.O_DIRECTORY)
}

func openBeneath(root, name string, flag int, perm fs.FileMode) (File, error) {
	var f *os.File
	ok, err := beneath(root, name, "openat2", func(rootfd int, rel string) error {
		how := &unix.OpenHow{
			Flags:   uint64(flag) | unix.O_CLOEXEC,
			Resolve: unix.RESOLVE_BENEATH,
		}
		if flag&os.O_CREATE != 0 {
			how.Mode = uint64(perm.Perm())
		}
		fd, err := unix.Openat2(rootfd, rel, how)
		if err != nil {
			return err
		}
		f = os.NewFile(uintptr(fd), name)
		return nil
	})
	if !ok {
		return openPlain(name, flag, perm)
	}
	if err != nil {
		return nil, err
	}
	return f, nil
}

func statBeneath(root, name string) (fs.FileInfo, error) {
	var info fs.FileInfo
	ok, err := beneath(root, name, "stat", func(rootfd int, rel string) error {
		fd, err := openat2(rootfd, rel, unix.O_PATH)
		if err != nil {
			return err
		}
		f := os.NewFile(uintptr(fd), name)
		defer func() {
			_ = f.Close()
		}()
		info, err = f.Stat()
		return err
	})
	if !ok {
		return os.Stat(name)
	}
	return info, err
}

func readDirNamesBeneath(root, name string) ([]string, error) {
	var names []string
	ok, err := beneath(root, name, "readdirent", func(rootfd int, rel string) error {
		fd, err := openat2(rootfd, rel, unix.O_RDONLY|unix.O_DIRECTORY)
		if err != nil {
			return err
		}
		dir := os.NewFile(uintptr(fd), name)
		defer func() {
			_ = dir.Close()
		}()
		names, err = dir.Readdirnames(-1)
		return err
	})
	if !ok {
		return readDirNamesPlain(name)
	}
	return names, err
}

// mkdirAllBeneath creates name one component at a time, each below a parent
// resolved inside root. A missing root is created first.
func mkdirAllBeneath(root, name string, perm fs.FileMode) error {
	if err := os.MkdirAll(root, perm); err != nil {
		return err
	}

	ok, err := beneath(root, name, "mkdir", func(rootfd int, rel string) error {
		if rel == "." {
			return nil
		}
		segments := strings.Split(rel, string(filepath.Separator))
		for i := range segments {
			partial := filepath.Join(segments[:i+1]...)
			pfd, err := openParent(rootfd, partial)
			if err != nil {
				return err
			}
			err = unix.Mkdirat(pfd, segments[i], uint32(perm.Perm()))
			_ = unix.Close(pfd)
			if err != nil && !errors.Is(err, unix.EEXIST) {
				return err
			}
		}

		// An existing last component may be a file, or a link leading out.
		fd, err := openat2(rootfd, rel, unix.O_PATH|unix.O_DIRECTORY)
		if err != nil {
			return err
		}
		return unix.Close(fd)
	})
	if !ok {
		return os.MkdirAll(name, perm)
	}
	return err
}

func removeBeneath(root, name string) error {
	ok, err := beneath(root, name, "remove", func(rootfd int, rel string) error {
		pfd, err := openParent(rootfd, rel)
		if err != nil {
			return err
		}
		defer func() {
			_ = unix.Close(pfd)
		}()

		base := filepath.Base(rel)
		err = unix.Unlinkat(pfd, base, 0)
		if err == nil {
			return nil
		}
		dirErr := unix.Unlinkat(pfd, base, unix.AT_REMOVEDIR)
		if dirErr == nil {
			return nil
		}
		if !errors.Is(dirErr, unix.ENOTDIR) {
			return dirErr
		}
		return err
	})
	if !ok {
		return os.Remove(name)
	}
	return err
}

func removeAllBeneath(root, name string) error {
	ok, err := beneath(root, name, "removeall", func(rootfd int, rel string) error {
		pfd, err := openParent(rootfd, rel)
		if err != nil {
			return err
		}
		defer func() {
			_ = unix.Close(pfd)
		}()
		return removeAllAt(pfd, filepath.Base(rel))
	})
	if !ok {
		return os.RemoveAll(name)
	}
	return err
}

// removeAllAt removes name below dirfd. Directories are opened with
// O_NOFOLLOW, so a symlink is unlinked and never descended into.
func removeAllAt(dirfd int, name string) error {
	err := unix.Unlinkat(dirfd, name, 0)
	if err == nil || errors.Is(err, unix.ENOENT) {
		return nil
	}
	if !errors.Is(err, unix.EISDIR) && !errors.Is(err, unix.EPERM) {
		return err
	}

	fd, err := unix.Openat(dirfd, name, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0)
	if err != nil {
		return err
	}
	dir := os.NewFile(uintptr(fd), name)
	children, err := dir.Readdirnames(-1)
	if err != nil {
		_ = dir.Close()
		return err
	}
	for _, child := range children {
		if err := removeAllAt(int(dir.Fd()), child); err != nil {
			_ = dir.Close()
			return err
		}
	}
	if err := dir.Close(); err != nil {
		return err
	}

	err = unix.Unlinkat(dirfd, name, unix.AT_REMOVEDIR)
	if errors.Is(err, unix.ENOENT) {
		return nil
	}
	return err
}
