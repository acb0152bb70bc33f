//go:build !linux

package filesystem

import (
	"io/fs"
	"os"
)

func openBeneath(_, name string, flag int, perm fs.FileMode) (File, error) {
	return openPlain(name, flag, perm)
}

func statBeneath(_, name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func readDirNamesBeneath(_, name string) ([]string, error) {
	return readDirNamesPlain(name)
}

func mkdirAllBeneath(_, name string, perm fs.FileMode) error {
	return os.MkdirAll(name, perm)
}

func removeBeneath(_, name string) error {
	return os.Remove(name)
}

func removeAllBeneath(_, name string) error {
	return os.RemoveAll(name)
}
