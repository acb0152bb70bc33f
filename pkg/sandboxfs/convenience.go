package sandboxfs

import (
	"fmt"
	"io"

	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/core"
	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/filesystem"
)

// ReadFile opens name for reading and returns its whole content.
func ReadFile(fsys FileSystem, name string) ([]byte, error) {
	f, err := fsys.OpenWithOptions(name, filesystem.ReadOnly())
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, core.NewIOError(fmt.Sprintf("cannot read %q", name), err)
	}
	return data, nil
}

// WriteFile creates or truncates name and writes data to it. The parent
// directory must already exist.
func WriteFile(fsys FileSystem, name string, data []byte) error {
	f, err := fsys.OpenWithOptions(name, filesystem.CreateTruncate())
	if err != nil {
		return err
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return core.NewIOError(fmt.Sprintf("cannot write %q", name), err)
	}
	if err := f.Close(); err != nil {
		return core.NewIOError(fmt.Sprintf("cannot close %q", name), err)
	}
	return nil
}

// CreateDir creates name and any missing parents.
func CreateDir(fsys FileSystem, name string) error {
	return fsys.Mkdir(name)
}

// ListDir returns the absolute paths of name's direct children along with the
// first per-entry error, if any.
func ListDir(fsys FileSystem, name string) ([]string, error) {
	listing, err := fsys.ReadDir(name)
	if err != nil {
		return nil, err
	}
	return listing.Paths()
}
