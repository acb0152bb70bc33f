package filesystem

import (
	"io"
	"io/fs"
	"os"
)

// Root is the base directory every sandboxed path resolves under, and
// whether the filesystem may be mutated. It is fixed at construction.
type Root struct {
	Path     string
	ReadOnly bool
}

// Metadata is a snapshot of a file's kind and size taken at query time.
type Metadata struct {
	IsDir  bool
	IsFile bool
	Length uint64
}

func metadataFromInfo(info fs.FileInfo) Metadata {
	md := Metadata{
		IsDir:  info.IsDir(),
		IsFile: info.Mode().IsRegular(),
	}
	if size := info.Size(); size > 0 {
		md.Length = uint64(size)
	}
	return md
}

// OpenOptions selects how a file is opened. Flags map one to one onto the
// host's open flags; combinations are not validated here.
type OpenOptions struct {
	Read      bool
	Write     bool
	Append    bool
	Truncate  bool
	Create    bool
	CreateNew bool
}

// ReadOnly returns options for opening an existing file for reading.
func ReadOnly() OpenOptions {
	return OpenOptions{Read: true}
}

// CreateTruncate returns options that create or overwrite a file for writing.
func CreateTruncate() OpenOptions {
	return OpenOptions{Write: true, Create: true, Truncate: true}
}

// Mutates reports whether the options can change storage state.
func (o OpenOptions) Mutates() bool {
	return o.Write || o.Append || o.Truncate || o.Create || o.CreateNew
}

// Flags maps the options onto os.OpenFile flags.
func (o OpenOptions) Flags() int {
	var flag int
	switch {
	case o.Read && (o.Write || o.Append):
		flag = os.O_RDWR
	case o.Write || o.Append:
		flag = os.O_WRONLY
	default:
		flag = os.O_RDONLY
	}
	if o.Append {
		flag |= os.O_APPEND
	}
	if o.Truncate {
		flag |= os.O_TRUNC
	}
	if o.Create {
		flag |= os.O_CREATE
	}
	if o.CreateNew {
		flag |= os.O_CREATE | os.O_EXCL
	}
	return flag
}

// File is an open file handle. The caller owns it and must Close it on every
// path, including error paths.
type File interface {
	io.Reader
	io.Writer
	io.Seeker
	io.Closer
	Name() string
	Stat() (fs.FileInfo, error)
	Sync() error
}
