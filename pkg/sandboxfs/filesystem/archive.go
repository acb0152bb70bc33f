package filesystem

import (
	"archive/tar"
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/core"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/spf13/afero"
	"github.com/spf13/afero/zipfs"
)

// ArchiveFormat identifies the container an archive backend reads from.
type ArchiveFormat int

const (
	// ArchiveFormatUnknown means the format could not be detected.
	ArchiveFormatUnknown ArchiveFormat = iota
	// ArchiveFormatZip is a zip file, read lazily.
	ArchiveFormatZip
	// ArchiveFormatTar is an uncompressed tarball.
	ArchiveFormatTar
	// ArchiveFormatTarGz is a gzip-compressed tarball.
	ArchiveFormatTarGz
	// ArchiveFormatTarZstd is a zstd-compressed tarball.
	ArchiveFormatTarZstd
	// ArchiveFormatTarLz4 is an lz4-compressed tarball.
	ArchiveFormatTarLz4
)

// ErrUnsupportedArchive is the cause reported for unrecognised archives.
var ErrUnsupportedArchive = errors.New("unsupported archive format")

func (f ArchiveFormat) String() string {
	switch f {
	case ArchiveFormatZip:
		return "zip"
	case ArchiveFormatTar:
		return "tar"
	case ArchiveFormatTarGz:
		return "tar.gz"
	case ArchiveFormatTarZstd:
		return "tar.zst"
	case ArchiveFormatTarLz4:
		return "tar.lz4"
	default:
		return "unknown"
	}
}

// DetectArchiveFormat picks the format from the file name's extension.
func DetectArchiveFormat(name string) ArchiveFormat {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return ArchiveFormatZip
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		return ArchiveFormatTarGz
	case strings.HasSuffix(lower, ".tar.zst"), strings.HasSuffix(lower, ".tzst"):
		return ArchiveFormatTarZstd
	case strings.HasSuffix(lower, ".tar.lz4"):
		return ArchiveFormatTarLz4
	case strings.HasSuffix(lower, ".tar"):
		return ArchiveFormatTar
	default:
		return ArchiveFormatUnknown
	}
}

// OpenArchive opens the archive at path as a readonly filesystem, detecting
// the format from the extension.
func OpenArchive(path string, opts ...Option) (*Sandbox, error) {
	return OpenArchiveFormat(path, DetectArchiveFormat(path), opts...)
}

// OpenArchiveFormat opens the archive at path as a readonly filesystem.
// Zip archives stay open until ShutDown; tarballs are unpacked into memory
// and the file is closed before returning.
func OpenArchiveFormat(path string, format ArchiveFormat, opts ...Option) (*Sandbox, error) {
	var (
		backend *aferoBackend
		err     error
	)
	switch format {
	case ArchiveFormatZip:
		backend, err = openZip(path)
	case ArchiveFormatTar, ArchiveFormatTarGz, ArchiveFormatTarZstd, ArchiveFormatTarLz4:
		backend, err = openTar(path, format)
	default:
		return nil, core.NewIOError(fmt.Sprintf("cannot open archive %q", path), ErrUnsupportedArchive)
	}
	if err != nil {
		return nil, core.NewIOError(fmt.Sprintf("cannot open %s archive %q", format, path), err)
	}
	return newSandbox("archive", Root{Path: "/", ReadOnly: true}, false, backend, opts...), nil
}

// NewZipFileSystem serves an already opened zip reader. The caller keeps
// ownership of whatever backs r.
func NewZipFileSystem(r *zip.Reader, opts ...Option) *Sandbox {
	return newSandbox("archive", Root{Path: "/", ReadOnly: true}, false, &aferoBackend{fs: afero.NewReadOnlyFs(zipfs.New(r))}, opts...)
}

func openZip(path string) (*aferoBackend, error) {
	rc, err := zip.OpenReader(path)
	if err != nil {
		return nil, err
	}
	return &aferoBackend{fs: afero.NewReadOnlyFs(zipfs.New(&rc.Reader)), closer: rc}, nil
}

func openTar(path string, format ArchiveFormat) (*aferoBackend, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	r, closeReader, err := decompressor(f, format)
	if err != nil {
		return nil, err
	}
	defer closeReader()

	mem, err := unpackTar(tar.NewReader(r))
	if err != nil {
		return nil, err
	}
	return &aferoBackend{fs: afero.NewReadOnlyFs(mem)}, nil
}

// unpackTar copies regular files and directories of a tarball into an
// in-memory fs. Entry names go through Sanitize, so an entry that would land
// outside the archive root fails the whole load. Links and special files are
// skipped.
func unpackTar(tr *tar.Reader) (afero.Fs, error) {
	mem := afero.NewMemMapFs()
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return mem, nil
		}
		if err != nil {
			return nil, err
		}

		p, err := Sanitize("/", hdr.Name)
		if err != nil {
			return nil, err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := mem.MkdirAll(p.Abs, DefaultDirPerm); err != nil {
				return nil, err
			}
		case tar.TypeReg:
			if err := mem.MkdirAll(filepath.Dir(p.Abs), DefaultDirPerm); err != nil {
				return nil, err
			}
			if err := copyEntry(mem, p.Abs, hdr.FileInfo().Mode().Perm(), tr); err != nil {
				return nil, err
			}
		}
	}
}

func copyEntry(mem afero.Fs, name string, perm os.FileMode, r io.Reader) error {
	f, err := mem.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func decompressor(r io.Reader, format ArchiveFormat) (io.Reader, func(), error) {
	switch format {
	case ArchiveFormatTarGz:
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return gz, func() { _ = gz.Close() }, nil
	case ArchiveFormatTarZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	case ArchiveFormatTarLz4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return r, func() {}, nil
	}
}
