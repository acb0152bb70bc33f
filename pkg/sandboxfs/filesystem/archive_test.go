package filesystem_test

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/core"
	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/filesystem"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var assetFiles = map[string]string{
	"texture.png":     "png-bytes",
	"maps/level1.txt": "level one",
	"maps/level2.txt": "level two",
}

func buildZip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assets.zip")
	f, err := os.Create(path)
	require.NoError(t, err)

	zw := zip.NewWriter(f)
	_, err = zw.Create("maps/")
	require.NoError(t, err)
	for name, content := range assetFiles {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())
	return path
}

func tarBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	require.NoError(t, tw.WriteHeader(&tar.Header{Name: "maps/", Typeflag: tar.TypeDir, Mode: 0o755}))
	for name, content := range assetFiles {
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

func writeCompressed(t *testing.T, name string, compress func(io.Writer) io.WriteCloser) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)

	w := compress(f)
	_, err = w.Write(tarBytes(t))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
	return path
}

func nopWriteCloser(w io.Writer) io.WriteCloser {
	return struct {
		io.Writer
		io.Closer
	}{w, io.NopCloser(nil)}
}

func TestArchiveFileSystem_Zip(t *testing.T) {
	fsys, err := filesystem.OpenArchive(buildZip(t))
	require.NoError(t, err)
	defer func() {
		_ = fsys.ShutDown()
	}()

	assert.True(t, fsys.ReadOnly())
	assert.Equal(t, []byte("png-bytes"), readAll(t, fsys, "texture.png"))

	_, err = fsys.OpenWithOptions("texture.png", filesystem.OpenOptions{Write: true})
	assert.True(t, filesystem.IsPolicyViolation(err))
	assert.True(t, filesystem.IsPolicyViolation(fsys.Mkdir("mods")))
	assert.True(t, filesystem.IsPolicyViolation(fsys.Remove("texture.png")))
	assert.True(t, filesystem.IsPolicyViolation(fsys.RemoveAll("maps")))

	assert.True(t, fsys.Exists("maps/level1.txt"))
	assert.False(t, fsys.Exists("maps/level3.txt"))

	md, err := fsys.Metadata("maps/level2.txt")
	require.NoError(t, err)
	assert.True(t, md.IsFile)
	assert.Equal(t, uint64(len("level two")), md.Length)

	listing, err := fsys.ReadDir("maps")
	require.NoError(t, err)
	paths, err := listing.Paths()
	require.NoError(t, err)
	sort.Strings(paths)
	assert.Equal(t, []string{"/maps/level1.txt", "/maps/level2.txt"}, paths)

	root, ok := fsys.Root()
	assert.False(t, ok)
	assert.Empty(t, root)
}

func TestArchiveFileSystem_CompressedTarballs(t *testing.T) {
	tests := []struct {
		name     string
		file     string
		compress func(io.Writer) io.WriteCloser
	}{
		{"tar", "assets.tar", nopWriteCloser},
		{"gzip", "assets.tar.gz", func(w io.Writer) io.WriteCloser { return gzip.NewWriter(w) }},
		{"zstd", "assets.tar.zst", func(w io.Writer) io.WriteCloser {
			enc, err := zstd.NewWriter(w)
			require.NoError(t, err)
			return enc
		}},
		{"lz4", "assets.tar.lz4", func(w io.Writer) io.WriteCloser { return lz4.NewWriter(w) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeCompressed(t, tt.file, tt.compress)

			fsys, err := filesystem.OpenArchive(path)
			require.NoError(t, err)

			assert.Equal(t, []byte("level one"), readAll(t, fsys, "maps/level1.txt"))
			assert.Equal(t, []byte("png-bytes"), readAll(t, fsys, "texture.png"))

			_, err = fsys.OpenWithOptions("texture.png", filesystem.CreateTruncate())
			assert.True(t, filesystem.IsPolicyViolation(err))

			require.NoError(t, fsys.ShutDown())
		})
	}
}

func TestArchiveFileSystem_Errors(t *testing.T) {
	t.Run("unsupported extension", func(t *testing.T) {
		_, err := filesystem.OpenArchive("assets.rar")
		assert.ErrorIs(t, err, core.ErrIO)
		assert.ErrorIs(t, err, filesystem.ErrUnsupportedArchive)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := filesystem.OpenArchive(filepath.Join(t.TempDir(), "missing.zip"))
		assert.ErrorIs(t, err, core.ErrIO)
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("not a gzip stream", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.tar.gz")
		require.NoError(t, os.WriteFile(path, []byte("definitely not gzip"), 0o644))

		_, err := filesystem.OpenArchive(path)
		assert.ErrorIs(t, err, core.ErrIO)
	})

	t.Run("entry escaping the archive root", func(t *testing.T) {
		var buf bytes.Buffer
		tw := tar.NewWriter(&buf)
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: "../evil.sh", Typeflag: tar.TypeReg, Mode: 0o755, Size: 2}))
		_, err := tw.Write([]byte("hi"))
		require.NoError(t, err)
		require.NoError(t, tw.Close())

		path := filepath.Join(t.TempDir(), "evil.tar")
		require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

		_, err = filesystem.OpenArchive(path)
		assert.ErrorIs(t, err, core.ErrIO)
		assert.ErrorIs(t, err, core.ErrPolicyViolation)
		assert.NoFileExists(t, filepath.Join(filepath.Dir(path), "..", "evil.sh"))
	})
}

func TestArchiveFileSystem_TarReadTwice(t *testing.T) {
	path := writeCompressed(t, "assets.tar", nopWriteCloser)
	fsys, err := filesystem.OpenArchive(path)
	require.NoError(t, err)

	assert.Equal(t, []byte("level two"), readAll(t, fsys, "maps/level2.txt"))
	assert.Equal(t, []byte("level two"), readAll(t, fsys, "maps/level2.txt"))
}

func TestDetectArchiveFormat(t *testing.T) {
	tests := map[string]filesystem.ArchiveFormat{
		"a.zip":     filesystem.ArchiveFormatZip,
		"A.ZIP":     filesystem.ArchiveFormatZip,
		"a.tar":     filesystem.ArchiveFormatTar,
		"a.tar.gz":  filesystem.ArchiveFormatTarGz,
		"a.tgz":     filesystem.ArchiveFormatTarGz,
		"a.tar.zst": filesystem.ArchiveFormatTarZstd,
		"a.tar.lz4": filesystem.ArchiveFormatTarLz4,
		"a.rar":     filesystem.ArchiveFormatUnknown,
	}
	for name, want := range tests {
		assert.Equal(t, want, filesystem.DetectArchiveFormat(name), name)
	}
	assert.Equal(t, "tar.zst", filesystem.ArchiveFormatTarZstd.String())
}

func TestNewZipFileSystem(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("config.toml")
	require.NoError(t, err)
	_, err = w.Write([]byte("x = 1"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)

	fsys := filesystem.NewZipFileSystem(zr)
	assert.Equal(t, []byte("x = 1"), readAll(t, fsys, "config.toml"))
	assert.True(t, filesystem.IsPolicyViolation(fsys.Mkdir("x")))
}
