// Package testutil provides sandboxed filesystems for tests together with
// setup and assertion helpers that fail the test on error.
package testutil

import (
	"path"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs"
	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/filesystem"
)

// Helper wraps a writable sandbox and knows how to produce a readonly view
// over the same storage.
type Helper struct {
	t       *testing.T
	fs      *filesystem.Sandbox
	hostDir string
	mem     afero.Fs
}

// NewDiskHelper creates a helper over a fresh temporary directory.
func NewDiskHelper(t *testing.T, opts ...filesystem.Option) *Helper {
	t.Helper()
	dir := t.TempDir()
	h := &Helper{
		t:       t,
		fs:      filesystem.NewOSFileSystem(dir, false, opts...),
		hostDir: dir,
	}
	t.Cleanup(func() { _ = h.fs.ShutDown() })
	return h
}

// NewMemoryHelper creates a helper over an empty in-memory filesystem.
func NewMemoryHelper(t *testing.T, opts ...filesystem.Option) *Helper {
	t.Helper()
	mem := afero.NewMemMapFs()
	h := &Helper{
		t:   t,
		fs:  filesystem.NewMemoryFileSystemFrom(mem, false, opts...),
		mem: mem,
	}
	t.Cleanup(func() { _ = h.fs.ShutDown() })
	return h
}

// FileSystem returns the writable sandbox.
func (h *Helper) FileSystem() *filesystem.Sandbox {
	return h.fs
}

// HostDir returns the temporary directory backing a disk helper, or "" for
// a memory helper.
func (h *Helper) HostDir() string {
	return h.hostDir
}

// ReadOnly returns a readonly sandbox sharing this helper's storage, so
// content seeded through the helper is visible through it.
func (h *Helper) ReadOnly(opts ...filesystem.Option) *filesystem.Sandbox {
	if h.mem != nil {
		return filesystem.NewMemoryFileSystemFrom(h.mem, true, opts...)
	}
	return filesystem.NewOSFileSystem(h.hostDir, true, opts...)
}

// WriteFile writes data to name, creating parent directories first.
func (h *Helper) WriteFile(name string, data []byte) {
	h.t.Helper()
	h.MkdirAll(path.Dir(name))
	require.NoError(h.t, sandboxfs.WriteFile(h.fs, name, data), "write %s", name)
}

// MkdirAll creates name and its parents.
func (h *Helper) MkdirAll(name string) {
	h.t.Helper()
	require.NoError(h.t, h.fs.Mkdir(name), "mkdir %s", name)
}

// ReadFile returns the content of name.
func (h *Helper) ReadFile(name string) []byte {
	h.t.Helper()
	data, err := sandboxfs.ReadFile(h.fs, name)
	require.NoError(h.t, err, "read %s", name)
	return data
}

// AssertFileContent checks that name holds exactly expected.
func (h *Helper) AssertFileContent(name string, expected []byte) {
	h.t.Helper()
	assert.Equal(h.t, expected, h.ReadFile(name), "content of %s", name)
}

// AssertExists checks that name is present.
func (h *Helper) AssertExists(name string) {
	h.t.Helper()
	assert.True(h.t, h.fs.Exists(name), "expected %s to exist", name)
}

// AssertNotExists checks that name is absent.
func (h *Helper) AssertNotExists(name string) {
	h.t.Helper()
	assert.False(h.t, h.fs.Exists(name), "expected %s not to exist", name)
}

// AssertPolicyViolation checks that err is a sandbox or readonly rejection.
func AssertPolicyViolation(t *testing.T, err error) {
	t.Helper()
	assert.True(t, filesystem.IsPolicyViolation(err), "expected policy violation, got %v", err)
}
