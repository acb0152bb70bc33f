package filesystem

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOpenOptionsFlags(t *testing.T) {
	tests := []struct {
		name    string
		opts    OpenOptions
		flags   int
		mutates bool
	}{
		{"read", OpenOptions{Read: true}, os.O_RDONLY, false},
		{"none", OpenOptions{}, os.O_RDONLY, false},
		{"write", OpenOptions{Write: true}, os.O_WRONLY, true},
		{"read write", OpenOptions{Read: true, Write: true}, os.O_RDWR, true},
		{"append", OpenOptions{Append: true}, os.O_WRONLY | os.O_APPEND, true},
		{"read append", OpenOptions{Read: true, Append: true}, os.O_RDWR | os.O_APPEND, true},
		{"create truncate", CreateTruncate(), os.O_WRONLY | os.O_CREATE | os.O_TRUNC, true},
		{"create new", OpenOptions{Write: true, CreateNew: true}, os.O_WRONLY | os.O_CREATE | os.O_EXCL, true},
		{"truncate only", OpenOptions{Truncate: true}, os.O_RDONLY | os.O_TRUNC, true},
		{"create only", OpenOptions{Create: true}, os.O_RDONLY | os.O_CREATE, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.flags, tt.opts.Flags())
			assert.Equal(t, tt.mutates, tt.opts.Mutates())
		})
	}
}

type fakeInfo struct {
	os.FileInfo
	mode os.FileMode
	size int64
}

func (f fakeInfo) IsDir() bool       { return f.mode.IsDir() }
func (f fakeInfo) Mode() os.FileMode { return f.mode }
func (f fakeInfo) Size() int64       { return f.size }

func TestMetadataFromInfo(t *testing.T) {
	assert.Equal(t, Metadata{IsFile: true, Length: 42}, metadataFromInfo(fakeInfo{mode: 0o644, size: 42}))
	assert.Equal(t, Metadata{IsDir: true, Length: 4096}, metadataFromInfo(fakeInfo{mode: os.ModeDir | 0o755, size: 4096}))
	assert.Equal(t, Metadata{}, metadataFromInfo(fakeInfo{mode: os.ModeSymlink, size: -1}))
}
