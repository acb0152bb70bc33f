package filesystem_test

import (
	"fmt"
	"testing"

	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/filesystem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestIndependentInstancesOnSharedRoot(t *testing.T) {
	root := t.TempDir()
	const workers = 8

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			fsys := filesystem.NewOSFileSystem(root, false)
			dir := fmt.Sprintf("worker-%d/out", i)
			if err := fsys.Mkdir(dir); err != nil {
				return err
			}
			f, err := fsys.OpenWithOptions(dir+"/result.txt", filesystem.CreateTruncate())
			if err != nil {
				return err
			}
			if _, err := f.Write([]byte(dir)); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		})
	}
	require.NoError(t, g.Wait())

	fsys := filesystem.NewOSFileSystem(root, true)
	listing, err := fsys.ReadDir("")
	require.NoError(t, err)
	assert.Equal(t, workers, listing.Len())

	for i := 0; i < workers; i++ {
		dir := fmt.Sprintf("worker-%d/out", i)
		assert.Equal(t, []byte(dir), readAll(t, fsys, dir+"/result.txt"))
	}
}
