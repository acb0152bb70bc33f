package filesystem

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	root := filepath.FromSlash("/srv/game")

	tests := []struct {
		name      string
		candidate string
		wantRel   string
		wantErr   bool
	}{
		{name: "simple relative", candidate: "saves/slot1.sav", wantRel: "saves/slot1.sav"},
		{name: "single segment", candidate: "texture.png", wantRel: "texture.png"},
		{name: "empty is root", candidate: "", wantRel: "."},
		{name: "dot is root", candidate: ".", wantRel: "."},
		{name: "dot segments dropped", candidate: "./a/./b", wantRel: "a/b"},
		{name: "duplicate slashes", candidate: "a//b/", wantRel: "a/b"},
		{name: "dotted name is not parent", candidate: "a/..b/c..", wantRel: "a/..b/c.."},
		{name: "leading parent", candidate: "../secret", wantErr: true},
		{name: "bare parent", candidate: "..", wantErr: true},
		{name: "parent after benign prefix", candidate: "a/../../etc", wantErr: true},
		{name: "parent that stays inside", candidate: "a/b/../c", wantErr: true},
		{name: "trailing parent", candidate: "a/..", wantErr: true},
		{name: "absolute", candidate: "/etc/passwd", wantErr: true},
		{name: "absolute root", candidate: "/", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Sanitize(root, tt.candidate)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, IsPolicyViolation(err))
				assert.Contains(t, err.Error(), tt.candidate)
				assert.Contains(t, err.Error(), "must be relative with no parent-directory references")
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantRel, got.Rel)
			assert.Equal(t, filepath.Join(root, filepath.FromSlash(tt.wantRel)), got.Abs)
		})
	}
}

func TestSanitizeStaysUnderRoot(t *testing.T) {
	root := t.TempDir()
	inputs := []string{"a", "a/b/c", "x/./y", "deep/er/and/deeper/file.txt", ""}

	for _, in := range inputs {
		p, err := Sanitize(root, in)
		require.NoError(t, err, in)

		rel, err := filepath.Rel(root, p.Abs)
		require.NoError(t, err)
		assert.False(t, rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator), "%q escaped to %q", in, p.Abs)
	}
}

func TestSanitizeDoesNotTouchStorage(t *testing.T) {
	root := filepath.Join(t.TempDir(), "does-not-exist")

	p, err := Sanitize(root, "saves/slot1.sav")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "saves", "slot1.sav"), p.Abs)
	assert.NoDirExists(t, root)
}
