package env

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	t.Run("present", func(t *testing.T) {
		t.Setenv("SANDBOXFS_TEST_VALUE", "assets")

		value, err := Lookup("SANDBOXFS_TEST_VALUE")
		require.NoError(t, err)
		assert.Equal(t, "assets", value)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Lookup("SANDBOXFS_TEST_SURELY_UNSET")
		require.Error(t, err)
		assert.True(t, IsNotPresent(err))

		var varErr *VarError
		require.True(t, errors.As(err, &varErr))
		assert.Equal(t, "SANDBOXFS_TEST_SURELY_UNSET", varErr.Name)
	})

	t.Run("invalid utf8", func(t *testing.T) {
		t.Setenv("SANDBOXFS_TEST_BINARY", "\xff\xfe")

		_, err := Lookup("SANDBOXFS_TEST_BINARY")
		assert.ErrorIs(t, err, ErrNotUnicode)
		assert.False(t, IsNotPresent(err))
	})
}

func TestBool(t *testing.T) {
	tests := []struct {
		value   string
		want    bool
		wantErr bool
	}{
		{value: "true", want: true},
		{value: "1", want: true},
		{value: "FALSE", want: false},
		{value: "0", want: false},
		{value: "sometimes", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			t.Setenv("SANDBOXFS_TEST_BOOL", tt.value)

			got, err := Bool("SANDBOXFS_TEST_BOOL")
			if tt.wantErr {
				var varErr *VarError
				assert.True(t, errors.As(err, &varErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
