// Package sandboxfs is the entry point for callers that want a sandboxed
// filesystem without wiring the sub-packages by hand.
//
// A mount is described by a config.Config (usually loaded from TOML and
// overlaid with SANDBOXFS_* variables) and turned into a FileSystem with
// Mount. Every path handed to a FileSystem is relative to its root; absolute
// paths and ".." segments are rejected as policy violations.
package sandboxfs

import (
	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/config"
	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/filesystem"
	"github.com/rs/zerolog"
)

// FileSystem is the capability interface every backend implements.
type FileSystem = filesystem.FileSystem

// Open loads the config at path, applies the environment overlay and mounts
// the result. An empty path mounts config.Defaults.
func Open(path string, logger zerolog.Logger) (*filesystem.Sandbox, error) {
	cfg := config.Defaults()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}
	return config.Mount(cfg, logger)
}
