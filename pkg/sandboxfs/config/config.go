// Package config describes a sandbox mount in TOML and turns that
// description into a filesystem.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/core"
	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/env"
	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/filesystem"
	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
)

// Backend names accepted in [filesystem].backend.
const (
	BackendDisk    = "disk"
	BackendMemory  = "memory"
	BackendArchive = "archive"
)

// Environment variables read by ApplyEnv.
const (
	EnvBackend  = "SANDBOXFS_BACKEND"
	EnvRoot     = "SANDBOXFS_ROOT"
	EnvReadOnly = "SANDBOXFS_READONLY"
	EnvArchive  = "SANDBOXFS_ARCHIVE"
	EnvLogLevel = "SANDBOXFS_LOG_LEVEL"
)

// FilesystemConfig selects and parameterises a backend.
type FilesystemConfig struct {
	Backend  string `toml:"backend"`
	Root     string `toml:"root,omitempty"`
	RootEnv  string `toml:"root_env,omitempty"` // takes precedence over Root when set
	ReadOnly bool   `toml:"readonly"`
	Archive  string `toml:"archive,omitempty"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `toml:"level"`
}

// Config is the top-level mount description.
type Config struct {
	Filesystem FilesystemConfig `toml:"filesystem"`
	Logging    LoggingConfig    `toml:"logging"`
}

// Defaults returns a writable disk mount of the working directory.
func Defaults() *Config {
	return &Config{
		Filesystem: FilesystemConfig{
			Backend: BackendDisk,
			Root:    ".",
		},
		Logging: LoggingConfig{
			Level: "warn",
		},
	}
}

// Load reads the TOML file at path on top of Defaults. Keys the Config does
// not know about are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewIOError(fmt.Sprintf("cannot read config %q", path), err)
	}

	cfg := Defaults()
	dec := toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return nil, core.FromDecode(err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML.
func Save(path string, cfg *Config) error {
	data, err := toml.Marshal(cfg)
	if err != nil {
		return core.FromEncode(err)
	}
	if err := os.WriteFile(path, data, filesystem.DefaultFilePerm); err != nil {
		return core.NewIOError(fmt.Sprintf("cannot write config %q", path), err)
	}
	return nil
}

// ApplyEnv overlays SANDBOXFS_* variables onto cfg in a fixed order:
// backend, root, archive, log level, readonly. Unset variables leave the
// field alone; the first variable that is set but unusable is reported as an
// Environment error.
func ApplyEnv(cfg *Config) error {
	overrides := []struct {
		name  string
		field *string
	}{
		{EnvBackend, &cfg.Filesystem.Backend},
		{EnvRoot, &cfg.Filesystem.Root},
		{EnvArchive, &cfg.Filesystem.Archive},
		{EnvLogLevel, &cfg.Logging.Level},
	}
	for _, o := range overrides {
		value, err := env.Lookup(o.name)
		if env.IsNotPresent(err) {
			continue
		}
		if err != nil {
			return core.FromEnv(err)
		}
		*o.field = value
	}

	readonly, err := env.Bool(EnvReadOnly)
	switch {
	case env.IsNotPresent(err):
	case err != nil:
		return core.FromEnv(err)
	default:
		cfg.Filesystem.ReadOnly = readonly
	}
	return nil
}

// ValidationError accumulates config validation problems.
type ValidationError struct {
	Problems []string
}

func (v *ValidationError) Error() string {
	return "config validation failed:\n  - " + strings.Join(v.Problems, "\n  - ")
}

func (v *ValidationError) add(format string, args ...any) {
	v.Problems = append(v.Problems, fmt.Sprintf(format, args...))
}

// Validate checks cfg for structural problems. All of them are reported
// together as a Deserialization error wrapping a *ValidationError.
func (c *Config) Validate() error {
	ve := &ValidationError{}

	fs := c.Filesystem
	switch fs.Backend {
	case BackendDisk:
		if fs.Root == "" && fs.RootEnv == "" {
			ve.add("filesystem.root or filesystem.root_env is required for the disk backend")
		}
	case BackendMemory:
	case BackendArchive:
		if fs.Archive == "" {
			ve.add("filesystem.archive is required for the archive backend")
		}
	default:
		ve.add("filesystem.backend %q is not one of %s, %s, %s", fs.Backend, BackendDisk, BackendMemory, BackendArchive)
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil {
		ve.add("logging.level %q is not a log level", c.Logging.Level)
	}

	if len(ve.Problems) > 0 {
		return core.NewDeserializationError("invalid sandbox configuration", ve)
	}
	return nil
}

// Mount validates cfg and builds the filesystem it describes.
func Mount(cfg *Config, logger zerolog.Logger) (*filesystem.Sandbox, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := []filesystem.Option{filesystem.WithLogger(logger)}
	fs := cfg.Filesystem

	switch fs.Backend {
	case BackendMemory:
		return filesystem.NewMemoryFileSystem(fs.ReadOnly, opts...), nil
	case BackendArchive:
		return filesystem.OpenArchive(fs.Archive, opts...)
	}

	root := fs.Root
	if fs.RootEnv != "" {
		value, err := env.Lookup(fs.RootEnv)
		if err != nil {
			return nil, core.FromEnv(err)
		}
		root = value
	}
	return filesystem.NewOSFileSystem(root, fs.ReadOnly, opts...), nil
}
