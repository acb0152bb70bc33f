package filesystem

import (
	"errors"
	"fmt"
	"path"
	"sync"

	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/core"
	"github.com/rs/zerolog"
)

const (
	// DefaultFilePerm is used for files created through OpenWithOptions.
	DefaultFilePerm = 0o644
	// DefaultDirPerm is used for directories created through Mkdir.
	DefaultDirPerm = 0o755
)

// Option configures a Sandbox.
type Option func(*Sandbox)

// WithLogger sets the logger used for operation tracing and policy warnings.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Sandbox) {
		s.logger = logger
	}
}

// Sandbox implements FileSystem over a Backend. It sanitizes every path and
// enforces the readonly policy before any backend call.
type Sandbox struct {
	root     Root
	backend  Backend
	name     string
	hostRoot bool
	logger   zerolog.Logger

	shutdownOnce sync.Once
	shutdownErr  error
}

func newSandbox(name string, root Root, hostRoot bool, backend Backend, opts ...Option) *Sandbox {
	s := &Sandbox{
		root:     root,
		backend:  backend,
		name:     name,
		hostRoot: hostRoot,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("backend", name).Str("root", root.Path).Logger()
	return s
}

// SystemType implements core.System.
func (s *Sandbox) SystemType() core.SystemType {
	return core.SystemTypeFilesystem
}

// String mirrors the debug form used in log lines and policy errors.
func (s *Sandbox) String() string {
	return fmt.Sprintf("<Filesystem root: %s>", s.root.Path)
}

// ReadOnly reports whether mutations are rejected.
func (s *Sandbox) ReadOnly() bool {
	return s.root.ReadOnly
}

// Root implements FileSystem.
func (s *Sandbox) Root() (string, bool) {
	if !s.hostRoot {
		return "", false
	}
	return s.root.Path, true
}

// OpenWithOptions implements FileSystem.
func (s *Sandbox) OpenWithOptions(name string, opts OpenOptions) (File, error) {
	if s.root.ReadOnly && opts.Mutates() {
		return nil, s.denyReadOnly("open", name,
			fmt.Sprintf("cannot alter file %q in %s, filesystem is read-only", name, s))
	}

	p, err := s.resolve("open", name)
	if err != nil {
		return nil, err
	}

	s.logger.Debug().Str("op", "open").Str("path", p.Rel).Int("flags", opts.Flags()).Msg("opening file")
	f, err := s.backend.OpenFile(p.Abs, opts.Flags(), DefaultFilePerm)
	if err != nil {
		return nil, core.NewIOError(fmt.Sprintf("cannot open %q", name), err)
	}
	return f, nil
}

// Mkdir implements FileSystem.
func (s *Sandbox) Mkdir(name string) error {
	if s.root.ReadOnly {
		return s.denyReadOnly("mkdir", name,
			fmt.Sprintf("tried to create directory %q but the filesystem is read-only", name))
	}

	p, err := s.resolve("mkdir", name)
	if err != nil {
		return err
	}

	s.logger.Debug().Str("op", "mkdir").Str("path", p.Rel).Msg("creating directory")
	if err := s.backend.MkdirAll(p.Abs, DefaultDirPerm); err != nil {
		return core.NewIOError(fmt.Sprintf("cannot create directory %q", name), err)
	}
	return nil
}

// Remove implements FileSystem.
func (s *Sandbox) Remove(name string) error {
	if s.root.ReadOnly {
		return s.denyReadOnly("remove", name,
			fmt.Sprintf("tried to remove the file/empty directory %q, but the filesystem is read-only", name))
	}

	p, err := s.resolve("remove", name)
	if err != nil {
		return err
	}
	if p.Rel == "." {
		return s.denyRoot("remove", name)
	}

	s.logger.Debug().Str("op", "remove").Str("path", p.Rel).Msg("removing entry")
	if err := s.backend.Remove(p.Abs); err != nil {
		return core.NewIOError(fmt.Sprintf("cannot remove %q", name), err)
	}
	return nil
}

// RemoveAll implements FileSystem.
func (s *Sandbox) RemoveAll(name string) error {
	if s.root.ReadOnly {
		return s.denyReadOnly("remove_all", name,
			fmt.Sprintf("tried to remove the file/directory %q, but the filesystem is read-only", name))
	}

	p, err := s.resolve("remove_all", name)
	if err != nil {
		return err
	}
	if p.Rel == "." {
		return s.denyRoot("remove_all", name)
	}

	// Backends treat a missing tree as success; the interface does not.
	if _, err := s.backend.Stat(p.Abs); err != nil {
		return core.NewIOError(fmt.Sprintf("cannot remove %q", name), err)
	}

	s.logger.Debug().Str("op", "remove_all").Str("path", p.Rel).Msg("removing tree")
	if err := s.backend.RemoveAll(p.Abs); err != nil {
		return core.NewIOError(fmt.Sprintf("cannot remove %q", name), err)
	}
	return nil
}

// Exists implements FileSystem.
func (s *Sandbox) Exists(name string) bool {
	p, err := Sanitize(s.root.Path, name)
	if err != nil {
		return false
	}
	_, err = s.backend.Stat(p.Abs)
	return err == nil
}

// Metadata implements FileSystem.
func (s *Sandbox) Metadata(name string) (Metadata, error) {
	p, err := s.resolve("metadata", name)
	if err != nil {
		return Metadata{}, err
	}

	info, err := s.backend.Stat(p.Abs)
	if err != nil {
		return Metadata{}, core.NewIOError(fmt.Sprintf("cannot read metadata of %q", name), err)
	}
	return metadataFromInfo(info), nil
}

// ReadDir implements FileSystem. The whole directory is read before the
// listing is returned; each child is re-sanitized on its own, so a bad entry
// yields an error element instead of failing the call.
func (s *Sandbox) ReadDir(name string) (*Listing, error) {
	p, err := s.resolve("read_dir", name)
	if err != nil {
		return nil, err
	}

	names, err := s.backend.ReadDirNames(p.Abs)
	if err != nil {
		return nil, core.NewIOError(fmt.Sprintf("cannot read directory %q", name), err)
	}

	entries := make([]Entry, 0, len(names))
	for _, child := range names {
		cp, err := Sanitize(s.root.Path, path.Join(p.Rel, child))
		if err != nil {
			entries = append(entries, Entry{Err: err})
			continue
		}
		entries = append(entries, Entry{Path: cp.Abs})
	}

	s.logger.Debug().Str("op", "read_dir").Str("path", p.Rel).Int("entries", len(entries)).Msg("listed directory")
	return newListing(entries), nil
}

// ShutDown implements FileSystem.
func (s *Sandbox) ShutDown() error {
	s.shutdownOnce.Do(func() {
		if err := s.backend.Close(); err != nil {
			s.shutdownErr = core.NewIOError(fmt.Sprintf("cannot shut down %s", s), err)
		}
		s.logger.Debug().Err(s.shutdownErr).Msg("filesystem shut down")
	})
	return s.shutdownErr
}

func (s *Sandbox) resolve(op, name string) (SanitizedPath, error) {
	p, err := Sanitize(s.root.Path, name)
	if err != nil {
		s.logger.Warn().Str("op", op).Str("path", name).Err(err).Msg("rejected path outside sandbox")
		return SanitizedPath{}, err
	}
	return p, nil
}

func (s *Sandbox) denyReadOnly(op, name, description string) error {
	err := core.NewPolicyError(description)
	s.logger.Warn().Str("op", op).Str("path", name).Err(err).Msg("rejected mutation of read-only filesystem")
	return err
}

// denyRoot rejects removal of the root itself, which would leave the
// instance without storage.
func (s *Sandbox) denyRoot(op, name string) error {
	err := core.NewPolicyError(fmt.Sprintf("path %q refers to the root of %s, which cannot be removed", name, s))
	s.logger.Warn().Str("op", op).Str("path", name).Err(err).Msg("rejected removal of sandbox root")
	return err
}

// IsPolicyViolation reports whether err was a sandbox or readonly rejection.
func IsPolicyViolation(err error) bool {
	return errors.Is(err, core.ErrPolicyViolation)
}
