package filesystem

import (
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/sandboxfs/pkg/sandboxfs/core"
)

// SanitizedPath is a caller path that passed Sanitize. Rel is slash separated
// and relative to the root ("." for the root itself); Abs is Rel joined onto
// the root.
type SanitizedPath struct {
	Rel string
	Abs string
}

// Sanitize validates candidate as a sandboxed path and resolves it under root.
//
// A candidate is rejected when it is absolute on the host or when any of its
// segments is "..", wherever that segment appears. The check is lexical: it
// never looks at the storage, so it holds for paths that do not exist yet.
// Empty and "." segments are dropped; "" and "." name the root itself.
func Sanitize(root, candidate string) (SanitizedPath, error) {
	if !isSandboxed(candidate) {
		return SanitizedPath{}, core.NewPolicyError(fmt.Sprintf(
			"path %q is not a valid sandboxed path: must be relative with no parent-directory references",
			candidate))
	}

	segments := make([]string, 0, 8)
	for _, segment := range splitSegments(candidate) {
		if segment == "" || segment == "." {
			continue
		}
		segments = append(segments, segment)
	}

	rel := "."
	if len(segments) > 0 {
		rel = path.Join(segments...)
	}

	return SanitizedPath{
		Rel: rel,
		Abs: filepath.Join(root, filepath.FromSlash(rel)),
	}, nil
}

func isSandboxed(candidate string) bool {
	if filepath.IsAbs(candidate) || strings.HasPrefix(candidate, "/") {
		return false
	}
	if filepath.VolumeName(candidate) != "" {
		return false
	}
	for _, segment := range splitSegments(candidate) {
		if segment == ".." {
			return false
		}
	}
	return true
}

// splitSegments splits on '/' and, where it differs, the host separator.
func splitSegments(p string) []string {
	return strings.FieldsFunc(p, func(r rune) bool {
		return r == '/' || r == filepath.Separator
	})
}
