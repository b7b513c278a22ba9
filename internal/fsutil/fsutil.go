// Package fsutil provides the small set of filesystem helpers mecompd needs
// (existence checks, path containment, extension/trunk splitting), replacing
// the private gitlab.com/go-utilities/file module the teacher used.
package fsutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Exists reports whether path exists, following symlinks. Only a
// "does not exist" result maps to (false, nil); any other stat error, such
// as a permission error, is returned to the caller.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// IsDir reports whether path exists and is a directory.
func IsDir(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// IsSub reports whether child is the same as, or nested under, parent. Both
// paths are cleaned and made absolute before comparison, so relative and
// absolute forms of the same path compare equal.
func IsSub(child, parent string) (bool, error) {
	c, err := filepath.Abs(child)
	if err != nil {
		return false, err
	}
	p, err := filepath.Abs(parent)
	if err != nil {
		return false, err
	}
	c = filepath.Clean(c)
	p = filepath.Clean(p)

	if c == p {
		return true, nil
	}
	rel, err := filepath.Rel(p, c)
	if err != nil {
		return false, nil
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}

// PathTrunk returns path without its file extension, e.g.
// PathTrunk("/a/b/song.flac") == "/a/b/song".
func PathTrunk(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext)
}

// HasExtension reports whether path's extension (case-insensitively, without
// the leading dot) matches one of exts.
func HasExtension(path string, exts ...string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range exts {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
