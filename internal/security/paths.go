// Package security guards the file names a run derives from user input: the
// output paths it writes and the video ids it stores.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathEscape is returned when a path resolves outside its base directory.
var ErrPathEscape = errors.New("path escapes output directory")

// canonical resolves symlinks in path. Paths that do not exist yet are
// resolved through their nearest existing ancestor, so a new file below a
// symlinked directory is judged by where the link points.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	rest := ""
	for dir := abs; ; {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(resolved, rest), nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("resolve %s: %w", dir, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		rest = filepath.Join(filepath.Base(dir), rest)
		dir = parent
	}
}

// WithinDir reports an ErrPathEscape error when path, after resolving
// symlinks, is not dir or below it.
func WithinDir(path, dir string) error {
	cp, err := canonical(path)
	if err != nil {
		return err
	}
	cd, err := canonical(dir)
	if err != nil {
		return err
	}
	rel, err := filepath.Rel(cd, cp)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return fmt.Errorf("%w: %s is outside %s", ErrPathEscape, path, dir)
	}
	return nil
}

// ResolveOutput places name in dir. Relative names are joined to dir; the
// result must stay within dir. An empty dir returns name unchanged.
func ResolveOutput(dir, name string) (string, error) {
	if dir == "" || name == "" {
		return name, nil
	}
	path := name
	if !filepath.IsAbs(path) {
		path = filepath.Join(dir, name)
	}
	if err := WithinDir(path, dir); err != nil {
		return "", err
	}
	return path, nil
}

// maxIDLen bounds sanitized ids.
const maxIDLen = 128

// SanitizeID turns an arbitrary string, such as a file name, into a video
// id made of ASCII letters, digits, dot, underscore and dash. Runs of other
// characters collapse to a single underscore. Empty results become "unknown".
func SanitizeID(s string) string {
	var b strings.Builder
	underscore := false
	for _, r := range s {
		if b.Len() >= maxIDLen {
			break
		}
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-', r == '_':
			b.WriteRune(r)
			underscore = r == '_'
		case !underscore:
			b.WriteByte('_')
			underscore = true
		}
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unknown"
	}
	return out
}
