package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Manager confines imports and exports to an allow-list of directories.
// Roots are stored canonical (absolute, symlinks resolved) so containment
// checks cannot be escaped through links.
type Manager struct {
	allowedDirs []string
	importExts  map[string]struct{}
	exportExts  map[string]struct{}
}

var (
	// ErrNotAllowed indicates the requested path is outside the allow-list roots.
	ErrNotAllowed = errors.New("security: path not allowed")
	// ErrUnsupportedExtension indicates the file extension is not accepted for the operation.
	ErrUnsupportedExtension = errors.New("security: unsupported file extension")
	// ErrNotFound indicates the requested file does not exist or is not accessible.
	ErrNotFound = errors.New("security: file not found")
	// ErrExists is returned when an export target already exists.
	ErrExists = errors.New("security: file already exists")
)

// ImportExtensions are the workbook formats the reader accepts.
var ImportExtensions = []string{".xlsx", ".xlsm", ".xltx", ".xltm"}

// ExportExtensions are the formats the exporter writes.
var ExportExtensions = []string{".xlsx", ".csv"}

func extSet(list []string) (map[string]struct{}, error) {
	out := make(map[string]struct{}, len(list))
	for _, e := range list {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" || !strings.HasPrefix(e, ".") {
			return nil, fmt.Errorf("security: invalid extension: %q", e)
		}
		out[e] = struct{}{}
	}
	return out, nil
}

// NewManager canonicalizes allowDirs. Empty entries are skipped; missing or
// non-directory entries are errors. A nil importExts uses ImportExtensions.
func NewManager(allowDirs []string, importExts []string) (*Manager, error) {
	if len(importExts) == 0 {
		importExts = ImportExtensions
	}
	in, err := extSet(importExts)
	if err != nil {
		return nil, err
	}
	out, _ := extSet(ExportExtensions)

	canonical := make([]string, 0, len(allowDirs))
	for _, d := range allowDirs {
		d = strings.TrimSpace(d)
		if d == "" {
			continue
		}
		real, err := canonicalize(d)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(real)
		if err != nil {
			return nil, fmt.Errorf("security: stat %q: %w", real, err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("security: allow-list entry is not a directory: %q", real)
		}
		canonical = append(canonical, real)
	}
	return &Manager{allowedDirs: canonical, importExts: in, exportExts: out}, nil
}

func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", fmt.Errorf("security: resolve abs for %q: %w", p, err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, abs)
		}
		return "", fmt.Errorf("security: eval symlinks for %q: %w", abs, err)
	}
	return filepath.Clean(real), nil
}

// AllowedDirectories returns a copy of the canonical roots.
func (m *Manager) AllowedDirectories() []string {
	out := make([]string, len(m.allowedDirs))
	copy(out, m.allowedDirs)
	return out
}

// ValidateConfig fails when no roots are configured; file tools stay
// unusable until an operator sets BUZZLENS_ALLOWED_DIRS.
func (m *Manager) ValidateConfig() error {
	if len(m.allowedDirs) == 0 {
		return errors.New("security: no allowed directories configured")
	}
	return nil
}

// ValidateOpenPath checks that input is an existing workbook inside a root
// and returns its canonical path.
func (m *Manager) ValidateOpenPath(input string) (string, error) {
	if input == "" {
		return "", ErrNotAllowed
	}
	if _, ok := m.importExts[strings.ToLower(filepath.Ext(input))]; !ok {
		return "", ErrUnsupportedExtension
	}
	real, err := canonicalize(input)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	info, err := os.Stat(real)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("security: stat: %w", err)
	}
	if info.IsDir() || !m.contained(real) {
		return "", ErrNotAllowed
	}
	return real, nil
}

// ValidateExportPath checks that input names a new file with an export
// extension whose parent directory lies inside a root. Existing files are
// never overwritten.
func (m *Manager) ValidateExportPath(input string) (string, error) {
	if input == "" {
		return "", ErrNotAllowed
	}
	if _, ok := m.exportExts[strings.ToLower(filepath.Ext(input))]; !ok {
		return "", ErrUnsupportedExtension
	}
	abs, err := filepath.Abs(input)
	if err != nil {
		return "", fmt.Errorf("security: abs path: %w", err)
	}
	dir, err := canonicalize(filepath.Dir(abs))
	if err != nil {
		return "", ErrNotAllowed
	}
	if !m.contained(dir) && !m.isRoot(dir) {
		return "", ErrNotAllowed
	}
	target := filepath.Join(dir, filepath.Base(abs))
	if _, err := os.Lstat(target); err == nil {
		return "", ErrExists
	}
	return target, nil
}

// contained reports whether real lies strictly below one of the roots.
func (m *Manager) contained(real string) bool {
	for _, root := range m.allowedDirs {
		rel, err := filepath.Rel(root, real)
		if err != nil || rel == "." || rel == "" {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (m *Manager) isRoot(dir string) bool {
	for _, root := range m.allowedDirs {
		if root == dir {
			return true
		}
	}
	return false
}
