package file

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxFileSize is the upload ceiling: exactly 50 MiB is still accepted.
const MaxFileSize int64 = 50 << 20

var allowedExtensions = map[string]bool{
	".dwg": true,
	".pdf": true,
}

var (
	ErrFileTooLarge     = errors.New("file exceeds the 50MB limit")
	ErrBadExtension     = errors.New("only .dwg and .pdf files are allowed")
	ErrEmptyFileName    = errors.New("file name is required")
	ErrNoValidFiles     = errors.New("no valid files in upload")
)

// SplitName splits a file name into base name and extension. The base name
// is the versioning key within a project.
func SplitName(name string) (base, ext string) {
	ext = filepath.Ext(name)
	base = strings.TrimSuffix(name, ext)
	return base, ext
}

// ValidateUpload enforces the per-file constraints checked before any
// versioning: extension whitelist (case-insensitive) and size ceiling.
// A failing file is rejected on its own, without aborting batch siblings.
func ValidateUpload(name string, size int64) error {
	if name == "" {
		return ErrEmptyFileName
	}
	_, ext := SplitName(name)
	if !allowedExtensions[strings.ToLower(ext)] {
		return ErrBadExtension
	}
	if size > MaxFileSize {
		return ErrFileTooLarge
	}
	return nil
}

// ResolveName decides the stored name and version for an incoming file.
// exists reports whether a file with this exact original name is already in
// the project; latestVersion is the maximum version among project files
// sharing the same base name (0 when none). The first upload keeps its name;
// later ones become {base}_v{n}{ext}.
func ResolveName(originalName string, exists bool, latestVersion int) (storedName string, version int) {
	if !exists {
		return originalName, 1
	}
	base, ext := SplitName(originalName)
	version = latestVersion + 1
	return fmt.Sprintf("%s_v%d%s", base, version, ext), version
}
