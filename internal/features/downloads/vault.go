package downloads

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var ErrFileNotFound = errors.New("file not found")

// Generated artifact names are biodata_<slug>_<owner>_<timestamp>_<random>
// with a pdf or html extension. Anything user-supplied that strays from
// that shape is rejected before it gets near the filesystem.
var allowedFilenamePattern = regexp.MustCompile(`^biodata_[A-Za-z0-9_.-]+\.(pdf|html)$`)

// FileVault maps logical artifact filenames to files under a fixed root
// directory. Resolution is always basename-only, so even trusted callers
// cannot escape the root.
type FileVault struct {
	root string
}

func NewFileVault(root string) *FileVault {
	return &FileVault{root: root}
}

// IsAllowedUserFilename whitelists filenames arriving from user-supplied
// route parameters (the lowest-trust direct-file path).
func (v *FileVault) IsAllowedUserFilename(filename string) bool {
	if strings.ContainsAny(filename, "/\\") || strings.Contains(filename, "..") {
		return false
	}
	return allowedFilenamePattern.MatchString(filename)
}

// Resolve returns the absolute path, the effective filename and the content
// type for a logical filename. When the .pdf is missing on disk the .html
// sibling is tried first, mirroring the renderer's fallback mode.
func (v *FileVault) Resolve(filename string) (string, string, string, error) {
	name := filepath.Base(filename)
	path := filepath.Join(v.root, name)

	if _, err := os.Stat(path); err != nil {
		if !strings.HasSuffix(name, ".pdf") {
			return "", "", "", ErrFileNotFound
		}

		htmlName := strings.TrimSuffix(name, ".pdf") + ".html"
		htmlPath := filepath.Join(v.root, htmlName)
		if _, err := os.Stat(htmlPath); err != nil {
			return "", "", "", ErrFileNotFound
		}

		name = htmlName
		path = htmlPath
	}

	return path, name, contentTypeFor(name), nil
}

// Open returns a read stream and the size of the resolved artifact.
func (v *FileVault) Open(path string) (*os.File, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, ErrFileNotFound
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, 0, err
	}

	return file, info.Size(), nil
}

// WriteArtifact stores rendered bytes under the vault root, creating the
// root directory on first use.
func (v *FileVault) WriteArtifact(filename string, data []byte) (int64, error) {
	if err := os.MkdirAll(v.root, 0o755); err != nil {
		return 0, err
	}

	path := filepath.Join(v.root, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return 0, err
	}

	return int64(len(data)), nil
}

func contentTypeFor(filename string) string {
	if strings.HasSuffix(filename, ".pdf") {
		return "application/pdf"
	}
	return "text/html"
}
