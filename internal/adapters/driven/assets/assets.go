// Package assets is the filesystem adapter for public binary assets:
// copied source documents and extracted images.
package assets

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/trenlab/kontent-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.AssetStore = (*Store)(nil)

// Sub-paths under the public root, one per content type.
const (
	filesDir  = "files"
	imagesDir = "images"
)

// Store writes assets under a public root directory and returns their
// public URL paths. Re-storing the same file name overwrites the
// previous copy, which keeps reruns idempotent.
type Store struct {
	rootDir string
	baseURL string
}

// NewStore creates an asset store rooted at rootDir with public paths
// prefixed by baseURL (e.g. "/static"). The content-type sub-paths are
// created up front.
func NewStore(rootDir, baseURL string) (*Store, error) {
	for _, sub := range []string{filesDir, imagesDir} {
		if err := os.MkdirAll(filepath.Join(rootDir, sub), 0o755); err != nil {
			return nil, fmt.Errorf("creating asset directory: %w", err)
		}
	}
	return &Store{
		rootDir: rootDir,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}, nil
}

// StoreFile copies the source file into the public files area under a
// sanitised name and returns its public path.
func (s *Store) StoreFile(srcPath string) (string, error) {
	name := SanitizeFileName(filepath.Base(srcPath))

	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	dstPath := filepath.Join(s.rootDir, filesDir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return "", fmt.Errorf("creating asset copy: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", fmt.Errorf("copying asset: %w", err)
	}

	return s.baseURL + "/" + filesDir + "/" + name, nil
}

// StoreImage writes an extracted image into the public images area and
// returns its public path.
func (s *Store) StoreImage(name string, data []byte) (string, error) {
	name = SanitizeFileName(name)

	dstPath := filepath.Join(s.rootDir, imagesDir, name)
	if err := os.WriteFile(dstPath, data, 0o644); err != nil {
		return "", fmt.Errorf("writing image asset: %w", err)
	}

	return s.baseURL + "/" + imagesDir + "/" + name, nil
}

// SanitizeFileName replaces every character outside letters, digits,
// '.', '_' and '-' with an underscore.
func SanitizeFileName(name string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		switch r {
		case '.', '_', '-':
			return r
		}
		return '_'
	}, name)
}
