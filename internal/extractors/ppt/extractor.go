// Package ppt handles legacy binary PowerPoint files.
package ppt

import (
	"context"
	"path/filepath"

	"github.com/trenlab/kontent-cli/internal/core/domain"
	"github.com/trenlab/kontent-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles legacy .ppt presentations. The binary format is
// not parseable reliably, so no text extraction is attempted: the file
// is always presented as an opaque binary for viewing/downloading.
type Extractor struct{}

// New creates a new legacy PPT extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{"ppt"}
}

// Extract always returns the opaque-binary outcome.
func (e *Extractor) Extract(_ context.Context, path string) *domain.ExtractionResult {
	return domain.OpaqueResult(path, filepath.Base(path), "ppt")
}
