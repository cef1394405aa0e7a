// Package extractors dispatches source files to per-format extractors
// by file extension.
package extractors

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/trenlab/kontent-cli/internal/core/domain"
	"github.com/trenlab/kontent-cli/internal/core/ports/driven"
	"github.com/trenlab/kontent-cli/internal/extractors/docx"
	"github.com/trenlab/kontent-cli/internal/extractors/pdf"
	"github.com/trenlab/kontent-cli/internal/extractors/ppt"
	"github.com/trenlab/kontent-cli/internal/extractors/pptx"
	"github.com/trenlab/kontent-cli/internal/extractors/xlsx"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry maps file extensions to extractors.
// Not safe for concurrent registration; the pipeline registers all
// extractors up front and then only reads.
type Registry struct {
	byExt map[string]driven.Extractor
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byExt: make(map[string]driven.Extractor)}
}

// NewDefaultRegistry creates a registry with all built-in extractors.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(pdf.New())
	r.Register(docx.New())
	r.Register(xlsx.New())
	r.Register(pptx.New())
	r.Register(ppt.New())
	return r
}

// Register adds an extractor for each of its supported extensions.
// A later registration for the same extension wins.
func (r *Registry) Register(extractor driven.Extractor) {
	for _, ext := range extractor.SupportedExtensions() {
		r.byExt[strings.ToLower(ext)] = extractor
	}
}

// Supported reports whether the extension has a registered extractor.
func (r *Registry) Supported(ext string) bool {
	_, ok := r.byExt[normalizeExt(ext)]
	return ok
}

// Extract dispatches the file to the extractor for its extension.
// Unknown extensions produce a failed result rather than an error: the
// batch keeps going and the file is counted in the error tally.
func (r *Registry) Extract(ctx context.Context, path string) *domain.ExtractionResult {
	fileName := filepath.Base(path)
	ext := normalizeExt(filepath.Ext(fileName))

	extractor, ok := r.byExt[ext]
	if !ok {
		return domain.FailedResult(path, fileName, ext, domain.ErrUnsupportedFormat.Error())
	}
	return extractor.Extract(ctx, path)
}

// normalizeExt lower-cases an extension and strips the leading dot.
func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}
