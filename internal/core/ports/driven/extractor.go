package driven

import (
	"context"

	"github.com/trenlab/kontent-cli/internal/core/domain"
)

// Extractor turns a source document into a canonical extraction result.
// Each extractor handles specific file extensions (e.g. pdf, docx).
//
// Extract never returns a Go error for per-file extraction failures;
// those come back as a result with OutcomeFailed so the batch continues.
// The returned result is always non-nil.
type Extractor interface {
	// SupportedExtensions returns lower-cased extensions without the
	// leading dot (e.g. "pdf", "docx").
	SupportedExtensions() []string

	// Extract reads the file at path and produces a tagged result.
	Extract(ctx context.Context, path string) *domain.ExtractionResult
}

// ExtractorRegistry dispatches files to extractors by extension.
type ExtractorRegistry interface {
	// Extract selects the extractor for the file's extension and runs it.
	// Unknown extensions produce a result with OutcomeFailed and the
	// unsupported-format reason.
	Extract(ctx context.Context, path string) *domain.ExtractionResult

	// Register adds an extractor to the registry.
	Register(extractor Extractor)

	// Supported reports whether the extension (without dot, any case)
	// has a registered extractor.
	Supported(ext string) bool
}
