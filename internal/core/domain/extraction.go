package domain

// ExtractionOutcome tags the result of extracting a source document.
// The materialiser branches exhaustively on the outcome; no in-band
// string sentinels are used anywhere in the pipeline.
type ExtractionOutcome int

const (
	// OutcomeText means canonical UTF-8 text was extracted.
	OutcomeText ExtractionOutcome = iota

	// OutcomeOpaqueBinary means no usable text was found and the
	// original file should be presented for viewing/downloading.
	OutcomeOpaqueBinary

	// OutcomeImages means no usable text was found but embedded raster
	// images were, and should be presented as a gallery.
	OutcomeImages

	// OutcomeFailed means extraction failed; Err carries the reason.
	// The file is skipped during materialisation and counted in the
	// run's error tally.
	OutcomeFailed
)

// String returns the outcome name for logs and reports.
func (o ExtractionOutcome) String() string {
	switch o {
	case OutcomeText:
		return "text"
	case OutcomeOpaqueBinary:
		return "opaque-binary"
	case OutcomeImages:
		return "images"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PageImage is a raster image extracted from a document page.
type PageImage struct {
	// Page is the 1-based source page number.
	Page int

	// Name is the image name within the document, used for stable
	// ordering within a page.
	Name string

	// FileType is the image file extension without the dot (png, jpg).
	FileType string

	// Data is the encoded image bytes.
	Data []byte
}

// ExtractionResult is the canonical output of an extractor.
type ExtractionResult struct {
	// Path is the source file path on disk.
	Path string

	// FileName is the base name of the source file.
	FileName string

	// FileType is the lower-cased extension without the dot.
	FileType string

	// Outcome tags which of the remaining fields are meaningful.
	Outcome ExtractionOutcome

	// Content is canonical text when Outcome is OutcomeText.
	Content string

	// Images holds extracted raster images when Outcome is OutcomeImages.
	Images []PageImage

	// Err is the failure reason when Outcome is OutcomeFailed.
	Err string
}

// TextResult builds a successful text extraction result.
func TextResult(path, fileName, fileType, content string) *ExtractionResult {
	return &ExtractionResult{
		Path:     path,
		FileName: fileName,
		FileType: fileType,
		Outcome:  OutcomeText,
		Content:  content,
	}
}

// OpaqueResult builds an opaque-binary extraction result.
func OpaqueResult(path, fileName, fileType string) *ExtractionResult {
	return &ExtractionResult{
		Path:     path,
		FileName: fileName,
		FileType: fileType,
		Outcome:  OutcomeOpaqueBinary,
	}
}

// ImagesResult builds a has-images extraction result.
func ImagesResult(path, fileName, fileType string, images []PageImage) *ExtractionResult {
	return &ExtractionResult{
		Path:     path,
		FileName: fileName,
		FileType: fileType,
		Outcome:  OutcomeImages,
		Images:   images,
	}
}

// FailedResult builds a failed extraction result. Extraction errors are
// absorbed at the extractor boundary; they never propagate as Go errors
// past it.
func FailedResult(path, fileName, fileType, reason string) *ExtractionResult {
	return &ExtractionResult{
		Path:     path,
		FileName: fileName,
		FileType: fileType,
		Outcome:  OutcomeFailed,
		Err:      reason,
	}
}
