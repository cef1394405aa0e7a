// Package pdf extracts page text from PDF documents, falling back to
// embedded raster images and finally to the opaque-binary outcome.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	ledongthuc "github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/trenlab/kontent-cli/internal/core/domain"
	"github.com/trenlab/kontent-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// DefaultMinTextLength is the minimum extracted text length, in
// characters, below which image extraction is attempted instead.
const DefaultMinTextLength = 50

// DefaultTimeout bounds a single PDF extraction so a pathological file
// cannot hang the whole batch.
const DefaultTimeout = 2 * time.Minute

// Extractor handles PDF documents. Extraction never raises past this
// boundary: parser failures, panics and timeouts all degrade to the
// opaque-binary outcome with the reason recorded on the result.
type Extractor struct {
	minTextLength int
	timeout       time.Duration
}

// Option configures the PDF extractor.
type Option func(*Extractor)

// WithMinTextLength sets the image-fallback threshold in characters.
func WithMinTextLength(n int) Option {
	return func(e *Extractor) {
		if n > 0 {
			e.minTextLength = n
		}
	}
}

// WithTimeout sets the per-file extraction timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// New creates a new PDF extractor with the given options.
func New(opts ...Option) *Extractor {
	e := &Extractor{
		minTextLength: DefaultMinTextLength,
		timeout:       DefaultTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{"pdf"}
}

// Extract runs the extraction under the configured timeout. On timeout
// the file is treated as an extraction failure and presented as an
// opaque binary.
func (e *Extractor) Extract(ctx context.Context, path string) *domain.ExtractionResult {
	fileName := filepath.Base(path)

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	resCh := make(chan *domain.ExtractionResult, 1)
	go func() {
		resCh <- e.extract(path, fileName)
	}()

	select {
	case res := <-resCh:
		return res
	case <-ctx.Done():
		res := domain.OpaqueResult(path, fileName, "pdf")
		res.Err = "extraction timed out: " + ctx.Err().Error()
		return res
	}
}

// extract runs the text → images → opaque fallback chain. The pdf
// parser panics on some malformed files; the recover keeps that inside
// the extractor boundary.
func (e *Extractor) extract(path, fileName string) (res *domain.ExtractionResult) {
	defer func() {
		if r := recover(); r != nil {
			res = domain.OpaqueResult(path, fileName, "pdf")
			res.Err = fmt.Sprintf("pdf parser panic: %v", r)
		}
	}()

	text, err := readText(path)
	if err != nil {
		res = domain.OpaqueResult(path, fileName, "pdf")
		res.Err = "pdf parse failed: " + err.Error()
		return res
	}

	if utf8.RuneCountInString(text) >= e.minTextLength {
		return domain.TextResult(path, fileName, "pdf", text)
	}

	// Too little text to be useful; look for embedded raster images.
	if images := extractImages(path); len(images) > 0 {
		return domain.ImagesResult(path, fileName, "pdf", images)
	}

	return domain.OpaqueResult(path, fileName, "pdf")
}

// readText extracts page text, retrying with the whole file loaded
// into memory when the file-backed parse fails.
func readText(path string) (string, error) {
	f, reader, err := ledongthuc.Open(path)
	if err == nil {
		defer f.Close()
		return pagesText(reader), nil
	}

	// Alternate loading strategy: parse from an in-memory copy.
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		return "", readErr
	}
	reader, err = ledongthuc.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	return pagesText(reader), nil
}

// pagesText concatenates per-page text, skipping unreadable pages.
func pagesText(reader *ledongthuc.Reader) string {
	var sb strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(text)
	}
	return sb.String()
}

// extractImages pulls embedded raster images in page order, images
// ordered by object number within a page. Failure yields no images
// rather than an error; the caller then falls back to opaque-binary.
func extractImages(path string) []domain.PageImage {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	pages, err := api.ExtractImagesRaw(f, nil, nil)
	if err != nil {
		return nil
	}

	var images []domain.PageImage
	for _, page := range pages {
		objNrs := make([]int, 0, len(page))
		for objNr := range page {
			objNrs = append(objNrs, objNr)
		}
		sort.Ints(objNrs)

		for _, objNr := range objNrs {
			img := page[objNr]
			data, err := io.ReadAll(img)
			if err != nil || len(data) == 0 {
				continue
			}
			name := img.Name
			if name == "" {
				name = fmt.Sprintf("img%d", objNr)
			}
			images = append(images, domain.PageImage{
				Page:     img.PageNr,
				Name:     name,
				FileType: img.FileType,
				Data:     data,
			})
		}
	}

	sort.SliceStable(images, func(i, j int) bool { return images[i].Page < images[j].Page })
	return images
}
