// Package pptx extracts slide-delimited text from PPTX presentations.
package pptx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"io"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/trenlab/kontent-cli/internal/core/domain"
	"github.com/trenlab/kontent-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles PPTX presentations. A PPTX file is a ZIP archive
// with one XML part per slide under ppt/slides/.
type Extractor struct{}

// New creates a new PPTX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{"pptx"}
}

// slidePart matches slide part names and captures the slide number.
var slidePart = regexp.MustCompile(`^ppt/slides/slide(\d+)\.xml$`)

// Extract emits one slide-delimited block per slide, carrying the
// 1-based slide index, with markup stripped and whitespace collapsed.
// A presentation without any text falls back to the opaque-binary
// outcome so the original is still offered for download.
func (e *Extractor) Extract(_ context.Context, path string) *domain.ExtractionResult {
	fileName := filepath.Base(path)

	reader, err := zip.OpenReader(path)
	if err != nil {
		return domain.FailedResult(path, fileName, "pptx", "opening pptx archive: "+err.Error())
	}
	defer reader.Close()

	slides, err := collectSlides(&reader.Reader)
	if err != nil {
		return domain.FailedResult(path, fileName, "pptx", "reading slides: "+err.Error())
	}

	var sb strings.Builder
	for _, slide := range slides {
		if slide.text == "" {
			continue
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(domain.SlideMarker(slide.number))
		sb.WriteString("\n")
		sb.WriteString(slide.text)
	}

	if sb.Len() == 0 {
		return domain.OpaqueResult(path, fileName, "pptx")
	}
	return domain.TextResult(path, fileName, "pptx", sb.String())
}

type slideText struct {
	number int
	text   string
}

// collectSlides extracts each slide's flattened text, ordered by the
// slide number in the part name.
func collectSlides(reader *zip.Reader) ([]slideText, error) {
	var slides []slideText
	for _, file := range reader.File {
		m := slidePart.FindStringSubmatch(file.Name)
		if m == nil {
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}

		text, err := parseSlideXML(content)
		if err != nil {
			return nil, err
		}
		slides = append(slides, slideText{number: number, text: text})
	}

	sort.Slice(slides, func(i, j int) bool { return slides[i].number < slides[j].number })
	return slides, nil
}

// parseSlideXML strips all markup from a slide part, keeping one line
// per text paragraph with whitespace collapsed.
func parseSlideXML(content []byte) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(string(content)))

	var lines []string
	var current strings.Builder
	inText := false

	flush := func() {
		if line := collapseWhitespace(current.String()); line != "" {
			lines = append(lines, line)
		}
		current.Reset()
	}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				current.Write(t)
			}
		}
	}
	flush()

	return strings.Join(lines, "\n"), nil
}

// collapseWhitespace folds runs of whitespace into single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
