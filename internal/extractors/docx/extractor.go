// Package docx extracts flattened paragraph text from DOCX documents.
package docx

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"io"
	"path/filepath"
	"strings"

	"github.com/trenlab/kontent-cli/internal/core/domain"
	"github.com/trenlab/kontent-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles DOCX documents. A DOCX file is a ZIP archive; the
// paragraph text lives in word/document.xml.
type Extractor struct{}

// New creates a new DOCX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{"docx"}
}

// Extract reads the file and returns its flattened paragraph text.
// Parse failure is fatal for the file: there is no fallback strategy
// for DOCX, so the result carries the failure reason.
func (e *Extractor) Extract(_ context.Context, path string) *domain.ExtractionResult {
	fileName := filepath.Base(path)

	reader, err := zip.OpenReader(path)
	if err != nil {
		return domain.FailedResult(path, fileName, "docx", "opening docx archive: "+err.Error())
	}
	defer reader.Close()

	content, err := extractDocumentText(&reader.Reader)
	if err != nil {
		return domain.FailedResult(path, fileName, "docx", "reading document.xml: "+err.Error())
	}
	if content == "" {
		return domain.FailedResult(path, fileName, "docx", "document.xml missing or empty")
	}

	return domain.TextResult(path, fileName, "docx", content)
}

// extractDocumentText extracts paragraph text from word/document.xml.
func extractDocumentText(reader *zip.Reader) (string, error) {
	for _, file := range reader.File {
		if file.Name != "word/document.xml" {
			continue
		}

		rc, err := file.Open()
		if err != nil {
			return "", err
		}

		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", err
		}

		return parseDocumentXML(content)
	}
	return "", nil
}

// documentXML mirrors the structure of word/document.xml.
type documentXML struct {
	Body struct {
		Paragraphs []paragraph `xml:"p"`
	} `xml:"body"`
}

type paragraph struct {
	Runs []run `xml:"r"`
}

type run struct {
	Text []textElement `xml:"t"`
}

type textElement struct {
	Content string `xml:",chardata"`
}

// parseDocumentXML flattens the document body. Paragraphs are joined
// with blank lines so the chunk splitter sees them as boundaries.
func parseDocumentXML(content []byte) (string, error) {
	var doc documentXML
	if err := xml.Unmarshal(content, &doc); err != nil {
		return "", err
	}

	var result strings.Builder
	for _, para := range doc.Body.Paragraphs {
		var line strings.Builder
		for _, r := range para.Runs {
			for _, text := range r.Text {
				line.WriteString(text.Content)
			}
		}
		if trimmed := strings.TrimSpace(line.String()); trimmed != "" {
			if result.Len() > 0 {
				result.WriteString("\n\n")
			}
			result.WriteString(trimmed)
		}
	}

	return result.String(), nil
}
