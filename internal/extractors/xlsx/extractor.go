// Package xlsx extracts sheet-delimited, tab-joined row text from
// XLSX workbooks.
package xlsx

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

// Extractor handles XLSX workbooks, and legacy XLS files on a
// best-effort basis: a real BIFF .xls is not a ZIP archive, so it falls
// back to the opaque-binary outcome instead of failing the file.
type Extractor struct{}

// New creates a new XLSX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{"xlsx", "xls"}
}

// Extract emits one sheet-delimited block per sheet, in workbook order,
// each holding tab-joined rows. Empty cells serialise as empty strings,
// not omitted, so column alignment survives flattening.
func (e *Extractor) Extract(_ context.Context, path string) *domain.ExtractionResult {
	fileName := filepath.Base(path)
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileName), "."))

	reader, err := zip.OpenReader(path)
	if err != nil {
		if ext == "xls" {
			// Legacy BIFF workbook: present the original for download.
			return domain.OpaqueResult(path, fileName, ext)
		}
		return domain.FailedResult(path, fileName, ext, "opening xlsx archive: "+err.Error())
	}
	defer reader.Close()

	content, err := extractWorkbookText(&reader.Reader)
	if err != nil {
		return domain.FailedResult(path, fileName, ext, "reading workbook: "+err.Error())
	}
	if content == "" {
		return domain.OpaqueResult(path, fileName, ext)
	}

	return domain.TextResult(path, fileName, ext, content)
}

// extractWorkbookText renders every sheet in workbook order.
func extractWorkbookText(reader *zip.Reader) (string, error) {
	sheets, err := parseWorkbook(reader)
	if err != nil {
		return "", err
	}
	rels, err := parseRelationships(reader)
	if err != nil {
		return "", err
	}
	shared, err := parseSharedStrings(reader)
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for i, sheet := range sheets {
		target, ok := rels[sheet.RelID]
		if !ok {
			continue
		}
		rows, err := parseSheetRows(reader, "xl/"+target, shared)
		if err != nil {
			return "", err
		}

		if sb.Len() > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(domain.SheetMarker(i+1, sheet.Name))
		for _, row := range rows {
			sb.WriteString("\n")
			sb.WriteString(strings.Join(row, "\t"))
		}
	}
	return sb.String(), nil
}

// sheetRef is one sheet declaration from xl/workbook.xml.
type sheetRef struct {
	Name  string
	RelID string
}

// parseWorkbook returns sheet declarations in workbook order.
func parseWorkbook(reader *zip.Reader) ([]sheetRef, error) {
	data, err := readZipFile(reader, "xl/workbook.xml")
	if err != nil || data == nil {
		return nil, err
	}

	var wb struct {
		Sheets struct {
			Sheet []struct {
				Name string `xml:"name,attr"`
				ID   string `xml:"id,attr"`
			} `xml:"sheet"`
		} `xml:"sheets"`
	}
	if err := xml.Unmarshal(data, &wb); err != nil {
		return nil, err
	}

	sheets := make([]sheetRef, 0, len(wb.Sheets.Sheet))
	for _, s := range wb.Sheets.Sheet {
		sheets = append(sheets, sheetRef{Name: s.Name, RelID: s.ID})
	}
	return sheets, nil
}

// parseRelationships maps relationship ids to worksheet targets.
func parseRelationships(reader *zip.Reader) (map[string]string, error) {
	data, err := readZipFile(reader, "xl/_rels/workbook.xml.rels")
	if err != nil || data == nil {
		return nil, err
	}

	var rels struct {
		Relationship []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.Unmarshal(data, &rels); err != nil {
		return nil, err
	}

	m := make(map[string]string, len(rels.Relationship))
	for _, r := range rels.Relationship {
		m[r.ID] = strings.TrimPrefix(r.Target, "/xl/")
	}
	return m, nil
}

// parseSharedStrings returns the shared string table, flattening rich
// text runs.
func parseSharedStrings(reader *zip.Reader) ([]string, error) {
	data, err := readZipFile(reader, "xl/sharedStrings.xml")
	if err != nil || data == nil {
		return nil, err
	}

	var sst struct {
		SI []struct {
			T string `xml:"t"`
			R []struct {
				T string `xml:"t"`
			} `xml:"r"`
		} `xml:"si"`
	}
	if err := xml.Unmarshal(data, &sst); err != nil {
		return nil, err
	}

	strs := make([]string, 0, len(sst.SI))
	for _, si := range sst.SI {
		if len(si.R) > 0 {
			var runs strings.Builder
			for _, r := range si.R {
				runs.WriteString(r.T)
			}
			strs = append(strs, runs.String())
			continue
		}
		strs = append(strs, si.T)
	}
	return strs, nil
}

// sheetXML mirrors the worksheet row/cell structure.
type sheetXML struct {
	SheetData struct {
		Rows []struct {
			Cells []cellXML `xml:"c"`
		} `xml:"row"`
	} `xml:"sheetData"`
}

type cellXML struct {
	Ref    string `xml:"r,attr"`
	Type   string `xml:"t,attr"`
	Value  string `xml:"v"`
	Inline struct {
		T string `xml:"t"`
	} `xml:"is"`
}

// parseSheetRows renders a worksheet as rows of cell strings, padding
// skipped cells with empty strings based on the A1-style reference.
func parseSheetRows(reader *zip.Reader, name string, shared []string) ([][]string, error) {
	data, err := readZipFile(reader, name)
	if err != nil || data == nil {
		return nil, err
	}

	var sheet sheetXML
	if err := xml.Unmarshal(data, &sheet); err != nil {
		return nil, err
	}

	rows := make([][]string, 0, len(sheet.SheetData.Rows))
	for _, r := range sheet.SheetData.Rows {
		var row []string
		next := 0
		for _, c := range r.Cells {
			col := columnIndex(c.Ref)
			if col < 0 {
				col = next
			}
			for next < col {
				row = append(row, "")
				next++
			}
			row = append(row, cellValue(c, shared))
			next++
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cellValue resolves a cell to its display string.
func cellValue(c cellXML, shared []string) string {
	switch c.Type {
	case "s":
		if c.Value == "" {
			return ""
		}
		idx := 0
		for _, ch := range c.Value {
			if ch < '0' || ch > '9' {
				return ""
			}
			idx = idx*10 + int(ch-'0')
		}
		if idx < len(shared) {
			return shared[idx]
		}
		return ""
	case "inlineStr":
		return c.Inline.T
	case "b":
		if c.Value == "1" {
			return "TRUE"
		}
		return "FALSE"
	default:
		return c.Value
	}
}

// columnIndex converts the letter part of an A1-style reference to a
// zero-based column index, or -1 when the reference is absent.
func columnIndex(ref string) int {
	if ref == "" {
		return -1
	}
	col := 0
	seen := false
	for _, ch := range ref {
		if ch >= 'A' && ch <= 'Z' {
			col = col*26 + int(ch-'A') + 1
			seen = true
			continue
		}
		break
	}
	if !seen {
		return -1
	}
	return col - 1
}

// readZipFile reads one archive entry, nil when absent.
func readZipFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, file := range reader.File {
		if file.Name != name {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, nil
}
