package xlsx

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trenlab/kontent-cli/internal/core/domain"
)

// writeWorkbook builds a minimal XLSX archive on disk.
func writeWorkbook(t *testing.T, name string, parts map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for partName, content := range parts {
		f, err := w.Create(partName)
		require.NoError(t, err)
		_, err = f.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

func sampleParts() map[string]string {
	return map[string]string{
		"xl/workbook.xml": `<?xml version="1.0"?>
<workbook xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <sheets>
    <sheet name="Смены" sheetId="1" r:id="rId1"/>
    <sheet name="Нормы" sheetId="2" r:id="rId2"/>
  </sheets>
</workbook>`,
		"xl/_rels/workbook.xml.rels": `<?xml version="1.0"?>
<Relationships>
  <Relationship Id="rId1" Target="worksheets/sheet1.xml"/>
  <Relationship Id="rId2" Target="worksheets/sheet2.xml"/>
</Relationships>`,
		"xl/sharedStrings.xml": `<?xml version="1.0"?>
<sst><si><t>Утро</t></si><si><r><t>Ве</t></r><r><t>чер</t></r></si></sst>`,
		"xl/worksheets/sheet1.xml": `<?xml version="1.0"?>
<worksheet><sheetData>
  <row><c r="A1" t="s"><v>0</v></c><c r="C1"><v>42</v></c></row>
  <row><c r="A2" t="s"><v>1</v></c></row>
</sheetData></worksheet>`,
		"xl/worksheets/sheet2.xml": `<?xml version="1.0"?>
<worksheet><sheetData>
  <row><c r="A1" t="inlineStr"><is><t>график</t></is></c><c r="B1" t="b"><v>1</v></c></row>
</sheetData></worksheet>`,
	}
}

func TestNew(t *testing.T) {
	e := New()
	require.NotNil(t, e)
	assert.Equal(t, []string{"xlsx", "xls"}, e.SupportedExtensions())
}

func TestExtract(t *testing.T) {
	path := writeWorkbook(t, "book.xlsx", sampleParts())

	res := New().Extract(context.Background(), path)
	require.Equal(t, domain.OutcomeText, res.Outcome, res.Err)

	lines := strings.Split(res.Content, "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "=== Лист 1: Смены ===", lines[0])
	// Skipped cell B1 pads to keep column alignment.
	assert.Equal(t, "Утро\t\t42", lines[1])
	assert.Equal(t, "Вечер", lines[2])
	assert.Equal(t, "", lines[3])
	assert.Equal(t, "=== Лист 2: Нормы ===", lines[4])
	assert.Equal(t, "график\tTRUE", lines[5])
}

func TestExtract_SheetOrderFollowsWorkbook(t *testing.T) {
	path := writeWorkbook(t, "book.xlsx", sampleParts())

	res := New().Extract(context.Background(), path)
	require.Equal(t, domain.OutcomeText, res.Outcome)

	first := strings.Index(res.Content, "Смены")
	second := strings.Index(res.Content, "Нормы")
	assert.Greater(t, second, first)
}

func TestExtract_LegacyXLSFallsBackToOpaque(t *testing.T) {
	// A real BIFF workbook is not a ZIP archive.
	path := filepath.Join(t.TempDir(), "old.xls")
	require.NoError(t, os.WriteFile(path, []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1}, 0o600))

	res := New().Extract(context.Background(), path)
	assert.Equal(t, domain.OutcomeOpaqueBinary, res.Outcome)
	assert.Equal(t, "xls", res.FileType)
}

func TestExtract_BrokenXLSXFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o600))

	res := New().Extract(context.Background(), path)
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
}

func TestExtract_EmptyWorkbookIsOpaque(t *testing.T) {
	path := writeWorkbook(t, "empty.xlsx", map[string]string{
		"xl/workbook.xml": `<workbook><sheets></sheets></workbook>`,
	})

	res := New().Extract(context.Background(), path)
	assert.Equal(t, domain.OutcomeOpaqueBinary, res.Outcome)
}

func TestCellValue_SharedString(t *testing.T) {
	shared := []string{"Утро", "Вечер"}

	assert.Equal(t, "Утро", cellValue(cellXML{Type: "s", Value: "0"}, shared))
	assert.Equal(t, "Вечер", cellValue(cellXML{Type: "s", Value: "1"}, shared))
	// A shared-string cell with no <v> must not resolve to index 0.
	assert.Equal(t, "", cellValue(cellXML{Type: "s"}, shared))
	assert.Equal(t, "", cellValue(cellXML{Type: "s", Value: "7"}, shared))
}

func TestColumnIndex(t *testing.T) {
	tests := []struct {
		ref  string
		want int
	}{
		{"A1", 0}, {"B2", 1}, {"Z9", 25}, {"AA1", 26}, {"AB10", 27}, {"", -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, columnIndex(tt.ref), "ref %q", tt.ref)
	}
}
