package docx

import (
	"archive/zip"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trenlab/kontent-cli/internal/core/domain"
)

// writeDocx builds a minimal DOCX archive on disk.
func writeDocx(t *testing.T, documentXML string) string {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.Create("word/document.xml")
	require.NoError(t, err)
	_, err = f.Write([]byte(documentXML))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "doc.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))
	return path
}

const sampleDocument = `<?xml version="1.0"?>
<document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
  <body>
    <p><r><t>Первый абзац.</t></r></p>
    <p><r><t>Второй </t></r><r><t>абзац.</t></r></p>
    <p></p>
  </body>
</document>`

func TestNew(t *testing.T) {
	e := New()
	require.NotNil(t, e)
	assert.Equal(t, []string{"docx"}, e.SupportedExtensions())
}

func TestExtract(t *testing.T) {
	path := writeDocx(t, sampleDocument)

	res := New().Extract(context.Background(), path)
	require.NotNil(t, res)
	assert.Equal(t, domain.OutcomeText, res.Outcome)
	assert.Equal(t, "Первый абзац.\n\nВторой абзац.", res.Content)
	assert.Equal(t, "docx", res.FileType)
	assert.Equal(t, "doc.docx", res.FileName)
}

func TestExtract_NotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.docx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip"), 0o600))

	res := New().Extract(context.Background(), path)
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
	assert.NotEmpty(t, res.Err)
}

func TestExtract_MissingDocumentXML(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	_, err := w.Create("word/other.xml")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	path := filepath.Join(t.TempDir(), "empty.docx")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	res := New().Extract(context.Background(), path)
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
}

func TestExtract_MalformedXML(t *testing.T) {
	path := writeDocx(t, "<document><body><p>")

	res := New().Extract(context.Background(), path)
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
}

func TestExtract_MissingFile(t *testing.T) {
	res := New().Extract(context.Background(), "/does/not/exist.docx")
	assert.Equal(t, domain.OutcomeFailed, res.Outcome)
}
