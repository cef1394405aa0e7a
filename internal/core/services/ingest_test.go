package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trenlab/kontent-cli/internal/adapters/driven/assets"
	"github.com/trenlab/kontent-cli/internal/adapters/driven/storage/memory"
	"github.com/trenlab/kontent-cli/internal/classify"
	"github.com/trenlab/kontent-cli/internal/core/domain"
	"github.com/trenlab/kontent-cli/internal/core/ports/driven"
	"github.com/trenlab/kontent-cli/internal/core/ports/driving"
	"github.com/trenlab/kontent-cli/internal/splitter"
)

// stubRegistry returns canned extraction results keyed by base name.
// Unknown names fail with the unsupported-format reason, like the real
// registry does for unknown extensions.
type stubRegistry struct {
	results map[string]*domain.ExtractionResult
}

var _ driven.ExtractorRegistry = (*stubRegistry)(nil)

func (r *stubRegistry) Extract(_ context.Context, path string) *domain.ExtractionResult {
	name := filepath.Base(path)
	if res, ok := r.results[name]; ok {
		return res
	}
	return domain.FailedResult(path, name, "", domain.ErrUnsupportedFormat.Error())
}

func (r *stubRegistry) Register(driven.Extractor) {}

func (r *stubRegistry) Supported(ext string) bool {
	for name := range r.results {
		if strings.HasSuffix(name, "."+ext) {
			return true
		}
	}
	return false
}

// ingestFixture wires an ingest service over a fresh memory store and a
// source directory populated with empty files named after the stub
// results.
func ingestFixture(t *testing.T, results map[string]*domain.ExtractionResult) (*IngestService, *memory.Store, string) {
	t.Helper()

	store := memory.NewStore()
	assetStore, err := assets.NewStore(t.TempDir(), "/assets")
	require.NoError(t, err)

	sourceDir := t.TempDir()
	for name := range results {
		require.NoError(t, os.WriteFile(filepath.Join(sourceDir, name), []byte("x"), 0600))
	}

	service := NewIngestService(
		&stubRegistry{results: results},
		classify.NewClassifier(),
		NewTaxonomyReconciler(store),
		NewMaterializer(store, assetStore, splitter.New()),
		store,
	)
	return service, store, sourceDir
}

func TestIngest_ClassifiesAndMaterializes(t *testing.T) {
	results := map[string]*domain.ExtractionResult{
		"Чек-лист кассира.docx": domain.TextResult(
			"", "Чек-лист кассира.docx", "docx", "Открыть смену.\n\nПересчитать кассу."),
		"Панировка куриных крыльев.docx": domain.TextResult(
			"", "Панировка куриных крыльев.docx", "docx", "Рецептура панировки."),
	}
	service, store, sourceDir := ingestFixture(t, results)
	ctx := context.Background()

	report, err := service.Ingest(ctx, sourceDir)
	require.NoError(t, err)
	assert.Equal(t, 2, report.FilesSeen)
	assert.Equal(t, 2, report.Extracted)
	assert.Equal(t, 2, report.Materialized)
	assert.Zero(t, report.Failed)

	all, err := store.ListAllMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	byTitle := make(map[string]domain.MaterialSummary)
	for _, m := range all {
		byTitle[m.Title] = m
	}
	assert.Equal(t, "Станция кассы", byTitle["Чек-лист кассира"].StationName)
	assert.Equal(t, "Чек-листы", byTitle["Чек-лист кассира"].SectionTitle)
	assert.Equal(t, "Станция кухни", byTitle["Панировка куриных крыльев"].StationName)
}

func TestIngest_FailedFileDoesNotAbortRun(t *testing.T) {
	results := map[string]*domain.ExtractionResult{
		"битый файл.pdf": domain.FailedResult("", "битый файл.pdf", "pdf", "malformed xref"),
		"Регламент.docx": domain.TextResult("", "Регламент.docx", "docx", "Текст."),
	}
	service, store, sourceDir := ingestFixture(t, results)
	ctx := context.Background()

	report, err := service.Ingest(ctx, sourceDir)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Materialized)

	var failed *driving.FileReport
	for i := range report.PerFile {
		if report.PerFile[i].FileName == "битый файл.pdf" {
			failed = &report.PerFile[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, driving.StatusErrored, failed.Status)
	assert.Equal(t, "malformed xref", failed.Error)

	all, err := store.ListAllMaterials(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1, "the healthy file still lands")
}

func TestIngest_OpaqueCountsAsFileStatus(t *testing.T) {
	src := filepath.Join(t.TempDir(), "Скан.pdf")
	require.NoError(t, os.WriteFile(src, []byte("%PDF"), 0600))

	results := map[string]*domain.ExtractionResult{
		"Скан.pdf": domain.OpaqueResult(src, "Скан.pdf", "pdf"),
	}
	service, _, sourceDir := ingestFixture(t, results)

	report, err := service.Ingest(context.Background(), sourceDir)
	require.NoError(t, err)
	require.Len(t, report.PerFile, 1)
	assert.Equal(t, driving.StatusFile, report.PerFile[0].Status)
}

func TestIngest_SharedTaxonomyNodesReused(t *testing.T) {
	results := map[string]*domain.ExtractionResult{
		"Чек-лист кассира.docx":  domain.TextResult("", "Чек-лист кассира.docx", "docx", "a"),
		"Чек-лист открытия.docx": domain.TextResult("", "Чек-лист открытия.docx", "docx", "b"),
	}
	service, store, sourceDir := ingestFixture(t, results)
	ctx := context.Background()

	_, err := service.Ingest(ctx, sourceDir)
	require.NoError(t, err)

	stations, err := store.ListStations(ctx)
	require.NoError(t, err)
	require.Len(t, stations, 1)
	sections, err := store.ListSections(ctx, stations[0].ID)
	require.NoError(t, err)
	assert.Len(t, sections, 1, "both checklists share one section")
}

func TestIngest_MissingSourceDir(t *testing.T) {
	service, _, _ := ingestFixture(t, nil)
	_, err := service.Ingest(context.Background(), "/no/such/dir")
	assert.Error(t, err)
}
