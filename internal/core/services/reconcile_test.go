package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trenlab/kontent-cli/internal/adapters/driven/storage/memory"
	"github.com/trenlab/kontent-cli/internal/classify"
	"github.com/trenlab/kontent-cli/internal/core/domain"
)

// seedPath creates the station and section of a path and returns the
// section.
func seedPath(t *testing.T, store *memory.Store, path domain.TaxonomyPath) *domain.Section {
	t.Helper()
	sec, err := NewTaxonomyReconciler(store).EnsurePath(context.Background(), path)
	require.NoError(t, err)
	return sec
}

// seedMaterial creates a text material with the given title.
func seedMaterial(t *testing.T, store *memory.Store, sectionID, title string) *domain.Material {
	t.Helper()
	m := &domain.Material{
		ID: title + "-" + sectionID, SectionID: sectionID,
		Title: title, Content: "<p>x</p>", Type: domain.MaterialText,
	}
	require.NoError(t, store.CreateMaterial(context.Background(), m))
	return m
}

func newReconciler(store *memory.Store) *ReconcileService {
	return NewReconcileService(store, classify.DefaultOverrides())
}

func TestDedupe_KeepsEarliestAcrossSections(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	secA := seedPath(t, store, domain.TaxonomyPath{Station: "Станция кассы", Section: "Основы работы"})
	secB := seedPath(t, store, domain.TaxonomyPath{Station: "Общие стандарты", Section: "Дополнительные материалы"})

	first := seedMaterial(t, store, secA.ID, "Регламент открытия")
	seedMaterial(t, store, secB.ID, "Регламент_открытия.docx")
	seedMaterial(t, store, secB.ID, "регламент открытия")

	report, err := newReconciler(store).Dedupe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Groups)
	assert.Equal(t, 2, report.Duplicates)
	assert.Equal(t, 2, report.Removed)

	all, err := store.ListAllMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, first.ID, all[0].ID, "earliest record survives")
}

func TestDedupe_ChunkedDocumentKeepsEachPart(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	secA := seedPath(t, store, domain.TaxonomyPath{Station: "Общие стандарты", Section: "Стандарты работы"})
	secB := seedPath(t, store, domain.TaxonomyPath{Station: "Общие стандарты", Section: "Дополнительные материалы"})

	// Two ingest runs of the same two-chunk document.
	run1p1 := seedMaterial(t, store, secA.ID, "Отчёт (часть 1/2)")
	run1p2 := seedMaterial(t, store, secA.ID, "Отчёт (часть 2/2)")
	seedMaterial(t, store, secB.ID, "Отчёт (часть 1/2)")
	seedMaterial(t, store, secB.ID, "Отчёт (часть 2/2)")

	report, err := newReconciler(store).Dedupe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Groups, "one group per part")
	assert.Equal(t, 2, report.Removed)

	all, err := store.ListAllMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2, "one record per part remains")
	assert.Equal(t, run1p1.ID, all[0].ID)
	assert.Equal(t, run1p2.ID, all[1].ID)
}

func TestDedupe_SkipsRecordWithMissingSection(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	kept := seedPath(t, store, domain.TaxonomyPath{Station: "Станция кассы", Section: "Основы работы"})
	doomed := seedPath(t, store, domain.TaxonomyPath{Station: "Станция кассы", Section: "Чек-листы"})

	first := seedMaterial(t, store, kept.ID, "Регламент")
	dangling := seedMaterial(t, store, doomed.ID, "регламент")
	require.NoError(t, store.DeleteSection(ctx, doomed.ID))

	report, err := newReconciler(store).Dedupe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Removed)

	all, err := store.ListAllMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2, "the dangling duplicate is left untouched")
	assert.Equal(t, first.ID, all[0].ID)
	assert.Equal(t, dangling.ID, all[1].ID)
}

func TestDedupe_DistinctTitlesUntouched(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	sec := seedPath(t, store, domain.TaxonomyPath{Station: "Станция кухни", Section: "Основы работы"})
	seedMaterial(t, store, sec.ID, "Панировка крыльев")
	seedMaterial(t, store, sec.ID, "Панировка ножек")

	report, err := newReconciler(store).Dedupe(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Groups)
	assert.Zero(t, report.Removed)
}

func TestDedupe_Idempotent(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	sec := seedPath(t, store, domain.TaxonomyPath{Station: "Станция кассы", Section: "Чек-листы"})
	seedMaterial(t, store, sec.ID, "Чек-лист")
	seedMaterial(t, store, sec.ID, "чек лист")

	reconciler := newReconciler(store)
	first, err := reconciler.Dedupe(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Removed)

	second, err := reconciler.Dedupe(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.Removed, "second run over a clean corpus is a no-op")
}

func TestIngestTwiceThenDedupe_ConvergesToSingleRun(t *testing.T) {
	results := map[string]*domain.ExtractionResult{
		"Чек-лист кассира.docx": domain.TextResult(
			"", "Чек-лист кассира.docx", "docx", "Открыть смену."),
		"Регламент уборки.docx": domain.TextResult(
			"", "Регламент уборки.docx", "docx", "Порядок уборки."),
	}
	service, store, sourceDir := ingestFixture(t, results)
	ctx := context.Background()

	_, err := service.Ingest(ctx, sourceDir)
	require.NoError(t, err)
	_, err = service.Ingest(ctx, sourceDir)
	require.NoError(t, err)

	all, err := store.ListAllMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4, "ingest always creates")

	_, err = newReconciler(store).Dedupe(ctx)
	require.NoError(t, err)

	all, err = store.ListAllMaterials(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2, "dedupe collapses the rerun")
}

func TestFixPlacement_MovesOverriddenTitle(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	wrong := seedPath(t, store, domain.TaxonomyPath{Station: "Общие стандарты", Section: "Дополнительные материалы"})
	m := seedMaterial(t, store, wrong.ID, "Функционал Кликун")

	report, err := newReconciler(store).FixPlacement(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Moved)
	assert.Equal(t, 1, report.SectionsCreated)

	all, err := store.ListAllMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, m.ID, all[0].ID)
	assert.Equal(t, "Станция кассы", all[0].StationName)
	assert.Equal(t, "Функционал системы", all[0].SectionTitle)
}

func TestFixPlacement_LongestKeyWins(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	wrong := seedPath(t, store, domain.TaxonomyPath{Station: "Общие стандарты", Section: "Дополнительные материалы"})
	// Matches both "кликун" and the longer "функционал кликун".
	seedMaterial(t, store, wrong.ID, "Функционал кликун подробно")

	report, err := newReconciler(store).FixPlacement(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Moved)

	all, err := store.ListAllMaterials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Функционал системы", all[0].SectionTitle,
		"the longer override key decides the target")
}

func TestFixPlacement_AlreadyPlacedUntouched(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	right := seedPath(t, store, domain.TaxonomyPath{Station: "Станция кассы", Section: "Функционал системы"})
	seedMaterial(t, store, right.ID, "Функционал Кликун")

	report, err := newReconciler(store).FixPlacement(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.Moved)
	assert.Zero(t, report.SectionsCreated)
}

func TestFixPlacement_AmbiguousOverrideSkipped(t *testing.T) {
	table, err := classify.ParseOverrides([]byte(`overrides:
  - key: "смена A"
    station: "Станция кассы"
    section: "Основы работы"
  - key: "смена B"
    station: "Станция кухни"
    section: "Основы работы"
`))
	require.NoError(t, err)

	store := memory.NewStore()
	ctx := context.Background()
	sec := seedPath(t, store, domain.TaxonomyPath{Station: "Общие стандарты", Section: "Дополнительные материалы"})
	seedMaterial(t, store, sec.ID, "смена a смена b")

	report, err := NewReconcileService(store, table).FixPlacement(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Ambiguous)
	assert.Zero(t, report.Moved)

	all, err := store.ListAllMaterials(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Общие стандарты", all[0].StationName, "ambiguous record left in place")
}

func TestPrune_DeletesEmptyNodes(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	kept := seedPath(t, store, domain.TaxonomyPath{Station: "Станция кассы", Section: "Основы работы"})
	seedMaterial(t, store, kept.ID, "Материал")
	seedPath(t, store, domain.TaxonomyPath{Station: "Станция кассы", Section: "Чек-листы"})
	seedPath(t, store, domain.TaxonomyPath{Station: "Станция кухни", Section: "Регламенты"})

	report, err := newReconciler(store).Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.SectionsDeleted)
	assert.Equal(t, 1, report.StationsDeleted)

	stations, err := store.ListStations(ctx)
	require.NoError(t, err)
	require.Len(t, stations, 1)
	assert.Equal(t, "Станция кассы", stations[0].Name)
}

func TestPrune_ResequencesByCollatedTitle(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	sec := seedPath(t, store, domain.TaxonomyPath{Station: "Станция кухни", Section: "Основы работы"})
	for i, title := range []string{"Яичница", "Блины", "Маринад"} {
		require.NoError(t, store.CreateMaterial(ctx, &domain.Material{
			ID: title, SectionID: sec.ID, Title: title,
			Content: "<p>x</p>", Type: domain.MaterialText, Order: 10 + i,
		}))
	}

	report, err := newReconciler(store).Prune(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Resequenced)

	materials, err := store.ListSectionMaterials(ctx, sec.ID)
	require.NoError(t, err)
	require.Len(t, materials, 3)
	assert.Equal(t, []string{"Блины", "Маринад", "Яичница"},
		[]string{materials[0].Title, materials[1].Title, materials[2].Title})
	for i, m := range materials {
		assert.Equal(t, i, m.Order)
	}
}

func TestPrune_Idempotent(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	sec := seedPath(t, store, domain.TaxonomyPath{Station: "Станция кассы", Section: "Основы работы"})
	seedMaterial(t, store, sec.ID, "Материал")
	seedPath(t, store, domain.TaxonomyPath{Station: "Станция кассы", Section: "Чек-листы"})

	reconciler := newReconciler(store)
	_, err := reconciler.Prune(ctx)
	require.NoError(t, err)

	second, err := reconciler.Prune(ctx)
	require.NoError(t, err)
	assert.Zero(t, second.SectionsDeleted)
	assert.Zero(t, second.StationsDeleted)
	assert.Zero(t, second.Resequenced)
}
