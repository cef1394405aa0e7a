package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trenlab/kontent-cli/internal/core/domain"
	"github.com/trenlab/kontent-cli/internal/core/ports/driven"
)

func seedTaxonomy(t *testing.T, s *Store) (stationID, sectionID string) {
	t.Helper()
	ctx := context.Background()

	station := &domain.Station{Name: "Станция кассы"}
	require.NoError(t, s.CreateStation(ctx, station))
	section := &domain.Section{Title: "Чек-листы", StationID: station.ID}
	require.NoError(t, s.CreateSection(ctx, section))
	return station.ID, section.ID
}

func TestCreateStation_DuplicateName(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	require.NoError(t, s.CreateStation(ctx, &domain.Station{Name: "X"}))
	err := s.CreateStation(ctx, &domain.Station{Name: "X"})
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestFindStationByName_CaseSensitive(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	require.NoError(t, s.CreateStation(ctx, &domain.Station{Name: "Кухня"}))

	_, err := s.FindStationByName(ctx, "кухня")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	st, err := s.FindStationByName(ctx, "Кухня")
	require.NoError(t, err)
	assert.Equal(t, "Кухня", st.Name)
}

func TestCreateSection_RequiresStation(t *testing.T) {
	s := NewStore()
	err := s.CreateSection(context.Background(), &domain.Section{Title: "X", StationID: "missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateMaterial_CreatedAtStrictlyIncreasing(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, sectionID := seedTaxonomy(t, s)

	a := &domain.Material{SectionID: sectionID, Title: "a", Type: domain.MaterialText}
	b := &domain.Material{SectionID: sectionID, Title: "b", Type: domain.MaterialText}
	require.NoError(t, s.CreateMaterial(ctx, a))
	require.NoError(t, s.CreateMaterial(ctx, b))

	assert.True(t, a.CreatedAt.Before(b.CreatedAt))
}

func TestListAllMaterials_JoinsTaxonomy(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	stationID, sectionID := seedTaxonomy(t, s)

	require.NoError(t, s.CreateMaterial(ctx, &domain.Material{
		SectionID: sectionID, Title: "Кликун чек-лист", Type: domain.MaterialFile,
	}))

	all, err := s.ListAllMaterials(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "Чек-листы", all[0].SectionTitle)
	assert.Equal(t, stationID, all[0].StationID)
	assert.Equal(t, "Станция кассы", all[0].StationName)
}

func TestMaxOrder(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, sectionID := seedTaxonomy(t, s)

	maxOrder, err := s.MaxOrder(ctx, sectionID)
	require.NoError(t, err)
	assert.Equal(t, -1, maxOrder)

	require.NoError(t, s.CreateMaterial(ctx, &domain.Material{SectionID: sectionID, Order: 4, Type: domain.MaterialText}))
	maxOrder, err = s.MaxOrder(ctx, sectionID)
	require.NoError(t, err)
	assert.Equal(t, 4, maxOrder)
}

func TestUpdateMaterial(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	stationID, sectionID := seedTaxonomy(t, s)

	other := &domain.Section{Title: "Основы работы", StationID: stationID, Order: 1}
	require.NoError(t, s.CreateSection(ctx, other))

	m := &domain.Material{SectionID: sectionID, Title: "doc", Type: domain.MaterialText}
	require.NoError(t, s.CreateMaterial(ctx, m))

	newOrder := 7
	require.NoError(t, s.UpdateMaterial(ctx, m.ID, driven.MaterialUpdate{
		SectionID: &other.ID,
		Order:     &newOrder,
	}))

	materials, err := s.ListSectionMaterials(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, materials, 1)
	assert.Equal(t, 7, materials[0].Order)
	assert.Equal(t, "doc", materials[0].Title)
}

func TestUpdateMaterial_MissingTargetSection(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_, sectionID := seedTaxonomy(t, s)

	m := &domain.Material{SectionID: sectionID, Type: domain.MaterialText}
	require.NoError(t, s.CreateMaterial(ctx, m))

	missing := "missing"
	err := s.UpdateMaterial(ctx, m.ID, driven.MaterialUpdate{SectionID: &missing})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteCascadeIsCallersJob(t *testing.T) {
	// The memory store does not cascade; the pruner deletes bottom-up.
	s := NewStore()
	ctx := context.Background()
	stationID, sectionID := seedTaxonomy(t, s)

	require.NoError(t, s.DeleteSection(ctx, sectionID))
	require.NoError(t, s.DeleteStation(ctx, stationID))

	_, err := s.FindStationByName(ctx, "Станция кассы")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
