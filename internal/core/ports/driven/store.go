package driven

import (
	"context"

	"github.com/trenlab/kontent-cli/internal/core/domain"
)

// TaxonomyStore persists stations and sections.
//
// Natural-key lookups are exact-match and case-sensitive as stored; they
// are the pipeline's only way to achieve idempotence. Create operations
// return domain.ErrAlreadyExists on a natural-key conflict so callers can
// refetch and reuse the existing entity.
type TaxonomyStore interface {
	// FindStationByName looks a station up by its natural key.
	// Returns domain.ErrNotFound if absent.
	FindStationByName(ctx context.Context, name string) (*domain.Station, error)

	// CreateStation persists a new station.
	CreateStation(ctx context.Context, station *domain.Station) error

	// ListStations returns all stations.
	ListStations(ctx context.Context) ([]domain.Station, error)

	// DeleteStation removes a station by id.
	DeleteStation(ctx context.Context, id string) error

	// FindSectionByTitleAndStation looks a section up by its natural key.
	// Returns domain.ErrNotFound if absent.
	FindSectionByTitleAndStation(ctx context.Context, title, stationID string) (*domain.Section, error)

	// CreateSection persists a new section.
	CreateSection(ctx context.Context, section *domain.Section) error

	// ListSections returns the sections of a station.
	ListSections(ctx context.Context, stationID string) ([]domain.Section, error)

	// DeleteSection removes a section by id.
	DeleteSection(ctx context.Context, id string) error
}

// MaterialUpdate carries the mutable fields of a material. Nil fields
// are left unchanged; Content and Type are immutable and absent here.
type MaterialUpdate struct {
	SectionID *string
	Order     *int
	Title     *string
}

// MaterialStore persists content records.
type MaterialStore interface {
	// CreateMaterial persists a new material. The store assigns a
	// strictly increasing CreatedAt insertion order.
	CreateMaterial(ctx context.Context, material *domain.Material) error

	// ListAllMaterials returns every material joined with its section
	// and station, for dedup grouping, placement fixing and reporting.
	ListAllMaterials(ctx context.Context) ([]domain.MaterialSummary, error)

	// ListSectionMaterials returns the materials of one section.
	ListSectionMaterials(ctx context.Context, sectionID string) ([]domain.Material, error)

	// MaxOrder returns the maximum order in a section, or -1 when the
	// section holds no materials.
	MaxOrder(ctx context.Context, sectionID string) (int, error)

	// UpdateMaterial applies the non-nil fields of upd to a material.
	UpdateMaterial(ctx context.Context, id string, upd MaterialUpdate) error

	// DeleteMaterial removes a material by id.
	DeleteMaterial(ctx context.Context, id string) error
}

// Store aggregates the persistence interfaces backed by one database.
type Store interface {
	TaxonomyStore
	MaterialStore

	// Ping verifies the store is reachable. A failing ping is fatal to
	// the whole run.
	Ping(ctx context.Context) error
}
