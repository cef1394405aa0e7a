package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/trenlab/kontent-cli/internal/core/domain"
	"github.com/trenlab/kontent-cli/internal/core/ports/driven"
)

// TaxonomyCache remembers the stations and sections already resolved
// during one run, keyed by their natural keys. It only grows; nothing
// in a run deletes taxonomy nodes while ingest is resolving them.
type TaxonomyCache struct {
	stations map[string]*domain.Station // name -> station
	sections map[string]*domain.Section // stationID + "\x00" + title -> section
}

// NewTaxonomyCache creates an empty cache.
func NewTaxonomyCache() *TaxonomyCache {
	return &TaxonomyCache{
		stations: make(map[string]*domain.Station),
		sections: make(map[string]*domain.Section),
	}
}

func sectionKey(stationID, title string) string {
	return stationID + "\x00" + title
}

// TaxonomyReconciler resolves taxonomy paths to persisted stations and
// sections, creating missing nodes on first use. Resolution is
// find-or-create on natural keys, so reruns converge on the same nodes.
type TaxonomyReconciler struct {
	store driven.TaxonomyStore
	cache *TaxonomyCache
}

// NewTaxonomyReconciler creates a reconciler with a fresh cache.
func NewTaxonomyReconciler(store driven.TaxonomyStore) *TaxonomyReconciler {
	return &TaxonomyReconciler{
		store: store,
		cache: NewTaxonomyCache(),
	}
}

// EnsureStation returns the station named name, creating it if absent.
func (r *TaxonomyReconciler) EnsureStation(ctx context.Context, name string) (*domain.Station, error) {
	if st, ok := r.cache.stations[name]; ok {
		return st, nil
	}

	st, err := r.store.FindStationByName(ctx, name)
	if err == nil {
		r.cache.stations[name] = st
		return st, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("finding station %q: %w", name, err)
	}

	existing, err := r.store.ListStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stations: %w", err)
	}

	st = &domain.Station{
		ID:    uuid.NewString(),
		Name:  name,
		Order: len(existing),
	}
	if err := r.store.CreateStation(ctx, st); err != nil {
		// Lost a race with a concurrent creator: the node exists now.
		if errors.Is(err, domain.ErrAlreadyExists) {
			st, err = r.store.FindStationByName(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("refetching station %q: %w", name, err)
			}
			r.cache.stations[name] = st
			return st, nil
		}
		return nil, fmt.Errorf("creating station %q: %w", name, err)
	}

	r.cache.stations[name] = st
	return st, nil
}

// EnsureSection returns the section titled title under the station,
// creating it if absent.
func (r *TaxonomyReconciler) EnsureSection(ctx context.Context, title string, station *domain.Station) (*domain.Section, error) {
	key := sectionKey(station.ID, title)
	if sec, ok := r.cache.sections[key]; ok {
		return sec, nil
	}

	sec, err := r.store.FindSectionByTitleAndStation(ctx, title, station.ID)
	if err == nil {
		r.cache.sections[key] = sec
		return sec, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("finding section %q: %w", title, err)
	}

	siblings, err := r.store.ListSections(ctx, station.ID)
	if err != nil {
		return nil, fmt.Errorf("listing sections of %q: %w", station.Name, err)
	}

	sec = &domain.Section{
		ID:        uuid.NewString(),
		Title:     title,
		Order:     len(siblings),
		StationID: station.ID,
	}
	if err := r.store.CreateSection(ctx, sec); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			sec, err = r.store.FindSectionByTitleAndStation(ctx, title, station.ID)
			if err != nil {
				return nil, fmt.Errorf("refetching section %q: %w", title, err)
			}
			r.cache.sections[key] = sec
			return sec, nil
		}
		return nil, fmt.Errorf("creating section %q: %w", title, err)
	}

	r.cache.sections[key] = sec
	return sec, nil
}

// EnsurePath resolves a full taxonomy path, creating missing nodes.
func (r *TaxonomyReconciler) EnsurePath(ctx context.Context, path domain.TaxonomyPath) (*domain.Section, error) {
	station, err := r.EnsureStation(ctx, path.Station)
	if err != nil {
		return nil, err
	}
	return r.EnsureSection(ctx, path.Section, station)
}
