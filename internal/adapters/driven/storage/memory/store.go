// Package memory provides an in-memory implementation of the
// persistence ports, used by service tests and as a dry-run backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/trenlab/kontent-cli/internal/core/domain"
	"github.com/trenlab/kontent-cli/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.Store = (*Store)(nil)

// Store keeps stations, sections and materials in memory. CreatedAt
// values are strictly increasing in insertion order, matching the
// guarantee the SQLite adapter gets from its rowid-tied timestamps.
type Store struct {
	mu        sync.RWMutex
	stations  map[string]domain.Station
	sections  map[string]domain.Section
	materials map[string]domain.Material
	clock     time.Time
}

// NewStore creates an empty in-memory store.
func NewStore() *Store {
	return &Store{
		stations:  make(map[string]domain.Station),
		sections:  make(map[string]domain.Section),
		materials: make(map[string]domain.Material),
		clock:     time.Now().UTC(),
	}
}

// Ping always succeeds for the in-memory store.
func (s *Store) Ping(_ context.Context) error {
	return nil
}

// nextCreatedAt returns a strictly increasing timestamp.
func (s *Store) nextCreatedAt() time.Time {
	s.clock = s.clock.Add(time.Microsecond)
	return s.clock
}

// FindStationByName looks a station up by exact name.
func (s *Store) FindStationByName(_ context.Context, name string) (*domain.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, st := range s.stations {
		if st.Name == name {
			station := st
			return &station, nil
		}
	}
	return nil, domain.ErrNotFound
}

// CreateStation persists a new station.
func (s *Store) CreateStation(_ context.Context, station *domain.Station) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, st := range s.stations {
		if st.Name == station.Name {
			return domain.ErrAlreadyExists
		}
	}
	if station.ID == "" {
		station.ID = uuid.New().String()
	}
	s.stations[station.ID] = *station
	return nil
}

// ListStations returns all stations ordered by Order.
func (s *Store) ListStations(_ context.Context) ([]domain.Station, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stations := make([]domain.Station, 0, len(s.stations))
	for _, st := range s.stations {
		stations = append(stations, st)
	}
	sort.Slice(stations, func(i, j int) bool { return stations[i].Order < stations[j].Order })
	return stations, nil
}

// DeleteStation removes a station by id.
func (s *Store) DeleteStation(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stations[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.stations, id)
	return nil
}

// FindSectionByTitleAndStation looks a section up by its natural key.
func (s *Store) FindSectionByTitleAndStation(_ context.Context, title, stationID string) (*domain.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, sec := range s.sections {
		if sec.Title == title && sec.StationID == stationID {
			section := sec
			return &section, nil
		}
	}
	return nil, domain.ErrNotFound
}

// CreateSection persists a new section.
func (s *Store) CreateSection(_ context.Context, section *domain.Section) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.stations[section.StationID]; !ok {
		return domain.ErrNotFound
	}
	for _, sec := range s.sections {
		if sec.Title == section.Title && sec.StationID == section.StationID {
			return domain.ErrAlreadyExists
		}
	}
	if section.ID == "" {
		section.ID = uuid.New().String()
	}
	s.sections[section.ID] = *section
	return nil
}

// ListSections returns a station's sections ordered by Order.
func (s *Store) ListSections(_ context.Context, stationID string) ([]domain.Section, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sections []domain.Section
	for _, sec := range s.sections {
		if sec.StationID == stationID {
			sections = append(sections, sec)
		}
	}
	sort.Slice(sections, func(i, j int) bool { return sections[i].Order < sections[j].Order })
	return sections, nil
}

// DeleteSection removes a section by id.
func (s *Store) DeleteSection(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sections[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.sections, id)
	return nil
}

// CreateMaterial persists a new material. A zero CreatedAt receives the
// next strictly increasing timestamp.
func (s *Store) CreateMaterial(_ context.Context, material *domain.Material) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sections[material.SectionID]; !ok {
		return domain.ErrNotFound
	}
	if material.ID == "" {
		material.ID = uuid.New().String()
	}
	if material.CreatedAt.IsZero() {
		material.CreatedAt = s.nextCreatedAt()
	}
	s.materials[material.ID] = *material
	return nil
}

// ListAllMaterials returns every material joined with its taxonomy
// path, ordered by CreatedAt.
func (s *Store) ListAllMaterials(_ context.Context) ([]domain.MaterialSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]domain.MaterialSummary, 0, len(s.materials))
	for _, m := range s.materials {
		summary := domain.MaterialSummary{Material: m}
		if sec, ok := s.sections[m.SectionID]; ok {
			summary.SectionTitle = sec.Title
			summary.StationID = sec.StationID
			if st, ok := s.stations[sec.StationID]; ok {
				summary.StationName = st.Name
			}
		}
		summaries = append(summaries, summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].CreatedAt.Equal(summaries[j].CreatedAt) {
			return summaries[i].ID < summaries[j].ID
		}
		return summaries[i].CreatedAt.Before(summaries[j].CreatedAt)
	})
	return summaries, nil
}

// ListSectionMaterials returns one section's materials ordered by Order.
func (s *Store) ListSectionMaterials(_ context.Context, sectionID string) ([]domain.Material, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var materials []domain.Material
	for _, m := range s.materials {
		if m.SectionID == sectionID {
			materials = append(materials, m)
		}
	}
	sort.Slice(materials, func(i, j int) bool { return materials[i].Order < materials[j].Order })
	return materials, nil
}

// MaxOrder returns the maximum order in a section, -1 when empty.
func (s *Store) MaxOrder(_ context.Context, sectionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	maxOrder := -1
	for _, m := range s.materials {
		if m.SectionID == sectionID && m.Order > maxOrder {
			maxOrder = m.Order
		}
	}
	return maxOrder, nil
}

// UpdateMaterial applies the non-nil fields of upd.
func (s *Store) UpdateMaterial(_ context.Context, id string, upd driven.MaterialUpdate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.materials[id]
	if !ok {
		return domain.ErrNotFound
	}
	if upd.SectionID != nil {
		if _, ok := s.sections[*upd.SectionID]; !ok {
			return domain.ErrNotFound
		}
		m.SectionID = *upd.SectionID
	}
	if upd.Order != nil {
		m.Order = *upd.Order
	}
	if upd.Title != nil {
		m.Title = *upd.Title
	}
	s.materials[id] = m
	return nil
}

// DeleteMaterial removes a material by id.
func (s *Store) DeleteMaterial(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.materials[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.materials, id)
	return nil
}
