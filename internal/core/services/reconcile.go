package services

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/trenlab/kontent-cli/internal/classify"
	"github.com/trenlab/kontent-cli/internal/core/domain"
	"github.com/trenlab/kontent-cli/internal/core/ports/driven"
	"github.com/trenlab/kontent-cli/internal/core/ports/driving"
	"github.com/trenlab/kontent-cli/internal/logger"
)

// Ensure ReconcileService implements the interface.
var _ driving.Reconciler = (*ReconcileService)(nil)

// ReconcileService runs the corpus-wide cleanup passes: deduplication,
// placement fixing against the curated override table, and pruning of
// empty taxonomy nodes. Every pass is idempotent; a second run over a
// clean corpus changes nothing.
type ReconcileService struct {
	store     driven.Store
	overrides *classify.OverrideTable
}

// NewReconcileService creates a reconcile service.
func NewReconcileService(store driven.Store, overrides *classify.OverrideTable) *ReconcileService {
	return &ReconcileService{
		store:     store,
		overrides: overrides,
	}
}

// Dedupe collapses duplicate materials. Records are grouped by dedup
// key across the whole corpus; within a group the earliest created
// record survives and the rest are deleted. The key keeps the part
// discriminator of chunked titles, so re-ingested copies of a chunk
// collapse while the chunks of one document all survive.
func (s *ReconcileService) Dedupe(ctx context.Context) (*driving.DedupeReport, error) {
	all, err := s.store.ListAllMaterials(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing materials: %w", err)
	}

	logger.Section("Dedupe")

	groups := make(map[string][]domain.MaterialSummary)
	for _, m := range all {
		key := domain.DedupKey(m.Title)
		groups[key] = append(groups[key], m)
	}

	report := &driving.DedupeReport{}
	for key, group := range groups {
		if len(group) < 2 {
			continue
		}
		report.Groups++
		report.Duplicates += len(group) - 1

		canonical := canonicalOf(group)
		logger.Debug("group %q: keeping %s, removing %d", key, canonical.ID, len(group)-1)

		for _, m := range group {
			if m.ID == canonical.ID {
				continue
			}
			if m.SectionTitle == "" {
				// The section row is gone; refuse to touch the record.
				logger.Warn("material %q (%s): section %s no longer exists, skipping",
					m.Title, m.ID, m.SectionID)
				report.Skipped++
				continue
			}
			if err := s.store.DeleteMaterial(ctx, m.ID); err != nil {
				return report, fmt.Errorf("deleting duplicate %q: %w", m.Title, err)
			}
			report.Removed++
		}
	}

	logger.Info("Dedupe done: %d groups, %d removed, %d skipped",
		report.Groups, report.Removed, report.Skipped)
	return report, nil
}

// canonicalOf picks the survivor of a duplicate group: the earliest
// CreatedAt, ID as the tiebreaker.
func canonicalOf(group []domain.MaterialSummary) domain.MaterialSummary {
	canonical := group[0]
	for _, m := range group[1:] {
		if m.CreatedAt.Before(canonical.CreatedAt) ||
			(m.CreatedAt.Equal(canonical.CreatedAt) && m.ID < canonical.ID) {
			canonical = m
		}
	}
	return canonical
}

// FixPlacement moves materials whose taxonomy path disagrees with the
// override table. Target sections are created when missing; ambiguous
// override matches are logged and skipped.
func (s *ReconcileService) FixPlacement(ctx context.Context) (*driving.PlacementReport, error) {
	all, err := s.store.ListAllMaterials(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing materials: %w", err)
	}

	logger.Section("Fix placement")

	taxonomy := NewTaxonomyReconciler(s.store)
	report := &driving.PlacementReport{Scanned: len(all)}

	for _, m := range all {
		override, err := s.overrides.Match(domain.NormalizeTitle(m.Title))
		if err != nil {
			logger.Warn("material %q: %v", m.Title, err)
			report.Ambiguous++
			continue
		}
		if override == nil {
			continue
		}

		target := override.Path()
		if m.StationName == target.Station && m.SectionTitle == target.Section {
			continue
		}

		preexisting, err := sectionExists(ctx, s.store, target)
		if err != nil {
			return report, err
		}
		section, err := taxonomy.EnsurePath(ctx, target)
		if err != nil {
			return report, fmt.Errorf("resolving target for %q: %w", m.Title, err)
		}
		if !preexisting {
			report.SectionsCreated++
		}

		max, err := s.store.MaxOrder(ctx, section.ID)
		if err != nil {
			return report, fmt.Errorf("getting max order: %w", err)
		}
		order := max + 1
		if err := s.store.UpdateMaterial(ctx, m.ID, driven.MaterialUpdate{
			SectionID: &section.ID,
			Order:     &order,
		}); err != nil {
			return report, fmt.Errorf("moving %q: %w", m.Title, err)
		}
		report.Moved++
		logger.Debug("moved %q: %s / %s -> %s / %s",
			m.Title, m.StationName, m.SectionTitle, target.Station, target.Section)
	}

	logger.Info("Placement done: %d scanned, %d moved, %d sections created, %d ambiguous",
		report.Scanned, report.Moved, report.SectionsCreated, report.Ambiguous)
	return report, nil
}

// sectionExists reports whether the path already resolves without
// creating anything.
func sectionExists(ctx context.Context, store driven.TaxonomyStore, path domain.TaxonomyPath) (bool, error) {
	station, err := store.FindStationByName(ctx, path.Station)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("finding station %q: %w", path.Station, err)
	}
	if _, err := store.FindSectionByTitleAndStation(ctx, path.Section, station.ID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("finding section %q: %w", path.Section, err)
	}
	return true, nil
}

// Prune deletes empty sections, then stations left without sections,
// then rewrites every surviving section's material order as a dense
// zero-based sequence by locale-aware title order.
func (s *ReconcileService) Prune(ctx context.Context) (*driving.PruneReport, error) {
	logger.Section("Prune")

	report := &driving.PruneReport{}

	stations, err := s.store.ListStations(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stations: %w", err)
	}

	for _, station := range stations {
		sections, err := s.store.ListSections(ctx, station.ID)
		if err != nil {
			return report, fmt.Errorf("listing sections of %q: %w", station.Name, err)
		}

		remaining := 0
		for _, section := range sections {
			materials, err := s.store.ListSectionMaterials(ctx, section.ID)
			if err != nil {
				return report, fmt.Errorf("listing materials of %q: %w", section.Title, err)
			}
			if len(materials) == 0 {
				if err := s.store.DeleteSection(ctx, section.ID); err != nil {
					return report, fmt.Errorf("deleting section %q: %w", section.Title, err)
				}
				report.SectionsDeleted++
				logger.Debug("deleted empty section %q / %q", station.Name, section.Title)
				continue
			}
			remaining++

			n, err := s.resequence(ctx, materials)
			if err != nil {
				return report, err
			}
			report.Resequenced += n
		}

		if remaining == 0 {
			if err := s.store.DeleteStation(ctx, station.ID); err != nil {
				return report, fmt.Errorf("deleting station %q: %w", station.Name, err)
			}
			report.StationsDeleted++
			logger.Debug("deleted empty station %q", station.Name)
		}
	}

	logger.Info("Prune done: %d sections deleted, %d stations deleted, %d resequenced",
		report.SectionsDeleted, report.StationsDeleted, report.Resequenced)
	return report, nil
}

// resequence rewrites the orders of one section's materials as 0..n-1
// by collated title order and returns how many records changed.
func (s *ReconcileService) resequence(ctx context.Context, materials []domain.Material) (int, error) {
	coll := collate.New(language.Russian)
	sort.SliceStable(materials, func(i, j int) bool {
		return coll.CompareString(materials[i].Title, materials[j].Title) < 0
	})

	changed := 0
	for i := range materials {
		if materials[i].Order == i {
			continue
		}
		order := i
		if err := s.store.UpdateMaterial(ctx, materials[i].ID, driven.MaterialUpdate{Order: &order}); err != nil {
			return changed, fmt.Errorf("resequencing %q: %w", materials[i].Title, err)
		}
		changed++
	}
	return changed, nil
}
