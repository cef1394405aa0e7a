package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/trenlab/kontent-cli/internal/core/domain"
	"github.com/trenlab/kontent-cli/internal/core/ports/driven"
	"github.com/trenlab/kontent-cli/internal/core/ports/driving"
)

// Ensure ReportService implements the interface.
var _ driving.Reporter = (*ReportService)(nil)

// ReportService diffs a source directory against the persisted corpus.
// Matching is by normalised title, which all chunks of one document
// share, so chunked records count toward their one source file.
type ReportService struct {
	extractors driven.ExtractorRegistry
	store      driven.MaterialStore
}

// NewReportService creates a report service.
func NewReportService(extractors driven.ExtractorRegistry, store driven.MaterialStore) *ReportService {
	return &ReportService{
		extractors: extractors,
		store:      store,
	}
}

// Report returns the per-file status of every entry in sourceDir
// together with aggregate counts.
func (s *ReportService) Report(ctx context.Context, sourceDir string) (*driving.SourceReport, error) {
	files, err := listSourceFiles(sourceDir)
	if err != nil {
		return nil, err
	}

	all, err := s.store.ListAllMaterials(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing materials: %w", err)
	}

	// Group persisted records by normalised title.
	byKey := make(map[string][]domain.MaterialSummary)
	for _, m := range all {
		key := domain.NormalizeTitle(m.Title)
		byKey[key] = append(byKey[key], m)
	}

	report := &driving.SourceReport{
		Files:     make([]driving.FileReport, 0, len(files)),
		FilesSeen: len(files),
	}
	for _, name := range files {
		entry := driving.FileReport{FileName: name}

		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
		if !s.extractors.Supported(ext) {
			entry.Status = driving.StatusErrored
			entry.Error = domain.ErrUnsupportedFormat.Error()
		} else if records := byKey[domain.NormalizeTitle(domain.TitleFromFileName(name))]; len(records) == 0 {
			entry.Status = driving.StatusNotProcessed
		} else {
			entry.Records = len(records)
			entry.Status = driving.StatusFile
			for _, m := range records {
				if m.Type == domain.MaterialText {
					entry.Status = driving.StatusText
					break
				}
			}
		}

		switch entry.Status {
		case driving.StatusText:
			report.WithText++
		case driving.StatusFile:
			report.AsFile++
		case driving.StatusNotProcessed:
			report.NotProcessed++
		case driving.StatusErrored:
			report.Errored++
		}
		report.Files = append(report.Files, entry)
	}
	return report, nil
}
