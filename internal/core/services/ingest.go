package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/trenlab/kontent-cli/internal/classify"
	"github.com/trenlab/kontent-cli/internal/core/domain"
	"github.com/trenlab/kontent-cli/internal/core/ports/driven"
	"github.com/trenlab/kontent-cli/internal/core/ports/driving"
	"github.com/trenlab/kontent-cli/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.Ingestor = (*IngestService)(nil)

// IngestService runs the ingest pass: every file in the source
// directory is extracted, classified into the taxonomy and materialised
// into content records. A failing file is reported and skipped; it
// never aborts the run.
type IngestService struct {
	extractors   driven.ExtractorRegistry
	classifier   *classify.Classifier
	taxonomy     *TaxonomyReconciler
	materializer *Materializer
	store        driven.Store
}

// NewIngestService creates an ingest service.
func NewIngestService(
	extractors driven.ExtractorRegistry,
	classifier *classify.Classifier,
	taxonomy *TaxonomyReconciler,
	materializer *Materializer,
	store driven.Store,
) *IngestService {
	return &IngestService{
		extractors:   extractors,
		classifier:   classifier,
		taxonomy:     taxonomy,
		materializer: materializer,
		store:        store,
	}
}

// Ingest processes every regular file in sourceDir in name order.
func (s *IngestService) Ingest(ctx context.Context, sourceDir string) (*driving.IngestReport, error) {
	if err := s.store.Ping(ctx); err != nil {
		return nil, fmt.Errorf("checking store: %w", err)
	}

	files, err := listSourceFiles(sourceDir)
	if err != nil {
		return nil, err
	}

	logger.Section("Ingest")
	logger.Info("Processing %d files from %s", len(files), sourceDir)

	report := &driving.IngestReport{FilesSeen: len(files)}
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.PerFile = append(report.PerFile, s.ingestOne(ctx, filepath.Join(sourceDir, name), report))
	}

	logger.Info("Ingest done: %d extracted, %d records, %d failed",
		report.Extracted, report.Materialized, report.Failed)
	return report, nil
}

// ingestOne processes a single file and returns its report entry,
// updating the run counters as a side effect.
func (s *IngestService) ingestOne(ctx context.Context, path string, report *driving.IngestReport) driving.FileReport {
	name := filepath.Base(path)
	entry := driving.FileReport{FileName: name}

	res := s.extractors.Extract(ctx, path)
	if res.Outcome == domain.OutcomeFailed {
		logger.Warn("%s: extraction failed: %s", name, res.Err)
		report.Failed++
		entry.Status = driving.StatusErrored
		entry.Error = res.Err
		return entry
	}
	report.Extracted++

	taxPath := s.classifier.Classify(name)
	section, err := s.taxonomy.EnsurePath(ctx, taxPath)
	if err != nil {
		logger.Warn("%s: resolving taxonomy: %v", name, err)
		report.Failed++
		entry.Status = driving.StatusErrored
		entry.Error = err.Error()
		return entry
	}

	created, err := s.materializer.Materialize(ctx, res, section)
	if err != nil {
		logger.Warn("%s: materialising: %v", name, err)
		report.Failed++
		entry.Status = driving.StatusErrored
		entry.Error = err.Error()
		entry.Records = created
		return entry
	}

	report.Materialized += created
	entry.Records = created
	if res.Outcome == domain.OutcomeText {
		entry.Status = driving.StatusText
	} else {
		entry.Status = driving.StatusFile
	}
	logger.Debug("%s -> %s / %s (%d records, %s)",
		name, taxPath.Station, taxPath.Section, created, res.Outcome)
	return entry
}

// listSourceFiles returns the regular file names of dir sorted by name.
func listSourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading source directory: %w", err)
	}

	var files []string //nolint:prealloc // directories are filtered out
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		files = append(files, entry.Name())
	}
	sort.Strings(files)
	return files, nil
}
