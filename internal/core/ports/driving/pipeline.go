package driving

import "context"

// FileStatus is the per-file outcome shown in run reports.
type FileStatus string

const (
	// StatusText means the file was processed with extracted text.
	StatusText FileStatus = "processed-with-text"

	// StatusFile means the file was processed as a downloadable asset
	// or image gallery.
	StatusFile FileStatus = "processed-as-file"

	// StatusNotProcessed means no persisted record matches the file.
	StatusNotProcessed FileStatus = "not-processed"

	// StatusErrored means extraction or materialisation failed.
	StatusErrored FileStatus = "errored"
)

// FileReport is one file's entry in a run report.
type FileReport struct {
	FileName string
	Status   FileStatus
	Records  int
	Error    string
}

// IngestReport summarises one ingest pass.
type IngestReport struct {
	FilesSeen    int
	Extracted    int
	Materialized int
	Failed       int
	PerFile      []FileReport
}

// DedupeReport summarises one deduplication pass.
type DedupeReport struct {
	// Groups is the number of dedup-key groups with duplicates.
	Groups int

	// Duplicates is the number of non-canonical records found.
	Duplicates int

	// Removed is the number of records actually deleted.
	Removed int

	// Skipped counts records left untouched because of inconsistent
	// state (e.g. a missing section).
	Skipped int
}

// PlacementReport summarises one placement-fixing pass.
type PlacementReport struct {
	Scanned         int
	Moved           int
	SectionsCreated int
	Ambiguous       int
}

// SourceReport is the outcome of diffing a source directory against
// the persisted corpus: one entry per file plus per-status tallies.
type SourceReport struct {
	Files []FileReport

	FilesSeen    int
	WithText     int
	AsFile       int
	NotProcessed int
	Errored      int
}

// PruneReport summarises one prune pass.
type PruneReport struct {
	SectionsDeleted int
	StationsDeleted int

	// Resequenced is the number of materials whose order was rewritten
	// during the dense re-sequencing step.
	Resequenced int
}

// Ingestor runs the ingest pass over a source directory.
type Ingestor interface {
	// Ingest extracts, classifies and materialises every file in the
	// source directory. Per-file failures are reported, not returned;
	// the returned error is reserved for unrecoverable conditions.
	Ingest(ctx context.Context, sourceDir string) (*IngestReport, error)
}

// Reconciler runs the corpus-wide reconcile passes. Each pass is safe
// to rerun any number of times against content produced by any prior
// ingest run.
type Reconciler interface {
	// Dedupe collapses duplicate materials by dedup key, keeping the
	// earliest-created record of each group. The key preserves the
	// part discriminator of chunked titles.
	Dedupe(ctx context.Context) (*DedupeReport, error)

	// FixPlacement moves materials whose taxonomy path disagrees with
	// the curated override table.
	FixPlacement(ctx context.Context) (*PlacementReport, error)

	// Prune deletes empty sections and stations, then rewrites each
	// surviving section's material order as a dense sequence.
	Prune(ctx context.Context) (*PruneReport, error)
}

// Reporter diffs a source directory against persisted records.
type Reporter interface {
	// Report returns the per-file status of every entry in sourceDir
	// together with aggregate counts.
	Report(ctx context.Context, sourceDir string) (*SourceReport, error)
}
