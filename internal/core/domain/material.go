package domain

import "time"

// MaterialType is the closed set of material presentation kinds.
type MaterialType string

const (
	// MaterialText is inline text or HTML content.
	MaterialText MaterialType = "text"

	// MaterialFile is a download/view wrapper around a copied binary asset.
	MaterialFile MaterialType = "file"
)

// Material is a single piece of training content attached to a Section.
// Content and Type are immutable once materialised; SectionID, Order and
// Title may change during reconciliation.
type Material struct {
	// ID is the unique identifier assigned by the store.
	ID string

	// SectionID references the owning Section.
	SectionID string

	// Title is the display title, derived from the source file name.
	Title string

	// Content is rendered HTML: paragraphs, a slide deck, an image
	// gallery or a file wrapper.
	Content string

	// Type is the presentation kind.
	Type MaterialType

	// Order is the position within the section. Materialisation appends
	// past the current maximum; reconciliation rewrites it to a dense
	// zero-based sequence.
	Order int

	// CreatedAt is when the record was first persisted. The earliest
	// record in a duplicate group is the canonical one.
	CreatedAt time.Time
}

// MaterialSummary is a Material joined with its taxonomy path, as
// returned by the store's corpus-wide listing. Reconciliation passes
// operate on summaries.
type MaterialSummary struct {
	Material

	// SectionTitle is the owning section's title.
	SectionTitle string

	// StationID is the owning station's identifier.
	StationID string

	// StationName is the owning station's name.
	StationName string
}
