package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/trenlab/kontent-cli/internal/core/domain"
	"github.com/trenlab/kontent-cli/internal/core/ports/driven"
	"github.com/trenlab/kontent-cli/internal/render"
	"github.com/trenlab/kontent-cli/internal/splitter"
)

// legacyFormatNote is shown on materials wrapping binary-only legacy
// presentations.
const legacyFormatNote = "Файл в устаревшем формате; содержимое доступно для просмотра и скачивания."

// Materializer turns extraction results into persisted content records.
// Each format maps to a fixed presentation: plain text splits into
// chunked paragraph records, slide decks become one slide-block record,
// image-only documents become a gallery, opaque binaries become a file
// wrapper around a copied asset.
type Materializer struct {
	materials driven.MaterialStore
	assets    driven.AssetStore
	split     *splitter.Splitter
}

// NewMaterializer creates a materialiser.
func NewMaterializer(materials driven.MaterialStore, assets driven.AssetStore, split *splitter.Splitter) *Materializer {
	return &Materializer{
		materials: materials,
		assets:    assets,
		split:     split,
	}
}

// Materialize persists the content records for one extraction result
// under the given section and returns how many records were created.
// OutcomeFailed results must be filtered out by the caller.
func (m *Materializer) Materialize(ctx context.Context, res *domain.ExtractionResult, section *domain.Section) (int, error) {
	title := domain.TitleFromFileName(res.FileName)

	switch res.Outcome {
	case domain.OutcomeText:
		if domain.HasSlideMarkers(res.Content) {
			return m.createOne(ctx, section, title, render.Slides(res.Content), domain.MaterialText)
		}
		return m.materializeText(ctx, res.Content, section, title)

	case domain.OutcomeImages:
		return m.materializeImages(ctx, res, section, title)

	case domain.OutcomeOpaqueBinary:
		return m.materializeFile(ctx, res, section, title)

	default:
		return 0, fmt.Errorf("%w: cannot materialise outcome %s", domain.ErrInvalidInput, res.Outcome)
	}
}

// materializeText splits canonical text into chunks and persists one
// paragraph record per chunk, titled with part suffixes when split.
func (m *Materializer) materializeText(ctx context.Context, content string, section *domain.Section, title string) (int, error) {
	chunks := m.split.Split(content)
	n := len(chunks)
	for i, chunk := range chunks {
		partTitle := domain.PartTitle(title, i+1, n)
		if _, err := m.createOne(ctx, section, partTitle, render.Paragraphs(chunk), domain.MaterialText); err != nil {
			return i, err
		}
	}
	return n, nil
}

// materializeImages saves every extracted image as an asset and
// persists a single gallery record.
func (m *Materializer) materializeImages(ctx context.Context, res *domain.ExtractionResult, section *domain.Section, title string) (int, error) {
	gallery := make([]render.GalleryImage, 0, len(res.Images))
	for i, img := range res.Images {
		name := fmt.Sprintf("%s_p%d_%d.%s", domain.NormalizeTitle(title), img.Page, i, img.FileType)
		path, err := m.assets.StoreImage(name, img.Data)
		if err != nil {
			return 0, fmt.Errorf("storing image %s: %w", name, err)
		}
		gallery = append(gallery, render.GalleryImage{Page: img.Page, Path: path})
	}
	return m.createOne(ctx, section, title, render.Gallery(title, gallery), domain.MaterialText)
}

// materializeFile copies the source binary into the public assets area
// and persists a file-wrapper record. PDFs get an embedded viewer;
// legacy presentations get an explanatory note.
func (m *Materializer) materializeFile(ctx context.Context, res *domain.ExtractionResult, section *domain.Section, title string) (int, error) {
	publicPath, err := m.assets.StoreFile(res.Path)
	if err != nil {
		return 0, fmt.Errorf("storing file %s: %w", res.FileName, err)
	}

	embedViewer := res.FileType == "pdf"
	note := ""
	if res.FileType == "ppt" {
		note = legacyFormatNote
	}
	return m.createOne(ctx, section, title, render.FileWrapper(title, publicPath, embedViewer, note), domain.MaterialFile)
}

// createOne persists one record appended past the section's current
// maximum order.
func (m *Materializer) createOne(ctx context.Context, section *domain.Section, title, content string, typ domain.MaterialType) (int, error) {
	max, err := m.materials.MaxOrder(ctx, section.ID)
	if err != nil {
		return 0, fmt.Errorf("getting max order: %w", err)
	}

	material := &domain.Material{
		ID:        uuid.NewString(),
		SectionID: section.ID,
		Title:     title,
		Content:   content,
		Type:      typ,
		Order:     max + 1,
	}
	if err := m.materials.CreateMaterial(ctx, material); err != nil {
		return 0, fmt.Errorf("creating material %q: %w", title, err)
	}
	return 1, nil
}
