package domain

import (
	"fmt"
	"regexp"
)

// Structure markers embedded in canonical text by the extractors.
// Slide and sheet boundaries survive flattening as marker lines so the
// renderer can rebuild per-slide and per-sheet blocks.

// SlideMarker returns the boundary line for the 1-based slide n.
func SlideMarker(n int) string {
	return fmt.Sprintf("=== Слайд %d ===", n)
}

// SheetMarker returns the boundary line for the 1-based sheet n.
func SheetMarker(n int, name string) string {
	if name == "" {
		return fmt.Sprintf("=== Лист %d ===", n)
	}
	return fmt.Sprintf("=== Лист %d: %s ===", n, name)
}

// SlideMarkerPattern matches a slide boundary line and captures the
// slide number.
var SlideMarkerPattern = regexp.MustCompile(`(?m)^=== Слайд (\d+) ===$`)

// HasSlideMarkers reports whether canonical text carries slide
// boundaries.
func HasSlideMarkers(content string) bool {
	return SlideMarkerPattern.MatchString(content)
}
