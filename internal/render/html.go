// Package render builds the HTML bodies of materials: plain paragraph
// text, slide-by-slide blocks, image galleries and file wrappers.
// All user-sourced text is escaped before it is embedded in markup.
package render

import (
	"fmt"
	"html"
	"regexp"
	"sort"
	"strings"

	"github.com/trenlab/kontent-cli/internal/core/domain"
)

// Paragraphs renders plain text as a sequence of paragraph elements,
// one per non-empty line. HTML-unsafe characters are escaped.
func Paragraphs(text string) string {
	var sb strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		sb.WriteString("<p>")
		sb.WriteString(html.EscapeString(line))
		sb.WriteString("</p>\n")
	}
	return sb.String()
}

// FileWrapper renders the presentation wrapper for an opaque binary:
// "open" and "download" actions referencing the copied asset and, for
// PDFs, an embedded viewer. note, when non-empty, is shown above the
// actions (used for the legacy-format notice).
func FileWrapper(title, publicPath string, embedViewer bool, note string) string {
	var sb strings.Builder
	sb.WriteString(`<div class="material-file">` + "\n")
	if note != "" {
		sb.WriteString("<p><em>")
		sb.WriteString(html.EscapeString(note))
		sb.WriteString("</em></p>\n")
	}
	escapedPath := html.EscapeString(publicPath)
	sb.WriteString(fmt.Sprintf(`<a href="%s" target="_blank" rel="noopener">Открыть %s</a>`,
		escapedPath, html.EscapeString(title)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf(`<a href="%s" download>Скачать</a>`, escapedPath))
	sb.WriteString("\n")
	if embedViewer {
		sb.WriteString(fmt.Sprintf(`<iframe src="%s" width="100%%" height="600"></iframe>`, escapedPath))
		sb.WriteString("\n")
	}
	sb.WriteString("</div>\n")
	return sb.String()
}

// bulletLine matches list markers: bullets, dashes and "1." / "1)"
// numbering.
var bulletLine = regexp.MustCompile(`^\s*(?:[-•*‣◦]|\d+[.)])\s+`)

// sentencePunctuation marks a line as prose rather than a heading.
const sentencePunctuation = ".!?;,"

// Slides renders slide-delimited canonical text as one visually
// distinct block per slide. Within a slide, simple structure is
// inferred: a short line ending in a colon, or a line without sentence
// punctuation, becomes a sub-heading; a line starting with a bullet or
// number marker becomes a list item; everything else is a paragraph.
func Slides(content string) string {
	var sb strings.Builder

	indices := domain.SlideMarkerPattern.FindAllStringSubmatchIndex(content, -1)
	for i, idx := range indices {
		number := content[idx[2]:idx[3]]
		start := idx[1]
		end := len(content)
		if i+1 < len(indices) {
			end = indices[i+1][0]
		}

		sb.WriteString(`<div class="slide">` + "\n")
		sb.WriteString(fmt.Sprintf(`<h3>Слайд %s</h3>`, number))
		sb.WriteString("\n")
		renderSlideBody(&sb, content[start:end])
		sb.WriteString("</div>\n")
	}

	if len(indices) == 0 {
		// No markers: degrade to plain paragraphs.
		return Paragraphs(content)
	}
	return sb.String()
}

// renderSlideBody writes a slide's lines, closing list runs as they end.
func renderSlideBody(sb *strings.Builder, body string) {
	inList := false
	closeList := func() {
		if inList {
			sb.WriteString("</ul>\n")
			inList = false
		}
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		switch {
		case bulletLine.MatchString(line):
			if !inList {
				sb.WriteString("<ul>\n")
				inList = true
			}
			item := bulletLine.ReplaceAllString(line, "")
			sb.WriteString("<li>")
			sb.WriteString(html.EscapeString(item))
			sb.WriteString("</li>\n")
		case isSubHeading(line):
			closeList()
			sb.WriteString("<h4>")
			sb.WriteString(html.EscapeString(line))
			sb.WriteString("</h4>\n")
		default:
			closeList()
			sb.WriteString("<p>")
			sb.WriteString(html.EscapeString(line))
			sb.WriteString("</p>\n")
		}
	}
	closeList()
}

// isSubHeading reports whether a line reads as a sub-heading: short and
// colon-terminated, or free of sentence punctuation.
func isSubHeading(line string) bool {
	runes := []rune(line)
	if len(runes) <= 60 && strings.HasSuffix(line, ":") {
		return true
	}
	return len(runes) <= 60 && !strings.ContainsAny(line, sentencePunctuation)
}

// GalleryImage is one rendered gallery entry.
type GalleryImage struct {
	// Page is the 1-based source page the image came from.
	Page int

	// Path is the public asset path of the saved image.
	Path string
}

// Gallery renders extracted images grouped by source page, in page
// order, each image in extraction order within its page.
func Gallery(title string, images []GalleryImage) string {
	byPage := make(map[int][]GalleryImage)
	for _, img := range images {
		byPage[img.Page] = append(byPage[img.Page], img)
	}
	pages := make([]int, 0, len(byPage))
	for p := range byPage {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	var sb strings.Builder
	sb.WriteString(`<div class="material-gallery">` + "\n")
	for _, p := range pages {
		sb.WriteString(fmt.Sprintf(`<h4>Страница %d</h4>`, p))
		sb.WriteString("\n")
		for _, img := range byPage[p] {
			sb.WriteString(fmt.Sprintf(`<img src="%s" alt="%s, страница %d">`,
				html.EscapeString(img.Path), html.EscapeString(title), p))
			sb.WriteString("\n")
		}
	}
	sb.WriteString("</div>\n")
	return sb.String()
}
