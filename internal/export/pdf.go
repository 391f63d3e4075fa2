// Package export renders a story into the printable book PDF: cover,
// reflowed body and closing page.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/jung-kurt/gofpdf"
	"github.com/rs/zerolog"

	"cuentomagico/internal/story"
)

const (
	marginX      = 25.0
	bodyTop      = 35.0
	lineHeight   = 7.0
	paragraphGap = 6.0
	bottomGuard  = 30.0 // body text never crosses pageH minus this
	footerInset  = 15.0 // page number baseline from the bottom edge
)

// Exporter writes story PDFs under OutputDir.
type Exporter struct {
	OutputDir string
	Log       zerolog.Logger
}

// Export renders the story and saves it as {sanitized title}.pdf,
// returning the written path. recipient, when present, becomes the cover
// dedication.
func (e *Exporter) Export(st story.Story, recipient string) (string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pageW, pageH := pdf.GetPageSize()
	maxWidth := pageW - marginX*2

	e.renderCover(pdf, tr, pageW, pageH, maxWidth, st.Title, recipient)
	e.renderBody(pdf, tr, pageW, pageH, maxWidth, st.Paragraphs())
	e.renderClosing(pdf, tr, pageW, pageH)

	if err := os.MkdirAll(e.OutputDir, 0o755); err != nil {
		return "", fmt.Errorf("ensure output dir: %w", err)
	}
	path := filepath.Join(e.OutputDir, Filename(st.Title))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	e.Log.Info().Str("path", path).Str("story", st.ID).Msg("exported story pdf")
	return path, nil
}

func (e *Exporter) renderCover(pdf *gofpdf.Fpdf, tr func(string) string, pageW, pageH, maxWidth float64, title, recipient string) {
	pdf.AddPage()
	pdf.SetFillColor(253, 247, 242)
	pdf.Rect(0, 0, pageW, pageH, "F")

	pdf.SetFont("Helvetica", "B", 30)
	pdf.SetTextColor(45, 49, 66)
	pdf.SetXY(marginX, 58)
	pdf.MultiCell(maxWidth, 12, tr(title), "", "C", false)

	pdf.SetFont("Helvetica", "", 16)
	pdf.SetTextColor(107, 112, 92)
	centerText(pdf, tr, pageW, 105, "Un cuento mágico creado especialmente")

	if recipient != "" {
		pdf.SetFont("Helvetica", "B", 18)
		pdf.SetTextColor(124, 58, 237)
		centerText(pdf, tr, pageW, 125, "para "+recipient)
	}
}

func (e *Exporter) renderBody(pdf *gofpdf.Fpdf, tr func(string) string, pageW, pageH, maxWidth float64, paragraphs []string) {
	pdf.AddPage()
	setBodyFont(pdf)

	// Translate before wrapping: the cp1252 translator emits Latin-1
	// bytes, and width measurement for core fonts is byte-based.
	cleaned := make([]string, 0, len(paragraphs))
	for _, p := range paragraphs {
		cleaned = append(cleaned, tr(story.StripMarkup(p)))
	}
	blocks := mergeOrphans(cleaned, func(p string) int {
		return len(wrapText(pdf, p, maxWidth))
	})

	cursorY := bodyTop
	pageNumber := 1
	for _, block := range blocks {
		lines := wrapText(pdf, block, maxWidth)
		if cursorY+float64(len(lines))*lineHeight > pageH-bottomGuard {
			stampPageNumber(pdf, tr, pageW, pageH, pageNumber)
			pageNumber++
			pdf.AddPage()
			cursorY = bodyTop
			setBodyFont(pdf)
		}
		for i, line := range lines {
			pdf.Text(marginX, cursorY+float64(i)*lineHeight, line)
		}
		cursorY += float64(len(lines))*lineHeight + paragraphGap
	}
	stampPageNumber(pdf, tr, pageW, pageH, pageNumber)
}

func (e *Exporter) renderClosing(pdf *gofpdf.Fpdf, tr func(string) string, pageW, pageH float64) {
	pdf.AddPage()
	pdf.SetFont("Helvetica", "I", 16)
	pdf.SetTextColor(90, 90, 90)

	y := pageH/2 - 20
	centerText(pdf, tr, pageW, y, "Este cuento fue creado con cariño")
	y += 18
	centerText(pdf, tr, pageW, y, "para ser leído una y otra vez.")
	y += 30
	pdf.SetFont("Helvetica", "BI", 16)
	centerText(pdf, tr, pageW, y, "Gracias por confiar en")
	y += 18
	centerText(pdf, tr, pageW, y, "Mi Cuento Mágico")
}

func setBodyFont(pdf *gofpdf.Fpdf) {
	pdf.SetFont("Helvetica", "", 13)
	pdf.SetTextColor(40, 40, 40)
}

func stampPageNumber(pdf *gofpdf.Fpdf, tr func(string) string, pageW, pageH float64, n int) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(160, 160, 160)
	centerText(pdf, tr, pageW, pageH-footerInset, fmt.Sprintf("%d", n))
	setBodyFont(pdf)
}

// wrapText word-wraps already-translated text to the given width using
// measured string widths.
func wrapText(pdf *gofpdf.Fpdf, text string, width float64) []string {
	var lines []string
	currentLine := ""
	for _, word := range strings.Split(text, " ") {
		testLine := currentLine
		if testLine != "" {
			testLine += " "
		}
		testLine += word

		if pdf.GetStringWidth(testLine) > width {
			if currentLine != "" {
				lines = append(lines, currentLine)
				currentLine = word
			} else {
				lines = append(lines, word)
			}
		} else {
			currentLine = testLine
		}
	}
	if currentLine != "" {
		lines = append(lines, currentLine)
	}
	return lines
}

func centerText(pdf *gofpdf.Fpdf, tr func(string) string, pageW, y float64, s string) {
	t := tr(s)
	pdf.Text((pageW-pdf.GetStringWidth(t))/2, y, t)
}

// mergeOrphans joins a paragraph that wraps to exactly one line with the
// paragraph after it, which is then skipped, so the book never shows a
// single-line orphan block. The merged block is not re-examined.
func mergeOrphans(paragraphs []string, lineCount func(string) int) []string {
	var out []string
	skip := false
	for i, p := range paragraphs {
		if skip {
			skip = false
			continue
		}
		p = strings.TrimSpace(p)
		if lineCount(p) == 1 && i < len(paragraphs)-1 {
			p = p + " " + strings.TrimSpace(paragraphs[i+1])
			skip = true
		}
		out = append(out, p)
	}
	return out
}

var (
	nonWordOrSpace = regexp.MustCompile(`[^\w\s]`)
	whitespaceRun  = regexp.MustCompile(`\s+`)
)

// Filename derives the saved document name from a title: every rune that
// is not a word character or whitespace is dropped, whitespace runs
// collapse to single underscores, and the pdf extension is appended.
func Filename(title string) string {
	safe := nonWordOrSpace.ReplaceAllString(title, "")
	safe = whitespaceRun.ReplaceAllString(safe, "_")
	return safe + ".pdf"
}
