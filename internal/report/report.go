// Package report renders model responses as PDF documents.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/go-pdf/fpdf"
)

const (
	DefaultTitle = "Generated Job Description"

	fontFamily = "Helvetica"
	fontSize   = 12
	lineHeight = 14.4
	margin     = 40
	titleX     = 100
	titleY     = 40
	bodyTop    = 70
)

// Config holds the report settings.
type Config struct {
	Title string `mapstructure:"title"`
}

// Writer lays out a title line followed by the response text on US Letter pages.
type Writer struct {
	title string
}

func NewWriter(cfg Config) *Writer {
	title := strings.TrimSpace(cfg.Title)
	if title == "" {
		title = DefaultTitle
	}
	return &Writer{title: title}
}

// Render returns the PDF bytes for text. Each input line starts a new line in the document,
// long lines wrap and the body continues on new pages as needed.
func (w *Writer) Render(text string) ([]byte, error) {
	doc := fpdf.New("P", "pt", "Letter", "")
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin)
	doc.SetTitle(w.title, true)
	doc.SetCreator("ats-sys", false)

	translate := doc.UnicodeTranslatorFromDescriptor("")

	doc.AddPage()
	doc.SetFont(fontFamily, "", fontSize)
	doc.Text(titleX, titleY, translate(w.title))

	doc.SetXY(margin, bodyTop)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if line == "" {
			doc.Ln(lineHeight)
			continue
		}
		doc.MultiCell(0, lineHeight, translate(line), "", "L", false)
	}

	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}

	return buf.Bytes(), nil
}

// FileName returns the download name for a response, Job_Description_<label>.pdf.
// Characters outside letters, digits, '-', '_' and '.' are replaced with '_'.
func FileName(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		label = "1"
	}

	safe := strings.Map(func(r rune) rune {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, label)

	return "Job_Description_" + safe + ".pdf"
}
