package document

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"
)

// wordGapRatio is the horizontal gap, relative to the font size, that separates two words
// whose content stream does not carry a literal space.
const wordGapRatio = 0.2

// TextExtractor reads the text layer of PDF pages, one line per visual row.
type TextExtractor struct{}

func NewTextExtractor() *TextExtractor {
	return &TextExtractor{}
}

// Pages returns the text of every page. Rows are ordered top to bottom and joined with "\n".
func (e *TextExtractor) Pages(data []byte) ([]string, error) {
	reader, err := openReader(data)
	if err != nil {
		return nil, err
	}

	pages := make([]string, 0, reader.NumPage())
	for i := 1; i <= reader.NumPage(); i++ {
		text, err := pageText(reader, i)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}

	return pages, nil
}

// FirstPage returns the text of page one. A page without a text layer yields "".
func (e *TextExtractor) FirstPage(data []byte) (string, error) {
	reader, err := openReader(data)
	if err != nil {
		return "", err
	}
	if reader.NumPage() < 1 {
		return "", ErrNoPages
	}

	return pageText(reader, 1)
}

func openReader(data []byte) (reader *pdf.Reader, err error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}

	defer recoverParse("open pdf", &err)

	reader, err = pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	return reader, nil
}

type textRow struct {
	y     float64
	glyph []pdf.Text
}

func pageText(reader *pdf.Reader, num int) (text string, err error) {
	defer recoverParse("extract text", &err)

	page := reader.Page(num)
	if page.V.IsNull() {
		return "", nil
	}

	rows := groupRows(page.Content().Text)

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, joinGlyphs(row.glyph))
	}

	return strings.Join(lines, "\n"), nil
}

// groupRows buckets glyphs by baseline. Glyph order inside a row follows the content stream.
func groupRows(glyphs []pdf.Text) []*textRow {
	index := make(map[int64]*textRow)
	var rows []*textRow
	for _, glyph := range glyphs {
		// TJ arrays end with a synthetic newline glyph.
		if glyph.S == "" || glyph.S == "\n" {
			continue
		}
		key := int64(math.Round(glyph.Y))
		row, ok := index[key]
		if !ok {
			row = &textRow{y: glyph.Y}
			index[key] = row
			rows = append(rows, row)
		}
		row.glyph = append(row.glyph, glyph)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].y > rows[j].y
	})

	return rows
}

// joinGlyphs concatenates one row. A space is inserted where the next glyph starts clearly past
// the end of the previous one, which covers words positioned by offsets instead of spaces.
func joinGlyphs(glyphs []pdf.Text) string {
	var builder strings.Builder
	var prev *pdf.Text
	for i := range glyphs {
		glyph := &glyphs[i]
		if prev != nil {
			size := math.Max(prev.FontSize, 1)
			gap := glyph.X - (prev.X + prev.W)
			if gap > size*wordGapRatio && !endsWithSpace(prev.S) && !startsWithSpace(glyph.S) {
				builder.WriteByte(' ')
			}
		}
		builder.WriteString(glyph.S)
		prev = glyph
	}

	return strings.TrimRightFunc(builder.String(), unicode.IsSpace)
}

func endsWithSpace(s string) bool {
	return s != "" && strings.TrimRightFunc(s, unicode.IsSpace) != s
}

func startsWithSpace(s string) bool {
	return s != "" && strings.TrimLeftFunc(s, unicode.IsSpace) != s
}
