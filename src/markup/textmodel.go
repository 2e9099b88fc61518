package markup

import (
	"sort"
	"unicode/utf8"
)

// TextModel maps character positions in a document to rows and columns the
// way an editor buffer does. Points, rows and columns all count characters
// (runes), not bytes. Rows and columns are 0-based.
type TextModel struct {
	text       string
	runes      int
	lineStarts []int // rune offset of the first character of each line
	byteAt     []int // rune offset -> byte offset; nil when text is ASCII
}

// NewTextModel indexes the line starts of text.
func NewTextModel(text string) *TextModel {
	m := &TextModel{text: text, lineStarts: []int{0}}
	ascii := true
	n := 0
	for _, r := range text {
		if r >= utf8.RuneSelf {
			ascii = false
		}
		if r == '\n' {
			m.lineStarts = append(m.lineStarts, n+1)
		}
		n++
	}
	m.runes = n
	if !ascii {
		m.byteAt = make([]int, 0, n+1)
		for i := range text {
			m.byteAt = append(m.byteAt, i)
		}
		m.byteAt = append(m.byteAt, len(text))
	}
	return m
}

// Size returns the document length in characters.
func (m *TextModel) Size() int { return m.runes }

// Lines returns the number of lines. An empty document has one line.
func (m *TextModel) Lines() int { return len(m.lineStarts) }

// TextPoint converts a row and column to a point. The row is clamped to the
// document but the column is not clamped to the row's length, so a column
// past the end of a row runs on into the following rows. The result is
// clamped to [0, Size()].
func (m *TextModel) TextPoint(row, col int) int {
	if row < 0 {
		row = 0
	}
	if row >= len(m.lineStarts) {
		row = len(m.lineStarts) - 1
	}
	if col < 0 {
		col = 0
	}
	p := m.lineStarts[row] + col
	if p > m.runes {
		p = m.runes
	}
	return p
}

// RowCol converts a point to a 0-based row and column.
func (m *TextModel) RowCol(point int) (row, col int) {
	if point < 0 {
		point = 0
	}
	if point > m.runes {
		point = m.runes
	}
	row = sort.Search(len(m.lineStarts), func(i int) bool { return m.lineStarts[i] > point }) - 1
	return row, point - m.lineStarts[row]
}

// Line returns the [begin, end) point span of row, excluding its newline.
// Rows outside the document clamp to the first or last row.
func (m *TextModel) Line(row int) (begin, end int) {
	if row < 0 {
		row = 0
	}
	if row >= len(m.lineStarts) {
		row = len(m.lineStarts) - 1
	}
	begin = m.lineStarts[row]
	if row+1 < len(m.lineStarts) {
		end = m.lineStarts[row+1] - 1
	} else {
		end = m.runes
	}
	return begin, end
}

// PointOf converts a byte offset in the document text to a point.
func (m *TextModel) PointOf(byteOffset int) int {
	if m.byteAt == nil {
		return byteOffset
	}
	return sort.SearchInts(m.byteAt, byteOffset)
}
