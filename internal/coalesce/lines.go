package coalesce

import (
	"sort"
	"strings"

	"github.com/codalotl/linkmerge/internal/diff"
)

// lineIndex maps byte offsets of a text to lines. A line's extent excludes its line break ("\n" or "\r\n"); the position of the line break itself belongs to the line.
type lineIndex struct {
	text   string
	starts []int // start offset of each line; starts[0] == 0
}

func newLineIndex(text string) lineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return lineIndex{text: text, starts: starts}
}

func (li lineIndex) count() int {
	return len(li.starts)
}

// lineOf returns the 0-based line containing pos. pos may equal len(text).
func (li lineIndex) lineOf(pos int) int {
	return sort.Search(len(li.starts), func(i int) bool { return li.starts[i] > pos }) - 1
}

// bounds returns the extent [start, end) of line, excluding its line break.
func (li lineIndex) bounds(line int) (int, int) {
	start := li.starts[line]
	if line+1 >= len(li.starts) {
		return start, len(li.text)
	}
	end := li.starts[line+1] - 1
	if end > start && li.text[end-1] == '\r' {
		end--
	}
	return start, end
}

// widen returns the span covering every whole line that s touches: from the start of the line containing s.Start to the end of the line containing the last byte of s.
func (li lineIndex) widen(s diff.TextSpan) diff.TextSpan {
	start, _ := li.bounds(li.lineOf(s.Start))
	_, end := li.bounds(li.lastLine(s))
	return diff.SpanFromBounds(start, end)
}

// lastLine returns the line containing the last byte of s (or s.Start if s is empty).
func (li lineIndex) lastLine(s diff.TextSpan) int {
	if s.IsEmpty() {
		return li.lineOf(s.Start)
	}
	return li.lineOf(s.End() - 1)
}

// trimBlankLines returns text without its leading and trailing blank (whitespace-only) lines, and without the line break ending the last kept line. It returns false
// if every line is blank.
func trimBlankLines(text string) (string, bool) {
	li := newLineIndex(text)
	first, last := -1, -1
	for i := 0; i < li.count(); i++ {
		start, end := li.bounds(i)
		if strings.TrimSpace(text[start:end]) == "" {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return "", false
	}
	start, _ := li.bounds(first)
	_, end := li.bounds(last)
	return text[start:end], true
}
