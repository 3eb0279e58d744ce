package diff

import (
	"fmt"
	"time"
)

// TextSpan is a half-open byte interval [Start, Start+Length) over an original text.
//
// Invariants:
//   - Length >= 0
//   - Start+Length is within the bounds of the text the span refers to
type TextSpan struct {
	Start  int // Byte offset of the first byte in the span.
	Length int // Number of bytes in the span. Zero for insertion points.
}

// SpanFromBounds returns the span [start, end).
func SpanFromBounds(start, end int) TextSpan {
	return TextSpan{Start: start, Length: end - start}
}

// End returns the exclusive end offset of s.
func (s TextSpan) End() int {
	return s.Start + s.Length
}

// IsEmpty reports whether s is a zero-length insertion point.
func (s TextSpan) IsEmpty() bool {
	return s.Length == 0
}

// Contains reports whether pos is inside s. An empty span contains nothing.
func (s TextSpan) Contains(pos int) bool {
	return pos >= s.Start && pos < s.End()
}

// OverlapsWith reports whether s and o touch the same region of text, for the purposes of merging edits:
//   - two non-empty spans overlap when they share at least one byte (touching spans do not overlap);
//   - an empty span overlaps any span whose closed range [Start, End] contains its position, including another empty span at the same position.
func (s TextSpan) OverlapsWith(o TextSpan) bool {
	if s.IsEmpty() {
		return s.Start >= o.Start && s.Start <= o.End()
	}
	if o.IsEmpty() {
		return o.Start >= s.Start && o.Start <= s.End()
	}
	return s.Start < o.End() && o.Start < s.End()
}

// Slice returns the portion of text covered by s.
func (s TextSpan) Slice(text string) string {
	return text[s.Start:s.End()]
}

func (s TextSpan) String() string {
	return fmt.Sprintf("[%d..%d)", s.Start, s.End())
}

// EditOperation is one unit of change produced by diffing one edited copy against the original: the text in Span is replaced with NewText.
//
// Insertions have an empty Span; deletions have an empty NewText. Source is the position of the edited copy in the caller's source list.
type EditOperation struct {
	Span    TextSpan
	NewText string
	Source  int
}

func (op EditOperation) String() string {
	return fmt.Sprintf("%d:%v->%q", op.Source, op.Span, op.NewText)
}

// Options tune Compute. The zero value is ready to use.
type Options struct {
	// Timeout bounds the time spent in each pass of the underlying diff. Zero means no limit, which keeps results minimal and deterministic. With a limit, very large inputs
	// may produce a valid but non-minimal script.
	Timeout time.Duration
}

// defaultEOL is the EOL ('\n').
//
// Lines are split on it; a "\r\n" line ending is just a line whose last two bytes are "\r\n".
const defaultEOL = "\n"
