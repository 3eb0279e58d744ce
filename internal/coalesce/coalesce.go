// Package coalesce groups conflicting segments on the same or adjacent lines (or separated only by whitespace) into conflict blocks, so a multi-line divergence is
// reported once rather than line by line.
package coalesce

import (
	"strings"

	"github.com/codalotl/linkmerge/internal/classify"
	"github.com/codalotl/linkmerge/internal/diff"
)

// Reason is why a losing source is reported, and selects the labels its comment uses.
type Reason int

// Reasons for an Entry.
const (
	Changed Reason = iota // The source changed the region to other text ("Before:" / "After:").
	Added                 // The region was blank in the original; the source added text ("Added:").
	Removed               // The source left the region blank; the original had text ("Removed:").
)

var reasonNames = map[Reason]string{
	Changed: "changed",
	Added:   "added",
	Removed: "removed",
}

func (r Reason) String() string {
	if name, ok := reasonNames[r]; ok {
		return name
	}
	return "unknown"
}

// Entry is one losing source's view of a ConflictBlock.
type Entry struct {
	Source int    // Position of the source.
	Reason Reason // Which labels to render.
	Before string // Original text of the block, without leading/trailing blank lines (kept if they are the only difference). Empty for Added.
	After  string // The source's text for the block, without leading/trailing blank lines (kept if they are the only difference). Empty for Removed.
}

// ConflictBlock is a run of Conflict segments on the same or adjacent lines, reported together.
type ConflictBlock struct {
	// Span is the block's region of the original: whole lines from the first conflict's line through the last conflict's line (line break excluded), extended to whole
	// changed segments if a line boundary falls inside one. Comments for the block are inserted at Span.Start.
	Span diff.TextSpan

	Conflicts []int   // Indices of the block's Conflict segments, in order.
	Winner    int     // Source whose text is live for the block's first conflict.
	Entries   []Entry // Losing sources, in source order.
}

// Coalesce groups the Conflict segments of segments (as returned by classify.Classify for original) into conflict blocks, in order.
//
// Each conflict's region is widened to whole lines. A conflict joins the current block when it starts on the same line the block ends on or the line right after,
// when its region overlaps the block's, or when only whitespace (ex: blank lines) lies between them; conflicts separated by at least one non-blank line without
// conflicts start a new block. Segments of other kinds inside a block's region
// stay as they are: they are live text, and they are part of each source's After text.
//
// Every source that loses any of the block's conflicts (see classify.Segment.Losers) gets one Entry, comparing the block's original text with the source's text for
// the same region. An entry whose Before and After are both blank is dropped; a block may therefore have no entries.
func Coalesce(original string, segments []classify.Segment) []ConflictBlock {
	li := newLineIndex(original)

	var blocks []ConflictBlock
	var cur *ConflictBlock
	curEndLine := 0

	for i, seg := range segments {
		if seg.Kind != classify.Conflict {
			continue
		}
		region := extend(li.widen(seg.Span), segments)
		if cur != nil && (li.lineOf(seg.Span.Start) <= curEndLine+1 || region.Start <= cur.Span.End() || blankBetween(original, cur.Span.End(), region.Start)) {
			cur.Span = diff.SpanFromBounds(min(cur.Span.Start, region.Start), max(cur.Span.End(), region.End()))
			cur.Conflicts = append(cur.Conflicts, i)
			curEndLine = li.lastLine(cur.Span)
			continue
		}
		if cur != nil {
			blocks = append(blocks, finish(original, segments, *cur))
		}
		cur = &ConflictBlock{Span: region, Conflicts: []int{i}, Winner: seg.Winner()}
		curEndLine = li.lastLine(region)
	}
	if cur != nil {
		blocks = append(blocks, finish(original, segments, *cur))
	}

	return blocks
}

// blankBetween reports whether original[start:end] is whitespace only.
func blankBetween(original string, start, end int) bool {
	return strings.TrimSpace(original[start:end]) == ""
}

// extend grows region so that neither boundary falls strictly inside a changed segment.
func extend(region diff.TextSpan, segments []classify.Segment) diff.TextSpan {
	start, end := region.Start, region.End()
	for _, seg := range segments {
		if seg.Kind == classify.Unchanged {
			continue
		}
		if seg.Span.Start < start && start < seg.Span.End() {
			start = seg.Span.Start
		}
		if seg.Span.Start < end && end < seg.Span.End() {
			end = seg.Span.End()
		}
	}
	return diff.SpanFromBounds(start, end)
}

// finish fills in the entries of b.
func finish(original string, segments []classify.Segment, b ConflictBlock) ConflictBlock {
	numSources := len(segments[b.Conflicts[0]].Versions)
	losing := make([]bool, numSources)
	for _, idx := range b.Conflicts {
		for _, src := range segments[idx].Losers() {
			losing[src] = true
		}
	}

	before := b.Span.Slice(original)
	for src, lost := range losing {
		if !lost {
			continue
		}
		after := regionText(original, segments, b.Span, src)
		trimmedBefore, hasBefore := trimBlankLines(before)
		trimmedAfter, hasAfter := trimBlankLines(after)

		entry := Entry{Source: src}
		switch {
		case !hasBefore && !hasAfter:
			continue
		case !hasBefore:
			entry.Reason = Added
			entry.After = trimmedAfter
		case !hasAfter:
			entry.Reason = Removed
			entry.Before = trimmedBefore
		case trimmedBefore == trimmedAfter:
			// The source differs only in blank lines.
			entry.Reason = Changed
			entry.Before = before
			entry.After = after
		default:
			entry.Reason = Changed
			entry.Before = trimmedBefore
			entry.After = trimmedAfter
		}
		b.Entries = append(b.Entries, entry)
	}
	return b
}

// regionText returns source src's text for region: the original text of Unchanged segments (clipped to region) and src's version of every changed segment inside region.
func regionText(original string, segments []classify.Segment, region diff.TextSpan, src int) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Kind == classify.Unchanged {
			start := max(seg.Span.Start, region.Start)
			end := min(seg.Span.End(), region.End())
			if start < end {
				b.WriteString(original[start:end])
			}
			continue
		}
		if seg.Span.Start >= region.Start && seg.Span.End() <= region.End() {
			b.WriteString(seg.Versions[src])
		}
	}
	return b.String()
}
