// Package classify partitions an original text into segments according to how a set of edit scripts (one per linked copy) change it.
package classify

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/codalotl/linkmerge/internal/diff"
)

// Kind is how a Segment was changed across sources.
type Kind int

// Kinds of Segment.
const (
	Unchanged       Kind = iota // No source changed the segment.
	SingleChange                // Exactly one source changed the segment.
	IdenticalChange             // Several sources changed the segment, all to the same text.
	Conflict                    // Several sources changed the segment, to different texts.
)

var kindNames = map[Kind]string{
	Unchanged:       "unchanged",
	SingleChange:    "single",
	IdenticalChange: "identical",
	Conflict:        "conflict",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Segment is a maximal run of the original text that every source treats the same way.
//
// Invariants:
//   - Unchanged segments are non-empty, and Versions and Changed are nil.
//   - For other kinds, len(Versions) is the number of sources, Versions[i] is source i's text for Span (the original text if source i did not change it), and Changed
//     lists, in source order, the sources whose version differs from the original.
type Segment struct {
	Kind     Kind
	Span     diff.TextSpan
	Versions []string
	Changed  []int
}

// Text returns the segment's live text: the original text for Unchanged segments, otherwise the winner's version.
func (s Segment) Text(original string) string {
	if s.Kind == Unchanged {
		return s.Span.Slice(original)
	}
	return s.Versions[s.Winner()]
}

// Winner returns the first source (in source order) that changed the segment, or -1 if it is Unchanged. For a Conflict, the winner's version stays live in the merged text.
func (s Segment) Winner() int {
	if len(s.Changed) == 0 {
		return -1
	}
	return s.Changed[0]
}

// Losers returns, in source order, the sources that changed the segment to something other than the winner's version. Only Conflict segments have losers.
func (s Segment) Losers() []int {
	if s.Kind != Conflict {
		return nil
	}
	win := s.Versions[s.Winner()]
	var losers []int
	for _, src := range s.Changed[1:] {
		if s.Versions[src] != win {
			losers = append(losers, src)
		}
	}
	return losers
}

// Version returns source src's text for the segment.
func (s Segment) Version(original string, src int) string {
	if s.Kind == Unchanged {
		return s.Span.Slice(original)
	}
	return s.Versions[src]
}

// Classify partitions original into segments according to how the edit scripts in edits change it. edits[i] is the script of source i (as produced by diff.Compute
// with source i); every script must be valid for original.
//
// Operations from all sources are projected onto the original. Operations that overlap (see diff.TextSpan.OverlapsWith), directly or through a chain of other
// operations, form one changed segment, because a replacement cannot be split at another source's boundaries. Gaps between changed segments are Unchanged.
//
// For each changed segment, each source's version is computed by applying its operations to the segment's original text. A source whose version equals the original
// is treated as not having changed the segment, even if one of its operations touched it. Then:
//   - no source differs: Unchanged;
//   - one source differs: SingleChange;
//   - several sources differ, all with the same version: IdenticalChange;
//   - otherwise: Conflict.
//
// Classify panics if a script is invalid or tagged with the wrong source.
func Classify(original string, edits [][]diff.EditOperation) []Segment {
	var all []diff.EditOperation
	for i, script := range edits {
		if err := diff.Validate(original, script); err != nil {
			panic(fmt.Errorf("Classify: source %d: %v", i, err))
		}
		for _, op := range script {
			if op.Source != i {
				panic(fmt.Errorf("Classify: script %d contains an operation of source %d", i, op.Source))
			}
		}
		all = append(all, script...)
	}

	// Stable so that, within a source, script order is kept.
	slices.SortStableFunc(all, func(a, b diff.EditOperation) int {
		if c := cmp.Compare(a.Span.Start, b.Span.Start); c != 0 {
			return c
		}
		return cmp.Compare(a.Span.End(), b.Span.End())
	})

	var segments []Segment
	pos := 0
	for _, cl := range clusters(all) {
		if cl.span.Start > pos {
			segments = appendSegment(segments, Segment{Kind: Unchanged, Span: diff.SpanFromBounds(pos, cl.span.Start)})
		}
		segments = appendSegment(segments, classifyCluster(original, cl, len(edits)))
		pos = cl.span.End()
	}
	if pos < len(original) {
		segments = appendSegment(segments, Segment{Kind: Unchanged, Span: diff.SpanFromBounds(pos, len(original))})
	}

	if err := validatePartition(original, segments); err != nil {
		panic(fmt.Errorf("Classify: %v", err))
	}

	return segments
}

// cluster is a maximal group of mutually overlapping operations.
type cluster struct {
	span diff.TextSpan
	ops  []diff.EditOperation // sorted by position
}

// clusters groups sorted operations into clusters, in order.
func clusters(sorted []diff.EditOperation) []cluster {
	var out []cluster
	for _, op := range sorted {
		if n := len(out); n > 0 && joins(out[n-1], op) {
			cl := &out[n-1]
			cl.ops = append(cl.ops, op)
			if op.Span.End() > cl.span.End() {
				cl.span = diff.SpanFromBounds(cl.span.Start, op.Span.End())
			}
			continue
		}
		out = append(out, cluster{span: op.Span, ops: []diff.EditOperation{op}})
	}
	return out
}

// joins reports whether op (which starts at or after cl) overlaps any operation in cl.
func joins(cl cluster, op diff.EditOperation) bool {
	if op.Span.Start < cl.span.End() {
		return true
	}
	if op.Span.Start > cl.span.End() {
		return false
	}
	// op starts exactly where cl ends. Only an insertion on either side makes them overlap.
	if op.Span.IsEmpty() {
		return true
	}
	for _, o := range cl.ops {
		if o.Span.OverlapsWith(op.Span) {
			return true
		}
	}
	return false
}

func classifyCluster(original string, cl cluster, numSources int) Segment {
	bySource := make([][]diff.EditOperation, numSources)
	for _, op := range cl.ops {
		bySource[op.Source] = append(bySource[op.Source], op)
	}

	base := cl.span.Slice(original)
	versions := make([]string, numSources)
	var changed []int
	for src := range versions {
		if len(bySource[src]) == 0 {
			versions[src] = base
			continue
		}
		versions[src] = diff.ApplyWithin(original, cl.span, bySource[src])
		if versions[src] != base {
			changed = append(changed, src)
		}
	}

	seg := Segment{Span: cl.span}
	switch {
	case len(changed) == 0:
		seg.Kind = Unchanged
		return seg
	case len(changed) == 1:
		seg.Kind = SingleChange
	case allSame(versions, changed):
		seg.Kind = IdenticalChange
	default:
		seg.Kind = Conflict
	}
	seg.Versions = versions
	seg.Changed = changed
	return seg
}

func allSame(versions []string, sources []int) bool {
	for _, src := range sources[1:] {
		if versions[src] != versions[sources[0]] {
			return false
		}
	}
	return true
}

// appendSegment appends seg, merging it into a preceding Unchanged segment when both are Unchanged. Empty Unchanged segments are dropped.
func appendSegment(segments []Segment, seg Segment) []Segment {
	if seg.Kind != Unchanged {
		return append(segments, seg)
	}
	if seg.Span.IsEmpty() {
		return segments
	}
	if n := len(segments); n > 0 && segments[n-1].Kind == Unchanged {
		segments[n-1].Span = diff.SpanFromBounds(segments[n-1].Span.Start, seg.Span.End())
		return segments
	}
	return append(segments, Segment{Kind: Unchanged, Span: seg.Span})
}

// validatePartition checks that segments cover original exactly, in order.
func validatePartition(original string, segments []Segment) error {
	pos := 0
	for i, seg := range segments {
		if seg.Span.Start != pos {
			return fmt.Errorf("segment[%d] %v starts at %d, want %d", i, seg.Span, seg.Span.Start, pos)
		}
		if seg.Kind == Unchanged && seg.Span.IsEmpty() {
			return fmt.Errorf("segment[%d] is an empty unchanged segment", i)
		}
		pos = seg.Span.End()
	}
	if pos != len(original) {
		return fmt.Errorf("segments end at %d, want %d", pos, len(original))
	}
	return nil
}
