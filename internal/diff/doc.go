// Package diff computes edit scripts between an original text and one edited copy of it.
//
// Representation: an edit script is an ordered slice of EditOperation values. Each operation replaces the bytes of the original covered by its TextSpan with NewText:
//   - insertion: Span is empty (Length == 0), NewText is non-empty
//   - deletion: Span is non-empty, NewText is empty
//   - replacement: both are non-empty
//
// Unchanged regions are implicit gaps between operations. Offsets are byte offsets into the original.
//
// Invariants (checked by Validate):
//   - spans lie within the original and are ordered by position
//   - spans do not overlap; an insertion touching another operation counts as overlapping
//   - Apply(original, Compute(original, edited, src)) == edited
//
// Granularity: Compute diffs lines first and then refines changed lines word by word (Unicode word boundaries). The exact grouping is a policy of Compute; consumers
// should rely on the invariants above rather than a particular chunking strategy.
//
// Getting a script:
//
//	ops := diff.Compute(original, edited, 0)
//	merged := diff.Apply(original, ops) // == edited
//
// Newlines: '\n' separates lines. A "\r\n" ending is treated as part of the line it ends.
package diff
