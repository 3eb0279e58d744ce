package linkedmerge

import (
	"github.com/codalotl/linkmerge/internal/coalesce"
	"github.com/codalotl/linkmerge/internal/diff"
)

// Result is the outcome of a merge.
type Result struct {
	Text      string     // The merged text, conflict comments included.
	Conflicts []Conflict // Conflict blocks in the order they appear in Text.
	Stats     Stats
}

// Conflict describes one conflict block of a merge.
type Conflict struct {
	Span        diff.TextSpan // Region of the original the block covers (whole lines).
	CommentSpan diff.TextSpan // Region of Result.Text holding the block's comments. Empty (at the anchor) if the block has no entries.
	Winner      int           // ID of the source whose text is live.
	Entries     []Entry       // Losing sources, in source order.
}

// Entry is one losing source of a Conflict.
type Entry struct {
	Source  int // Source ID.
	Label   string
	Reason  coalesce.Reason
	Before  string // Original text of the region (blank lines trimmed). Empty for coalesce.Added.
	After   string // The source's text of the region (blank lines trimmed). Empty for coalesce.Removed.
	Comment string // The comment rendered for this entry.
}

// Stats counts what a merge found.
type Stats struct {
	LinkedCopies      int `json:"linked_copies"`       // Number of sources.
	CopiesWithChanges int `json:"copies_with_changes"` // Sources that differ from the original.
	IsolatedChanges   int `json:"isolated_changes"`    // Segments changed by exactly one source.
	IdenticalChanges  int `json:"identical_changes"`   // Segments changed identically by several sources.
	ConflictSegments  int `json:"conflict_segments"`   // Segments changed differently by several sources.
	ConflictBlocks    int `json:"conflict_blocks"`     // Conflict blocks after coalescing.
}
