package diff

import (
	"fmt"
)

// Validate checks that ops is a well-formed edit script for original and returns an error on the first violation:
//   - every span has a non-negative length and lies within original;
//   - operations are ordered by position and do not overlap (see TextSpan.OverlapsWith);
//   - no operation is a no-op insertion (empty span and empty NewText);
//   - all operations carry the same Source.
func Validate(original string, ops []EditOperation) error {
	for i, op := range ops {
		if op.Span.Length < 0 {
			return fmt.Errorf("op[%d]: negative length %d", i, op.Span.Length)
		}
		if op.Span.Start < 0 || op.Span.End() > len(original) {
			return fmt.Errorf("op[%d]: span %v outside original of length %d", i, op.Span, len(original))
		}
		if op.Span.IsEmpty() && op.NewText == "" {
			return fmt.Errorf("op[%d]: empty insertion at %d", i, op.Span.Start)
		}
		if i == 0 {
			continue
		}
		prev := ops[i-1]
		if op.Source != prev.Source {
			return fmt.Errorf("op[%d]: source %d differs from source %d", i, op.Source, prev.Source)
		}
		if op.Span.Start < prev.Span.End() || op.Span.OverlapsWith(prev.Span) {
			return fmt.Errorf("op[%d]: span %v overlaps or precedes op[%d] span %v", i, op.Span, i-1, prev.Span)
		}
	}
	return nil
}
