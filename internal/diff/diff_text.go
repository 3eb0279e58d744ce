package diff

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Compute diffs original to edited and returns the edit script that turns original into edited. Every operation is tagged with source.
//
// Compute is total: it accepts any two strings (including empty ones) and returns nil when they are equal. See ComputeWithOptions for the granularity policy.
func Compute(original, edited string, source int) []EditOperation {
	return ComputeWithOptions(original, edited, source, Options{})
}

// ComputeWithOptions is Compute with explicit Options.
//
// Policy:
//   - The texts are first diffed line by line. Runs of removed and added lines between unchanged lines form a hunk.
//   - A hunk that only removes or only adds lines becomes one operation.
//   - A hunk that does both is re-diffed word by word (see wordTokens), and each maximal run of changed words becomes one operation. This is what lets two copies that edit
//     different words of the same line merge cleanly.
//
// Both passes strip the common prefix and suffix before searching for a minimal script, so among scripts of equal size the one with the longest unchanged prefix and suffix
// wins.
//
// The returned operations are ordered by position, non-overlapping, and never adjacent.
func ComputeWithOptions(original, edited string, source int, opts Options) []EditOperation {
	if original == edited {
		return nil
	}

	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = opts.Timeout

	// Diff based on lines:
	rOld, rNew, lineArray := dmp.DiffLinesToRunes(original, edited)
	lineDiffs := dmp.DiffMainRunes(rOld, rNew, false)
	lineDiffs = dmp.DiffCleanupMerge(lineDiffs)

	// Decode rune-string back to slice of original lines using the lineArray mapping.
	decode := func(s string) []string {
		if s == "" {
			return nil
		}
		out := make([]string, 0, len(s))
		for _, r := range s {
			idx := int(r)
			if idx >= 0 && idx < len(lineArray) {
				out = append(out, lineArray[idx])
			}
		}
		return out
	}

	var ops []EditOperation
	var dels []string
	var ins []string
	oldPos := 0

	flush := func() {
		if len(dels) == 0 && len(ins) == 0 {
			return
		}
		oldBlock := strings.Join(dels, "")
		newBlock := strings.Join(ins, "")
		if oldBlock != "" && newBlock != "" {
			ops = append(ops, refineWords(dmp, oldBlock, newBlock, oldPos, source)...)
		} else {
			ops = append(ops, EditOperation{Span: TextSpan{Start: oldPos, Length: len(oldBlock)}, NewText: newBlock, Source: source})
		}
		oldPos += len(oldBlock)
		dels = nil
		ins = nil
	}

	for _, d := range lineDiffs {
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			flush()
			for _, line := range decode(d.Text) {
				oldPos += len(line)
			}
		case diffmatchpatch.DiffDelete:
			dels = append(dels, decode(d.Text)...)
		case diffmatchpatch.DiffInsert:
			ins = append(ins, decode(d.Text)...)
		}
	}
	flush()

	if err := Validate(original, ops); err != nil {
		panic(fmt.Errorf("Compute: validate failed with %v", err))
	}
	if got := Apply(original, ops); got != edited {
		panic(fmt.Errorf("Compute: script does not reproduce the edited text (got %d bytes, want %d)", len(got), len(edited)))
	}

	return ops
}

// refineWords diffs oldBlock to newBlock word by word. base is the offset of oldBlock in the original text.
//
// If the blocks have too many distinct words to encode, the whole block is replaced.
func refineWords(dmp *diffmatchpatch.DiffMatchPatch, oldBlock, newBlock string, base, source int) []EditOperation {
	oldTokens := wordTokens(oldBlock)
	newTokens := wordTokens(newBlock)

	var enc tokenEncoder
	rOld, okOld := enc.encode(oldTokens)
	rNew, okNew := enc.encode(newTokens)
	if !okOld || !okNew {
		return []EditOperation{{Span: TextSpan{Start: base, Length: len(oldBlock)}, NewText: newBlock, Source: source}}
	}

	diffs := dmp.DiffMainRunes(rOld, rNew, false)
	diffs = dmp.DiffCleanupMerge(diffs)

	var ops []EditOperation
	var newText strings.Builder
	i, j := 0, 0 // next old/new token
	oldOff := 0  // byte offset of oldTokens[i] within oldBlock
	start := -1  // start of the pending operation within oldBlock, or -1

	closePending := func() {
		if start < 0 {
			return
		}
		ops = append(ops, EditOperation{Span: SpanFromBounds(base+start, base+oldOff), NewText: newText.String(), Source: source})
		newText.Reset()
		start = -1
	}

	for _, d := range diffs {
		n := tokenCount(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			closePending()
			for k := 0; k < n; k++ {
				oldOff += len(oldTokens[i])
				i++
			}
			j += n
		case diffmatchpatch.DiffDelete:
			if start < 0 {
				start = oldOff
			}
			for k := 0; k < n; k++ {
				oldOff += len(oldTokens[i])
				i++
			}
		case diffmatchpatch.DiffInsert:
			if start < 0 {
				start = oldOff
			}
			for k := 0; k < n; k++ {
				newText.WriteString(newTokens[j])
				j++
			}
		}
	}
	closePending()

	return ops
}

// Apply returns original with ops applied. ops must be a valid script for original (see Validate).
func Apply(original string, ops []EditOperation) string {
	return ApplyWithin(original, SpanFromBounds(0, len(original)), ops)
}

// ApplyWithin returns the text of span in original after applying ops, all of which must lie within span. It panics if an operation falls outside span or ops are
// out of order.
func ApplyWithin(original string, span TextSpan, ops []EditOperation) string {
	var b strings.Builder
	cur := span.Start
	for _, op := range ops {
		if op.Span.Start < cur || op.Span.End() > span.End() {
			panic(fmt.Errorf("ApplyWithin: operation %v outside %v or out of order", op, span))
		}
		b.WriteString(original[cur:op.Span.Start])
		b.WriteString(op.NewText)
		cur = op.Span.End()
	}
	b.WriteString(original[cur:span.End()])
	return b.String()
}
