package linkedmerge

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/codalotl/linkmerge/internal/annotate"
	"github.com/codalotl/linkmerge/internal/classify"
	"github.com/codalotl/linkmerge/internal/coalesce"
	"github.com/codalotl/linkmerge/internal/diff"
)

// Source is one linked copy of the file. ID identifies the copy's project and must be unique within a merge.
type Source struct {
	ID   int
	Text string
}

// Options configure a Merger. The zero value is usable.
type Options struct {
	Style   annotate.CommentStyle // Comment style. The zero value is annotate.CStyleBlock.
	Strings annotate.Strings      // Comment strings. If Header is nil, annotate.DefaultStrings() is used.
	Label   func(id int) string   // Names a source in comment headers. Defaults to the decimal ID.
	Workers int                   // Max concurrent diffs. <= 0 means runtime.GOMAXPROCS(0).
	Diff    diff.Options
	Logger  *zap.Logger // If nil, nothing is logged.
}

// Merger merges linked copies of a file. It holds no per-merge state and is safe for concurrent use.
type Merger struct {
	opts Options
}

// New returns a Merger with opts, filling in defaults.
func New(opts Options) *Merger {
	if opts.Strings.Header == nil {
		opts.Strings = annotate.DefaultStrings()
	}
	if opts.Label == nil {
		opts.Label = strconv.Itoa
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Merger{opts: opts}
}

// Merge merges sources with default options. See (*Merger).Merge.
func Merge(ctx context.Context, original string, sources []Source) (*Result, error) {
	return New(Options{}).Merge(ctx, original, sources)
}

// Merge folds sources (edited copies of original) into one text.
//
// Changes made by one source, or identically by several, are applied. Where sources changed the same region differently, the first of them (in sources order)
// wins and its text stays live; every other source's text for the region is preserved in a comment placed before it. With no sources, the result is original.
//
// The only error returned is ctx.Err() when ctx is cancelled; a cancelled merge returns a nil Result. Merge panics if two sources share an ID.
func (m *Merger) Merge(ctx context.Context, original string, sources []Source) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	checkUniqueIDs(sources)

	if len(sources) == 0 {
		return &Result{Text: original}, nil
	}

	scripts, err := m.diffAll(ctx, original, sources)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	segments := classify.Classify(original, scripts)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	blocks := coalesce.Coalesce(original, segments)
	res := m.render(original, sources, segments, blocks)
	res.Stats = computeStats(sources, scripts, segments, blocks)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.opts.Logger.Debug("merged linked copies",
		zap.Int("copies", res.Stats.LinkedCopies),
		zap.Int("copies_with_changes", res.Stats.CopiesWithChanges),
		zap.Int("isolated", res.Stats.IsolatedChanges),
		zap.Int("identical", res.Stats.IdenticalChanges),
		zap.Int("conflicting", res.Stats.ConflictSegments),
		zap.Int("conflict_blocks", res.Stats.ConflictBlocks),
	)
	return res, nil
}

// diffAll diffs every source against original, at most Workers at a time. scripts[i] belongs to sources[i].
func (m *Merger) diffAll(ctx context.Context, original string, sources []Source) ([][]diff.EditOperation, error) {
	scripts := make([][]diff.EditOperation, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(m.opts.Workers)
	for i, src := range sources {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scripts[i] = diff.ComputeWithOptions(original, src.Text, i, m.opts.Diff)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scripts, nil
}

// render builds the merged text: each segment's live text, with every block's comments inserted at the block's anchor (Span.Start).
func (m *Merger) render(original string, sources []Source, segments []classify.Segment, blocks []coalesce.ConflictBlock) *Result {
	newline := detectNewline(original)
	res := &Result{}
	var out strings.Builder

	emit := func(block coalesce.ConflictBlock) {
		start := out.Len()
		comments := annotate.Render(block, m.opts.Style, m.opts.Strings, func(src int) string { return m.opts.Label(sources[src].ID) }, newline)
		c := Conflict{Span: block.Span, Winner: sources[block.Winner].ID}
		for i, e := range block.Entries {
			out.WriteString(comments[i].Text)
			c.Entries = append(c.Entries, Entry{
				Source:  sources[e.Source].ID,
				Label:   m.opts.Label(sources[e.Source].ID),
				Reason:  e.Reason,
				Before:  e.Before,
				After:   e.After,
				Comment: comments[i].Text,
			})
		}
		c.CommentSpan = diff.SpanFromBounds(start, out.Len())
		res.Conflicts = append(res.Conflicts, c)
	}

	next := 0
	for _, seg := range segments {
		if seg.Kind == classify.Unchanged {
			pos := seg.Span.Start
			for next < len(blocks) && blocks[next].Span.Start < seg.Span.End() {
				anchor := blocks[next].Span.Start
				out.WriteString(original[pos:anchor])
				pos = anchor
				emit(blocks[next])
				next++
			}
			out.WriteString(original[pos:seg.Span.End()])
			continue
		}
		for next < len(blocks) && blocks[next].Span.Start <= seg.Span.Start {
			emit(blocks[next])
			next++
		}
		out.WriteString(seg.Text(original))
	}
	for ; next < len(blocks); next++ {
		emit(blocks[next])
	}

	res.Text = out.String()
	return res
}

func computeStats(sources []Source, scripts [][]diff.EditOperation, segments []classify.Segment, blocks []coalesce.ConflictBlock) Stats {
	s := Stats{LinkedCopies: len(sources), ConflictBlocks: len(blocks)}
	for _, script := range scripts {
		if len(script) > 0 {
			s.CopiesWithChanges++
		}
	}
	for _, seg := range segments {
		switch seg.Kind {
		case classify.SingleChange:
			s.IsolatedChanges++
		case classify.IdenticalChange:
			s.IdenticalChanges++
		case classify.Conflict:
			s.ConflictSegments++
		}
	}
	return s
}

// detectNewline returns "\r\n" if most line breaks in text are "\r\n", otherwise "\n".
func detectNewline(text string) string {
	crlf := strings.Count(text, "\r\n")
	lf := strings.Count(text, "\n") - crlf
	if crlf > lf {
		return "\r\n"
	}
	return "\n"
}

func checkUniqueIDs(sources []Source) {
	seen := make(map[int]bool, len(sources))
	for _, src := range sources {
		if seen[src.ID] {
			panic(fmt.Errorf("linkedmerge: duplicate source ID %d", src.ID))
		}
		seen[src.ID] = true
	}
}
