package cli

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"github.com/yuin/goldmark"
	"golang.org/x/term"

	"github.com/codalotl/linkmerge/internal/detectlang"
	"github.com/codalotl/linkmerge/internal/diff"
	"github.com/codalotl/linkmerge/internal/linkedmerge"
)

type reportFlags struct {
	inputFlags
	out  string
	html bool
}

func newReportCommand(g *globalFlags) *cobra.Command {
	f := &reportFlags{}
	cmd := &cobra.Command{
		Use:   "report --original FILE [flags] COPY...",
		Short: "Describe the conflicts between linked copies",
		Long: `Describe the conflicts between linked copies.

Writes a Markdown report (or HTML with --html) with one section per conflict, showing each losing project's text next to the original.
A one-line-per-conflict summary is printed to stderr.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := prepareJob(cmd, g, &f.inputFlags, args)
			if err != nil {
				return err
			}
			res, err := j.run(cmd.Context())
			if err != nil {
				return err
			}

			data := []byte(markdownReport(j, res))
			if f.html {
				var buf bytes.Buffer
				if err := goldmark.Convert(data, &buf); err != nil {
					return failed(fmt.Errorf("render html: %w", err))
				}
				data = buf.Bytes()
			}
			if err := writeOutput(cmd.OutOrStdout(), f.out, data); err != nil {
				return err
			}

			errW := cmd.ErrOrStderr()
			writeSummary(errW, j, res, isTerminal(errW))
			return nil
		},
	}
	addInputFlags(cmd, &f.inputFlags)
	cmd.Flags().StringVarP(&f.out, "out", "o", "", "write the report to `FILE` instead of stdout")
	cmd.Flags().BoolVar(&f.html, "html", false, "render the report as HTML")
	return cmd
}

// markdownReport describes res as a Markdown document.
func markdownReport(j *job, res *linkedmerge.Result) string {
	var b strings.Builder
	s := res.Stats

	fmt.Fprintf(&b, "# Merge report for `%s`\n\n", j.originalPath)
	fmt.Fprintf(&b, "- Linked copies: %d\n", s.LinkedCopies)
	fmt.Fprintf(&b, "- Copies with changes: %d\n", s.CopiesWithChanges)
	fmt.Fprintf(&b, "- Isolated changes: %d\n", s.IsolatedChanges)
	fmt.Fprintf(&b, "- Identical changes: %d\n", s.IdenticalChanges)
	fmt.Fprintf(&b, "- Conflicting changes: %d in %d blocks\n", s.ConflictSegments, s.ConflictBlocks)

	if len(res.Conflicts) == 0 {
		b.WriteString("\nNo conflicts.\n")
		return b.String()
	}

	tag := detectlang.Detect(j.originalPath).FenceTag()
	for i, c := range res.Conflicts {
		start, end := lineRange(j.original, c.Span)
		fmt.Fprintf(&b, "\n## Conflict %d: %s\n\n", i+1, lineLabel(start, end))
		fmt.Fprintf(&b, "Kept the text from **%s**.\n", j.labels[c.Winner])
		if len(c.Entries) == 0 {
			b.WriteString("\nThe other changes differ only in blank lines.\n")
		}
		for _, e := range c.Entries {
			fmt.Fprintf(&b, "\n### %s (%s)\n", e.Label, e.Reason)
			switch {
			case e.Before != "" && e.After != "":
				writeFenced(&b, "Before", e.Before, tag)
				writeFenced(&b, "After", e.After, tag)
			case e.After != "":
				writeFenced(&b, "Added", e.After, tag)
			default:
				writeFenced(&b, "Removed", e.Before, tag)
			}
		}
	}
	return b.String()
}

// writeFenced writes a titled code block. tag is the fence's info string (may be empty).
func writeFenced(b *strings.Builder, title, body, tag string) {
	f := fence(body)
	fmt.Fprintf(b, "\n%s:\n\n%s%s\n%s\n%s\n", title, f, tag, body, f)
}

// fence returns a backtick fence longer than any backtick run in body.
func fence(body string) string {
	longest, run := 0, 0
	for _, r := range body {
		if r == '`' {
			run++
			longest = max(longest, run)
		} else {
			run = 0
		}
	}
	return strings.Repeat("`", max(3, longest+1))
}

// lineRange returns the 1-based first and last lines of original that span covers. A line break ending the span does not start another line.
func lineRange(original string, span diff.TextSpan) (int, int) {
	start := strings.Count(original[:span.Start], "\n") + 1
	return start, start + strings.Count(strings.TrimSuffix(span.Slice(original), "\n"), "\n")
}

func lineLabel(start, end int) string {
	if start == end {
		return fmt.Sprintf("line %d", start)
	}
	return fmt.Sprintf("lines %d-%d", start, end)
}

// writeSummary writes one aligned line per conflict: location, winning project, and losing projects.
func writeSummary(w io.Writer, j *job, res *linkedmerge.Result, colored bool) {
	paint := func(attr color.Attribute) *color.Color {
		c := color.New(attr)
		if colored {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
		return c
	}
	locColor, winColor, loseColor := paint(color.FgYellow), paint(color.FgGreen), paint(color.FgRed)

	fmt.Fprintf(w, "%s: %d conflicts (%d copies, %d with changes)\n", j.originalPath, len(res.Conflicts), res.Stats.LinkedCopies, res.Stats.CopiesWithChanges)

	locs := make([]string, len(res.Conflicts))
	locWidth, winWidth := 0, 0
	for i, c := range res.Conflicts {
		start, end := lineRange(j.original, c.Span)
		locs[i] = lineLabel(start, end)
		locWidth = max(locWidth, runewidth.StringWidth(locs[i]))
		winWidth = max(winWidth, runewidth.StringWidth(j.labels[c.Winner]))
	}
	for i, c := range res.Conflicts {
		var losers []string
		for _, e := range c.Entries {
			losers = append(losers, fmt.Sprintf("%s (%s)", e.Label, e.Reason))
		}
		fmt.Fprintf(w, "  %s  %s  %s\n",
			locColor.Sprint(runewidth.FillRight(locs[i], locWidth)),
			winColor.Sprint(runewidth.FillRight(j.labels[c.Winner], winWidth)),
			loseColor.Sprint(strings.Join(losers, ", ")),
		)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && f != nil && term.IsTerminal(int(f.Fd()))
}
