package annotate

import (
	"fmt"
	"strings"

	"github.com/codalotl/linkmerge/internal/coalesce"
)

// Comment is the rendered comment for one losing source of a conflict block.
type Comment struct {
	Source int    // Position of the losing source.
	Text   string // Comment text, including its surrounding line breaks.
}

// part is one labeled body of a comment, ex: "Before:" and the original text.
type part struct {
	label string
	body  string
}

type formatter func(b *strings.Builder, style CommentStyle, header string, parts []part, newline string)

var formatters = map[StyleKind]formatter{
	BlockStyle: formatBlock,
	LineStyle:  formatLines,
}

// Render returns one comment per entry of block, in entry order. label names a source position in the header; newline is the line break used between comment lines.
//
// Render panics if style.Kind is unknown.
func Render(block coalesce.ConflictBlock, style CommentStyle, strs Strings, label func(source int) string, newline string) []Comment {
	format, ok := formatters[style.Kind]
	if !ok {
		panic(fmt.Sprintf("annotate: unknown comment style kind %d", style.Kind))
	}

	comments := make([]Comment, 0, len(block.Entries))
	for _, e := range block.Entries {
		var parts []part
		switch e.Reason {
		case coalesce.Added:
			parts = []part{{strs.Added, e.After}}
		case coalesce.Removed:
			parts = []part{{strs.Removed, e.Before}}
		default:
			parts = []part{{strs.Before, e.Before}, {strs.After, e.After}}
		}

		var b strings.Builder
		format(&b, style, strs.Header(label(e.Source)), parts, newline)
		comments = append(comments, Comment{Source: e.Source, Text: b.String()})
	}
	return comments
}

// formatBlock writes:
//
//	/* header
//	Before:
//	...
//	*/
//
// preceded and followed by a line break.
func formatBlock(b *strings.Builder, _ CommentStyle, header string, parts []part, newline string) {
	b.WriteString(newline)
	b.WriteString("/* ")
	b.WriteString(header)
	b.WriteString(newline)
	for _, p := range parts {
		b.WriteString(p.label)
		b.WriteString(newline)
		b.WriteString(p.body)
		b.WriteString(newline)
	}
	b.WriteString("*/")
	b.WriteString(newline)
}

// formatLines writes every comment line (header, labels, and each body line) behind the style's token, preceded by a line break. Each line ends with a line break.
// The header line has no trailing space after the project label (Visual Studio's merge comments have one).
func formatLines(b *strings.Builder, style CommentStyle, header string, parts []part, newline string) {
	prefix := style.Token + " "
	writeLine := func(s string) {
		b.WriteString(prefix)
		b.WriteString(s)
		b.WriteString(newline)
	}

	b.WriteString(newline)
	writeLine(header)
	for _, p := range parts {
		writeLine(p.label)
		for _, line := range strings.Split(p.body, "\n") {
			writeLine(strings.TrimSuffix(line, "\r"))
		}
	}
}
