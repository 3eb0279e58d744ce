package annotate

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"

	"github.com/codalotl/linkmerge/internal/coalesce"
	"github.com/codalotl/linkmerge/internal/detectlang"
)

func projectLabel(src int) string {
	return fmt.Sprintf("ProjectName%d", src)
}

func texts(comments []Comment) []string {
	var out []string
	for _, c := range comments {
		out = append(out, c.Text)
	}
	return out
}

func TestRender(t *testing.T) {
	tests := []struct {
		name    string
		entries []coalesce.Entry
		style   CommentStyle
		newline string
		want    []string
	}{
		{
			name:    "changed block",
			entries: []coalesce.Entry{{Source: 1, Reason: coalesce.Changed, Before: "Two\nThree", After: "TwoZ\nThreeZ"}},
			style:   CStyleBlock,
			newline: "\n",
			want:    []string{"\n/* Unmerged change from project ProjectName1\nBefore:\nTwo\nThree\nAfter:\nTwoZ\nThreeZ\n*/\n"},
		},
		{
			name: "one comment per losing source",
			entries: []coalesce.Entry{
				{Source: 2, Reason: coalesce.Changed, Before: "A", After: "C"},
				{Source: 3, Reason: coalesce.Removed, Before: "A"},
			},
			style:   CStyleBlock,
			newline: "\n",
			want: []string{
				"\n/* Unmerged change from project ProjectName2\nBefore:\nA\nAfter:\nC\n*/\n",
				"\n/* Unmerged change from project ProjectName3\nRemoved:\nA\n*/\n",
			},
		},
		{
			name:    "added block",
			entries: []coalesce.Entry{{Source: 1, Reason: coalesce.Added, After: "B"}},
			style:   CStyleBlock,
			newline: "\n",
			want:    []string{"\n/* Unmerged change from project ProjectName1\nAdded:\nB\n*/\n"},
		},
		{
			name:    "added line prefixed",
			entries: []coalesce.Entry{{Source: 1, Reason: coalesce.Added, After: "B"}},
			style:   LinePrefixed("'"),
			newline: "\n",
			want:    []string{"\n' Unmerged change from project ProjectName1\n' Added:\n' B\n"},
		},
		{
			name:    "changed line prefixed with crlf",
			entries: []coalesce.Entry{{Source: 4, Reason: coalesce.Changed, Before: "Two\r\nThree", After: "TwoZ"}},
			style:   LinePrefixed("#"),
			newline: "\r\n",
			want:    []string{"\r\n# Unmerged change from project ProjectName4\r\n# Before:\r\n# Two\r\n# Three\r\n# After:\r\n# TwoZ\r\n"},
		},
		{
			name:    "removed line prefixed",
			entries: []coalesce.Entry{{Source: 0, Reason: coalesce.Removed, Before: "x\n\ny"}},
			style:   LinePrefixed("--"),
			newline: "\n",
			want:    []string{"\n-- Unmerged change from project ProjectName0\n-- Removed:\n-- x\n-- \n-- y\n"},
		},
		{
			name:    "no entries",
			style:   CStyleBlock,
			newline: "\n",
			want:    nil,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			block := coalesce.ConflictBlock{Entries: tc.entries}
			got := Render(block, tc.style, DefaultStrings(), projectLabel, tc.newline)
			require.Len(t, got, len(tc.entries))
			for i, c := range got {
				assert.Equal(t, tc.entries[i].Source, c.Source)
			}
			assert.Equal(t, tc.want, texts(got))
		})
	}
}

func TestRender_UnknownStylePanics(t *testing.T) {
	block := coalesce.ConflictBlock{Entries: []coalesce.Entry{{Source: 1, Reason: coalesce.Added, After: "B"}}}
	require.Panics(t, func() {
		Render(block, CommentStyle{Kind: StyleKind(9)}, DefaultStrings(), projectLabel, "\n")
	})
}

func TestRender_CustomStrings(t *testing.T) {
	strs := Strings{
		Header:  func(label string) string { return "from " + label },
		Before:  "was:",
		After:   "now:",
		Added:   "new:",
		Removed: "gone:",
	}
	block := coalesce.ConflictBlock{Entries: []coalesce.Entry{{Source: 1, Reason: coalesce.Changed, Before: "a", After: "b"}}}
	got := Render(block, CStyleBlock, strs, func(int) string { return "web" }, "\n")
	require.Equal(t, []string{"\n/* from web\nwas:\na\nnow:\nb\n*/\n"}, texts(got))
}

func TestCatalogStrings(t *testing.T) {
	en := DefaultStrings()
	assert.Equal(t, "Unmerged change from project Foo", en.Header("Foo"))
	assert.Equal(t, "Before:", en.Before)
	assert.Equal(t, "After:", en.After)
	assert.Equal(t, "Added:", en.Added)
	assert.Equal(t, "Removed:", en.Removed)

	de := CatalogStrings(language.German, NewCatalog())
	assert.Equal(t, "Nicht zusammengeführte Änderung aus Projekt Foo", de.Header("Foo"))
	assert.Equal(t, "Vorher:", de.Before)
	assert.Equal(t, "Nachher:", de.After)
	assert.Equal(t, "Hinzugefügt:", de.Added)
	assert.Equal(t, "Entfernt:", de.Removed)

	cat := NewCatalog()
	require.NoError(t, cat.SetString(language.English, KeyBefore, "Original:"))
	custom := CatalogStrings(language.English, cat)
	assert.Equal(t, "Original:", custom.Before)
	assert.Equal(t, "After:", custom.After)
}

func TestMatchLanguage(t *testing.T) {
	assert.Equal(t, language.English, MatchLanguage(language.English))
	assert.Equal(t, language.English, MatchLanguage(language.MustParse("en-GB")))
	assert.Equal(t, language.German, MatchLanguage(language.MustParse("de-AT")))
	assert.Equal(t, language.English, MatchLanguage(language.Japanese))
}

func TestParseStyle(t *testing.T) {
	tests := []struct {
		in      string
		want    CommentStyle
		wantErr bool
	}{
		{in: "block", want: CStyleBlock},
		{in: " block ", want: CStyleBlock},
		{in: "line:#", want: LinePrefixed("#")},
		{in: "line:'", want: LinePrefixed("'")},
		{in: "line: // ", want: LinePrefixed("//")},
		{in: "line:", wantErr: true},
		{in: "xml", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseStyle(tc.in)
		if tc.wantErr {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)

		// String round-trips.
		again, err := ParseStyle(got.String())
		require.NoError(t, err)
		assert.Equal(t, got, again)
	}
}

func TestStyleTable(t *testing.T) {
	table := DefaultStyles()

	s, ok := table.ForPath("src/Program.cs")
	require.True(t, ok)
	assert.Equal(t, CStyleBlock, s)

	s, ok = table.ForPath("Module1.VB")
	require.True(t, ok)
	assert.Equal(t, LinePrefixed("'"), s)

	s, ok = table.ForPath("/tmp/x/setup.py")
	require.True(t, ok)
	assert.Equal(t, LinePrefixed("#"), s)

	_, ok = table.ForPath("README")
	assert.False(t, ok)

	s, ok = StyleForPath("db/schema.SQL")
	require.True(t, ok)
	assert.Equal(t, LinePrefixed("--"), s)

	// DefaultStyles returns a fresh table.
	table[".cs"] = LinePrefixed("#")
	s, _ = DefaultStyles().ForPath("a.cs")
	assert.Equal(t, CStyleBlock, s)
}

func TestStyleForLang(t *testing.T) {
	for ext, lang := range detectlang.Extensions() {
		_, ok := StyleForLang(lang)
		assert.True(t, ok, "no style for %s (%s)", lang, ext)
	}
	_, ok := StyleForLang(detectlang.LangMultiple)
	assert.False(t, ok)
	_, ok = StyleForLang(detectlang.LangUnknown)
	assert.False(t, ok)
}
