package diff

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCompute_Operations(t *testing.T) {
	type opExpectation struct {
		start  int
		length int
		text   string
	}

	tests := []struct {
		name     string
		original string
		edited   string
		want     []opExpectation
	}{
		{
			name:     "equal",
			original: "a\nb\n",
			edited:   "a\nb\n",
			want:     nil,
		},
		{
			name:     "both empty",
			original: "",
			edited:   "",
			want:     nil,
		},
		{
			name:     "add whole file",
			original: "",
			edited:   "a\nb\n",
			want:     []opExpectation{{0, 0, "a\nb\n"}},
		},
		{
			name:     "delete whole file",
			original: "a\nb\n",
			edited:   "",
			want:     []opExpectation{{0, 4, ""}},
		},
		{
			name:     "no newlines - replace one word",
			original: "a b c d e",
			edited:   "a z c d e",
			want:     []opExpectation{{2, 1, "z"}},
		},
		{
			name:     "no newlines - replace two words",
			original: "a b c d e",
			edited:   "a q1 c z1 e",
			want:     []opExpectation{{2, 1, "q1"}, {6, 1, "z1"}},
		},
		{
			name:     "no newlines - append word",
			original: "a b c",
			edited:   "a b c d",
			want:     []opExpectation{{5, 0, " d"}},
		},
		{
			name:     "replace middle line",
			original: "a\nb\nc\n",
			edited:   "a\nX\nc\n",
			want:     []opExpectation{{2, 1, "X"}},
		},
		{
			name:     "delete middle line",
			original: "a\nb\nc\n",
			edited:   "a\nc\n",
			want:     []opExpectation{{2, 2, ""}},
		},
		{
			name:     "insert at end",
			original: "a\nb\n",
			edited:   "a\nb\nc\n",
			want:     []opExpectation{{4, 0, "c\n"}},
		},
		{
			name:     "multiple edits",
			original: "a\nb\nc\nd\ne\n",
			edited:   "a\nz\nc\ny\ne\n",
			want:     []opExpectation{{2, 1, "z"}, {6, 1, "y"}},
		},
		{
			name:     "adjacent changed lines are refined per word",
			original: "One\nTwo\nThree\nFour",
			edited:   "One\nTwoY\nThreeY\nFour",
			want:     []opExpectation{{4, 3, "TwoY"}, {8, 5, "ThreeY"}},
		},
		{
			name:     "windows - rn just kinda works",
			original: "a\r\nb\r\n",
			edited:   "a\r\nX\r\n",
			want:     []opExpectation{{3, 1, "X"}},
		},
		{
			name:     "duplicate lines prefer the longest unchanged prefix",
			original: "a\na\n",
			edited:   "a\n",
			want:     []opExpectation{{2, 2, ""}},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ops := Compute(tc.original, tc.edited, 7)

			require.NoError(t, Validate(tc.original, ops))
			require.Equal(t, tc.edited, Apply(tc.original, ops))

			var got []opExpectation
			for _, op := range ops {
				require.Equal(t, 7, op.Source)
				got = append(got, opExpectation{start: op.Span.Start, length: op.Span.Length, text: op.NewText})
			}
			require.Equal(t, tc.want, got)
		})
	}
}

func TestCompute_ReproducesEditedText(t *testing.T) {
	pairs := [][2]string{
		{"", "x"},
		{"x", ""},
		{"func a() {\n\treturn 1\n}\n", "func a() {\n\treturn 2\n}\n\nfunc b() {}\n"},
		{"héllo wörld\n", "héllo wörld, 你好\n"},
		{"one\r\ntwo\r\nthree", "one\r\n2\r\nthree\r\nfour"},
		{"a; b; c; d; e;", "a; zzz; c; xx; e;"},
		{"no trailing newline", "no trailing newline\n"},
		{"\n\n\n", "\n"},
	}

	for i, p := range pairs {
		t.Run(fmt.Sprintf("pair %d", i), func(t *testing.T) {
			ops := Compute(p[0], p[1], 0)
			require.NoError(t, Validate(p[0], ops))
			require.Equal(t, p[1], Apply(p[0], ops))

			// Operations are never adjacent.
			for k := 1; k < len(ops); k++ {
				require.Less(t, ops[k-1].Span.End(), ops[k].Span.Start)
			}
		})
	}
}

func TestWordTokens(t *testing.T) {
	require.Nil(t, wordTokens(""))
	require.Equal(t, []string{"foo", " ", "bar", "\n", "baz"}, wordTokens("foo bar\nbaz"))
	require.Equal(t, []string{"a", "\r\n", "b"}, wordTokens("a\r\nb"))
}

func TestTokenEncoder(t *testing.T) {
	var enc tokenEncoder
	a, ok := enc.encode([]string{"x", "y", "x"})
	require.True(t, ok)
	b, ok := enc.encode([]string{"y", "z"})
	require.True(t, ok)

	require.Equal(t, []rune{0, 1, 0}, a)
	require.Equal(t, []rune{1, 2}, b)

	require.Equal(t, rune(0xD7FF), indexToRune(0xD7FF))
	require.Equal(t, rune(0xE000), indexToRune(0xD800))
}

func TestApplyWithin(t *testing.T) {
	original := "abcdef"
	ops := []EditOperation{{Span: TextSpan{Start: 2, Length: 1}, NewText: "X"}}

	require.Equal(t, "bXd", ApplyWithin(original, SpanFromBounds(1, 4), ops))
	require.Equal(t, "abXdef", Apply(original, ops))

	require.Panics(t, func() {
		ApplyWithin(original, SpanFromBounds(3, 4), ops)
	})
}
