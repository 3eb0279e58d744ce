package annotate

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/codalotl/linkmerge/internal/detectlang"
)

// StyleKind selects a comment delimiter family.
type StyleKind int

// Comment delimiter families.
const (
	BlockStyle StyleKind = iota // "/* ... */"
	LineStyle                   // a prefix token on every line, e.g. "' " or "# "
)

// CommentStyle is how conflict comments are delimited. Construct it with CStyleBlock or LinePrefixed.
type CommentStyle struct {
	Kind  StyleKind
	Token string // Line prefix for LineStyle (without the trailing space). Empty for BlockStyle.
}

// CStyleBlock delimits comments with "/*" and "*/".
var CStyleBlock = CommentStyle{Kind: BlockStyle}

// LinePrefixed prefixes every comment line with token and a space.
func LinePrefixed(token string) CommentStyle {
	return CommentStyle{Kind: LineStyle, Token: token}
}

// String returns the style in the form ParseStyle accepts.
func (s CommentStyle) String() string {
	if s.Kind == LineStyle {
		return "line:" + s.Token
	}
	return "block"
}

// ParseStyle parses "block" or "line:TOKEN" (ex: "line:#", "line:'", "line://").
func ParseStyle(text string) (CommentStyle, error) {
	text = strings.TrimSpace(text)
	switch {
	case text == "block":
		return CStyleBlock, nil
	case strings.HasPrefix(text, "line:"):
		token := strings.TrimSpace(strings.TrimPrefix(text, "line:"))
		if token == "" {
			return CommentStyle{}, fmt.Errorf("comment style %q: missing line prefix token", text)
		}
		return LinePrefixed(token), nil
	default:
		return CommentStyle{}, fmt.Errorf("unknown comment style %q (want \"block\" or \"line:TOKEN\")", text)
	}
}

// StyleTable maps lower-case file extensions (with the leading dot) to comment styles.
type StyleTable map[string]CommentStyle

// langStyles is the comment style for each detectlang.Lang.
var langStyles = map[detectlang.Lang]CommentStyle{
	detectlang.LangGo:          CStyleBlock,
	detectlang.LangRust:        CStyleBlock,
	detectlang.LangJavaScript:  CStyleBlock,
	detectlang.LangTypeScript:  CStyleBlock,
	detectlang.LangJava:        CStyleBlock,
	detectlang.LangC:           CStyleBlock,
	detectlang.LangCpp:         CStyleBlock,
	detectlang.LangCSharp:      CStyleBlock,
	detectlang.LangPHP:         CStyleBlock,
	detectlang.LangSwift:       CStyleBlock,
	detectlang.LangKotlin:      CStyleBlock,
	detectlang.LangScala:       CStyleBlock,
	detectlang.LangObjectiveC:  CStyleBlock,
	detectlang.LangCSS:         CStyleBlock,
	detectlang.LangVisualBasic: LinePrefixed("'"),
	detectlang.LangFSharp:      LinePrefixed("//"),
	detectlang.LangRuby:        LinePrefixed("#"),
	detectlang.LangPython:      LinePrefixed("#"),
	detectlang.LangShell:       LinePrefixed("#"),
	detectlang.LangPowerShell:  LinePrefixed("#"),
	detectlang.LangYAML:        LinePrefixed("#"),
	detectlang.LangTOML:        LinePrefixed("#"),
	detectlang.LangSQL:         LinePrefixed("--"),
	detectlang.LangLua:         LinePrefixed("--"),
	detectlang.LangHaskell:     LinePrefixed("--"),
}

// StyleForLang returns the comment style for lang. It returns false for LangUnknown, LangMultiple, and languages without a known style.
func StyleForLang(lang detectlang.Lang) (CommentStyle, bool) {
	s, ok := langStyles[lang]
	return s, ok
}

// DefaultStyles returns the built-in extension table: every extension detectlang knows, with its language's style.
func DefaultStyles() StyleTable {
	table := make(StyleTable)
	for ext, lang := range detectlang.Extensions() {
		if s, ok := langStyles[lang]; ok {
			table[ext] = s
		}
	}
	return table
}

// ForPath returns the style for path's extension (case-insensitive). It returns false if the extension is unknown.
func (t StyleTable) ForPath(path string) (CommentStyle, bool) {
	s, ok := t[strings.ToLower(filepath.Ext(path))]
	return s, ok
}

// StyleForPath returns the built-in style for path's extension.
func StyleForPath(path string) (CommentStyle, bool) {
	return StyleForLang(detectlang.Detect(path))
}
