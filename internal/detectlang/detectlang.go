package detectlang

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
)

// Lang represents a detected programming language.
type Lang string

const (
	LangUnknown     Lang = ""
	LangMultiple    Lang = "multiple"
	LangGo          Lang = "go"
	LangRuby        Lang = "rb"
	LangPython      Lang = "py"
	LangRust        Lang = "rs"
	LangJavaScript  Lang = "js"
	LangTypeScript  Lang = "ts"
	LangJava        Lang = "java"
	LangC           Lang = "c"
	LangCpp         Lang = "cpp"
	LangCSharp      Lang = "cs"
	LangVisualBasic Lang = "vb"
	LangFSharp      Lang = "fs"
	LangPHP         Lang = "php"
	LangSwift       Lang = "swift"
	LangKotlin      Lang = "kt"
	LangScala       Lang = "scala"
	LangObjectiveC  Lang = "objc"
	LangCSS         Lang = "css"
	LangSQL         Lang = "sql"
	LangLua         Lang = "lua"
	LangHaskell     Lang = "hs"
	LangShell       Lang = "sh"
	LangPowerShell  Lang = "ps1"
	LangYAML        Lang = "yaml"
	LangTOML        Lang = "toml"
)

var extToLang = map[string]Lang{
	".go":    LangGo,
	".rb":    LangRuby,
	".py":    LangPython,
	".rs":    LangRust,
	".js":    LangJavaScript,
	".mjs":   LangJavaScript,
	".cjs":   LangJavaScript,
	".jsx":   LangJavaScript,
	".ts":    LangTypeScript,
	".tsx":   LangTypeScript,
	".java":  LangJava,
	".c":     LangC,
	".h":     LangC,
	".cpp":   LangCpp,
	".cc":    LangCpp,
	".cxx":   LangCpp,
	".hpp":   LangCpp,
	".hh":    LangCpp,
	".hxx":   LangCpp,
	".cs":    LangCSharp,
	".csx":   LangCSharp,
	".vb":    LangVisualBasic,
	".bas":   LangVisualBasic,
	".fs":    LangFSharp,
	".fsx":   LangFSharp,
	".php":   LangPHP,
	".phtml": LangPHP,
	".swift": LangSwift,
	".kt":    LangKotlin,
	".kts":   LangKotlin,
	".scala": LangScala,
	".m":     LangObjectiveC,
	".mm":    LangObjectiveC,
	".css":   LangCSS,
	".sql":   LangSQL,
	".lua":   LangLua,
	".hs":    LangHaskell,
	".sh":    LangShell,
	".bash":  LangShell,
	".ps1":   LangPowerShell,
	".yaml":  LangYAML,
	".yml":   LangYAML,
	".toml":  LangTOML,
}

// fenceTags holds Markdown info strings that differ from the Lang value.
var fenceTags = map[Lang]string{
	LangObjectiveC:  "objectivec",
	LangVisualBasic: "vbnet",
	LangPowerShell:  "powershell",
	LangShell:       "bash",
}

// Detect returns the language indicated by path's extension (case-insensitive), or LangUnknown. It never returns LangMultiple and does not touch the file system.
func Detect(path string) Lang {
	return extToLang[strings.ToLower(filepath.Ext(path))]
}

// Extensions returns a copy of the extension table (lower-case extensions with the leading dot).
func Extensions() map[string]Lang {
	return maps.Clone(extToLang)
}

// DetectDir returns the language of dir's files (not its subdirectories) by plurality. It returns LangMultiple if several languages tie, and LangUnknown if no file
// has a known extension.
func DetectDir(dir string) (Lang, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return LangUnknown, fmt.Errorf("detectlang: read dir %s: %w", dir, err)
	}

	counts := make(map[Lang]int)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if lang := Detect(entry.Name()); lang != LangUnknown {
			counts[lang]++
		}
	}

	maxCount := 0
	best := LangUnknown
	tied := false
	for lang, count := range counts {
		switch {
		case count > maxCount:
			maxCount = count
			best = lang
			tied = false
		case count == maxCount:
			tied = true
		}
	}
	if tied {
		return LangMultiple, nil
	}
	return best, nil
}

// FenceTag returns the Markdown code fence info string for l (ex: "cs"), or "" for LangUnknown and LangMultiple.
func (l Lang) FenceTag() string {
	if l == LangUnknown || l == LangMultiple {
		return ""
	}
	if tag, ok := fenceTags[l]; ok {
		return tag
	}
	return string(l)
}
