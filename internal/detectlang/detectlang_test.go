package detectlang

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDetectKnown(t *testing.T) {
	tcs := []struct {
		name     string
		filename string
		lang     Lang
	}{
		{name: "Go", filename: "main.go", lang: LangGo},
		{name: "Ruby", filename: "script.rb", lang: LangRuby},
		{name: "Python", filename: "handler.py", lang: LangPython},
		{name: "TypeScript", filename: "component.tsx", lang: LangTypeScript},
		{name: "CHeader", filename: "util.h", lang: LangC},
		{name: "CSharp", filename: "Program.cs", lang: LangCSharp},
		{name: "CSharpUpper", filename: "src/Program.CS", lang: LangCSharp},
		{name: "VisualBasic", filename: "Module1.vb", lang: LangVisualBasic},
		{name: "FSharp", filename: "Lib.fs", lang: LangFSharp},
		{name: "SQL", filename: "schema.sql", lang: LangSQL},
		{name: "YAML", filename: "ci.yml", lang: LangYAML},
		{name: "ObjectiveC", filename: "main.mm", lang: LangObjectiveC},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			if lang := Detect(tc.filename); lang != tc.lang {
				t.Fatalf("expected %q, got %q", tc.lang, lang)
			}
		})
	}
}

func TestDetectUnknown(t *testing.T) {
	for _, name := range []string{"README.txt", "Makefile", "", "dir/.hidden"} {
		if lang := Detect(name); lang != LangUnknown {
			t.Fatalf("Detect(%q): expected unknown, got %q", name, lang)
		}
	}
}

func TestExtensionsIsACopy(t *testing.T) {
	exts := Extensions()
	if exts[".go"] != LangGo {
		t.Fatalf("expected .go to be Go")
	}
	exts[".go"] = LangRuby
	if Detect("x.go") != LangGo {
		t.Fatalf("Extensions must return a copy")
	}
}

func TestDetectDirPlurality(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "main.go"), "package main\n")
	mustWriteFile(t, filepath.Join(dir, "util.go"), "package main\n")
	mustWriteFile(t, filepath.Join(dir, "script.rb"), "puts 'hi'\n")
	mustWriteFile(t, filepath.Join(dir, "notes.txt"), "hi\n")
	mustMkdir(t, filepath.Join(dir, "sub"))
	mustWriteFile(t, filepath.Join(dir, "sub", "a.py"), "")
	mustWriteFile(t, filepath.Join(dir, "sub", "b.py"), "")
	mustWriteFile(t, filepath.Join(dir, "sub", "c.py"), "")

	lang, err := DetectDir(dir)
	if err != nil {
		t.Fatalf("DetectDir returned error: %v", err)
	}
	if lang != LangGo {
		t.Fatalf("expected %q, got %q", LangGo, lang)
	}
}

func TestDetectDirTie(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "main.go"), "")
	mustWriteFile(t, filepath.Join(dir, "script.rb"), "")

	lang, err := DetectDir(dir)
	if err != nil {
		t.Fatalf("DetectDir returned error: %v", err)
	}
	if lang != LangMultiple {
		t.Fatalf("expected %q, got %q", LangMultiple, lang)
	}
}

func TestDetectDirNoKnownFiles(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "README"), "")

	lang, err := DetectDir(dir)
	if err != nil {
		t.Fatalf("DetectDir returned error: %v", err)
	}
	if lang != LangUnknown {
		t.Fatalf("expected unknown, got %q", lang)
	}
}

func TestDetectDirMissing(t *testing.T) {
	if _, err := DetectDir(filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatalf("expected error for missing dir")
	}
}

func TestFenceTag(t *testing.T) {
	tcs := map[Lang]string{
		LangCSharp:      "cs",
		LangGo:          "go",
		LangVisualBasic: "vbnet",
		LangObjectiveC:  "objectivec",
		LangShell:       "bash",
		LangUnknown:     "",
		LangMultiple:    "",
	}
	for lang, want := range tcs {
		if got := lang.FenceTag(); got != want {
			t.Fatalf("FenceTag(%q): expected %q, got %q", lang, want, got)
		}
	}
}

func mustWriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mustMkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}
