package annotate

import (
	"fmt"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. They double as the English messages.
const (
	KeyHeader  = "Unmerged change from project %s"
	KeyBefore  = "Before:"
	KeyAfter   = "After:"
	KeyAdded   = "Added:"
	KeyRemoved = "Removed:"
)

// Keys lists every message key Strings needs.
var Keys = []string{KeyHeader, KeyBefore, KeyAfter, KeyAdded, KeyRemoved}

// Strings is the text that appears in conflict comments. It is passed to Render explicitly; there is no process-wide default.
type Strings struct {
	Header  func(label string) string // ex: "Unmerged change from project Foo"
	Before  string
	After   string
	Added   string
	Removed string
}

var builtinMessages = map[language.Tag]map[string]string{
	language.English: {
		KeyHeader:  "Unmerged change from project %s",
		KeyBefore:  "Before:",
		KeyAfter:   "After:",
		KeyAdded:   "Added:",
		KeyRemoved: "Removed:",
	},
	language.German: {
		KeyHeader:  "Nicht zusammengeführte Änderung aus Projekt %s",
		KeyBefore:  "Vorher:",
		KeyAfter:   "Nachher:",
		KeyAdded:   "Hinzugefügt:",
		KeyRemoved: "Entfernt:",
	},
}

var builtinLanguages = []language.Tag{language.English, language.German}

var builtinMatcher = language.NewMatcher(builtinLanguages)

// MatchLanguage returns the built-in language closest to tag, or English if none is close.
func MatchLanguage(tag language.Tag) language.Tag {
	_, idx, conf := builtinMatcher.Match(tag)
	if conf == language.No {
		return language.English
	}
	return builtinLanguages[idx]
}

// NewCatalog returns a catalog builder holding the built-in messages, falling back to English. Callers may add or override messages with SetString before passing it
// to CatalogStrings.
func NewCatalog() *catalog.Builder {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range builtinMessages {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(fmt.Errorf("annotate: built-in message %q: %v", key, err))
			}
		}
	}
	return b
}

// CatalogStrings returns Strings translated for tag using cat.
func CatalogStrings(tag language.Tag, cat catalog.Catalog) Strings {
	p := message.NewPrinter(tag, message.Catalog(cat))
	return Strings{
		Header:  func(label string) string { return p.Sprintf(KeyHeader, label) },
		Before:  p.Sprintf(KeyBefore),
		After:   p.Sprintf(KeyAfter),
		Added:   p.Sprintf(KeyAdded),
		Removed: p.Sprintf(KeyRemoved),
	}
}

// DefaultStrings returns the English Strings.
func DefaultStrings() Strings {
	return CatalogStrings(language.English, NewCatalog())
}
