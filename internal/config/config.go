// Package config loads linkmerge's configuration from defaults, a YAML config file, and LINKMERGE_* environment variables (lowest to highest precedence).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
	"golang.org/x/text/language"

	"github.com/codalotl/linkmerge/internal/annotate"
	"github.com/codalotl/linkmerge/internal/detectlang"
)

// StyleAuto picks the comment style from the original file's extension.
const StyleAuto = "auto"

// FileName is the config file looked up (without extension) when no explicit path is given.
const FileName = ".linkmerge"

// EnvPrefix prefixes environment variables that override config keys, ex: LINKMERGE_WORKERS, LINKMERGE_STRINGS_BEFORE.
const EnvPrefix = "LINKMERGE"

// keyDelimiter separates nested keys. Extensions in the styles map start with '.', so viper's default delimiter cannot be used.
const keyDelimiter = "::"

// stringKeys maps keys of the strings section to message keys.
var stringKeys = map[string]string{
	"header":  annotate.KeyHeader,
	"before":  annotate.KeyBefore,
	"after":   annotate.KeyAfter,
	"added":   annotate.KeyAdded,
	"removed": annotate.KeyRemoved,
}

// Config is linkmerge's configuration.
type Config struct {
	// Workers is the max number of copies diffed concurrently. Defaults to GOMAXPROCS.
	Workers int `json:"workers" mapstructure:"workers"`

	// Style is "auto", "block", or "line:TOKEN". Defaults to "auto".
	Style string `json:"style" mapstructure:"style"`

	// Styles overrides or extends the extension table used by "auto". Keys are extensions (ex: ".vb"); values are "block" or "line:TOKEN".
	Styles map[string]string `json:"styles,omitempty" mapstructure:"styles"`

	// Lang is the BCP 47 language of comment text. Defaults to "en".
	Lang string `json:"lang" mapstructure:"lang"`

	// Strings overrides comment text for Lang. Keys: header (must contain %s for the project), before, after, added, removed.
	Strings map[string]string `json:"strings,omitempty" mapstructure:"strings"`

	// DiffTimeout bounds each diff. 0 (the default) means no limit, which keeps output deterministic.
	DiffTimeout time.Duration `json:"diff_timeout" mapstructure:"diff_timeout"`

	// File is the config file that was read, if any.
	File string `json:"-" mapstructure:"-"`
}

// Load reads the configuration. If path is non-empty, that file must exist. Otherwise FileName (.yaml, .yml, .json, .toml) is looked up in the working directory and
// then in the user config dir's "linkmerge" directory; a missing file is not an error.
func Load(path string) (Config, error) {
	v := viper.NewWithOptions(viper.KeyDelimiter(keyDelimiter))
	v.SetDefault("workers", runtime.GOMAXPROCS(0))
	v.SetDefault("style", StyleAuto)
	v.SetDefault("lang", "en")
	v.SetDefault("diff_timeout", time.Duration(0))
	for key := range stringKeys {
		v.SetDefault("strings"+keyDelimiter+key, "")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(keyDelimiter, "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName(FileName)
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "linkmerge"))
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("load configuration: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.Strings = nonEmpty(cfg.Strings)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.Workers <= 0 {
		return fmt.Errorf("invalid configuration: workers must be > 0 (got %d)", c.Workers)
	}
	if c.DiffTimeout < 0 {
		return fmt.Errorf("invalid configuration: diff_timeout must be >= 0 (got %s)", c.DiffTimeout)
	}
	if c.Style != StyleAuto {
		if _, err := annotate.ParseStyle(c.Style); err != nil {
			return fmt.Errorf("invalid configuration: style: %w", err)
		}
	}
	for ext, styleText := range c.Styles {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("invalid configuration: styles: extension %q must start with '.'", ext)
		}
		if _, err := annotate.ParseStyle(styleText); err != nil {
			return fmt.Errorf("invalid configuration: styles[%s]: %w", ext, err)
		}
	}
	if _, err := language.Parse(c.Lang); err != nil {
		return fmt.Errorf("invalid configuration: lang %q: %w", c.Lang, err)
	}
	for key, val := range c.Strings {
		if _, ok := stringKeys[key]; !ok {
			return fmt.Errorf("invalid configuration: unknown strings key %q (want one of %s)", key, strings.Join(sortedKeys(stringKeys), ", "))
		}
		if key == "header" && strings.Count(val, "%s") != 1 {
			return fmt.Errorf("invalid configuration: strings.header must contain %%s exactly once (got %q)", val)
		}
	}
	return nil
}

// StyleTable returns the built-in extension table with Styles applied.
func (c Config) StyleTable() (annotate.StyleTable, error) {
	table := annotate.DefaultStyles()
	for ext, styleText := range c.Styles {
		s, err := annotate.ParseStyle(styleText)
		if err != nil {
			return nil, fmt.Errorf("styles[%s]: %w", ext, err)
		}
		table[strings.ToLower(ext)] = s
	}
	return table, nil
}

// ResolveStyle returns the comment style for a file at path. If Style is "auto" and the extension is unknown, the dominant language of the file's directory decides;
// failing that, it returns annotate.CStyleBlock.
func (c Config) ResolveStyle(path string) (annotate.CommentStyle, error) {
	if c.Style != StyleAuto {
		return annotate.ParseStyle(c.Style)
	}
	table, err := c.StyleTable()
	if err != nil {
		return annotate.CommentStyle{}, err
	}
	if s, ok := table.ForPath(path); ok {
		return s, nil
	}
	if lang, err := detectlang.DetectDir(filepath.Dir(path)); err == nil {
		if s, ok := annotate.StyleForLang(lang); ok {
			return s, nil
		}
	}
	return annotate.CStyleBlock, nil
}

// CommentStrings returns the comment strings for Lang with Strings applied.
func (c Config) CommentStrings() (annotate.Strings, error) {
	tag, err := language.Parse(c.Lang)
	if err != nil {
		return annotate.Strings{}, fmt.Errorf("lang %q: %w", c.Lang, err)
	}
	tag = annotate.MatchLanguage(tag)

	cat := annotate.NewCatalog()
	for key, val := range c.Strings {
		msgKey, ok := stringKeys[key]
		if !ok {
			return annotate.Strings{}, fmt.Errorf("unknown strings key %q", key)
		}
		if err := cat.SetString(tag, msgKey, escapeMessage(key, val)); err != nil {
			return annotate.Strings{}, fmt.Errorf("strings.%s: %w", key, err)
		}
	}
	return annotate.CatalogStrings(tag, cat), nil
}

// WriteJSON writes c as indented JSON.
func WriteJSON(w io.Writer, c Config) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(c)
}

// escapeMessage escapes '%' in an override so it prints literally. The header keeps its one %s for the project label.
func escapeMessage(key, val string) string {
	val = strings.ReplaceAll(val, "%", "%%")
	if key == "header" {
		val = strings.Replace(val, "%%s", "%s", 1)
	}
	return val
}

func nonEmpty(m map[string]string) map[string]string {
	var out map[string]string
	for k, v := range m {
		if v == "" {
			continue
		}
		if out == nil {
			out = make(map[string]string)
		}
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
