// Package i18n resolves dotted translation keys ("booking.steps.trip") against nested JSON catalogs.
package i18n

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/jeremywohl/flatten/v2"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var embedded embed.FS

var placeholder = regexp.MustCompile(`\{([A-Za-z0-9_]+)\}`)

type Translator struct {
	defaultLang string
	catalogs    map[string]map[string]string
	langs       []string
	matcher     language.Matcher
}

// New loads the catalogs shipped with the binary.
func New(defaultLang string) (*Translator, error) {
	return Load(embedded, "locales", defaultLang)
}

// Load reads every <lang>.json in dir. defaultLang must be one of them.
func Load(fsys fs.FS, dir, defaultLang string) (*Translator, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, err
	}
	t := &Translator{defaultLang: defaultLang, catalogs: make(map[string]map[string]string)}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".json" {
			continue
		}
		lang := strings.TrimSuffix(e.Name(), ".json")
		raw, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		catalog, err := flattenCatalog(raw)
		if err != nil {
			return nil, fmt.Errorf("locale %s: %w", lang, err)
		}
		t.catalogs[lang] = catalog
		t.langs = append(t.langs, lang)
	}
	if _, ok := t.catalogs[defaultLang]; !ok {
		return nil, fmt.Errorf("default language %q has no catalog", defaultLang)
	}
	sort.Strings(t.langs)

	// the default language goes first so the matcher falls back to it
	tags := []language.Tag{language.Make(defaultLang)}
	for _, l := range t.langs {
		if l != defaultLang {
			tags = append(tags, language.Make(l))
		}
	}
	t.matcher = language.NewMatcher(tags)
	return t, nil
}

func flattenCatalog(raw []byte) (map[string]string, error) {
	nested := map[string]any{}
	if err := json.Unmarshal(raw, &nested); err != nil {
		return nil, err
	}
	flat, err := flatten.Flatten(nested, "", flatten.DotStyle)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(flat))
	for k, v := range flat {
		if s, ok := v.(string); ok {
			out[k] = s
			continue
		}
		out[k] = fmt.Sprint(v)
	}
	return out, nil
}

func (t *Translator) DefaultLanguage() string { return t.defaultLang }

func (t *Translator) Languages() []string {
	return append([]string(nil), t.langs...)
}

func (t *Translator) Supports(lang string) bool {
	_, ok := t.catalogs[lang]
	return ok
}

// T resolves key in lang, then in the default language, then returns the key itself.
// Args fill positional placeholders ({0}, {1}); a single map[string]any fills named ones ({name}).
func (t *Translator) T(lang, key string, args ...any) string {
	msg, ok := t.catalogs[lang][key]
	if !ok {
		msg, ok = t.catalogs[t.defaultLang][key]
	}
	if !ok {
		return key
	}
	if len(args) == 0 {
		return msg
	}
	return interpolate(msg, args)
}

func interpolate(msg string, args []any) string {
	var named map[string]any
	if len(args) == 1 {
		named, _ = args[0].(map[string]any)
	}
	return placeholder.ReplaceAllStringFunc(msg, func(m string) string {
		name := m[1 : len(m)-1]
		if named != nil {
			if v, ok := named[name]; ok {
				return fmt.Sprint(v)
			}
			return m
		}
		i, err := strconv.Atoi(name)
		if err != nil || i < 0 || i >= len(args) {
			return m
		}
		return fmt.Sprint(args[i])
	})
}

// Negotiate picks the page language: explicit query, then the lang cookie, then Accept-Language,
// then the default.
func (t *Translator) Negotiate(query, cookie, acceptLanguage string) string {
	for _, candidate := range []string{query, cookie} {
		if c := strings.ToLower(strings.TrimSpace(candidate)); t.Supports(c) {
			return c
		}
	}
	if strings.TrimSpace(acceptLanguage) == "" {
		return t.defaultLang
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return t.defaultLang
	}
	_, idx, conf := t.matcher.Match(tags...)
	if conf == language.No {
		return t.defaultLang
	}
	if idx == 0 {
		return t.defaultLang
	}
	others := make([]string, 0, len(t.langs))
	for _, l := range t.langs {
		if l != t.defaultLang {
			others = append(others, l)
		}
	}
	return others[idx-1]
}

// Has reports whether key resolves in lang or the default language.
func (t *Translator) Has(lang, key string) bool {
	if _, ok := t.catalogs[lang][key]; ok {
		return true
	}
	_, ok := t.catalogs[t.defaultLang][key]
	return ok
}
