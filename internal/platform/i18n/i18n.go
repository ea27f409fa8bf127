// Package i18n loads embedded locale catalogs and resolves translated
// storefront copy. Catalogs live under locales/<tag>/storefront.yaml; the
// base locale must always be present and is the fallback for missing keys.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the canonical source locale for catalogs.
const BaseLocale = "en-US"

var supportedTags = []language.Tag{
	language.MustParse("en-US"),
	language.MustParse("ar"),
}

var matcher = language.NewMatcher(supportedTags)

//go:embed locales/*/*.yaml
var embeddedCatalogFS embed.FS

var defaultBundle = mustLoadEmbedded()

// SupportedTags returns the list of supported language tags.
func SupportedTags() []language.Tag {
	return append([]language.Tag(nil), supportedTags...)
}

// DefaultTag returns the default language tag.
func DefaultTag() language.Tag {
	return supportedTags[0]
}

// ParseTag resolves a user-provided locale value to a supported tag.
func ParseTag(value string) (language.Tag, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return language.Tag{}, false
	}
	tag, err := language.Parse(trimmed)
	if err != nil {
		return language.Tag{}, false
	}
	_, idx, conf := matcher.Match(tag)
	if conf < language.High {
		return language.Tag{}, false
	}
	return supportedTags[idx], true
}

// MatchTags picks the best supported tag for the preference-ordered tags.
func MatchTags(tags []language.Tag) language.Tag {
	if len(tags) == 0 {
		return DefaultTag()
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return DefaultTag()
	}
	return supportedTags[idx]
}

// Dir returns the text direction for a tag.
func Dir(tag language.Tag) string {
	base, _ := tag.Base()
	switch base.String() {
	case "ar", "he", "fa", "ur":
		return "rtl"
	default:
		return "ltr"
	}
}

type catalogFile struct {
	Locale   string            `yaml:"locale"`
	Messages map[string]string `yaml:"messages"`
}

// Bundle contains all locale catalogs loaded from the embedded filesystem.
type Bundle struct {
	locales map[string]map[string]string
}

// Default returns the process-wide embedded catalog bundle.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded loads catalog files embedded in this package.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embeddedCatalogFS)
}

// LoadFromFS loads catalog files from the provided filesystem.
func LoadFromFS(catalogFS fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(catalogFS, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	bundle := &Bundle{locales: map[string]map[string]string{}}
	for _, path := range paths {
		data, err := fs.ReadFile(catalogFS, path)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", path, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", path, err)
		}
		if err := bundle.addFile(path, file); err != nil {
			return nil, err
		}
	}

	if !bundle.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return bundle, nil
}

func (b *Bundle) addFile(path string, file catalogFile) error {
	localeFromPath := filepath.Base(filepath.Dir(path))

	locale := strings.TrimSpace(file.Locale)
	if locale == "" {
		return fmt.Errorf("catalog %s: locale is required", path)
	}
	if locale != localeFromPath {
		return fmt.Errorf("catalog %s: locale %q must match path locale %q", path, locale, localeFromPath)
	}
	if file.Messages == nil {
		return fmt.Errorf("catalog %s: messages map is required", path)
	}

	messages, ok := b.locales[locale]
	if !ok {
		messages = map[string]string{}
		b.locales[locale] = messages
	}
	for key, value := range file.Messages {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			return fmt.Errorf("catalog %s: message key cannot be blank", path)
		}
		if _, exists := messages[trimmedKey]; exists {
			return fmt.Errorf("catalog %s: duplicate key %q in locale %q", path, trimmedKey, locale)
		}
		messages[trimmedKey] = value
	}
	return nil
}

// HasLocale reports whether the locale exists in this bundle.
func (b *Bundle) HasLocale(locale string) bool {
	if b == nil {
		return false
	}
	_, ok := b.locales[strings.TrimSpace(locale)]
	return ok
}

// Locales returns all available locale identifiers.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.locales))
	for locale := range b.locales {
		out = append(out, locale)
	}
	sort.Strings(out)
	return out
}

// LocaleMessages returns a copy of all messages for a locale.
func (b *Bundle) LocaleMessages(locale string) map[string]string {
	if b == nil {
		return nil
	}
	messages, ok := b.locales[strings.TrimSpace(locale)]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(messages))
	for key, value := range messages {
		out[key] = value
	}
	return out
}

// Localizer resolves messages for one locale with base-locale fallback.
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
	locale  map[string]string
	base    map[string]string
}

// Localizer returns a localizer for the supplied tag.
func (b *Bundle) Localizer(tag language.Tag) Localizer {
	loc := Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag),
	}
	if b != nil {
		loc.locale = b.locales[tag.String()]
		loc.base = b.locales[BaseLocale]
	}
	return loc
}

// Tag returns the localizer's language tag.
func (l Localizer) Tag() language.Tag {
	return l.tag
}

// T returns the translated message for key, falling back to the base locale
// and finally to the key itself.
func (l Localizer) T(key string) string {
	if value, ok := l.locale[key]; ok {
		return value
	}
	if value, ok := l.base[key]; ok {
		return value
	}
	return key
}

// TF returns the translated message for key with {placeholder} values
// substituted from vars.
func (l Localizer) TF(key string, vars map[string]string) string {
	value := l.T(key)
	for name, replacement := range vars {
		value = strings.ReplaceAll(value, "{"+name+"}", replacement)
	}
	return value
}

// TN returns the translated message for key with the {count} placeholder
// replaced by a locale-formatted count.
func (l Localizer) TN(key string, count int) string {
	return l.TF(key, map[string]string{"count": l.printer.Sprintf("%d", count)})
}

// Price formats a monetary amount with locale-aware digits.
func (l Localizer) Price(amount float64) string {
	return l.printer.Sprintf("$%.2f", amount)
}

func mustLoadEmbedded() *Bundle {
	bundle, err := LoadEmbedded()
	if err != nil {
		panic(fmt.Sprintf("load embedded locale catalogs: %v", err))
	}
	return bundle
}
