package render

import (
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrMissingTranslator  = goerr.New("translator not configured")
	ErrMissingTranslation = goerr.New("translation missing")
)

// Translator resolves message keys for a locale.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// MissingTranslationHandler chooses the text shown when a key cannot be
// translated. The fallback is the untranslated text.
type MissingTranslationHandler func(locale, key, fallback string, err error) string

// Message keys used by renderers for page chrome.
const (
	KeySubmit   = "form.submit"
	KeyRequired = "form.required"
	KeyLocked   = "form.locked"
	KeyErrors   = "form.errors"
	KeyWarnings = "form.warnings"
)

// FieldLabelKey is the message key of a field label.
func FieldLabelKey(name string) string {
	return "field." + strings.TrimSpace(name)
}

// Catalog is a static translator keyed by locale then message key. Locales
// fall back from "rw-RW" to "rw".
type Catalog map[string]map[string]string

var _ Translator = Catalog(nil)

func (c Catalog) Translate(locale, key string, args ...any) (string, error) {
	for _, candidate := range localeChain(locale) {
		messages, ok := c[candidate]
		if !ok {
			continue
		}
		if msg, ok := messages[key]; ok {
			if len(args) > 0 {
				return fmt.Sprintf(msg, args...), nil
			}
			return msg, nil
		}
	}
	return "", goerr.Wrap(ErrMissingTranslation, "no message for key",
		goerr.V("locale", locale), goerr.V("key", key))
}

// DefaultCatalog carries the English chrome strings. Other locales come
// from configuration.
func DefaultCatalog() Catalog {
	return Catalog{
		"en": {
			KeySubmit:   "Save property",
			KeyRequired: "Required",
			KeyLocked:   "Verify the UPI to unlock the form.",
			KeyErrors:   "Please fix the following",
			KeyWarnings: "Please review",
		},
	}
}

// Merge copies every message of other into c, replacing existing keys.
func (c Catalog) Merge(other Catalog) Catalog {
	if c == nil {
		c = make(Catalog, len(other))
	}
	for locale, messages := range other {
		locale = strings.ToLower(strings.TrimSpace(locale))
		if c[locale] == nil {
			c[locale] = make(map[string]string, len(messages))
		}
		for key, msg := range messages {
			c[locale][key] = msg
		}
	}
	return c
}

// Localize translates key, returning fallback when no translation exists.
// onMissing may be nil.
func Localize(t Translator, locale, key, fallback string, onMissing MissingTranslationHandler) string {
	key = strings.TrimSpace(key)
	if key == "" {
		return fallback
	}

	if t == nil {
		if onMissing != nil {
			return onMissing(locale, key, fallback, ErrMissingTranslator)
		}
		return fallbackOrKey(fallback, key)
	}

	result, err := t.Translate(locale, key)
	if err == nil && strings.TrimSpace(result) != "" {
		return result
	}
	if onMissing != nil {
		return onMissing(locale, key, fallback, err)
	}
	return fallbackOrKey(fallback, key)
}

// LocalizeControls replaces control labels with their translations. Labels
// without a translation are kept.
func LocalizeControls(controls []Control, t Translator, locale string) {
	if t == nil {
		return
	}
	for i := range controls {
		controls[i].Label = Localize(t, locale, FieldLabelKey(controls[i].Name), controls[i].Label, nil)
	}
}

func fallbackOrKey(fallback, key string) string {
	if strings.TrimSpace(fallback) != "" {
		return fallback
	}
	return key
}

func localeChain(locale string) []string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if locale == "" {
		return []string{"en"}
	}
	chain := []string{locale}
	if base, _, ok := strings.Cut(locale, "-"); ok && base != "" {
		chain = append(chain, base)
	}
	if base, _, ok := strings.Cut(locale, "_"); ok && base != "" {
		chain = append(chain, base)
	}
	return chain
}
