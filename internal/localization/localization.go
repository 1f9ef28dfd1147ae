// Package localization provides the translated user-facing messages shown on
// re-rendered forms.
//
// Translations are JSON objects (key → text), one file per language named
// after the language code (e.g. "bn.json"). The portal's own files are
// embedded in the binary; NewLocalizer accepts any fs.FS so tests or
// deployments can supply their own.
package localization

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

// FallbackLang is consulted when a key is missing in the requested language.
const FallbackLang = "en"

//go:embed locales/*.json
var embedded embed.FS

// Localizer holds the translations for every loaded language. It is
// read-only after construction.
type Localizer struct {
	translations map[string]map[string]string
}

// NewLocalizer loads every *.json file in dir of fsys.
func NewLocalizer(fsys fs.FS, dir string) (*Localizer, error) {
	l := &Localizer{
		translations: make(map[string]map[string]string),
	}

	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read localization directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		lang := strings.TrimSuffix(entry.Name(), ".json")
		data, err := fs.ReadFile(fsys, path.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read localization file %s: %w", entry.Name(), err)
		}

		var translations map[string]string
		if err := json.Unmarshal(data, &translations); err != nil {
			return nil, fmt.Errorf("failed to parse localization file %s: %w", entry.Name(), err)
		}

		l.translations[lang] = translations
	}

	return l, nil
}

// Default returns the Localizer for the embedded translations.
func Default() (*Localizer, error) {
	return NewLocalizer(embedded, "locales")
}

// Has reports whether lang was loaded.
func (l *Localizer) Has(lang string) bool {
	_, ok := l.translations[lang]
	return ok
}

// GetString returns the localized string for key in lang, falling back to
// English and finally to the key itself.
func (l *Localizer) GetString(lang, key string) string {
	if langTranslations, ok := l.translations[lang]; ok {
		if value, ok := langTranslations[key]; ok {
			return value
		}
	}

	if lang != FallbackLang {
		if enTranslations, ok := l.translations[FallbackLang]; ok {
			if value, ok := enTranslations[key]; ok {
				return value
			}
		}
	}

	return key
}
