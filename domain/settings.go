package domain

import (
	"fmt"
	"strings"
)

type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"
)

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

// Preferences represents the user's display options.
type Preferences struct {
	Language Language `json:"language"`
	Theme    Theme    `json:"theme"`
}

// DefaultPreferences is what a fresh workspace starts with.
func DefaultPreferences() Preferences {
	return Preferences{Language: LanguageArabic, Theme: ThemeLight}
}

func ParseLanguage(raw string) (Language, error) {
	switch l := Language(strings.ToLower(strings.TrimSpace(raw))); l {
	case LanguageArabic, LanguageEnglish:
		return l, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidLanguage, raw)
}

func ParseTheme(raw string) (Theme, error) {
	switch th := Theme(strings.ToLower(strings.TrimSpace(raw))); th {
	case ThemeLight, ThemeDark:
		return th, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTheme, raw)
}

// Validate rejects unknown languages and themes.
func (p Preferences) Validate() error {
	if _, err := ParseLanguage(string(p.Language)); err != nil {
		return err
	}
	if _, err := ParseTheme(string(p.Theme)); err != nil {
		return err
	}
	return nil
}
