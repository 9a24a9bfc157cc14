package locale

import (
	"fmt"
	"strings"
	"unicode"
)

// Locale selects the language of prompts and reply strings.
type Locale string

const (
	RU Locale = "ru"
	EN Locale = "en"
)

// All lists the supported locales in lookup-table order.
var All = []Locale{RU, EN}

// Parse accepts "ru"/"en" (any case, optional region suffix) and rejects everything else.
func Parse(s string) (Locale, error) {
	switch prefix(s) {
	case "ru":
		return RU, nil
	case "en":
		return EN, nil
	}
	return "", fmt.Errorf("unsupported locale %q", s)
}

// Detect picks the response locale. A "ru"/"en" hint wins; otherwise the text
// is RU only when Cyrillic letters strictly outnumber Latin ones, so a tie is EN.
func Detect(text, hint string) Locale {
	if loc, err := Parse(hint); err == nil {
		return loc
	}
	cyrillic, latin := 0, 0
	for _, r := range text {
		lr := unicode.ToLower(r)
		switch {
		case (lr >= 'а' && lr <= 'я') || lr == 'ё':
			cyrillic++
		case lr >= 'a' && lr <= 'z':
			latin++
		}
	}
	if cyrillic > latin {
		return RU
	}
	return EN
}

func prefix(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if len(s) < 2 {
		return ""
	}
	return s[:2]
}
