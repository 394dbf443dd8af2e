package bookmeta

import (
	"fmt"
	"strings"
	"time"
	"unicode"
)

// threeLetterLanguages maps the ISO 639-2 codes the catalog providers
// actually emit to their two-letter equivalents.
var threeLetterLanguages = map[string]string{
	"eng": "en",
	"fre": "fr",
	"fra": "fr",
	"ger": "de",
	"deu": "de",
	"spa": "es",
	"ita": "it",
	"fin": "fi",
	"swe": "sv",
	"jpn": "ja",
	"rus": "ru",
	"por": "pt",
	"dut": "nl",
	"nld": "nl",
	"pol": "pl",
	"chi": "zh",
	"zho": "zh",
}

// dateLayouts are tried in order against provider publish dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"January 2, 2006",
	"Jan 2, 2006",
	"January 2006",
	"Jan 2006",
	"2 January 2006",
}

// NormalizeDate maps a provider publish date to YYYY-MM-DD. A bare
// four-digit year becomes YYYY-01-01, a year-month becomes YYYY-MM-01, and
// anything unresolvable becomes the UnknownDate sentinel.
func NormalizeDate(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" || s == UnknownDate {
		return UnknownDate
	}

	if isYear(s) {
		return s + "-01-01"
	}
	if len(s) == 7 && s[4] == '-' && isDigits(s[:4]) && isDigits(s[5:]) {
		return s + "-01"
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}

	// Some providers append a trailing time or embed a year in free text;
	// fall back to the first four-digit run that looks like a year.
	if year := extractYear(s); year != "" {
		return year + "-01-01"
	}

	return UnknownDate
}

// NormalizeLanguage lowercases a language code and collapses it to two
// letters. Empty input defaults to "en".
func NormalizeLanguage(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return "en"
	}
	if len(s) == 2 {
		return s
	}
	if mapped, ok := threeLetterLanguages[s]; ok {
		return mapped
	}
	// Provider-specific variants like "en-US" or unknown three-letter codes.
	if idx := strings.IndexAny(s, "-_"); idx == 2 {
		return s[:2]
	}
	if len(s) >= 2 {
		return s[:2]
	}
	return "en"
}

// SecureURL upgrades an insecure scheme to https. It never downgrades and
// leaves empty or already-secure URLs untouched.
func SecureURL(url string) string {
	if strings.HasPrefix(url, "http://") {
		return "https://" + strings.TrimPrefix(url, "http://")
	}
	return url
}

// NormalizeISBN strips hyphens and spaces so the ISBN can serve as a
// lookup key.
func NormalizeISBN(isbn string) string {
	s := strings.ReplaceAll(isbn, "-", "")
	return strings.ReplaceAll(s, " ", "")
}

// DedupKey derives the cross-provider duplicate-detection key: the title
// lower-cased, punctuation stripped and whitespace collapsed, joined with
// the lower-cased primary author.
func DedupKey(title, primaryAuthor string) string {
	return fmt.Sprintf("%s|%s", foldTitle(title), strings.ToLower(strings.TrimSpace(primaryAuthor)))
}

func foldTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	lastSpace := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		default:
			// Punctuation contributes nothing to work identity.
		}
	}
	return strings.TrimSpace(b.String())
}

func isYear(s string) bool {
	return len(s) == 4 && isDigits(s)
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

func extractYear(s string) string {
	for i := 0; i+4 <= len(s); i++ {
		if isDigits(s[i:i+4]) &&
			(i == 0 || !isDigits(s[i-1:i])) &&
			(i+4 == len(s) || !isDigits(s[i+4:i+5])) {
			year := s[i : i+4]
			if year >= "1000" && year <= "2999" {
				return year
			}
		}
	}
	return ""
}
