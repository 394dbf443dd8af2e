package bookmeta

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "bare four-digit year",
			input:    "1999",
			expected: "1999-01-01",
		},
		{
			name:     "year and month",
			input:    "2001-07",
			expected: "2001-07-01",
		},
		{
			name:     "full ISO date",
			input:    "1991-05-01",
			expected: "1991-05-01",
		},
		{
			name:     "slash-separated date",
			input:    "1991/05/01",
			expected: "1991-05-01",
		},
		{
			name:     "long month name",
			input:    "May 1, 1991",
			expected: "1991-05-01",
		},
		{
			name:     "month and year only",
			input:    "May 1991",
			expected: "1991-05-01",
		},
		{
			name:     "year embedded in free text",
			input:    "First published 1965 in the US",
			expected: "1965-01-01",
		},
		{
			name:     "empty input",
			input:    "",
			expected: UnknownDate,
		},
		{
			name:     "garbage input",
			input:    "someday soon",
			expected: UnknownDate,
		},
		{
			name:     "already unknown",
			input:    UnknownDate,
			expected: UnknownDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, NormalizeDate(tt.input))
		})
	}
}

func TestNormalizeDateShapeInvariant(t *testing.T) {
	isoShape := regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

	inputs := []string{
		"", "1999", "2024-03", "2024-03-15", "nonsense", "May 1, 1991",
		"circa 1850", "12", "999", "2999", "March 2020",
	}
	for _, input := range inputs {
		got := NormalizeDate(input)
		if got != UnknownDate {
			require.Regexp(t, isoShape, got, "input %q", input)
		}
	}
}

func TestNormalizeLanguage(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "empty defaults to english", input: "", expected: "en"},
		{name: "two letter passthrough", input: "fi", expected: "fi"},
		{name: "uppercase folded", input: "EN", expected: "en"},
		{name: "eng collapses", input: "eng", expected: "en"},
		{name: "fre collapses", input: "fre", expected: "fr"},
		{name: "deu collapses", input: "deu", expected: "de"},
		{name: "regional variant trimmed", input: "en-US", expected: "en"},
		{name: "unknown three letter truncated", input: "xyz", expected: "xy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, NormalizeLanguage(tt.input))
		})
	}
}

func TestSecureURL(t *testing.T) {
	require.Equal(t, "https://covers.example/x.jpg", SecureURL("http://covers.example/x.jpg"))
	require.Equal(t, "https://covers.example/x.jpg", SecureURL("https://covers.example/x.jpg"))
	require.Equal(t, "", SecureURL(""))
}

func TestNormalizeISBN(t *testing.T) {
	require.Equal(t, "9780316769488", NormalizeISBN("978-0-316-76948-8"))
	require.Equal(t, "9780316769488", NormalizeISBN("978 0 316 76948 8"))
	require.Equal(t, "9780316769488", NormalizeISBN("9780316769488"))
}

func TestDedupKey(t *testing.T) {
	tests := []struct {
		name   string
		titleA string
		authA  string
		titleB string
		authB  string
		equal  bool
	}{
		{
			name:   "case and punctuation ignored",
			titleA: "Dune", authA: "Frank Herbert",
			titleB: "DUNE!", authB: "frank herbert",
			equal: true,
		},
		{
			name:   "whitespace collapsed",
			titleA: "The  Left   Hand of Darkness", authA: "Ursula K. Le Guin",
			titleB: "The Left Hand of Darkness", authB: "ursula k. le guin",
			equal: true,
		},
		{
			name:   "different authors differ",
			titleA: "Dune", authA: "Frank Herbert",
			titleB: "Dune", authB: "Brian Herbert",
			equal: false,
		},
		{
			name:   "different titles differ",
			titleA: "Dune", authA: "Frank Herbert",
			titleB: "Dune Messiah", authB: "Frank Herbert",
			equal: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keyA := DedupKey(tt.titleA, tt.authA)
			keyB := DedupKey(tt.titleB, tt.authB)
			if tt.equal {
				require.Equal(t, keyA, keyB)
			} else {
				require.NotEqual(t, keyA, keyB)
			}
		})
	}
}
