package openlibrary

import (
	"fmt"
	"strings"

	"github.com/lepinkainen/libris/internal/bookmeta"
)

// mapDoc converts one search.json doc into a normalized record.
func (c *Client) mapDoc(doc searchDoc) bookmeta.Record {
	record := bookmeta.Record{
		ID:          "ol:" + strings.TrimPrefix(doc.Key, "/works/"),
		Title:       doc.Title,
		Authors:     append([]string(nil), doc.AuthorName...),
		ISBN:        pickISBN(doc.ISBN),
		Categories:  append([]string(nil), doc.Subject...),
		PageCount:   doc.NumberOfPages,
		Description: firstSentence(doc.FirstSentence),
	}

	if doc.FirstPublishYear > 0 {
		record.PublishedDate = fmt.Sprintf("%d", doc.FirstPublishYear)
	}
	if len(doc.Language) > 0 {
		record.Language = doc.Language[0]
	}
	if len(doc.Publisher) > 0 {
		record.Publisher = doc.Publisher[0]
	}

	if doc.CoverID > 0 {
		record.CoverURL = c.CoverURLByID(doc.CoverID)
	} else {
		fallbacks := make(map[string]string)
		if record.ISBN != "" {
			fallbacks[bookmeta.CoverStrategyISBN] = c.CoverURLByISBN(bookmeta.NormalizeISBN(record.ISBN))
		}
		if doc.CoverEditionKey != "" {
			fallbacks[bookmeta.CoverStrategyOLID] = c.CoverURLByOLID(doc.CoverEditionKey)
		}
		if len(fallbacks) > 0 {
			record.CoverFallbacks = fallbacks
		}
	}

	record.Finalize()
	return record
}

// pickISBN prefers the first 13-digit ISBN, then the first 10-digit one.
// The search index exposes an untyped flat list, so length is the only
// discriminator available.
func pickISBN(isbns []string) string {
	var isbn10 string
	for _, raw := range isbns {
		normalized := bookmeta.NormalizeISBN(raw)
		switch len(normalized) {
		case 13:
			return normalized
		case 10:
			if isbn10 == "" {
				isbn10 = normalized
			}
		}
	}
	return isbn10
}

// firstSentence returns the doc's first-sentence stand-in when present. It
// is a short placeholder the enrichment pass treats as improvable.
func firstSentence(sentences []string) string {
	if len(sentences) == 0 {
		return ""
	}
	return strings.TrimSpace(sentences[0])
}
