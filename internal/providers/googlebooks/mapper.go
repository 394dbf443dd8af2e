package googlebooks

import (
	"strings"

	"github.com/lepinkainen/libris/internal/bookmeta"
	"github.com/lepinkainen/libris/internal/providers/openlibrary"
)

// mapVolume converts one Google Books volume into a normalized record.
func mapVolume(item volume) bookmeta.Record {
	info := item.VolumeInfo

	record := bookmeta.Record{
		ID:            "gb:" + item.ID,
		Title:         info.Title,
		Authors:       append([]string(nil), info.Authors...),
		PublishedDate: info.PublishedDate,
		Description:   info.Description,
		ISBN:          pickISBN(info.IndustryIdentifiers),
		Language:      info.Language,
		Publisher:     info.Publisher,
		Categories:    append([]string(nil), info.Categories...),
		PageCount:     info.PageCount,
	}

	record.CoverURL = pickCoverURL(info.ImageLinks)
	if record.CoverURL == "" && record.ISBN != "" {
		record.CoverFallbacks = map[string]string{
			bookmeta.CoverStrategyISBN: openlibrary.CoverURLForISBN(bookmeta.NormalizeISBN(record.ISBN)),
		}
	}

	record.Finalize()
	return record
}

// pickISBN prefers ISBN-13 over ISBN-10, taking the first match in that
// priority order from the typed identifier list.
func pickISBN(identifiers []industryIdentifier) string {
	for _, wanted := range []string{"ISBN_13", "ISBN_10"} {
		for _, id := range identifiers {
			if id.Type == wanted && id.Identifier != "" {
				return id.Identifier
			}
		}
	}
	return ""
}

// pickCoverURL prefers the largest available image variant and rewrites the
// thumbnail zoom parameter to the full-size value.
func pickCoverURL(links imageLinks) string {
	for _, candidate := range []string{links.ExtraLarge, links.Large, links.Medium, links.Thumbnail, links.SmallThumbnail} {
		if candidate != "" {
			return strings.Replace(candidate, "zoom=1", "zoom=0", 1)
		}
	}
	return ""
}
