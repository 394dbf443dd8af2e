package openlibrary

// searchResponse matches the OpenLibrary search.json response. Doc fields
// are looser and partially typed compared to the primary provider.
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	CoverID          int      `json:"cover_i"`
	CoverEditionKey  string   `json:"cover_edition_key"`
	ISBN             []string `json:"isbn"`
	Subject          []string `json:"subject"`
	Language         []string `json:"language"`
	Publisher        []string `json:"publisher"`
	FirstPublishYear int      `json:"first_publish_year"`
	NumberOfPages    int      `json:"number_of_pages_median"`
	FirstSentence    []string `json:"first_sentence"`
}

// editionResponse matches the /isbn/{isbn}.json edition record; only the
// fields the work lookup needs.
type editionResponse struct {
	Works []struct {
		Key string `json:"key"`
	} `json:"works"`
	Description any `json:"description"`
}

// workResponse matches the /works/{id}.json record. Description may be a
// plain string or a {"type": ..., "value": ...} wrapper.
type workResponse struct {
	Description any `json:"description"`
}
