package badger

import (
	"fmt"

	"github.com/blevesearch/bleve/v2"

	"github.com/jotted/jotted/core"
)

// titleBoost weights title matches twice as heavily as body matches.
const titleBoost = 2.0

// scoredID pairs a note ID with its full-text relevance score.
type scoredID struct {
	id    string
	score float64
}

// textIndex maintains an in-memory full-text index over note titles and
// bodies. The index is rebuilt from the primary store on open and kept in
// sync on every write.
type textIndex struct {
	idx bleve.Index
}

func newTextIndex() (*textIndex, error) {
	mapping := bleve.NewIndexMapping()
	idx, err := bleve.NewMemOnly(mapping)
	if err != nil {
		return nil, fmt.Errorf("creating text index: %w", err)
	}
	return &textIndex{idx: idx}, nil
}

func (t *textIndex) index(note *core.Note) error {
	return t.idx.Index(note.ID, map[string]any{
		"title": note.Title,
		"body":  note.Body,
	})
}

func (t *textIndex) remove(id string) error {
	return t.idx.Delete(id)
}

// search runs the query against title and body fields and returns matching
// note IDs ordered by descending relevance.
func (t *textIndex) search(query string, skip, limit int) ([]scoredID, error) {
	titleQuery := bleve.NewMatchQuery(query)
	titleQuery.SetField("title")
	titleQuery.SetBoost(titleBoost)

	bodyQuery := bleve.NewMatchQuery(query)
	bodyQuery.SetField("body")

	combined := bleve.NewDisjunctionQuery(titleQuery, bodyQuery)
	req := bleve.NewSearchRequestOptions(combined, limit, skip, false)

	res, err := t.idx.Search(req)
	if err != nil {
		return nil, err
	}

	matches := make([]scoredID, 0, len(res.Hits))
	for _, hit := range res.Hits {
		matches = append(matches, scoredID{id: hit.ID, score: hit.Score})
	}
	return matches, nil
}

func (t *textIndex) close() error {
	return t.idx.Close()
}
