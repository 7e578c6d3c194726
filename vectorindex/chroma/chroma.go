package chroma

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/amikos-tech/chroma-go/pkg/embeddings"

	"github.com/jotted/jotted/vectorindex"
)

const (
	titleKey     = "title"
	bodyKey      = "body"
	createdAtKey = "createdAt"
)

// Index implements vectorindex.Index backed by a ChromaDB collection.
type Index struct {
	client     chromago.Client
	collection chromago.Collection
}

var _ vectorindex.Index = (*Index)(nil)

// NewIndex connects to a ChromaDB server and gets or creates the named
// collection.
func NewIndex(ctx context.Context, url, collectionName string) (*Index, error) {
	client, err := chromago.NewHTTPClient(chromago.WithBaseURL(url))
	if err != nil {
		return nil, fmt.Errorf("creating chroma client: %w", err)
	}

	collection, err := client.GetOrCreateCollection(
		ctx,
		collectionName,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "note embeddings"),
			),
		),
	)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("getting collection %q: %w", collectionName, err)
	}

	return &Index{client: client, collection: collection}, nil
}

// Upsert inserts or replaces the vector and payload for a note.
func (x *Index) Upsert(ctx context.Context, id string, vector []float32, payload vectorindex.Payload) error {
	metadata := chromago.NewDocumentMetadata(
		chromago.NewStringAttribute(titleKey, payload.Title),
		chromago.NewStringAttribute(bodyKey, payload.Body),
		chromago.NewIntAttribute(createdAtKey, payload.CreatedAt.UnixMicro()),
	)

	err := x.collection.Upsert(ctx,
		chromago.WithIDs(chromago.DocumentID(id)),
		chromago.WithEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithMetadatas(metadata),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", vectorindex.ErrIndexWrite, err)
	}
	return nil
}

// Search queries the collection and converts cosine distances to
// similarity scores, dropping hits below threshold.
func (x *Index) Search(ctx context.Context, vector []float32, limit int, threshold float64) ([]vectorindex.Hit, error) {
	results, err := x.collection.Query(ctx,
		chromago.WithQueryEmbeddings(embeddings.NewEmbeddingFromFloat32(vector)),
		chromago.WithNResults(limit),
	)
	if err != nil {
		return nil, err
	}

	idGroups := results.GetIDGroups()
	distanceGroups := results.GetDistancesGroups()
	metadataGroups := results.GetMetadatasGroups()
	if len(idGroups) == 0 {
		return nil, nil
	}

	hits := make([]vectorindex.Hit, 0, len(idGroups[0]))
	for i, docID := range idGroups[0] {
		// Chroma reports cosine distance; similarity is its complement.
		score := 1 - float64(distanceGroups[0][i])
		if score < threshold {
			continue
		}

		hit := vectorindex.Hit{ID: string(docID), Score: score}
		if i < len(metadataGroups[0]) {
			hit.Payload = decodePayload(metadataGroups[0][i])
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// decodePayload extracts the mirrored note snapshot from document
// metadata. The metadata type exposes no value accessors, so it goes
// through a JSON round trip.
func decodePayload(metadata chromago.DocumentMetadata) vectorindex.Payload {
	var payload vectorindex.Payload
	if metadata == nil {
		return payload
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return payload
	}

	var fields struct {
		Title     string `json:"title"`
		Body      string `json:"body"`
		CreatedAt int64  `json:"createdAt"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return payload
	}

	payload.Title = fields.Title
	payload.Body = fields.Body
	if fields.CreatedAt != 0 {
		payload.CreatedAt = time.UnixMicro(fields.CreatedAt).UTC()
	}
	return payload
}

// Delete removes a note's vector. Unknown ids are not an error.
func (x *Index) Delete(ctx context.Context, id string) error {
	err := x.collection.Delete(ctx, chromago.WithIDsDelete(chromago.DocumentID(id)))
	if err != nil {
		return fmt.Errorf("%w: %v", vectorindex.ErrIndexWrite, err)
	}
	return nil
}

// Ping verifies the collection is reachable.
func (x *Index) Ping(ctx context.Context) error {
	_, err := x.collection.Count(ctx)
	return err
}

// Count returns the number of vectors in the collection.
func (x *Index) Count(ctx context.Context) (int64, error) {
	count, err := x.collection.Count(ctx)
	if err != nil {
		return 0, err
	}
	return int64(count), nil
}

// Close releases the client connection.
func (x *Index) Close() error {
	return x.client.Close()
}
