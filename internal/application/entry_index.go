package application

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8"

	"github.com/diaryfi/diaryfi-api/internal/domain/entity"
)

// EntryIndexer keeps the search index in step with the entry store and
// answers full-text queries with matching entry ids.
type EntryIndexer interface {
	Index(ctx context.Context, e *entity.Entry) error
	Delete(ctx context.Context, entryID string) error
	Search(ctx context.Context, userID, query string, limit int) ([]string, error)
}

// ESEntryIndexer indexes entries into Elasticsearch. Only the searchable
// fields are stored; the entry store remains the source of truth.
type ESEntryIndexer struct {
	client *elasticsearch.Client
	index  string
}

func NewESEntryIndexer(client *elasticsearch.Client, index string) *ESEntryIndexer {
	return &ESEntryIndexer{client: client, index: index}
}

type entryDoc struct {
	UserID      string `json:"user_id"`
	JournalID   string `json:"journal_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CreatedAt   string `json:"created_at"`
}

func (i *ESEntryIndexer) Index(ctx context.Context, e *entity.Entry) error {
	doc := entryDoc{
		UserID:      e.UserID,
		JournalID:   e.JournalID,
		Title:       e.Title,
		Description: e.Description,
		CreatedAt:   e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	res, err := i.client.Index(i.index, bytes.NewReader(body),
		i.client.Index.WithDocumentID(e.ID),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index entry %s: %s", e.ID, res.String())
	}
	return nil
}

func (i *ESEntryIndexer) Delete(ctx context.Context, entryID string) error {
	res, err := i.client.Delete(i.index, entryID, i.client.Delete.WithContext(ctx))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	// 404 just means the entry was never indexed.
	if res.IsError() && res.StatusCode != 404 {
		return fmt.Errorf("delete entry %s from index: %s", entryID, res.String())
	}
	return nil
}

func (i *ESEntryIndexer) Search(ctx context.Context, userID, query string, limit int) ([]string, error) {
	q := map[string]any{
		"size":    limit,
		"_source": false,
		"query": map[string]any{
			"bool": map[string]any{
				"filter": []any{
					map[string]any{"term": map[string]any{"user_id": userID}},
				},
				"must": []any{
					map[string]any{"multi_match": map[string]any{
						"query":     query,
						"fields":    []string{"title^2", "description"},
						"fuzziness": "AUTO",
					}},
				},
			},
		},
	}
	body, err := json.Marshal(q)
	if err != nil {
		return nil, err
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.index),
		i.client.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("search entries: %s", res.String())
	}

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		ids = append(ids, h.ID)
	}
	return ids, nil
}

var _ EntryIndexer = (*ESEntryIndexer)(nil)
