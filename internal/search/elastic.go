package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/elastic/go-elasticsearch/v9/esapi"

	"github.com/Skotchmaster/bookstore/internal/models"
	"github.com/Skotchmaster/bookstore/pkg/logging"
)

// maxHits bounds one search; the catalog has no pagination.
const maxHits = 10000

// title and author are capped by the book form; description is unbounded, so it
// uses the wildcard type, which has no per-term byte limit.
var indexMapping = `{
  "mappings": {
    "properties": {
      "id":          {"type": "long"},
      "title":       {"type": "keyword"},
      "author":      {"type": "keyword"},
      "description": {"type": "wildcard"}
    }
  }
}`

type Elastic struct {
	Client *elasticsearch.Client
	Index  string
	Books  BookLoader
}

func NewElastic(client *elasticsearch.Client, index string, books BookLoader) *Elastic {
	return &Elastic{Client: client, Index: index, Books: books}
}

type bookDoc struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Author      string `json:"author"`
	Description string `json:"description,omitempty"`
}

func docFor(b *models.Book) bookDoc {
	d := bookDoc{ID: b.ID, Title: b.Title, Author: b.Author}
	if b.Description != nil {
		d.Description = *b.Description
	}
	return d
}

func responseError(op string, res *esapi.Response) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return fmt.Errorf("elasticsearch %s: %s: %s", op, res.Status(), strings.TrimSpace(string(body)))
}

// EnsureIndex creates the index with keyword mappings when it does not exist.
func (e *Elastic) EnsureIndex(ctx context.Context) error {
	res, err := e.Client.Indices.Exists([]string{e.Index}, e.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = e.Client.Indices.Create(e.Index,
		e.Client.Indices.Create.WithContext(ctx),
		e.Client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("create index", res)
	}
	return nil
}

func (e *Elastic) IndexBook(ctx context.Context, b *models.Book) error {
	body, err := json.Marshal(docFor(b))
	if err != nil {
		return err
	}
	res, err := e.Client.Index(e.Index, bytes.NewReader(body),
		e.Client.Index.WithContext(ctx),
		e.Client.Index.WithDocumentID(strconv.FormatUint(uint64(b.ID), 10)),
		e.Client.Index.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index", res)
	}
	return nil
}

func (e *Elastic) DeleteBook(ctx context.Context, id uint) error {
	res, err := e.Client.Delete(e.Index, strconv.FormatUint(uint64(id), 10),
		e.Client.Delete.WithContext(ctx),
		e.Client.Delete.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete", res)
	}
	return nil
}

// Reindex bulk-loads books into the index, replacing documents with the same id.
func (e *Elastic) Reindex(ctx context.Context, books []models.Book) error {
	if len(books) == 0 {
		return nil
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i := range books {
		meta := map[string]any{"index": map[string]any{"_id": strconv.FormatUint(uint64(books[i].ID), 10)}}
		if err := enc.Encode(meta); err != nil {
			return err
		}
		if err := enc.Encode(docFor(&books[i])); err != nil {
			return err
		}
	}

	res, err := e.Client.Bulk(&buf,
		e.Client.Bulk.WithContext(ctx),
		e.Client.Bulk.WithIndex(e.Index),
		e.Client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch bulk: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("bulk", res)
	}

	var out struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return fmt.Errorf("elasticsearch bulk decode: %w", err)
	}
	if out.Errors {
		return fmt.Errorf("elasticsearch bulk: some documents failed")
	}
	logging.FromContext(ctx).Info("search_reindexed", "index", e.Index, "count", len(books))
	return nil
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func searchBody(q string) map[string]any {
	pattern := "*" + wildcardEscaper.Replace(q) + "*"
	should := make([]any, 0, 3)
	for _, f := range []string{"title", "author", "description"} {
		should = append(should, map[string]any{
			"wildcard": map[string]any{
				f: map[string]any{"value": pattern, "case_insensitive": true},
			},
		})
	}
	return map[string]any{
		"_source": false,
		"size":    maxHits,
		"sort":    []any{map[string]any{"id": "asc"}},
		"query": map[string]any{
			"bool": map[string]any{"should": should, "minimum_should_match": 1},
		},
	}
}

// SearchBooks runs the same case-insensitive substring match as the database
// search against the index, then loads the matching rows from the store.
func (e *Elastic) SearchBooks(ctx context.Context, q string) ([]models.Book, error) {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return []models.Book{}, nil
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(searchBody(q)); err != nil {
		return nil, err
	}

	res, err := e.Client.Search(
		e.Client.Search.WithContext(ctx),
		e.Client.Search.WithIndex(e.Index),
		e.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, responseError("search", res)
	}

	var r struct {
		Hits struct {
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("elasticsearch search decode: %w", err)
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, h := range r.Hits.Hits {
		id, err := strconv.ParseUint(h.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return e.Books.GetBooksByIDs(ctx, ids)
}
