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

	"github.com/Skotchmaster/storefront/internal/models"
)

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

// Index mirrors active products into Elasticsearch and answers full-text
// queries with product ids.
type Index struct {
	es    *elasticsearch.Client
	index string
}

func NewClient(cfg Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client: %w", err)
	}
	return client, nil
}

func New(es *elasticsearch.Client, index string) *Index {
	if index == "" {
		index = "products"
	}
	return &Index{es: es, index: index}
}

type productDoc struct {
	ID             uint    `json:"id"`
	SKU            string  `json:"sku"`
	Name           string  `json:"name"`
	CategoryID     uint    `json:"category_id"`
	MRP            float64 `json:"mrp"`
	EffectivePrice float64 `json:"effective_price"`
}

const indexMapping = `{
  "mappings": {
    "properties": {
      "id":              {"type": "long"},
      "sku":             {"type": "keyword"},
      "name":            {"type": "text"},
      "category_id":     {"type": "long"},
      "mrp":             {"type": "double"},
      "effective_price": {"type": "double"}
    }
  }
}`

func responseError(res *esapi.Response, op string) error {
	body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
	return fmt.Errorf("elasticsearch %s: %s: %s", op, res.Status(), strings.TrimSpace(string(body)))
}

// Ping checks that the cluster answers.
func (ix *Index) Ping(ctx context.Context) error {
	res, err := ix.es.Info(ix.es.Info.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError(res, "info")
	}
	return nil
}

// EnsureIndex creates the index with its mapping when it does not exist.
func (ix *Index) EnsureIndex(ctx context.Context) error {
	res, err := ix.es.Indices.Exists([]string{ix.index}, ix.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("elasticsearch exists: %s", res.Status())
	}

	res, err = ix.es.Indices.Create(ix.index,
		ix.es.Indices.Create.WithContext(ctx),
		ix.es.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch create index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError(res, "create index")
	}
	return nil
}

func (ix *Index) IndexProduct(ctx context.Context, p models.Product) error {
	doc := productDoc{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		CategoryID:     p.CategoryID,
		MRP:            p.MRP,
		EffectivePrice: p.EffectivePrice(),
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(doc); err != nil {
		return fmt.Errorf("encode product %d: %w", p.ID, err)
	}

	res, err := ix.es.Index(ix.index, &buf,
		ix.es.Index.WithContext(ctx),
		ix.es.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError(res, "index")
	}
	return nil
}

// RemoveProduct deletes the document; a missing document is not an error.
func (ix *Index) RemoveProduct(ctx context.Context, id uint) error {
	res, err := ix.es.Delete(ix.index, strconv.FormatUint(uint64(id), 10), ix.es.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch delete: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError(res, "delete")
	}
	return nil
}

func (ix *Index) Search(ctx context.Context, q string, from, size int) (int64, []uint, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     q,
				"fields":    []string{"name^2", "sku"},
				"fuzziness": "AUTO",
			},
		},
		"_source": false,
		"from":    from,
		"size":    size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode query: %w", err)
	}

	res, err := ix.es.Search(
		ix.es.Search.WithContext(ctx),
		ix.es.Search.WithIndex(ix.index),
		ix.es.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("elasticsearch search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError(res, "search")
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	ids := make([]uint, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	return r.Hits.Total.Value, ids, nil
}
