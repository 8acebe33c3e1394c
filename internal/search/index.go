// Package search keeps products in an Elasticsearch index and queries it.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/fashion_store/internal/models"
)

type Index struct {
	ES   *elasticsearch.Client
	Name string
}

func NewIndex(es *elasticsearch.Client, name string) *Index {
	return &Index{ES: es, Name: name}
}

func (i *Index) IndexProduct(ctx context.Context, p models.Product) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}

	res, err := i.ES.Index(i.Name, bytes.NewReader(body),
		i.ES.Index.WithContext(ctx),
		i.ES.Index.WithDocumentID(strconv.FormatUint(uint64(p.ID), 10)),
	)
	if err != nil {
		return fmt.Errorf("index product %d: %w", p.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return responseError("index product", res.StatusCode, res.Body)
	}
	return nil
}

func (i *Index) DeleteProduct(ctx context.Context, id uint) error {
	res, err := i.ES.Delete(i.Name, strconv.FormatUint(uint64(id), 10), i.ES.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return responseError("delete product", res.StatusCode, res.Body)
	}
	return nil
}

func (i *Index) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "description", "category"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, err
	}

	res, err := i.ES.Search(
		i.ES.Search.WithContext(ctx),
		i.ES.Search.WithIndex(i.Name),
		i.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, responseError("search", res.StatusCode, res.Body)
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search response: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for n, hit := range r.Hits.Hits {
		prods[n] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}

func responseError(op string, status int, body io.Reader) error {
	msg, _ := io.ReadAll(io.LimitReader(body, 1<<10))
	return fmt.Errorf("%s: elasticsearch status %d: %s", op, status, bytes.TrimSpace(msg))
}
