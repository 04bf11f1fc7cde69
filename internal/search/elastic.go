package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/guonaihong/gout"
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ESEngine talks to an Elasticsearch-compatible keyword index over HTTP.
// Queries are multi-field matches returning scored IDs; hydration back into
// catalog rows happens in the market package.
type ESEngine struct {
	url    string
	prefix string
}

var _ Engine = (*ESEngine)(nil)

func NewESEngine(url, prefix string) *ESEngine {
	return &ESEngine{url: url, prefix: prefix}
}

func (e *ESEngine) indexName(index string) string {
	if e.prefix == "" {
		return index
	}
	return e.prefix + "_" + index
}

func (e *ESEngine) Index(ctx context.Context, doc Searchable) error {
	code := 0
	err := gout.PUT(fmt.Sprintf("%s/%s/_doc/%d", e.url, e.indexName(doc.SearchIndex()), doc.SearchID())).
		WithContext(ctx).
		SetJSON(doc.SearchValues()).
		Code(&code).
		Do()
	if err != nil {
		return errors.Wrap(err, "search index request failed")
	}
	if code >= 300 {
		return errors.Errorf("search index request returned status %d", code)
	}
	return nil
}

func (e *ESEngine) Remove(ctx context.Context, index string, id int64) error {
	code := 0
	err := gout.DELETE(fmt.Sprintf("%s/%s/_doc/%d", e.url, e.indexName(index), id)).
		WithContext(ctx).
		Code(&code).
		Do()
	if err != nil {
		return errors.Wrap(err, "search remove request failed")
	}
	// 404 means the document was never indexed, not an error for removal.
	if code >= 300 && code != 404 {
		return errors.Errorf("search remove request returned status %d", code)
	}
	return nil
}

// esTotal accepts both the legacy numeric hits.total and the modern
// {"value": n, "relation": "eq"} object.
type esTotal struct {
	Value int64
}

func (t *esTotal) UnmarshalJSON(data []byte) error {
	var n int64
	if err := jsoniter.Unmarshal(data, &n); err == nil {
		t.Value = n
		return nil
	}
	var obj struct {
		Value int64 `json:"value"`
	}
	if err := jsoniter.Unmarshal(data, &obj); err != nil {
		return err
	}
	t.Value = obj.Value
	return nil
}

type esSearchResult struct {
	Hits struct {
		Total esTotal `json:"total"`
		Hits  []struct {
			ID string `json:"_id"`
		} `json:"hits"`
	} `json:"hits"`
}

func (e *ESEngine) Query(ctx context.Context, index, text string, page, pageSize int) ([]int64, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	payload := map[string]interface{}{
		"query": map[string]interface{}{
			"multi_match": map[string]interface{}{
				"query":  text,
				"fields": []string{"*"},
			},
		},
		"from": (page - 1) * pageSize,
		"size": pageSize,
	}

	var body []byte
	code := 0
	err := gout.POST(fmt.Sprintf("%s/%s/_search", e.url, e.indexName(index))).
		WithContext(ctx).
		SetJSON(payload).
		BindBody(&body).
		Code(&code).
		Do()
	if err != nil {
		return nil, 0, errors.Wrap(err, "search query request failed")
	}
	if code == 404 {
		// Index not created yet, treat as no hits.
		return nil, 0, nil
	}
	if code >= 300 {
		return nil, 0, errors.Errorf("search query returned status %d", code)
	}

	var result esSearchResult
	if err := jsoniter.Unmarshal(body, &result); err != nil {
		return nil, 0, errors.Wrap(err, "search query response decode failed")
	}

	ids := make([]int64, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		id, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			zap.L().Warn("search hit with non-numeric id skipped",
				zap.String("id", hit.ID))
			continue
		}
		ids = append(ids, id)
	}
	return ids, result.Hits.Total.Value, nil
}
