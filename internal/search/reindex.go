package search

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Source streams batches of indexable documents, typically backed by a
// catalog repository walk.
type Source func(ctx context.Context, batch int, fn func(docs []Searchable) error) error

// Reindexer rebuilds a search index from scratch through a bounded worker
// pool, used by the nightly job and after enabling search on an existing
// database.
type Reindexer struct {
	engine  Engine
	workers int
}

func NewReindexer(engine Engine, workers int) *Reindexer {
	if workers <= 0 {
		workers = 8
	}
	return &Reindexer{engine: engine, workers: workers}
}

// Run walks the source and indexes every document. Individual document
// failures are logged and counted, they do not stop the walk.
func (r *Reindexer) Run(ctx context.Context, source Source) (int64, error) {
	pool, err := ants.NewPool(r.workers)
	if err != nil {
		return 0, err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	var mu sync.Mutex
	var indexed, failed int64

	err = source(ctx, 200, func(docs []Searchable) error {
		for _, doc := range docs {
			doc := doc
			wg.Add(1)
			submitErr := pool.Submit(func() {
				defer wg.Done()
				if err := r.engine.Index(ctx, doc); err != nil {
					zap.L().Warn("reindex document failed",
						zap.String("index", doc.SearchIndex()),
						zap.Int64("id", doc.SearchID()),
						zap.Error(err))
					mu.Lock()
					failed++
					mu.Unlock()
					return
				}
				mu.Lock()
				indexed++
				mu.Unlock()
			})
			if submitErr != nil {
				wg.Done()
				return submitErr
			}
		}
		return nil
	})

	wg.Wait()
	zap.L().Info("reindex finished",
		zap.Int64("indexed", indexed),
		zap.Int64("failed", failed))
	return indexed, err
}
