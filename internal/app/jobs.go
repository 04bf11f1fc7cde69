package app

import (
	"context"
	"errors"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/talkincode/gomarket/internal/domain"
	"github.com/talkincode/gomarket/internal/search"
	"go.uber.org/zap"
)

func (a *Application) initJob() {
	a.sched = cron.New()

	if a.searchEng != nil {
		spec := a.GetSettingsStringValue("search", "reindex_cron")
		if spec == "" {
			spec = "0 3 * * *"
		}
		if _, err := a.sched.AddFunc(spec, func() {
			if err := a.ReindexNow(); err != nil {
				zap.L().Error("scheduled reindex failed", zap.Error(err))
			}
		}); err != nil {
			zap.L().Error("failed to register reindex job", zap.Error(err))
		}
	}

	if _, err := a.sched.AddFunc("@hourly", a.auditCartTotals); err != nil {
		zap.L().Error("failed to register cart audit job", zap.Error(err))
	}
}

// StartBackgroundJobs starts the cron runner.
func (a *Application) StartBackgroundJobs(ctx context.Context) {
	a.sched.Start()
	go func() {
		<-ctx.Done()
		a.sched.Stop()
	}()
}

// ReindexNow rebuilds the item search index immediately.
func (a *Application) ReindexNow() error {
	if a.searchEng == nil {
		return errors.New("search is not enabled")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	reindexer := search.NewReindexer(a.searchEng, 8)
	_, err := reindexer.Run(ctx, func(ctx context.Context, batch int, fn func(docs []search.Searchable) error) error {
		return a.itemRepo.WalkAll(ctx, batch, func(items []domain.Item) error {
			docs := make([]search.Searchable, 0, len(items))
			for _, item := range items {
				docs = append(docs, item)
			}
			return fn(docs)
		})
	})
	return err
}

// auditCartTotals recomputes every cart total from its lines and reports
// drift. The services maintain the invariant transactionally, so any hit
// here points at out-of-band writes.
func (a *Application) auditCartTotals() {
	if !a.GetSettingsBoolValue("audit", "cart_totals") {
		return
	}

	type row struct {
		ID        int64
		CartPrice float64
		Expected  float64
	}
	var rows []row
	err := a.gormDB.Raw(`
		SELECT c.id, c.cart_price,
		       COALESCE(SUM(ci.quantity * i.price), 0) AS expected
		FROM mkt_cart c
		LEFT JOIN mkt_cart_item ci ON ci.cart_id = c.id
		LEFT JOIN mkt_item i ON i.id = ci.item_id
		GROUP BY c.id, c.cart_price
	`).Scan(&rows).Error
	if err != nil {
		zap.L().Error("cart total audit query failed", zap.Error(err))
		return
	}

	drift := 0
	for _, r := range rows {
		if diff := r.CartPrice - r.Expected; diff > 0.001 || diff < -0.001 {
			drift++
			zap.L().Warn("cart total drift detected",
				zap.Int64("cart_id", r.ID),
				zap.Float64("cart_price", r.CartPrice),
				zap.Float64("expected", r.Expected))
		}
	}
	if drift == 0 {
		zap.L().Debug("cart total audit clean", zap.Int("carts", len(rows)))
	}
}
