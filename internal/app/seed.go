package app

import (
	"context"
	"errors"
	"time"

	"github.com/talkincode/gomarket/internal/domain"
	"github.com/talkincode/gomarket/pkg/common"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type settingSchema struct {
	Key         string
	Default     string
	Description string
}

// defaultSettings are created on first boot when missing.
var defaultSettings = []settingSchema{
	{Key: "market.page_size", Default: "20", Description: "Default page size for listings"},
	{Key: "market.featured_limit", Default: "12", Description: "Max featured items on the front page"},
	{Key: "search.reindex_cron", Default: "0 3 * * *", Description: "Cron spec of the nightly search reindex"},
	{Key: "audit.cart_totals", Default: "true", Description: "Enable the hourly cart total audit job"},
}

func (a *Application) checkSuper() {
	const superUsername = "admin"
	const defaultPassword = "gomarket"

	var admin domain.User
	err := a.gormDB.Where("username = ?", superUsername).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		user := domain.User{
			ID:        common.UUIDint64(),
			Username:  superUsername,
			Email:     "admin@gomarket.local",
			Firstname: "Site",
			Lastname:  "Admin",
			Usertype:  domain.UserTypeAdmin,
			Status:    common.ENABLED,
			LastLogin: time.Now(),
		}
		if err := user.SetPassword(defaultPassword); err != nil {
			zap.L().Error("failed to hash default admin password", zap.Error(err))
			return
		}
		if err := a.gormDB.Create(&user).Error; err != nil {
			zap.L().Error("failed to create default admin", zap.Error(err))
			return
		}
		zap.L().Info("initialized default admin account",
			zap.String("username", superUsername))
	case err != nil:
		zap.L().Error("failed to query admin account", zap.Error(err))
	}
}

func (a *Application) checkSettings() {
	for sortid, schema := range defaultSettings {
		category, name, okSplit := splitKey(schema.Key)
		if !okSplit {
			zap.L().Warn("invalid setting key format", zap.String("key", schema.Key))
			continue
		}

		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", category, name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				Sort:   sortid,
				Type:   category,
				Name:   name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized setting",
				zap.String("key", schema.Key),
				zap.String("default", schema.Default))
		}
	}
}

func splitKey(key string) (category, name string, ok bool) {
	for i := 0; i < len(key); i++ {
		if key[i] == '.' {
			return key[:i], key[i+1:], i > 0 && i < len(key)-1
		}
	}
	return "", "", false
}

// checkDemoCatalog seeds a demo vendor with a few items so a fresh install
// has something to browse.
func (a *Application) checkDemoCatalog() {
	var count int64
	a.gormDB.Model(&domain.Item{}).Count(&count)
	if count > 0 {
		return
	}

	vendor := domain.User{
		ID:       common.UUIDint64(),
		Username: "demo-vendor",
		Email:    "vendor@gomarket.local",
		Usertype: domain.UserTypeVendor,
		Status:   common.ENABLED,
	}
	if err := vendor.SetPassword(common.RandomHex(8)); err != nil {
		return
	}
	if err := a.gormDB.Create(&vendor).Error; err != nil {
		zap.L().Error("failed to create demo vendor", zap.Error(err))
		return
	}

	demoItems := []domain.Item{
		{Title: "demo-widget-basic", Description: "A basic demo widget", Price: 9.99, Stock: 100, Featured: true},
		{Title: "demo-widget-pro", Description: "A professional demo widget", Price: 24.5, Stock: 50, Featured: true},
		{Title: "demo-addon-support", Description: "Support addon for demo widgets", Price: 49.95, Stock: 200},
	}
	ctx := context.Background()
	for i := range demoItems {
		demoItems[i].VendorID = vendor.ID
		if err := a.catalogSvc.CreateItem(ctx, &demoItems[i]); err != nil {
			zap.L().Error("failed to create demo item",
				zap.String("title", demoItems[i].Title), zap.Error(err))
		} else {
			zap.L().Info("initialized demo item", zap.String("title", demoItems[i].Title))
		}
	}
}
