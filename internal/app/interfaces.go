package app

import (
	"github.com/robfig/cron/v3"
	"github.com/talkincode/gomarket/config"
	"github.com/talkincode/gomarket/internal/market"
	"github.com/talkincode/gomarket/internal/search"
	"gorm.io/gorm"
)

// DBProvider provides database access
type DBProvider interface {
	DB() *gorm.DB
}

// ConfigProvider provides application configuration
type ConfigProvider interface {
	Config() *config.AppConfig
}

// SettingsProvider provides system settings access
type SettingsProvider interface {
	GetSettingsStringValue(category, key string) string
	GetSettingsInt64Value(category, key string) int64
	GetSettingsBoolValue(category, key string) bool
}

// SchedulerProvider provides task scheduling capability
type SchedulerProvider interface {
	Scheduler() *cron.Cron
}

// SearchProvider provides the external search engine, nil when disabled
type SearchProvider interface {
	SearchEngine() search.Engine
}

// MarketProvider provides the core marketplace services
type MarketProvider interface {
	Accounts() *market.AccountService
	Catalog() *market.CatalogService
	Carts() *market.CartService
	Checkout() *market.CheckoutService
	Items() market.ItemRepository
	CartStore() market.CartRepository
	Orders() market.OrderRepository
}

// AppContext combines all provider interfaces for full application context.
// Components should depend on the narrowest provider they need; the web
// layer takes the combined interface.
type AppContext interface {
	DBProvider
	ConfigProvider
	SettingsProvider
	SchedulerProvider
	SearchProvider
	MarketProvider

	// Application lifecycle methods
	MigrateDB(track bool) error
	InitDb()
	DropAll()
	// ReindexNow rebuilds the item search index immediately
	ReindexNow() error
}
