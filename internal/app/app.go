package app

import (
	"context"
	"os"
	"runtime/debug"
	"time"
	_ "time/tzdata"

	"github.com/asaskevich/EventBus"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/talkincode/gomarket/config"
	"github.com/talkincode/gomarket/internal/domain"
	"github.com/talkincode/gomarket/internal/mailer"
	"github.com/talkincode/gomarket/internal/market"
	"github.com/talkincode/gomarket/internal/search"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/gorm"
)

type Application struct {
	appConfig *config.AppConfig
	gormDB    *gorm.DB
	sched     *cron.Cron
	bus       EventBus.Bus
	settings  *ConfigManager
	searchEng search.Engine

	itemRepo  market.ItemRepository
	cartRepo  market.CartRepository
	orderRepo market.OrderRepository

	accountSvc  *market.AccountService
	catalogSvc  *market.CatalogService
	cartSvc     *market.CartService
	checkoutSvc *market.CheckoutService
}

// Ensure Application implements all interfaces
var (
	_ DBProvider        = (*Application)(nil)
	_ ConfigProvider    = (*Application)(nil)
	_ SettingsProvider  = (*Application)(nil)
	_ SchedulerProvider = (*Application)(nil)
	_ SearchProvider    = (*Application)(nil)
	_ MarketProvider    = (*Application)(nil)
	_ AppContext        = (*Application)(nil)
)

func NewApplication(appConfig *config.AppConfig) *Application {
	return &Application{appConfig: appConfig}
}

func (a *Application) Config() *config.AppConfig {
	return a.appConfig
}

func (a *Application) DB() *gorm.DB {
	return a.gormDB
}

// OverrideDB replaces the application's database handle and rewires every
// service on top of it, used by tests that bring their own database.
func (a *Application) OverrideDB(db *gorm.DB) {
	a.gormDB = db
	a.settings = NewConfigManager(db)
	a.bus = EventBus.New()
	a.buildServices()
}

func (a *Application) Init(cfg *config.AppConfig) {
	loc, err := time.LoadLocation(cfg.System.Location)
	if err != nil {
		zap.S().Error("timezone config error")
	} else {
		time.Local = loc
	}

	// Initialize zap logger
	var zapConfig zap.Config
	if cfg.Logger.Mode == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	zapConfig.OutputPaths = []string{"stdout"}

	// Build logger with file rotation if enabled
	var logger *zap.Logger
	if cfg.Logger.FileEnable {
		lumberJackLogger := &lumberjack.Logger{
			Filename:   cfg.Logger.Filename,
			MaxSize:    64,
			MaxBackups: 7,
			MaxAge:     7,
			Compress:   false,
		}

		core := zapcore.NewTee(
			zapcore.NewCore(
				zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
				zapcore.AddSync(lumberJackLogger),
				zapConfig.Level,
			),
			zapcore.NewCore(
				zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
				zapcore.AddSync(os.Stdout),
				zapConfig.Level,
			),
		)
		logger = zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1))
	} else {
		logger, err = zapConfig.Build(zap.AddCaller(), zap.AddCallerSkip(1))
		if err != nil {
			panic(err)
		}
	}

	zap.ReplaceGlobals(logger)

	// Initialize database connection
	if cfg.Database.Type == "" {
		cfg.Database.Type = "postgres"
	}
	a.gormDB = getDatabase(cfg.Database, cfg.System.Workdir)
	zap.S().Infof("Database connection successful, type: %s", cfg.Database.Type)

	// Ensure database schema is migrated before anything touches it
	if err := a.MigrateDB(false); err != nil {
		zap.S().Errorf("database migration failed: %v", err)
	}

	a.settings = NewConfigManager(a.gormDB)
	a.bus = EventBus.New()

	if cfg.Search.Enabled {
		a.searchEng = search.NewESEngine(cfg.Search.URL, cfg.Search.Prefix)
	}

	a.buildServices()
	a.initSearchBridge()

	a.checkSuper()
	a.checkSettings()
	a.checkDemoCatalog()

	a.initJob()
}

// buildServices wires the market services against the current database
// handle. Called again from OverrideDB so tests get wired services too.
func (a *Application) buildServices() {
	a.itemRepo = market.NewGormItemRepository(a.gormDB)
	a.cartRepo = market.NewGormCartRepository(a.gormDB)
	a.orderRepo = market.NewGormOrderRepository(a.gormDB)

	a.accountSvc = market.NewAccountService(a.gormDB)
	a.cartSvc = market.NewCartService(a.gormDB)

	a.catalogSvc = market.NewCatalogService(a.gormDB, a.itemRepo)
	a.checkoutSvc = market.NewCheckoutService(a.gormDB)

	if a.bus != nil {
		a.catalogSvc.WithNotifier(a.bus)
		a.checkoutSvc.WithNotifier(a.bus)
	}
	if a.searchEng != nil {
		a.catalogSvc.WithEngine(a.searchEng)
	}
	if a.appConfig != nil && a.appConfig.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     a.appConfig.Redis.Addr,
			Password: a.appConfig.Redis.Passwd,
			DB:       a.appConfig.Redis.DB,
		})
		a.checkoutSvc.WithGuard(market.NewRedisGuard(client, 10*time.Second))
	}
	if a.appConfig != nil && a.appConfig.Mail.Enabled {
		a.checkoutSvc.WithMailer(mailer.NewSmtpMailer(a.appConfig.Mail))
	}
}

// initSearchBridge subscribes the search engine to post-commit catalog
// events. This replaces implicit storage commit hooks with an explicit
// notification step.
func (a *Application) initSearchBridge() {
	if a.searchEng == nil || a.bus == nil {
		return
	}

	_ = a.bus.SubscribeAsync(market.TopicItemUpdated, func(item domain.Item) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.searchEng.Index(ctx, item); err != nil {
			zap.L().Warn("search index update failed",
				zap.Int64("item_id", item.ID), zap.Error(err))
		}
	}, false)

	_ = a.bus.SubscribeAsync(market.TopicItemDeleted, func(itemID int64) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.searchEng.Remove(ctx, domain.Item{}.SearchIndex(), itemID); err != nil {
			zap.L().Warn("search index remove failed",
				zap.Int64("item_id", itemID), zap.Error(err))
		}
	}, false)
}

func (a *Application) MigrateDB(track bool) (err error) {
	defer func() {
		if err1 := recover(); err1 != nil {
			if os.Getenv("GO_DEBUG_TRACE") != "" {
				debug.PrintStack()
			}
			err2, ok := err1.(error)
			if ok {
				err = err2
				zap.S().Error(err2.Error())
			}
		}
	}()
	if track {
		if err := a.gormDB.Debug().Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	} else {
		if err := a.gormDB.Migrator().AutoMigrate(domain.Tables...); err != nil {
			zap.S().Error(err)
		}
	}
	return nil
}

func (a *Application) DropAll() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
}

func (a *Application) InitDb() {
	_ = a.gormDB.Migrator().DropTable(domain.Tables...)
	err := a.gormDB.Migrator().AutoMigrate(domain.Tables...)
	if err != nil {
		zap.S().Error(err)
	}
}

// Scheduler returns the cron scheduler
func (a *Application) Scheduler() *cron.Cron {
	return a.sched
}

// SearchEngine returns the search engine, nil when search is disabled
func (a *Application) SearchEngine() search.Engine {
	return a.searchEng
}

// Bus returns the application event bus
func (a *Application) Bus() EventBus.Bus {
	return a.bus
}

func (a *Application) Accounts() *market.AccountService { return a.accountSvc }

func (a *Application) Catalog() *market.CatalogService { return a.catalogSvc }

func (a *Application) Carts() *market.CartService { return a.cartSvc }

func (a *Application) Checkout() *market.CheckoutService { return a.checkoutSvc }

func (a *Application) Items() market.ItemRepository { return a.itemRepo }

func (a *Application) CartStore() market.CartRepository { return a.cartRepo }

func (a *Application) Orders() market.OrderRepository { return a.orderRepo }

// GetSettingsStringValue retrieves a string configuration value
func (a *Application) GetSettingsStringValue(category, key string) string {
	return a.settings.GetString(category, key)
}

// GetSettingsInt64Value retrieves an int64 configuration value
func (a *Application) GetSettingsInt64Value(category, key string) int64 {
	return a.settings.GetInt64(category, key)
}

// GetSettingsBoolValue retrieves a boolean configuration value
func (a *Application) GetSettingsBoolValue(category, key string) bool {
	return a.settings.GetBool(category, key)
}

// Release releases application resources
func (a *Application) Release() {
	if a.sched != nil {
		a.sched.Stop()
	}
	_ = zap.L().Sync()
}
