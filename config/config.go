package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

// SysConfig system level configuration
type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// WebConfig web server configuration
type WebConfig struct {
	Host   string `yaml:"host" json:"host"`
	Port   int    `yaml:"port" json:"port"`
	Secret string `yaml:"secret" json:"secret"`
}

// DBConfig database configuration
type DBConfig struct {
	Type     string `yaml:"type" json:"type"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Name     string `yaml:"name" json:"name"`
	User     string `yaml:"user" json:"user"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	MaxConn  int    `yaml:"max_conn" json:"max_conn"`
	IdleConn int    `yaml:"idle_conn" json:"idle_conn"`
	Debug    bool   `yaml:"debug" json:"debug"`
}

// SearchConfig external search engine configuration
type SearchConfig struct {
	Enabled bool   `yaml:"enabled" json:"enabled"`
	URL     string `yaml:"url" json:"url"`
	Prefix  string `yaml:"prefix" json:"prefix"`
}

// RedisConfig optional redis configuration, used by the checkout
// idempotency guard. Disabled when Addr is empty.
type RedisConfig struct {
	Addr   string `yaml:"addr" json:"addr"`
	Passwd string `yaml:"passwd" json:"passwd"`
	DB     int    `yaml:"db" json:"db"`
}

// MailConfig SMTP configuration for checkout confirmations
type MailConfig struct {
	Enabled  bool   `yaml:"enabled" json:"enabled"`
	Host     string `yaml:"host" json:"host"`
	Port     int    `yaml:"port" json:"port"`
	Username string `yaml:"username" json:"username"`
	Passwd   string `yaml:"passwd" json:"passwd"`
	From     string `yaml:"from" json:"from"`
}

// LoggerConfig logger configuration
type LoggerConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig    `yaml:"system" json:"system"`
	Web      WebConfig    `yaml:"web" json:"web"`
	Database DBConfig     `yaml:"database" json:"database"`
	Search   SearchConfig `yaml:"search" json:"search"`
	Redis    RedisConfig  `yaml:"redis" json:"redis"`
	Mail     MailConfig   `yaml:"mail" json:"mail"`
	Logger   LoggerConfig `yaml:"logger" json:"logger"`
}

func (c *AppConfig) GetLogDir() string {
	return filepath.Join(c.System.Workdir, "logs")
}

func (c *AppConfig) GetDataDir() string {
	return filepath.Join(c.System.Workdir, "data")
}

func (c *AppConfig) initDirs() {
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "logs"), 0755)
	_ = os.MkdirAll(filepath.Join(c.System.Workdir, "data"), 0755)
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "gomarket",
		Location: "Asia/Shanghai",
		Workdir:  "/var/gomarket",
		Debug:    true,
	},
	Web: WebConfig{
		Host: "0.0.0.0",
		Port: 1816,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "gomarket",
		User:     "postgres",
		Passwd:   "root",
		MaxConn:  100,
		IdleConn: 10,
	},
	Search: SearchConfig{
		Enabled: false,
		URL:     "http://127.0.0.1:9200",
	},
	Logger: LoggerConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/gomarket/logs/gomarket.log",
	},
}

func setEnvValue(name string, f func(v string)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v)
	}
}

func setEnvBoolValue(name string, f func(v bool)) {
	if v, ok := os.LookupEnv(name); ok {
		f(v == "true" || v == "1" || v == "on")
	}
}

// LoadConfig loads configuration from file, falling back to defaults,
// then applies GOMARKET_ environment overrides.
func LoadConfig(cfile string) *AppConfig {
	cfg := new(AppConfig)
	*cfg = *DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			_ = yaml.Unmarshal(data, cfg)
		}
	}

	setEnvValue("GOMARKET_SYSTEM_WORKDIR", func(v string) { cfg.System.Workdir = v })
	setEnvBoolValue("GOMARKET_SYSTEM_DEBUG", func(v bool) { cfg.System.Debug = v })

	setEnvValue("GOMARKET_DB_TYPE", func(v string) { cfg.Database.Type = v })
	setEnvValue("GOMARKET_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvValue("GOMARKET_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("GOMARKET_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("GOMARKET_DB_PWD", func(v string) { cfg.Database.Passwd = v })

	setEnvValue("GOMARKET_WEB_HOST", func(v string) { cfg.Web.Host = v })
	setEnvValue("GOMARKET_WEB_SECRET", func(v string) { cfg.Web.Secret = v })

	setEnvBoolValue("GOMARKET_SEARCH_ENABLED", func(v bool) { cfg.Search.Enabled = v })
	setEnvValue("GOMARKET_SEARCH_URL", func(v string) { cfg.Search.URL = v })

	setEnvValue("GOMARKET_REDIS_ADDR", func(v string) { cfg.Redis.Addr = v })
	setEnvValue("GOMARKET_REDIS_PWD", func(v string) { cfg.Redis.Passwd = v })

	cfg.initDirs()
	return cfg
}
