package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	ModeStatic   = "static"
	ModeDocument = "document"
	ModeBrowser  = "browser"
)

type Config struct {
	Wishlist WishlistConfig `mapstructure:"wishlist"`
	Scraper  ScraperConfig  `mapstructure:"scraper"`
	Browser  BrowserConfig  `mapstructure:"browser"`
	Images   ImagesConfig   `mapstructure:"images"`
	Site     SiteConfig     `mapstructure:"site"`
	Publish  PublishConfig  `mapstructure:"publish"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Preview  PreviewConfig  `mapstructure:"preview"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

type WishlistConfig struct {
	URL     string `mapstructure:"url"`
	BaseURL string `mapstructure:"base_url"`
}

type ScraperConfig struct {
	Mode           string        `mapstructure:"mode"`
	Timeout        time.Duration `mapstructure:"timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
	AcceptLanguage string        `mapstructure:"accept_language"`
}

type BrowserConfig struct {
	Headless       bool          `mapstructure:"headless"`
	Timeout        time.Duration `mapstructure:"timeout"`
	SettleInterval time.Duration `mapstructure:"settle_interval"`
	MaxScrolls     int           `mapstructure:"max_scrolls"`
	ScrollDeadline time.Duration `mapstructure:"scroll_deadline"`
	Locale         string        `mapstructure:"locale"`
	TimezoneID     string        `mapstructure:"timezone_id"`
}

type ImagesConfig struct {
	Subdir       string        `mapstructure:"subdir"`
	Timeout      time.Duration `mapstructure:"timeout"`
	Delay        time.Duration `mapstructure:"delay"`
	UserAgent    string        `mapstructure:"user_agent"`
	ThumbToken   string        `mapstructure:"thumb_token"`
	HighResToken string        `mapstructure:"highres_token"`
}

type SiteConfig struct {
	Dir      string `mapstructure:"dir"`
	Manifest string `mapstructure:"manifest"`
	PagesURL string `mapstructure:"pages_url"`
}

type PublishConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	GitBinary string `mapstructure:"git_binary"`
}

// DatabaseConfig enables the run ledger when DSN is non-empty.
type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig enables update notifications when Addr is non-empty.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Stream   string `mapstructure:"stream"`
}

type PreviewConfig struct {
	Port int `mapstructure:"port"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load builds the configuration from compiled-in defaults, an optional YAML
// file named by WISHLIST_CONFIG and WISHLIST_* environment overrides.
func Load() (*Config, error) {
	return LoadFile(os.Getenv("WISHLIST_CONFIG"))
}

func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("WISHLIST")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	dir, err := expandHome(cfg.Site.Dir)
	if err != nil {
		return nil, err
	}
	cfg.Site.Dir = dir

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Wishlist.URL == "" {
		return errors.New("wishlist.url is required")
	}

	switch c.Scraper.Mode {
	case ModeStatic, ModeDocument, ModeBrowser:
	default:
		return fmt.Errorf("unknown scraper.mode %q", c.Scraper.Mode)
	}

	if c.Site.Dir == "" {
		return errors.New("site.dir is required")
	}

	if c.Browser.MaxScrolls < 1 {
		return errors.New("browser.max_scrolls must be at least 1")
	}

	if c.Images.ThumbToken == "" || c.Images.HighResToken == "" {
		return errors.New("images.thumb_token and images.highres_token are required")
	}

	return nil
}

// ImagesDir is the absolute directory holding downloaded assets.
func (c *Config) ImagesDir() string {
	return filepath.Join(c.Site.Dir, c.Images.Subdir)
}

func (c *Config) ManifestPath() string {
	return filepath.Join(c.Site.Dir, c.Site.Manifest)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("wishlist.url", "https://www.amazon.co.jp/hz/wishlist/ls/2UQ7O1570CFAX")
	v.SetDefault("wishlist.base_url", "https://www.amazon.co.jp")

	v.SetDefault("scraper.mode", ModeStatic)
	v.SetDefault("scraper.timeout", 30*time.Second)
	v.SetDefault("scraper.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	v.SetDefault("scraper.accept_language", "ja,en-US;q=0.7,en;q=0.3")

	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.timeout", 30*time.Second)
	v.SetDefault("browser.settle_interval", 2*time.Second)
	v.SetDefault("browser.max_scrolls", 60)
	v.SetDefault("browser.scroll_deadline", 3*time.Minute)
	v.SetDefault("browser.locale", "ja-JP")
	v.SetDefault("browser.timezone_id", "Asia/Tokyo")

	v.SetDefault("images.subdir", "images")
	v.SetDefault("images.timeout", 15*time.Second)
	v.SetDefault("images.delay", 500*time.Millisecond)
	v.SetDefault("images.user_agent", "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36")
	v.SetDefault("images.thumb_token", "._SS135_.")
	v.SetDefault("images.highres_token", "._SL500_.")

	v.SetDefault("site.dir", "~/Desktop/symbol-grounding-web")
	v.SetDefault("site.manifest", "data.json")
	v.SetDefault("site.pages_url", "https://morikazusuma.github.io/symbol-grounding/")

	v.SetDefault("publish.enabled", true)
	v.SetDefault("publish.git_binary", "git")

	v.SetDefault("database.dsn", "")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.stream", "stream:wishlist")

	v.SetDefault("preview.port", 8085)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}

	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
