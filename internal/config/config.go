// =================================
// File: internal/config/config.go
// =================================
package config

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	QuoteBaseURL   string `mapstructure:"quote_base_url"`
	TokenListURL   string `mapstructure:"token_list_url"`
	TokenSearchURL string `mapstructure:"token_search_url"`
	ChartBaseURL   string `mapstructure:"chart_base_url"`

	ReferenceMint string `mapstructure:"reference_mint"`
	SlippageBps   int    `mapstructure:"slippage_bps"`

	// PriorityFeeLamports is attached to swap builds when non-zero.
	PriorityFeeLamports uint64 `mapstructure:"priority_fee_lamports"`

	QuoteRateLimit int `mapstructure:"quote_rate_limit"`
	ChartRateLimit int `mapstructure:"chart_rate_limit"`

	HTTPTimeout      time.Duration `mapstructure:"http_timeout"`
	PublicKeyTimeout time.Duration `mapstructure:"public_key_timeout"`
	SignTimeout      time.Duration `mapstructure:"sign_timeout"`

	SettingsPath string `mapstructure:"settings_path"`
	DebugLogging bool   `mapstructure:"debug_logging"`
}

const (
	DefaultQuoteBaseURL   = "https://lite-api.jup.ag"
	DefaultTokenListURL   = "https://token.jup.ag/all"
	DefaultTokenSearchURL = "https://ultra-api.jup.ag/search"
	DefaultChartBaseURL   = "https://api.geckoterminal.com/api/v2"

	DefaultReferenceMint = "So11111111111111111111111111111111111111112"
	DefaultSlippageBps   = 100

	DefaultQuoteRateLimit = 300
	DefaultChartRateLimit = 30

	DefaultHTTPTimeout      = 10 * time.Second
	DefaultPublicKeyTimeout = 2 * time.Second
	DefaultSignTimeout      = 30 * time.Second

	DefaultSettingsPath = "mintpop-settings.json"
)

// Load reads the config file at path when it exists; otherwise the defaults
// stand. Environment variables prefixed MINTPOP_ override either.
func Load(path string) (*Config, error) {
	v := viper.New()

	defaults := map[string]interface{}{
		"quote_base_url":        DefaultQuoteBaseURL,
		"token_list_url":        DefaultTokenListURL,
		"token_search_url":      DefaultTokenSearchURL,
		"chart_base_url":        DefaultChartBaseURL,
		"reference_mint":        DefaultReferenceMint,
		"slippage_bps":          DefaultSlippageBps,
		"priority_fee_lamports": uint64(0),
		"quote_rate_limit":      DefaultQuoteRateLimit,
		"chart_rate_limit":      DefaultChartRateLimit,
		"http_timeout":          DefaultHTTPTimeout,
		"public_key_timeout":    DefaultPublicKeyTimeout,
		"sign_timeout":          DefaultSignTimeout,
		"settings_path":         DefaultSettingsPath,
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("MINTPOP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, validateConfig(&cfg)
}

func validateConfig(cfg *Config) error {
	for _, u := range []string{cfg.QuoteBaseURL, cfg.TokenListURL, cfg.TokenSearchURL, cfg.ChartBaseURL} {
		if err := validateHTTPURL(u); err != nil {
			return err
		}
	}
	if cfg.ReferenceMint == "" {
		return errors.New("missing reference_mint")
	}
	if cfg.SlippageBps <= 0 || cfg.SlippageBps > 10000 {
		return errors.New("invalid slippage_bps")
	}
	if cfg.QuoteRateLimit <= 0 {
		return errors.New("invalid quote_rate_limit")
	}
	if cfg.ChartRateLimit <= 0 {
		return errors.New("invalid chart_rate_limit")
	}
	if cfg.HTTPTimeout <= 0 {
		return errors.New("invalid http_timeout")
	}
	if cfg.PublicKeyTimeout <= 0 {
		return errors.New("invalid public_key_timeout")
	}
	if cfg.SignTimeout <= 0 {
		return errors.New("invalid sign_timeout")
	}
	if cfg.SettingsPath == "" {
		return errors.New("missing settings_path")
	}
	return nil
}

func validateHTTPURL(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid URL format")
	}
	if !strings.HasPrefix(parsed.Scheme, "http") {
		return errors.New("invalid URL protocol")
	}
	return nil
}
