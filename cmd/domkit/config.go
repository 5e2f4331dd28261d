package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/chrisuehlinger/domkit/network"
)

// config holds the settings a config file may provide. Flags override it.
type config struct {
	UserAgent string
	Timeout   time.Duration
	LogLevel  string
	// BaseURL, when set, is what relative sources resolve against.
	BaseURL string
}

func defaultConfig() config {
	return config{
		UserAgent: network.DefaultUserAgent,
		Timeout:   30 * time.Second,
		LogLevel:  "info",
	}
}

type fileConfig struct {
	UserAgent string `toml:"user_agent"`
	Timeout   string `toml:"timeout"`
	LogLevel  string `toml:"log_level"`
	BaseURL   string `toml:"base_url"`
}

// loadConfig reads a TOML config file over the defaults. Keys the file does
// not define keep their default.
func loadConfig(path string) (config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("user_agent") {
		if ua := strings.TrimSpace(raw.UserAgent); ua != "" {
			cfg.UserAgent = ua
		}
	}
	if meta.IsDefined("timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.Timeout))
		if err != nil {
			return config{}, fmt.Errorf("parse timeout: %w", err)
		}
		if d <= 0 {
			return config{}, fmt.Errorf("parse timeout: must be positive, got %s", d)
		}
		cfg.Timeout = d
	}
	if meta.IsDefined("log_level") {
		cfg.LogLevel = strings.TrimSpace(raw.LogLevel)
	}
	if meta.IsDefined("base_url") {
		base := strings.TrimSpace(raw.BaseURL)
		u, err := url.Parse(base)
		if err != nil || !u.IsAbs() {
			return config{}, fmt.Errorf("parse base_url: want an absolute URL, got %q", base)
		}
		cfg.BaseURL = base
	}
	return cfg, nil
}
