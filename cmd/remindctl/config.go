package main

import (
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// appConfig is the resolved CLI configuration: where the record store
// lives and the session state needed to talk to it. Session bootstrap
// (login, device trust) happens outside this tool; the config carries
// the resulting tokens verbatim.
type appConfig struct {
	BaseURL  string
	Timezone string
	Query    url.Values
	Headers  http.Header
}

type fileConfig struct {
	BaseURL  string            `toml:"base_url"`
	Timezone string            `toml:"timezone"`
	Cookie   string            `toml:"cookie"`
	Query    map[string]string `toml:"query"`
	Headers  map[string]string `toml:"headers"`
}

func defaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "remindctl.toml"
	}
	return filepath.Join(home, ".config", "remindctl", "config.toml")
}

func loadConfig(path string) (appConfig, error) {
	cfg := appConfig{
		Query:   url.Values{},
		Headers: http.Header{},
	}

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return appConfig{}, fmt.Errorf("load config: %w", err)
	}

	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(raw.BaseURL), "/")
	if cfg.BaseURL == "" {
		return appConfig{}, fmt.Errorf("load config: base_url is required")
	}

	if meta.IsDefined("timezone") {
		cfg.Timezone = strings.TrimSpace(raw.Timezone)
	}

	for k, v := range raw.Query {
		cfg.Query.Set(k, v)
	}
	for k, v := range raw.Headers {
		cfg.Headers.Set(k, v)
	}
	if meta.IsDefined("cookie") {
		cfg.Headers.Set("Cookie", strings.TrimSpace(raw.Cookie))
	}

	return cfg, nil
}
