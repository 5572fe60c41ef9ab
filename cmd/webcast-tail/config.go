package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/LLIEPJIOK/webcast-ws/pkg/webcast"
	"github.com/LLIEPJIOK/webcast-ws/pkg/ws"
)

type fileConfig struct {
	URL              string            `toml:"url"`
	Cookie           string            `toml:"cookie"`
	HandshakeTimeout string            `toml:"handshake_timeout"`
	WriteTimeout     string            `toml:"write_timeout"`
	ReadLimit        int64             `toml:"read_limit"`
	ClientParams     map[string]string `toml:"client_params"`
	SessionParams    map[string]string `toml:"session_params"`
	Headers          map[string]string `toml:"headers"`
}

func loadSessionConfig(path string) (webcast.Config, error) {
	var raw fileConfig

	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return webcast.Config{}, fmt.Errorf("load webcast config: %w", err)
	}

	return buildSessionConfig(meta, raw)
}

func buildSessionConfig(meta toml.MetaData, raw fileConfig) (webcast.Config, error) {
	url := strings.TrimSpace(raw.URL)
	if url == "" {
		return webcast.Config{}, fmt.Errorf("url is required")
	}

	cfg := webcast.DefaultConfig(url)
	cfg.ClientParams = raw.ClientParams
	cfg.SessionParams = raw.SessionParams
	cfg.Headers = raw.Headers

	if meta.IsDefined("cookie") {
		cfg.Cookies = webcast.CookieString(strings.TrimSpace(raw.Cookie))
	}

	if meta.IsDefined("handshake_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.HandshakeTimeout))
		if err != nil {
			return webcast.Config{}, fmt.Errorf("parse handshake_timeout: %w", err)
		}
		cfg.TransportOptions.HandshakeTimeout = d
	}

	if meta.IsDefined("write_timeout") {
		d, err := time.ParseDuration(strings.TrimSpace(raw.WriteTimeout))
		if err != nil {
			return webcast.Config{}, fmt.Errorf("parse write_timeout: %w", err)
		}
		cfg.TransportOptions.WriteTimeout = d
	}

	if meta.IsDefined("read_limit") {
		cfg.TransportOptions.ReadLimit = raw.ReadLimit
	}

	tlsCfg, err := ws.TLSConfigFromEnv()
	if err != nil {
		return webcast.Config{}, fmt.Errorf("load tls config: %w", err)
	}
	cfg.TransportOptions.TLSClientConfig = tlsCfg

	return cfg, nil
}
