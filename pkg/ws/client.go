package ws

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// Options - параметры транспорта, передаются в Dial без изменений.
type Options struct {
	HandshakeTimeout  time.Duration
	WriteTimeout      time.Duration
	ReadLimit         int64
	ReadBufferSize    int
	WriteBufferSize   int
	EnableCompression bool
	TLSClientConfig   *tls.Config
	Proxy             func(*http.Request) (*url.URL, error)
}

func DefaultOptions() Options {
	return Options{
		HandshakeTimeout: 45 * time.Second,
		WriteTimeout:     10 * time.Second,
		ReadBufferSize:   4096,
		WriteBufferSize:  4096,
	}
}

type DialRequest struct {
	URL         string
	Subprotocol string
	Origin      string
	Header      http.Header
	Options     Options
}

type Dialer struct {
	logger *slog.Logger
}

func NewDialer(logger *slog.Logger) *Dialer {
	if logger == nil {
		logger = slog.Default()
	}

	return &Dialer{logger: logger}
}

func (d *Dialer) Dial(ctx context.Context, req DialRequest) (*Conn, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}

	header := req.Header.Clone()
	if header == nil {
		header = http.Header{}
	}

	// Origin из заголовков вызывающего имеет приоритет
	if req.Origin != "" && header.Get("Origin") == "" {
		header.Set("Origin", req.Origin)
	}

	dialer := websocket.Dialer{
		Proxy:             req.Options.Proxy,
		HandshakeTimeout:  req.Options.HandshakeTimeout,
		ReadBufferSize:    req.Options.ReadBufferSize,
		WriteBufferSize:   req.Options.WriteBufferSize,
		EnableCompression: req.Options.EnableCompression,
		TLSClientConfig:   req.Options.TLSClientConfig,
	}
	if req.Subprotocol != "" {
		dialer.Subprotocols = []string{req.Subprotocol}
	}

	d.logger.Info("connecting to server", slog.String("host", u.Host))

	conn, resp, err := dialer.DialContext(ctx, u.String(), header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial failed with status %d: %w", resp.StatusCode, err)
		}

		return nil, fmt.Errorf("dial failed: %w", err)
	}

	if req.Options.ReadLimit > 0 {
		conn.SetReadLimit(req.Options.ReadLimit)
	}

	d.logger.Info("connected to server",
		"host", u.Host,
		"subprotocol", conn.Subprotocol(),
	)

	return newConn(conn, req.Options.WriteTimeout), nil
}
