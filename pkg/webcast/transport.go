package webcast

import (
	"context"
	"log/slog"

	"github.com/LLIEPJIOK/webcast-ws/pkg/ws"
)

type wsTransport struct {
	dialer *ws.Dialer
}

// NewTransport возвращает транспорт на базе ws.Dialer.
func NewTransport(logger *slog.Logger) Transport {
	return wsTransport{dialer: ws.NewDialer(logger)}
}

func (t wsTransport) Dial(ctx context.Context, req ws.DialRequest) (Connection, error) {
	conn, err := t.dialer.Dial(ctx, req)
	if err != nil {
		return nil, err
	}

	return conn, nil
}
