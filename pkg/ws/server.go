package ws

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

// Handler обслуживает одно принятое соединение. Соединение закрывается
// после возврата из обработчика.
type Handler func(ctx context.Context, conn *Conn)

type ServerConfig struct {
	ReadBufferSize  int
	WriteBufferSize int
	Subprotocols    []string
	CheckOrigin     func(r *http.Request) bool
	Logger          *slog.Logger
}

func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin:     func(r *http.Request) bool { return true },
		Logger:          slog.Default(),
	}
}

type Server struct {
	upgrader websocket.Upgrader
	handler  Handler
	logger   *slog.Logger
}

func NewServer(cfg ServerConfig, handler Handler) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return &Server{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  cfg.ReadBufferSize,
			WriteBufferSize: cfg.WriteBufferSize,
			Subprotocols:    cfg.Subprotocols,
			CheckOrigin:     cfg.CheckOrigin,
		},
		handler: handler,
		logger:  cfg.Logger,
	}
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("failed to upgrade connection", "error", err)
		return
	}

	c := newConn(conn, 0)
	defer c.Close()

	s.logger.Info("client connected",
		"remote_addr", conn.RemoteAddr(),
		"subprotocol", conn.Subprotocol(),
	)
	defer s.logger.Info("client disconnected", "remote_addr", conn.RemoteAddr())

	s.handler(r.Context(), c)
}
