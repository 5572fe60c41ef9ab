package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/LLIEPJIOK/webcast-ws/internal/logging"
	"github.com/LLIEPJIOK/webcast-ws/pkg/webcast"
	"github.com/LLIEPJIOK/webcast-ws/pkg/webcast/codec"
	"github.com/LLIEPJIOK/webcast-ws/pkg/ws"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	interval := flag.Duration("interval", time.Second, "push interval")
	flag.Parse()

	logger := logging.InitLogger("webcast-mockd")

	cfg := ws.DefaultServerConfig()
	cfg.Subprotocols = []string{webcast.Subprotocol}
	cfg.Logger = logging.Slog(logger, slog.LevelWarn)

	srv := &http.Server{
		Addr:              *addr,
		Handler:           ws.NewServer(cfg, newPusher(*interval).serve),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", *addr).Dur("interval", *interval).Msg("mock push server started")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("mock push server stopped")
	}
}

type pusher struct {
	interval time.Duration
}

func newPusher(interval time.Duration) *pusher {
	return &pusher{interval: interval}
}

// serve отправляет кадр "msg" каждые interval и журналирует входящие
// подтверждения и keepalive кадры.
func (p *pusher) serve(ctx context.Context, conn *ws.Conn) {
	remote := conn.RemoteAddr().String()
	log.Info().Str("remote", remote).Str("subprotocol", conn.Subprotocol()).Msg("client connected")

	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		p.readLoop(remote, conn)
	}()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var id uint64
	for {
		select {
		case <-ctx.Done():
			return
		case <-readDone:
			log.Info().Str("remote", remote).Msg("client disconnected")
			return
		case <-ticker.C:
			id++

			frame, err := buildFrame(id)
			if err != nil {
				log.Error().Err(err).Msg("failed to build frame")
				return
			}

			if err := conn.SendBytes(frame); err != nil {
				log.Warn().Err(err).Str("remote", remote).Msg("push failed")
				return
			}

			log.Debug().Uint64("id", id).Msg("pushed")
		}
	}
}

func (p *pusher) readLoop(remote string, conn *ws.Conn) {
	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		if !msg.IsBinary() {
			continue
		}

		frame, err := codec.DecodeFrame(msg.Data)
		if err != nil {
			log.Warn().Err(err).Str("remote", remote).Msg("bad client frame")
			continue
		}

		switch frame.Type {
		case codec.TypeAck:
			log.Info().Str("remote", remote).Uint64("id", frame.ID).Msg("ack")
		case codec.TypeHeartbeat:
			log.Info().Str("remote", remote).Msg("heartbeat")
		default:
			log.Warn().Str("remote", remote).Str("type", frame.Type).Msg("unexpected client frame")
		}
	}
}

func buildFrame(id uint64) ([]byte, error) {
	now := time.Now().UnixMilli()

	body := codec.EncodeResponse(&codec.Response{
		Messages: []codec.Message{{
			Method: "WebcastChatMessage",
			// не декодируется сессией, только передаётся потребителю
			Payload: fmt.Appendf(nil, "mock message %d", id),
			MsgID:   int64(id),
		}},
		Cursor:            fmt.Sprintf("t-%d_r-%d", now, id),
		ServerTimestamp:   now,
		HeartbeatDuration: int32(webcast.KeepaliveInterval / time.Millisecond),
		NeedAck:           true,
	})

	compressed, err := codec.Gzip(body)
	if err != nil {
		return nil, err
	}

	return codec.EncodeFrame(&codec.Frame{
		SeqID:           id,
		ID:              id,
		Headers:         map[string]string{"compress_type": "gzip"},
		PayloadEncoding: "pb",
		Type:            codec.TypeMessage,
		Payload:         compressed,
	}), nil
}
