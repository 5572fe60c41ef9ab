package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/LLIEPJIOK/webcast-ws/internal/logging"
	"github.com/LLIEPJIOK/webcast-ws/pkg/webcast"
	"github.com/LLIEPJIOK/webcast-ws/pkg/webcast/codec"
)

func main() {
	configPath := flag.String("config", "webcast.toml", "path to session config")
	verbose := flag.Bool("v", false, "log session internals")
	flag.Parse()

	logger := logging.InitLogger("webcast-tail")

	cfg, err := loadSessionConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	log.Info().Str("path", *configPath).Msg("loaded config")

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	cfg.Logger = logging.Slog(logger, level)

	cfg.Handlers = webcast.Handlers{
		OnConnect: func(webcast.Conn) {
			log.Info().Msg("connected")
		},
		OnConnectFailed: func(err error) {
			log.Error().Err(err).Msg("connect failed")
		},
		OnWebcastResponse: logResponse,
		OnMessageDecodingFailed: func(err error) {
			log.Warn().Err(err).Msg("message decoding failed")
		},
		OnClose: func(err error) {
			if err != nil {
				log.Warn().Err(err).Msg("connection closed")
				return
			}
			log.Info().Msg("connection closed")
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := webcast.New(ctx, cfg)
	log.Info().Str("session_id", session.ID()).Msg("session started")

	<-session.Done()
}

func logResponse(resp *codec.Response) {
	for _, m := range resp.Messages {
		log.Info().
			Str("method", m.Method).
			Int64("msg_id", m.MsgID).
			Int("size", len(m.Payload)).
			Msg("message")
	}

	log.Debug().
		Str("cursor", resp.Cursor).
		Int("messages", len(resp.Messages)).
		Bool("need_ack", resp.NeedAck).
		Msg("response")
}
