package logging

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// InitLogger настраивает глобальный zerolog логгер утилиты.
func InitLogger(app string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).With().Timestamp().Str("app", app).Logger()
	log.Logger = logger
	return logger
}

// Slog возвращает slog.Logger, который пишет через logger. Библиотечные
// пакеты логируют в slog, утилиты - в zerolog, вывод получается единым.
func Slog(logger zerolog.Logger, level slog.Leveler) *slog.Logger {
	return slog.New(NewSlogHandler(logger, level))
}

type attr struct {
	prefix string
	attr   slog.Attr
}

// SlogHandler - slog.Handler поверх zerolog.Logger.
type SlogHandler struct {
	logger zerolog.Logger
	level  slog.Leveler
	prefix string
	attrs  []attr
}

func NewSlogHandler(logger zerolog.Logger, level slog.Leveler) *SlogHandler {
	if level == nil {
		level = slog.LevelInfo
	}

	return &SlogHandler{logger: logger, level: level}
}

func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	ev := h.logger.WithLevel(zerologLevel(r.Level))
	if ev == nil {
		return nil
	}

	for _, a := range h.attrs {
		ev = appendAttr(ev, a.prefix, a.attr)
	}

	r.Attrs(func(a slog.Attr) bool {
		ev = appendAttr(ev, h.prefix, a)
		return true
	})

	ev.Msg(r.Message)

	return nil
}

func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}

	next := *h
	next.attrs = make([]attr, 0, len(h.attrs)+len(attrs))
	next.attrs = append(next.attrs, h.attrs...)
	for _, a := range attrs {
		next.attrs = append(next.attrs, attr{prefix: h.prefix, attr: a})
	}

	return &next
}

func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}

	next := *h
	next.prefix = h.prefix + name + "."

	return &next
}

func appendAttr(ev *zerolog.Event, prefix string, a slog.Attr) *zerolog.Event {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return ev
	}

	key := prefix + a.Key

	switch a.Value.Kind() {
	case slog.KindString:
		return ev.Str(key, a.Value.String())
	case slog.KindInt64:
		return ev.Int64(key, a.Value.Int64())
	case slog.KindUint64:
		return ev.Uint64(key, a.Value.Uint64())
	case slog.KindFloat64:
		return ev.Float64(key, a.Value.Float64())
	case slog.KindBool:
		return ev.Bool(key, a.Value.Bool())
	case slog.KindDuration:
		return ev.Dur(key, a.Value.Duration())
	case slog.KindTime:
		return ev.Time(key, a.Value.Time())
	case slog.KindGroup:
		groupPrefix := prefix
		if a.Key != "" {
			groupPrefix = key + "."
		}

		for _, ga := range a.Value.Group() {
			ev = appendAttr(ev, groupPrefix, ga)
		}

		return ev
	}

	if err, ok := a.Value.Any().(error); ok {
		return ev.AnErr(key, err)
	}

	return ev.Interface(key, a.Value.Any())
}

func zerologLevel(level slog.Level) zerolog.Level {
	switch {
	case level < slog.LevelInfo:
		return zerolog.DebugLevel
	case level < slog.LevelWarn:
		return zerolog.InfoLevel
	case level < slog.LevelError:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}
