package webcast

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/LLIEPJIOK/webcast-ws/pkg/webcast/codec"
	"github.com/LLIEPJIOK/webcast-ws/pkg/ws"
)

const (
	Subprotocol       = "echo-protocol"
	Origin            = "https://webcast.tiktok.com/"
	KeepaliveInterval = 10 * time.Second
)

// Connection - открытое соединение, которым владеет сессия.
type Connection interface {
	SendBytes(data []byte) error
	ReadMessage() (ws.Message, error)
	Close() error
}

type Transport interface {
	Dial(ctx context.Context, req ws.DialRequest) (Connection, error)
}

type Codec interface {
	DecodeContainer(data []byte) (*codec.Frame, error)
	EncodeAck(id uint64) ([]byte, error)
}

// Conn - соединение в том виде, в каком его видит потребитель: запись
// идёт через сессию, чтение остаётся за сессией.
type Conn interface {
	SendBytes(data []byte) error
	Close() error
}

// Handlers вызываются из горутины чтения сессии последовательно,
// поэтому не должны надолго блокироваться.
type Handlers struct {
	OnConnect               func(conn Conn)
	OnConnectFailed         func(err error)
	OnWebcastResponse       func(resp *codec.Response)
	OnMessageDecodingFailed func(err error)
	// OnClose получает nil при штатном закрытии.
	OnClose func(err error)
}

type Config struct {
	URL              string
	Cookies          CookieSource
	ClientParams     map[string]string
	SessionParams    map[string]string
	Headers          map[string]string
	TransportOptions ws.Options
	Transport        Transport
	Codec            Codec
	Handlers         Handlers
	Logger           *slog.Logger
}

func DefaultConfig(wsURL string) Config {
	return Config{
		URL:              wsURL,
		TransportOptions: ws.DefaultOptions(),
		Codec:            codec.Protobuf{},
		Logger:           slog.Default(),
	}
}

type Session struct {
	id           string
	url          string
	header       http.Header
	urlErr       error
	options      ws.Options
	transport    Transport
	codec        Codec
	handlers     Handlers
	logger       *slog.Logger
	pingInterval time.Duration

	// mu защищает только состояние соединения, writeMu - запись в него.
	// Close не ждёт writeMu, поэтому может прервать зависшую запись.
	mu       sync.Mutex
	writeMu  sync.Mutex
	conn     Connection
	stopPing chan struct{}
	closing  bool

	cancel   context.CancelFunc
	done     chan struct{}
	doneOnce sync.Once
}

// New создаёт сессию и сразу начинает подключение в фоне. Результат
// подключения приходит через Handlers.
func New(ctx context.Context, cfg Config) *Session {
	s := newSession(cfg)
	s.start(ctx)

	return s
}

func newSession(cfg Config) *Session {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	if cfg.Codec == nil {
		cfg.Codec = codec.Protobuf{}
	}

	if cfg.Transport == nil {
		cfg.Transport = NewTransport(cfg.Logger)
	}

	id := uuid.NewString()
	wsURL, err := buildURL(cfg.URL, mergeParams(cfg.ClientParams, cfg.SessionParams))

	return &Session{
		id:           id,
		url:          wsURL,
		header:       buildHeader(cfg.Cookies, cfg.Headers),
		urlErr:       err,
		options:      cfg.TransportOptions,
		transport:    cfg.Transport,
		codec:        cfg.Codec,
		handlers:     cfg.Handlers,
		logger:       cfg.Logger.With("session_id", id),
		pingInterval: KeepaliveInterval,
		cancel:       func() {},
		done:         make(chan struct{}),
	}
}

func (s *Session) start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()

	go s.run(ctx)
}

func (s *Session) run(ctx context.Context) {
	defer s.finish()

	if s.urlErr != nil {
		s.connectFailed(s.urlErr)
		return
	}

	conn, err := s.transport.Dial(ctx, ws.DialRequest{
		URL:         s.url,
		Subprotocol: Subprotocol,
		Origin:      Origin,
		Header:      s.header.Clone(),
		Options:     s.options,
	})
	if err != nil {
		// Close или отмена контекста во время подключения - не ошибка подключения.
		if s.isClosing() || ctx.Err() != nil {
			s.logger.Debug("connect cancelled", "error", err)
			return
		}

		s.connectFailed(err)
		return
	}

	if !s.handleConnect(conn) {
		_ = conn.Close()
		return
	}

	s.readLoop(conn)
}

func (s *Session) connectFailed(err error) {
	s.logger.Error("connect failed", "error", err)

	if h := s.handlers.OnConnectFailed; h != nil {
		h(fmt.Errorf("%w: %w", ErrConnectFailed, err))
	}
}

func (s *Session) handleConnect(conn Connection) bool {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		return false
	}

	stop := make(chan struct{})
	s.conn = conn
	s.stopPing = stop
	s.mu.Unlock()

	go s.keepalive(stop)

	s.logger.Info("session connected")

	if h := s.handlers.OnConnect; h != nil {
		h(sessionConn{s: s})
	}

	return true
}

func (s *Session) readLoop(conn Connection) {
	for {
		msg, err := conn.ReadMessage()
		if err != nil {
			s.handleClose(err)
			return
		}

		if !msg.IsBinary() {
			s.logger.Debug("ignoring non-binary message", "type", msg.Type.String())
			continue
		}

		s.handleMessage(msg.Data)
	}
}

// handleClose идемпотентен: повторный вызов ничего не делает.
func (s *Session) handleClose(err error) {
	s.mu.Lock()
	stop := s.stopPing
	hadConn := s.conn != nil
	s.stopPing = nil
	s.conn = nil
	s.mu.Unlock()

	if stop != nil {
		close(stop)
	}

	// дожидаемся записи, начатой до закрытия
	s.writeMu.Lock()
	s.writeMu.Unlock()

	if !hadConn {
		return
	}

	if ws.IsNormalClose(err) {
		err = nil
		s.logger.Info("session closed")
	} else {
		s.logger.Warn("session closed unexpectedly", "error", err)
	}

	if h := s.handlers.OnClose; h != nil {
		h(err)
	}
}

// write отправляет кадр, только пока соединение открыто. После
// handleClose запись невозможна.
func (s *Session) write(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return ErrSessionClosed
	}

	return conn.SendBytes(data)
}

func (s *Session) isClosing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closing
}

func (s *Session) finish() {
	s.doneOnce.Do(func() {
		close(s.done)
		s.cancel()
	})
}

// Close закрывает соединение. Если подключение ещё идёт, оно отменяется.
func (s *Session) Close() error {
	s.mu.Lock()
	s.closing = true
	conn := s.conn
	s.mu.Unlock()

	s.cancel()

	if conn == nil {
		return nil
	}

	return conn.Close()
}

// Done закрывается, когда сессия завершена: после ошибки подключения
// или закрытия соединения.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) Connected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn != nil
}

func (s *Session) ID() string {
	return s.id
}

// sessionConn отдаётся потребителю в OnConnect вместо самого соединения.
type sessionConn struct {
	s *Session
}

func (c sessionConn) SendBytes(data []byte) error {
	return c.s.write(data)
}

func (c sessionConn) Close() error {
	return c.s.Close()
}

// URL возвращает адрес подключения вместе с параметрами.
func (s *Session) URL() string {
	return s.url
}
