package webcast

import (
	"context"
	"sync"

	"github.com/LLIEPJIOK/webcast-ws/pkg/ws"
)

// fakeTransport отдаёт заранее созданное соединение или ошибку и
// запоминает запрос на подключение.
type fakeTransport struct {
	conn *fakeConn
	err  error
	// hang держит Dial до отмены контекста.
	hang bool

	mu  sync.Mutex
	req ws.DialRequest
}

func (t *fakeTransport) Dial(ctx context.Context, req ws.DialRequest) (Connection, error) {
	t.mu.Lock()
	t.req = req
	t.mu.Unlock()

	if t.hang {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	if t.err != nil {
		return nil, t.err
	}

	return t.conn, nil
}

func (t *fakeTransport) request() ws.DialRequest {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.req
}

// fakeConn доставляет кадры по команде теста и записывает всё отправленное.
type fakeConn struct {
	inbound   chan ws.Message
	closed    chan struct{}
	closeOnce sync.Once
	closeErr  error

	mu     sync.Mutex
	writes [][]byte
	log    *eventLog

	// stall заставляет SendBytes висеть до Close, как запись к пиру,
	// который перестал читать. В stalled приходит сигнал о начале записи.
	stall   bool
	stalled chan struct{}
}

func newFakeConn(log *eventLog) *fakeConn {
	return &fakeConn{
		inbound: make(chan ws.Message, 16),
		closed:  make(chan struct{}),
		stalled: make(chan struct{}, 1),
		log:     log,
	}
}

func (c *fakeConn) SendBytes(data []byte) error {
	select {
	case <-c.closed:
		return ws.ErrConnectionClosed
	default:
	}

	if c.stall {
		select {
		case c.stalled <- struct{}{}:
		default:
		}

		<-c.closed
		return ws.ErrConnectionClosed
	}

	c.mu.Lock()
	c.writes = append(c.writes, append([]byte(nil), data...))
	c.mu.Unlock()

	if c.log != nil {
		c.log.add("write:" + string(data))
	}

	return nil
}

func (c *fakeConn) ReadMessage() (ws.Message, error) {
	select {
	case msg := <-c.inbound:
		return msg, nil
	case <-c.closed:
		if c.closeErr != nil {
			return ws.Message{}, c.closeErr
		}

		return ws.Message{}, ws.ErrConnectionClosed
	}
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

// drop имитирует обрыв соединения со стороны сервера.
func (c *fakeConn) drop(err error) {
	c.closeErr = err
	c.Close()
}

func (c *fakeConn) sendBinary(data []byte) {
	c.inbound <- ws.Message{Type: ws.MessageBinary, Data: data}
}

func (c *fakeConn) sendText(data string) {
	c.inbound <- ws.Message{Type: ws.MessageText, Data: []byte(data)}
}

func (c *fakeConn) written() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.writes...)
}

type eventLog struct {
	mu     sync.Mutex
	events []string
}

func (l *eventLog) add(e string) {
	l.mu.Lock()
	l.events = append(l.events, e)
	l.mu.Unlock()
}

func (l *eventLog) snapshot() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.events...)
}
