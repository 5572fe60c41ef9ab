package ws

import (
	"errors"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type Conn struct {
	conn         *websocket.Conn
	writeMu      sync.Mutex
	writeTimeout time.Duration
	closed       bool
	closedMu     sync.RWMutex
}

func newConn(conn *websocket.Conn, writeTimeout time.Duration) *Conn {
	return &Conn{
		conn:         conn,
		writeTimeout: writeTimeout,
	}
}

func (c *Conn) SendBytes(data []byte) error {
	return c.write(websocket.BinaryMessage, data)
}

func (c *Conn) SendText(data []byte) error {
	return c.write(websocket.TextMessage, data)
}

func (c *Conn) write(messageType int, data []byte) error {
	if c.IsClosed() {
		return ErrConnectionClosed
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}

	return c.conn.WriteMessage(messageType, data)
}

// ReadMessage блокируется до следующего сообщения. Любая ошибка означает,
// что соединение закрыто.
func (c *Conn) ReadMessage() (Message, error) {
	messageType, data, err := c.conn.ReadMessage()
	if err != nil {
		if c.IsClosed() || errors.Is(err, net.ErrClosed) {
			return Message{}, ErrConnectionClosed
		}

		return Message{}, err
	}

	return Message{Type: messageTypeFromFrame(messageType), Data: data}, nil
}

func (c *Conn) Close() error {
	c.closedMu.Lock()
	if c.closed {
		c.closedMu.Unlock()
		return nil
	}
	c.closed = true
	c.closedMu.Unlock()

	// WriteControl и Close безопасны параллельно с записью: зависшая
	// запись прерывается закрытием соединения.
	closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client closing")
	_ = c.conn.WriteControl(websocket.CloseMessage, closeMsg, time.Now().Add(time.Second))

	return c.conn.Close()
}

func (c *Conn) IsClosed() bool {
	c.closedMu.RLock()
	defer c.closedMu.RUnlock()
	return c.closed
}

func (c *Conn) Subprotocol() string {
	return c.conn.Subprotocol()
}

func (c *Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// IsNormalClose сообщает, что соединение закрыто локально или штатным
// close кадром от сервера.
func IsNormalClose(err error) bool {
	if errors.Is(err, ErrConnectionClosed) {
		return true
	}

	return websocket.IsCloseError(
		err,
		websocket.CloseGoingAway,
		websocket.CloseNormalClosure,
	)
}
