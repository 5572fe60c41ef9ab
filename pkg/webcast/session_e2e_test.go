package webcast_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LLIEPJIOK/webcast-ws/pkg/webcast"
	"github.com/LLIEPJIOK/webcast-ws/pkg/webcast/codec"
	"github.com/LLIEPJIOK/webcast-ws/pkg/ws"
)

type handshake struct {
	header      http.Header
	query       url.Values
	subprotocol string
}

// startPushServer поднимает сервер, который отправляет кадры и возвращает
// всё, что прислал клиент, в канал received.
func startPushServer(t *testing.T, frames [][]byte) (string, <-chan handshake, <-chan []byte) {
	t.Helper()

	handshakes := make(chan handshake, 1)
	received := make(chan []byte, 16)

	cfg := ws.DefaultServerConfig()
	cfg.Subprotocols = []string{webcast.Subprotocol}

	server := ws.NewServer(cfg, func(ctx context.Context, conn *ws.Conn) {
		for _, f := range frames {
			if err := conn.SendBytes(f); err != nil {
				return
			}
		}

		for {
			msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- msg.Data
		}
	})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handshakes <- handshake{
			header:      r.Header.Clone(),
			query:       r.URL.Query(),
			subprotocol: r.Header.Get("Sec-WebSocket-Protocol"),
		}
		server.ServeHTTP(w, r)
	}))
	t.Cleanup(ts.Close)

	return "ws" + strings.TrimPrefix(ts.URL, "http"), handshakes, received
}

func TestSession_EndToEnd(t *testing.T) {
	body := codec.EncodeResponse(&codec.Response{
		Messages: []codec.Message{{Method: "WebcastChatMessage", Payload: []byte("hi")}},
		Cursor:   "c-1",
	})
	compressed, err := codec.Gzip(body)
	require.NoError(t, err)

	wsURL, handshakes, received := startPushServer(t, [][]byte{
		{0xde, 0xad},
		codec.EncodeFrame(&codec.Frame{
			ID:      3,
			Headers: map[string]string{"compress_type": "gzip"},
			Type:    codec.TypeMessage,
			Payload: compressed,
		}),
	})

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	httpURL, err := url.Parse(strings.Replace(wsURL, "ws://", "http://", 1))
	require.NoError(t, err)
	jar.SetCookies(httpURL, []*http.Cookie{{Name: "sessionid", Value: "s1"}})

	responses := make(chan *codec.Response, 1)
	decodeErrs := make(chan error, 1)
	closed := make(chan error, 1)

	cfg := webcast.DefaultConfig(wsURL)
	cfg.Cookies = webcast.JarCookies{Jar: jar, URL: httpURL}
	cfg.ClientParams = map[string]string{"aid": "1988"}
	cfg.SessionParams = map[string]string{"room_id": "42"}
	cfg.Headers = map[string]string{"User-Agent": "webcast-test"}
	cfg.Handlers = webcast.Handlers{
		OnWebcastResponse:       func(resp *codec.Response) { responses <- resp },
		OnMessageDecodingFailed: func(err error) { decodeErrs <- err },
		OnClose:                 func(err error) { closed <- err },
		OnConnectFailed:         func(err error) { t.Errorf("connect failed: %v", err) },
	}

	session := webcast.New(context.Background(), cfg)

	var hs handshake
	select {
	case hs = <-handshakes:
	case <-time.After(2 * time.Second):
		t.Fatal("no handshake")
	}

	assert.Equal(t, webcast.Subprotocol, hs.subprotocol)
	assert.Equal(t, webcast.Origin, hs.header.Get("Origin"))
	assert.Equal(t, "sessionid=s1", hs.header.Get("Cookie"))
	assert.Equal(t, "webcast-test", hs.header.Get("User-Agent"))
	assert.Equal(t, "1988", hs.query.Get("aid"))
	assert.Equal(t, "42", hs.query.Get("room_id"))

	select {
	case err := <-decodeErrs:
		assert.ErrorIs(t, err, webcast.ErrMessageDecodeFailed)
	case <-time.After(2 * time.Second):
		t.Fatal("no decode failure")
	}

	select {
	case resp := <-responses:
		require.Len(t, resp.Messages, 1)
		assert.Equal(t, "WebcastChatMessage", resp.Messages[0].Method)
		assert.Equal(t, "c-1", resp.Cursor)
	case <-time.After(2 * time.Second):
		t.Fatal("no response")
	}

	select {
	case ack := <-received:
		assert.Equal(t, codec.EncodeAck(3), ack)
	case <-time.After(2 * time.Second):
		t.Fatal("no ack")
	}

	require.NoError(t, session.Close())

	select {
	case err := <-closed:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("no close")
	}

	<-session.Done()
	assert.False(t, session.Connected())
}
