// Package ws предоставляет минимальный WebSocket транспорт поверх gorilla/websocket:
//   - Dialer с поддержкой sub-protocol, Origin и произвольных заголовков
//   - Conn с сериализованной записью бинарных кадров и блокирующим чтением
//   - Server, который принимает соединения и передаёт их обработчику
//
// # Клиент
//
//	conn, err := ws.NewDialer(nil).Dial(ctx, ws.DialRequest{
//	    URL:         "wss://example.com/ws?room=1",
//	    Subprotocol: "echo-protocol",
//	    Origin:      "https://example.com/",
//	    Header:      http.Header{"Cookie": {"sid=1"}},
//	    Options:     ws.DefaultOptions(),
//	})
//	defer conn.Close()
//	conn.SendBytes([]byte{0x3a, 0x02, 0x68, 0x62})
//	msg, err := conn.ReadMessage()
//
// # Сервер
//
//	cfg := ws.DefaultServerConfig()
//	cfg.Subprotocols = []string{"echo-protocol"}
//	server := ws.NewServer(cfg, func(ctx context.Context, conn *ws.Conn) {
//	    for {
//	        msg, err := conn.ReadMessage()
//	        if err != nil {
//	            return
//	        }
//	        _ = conn.SendBytes(msg.Data)
//	    }
//	})
//	http.Handle("/ws", server)
//
// Любая ошибка ReadMessage означает, что соединение закрыто. После Close
// запись возвращает ErrConnectionClosed.
package ws
