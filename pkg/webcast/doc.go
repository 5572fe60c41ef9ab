// Package webcast управляет одной WebSocket сессией протокола webcast:
// подключение, keepalive, декодирование входящих кадров, подтверждения и
// выдача событий потребителю.
//
//	cfg := webcast.DefaultConfig("wss://webcast.example.com/webcast/im/push/v2/")
//	cfg.Cookies = webcast.CookieString("sessionid=...")
//	cfg.ClientParams = map[string]string{"aid": "1988"}
//	cfg.SessionParams = map[string]string{"room_id": "123"}
//	cfg.Handlers = webcast.Handlers{
//	    OnWebcastResponse: func(resp *codec.Response) {
//	        for _, m := range resp.Messages {
//	            fmt.Println(m.Method)
//	        }
//	    },
//	    OnConnectFailed: func(err error) { log.Println(err) },
//	}
//	session := webcast.New(ctx, cfg)
//	<-session.Done()
//
// # Протокол
//
// Каждое бинарное сообщение содержит protobuf кадр. Кадр с id > 0
// подтверждается кадром "ack" с тем же id до выдачи полезной нагрузки.
// Каждые 10 секунд отправляется кадр "hb" (3A 02 68 62). Кадр, который не
// удалось декодировать, приводит к OnMessageDecodingFailed, соединение
// при этом остаётся открытым.
//
// Переподключение не выполняется: после OnConnectFailed или OnClose
// потребитель создаёт новую сессию.
package webcast
