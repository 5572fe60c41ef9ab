package webcast

import "time"

// pingFrame - кадр "hb", который сервер ожидает каждые KeepaliveInterval.
var pingFrame = []byte{0x3a, 0x02, 0x68, 0x62}

func (s *Session) keepalive(stop <-chan struct{}) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := s.write(pingFrame); err != nil {
				s.logger.Debug("failed to send ping", "error", err)
			}
		}
	}
}
