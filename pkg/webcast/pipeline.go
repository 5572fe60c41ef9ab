package webcast

import "fmt"

// handleMessage обрабатывает один бинарный кадр: декодирование,
// подтверждение, затем выдача ответа. Ошибка декодирования не влияет
// на следующие кадры.
func (s *Session) handleMessage(data []byte) {
	frame, err := s.codec.DecodeContainer(data)
	if err != nil {
		s.logger.Warn("failed to decode message", "error", err, "size", len(data))

		if h := s.handlers.OnMessageDecodingFailed; h != nil {
			h(fmt.Errorf("%w: %w", ErrMessageDecodeFailed, err))
		}

		return
	}

	if frame == nil {
		return
	}

	if frame.ID > 0 {
		s.sendAck(frame.ID)
	}

	if frame.Response == nil {
		return
	}

	if h := s.handlers.OnWebcastResponse; h != nil {
		h(frame.Response)
	}
}

func (s *Session) sendAck(id uint64) {
	data, err := s.codec.EncodeAck(id)
	if err != nil {
		s.logger.Debug("failed to encode ack", "id", id, "error", err)
		return
	}

	if err := s.write(data); err != nil {
		s.logger.Debug("failed to send ack", "id", id, "error", err)
	}
}
