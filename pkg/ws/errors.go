package ws

import "errors"

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrInvalidCA        = errors.New("invalid CA certificate")
)
