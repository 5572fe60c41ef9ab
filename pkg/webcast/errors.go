package webcast

import "errors"

var (
	ErrConnectFailed       = errors.New("connect failed")
	ErrMessageDecodeFailed = errors.New("message decoding failed")
	ErrSessionClosed       = errors.New("session closed")
)
