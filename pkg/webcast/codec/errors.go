package codec

import "errors"

var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrMalformedBody  = errors.New("malformed response body")
	ErrDecompress     = errors.New("failed to decompress payload")
)
