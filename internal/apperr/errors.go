package apperr

import "errors"

var (
	ErrInvalidArgument     = errors.New("invalid argument")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrDecodeFailed        = errors.New("decode failed")
)
