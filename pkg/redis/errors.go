package redis

import "errors"

var (
	ErrInvalidURL  = errors.New("redis: invalid connection url")
	ErrNotReady    = errors.New("redis: no answer to ping before connect deadline")
	ErrUnavailable = errors.New("redis: contact, preference and stats store unreachable")
)
