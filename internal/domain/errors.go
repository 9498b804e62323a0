package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidCity    = errors.New("invalid city record")
	ErrProviderFailed = errors.New("provider failure")
	ErrEmptyContent   = errors.New("empty content")
)
