package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrStaleCache   = errors.New("cache entry expired")
	ErrRateLimited  = errors.New("rate limited")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNetwork      = errors.New("network failure")
	ErrInvalidInput = errors.New("invalid input")
	ErrEmptyMarket  = errors.New("no tradable items")
	ErrContextDone  = errors.New("context cancelled")
)
