package domain

import "errors"

var (
	ErrTransport     = errors.New("transport error")
	ErrBadResponse   = errors.New("unexpected response")
	ErrParse         = errors.New("xml parse error")
	ErrNoBillText    = errors.New("no bill text found")
	ErrModel         = errors.New("model error")
	ErrUnknownIntent = errors.New("unknown intent")
	ErrNoFrame       = errors.New("no dialog frame")
)
