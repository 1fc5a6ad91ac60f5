package domain

import "errors"

const MaxSessionIDLen = 64

var (
	ErrSessionIDEmpty   = errors.New("session id empty")
	ErrSessionIDTooLong = errors.New("session id too long")
)

// SessionID names one shared whiteboard. Caller-supplied, opaque.
type SessionID string

// ParseSessionID validates a raw id from the wire.
func ParseSessionID(raw string) (SessionID, error) {
	if len(raw) == 0 {
		return "", ErrSessionIDEmpty
	}
	if len(raw) > MaxSessionIDLen {
		return "", ErrSessionIDTooLong
	}
	return SessionID(raw), nil
}
