package app

import "github.com/okatev/whiteboard/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickConn
	DropFrame
)

// Policy decides what happens to a connection whose send queue is full.
type Policy interface {
	OnBackPressure(s core.SessionService, cid core.ConnID) BackpressureAction
}

type SimplePolicy struct{}

func (SimplePolicy) OnBackPressure(s core.SessionService, cid core.ConnID) BackpressureAction {
	return KickConn
}
