package app

import (
	"fmt"

	"github.com/dkeye/Duet/internal/domain"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	DropMessage
	KickConnection
)

// ParseBackpressure maps the config value to an action.
func ParseBackpressure(s string) (BackpressureAction, error) {
	switch s {
	case "kick", "":
		return KickConnection, nil
	case "drop":
		return DropMessage, nil
	case "none":
		return NoAction, nil
	default:
		return NoAction, fmt.Errorf("unknown backpressure action %q", s)
	}
}

type Policy interface {
	OnBackPressure(id domain.ConnID) BackpressureAction
}

type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(domain.ConnID) BackpressureAction {
	return p.Action
}
