package controller

import (
	"context"
	"fmt"
	"strings"

	"github.com/alittlebrighter/blowcontrol/models"
)

// Controller is the messaging side of the fan: it writes state variables and
// reads back what the device reports.
type Controller interface {
	// SetState sends a STATE-SET command with the given variables.
	SetState(ctx context.Context, data map[string]string) error
	// Send publishes an arbitrary command such as REQUEST-CURRENT-STATE.
	Send(ctx context.Context, msg string, data map[string]string) error
	// RequestState asks the device for its current state and waits for the
	// answer until ctx is done.
	RequestState(ctx context.Context) (models.Snapshot, error)
	// Listen delivers every status message to handle until ctx is done.
	Listen(ctx context.Context, handle func(models.StatusMessage)) error
	Close()
}

type Switch uint8

const (
	Off Switch = iota
	On
)

// SwitchFor maps a boolean onto the device's ON/OFF values.
func SwitchFor(on bool) Switch {
	if on {
		return On
	}
	return Off
}

// ParseSwitch reads a device ON/OFF value.
func ParseSwitch(s string) (Switch, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ON":
		return On, nil
	case "OFF":
		return Off, nil
	}
	return Off, fmt.Errorf("invalid switch value %q", s)
}

func (s Switch) String() string {
	switch s {
	case On:
		return "ON"
	default:
		return "OFF"
	}
}

func (s Switch) MarshalText() (text []byte, err error) {
	return []byte(s.String()), nil
}
