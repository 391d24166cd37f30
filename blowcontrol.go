// Package blowcontrol drives a purifier fan over its local MQTT broker:
// power, speed, modes, sleep timer and, above all, the oscillation sweep.
package blowcontrol

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alittlebrighter/blowcontrol/controller"
	"github.com/alittlebrighter/blowcontrol/logger"
	"github.com/alittlebrighter/blowcontrol/models"
	"github.com/alittlebrighter/blowcontrol/oscillation"
	"github.com/alittlebrighter/blowcontrol/util"
)

var ErrStateUnavailable = errors.New("could not read device state")

// Fan is the primary struct for operating a single device.
type Fan struct {
	// DefaultWidth is used by SetDirection when the current width cannot be
	// read from the device.
	DefaultWidth int
	// FallbackHeading is used by SetWidth when the current position cannot
	// be read from the device.
	FallbackHeading int
	// StateTimeout bounds every state read.
	StateTimeout time.Duration

	control controller.Controller
	log     *logger.Logger
}

// Result reports what an oscillation command wrote and whether the write
// reached the device. Error carries transport failures only; invalid
// geometry is returned as an error before anything is sent.
type Result struct {
	Success bool `json:"success"`
	oscillation.Solution
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`

	WidthAdjusted  bool   `json:"width_adjusted,omitempty"`
	RequestedWidth string `json:"requested_width,omitempty"`
	AdjustedWidth  string `json:"adjusted_width,omitempty"`

	WidthPreserved    bool `json:"width_preserved,omitempty"`
	CurrentWidth      int  `json:"current_width,omitempty"`
	OscillationWasOff bool `json:"oscillation_was_off,omitempty"`
}

// NewFan returns a Fan with the stock defaults: 90° width, 180° heading and
// a ten second state timeout.
func NewFan(c controller.Controller, log *logger.Logger) *Fan {
	return &Fan{
		DefaultWidth:    oscillation.WidthMedium,
		FallbackHeading: 180,
		StateTimeout:    10 * time.Second,
		control:         c,
		log:             log,
	}
}

func (f *Fan) SetController(c controller.Controller) {
	f.control = c
}

// SetPower turns the fan on or off.
func (f *Fan) SetPower(ctx context.Context, on bool) error {
	return f.setSwitch(ctx, "fpwr", on)
}

// SetAutoMode toggles automatic air quality control.
func (f *Fan) SetAutoMode(ctx context.Context, on bool) error {
	return f.setSwitch(ctx, "auto", on)
}

// SetNightMode toggles night mode.
func (f *Fan) SetNightMode(ctx context.Context, on bool) error {
	return f.setSwitch(ctx, "nmod", on)
}

func (f *Fan) setSwitch(ctx context.Context, key string, on bool) error {
	value := controller.SwitchFor(on)
	f.log.Infow("setting switch", "key", key, "value", value)
	return f.control.SetState(ctx, map[string]string{key: value.String()})
}

// SetFanSpeed sets a speed from 1 to 10. Speed 0 powers the fan off.
func (f *Fan) SetFanSpeed(ctx context.Context, speed int) error {
	if speed < 0 || speed > 10 {
		return fmt.Errorf("%w, got %d", util.ErrInvalidFanSpeed, speed)
	}
	if speed == 0 {
		return f.SetPower(ctx, false)
	}
	f.log.Infow("setting fan speed", "speed", speed)
	return f.control.SetState(ctx, map[string]string{"fnsp": fmt.Sprintf("%04d", speed)})
}

// SetSleepTimer arms the sleep timer for the given number of minutes. Zero
// clears it.
func (f *Fan) SetSleepTimer(ctx context.Context, minutes int) error {
	if minutes < 0 || minutes > util.MaxSleepMinutes {
		return util.ErrSleepOutOfRange
	}
	value := "OFF"
	if minutes > 0 {
		value = fmt.Sprintf("%04d", minutes)
	}
	f.log.Infow("setting sleep timer", "minutes", minutes)
	return f.control.SetState(ctx, map[string]string{"sltm": value})
}

// RequestCurrentState asks the device to publish its state without waiting
// for the answer. Listeners pick it up.
func (f *Fan) RequestCurrentState(ctx context.Context) error {
	return f.control.Send(ctx, models.MsgRequestCurrentState, nil)
}

// State reads the current device state, bounded by StateTimeout.
func (f *Fan) State(ctx context.Context) (models.Snapshot, error) {
	ctx, cancel := context.WithTimeout(ctx, f.StateTimeout)
	defer cancel()

	snap, err := f.control.RequestState(ctx)
	if err != nil {
		return snap, fmt.Errorf("%w: %v", ErrStateUnavailable, err)
	}
	return snap, nil
}
