package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/alittlebrighter/blowcontrol"
	"github.com/alittlebrighter/blowcontrol/logger"
	"github.com/alittlebrighter/blowcontrol/util"
)

var ErrUnknownAction = errors.New("unknown action")

// Fan is the part of *blowcontrol.Fan that remote commands can reach.
type Fan interface {
	SetPower(ctx context.Context, on bool) error
	SetAutoMode(ctx context.Context, on bool) error
	SetNightMode(ctx context.Context, on bool) error
	SetFanSpeed(ctx context.Context, speed int) error
	SetSleepTimer(ctx context.Context, minutes int) error
	SetWidth(ctx context.Context, input string) (blowcontrol.Result, error)
	SetDirection(ctx context.Context, heading int) (blowcontrol.Result, error)
	SetAngles(ctx context.Context, width, heading int) (blowcontrol.Result, error)
	StopOscillation(ctx context.Context) blowcontrol.Result
	RequestCurrentState(ctx context.Context) error
}

// Command is a remote request, e.g. {"action":"width","value":"wide"} or
// {"action":"angles","width":90,"heading":180}.
type Command struct {
	Action  string `json:"action"`
	Value   string `json:"value,omitempty"`
	Width   int    `json:"width,omitempty"`
	Heading int    `json:"heading,omitempty"`
}

// Reply is sent back when the request carries a reply subject.
type Reply struct {
	Success bool                `json:"success"`
	Error   string              `json:"error,omitempty"`
	Result  *blowcontrol.Result `json:"result,omitempty"`
}

// Dispatcher turns remote commands into fan operations.
type Dispatcher struct {
	fan Fan
	log *logger.Logger
}

func NewDispatcher(fan Fan, log *logger.Logger) *Dispatcher {
	return &Dispatcher{fan: fan, log: log}
}

// Handle decodes and runs one command and returns the encoded reply.
func (d *Dispatcher) Handle(ctx context.Context, data []byte) []byte {
	reply := d.run(ctx, data)
	if !reply.Success {
		d.log.Warnw("remote command failed", "err", reply.Error)
	}
	out, err := json.Marshal(reply)
	if err != nil {
		d.log.Errorw("could not encode reply", "err", err)
		return []byte(`{"success":false}`)
	}
	return out
}

func (d *Dispatcher) run(ctx context.Context, data []byte) Reply {
	var cmd Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return Reply{Error: fmt.Sprintf("invalid command: %v", err)}
	}
	d.log.Infow("remote command", "action", cmd.Action, "value", cmd.Value)

	res, err := d.dispatch(ctx, cmd)
	if err != nil {
		return Reply{Error: err.Error(), Result: res}
	}
	if res != nil && !res.Success {
		return Reply{Error: res.Error, Result: res}
	}
	return Reply{Success: true, Result: res}
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd Command) (*blowcontrol.Result, error) {
	switch strings.ToLower(cmd.Action) {
	case "power", "auto", "night":
		on, err := util.ParseBool(cmd.Value)
		if err != nil {
			return nil, err
		}
		switch strings.ToLower(cmd.Action) {
		case "power":
			return nil, d.fan.SetPower(ctx, on)
		case "auto":
			return nil, d.fan.SetAutoMode(ctx, on)
		default:
			return nil, d.fan.SetNightMode(ctx, on)
		}
	case "speed":
		speed, err := util.ParseFanSpeed(cmd.Value)
		if err != nil {
			return nil, err
		}
		return nil, d.fan.SetFanSpeed(ctx, speed)
	case "timer":
		minutes, err := util.ParseSleepTimer(cmd.Value)
		if err != nil {
			return nil, err
		}
		return nil, d.fan.SetSleepTimer(ctx, minutes)
	case "width":
		return result(d.fan.SetWidth(ctx, cmd.Value))
	case "direction":
		heading, err := util.ParseInt(cmd.Value)
		if err != nil {
			return nil, err
		}
		return result(d.fan.SetDirection(ctx, heading))
	case "angles":
		return result(d.fan.SetAngles(ctx, cmd.Width, cmd.Heading))
	case "stop":
		res := d.fan.StopOscillation(ctx)
		return &res, nil
	case "state":
		return nil, d.fan.RequestCurrentState(ctx)
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownAction, cmd.Action)
}

func result(res blowcontrol.Result, err error) (*blowcontrol.Result, error) {
	if err != nil {
		return nil, err
	}
	return &res, nil
}
