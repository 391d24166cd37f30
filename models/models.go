package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Message kinds exchanged with the device.
const (
	MsgStateSet            = "STATE-SET"
	MsgRequestCurrentState = "REQUEST-CURRENT-STATE"
	MsgCurrentState        = "CURRENT-STATE"
	MsgStateChange         = "STATE-CHANGE"
	MsgEnvironmental       = "ENVIRONMENTAL-CURRENT-SENSOR-DATA"
	MsgLocation            = "LOCATION"

	ModeReasonApp = "RAPP"
)

// Command is the JSON body published on the device command topic.
type Command struct {
	Msg        string            `json:"msg"`
	ModeReason string            `json:"mode-reason"`
	Time       string            `json:"time"`
	Data       map[string]string `json:"data,omitempty"`
}

// NewCommand stamps a command with the given time, truncated to seconds.
func NewCommand(msg string, data map[string]string, now time.Time) Command {
	return Command{
		Msg:        msg,
		ModeReason: ModeReasonApp,
		Time:       FormatTime(now),
		Data:       data,
	}
}

// FormatTime renders t as UTC with second precision and a trailing Z.
func FormatTime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// Value is a single state field. The device sends either a plain string or,
// in STATE-CHANGE messages, a [previous, current] pair.
type Value struct {
	Previous string
	Current  string
	Changed  bool
}

func (v *Value) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = Value{Current: s}
		return nil
	}

	var pair []interface{}
	if err := json.Unmarshal(data, &pair); err == nil {
		if len(pair) != 2 {
			return fmt.Errorf("state value pair has %d elements", len(pair))
		}
		*v = Value{Previous: scalar(pair[0]), Current: scalar(pair[1]), Changed: true}
		return nil
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = Value{Current: scalar(raw)}
	return nil
}

func (v Value) MarshalJSON() ([]byte, error) {
	if v.Changed {
		return json.Marshal([]string{v.Previous, v.Current})
	}
	return json.Marshal(v.Current)
}

func (v Value) String() string {
	return v.Current
}

func scalar(raw interface{}) string {
	switch t := raw.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

// StatusMessage is anything the device publishes on its status topics.
type StatusMessage struct {
	Msg          string           `json:"msg"`
	Time         string           `json:"time,omitempty"`
	ModeReason   string           `json:"mode-reason,omitempty"`
	StateReason  string           `json:"state-reason,omitempty"`
	ProductState map[string]Value `json:"product-state,omitempty"`
	Data         map[string]Value `json:"data,omitempty"`
	RSSI         *Value           `json:"rssi,omitempty"`
	Channel      *Value           `json:"channel,omitempty"`
	Position     *Value           `json:"apos,omitempty"`

	Topic string          `json:"-"`
	Raw   json.RawMessage `json:"-"`
}

// ParseStatus decodes a status payload and keeps the raw bytes around for
// message kinds nothing knows how to render.
func ParseStatus(topic string, payload []byte) (StatusMessage, error) {
	msg := StatusMessage{}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return StatusMessage{}, fmt.Errorf("could not parse status message on %s: %w", topic, err)
	}
	msg.Topic = topic
	msg.Raw = append(json.RawMessage(nil), payload...)
	return msg, nil
}

// SensorUpdate is the bridge representation of an environmental reading.
type SensorUpdate struct {
	Location string             `json:"location"`
	Type     string             `json:"type"`
	Values   map[string]float64 `json:"values"`
	Time     time.Time          `json:"time"`
}

// NewSensorUpdate keeps only the numeric fields of an environmental
// message. Values such as "OFF" or "INIT" are dropped.
func NewSensorUpdate(location string, msg StatusMessage, now time.Time) SensorUpdate {
	update := SensorUpdate{
		Location: location,
		Type:     msg.Msg,
		Values:   make(map[string]float64, len(msg.Data)),
		Time:     now,
	}
	if t, err := time.Parse(time.RFC3339, msg.Time); err == nil {
		update.Time = t
	}
	for key, v := range msg.Data {
		if n, err := strconv.ParseFloat(v.Current, 64); err == nil {
			update.Values[key] = n
		}
	}
	return update
}
