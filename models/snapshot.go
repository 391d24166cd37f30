package models

import "time"

// Snapshot is the merged view of the device built from status messages.
// State holds product-state values, Environmental the latest sensor data.
type Snapshot struct {
	State         map[string]string `json:"product-state"`
	Environmental map[string]string `json:"environmental,omitempty"`
	Time          string            `json:"time,omitempty"`
	Updated       time.Time         `json:"updated"`
}

// Apply merges msg into the snapshot and reports whether it carried device
// state. STATE-CHANGE pairs contribute only their current value.
func (s *Snapshot) Apply(msg StatusMessage, now time.Time) bool {
	switch msg.Msg {
	case MsgCurrentState:
		s.State = make(map[string]string, len(msg.ProductState))
		s.merge(msg.ProductState)
	case MsgStateChange:
		s.merge(msg.ProductState)
	case MsgEnvironmental:
		if s.Environmental == nil {
			s.Environmental = make(map[string]string, len(msg.Data))
		}
		for key, v := range msg.Data {
			s.Environmental[key] = v.Current
		}
		s.Updated = now
		return false
	case MsgLocation:
		if msg.Position == nil {
			return false
		}
		s.set("apos", msg.Position.Current)
	default:
		return false
	}

	if msg.Position != nil {
		s.set("apos", msg.Position.Current)
	}
	if msg.Time != "" {
		s.Time = msg.Time
	}
	s.Updated = now
	return true
}

func (s *Snapshot) merge(values map[string]Value) {
	for key, v := range values {
		s.set(key, v.Current)
	}
}

func (s *Snapshot) set(key, value string) {
	if s.State == nil {
		s.State = make(map[string]string)
	}
	s.State[key] = value
}

// Get returns a product-state value.
func (s Snapshot) Get(key string) (string, bool) {
	v, ok := s.State[key]
	return v, ok
}

// Oscillating reports whether the device says oscillation is both enabled
// and running.
func (s Snapshot) Oscillating() bool {
	return s.State["oscs"] == "ON" && s.State["oson"] == "ON"
}

// Angles returns the raw osal/osau strings when both are present.
func (s Snapshot) Angles() (osal, osau string, ok bool) {
	osal, lok := s.State["osal"]
	osau, uok := s.State["osau"]
	return osal, osau, lok && uok
}

// Copy returns a deep copy safe to hand to another goroutine.
func (s Snapshot) Copy() Snapshot {
	c := s
	c.State = copyMap(s.State)
	c.Environmental = copyMap(s.Environmental)
	return c
}

func copyMap(in map[string]string) map[string]string {
	if in == nil {
		return nil
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
