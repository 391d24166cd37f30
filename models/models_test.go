package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var at = time.Date(2024, 3, 9, 14, 5, 7, 123456789, time.UTC)

func TestNewCommand(t *testing.T) {
	cmd := NewCommand(MsgStateSet, map[string]string{"fpwr": "ON"}, at)
	got, err := json.Marshal(cmd)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"msg":"STATE-SET","mode-reason":"RAPP","time":"2024-03-09T14:05:07Z","data":{"fpwr":"ON"}}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestNewCommand_NoData(t *testing.T) {
	got, err := json.Marshal(NewCommand(MsgRequestCurrentState, nil, at.In(time.FixedZone("x", 3600))))
	if err != nil {
		t.Fatal(err)
	}
	want := `{"msg":"REQUEST-CURRENT-STATE","mode-reason":"RAPP","time":"2024-03-09T14:05:07Z"}`
	if string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestParseStatus_StateChangePairs(t *testing.T) {
	payload := []byte(`{
		"msg": "STATE-CHANGE",
		"time": "2024-03-09T14:05:07.000Z",
		"mode-reason": "RAPP",
		"product-state": {
			"fnsp": ["0004", "0006"],
			"oson": "ON"
		}
	}`)
	msg, err := ParseStatus("438M/SERIAL/status/current", payload)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := map[string]Value{
		"fnsp": {Previous: "0004", Current: "0006", Changed: true},
		"oson": {Current: "ON"},
	}
	if diff := cmp.Diff(want, msg.ProductState); diff != "" {
		t.Errorf("product-state mismatch (-want +got):\n%s", diff)
	}
	if msg.Topic != "438M/SERIAL/status/current" {
		t.Errorf("topic = %q", msg.Topic)
	}
	if len(msg.Raw) == 0 {
		t.Error("raw payload not kept")
	}
}

func TestParseStatus_NumericTopLevel(t *testing.T) {
	msg, err := ParseStatus("t", []byte(`{"msg":"CURRENT-STATE","rssi":-42,"channel":"6","product-state":{}}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.RSSI == nil || msg.RSSI.Current != "-42" {
		t.Errorf("rssi = %+v, want -42", msg.RSSI)
	}
	if msg.Channel == nil || msg.Channel.Current != "6" {
		t.Errorf("channel = %+v, want 6", msg.Channel)
	}
}

func TestParseStatus_Invalid(t *testing.T) {
	if _, err := ParseStatus("t", []byte(`not json`)); err == nil {
		t.Error("expected error for invalid payload")
	}
	if _, err := ParseStatus("t", []byte(`{"msg":"STATE-CHANGE","product-state":{"fnsp":["1","2","3"]}}`)); err == nil {
		t.Error("expected error for three element pair")
	}
}

func TestValue_MarshalRoundTrip(t *testing.T) {
	got, err := json.Marshal(map[string]Value{"a": {Current: "ON"}, "b": {Previous: "1", Current: "2", Changed: true}})
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"a":"ON","b":["1","2"]}`; string(got) != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestSnapshot_Apply(t *testing.T) {
	var snap Snapshot

	current, _ := ParseStatus("t", []byte(`{"msg":"CURRENT-STATE","time":"t1","product-state":{"oscs":"ON","oson":"ON","osal":"0135","osau":"0225","fnsp":"0004"}}`))
	if !snap.Apply(current, at) {
		t.Fatal("CURRENT-STATE should count as state")
	}

	change, _ := ParseStatus("t", []byte(`{"msg":"STATE-CHANGE","time":"t2","product-state":{"fnsp":["0004","0007"]}}`))
	if !snap.Apply(change, at) {
		t.Fatal("STATE-CHANGE should count as state")
	}

	env, _ := ParseStatus("t", []byte(`{"msg":"ENVIRONMENTAL-CURRENT-SENSOR-DATA","data":{"pm25":"0003"}}`))
	if snap.Apply(env, at) {
		t.Error("environmental data should not count as state")
	}

	want := Snapshot{
		State:         map[string]string{"oscs": "ON", "oson": "ON", "osal": "0135", "osau": "0225", "fnsp": "0007"},
		Environmental: map[string]string{"pm25": "0003"},
		Time:          "t2",
		Updated:       at,
	}
	if diff := cmp.Diff(want, snap); diff != "" {
		t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
	}
	if !snap.Oscillating() {
		t.Error("expected oscillating")
	}
	if osal, osau, ok := snap.Angles(); !ok || osal != "0135" || osau != "0225" {
		t.Errorf("Angles() = %q, %q, %v", osal, osau, ok)
	}
}

func TestSnapshot_LocationAndCopy(t *testing.T) {
	var snap Snapshot
	loc, _ := ParseStatus("t", []byte(`{"msg":"LOCATION","apos":"0128"}`))
	snap.Apply(loc, at)
	if v, ok := snap.Get("apos"); !ok || v != "0128" {
		t.Errorf("apos = %q, %v", v, ok)
	}

	c := snap.Copy()
	c.State["apos"] = "0000"
	if v, _ := snap.Get("apos"); v != "0128" {
		t.Error("Copy shares state map with original")
	}
}

func TestNewSensorUpdate(t *testing.T) {
	msg, _ := ParseStatus("t", []byte(`{"msg":"ENVIRONMENTAL-CURRENT-SENSOR-DATA","time":"2024-03-09T14:00:00Z","data":{"pm25":"0003","pm10":"0012","sltm":"OFF"}}`))
	got := NewSensorUpdate("SERIAL", msg, at)
	want := SensorUpdate{
		Location: "SERIAL",
		Type:     MsgEnvironmental,
		Values:   map[string]float64{"pm25": 3, "pm10": 12},
		Time:     time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC),
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("sensor update mismatch (-want +got):\n%s", diff)
	}
}
