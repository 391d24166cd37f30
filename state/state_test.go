package state

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/alittlebrighter/blowcontrol/models"
	"github.com/alittlebrighter/blowcontrol/util"
)

func parse(t *testing.T, payload string) models.StatusMessage {
	t.Helper()
	msg, err := models.ParseStatus("438M/SER/status/current", []byte(payload))
	if err != nil {
		t.Fatal(err)
	}
	return msg
}

func TestFormatValue(t *testing.T) {
	p := NewPrinter(new(bytes.Buffer), util.Celsius)
	tests := []struct {
		key, value, want string
	}{
		{"pm25", "0012", "12 μg/m³"},
		{"osal", "0135", "135°"},
		{"apos", "0090", "90°"},
		{"fnsp", "0004", "4/10"},
		{"fnsp", "AUTO", "AUTO"},
		{"sltm", "OFF", "OFF"},
		{"sltm", "0135", "2h 15m"},
		{"sltm", "0045", "45m"},
		{"hflr", "0087", "87%"},
		{"rssi", "-28", "-28 dBm (Excellent)"},
		{"rssi", "-45", "-45 dBm (Fair)"},
		{"rssi", "-70", "-70 dBm (Poor)"},
		{"tact", "2961", "22.95°C"},
		{"tact", "OFF", "OFF"},
		{"osal", "bogus", "bogus"},
		{"fpwr", "ON", "ON"},
	}
	for _, tt := range tests {
		if got := p.FormatValue(tt.key, tt.value); got != tt.want {
			t.Errorf("FormatValue(%s, %s) = %q, want %q", tt.key, tt.value, got, tt.want)
		}
	}

	p.Units = util.Fahrenheit
	if got := p.FormatValue("tact", "2961"); got != "73.31°F" {
		t.Errorf("fahrenheit tact = %q", got)
	}
}

func TestPrintCurrentState(t *testing.T) {
	buf := new(bytes.Buffer)
	NewPrinter(buf, util.Celsius).Print(parse(t, `{"msg":"CURRENT-STATE","time":"2024-03-09T14:05:07.000Z","mode-reason":"LAPP","rssi":"-42","product-state":{"fpwr":"ON","fnsp":"0005","oscs":"ON","osal":"0135","osau":"0225","hflr":"0087"}}`))

	out := buf.String()
	for _, want := range []string{
		"DEVICE STATE",
		"POWER & OPERATION",
		"Fan Speed           : 5/10",
		"Oscillation Angle Lower: 135°",
		"HEPA Filter Remaining: 87%",
		"WiFi Signal Strength: -42 dBm (Fair)",
		"Mode Reason         : LAPP",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "State Reason") {
		t.Error("printed an empty state reason")
	}
}

func TestPrintStateChange(t *testing.T) {
	buf := new(bytes.Buffer)
	NewPrinter(buf, util.Celsius).Print(parse(t, `{"msg":"STATE-CHANGE","time":"t1","product-state":{"fnsp":["0002","0006"],"fpwr":["ON","ON"],"nmod":"OFF"}}`))

	out := buf.String()
	for _, want := range []string{
		"Fan Speed           : 2/10 → 6/10",
		"Fan Power           : ON\n",
		"Night Mode          : ? → OFF",
		"Time                : t1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintEnvironmentalAndLocation(t *testing.T) {
	buf := new(bytes.Buffer)
	p := NewPrinter(buf, util.Celsius)
	p.Print(parse(t, `{"msg":"ENVIRONMENTAL-CURRENT-SENSOR-DATA","data":{"pm25":"0003","p10r":"0007","sltm":"OFF"}}`))
	p.Print(parse(t, `{"msg":"LOCATION","apos":"0200","time":"t2"}`))

	out := buf.String()
	for _, want := range []string{"PM2.5 Particles     : 3 μg/m³", "PM10 Running Average: 7 μg/m³", "Sleep Timer         : OFF", "Actual Position     : 200°"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPrintUnknown(t *testing.T) {
	buf := new(bytes.Buffer)
	NewPrinter(buf, util.Celsius).Print(parse(t, `{"msg":"HELLO","version":"1.2"}`))

	out := buf.String()
	if !strings.Contains(out, "=== HELLO ===") || !strings.Contains(out, `"version": "1.2"`) {
		t.Errorf("unexpected output:\n%s", out)
	}
}

func TestTracker(t *testing.T) {
	tr := NewTracker(3)
	at := time.Date(2024, 3, 9, 14, 0, 0, 0, time.UTC)
	tr.now = func() time.Time { return at }

	tr.Handle(parse(t, `{"msg":"STATE-CHANGE","product-state":{"fnsp":["0001","0002"]}}`))
	if _, ready := tr.Snapshot(); ready {
		t.Fatal("ready before a full state")
	}

	tr.Handle(parse(t, `{"msg":"CURRENT-STATE","time":"t1","product-state":{"fnsp":"0002","oscs":"OFF"}}`))
	tr.Handle(parse(t, `{"msg":"STATE-CHANGE","time":"t2","product-state":{"oscs":["OFF","ON"]}}`))
	tr.Handle(parse(t, `{"msg":"ENVIRONMENTAL-CURRENT-SENSOR-DATA","data":{"pm25":"0009"}}`))

	snap, ready := tr.Snapshot()
	if !ready {
		t.Fatal("not ready after CURRENT-STATE")
	}
	if diff := cmp.Diff(map[string]string{"fnsp": "0002", "oscs": "ON"}, snap.State); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
	if snap.Time != "t2" || snap.Environmental["pm25"] != "0009" {
		t.Errorf("snapshot = %+v", snap)
	}
	if !tr.LastUpdate().Equal(at) {
		t.Errorf("LastUpdate() = %v", tr.LastUpdate())
	}

	history := tr.History.GetAll()
	if len(history) != 3 || history[0].Msg != models.MsgCurrentState {
		t.Errorf("history = %v", history)
	}

	snap.State["fnsp"] = "0010"
	if again, _ := tr.Snapshot(); again.State["fnsp"] != "0002" {
		t.Error("Snapshot() shares its map with the tracker")
	}
}

func TestTracker_WaitForState(t *testing.T) {
	tr := NewTracker(1)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if _, err := tr.WaitForState(ctx); err == nil {
		t.Fatal("expected timeout")
	}

	go tr.Handle(parse(t, `{"msg":"CURRENT-STATE","product-state":{"fpwr":"ON"}}`))

	ctx2, cancel2 := context.WithTimeout(context.Background(), time.Second)
	defer cancel2()
	snap, err := tr.WaitForState(ctx2)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := snap.Get("fpwr"); v != "ON" {
		t.Errorf("snapshot = %+v", snap)
	}
}
