package util

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseBool(t *testing.T) {
	cases := map[string]bool{
		"true": true, "TRUE": true, "True": true, "t": true, "T": true, "1": true,
		"on": true, "ON": true, "yes": true, "Y": true, "TrUe": true, "  true  ": true,
		"false": false, "FALSE": false, "f": false, "0": false, "off": false,
		"Off": false, "no": false, "N": false, "FaLsE": false, "  0  ": false,
	}
	for in, want := range cases {
		got, err := ParseBool(in)
		if err != nil {
			t.Errorf("ParseBool(%q) unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseBool(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestParseBool_Invalid(t *testing.T) {
	for _, in := range []string{"invalid", "maybe", "2", "-1", "1.5", "", "   "} {
		if _, err := ParseBool(in); !errors.Is(err, ErrInvalidBool) {
			t.Errorf("ParseBool(%q) = %v, want ErrInvalidBool", in, err)
		}
	}
}

func TestParseSleepTimer(t *testing.T) {
	cases := map[string]int{
		"30":    30,
		"0":     0,
		"2:30":  150,
		"1:05":  65,
		"0:45":  45,
		"2h":    120,
		"1h30m": 90,
		"45m":   45,
		"2h15m": 135,
		"1h5m":  65,
		"off":   0,
		"OFF":   0,
		"540":   540,
		" 9h ":  540,
	}
	for in, want := range cases {
		got, err := ParseSleepTimer(in)
		if err != nil {
			t.Errorf("ParseSleepTimer(%q) unexpected error: %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseSleepTimer(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestParseSleepTimer_Invalid(t *testing.T) {
	cases := []struct {
		in   string
		want error
	}{
		{"0h", ErrInvalidSleepTime},
		{"0m", ErrInvalidSleepTime},
		{"2:60", ErrInvalidSleepTime},
		{"invalid", ErrInvalidSleepTime},
		{"15m2h", ErrInvalidSleepTime},
		{"", ErrInvalidSleepTime},
		{"541", ErrSleepOutOfRange},
		{"9h1m", ErrSleepOutOfRange},
	}
	for _, tc := range cases {
		if _, err := ParseSleepTimer(tc.in); !errors.Is(err, tc.want) {
			t.Errorf("ParseSleepTimer(%q) = %v, want %v", tc.in, err, tc.want)
		}
	}
}

func TestFormatSleepTimer(t *testing.T) {
	cases := map[int]string{45: "45m", 60: "1h 0m", 135: "2h 15m", 0: "0m"}
	for in, want := range cases {
		if got := FormatSleepTimer(in); got != want {
			t.Errorf("FormatSleepTimer(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestParseFanSpeed(t *testing.T) {
	if got, err := ParseFanSpeed(" 7 "); err != nil || got != 7 {
		t.Errorf("ParseFanSpeed(7) = %d, %v", got, err)
	}
	for _, in := range []string{"-1", "11"} {
		if _, err := ParseFanSpeed(in); !errors.Is(err, ErrInvalidFanSpeed) {
			t.Errorf("ParseFanSpeed(%q) = %v, want ErrInvalidFanSpeed", in, err)
		}
	}
	if _, err := ParseFanSpeed("fast"); err == nil {
		t.Error("expected error for non numeric speed")
	}
}

func TestTemperature(t *testing.T) {
	if got := Temperature(2961.5, Celsius); math.Abs(got-23) > 0.001 {
		t.Errorf("Temperature(2961.5, C) = %f, want 23", got)
	}
	if got := Temperature(2961.5, Fahrenheit); math.Abs(got-73.4) > 0.001 {
		t.Errorf("Temperature(2961.5, F) = %f, want 73.4", got)
	}
	if got := TempFToC(TempCToF(21.5)); math.Abs(got-21.5) > 0.0001 {
		t.Errorf("round trip gave %f", got)
	}
}

func TestRingBuffer(t *testing.T) {
	buf := NewRingBuffer[int](3)
	if _, ok := buf.GetLast(); ok {
		t.Error("empty buffer should have no last item")
	}

	buf.Add(1)
	buf.Add(2)
	if diff := cmp.Diff([]int{1, 2}, buf.GetAll()); diff != "" {
		t.Errorf("partial buffer mismatch (-want +got):\n%s", diff)
	}

	buf.Add(3)
	buf.Add(4)
	if diff := cmp.Diff([]int{2, 3, 4}, buf.GetAll()); diff != "" {
		t.Errorf("wrapped buffer mismatch (-want +got):\n%s", diff)
	}
	if last, ok := buf.GetLast(); !ok || last != 4 {
		t.Errorf("GetLast() = %d, %v, want 4", last, ok)
	}
	if buf.Len() != 3 {
		t.Errorf("Len() = %d, want 3", buf.Len())
	}

	buf.Add(5)
	buf.Add(6)
	if last, _ := buf.GetLast(); last != 6 {
		t.Errorf("GetLast() = %d, want 6", last)
	}
	if diff := cmp.Diff([]int{4, 5, 6}, buf.GetAll()); diff != "" {
		t.Errorf("full cycle mismatch (-want +got):\n%s", diff)
	}
}
