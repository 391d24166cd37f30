package oscillation

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestInspectRaw(t *testing.T) {
	cases := []struct {
		osal, osau string
		want       Info
	}{
		{"0135", "0225", Info{Width: 90, Heading: 180, Lower: 135, Upper: 225}},
		{"0068", "0112", Info{Width: 44, Heading: 90, Lower: 68, Upper: 112}},
		{"0175", "0355", Info{Width: 180, Heading: 265, Lower: 175, Upper: 355}},
		{"0005", "0355", Info{Width: 350, Heading: 180, Lower: 5, Upper: 355}},
		{"0180", "0180", Info{Width: 0, Heading: 180, Lower: 180, Upper: 180}},
		{"0350", "0010", Info{Width: 20, Heading: 0, Lower: 350, Upper: 10, WrapAround: true}},
		{"0300", "0100", Info{Width: 160, Heading: 20, Lower: 300, Upper: 100, WrapAround: true}},
	}
	for _, tc := range cases {
		t.Run(tc.osal+"-"+tc.osau, func(t *testing.T) {
			got, err := InspectRaw(tc.osal, tc.osau)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("InspectRaw mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestInspectRaw_BadInput(t *testing.T) {
	if _, err := InspectRaw("abcd", "0100"); err == nil {
		t.Error("expected error for non numeric lower angle")
	}
	if _, err := InspectRaw("0100", ""); err == nil {
		t.Error("expected error for empty upper angle")
	}
}
