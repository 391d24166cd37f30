// Package oscillation converts between the width/heading model of a fan
// sweep and the lower/upper angle pair the device stores. Everything in
// here is pure computation over small integers.
package oscillation

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// MinAngle and MaxAngle are the hardware limits for the sweep edges.
	MinAngle = 5
	MaxAngle = 355

	// MaxWidth is the widest sweep that fits between MinAngle and MaxAngle.
	MaxWidth = MaxAngle - MinAngle
)

// Mod360 normalises an angle into [0, 360).
func Mod360(angle int) int {
	angle %= 360
	if angle < 0 {
		angle += 360
	}
	return angle
}

// Distance returns the shortest angular distance between two headings.
func Distance(a, b int) int {
	diff := a - b
	if diff < 0 {
		diff = -diff
	}
	if 360-diff < diff {
		return 360 - diff
	}
	return diff
}

// FormatAngle renders an angle the way the device expects it: four digits,
// zero padded.
func FormatAngle(angle int) string {
	return fmt.Sprintf("%04d", angle)
}

// ParseAngle reads a device angle string such as "0135".
func ParseAngle(raw string) (int, error) {
	angle, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid angle %q: %w", raw, err)
	}
	return angle, nil
}

func validHeading(heading int) bool {
	return heading >= 0 && heading <= 359
}

func inBounds(lower, upper int) bool {
	return lower <= upper && lower >= MinAngle && upper <= MaxAngle
}
