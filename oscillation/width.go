package oscillation

import (
	"fmt"
	"strconv"
	"strings"
)

// Preset widths understood by the device firmware.
const (
	WidthOff    = 0
	WidthNarrow = 45
	WidthMedium = 90
	WidthWide   = 180
	WidthFull   = 350
)

// ValidWidths lists the legal width steps in ascending order.
var ValidWidths = []int{WidthOff, WidthNarrow, WidthMedium, WidthWide, WidthFull}

var widthNames = map[string]int{
	"off":    WidthOff,
	"narrow": WidthNarrow,
	"medium": WidthMedium,
	"wide":   WidthWide,
	"full":   WidthFull,
}

// WidthNames returns the preset names in ascending width order.
func WidthNames() []string {
	names := make([]string, 0, len(ValidWidths))
	for _, w := range ValidWidths {
		names = append(names, WidthName(w))
	}
	return names
}

// WidthName returns the preset name for a legal step, or the number itself
// followed by a degree sign for anything else.
func WidthName(width int) string {
	for name, w := range widthNames {
		if w == width {
			return name
		}
	}
	return fmt.Sprintf("%d°", width)
}

// Resolution describes how a requested width was mapped onto a legal step.
type Resolution struct {
	Width     int    `json:"width"`
	Name      string `json:"name"`
	Adjusted  bool   `json:"adjusted"`
	Requested string `json:"requested"`
}

// ResolveWidth maps a preset name or a number, given as a string, onto a
// legal width step. Names are matched case-insensitively.
func ResolveWidth(input string) (Resolution, error) {
	trimmed := strings.TrimSpace(input)
	if w, ok := widthNames[strings.ToLower(trimmed)]; ok {
		return Resolution{
			Width:     w,
			Name:      WidthName(w),
			Requested: input,
		}, nil
	}

	n, err := strconv.Atoi(trimmed)
	if err != nil {
		return Resolution{}, fmt.Errorf("%w %q, valid names: %s",
			ErrInvalidWidthName, input, strings.Join(WidthNames(), ", "))
	}
	res := ResolveWidthValue(n)
	res.Requested = input
	return res, nil
}

// ResolveWidthValue rounds a numeric width up to the next legal step.
// Anything above the widest step is clamped to it.
func ResolveWidthValue(width int) Resolution {
	res := Resolution{Requested: strconv.Itoa(width)}
	res.Width = WidthFull
	for _, step := range ValidWidths {
		if step >= width {
			res.Width = step
			break
		}
	}
	res.Adjusted = res.Width != width
	res.Name = WidthName(res.Width)
	return res
}

// NearestWidth snaps a width reported by the device to the closest legal
// step. A value exactly between two steps goes to the smaller one.
func NearestWidth(width int) int {
	best := ValidWidths[0]
	for _, step := range ValidWidths[1:] {
		if abs(step-width) < abs(best-width) {
			best = step
		}
	}
	return best
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
