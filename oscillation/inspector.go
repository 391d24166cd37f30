package oscillation

// Info is the width/heading view of a lower/upper angle pair reported by
// the device.
type Info struct {
	Width      int  `json:"width"`
	Heading    int  `json:"heading"`
	Lower      int  `json:"lower_angle"`
	Upper      int  `json:"upper_angle"`
	WrapAround bool `json:"is_wrap_around"`
}

// Inspect recovers width and heading from device angles. It accepts any pair
// and never fails. The midpoint is floored, so Solve followed by Inspect
// agrees to within one degree.
func Inspect(lower, upper int) Info {
	info := Info{Lower: lower, Upper: upper}
	if lower <= upper {
		info.Width = upper - lower
		info.Heading = (lower + upper) / 2
		return info
	}

	info.WrapAround = true
	info.Width = (360 - lower) + upper
	info.Heading = Mod360((lower + upper + 360) / 2)
	return info
}

// InspectRaw is Inspect for the four digit strings found in device state
// messages, e.g. "0135" and "0225".
func InspectRaw(osal, osau string) (Info, error) {
	lower, err := ParseAngle(osal)
	if err != nil {
		return Info{}, err
	}
	upper, err := ParseAngle(osau)
	if err != nil {
		return Info{}, err
	}
	return Inspect(lower, upper), nil
}
