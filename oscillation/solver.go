package oscillation

import "fmt"

// Edge names the sweep edge that was pinned to a hardware limit when the
// heading had to be moved.
type Edge string

const (
	LowerEdge Edge = "lower"
	UpperEdge Edge = "upper"
)

// Solution is the outcome of Solve: the angles to write to the device and
// how they were derived from the request.
type Solution struct {
	Width           int  `json:"actual_width"`
	Heading         int  `json:"actual_heading"`
	Lower           int  `json:"lower_angle"`
	Upper           int  `json:"upper_angle"`
	Adjusted        bool `json:"adjusted"`
	OriginalHeading int  `json:"original_heading"`
	Oscillating     bool `json:"oscillating"`
	Anchor          Edge `json:"anchor,omitempty"`
}

type candidate struct {
	heading int
	edge    Edge
}

// Solve converts a sweep width and center heading into the lower/upper
// angles the device accepts.
//
// Width 0 means no oscillation: both angles are set to the heading. Any
// other width must be within [45, 350]. When the naive sweep would cross
// the 0° seam or leave the [5, 355] window the heading is moved so one edge
// sits on a limit, keeping the requested width. Odd widths lose a degree
// because the half width is floored.
func Solve(width, heading int) (Solution, error) {
	if width == 0 {
		if !validHeading(heading) {
			return Solution{}, fmt.Errorf("%w, got %d", ErrInvalidHeading, heading)
		}
		return Solution{
			Heading:         heading,
			Lower:           heading,
			Upper:           heading,
			OriginalHeading: heading,
		}, nil
	}

	if width < 45 || width > MaxWidth {
		return Solution{}, fmt.Errorf("%w, got %d", ErrInvalidWidth, width)
	}
	if !validHeading(heading) {
		return Solution{}, fmt.Errorf("%w, got %d", ErrInvalidHeading, heading)
	}

	half := width / 2
	sol := Solution{
		Width:           width,
		Heading:         heading,
		Lower:           Mod360(heading - half),
		Upper:           Mod360(heading + half),
		OriginalHeading: heading,
		Oscillating:     true,
	}
	if inBounds(sol.Lower, sol.Upper) {
		return sol, nil
	}

	if width > MaxWidth {
		return Solution{}, fmt.Errorf("%w, got %d", ErrWidthTooLarge, width)
	}

	best, ok := closestCandidate(heading, half)
	if !ok {
		return Solution{}, fmt.Errorf("%w: width %d", ErrWidthUnfittable, width)
	}

	sol.Heading = best.heading
	sol.Lower = Mod360(best.heading - half)
	sol.Upper = Mod360(best.heading + half)
	sol.Adjusted = true
	sol.Anchor = best.edge

	if !inBounds(sol.Lower, sol.Upper) {
		return Solution{}, fmt.Errorf("%w: width %d heading %d gave %d-%d",
			ErrInternalBounds, width, heading, sol.Lower, sol.Upper)
	}
	return sol, nil
}

// closestCandidate returns the valid edge-anchored heading nearest to the
// requested one. Candidates are considered lower edge first, so the lower
// anchor wins a tie.
func closestCandidate(heading, half int) (candidate, bool) {
	var candidates []candidate

	lowerHeading := Mod360(MinAngle + half)
	if Mod360(lowerHeading+half) <= MaxAngle {
		candidates = append(candidates, candidate{heading: lowerHeading, edge: LowerEdge})
	}

	upperHeading := Mod360(MaxAngle - half)
	if Mod360(upperHeading-half) >= MinAngle {
		candidates = append(candidates, candidate{heading: upperHeading, edge: UpperEdge})
	}

	if len(candidates) == 0 {
		return candidate{}, false
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if Distance(heading, c.heading) < Distance(heading, best.heading) {
			best = c
		}
	}
	return best, true
}
