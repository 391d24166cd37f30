package oscillation

import "errors"

var (
	ErrInvalidWidth     = errors.New("width must be between 45° and 350° (or 0 for no oscillation)")
	ErrInvalidHeading   = errors.New("heading must be between 0° and 359°")
	ErrWidthTooLarge    = errors.New("width is too large, maximum width is 350° (5° to 355°)")
	ErrWidthUnfittable  = errors.New("width cannot fit within the 5°-355° bounds from any heading")
	ErrInvalidWidthName = errors.New("invalid width name")

	// ErrInternalBounds means the solver produced angles outside the
	// hardware window. It indicates a bug, not bad input.
	ErrInternalBounds = errors.New("internal error: computed angles are outside the 5°-355° bounds")
)
