package blowcontrol

import (
	"context"
	"fmt"

	"github.com/alittlebrighter/blowcontrol/controller"
	"github.com/alittlebrighter/blowcontrol/oscillation"
)

const customAngles = "CUST"

// SetAngles points the fan at heading and sweeps width degrees around it.
// Width 0 parks the fan at heading with oscillation off.
func (f *Fan) SetAngles(ctx context.Context, width, heading int) (Result, error) {
	sol, err := oscillation.Solve(width, heading)
	if err != nil {
		return Result{}, err
	}

	if sol.Adjusted {
		f.log.Warnw("heading adjusted to keep the sweep within bounds",
			"requested", heading,
			"heading", sol.Heading,
			"lower", sol.Lower,
			"upper", sol.Upper,
			"anchor", sol.Anchor,
		)
	}

	res := f.write(ctx, Result{Solution: sol}, anglesData(sol))
	if res.Success {
		if sol.Oscillating {
			res.Message = fmt.Sprintf("Oscillating %d° to %d° (%d° wide, centered on %d°)", sol.Lower, sol.Upper, sol.Width, sol.Heading)
		} else {
			res.Message = fmt.Sprintf("Set heading to %d° (no oscillation)", sol.Heading)
		}
	}
	return res, nil
}

// SetWidth changes the sweep width around wherever the fan points now.
// Input is a preset name or a number, rounded up to a legal step. The
// current position comes from the device and falls back to FallbackHeading.
func (f *Fan) SetWidth(ctx context.Context, input string) (Result, error) {
	resolved, err := oscillation.ResolveWidth(input)
	if err != nil {
		return Result{}, err
	}
	if resolved.Adjusted {
		f.log.Warnw("width is not a valid step, rounding up",
			"requested", resolved.Requested,
			"width", resolved.Width,
			"name", resolved.Name,
		)
	}

	var res Result
	if resolved.Width == oscillation.WidthOff {
		res = f.StopOscillation(ctx)
	} else {
		heading := f.currentHeading(ctx)
		f.log.Infow("setting width around current position", "width", resolved.Width, "name", resolved.Name, "heading", heading)
		if res, err = f.SetAngles(ctx, resolved.Width, heading); err != nil {
			return Result{}, err
		}
	}

	res.WidthAdjusted = resolved.Adjusted
	res.RequestedWidth = resolved.Requested
	res.AdjustedWidth = resolved.Name
	return res, nil
}

// SetDirection moves the sweep center to heading and keeps the current
// width. When oscillation is off only the heading changes. When the device
// state cannot be read DefaultWidth is used.
func (f *Fan) SetDirection(ctx context.Context, heading int) (Result, error) {
	if heading < 0 || heading > 359 {
		return Result{}, fmt.Errorf("%w, got %d", oscillation.ErrInvalidHeading, heading)
	}

	width, preserved, off := f.currentWidth(ctx)
	if off {
		f.log.Infow("oscillation is off, setting heading only", "heading", heading)
		res := f.write(ctx, Result{
			Solution: oscillation.Solution{
				Heading:         heading,
				Lower:           heading,
				Upper:           heading,
				OriginalHeading: heading,
			},
			OscillationWasOff: true,
		}, map[string]string{
			"osal": oscillation.FormatAngle(heading),
			"osau": oscillation.FormatAngle(heading),
			"oson": controller.On.String(),
			"oscs": controller.Off.String(),
			"ancp": customAngles,
		})
		if res.Success {
			res.Message = fmt.Sprintf("Set heading to %d° (oscillation remains off)", heading)
		}
		return res, nil
	}

	f.log.Infow("setting heading and keeping width", "heading", heading, "width", width, "name", oscillation.WidthName(width))
	res, err := f.SetAngles(ctx, width, heading)
	if err != nil {
		return Result{}, err
	}
	res.WidthPreserved = preserved
	res.CurrentWidth = width
	return res, nil
}

// StopOscillation turns the sweep off and leaves the fan where it is.
func (f *Fan) StopOscillation(ctx context.Context) Result {
	res := f.write(ctx, Result{}, map[string]string{
		"oscs": controller.Off.String(),
		"oson": controller.Off.String(),
	})
	if res.Success {
		res.Message = "Oscillation stopped"
	}
	return res
}

func (f *Fan) write(ctx context.Context, res Result, data map[string]string) Result {
	if err := f.control.SetState(ctx, data); err != nil {
		f.log.Errorw("could not update oscillation", "err", err)
		res.Error = err.Error()
		return res
	}
	res.Success = true
	return res
}

func anglesData(sol oscillation.Solution) map[string]string {
	if !sol.Oscillating {
		return map[string]string{
			"osal": oscillation.FormatAngle(sol.Lower),
			"osau": oscillation.FormatAngle(sol.Upper),
			"oscs": controller.Off.String(),
			"oson": controller.Off.String(),
		}
	}
	return map[string]string{
		"oscs": controller.On.String(),
		"oson": controller.On.String(),
		"osal": oscillation.FormatAngle(sol.Lower),
		"osau": oscillation.FormatAngle(sol.Upper),
		"ancp": customAngles,
	}
}

// currentHeading estimates where the fan points: the middle of the sweep
// when angles are known, else the reported position, else FallbackHeading.
func (f *Fan) currentHeading(ctx context.Context) int {
	snap, err := f.State(ctx)
	if err != nil {
		f.log.Warnw("using fallback heading", "heading", f.FallbackHeading, "err", err)
		return f.FallbackHeading
	}

	if osal, osau, ok := snap.Angles(); ok {
		if info, err := oscillation.InspectRaw(osal, osau); err == nil {
			f.log.Infow("estimated position from oscillation range", "heading", info.Heading, "lower", info.Lower, "upper", info.Upper)
			return info.Heading
		}
	}
	if apos, ok := snap.Get("apos"); ok {
		if heading, err := oscillation.ParseAngle(apos); err == nil && heading >= 0 && heading <= 359 {
			f.log.Infow("position from device state", "heading", heading)
			return heading
		}
	}

	f.log.Warnw("no position in device state, using fallback heading", "heading", f.FallbackHeading)
	return f.FallbackHeading
}

// currentWidth reports the width to keep for a direction change, whether it
// came from the device, and whether oscillation is off.
func (f *Fan) currentWidth(ctx context.Context) (width int, preserved, off bool) {
	snap, err := f.State(ctx)
	if err != nil {
		f.log.Warnw("using default width", "width", f.DefaultWidth, "err", err)
		return f.DefaultWidth, false, false
	}
	if !snap.Oscillating() {
		return 0, false, true
	}

	width, preserved = f.DefaultWidth, false
	if osal, osau, ok := snap.Angles(); ok {
		if info, err := oscillation.InspectRaw(osal, osau); err == nil {
			f.log.Infow("current oscillation", "lower", info.Lower, "upper", info.Upper, "width", info.Width)
			width, preserved = info.Width, true
		}
	}
	if !preserved {
		f.log.Warnw("oscillation is on but no angles were reported, using default width", "width", f.DefaultWidth)
	}

	if snapped := oscillation.NearestWidth(width); snapped != width {
		f.log.Warnw("current width is not a valid step, using closest", "width", width, "closest", snapped)
		width = snapped
	}
	if width == oscillation.WidthOff {
		f.log.Warnw("oscillating sweep collapsed to a point, using default width", "width", f.DefaultWidth)
		width = f.DefaultWidth
	}
	return width, preserved, false
}
