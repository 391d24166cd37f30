package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/alittlebrighter/blowcontrol/models"
	"github.com/alittlebrighter/blowcontrol/oscillation"
	"github.com/alittlebrighter/blowcontrol/state"
	"github.com/alittlebrighter/blowcontrol/util"
)

const listenRequestDelay = time.Second

// stateView is the machine readable form of the state command.
type stateView struct {
	models.Snapshot
	Oscillation *oscillation.Info `json:"oscillation,omitempty"`
}

func (a *app) stateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "state",
		Short: "Read and print the current device state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fan, c, err := a.fan()
			if err != nil {
				return err
			}
			defer c.Close()

			snap, err := fan.State(cmd.Context())
			if err != nil {
				return err
			}

			view := stateView{Snapshot: snap, Oscillation: sweep(snap)}
			w := cmd.OutOrStdout()
			if ok, err := encode(w, a.output, view); ok {
				return err
			}
			state.NewPrinter(w, util.TemperatureUnits(a.cfg.TemperatureUnits)).PrintSnapshot(snap)
			printSweep(w, view.Oscillation)
			return nil
		},
	}
}

func (a *app) listenCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print status messages as the device publishes them",
		Long:  "Print status messages until interrupted. The current state is requested once at start.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fan, c, err := a.fan()
			if err != nil {
				return err
			}
			defer c.Close()

			ctx := cmd.Context()
			w := cmd.OutOrStdout()
			printer := state.NewPrinter(w, util.TemperatureUnits(a.cfg.TemperatureUnits))
			tracker := state.NewTracker(1)
			msgs := make(chan models.StatusMessage, 16)

			go func() {
				select {
				case <-time.After(listenRequestDelay):
					if err := fan.RequestCurrentState(ctx); err != nil && ctx.Err() == nil {
						a.log.Warnw("could not request current state", "err", err)
					}
				case <-ctx.Done():
				}
			}()
			go func() {
				for {
					select {
					case m := <-msgs:
						a.printMessage(w, printer, tracker, m, raw)
					case <-ctx.Done():
						return
					}
				}
			}()

			fmt.Fprintln(cmd.ErrOrStderr(), "Listening for device messages, press Ctrl+C to stop")
			return c.Listen(ctx, func(m models.StatusMessage) {
				select {
				case msgs <- m:
				case <-ctx.Done():
				}
			})
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "print raw JSON payloads")
	return cmd
}

func (a *app) printMessage(w io.Writer, p *state.Printer, tracker *state.Tracker, m models.StatusMessage, raw bool) {
	tracker.Handle(m)

	if raw || a.output != outputText {
		if a.output == outputYAML {
			if _, err := encode(w, outputYAML, m); err != nil {
				a.log.Warnw("could not encode message", "msg", m.Msg, "err", err)
			}
			fmt.Fprintln(w, "---")
			return
		}
		fmt.Fprintf(w, "%s\n", m.Raw)
		return
	}

	p.Print(m)
	if m.Msg == models.MsgCurrentState || m.Msg == models.MsgStateChange {
		if snap, ready := tracker.Snapshot(); ready {
			printSweep(w, sweep(snap))
		}
	}
}

// sweep describes the oscillation range when the device is oscillating.
func sweep(snap models.Snapshot) *oscillation.Info {
	if !snap.Oscillating() {
		return nil
	}
	osal, osau, ok := snap.Angles()
	if !ok {
		return nil
	}
	info, err := oscillation.InspectRaw(osal, osau)
	if err != nil {
		return nil
	}
	return &info
}

func printSweep(w io.Writer, info *oscillation.Info) {
	if info == nil {
		return
	}
	fmt.Fprintf(w, "Oscillation: %d° wide, centered on %d° (%d° to %d°)", info.Width, info.Heading, info.Lower, info.Upper)
	if info.WrapAround {
		fmt.Fprint(w, ", wraps through 0°")
	}
	fmt.Fprintln(w)
}
