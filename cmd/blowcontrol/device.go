package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/alittlebrighter/blowcontrol"
	"github.com/alittlebrighter/blowcontrol/util"
)

const boolHelp = "on/off, true/false, 1/0, yes/no, y/n, t/f"

func (a *app) switchCmd(name, short string, set func(*blowcontrol.Fan, context.Context, bool) error) *cobra.Command {
	return &cobra.Command{
		Use:   name + " STATE",
		Short: short,
		Long:  short + ". STATE accepts " + boolHelp + ".",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			on, err := util.ParseBool(args[0])
			if err != nil {
				return err
			}
			fan, c, err := a.fan()
			if err != nil {
				return err
			}
			defer c.Close()

			if err := set(fan, cmd.Context(), on); err != nil {
				return err
			}
			return a.printOutcome(cmd.OutOrStdout(), outcome{
				Success: true,
				Message: fmt.Sprintf("%s turned %s", name, onOff(on)),
			})
		},
	}
}

func (a *app) speedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "speed SPEED",
		Short: "Set fan speed from 0 (off) to 10",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			speed, err := util.ParseFanSpeed(args[0])
			if err != nil {
				return err
			}
			fan, c, err := a.fan()
			if err != nil {
				return err
			}
			defer c.Close()

			if err := fan.SetFanSpeed(cmd.Context(), speed); err != nil {
				return err
			}
			msg := fmt.Sprintf("Fan speed set to %d", speed)
			if speed == 0 {
				msg = "Fan turned off (speed 0)"
			}
			return a.printOutcome(cmd.OutOrStdout(), outcome{Success: true, Message: msg})
		},
	}
}

func (a *app) timerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "timer DURATION",
		Short: "Set the sleep timer (0-540 minutes)",
		Long: `Set the sleep timer. DURATION is minutes ("90"), "H:MM" ("1:30"),
hours and minutes ("1h30m", "2h", "45m") or "off".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minutes, err := util.ParseSleepTimer(args[0])
			if err != nil {
				return err
			}
			fan, c, err := a.fan()
			if err != nil {
				return err
			}
			defer c.Close()

			if err := fan.SetSleepTimer(cmd.Context(), minutes); err != nil {
				return err
			}
			msg := "Sleep timer turned off"
			if minutes > 0 {
				msg = "Sleep timer set to " + util.FormatSleepTimer(minutes)
			}
			return a.printOutcome(cmd.OutOrStdout(), outcome{Success: true, Message: msg})
		},
	}
}

func onOff(on bool) string {
	if on {
		return "ON"
	}
	return "OFF"
}
