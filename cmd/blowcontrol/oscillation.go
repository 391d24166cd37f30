package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/alittlebrighter/blowcontrol/oscillation"
	"github.com/alittlebrighter/blowcontrol/util"
)

func (a *app) widthCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "width WIDTH",
		Aliases: []string{"oscillation_width"},
		Short:   "Set the oscillation width around the current position",
		Long: "Set the oscillation width. WIDTH is one of " + strings.Join(oscillation.WidthNames(), ", ") +
			" or a number of degrees, rounded up to the next valid width.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fan, c, err := a.fan()
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := fan.SetWidth(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), res)
		},
	}
}

func (a *app) directionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "direction HEADING",
		Short: "Point the oscillation at HEADING (0-359°) and keep its width",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			heading, err := util.ParseInt(args[0])
			if err != nil {
				return err
			}
			fan, c, err := a.fan()
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := fan.SetDirection(cmd.Context(), heading)
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), res)
		},
	}
}

func (a *app) anglesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "angles WIDTH HEADING",
		Short: "Oscillate WIDTH degrees centered on HEADING",
		Long: `Oscillate WIDTH degrees (0-350) centered on HEADING (0-359). Width 0
parks the fan at HEADING. The heading moves when the sweep would leave the
5°-355° range.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			width, err := util.ParseInt(args[0])
			if err != nil {
				return err
			}
			heading, err := util.ParseInt(args[1])
			if err != nil {
				return err
			}
			fan, c, err := a.fan()
			if err != nil {
				return err
			}
			defer c.Close()

			res, err := fan.SetAngles(cmd.Context(), width, heading)
			if err != nil {
				return err
			}
			return a.printResult(cmd.OutOrStdout(), res)
		},
	}
}

func (a *app) stopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop oscillating",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fan, c, err := a.fan()
			if err != nil {
				return err
			}
			defer c.Close()

			return a.printResult(cmd.OutOrStdout(), fan.StopOscillation(cmd.Context()))
		},
	}
}
