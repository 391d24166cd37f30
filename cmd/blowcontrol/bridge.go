package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/alittlebrighter/blowcontrol/bridge"
	"github.com/alittlebrighter/blowcontrol/config"
	"github.com/alittlebrighter/blowcontrol/state"
)

const historySize = 60

func (a *app) bridgeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bridge",
		Short: "Forward device status to NATS and InfluxDB",
		Long: `Forward every status message to the configured sinks until interrupted.

NATS (--nats-url) receives raw messages on <subject>.status.<kind>, the merged
state on <subject>.state and sensor readings on <subject>.sensor. Commands
such as {"action":"width","value":"wide"} sent to <subject>.command are run
against the fan and answered on the reply subject.

InfluxDB (--influx-url) receives fan.state and fan.environment points.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.NATSURL == "" && a.cfg.InfluxURL == "" {
				return errors.New("bridge needs --nats-url or --influx-url (NATS_URL / INFLUX_URL)")
			}
			fan, c, err := a.fan()
			if err != nil {
				return err
			}
			defer c.Close()

			b := bridge.New(c, state.NewTracker(historySize), a.log)
			b.PollInterval = a.cfg.PollInterval
			b.CommandTimeout = a.cfg.StateTimeout + a.cfg.StateTimeout/2

			if a.cfg.NATSURL != "" {
				sink, err := bridge.DialNATS(a.cfg.NATSURL, a.cfg.NATSSubject, a.cfg.SerialNumber, a.log)
				if err != nil {
					return err
				}
				b.AddSink(sink)
				b.ServeCommands(sink, bridge.NewDispatcher(fan, a.log))
			}
			if a.cfg.InfluxURL != "" {
				b.AddSink(bridge.DialInflux(a.cfg.InfluxURL, a.cfg.InfluxToken, a.cfg.InfluxOrg, a.cfg.InfluxBucket, a.cfg.SerialNumber, a.log))
			}

			return b.Run(cmd.Context())
		},
	}

	flags := cmd.Flags()
	flags.String("nats-url", "", "NATS server URL, e.g. nats://127.0.0.1:4222")
	flags.String("nats-subject", "", "NATS subject prefix (default blowcontrol)")
	flags.String("influx-url", "", "InfluxDB URL, e.g. http://localhost:8086")
	flags.Duration("poll-interval", 0, "how often to request the full state (default 5m)")
	a.bind(cmd, config.KeyNATSURL, "nats-url")
	a.bind(cmd, config.KeyNATSSubject, "nats-subject")
	a.bind(cmd, config.KeyInfluxURL, "influx-url")
	a.bind(cmd, config.KeyPollInterval, "poll-interval")
	return cmd
}
