package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/alittlebrighter/blowcontrol"
	"github.com/alittlebrighter/blowcontrol/config"
	"github.com/alittlebrighter/blowcontrol/controller"
	"github.com/alittlebrighter/blowcontrol/logger"
	"github.com/alittlebrighter/blowcontrol/oscillation"
)

const examples = `  # Basic control
  blowcontrol power on
  blowcontrol speed 5
  blowcontrol auto on
  blowcontrol night on
  blowcontrol timer 2h15m

  # Oscillation
  blowcontrol width wide
  blowcontrol direction 180
  blowcontrol angles 90 270
  blowcontrol stop

  # Monitoring
  blowcontrol listen
  blowcontrol state --output json

Configuration comes from environment variables, a .env file in the current
directory or the YAML file written by "blowcontrol config init":
  DEVICE_IP=192.168.1.100
  MQTT_PORT=1883
  MQTT_PASSWORD=your-password
  ROOT_TOPIC=438M
  SERIAL_NUMBER=your-device-serial`

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type app struct {
	v       *viper.Viper
	cfgFile string
	debug   bool
	output  string

	cfg *config.Config
	log *logger.Logger

	newController func(*config.Config, *logger.Logger) controller.Controller
}

func newApp() *app {
	return &app{
		v: config.New(),
		newController: func(cfg *config.Config, log *logger.Logger) controller.Controller {
			return controller.NewMQTTController(cfg, log)
		},
	}
}

func (a *app) rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "blowcontrol",
		Short:         "Control a purifier fan over its local MQTT broker",
		Example:       examples,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.ErrOrStderr())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default .env or "+config.DefaultPath()+")")
	flags.BoolVar(&a.debug, "debug", false, "enable debug logging, including MQTT traffic")
	flags.StringVarP(&a.output, "output", "o", outputText, "output format: text, json or yaml")

	cmd.AddCommand(
		a.switchCmd("power", "Turn the fan on or off", (*blowcontrol.Fan).SetPower),
		a.switchCmd("auto", "Enable or disable auto mode", (*blowcontrol.Fan).SetAutoMode),
		a.switchCmd("night", "Enable or disable night mode", (*blowcontrol.Fan).SetNightMode),
		a.speedCmd(),
		a.timerCmd(),
		a.widthCmd(),
		a.directionCmd(),
		a.anglesCmd(),
		a.stopCmd(),
		a.stateCmd(),
		a.listenCmd(),
		a.bridgeCmd(),
		a.configCmd(),
	)
	return cmd
}

func (a *app) load(logOut io.Writer) error {
	switch a.output {
	case outputText, outputJSON, outputYAML:
	default:
		return fmt.Errorf("unknown output format %q", a.output)
	}

	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.LogLevel
	if a.debug {
		level = logger.DebugLevel
	}
	a.log = logger.NewWithWriter(level, logOut)
	return nil
}

// fan validates the device settings and returns a connected-on-demand fan.
// Callers close the controller.
func (a *app) fan() (*blowcontrol.Fan, controller.Controller, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, nil, err
	}
	c := a.newController(a.cfg, a.log)

	f := blowcontrol.NewFan(c, a.log)
	f.DefaultWidth = a.cfg.DefaultWidth
	f.FallbackHeading = a.cfg.FallbackHeading
	f.StateTimeout = a.cfg.StateTimeout
	return f, c, nil
}

// describeError adds a hint to errors users cannot act on.
func describeError(err error) string {
	if errors.Is(err, oscillation.ErrInternalBounds) {
		return fmt.Sprintf("internal error, please report this bug: %v", err)
	}
	return err.Error()
}
