package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/alittlebrighter/blowcontrol/config"
)

// bind lets a command flag override the config key of the same meaning.
func (a *app) bind(cmd *cobra.Command, key, flag string) {
	if err := a.v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or save the effective configuration",
	}
	cmd.AddCommand(a.configShowCmd(), a.configInitCmd())
	return cmd
}

func (a *app) configShowCmd() *cobra.Command {
	var reveal bool
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the merged configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			if a.output == outputJSON {
				cfg := *a.cfg
				if !reveal {
					cfg.MQTTPassword, cfg.InfluxToken = "", ""
				}
				_, err := encode(w, outputJSON, cfg)
				return err
			}

			out, err := config.Marshal(a.cfg, !reveal)
			if err != nil {
				return err
			}
			_, err = w.Write(out)
			return err
		},
	}
	cmd.Flags().BoolVar(&reveal, "reveal", false, "print secrets in clear text")
	return cmd
}

func (a *app) configInitCmd() *cobra.Command {
	var (
		path  string
		force bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings to a YAML config file",
		Long: `Write the settings currently in effect (defaults, environment and any
existing config file) to a YAML file that later runs pick up automatically.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = config.DefaultPath()
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			}
			if err := a.cfg.Validate(); err != nil {
				a.log.Warnw("saving incomplete configuration", "err", err)
			}
			if err := config.Save(path, a.cfg); err != nil {
				return err
			}
			return a.printOutcome(cmd.OutOrStdout(), outcome{Success: true, Message: "Configuration written to " + path})
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "file to write (default "+config.DefaultPath()+")")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}
