package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/ledgerkit/ledgerdb/config"
)

// secretFlags are masked when the configuration is printed.
var secretFlags = map[string]bool{
	"postgres": true,
	"token":    true,
	"events":   true,
}

const masked = "*****"

// ConfigCmd prints the effective daemon configuration as a config file.
func ConfigCmd() *cobra.Command {
	var showSecrets bool
	cfg := &daemonConfig{}
	cmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		Long:  "print the daemon configuration after the config file and " + config.EnvPrefix + "_* environment variables were applied, in the format of " + config.FileName + ".yml.",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			err := loadConfig(cfg)
			maybeFail(err, "failed to load configuration")
			err = writeConfig(os.Stdout, cmd.Flags(), showSecrets)
			maybeFail(err, "failed to print configuration")
		},
	}
	cfg.flags = cmd.Flags()
	cfg.addDaemonFlags()
	cmd.Flags().BoolVarP(&showSecrets, "show-secrets", "", false, "print connection strings and tokens instead of masking them")
	return cmd
}

func writeConfig(out io.Writer, flags *pflag.FlagSet, showSecrets bool) error {
	config.BindFlagSet(flags)
	settings := config.Settings(flags)
	for _, name := range []string{"help", "version", "show-secrets", "configfile", "data-dir"} {
		delete(settings, name)
	}
	for name, value := range settings {
		if secretFlags[name] && value != "" && !showSecrets {
			settings[name] = masked
		}
	}

	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(settings); err != nil {
		return err
	}
	return enc.Close()
}
