package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ledgerkit/ledgerdb/api"
	"github.com/ledgerkit/ledgerdb/config"
	"github.com/ledgerkit/ledgerdb/events"
	"github.com/ledgerkit/ledgerdb/ledger"
	"github.com/ledgerkit/ledgerdb/ledgerdb"
	"github.com/ledgerkit/ledgerdb/util"
)

type daemonConfig struct {
	flags            *pflag.FlagSet
	dataDir          string
	configFile       string
	daemonServerAddr string
	tokenString      string
	metricsMode      string
	eventsConnection string
	pidFilePath      string
	readTimeout      time.Duration
	readOnly         bool
	skipRollback     bool
}

// DaemonCmd creates the main cobra command, initializes flags, and viper aliases.
func DaemonCmd() *cobra.Command {
	cfg := &daemonConfig{}
	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "run ledgerdb daemon",
		Long:  "run ledgerdb daemon. Recover an interrupted commit and serve the query api on HTTP.",
		//Args:
		Run: func(cmd *cobra.Command, args []string) {
			if err := runDaemon(cfg); err != nil {
				fmt.Fprintf(os.Stderr, "Exiting with error: %s.\n", err.Error())
				os.Exit(1)
			}
		},
	}

	cfg.flags = daemonCmd.Flags()
	cfg.addDaemonFlags()

	viper.RegisterAlias("server", "server-address")
	viper.RegisterAlias("token", "api-token")
	viper.RegisterAlias("events", "events-connection-string")

	return daemonCmd
}

// addDaemonFlags registers the daemon settings on cfg.flags.
func (cfg *daemonConfig) addDaemonFlags() {
	cfg.flags.StringVarP(&cfg.dataDir, "data-dir", "i", "", "path to ledgerdb data dir, or $LEDGERDB_DATA")
	cfg.flags.StringVarP(&cfg.configFile, "configfile", "c", "", "file path to configuration file (ledgerdb.yml)")
	cfg.flags.StringVarP(&cfg.daemonServerAddr, "server", "S", ":8990", "host:port to serve API on (default :8990)")
	cfg.flags.StringVarP(&cfg.tokenString, "token", "t", "", "an optional auth token, when set REST calls must use this token in a 'X-Ledger-API-Token' header")
	cfg.flags.StringVarP(&cfg.metricsMode, "metrics-mode", "", "OFF", "configure the /metrics endpoint to [ON, OFF, VERBOSE]")
	cfg.flags.StringVarP(&cfg.eventsConnection, "events", "", "", "where committed blocks are announced: channels:// or redis://host:port")
	cfg.flags.StringVarP(&cfg.pidFilePath, "pidfile", "", "", "file to write the daemon pid to, removed on shutdown")
	cfg.flags.DurationVarP(&cfg.readTimeout, "read-timeout", "", 5*time.Second, "set the maximum duration for a request to the database before it is aborted")
	cfg.flags.BoolVarP(&cfg.readOnly, "read-only", "", false, "open the database read only, nothing is set up or rolled back")
	cfg.flags.BoolVarP(&cfg.skipRollback, "skip-rollback", "", false, "do not roll back an interrupted commit on startup")
}

// loadConfig reads the configuration file from the data directory or
// --configfile, never both.
func loadConfig(cfg *daemonConfig) error {
	if cfg.dataDir == "" {
		cfg.dataDir = os.Getenv("LEDGERDB_DATA")
	}
	if cfg.dataDir != "" {
		if !util.IsDir(cfg.dataDir) {
			return fmt.Errorf("ledgerdb data directory (%s) is not a directory", cfg.dataDir)
		}
		configs, err := util.GetConfigFromDataDir(cfg.dataDir, autoLoadConfigFileName, config.FileTypes[:])
		if err != nil {
			return err
		}
		if configs != "" {
			if cfg.configFile != "" {
				return fmt.Errorf("ledgerdb configuration was found in data directory (%s) as well as supplied via command line.  Only provide one",
					configs)
			}
			cfg.configFile = configs
		}
	}
	if cfg.configFile == "" {
		return nil
	}

	logger.Infof("Using configuration file: %s", cfg.configFile)
	configs, err := os.Open(cfg.configFile)
	if err != nil {
		return err
	}
	defer configs.Close()
	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(configs); err != nil {
		return fmt.Errorf("invalid config file (%s): %w", cfg.configFile, err)
	}
	return nil
}

func (cfg *daemonConfig) apiOptions() (api.ExtraOptions, error) {
	options := api.ExtraOptions{Timeout: cfg.readTimeout}
	switch cfg.metricsMode {
	case "OFF":
	case "ON":
		options.MetricsEndpoint = true
	case "VERBOSE":
		options.MetricsEndpoint = true
		options.MetricsEndpointVerbose = true
	default:
		return api.ExtraOptions{}, fmt.Errorf("unknown metrics-mode '%s', use one of ON, OFF or VERBOSE", cfg.metricsMode)
	}
	if cfg.tokenString != "" {
		options.Tokens = append(options.Tokens, cfg.tokenString)
	}
	return options, nil
}

func runDaemon(cfg *daemonConfig) error {
	if err := loadConfig(cfg); err != nil {
		return err
	}
	config.BindFlagSet(cfg.flags)
	if err := configureLogger(); err != nil {
		return fmt.Errorf("failed to configure logger: %w", err)
	}
	options, err := cfg.apiOptions()
	if err != nil {
		return err
	}

	if cfg.pidFilePath != "" {
		if err := util.CreatePidFile(logger, cfg.pidFilePath); err != nil {
			return err
		}
		defer util.RemovePidFile(logger, cfg.pidFilePath)
	}

	ctx, cf := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cf()

	db, availableCh, err := ledgerDbFromFlags(ledgerdb.LedgerDbOptions{ReadOnly: cfg.readOnly})
	if err != nil {
		return err
	}
	defer db.Close()
	select {
	case <-availableCh:
	case <-ctx.Done():
		return ctx.Err()
	}

	publisher, err := events.MakePublisher(ctx, cfg.eventsConnection, logger)
	if err != nil {
		return err
	}
	defer publisher.Close()

	l := ledger.MakeLedger(db, publisher, logger)
	if !cfg.readOnly && !cfg.skipRollback {
		res, err := l.Rollback(ctx)
		if err != nil {
			return fmt.Errorf("startup rollback failed: %w", err)
		}
		if res.RolledBack {
			logger.Infof("rolled back %d transactions of the interrupted commit at height %d", res.Transactions, res.Height)
		}
	}

	fmt.Printf("serving on %s\n", cfg.daemonServerAddr)
	logger.Infof("serving on %s", cfg.daemonServerAddr)
	api.Serve(ctx, cfg.daemonServerAddr, l, logger, options)
	logger.Info("shutting down")
	return nil
}
