package main

import (
	"fmt"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
	"github.com/spf13/viper"

	"github.com/ledgerkit/ledgerdb/config"
	"github.com/ledgerkit/ledgerdb/ledgerdb"
	_ "github.com/ledgerkit/ledgerdb/ledgerdb/badger"
	_ "github.com/ledgerkit/ledgerdb/ledgerdb/dummy"
	_ "github.com/ledgerkit/ledgerdb/ledgerdb/postgres"
	_ "github.com/ledgerkit/ledgerdb/util/disabledeadlock"
	"github.com/ledgerkit/ledgerdb/util/metrics"
	"github.com/ledgerkit/ledgerdb/version"
)

const autoLoadConfigFileName = config.FileName

// Calling os.Exit() directly will not honor any defer'd statements.
// Instead, we will create an exit type and handler so that we may panic
// and handle any exit specific errors
type exit struct {
	RC int // The exit code
}

// exitHandler will handle a panic with type of exit (see above)
func exitHandler() {
	if err := recover(); err != nil {
		if exit, ok := err.(exit); ok {
			os.Exit(exit.RC)
		}

		// It's not actually an exit type, restore panic
		panic(err)
	}
}

// Requires that main (and every go-routine that this is used)
// have defer exitHandler() called first
func maybeFail(err error, errfmt string, params ...interface{}) {
	if err == nil {
		return
	}
	logger.WithError(err).Errorf(errfmt, params...)
	panic(exit{1})
}

var rootCmd = &cobra.Command{
	Use:   "ledgerdb",
	Short: "Ledger storage and query service",
	Long:  `ledgerdb stores the transactions, assets, blocks and unspent outputs of a ledger node and serves queries over them.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		//If no arguments passed, we should fallback to help
		cmd.HelpFunc()(cmd, args)
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if doVersion {
			fmt.Printf("%s\n", version.LongVersion())
			os.Exit(0)
		}
	},
}

var (
	postgresAddr string
	badgerPath   string
	dummyLedger  bool
	maxConn      uint32
	doVersion    bool
	logLevel     string
	logFile      string
	logger       *log.Logger
)

// ledgerDbFromFlags opens the backend selected on the command line.
func ledgerDbFromFlags(opts ledgerdb.LedgerDbOptions) (ledgerdb.LedgerDb, chan struct{}, error) {
	opts.MaxConn = maxConn
	switch {
	case postgresAddr != "":
		return ledgerdb.LedgerDbByName("postgres", postgresAddr, opts, logger)
	case badgerPath != "":
		return ledgerdb.LedgerDbByName("badger", badgerPath, opts, logger)
	case dummyLedger:
		return ledgerdb.LedgerDbByName("dummy", "", opts, logger)
	}
	return nil, nil, fmt.Errorf("no ledger db set, use one of --postgres, --badger or --dummydb")
}

// addFlags adds the flags shared by every command that opens the database.
func addFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&logLevel, "loglevel", "l", "info", "verbosity of logs: [error, warn, info, debug, trace]")
	cmd.Flags().StringVarP(&logFile, "logfile", "f", "", "file to write logs to, if unset logs are written to standard out")
	cmd.Flags().StringVarP(&postgresAddr, "postgres", "P", "", "connection string for postgres database")
	cmd.Flags().StringVarP(&badgerPath, "badger", "B", "", "directory of an embedded badger database, ':memory:' keeps it in memory")
	cmd.Flags().BoolVarP(&dummyLedger, "dummydb", "n", false, "use dummy ledger db")
	cmd.Flags().Uint32VarP(&maxConn, "max-conn", "", 0, "set the maximum connections allowed in the connection pool, if the maximum is reached subsequent connections will wait until a connection becomes available, or timeout according to the read-timeout setting")
	cmd.Flags().BoolVarP(&doVersion, "version", "v", false, "print version and exit")
}

func init() {
	logger = log.New()
	logger.SetFormatter(&log.JSONFormatter{
		DisableHTMLEscape: true,
	})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(log.InfoLevel)

	daemonCmd := DaemonCmd()
	rollbackCmd := RollbackCmd()
	setupCmd := SetupCmd()
	checkCmd := CheckCmd()
	configCmd := ConfigCmd()
	for _, cmd := range []*cobra.Command{daemonCmd, setupCmd, rollbackCmd, checkCmd, configCmd} {
		addFlags(cmd)
		rootCmd.AddCommand(cmd)
	}

	// Version should be available globally
	rootCmd.Flags().BoolVarP(&doVersion, "version", "v", false, "print version and exit")

	viper.RegisterAlias("postgres", "postgres-connection-string")
	viper.RegisterAlias("badger", "badger-path")

	// Setup configuration file
	viper.SetConfigName(config.FileName)
	// just hard-code yaml since we support multiple yaml filetypes
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.AutomaticEnv()

	// Register metrics with the global prometheus handler.
	metrics.RegisterPrometheusMetrics()
}

func configureLogger() error {
	if logLevel != "" {
		level, err := log.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
	}

	if logFile == "-" {
		logger.SetOutput(os.Stdout)
	} else if logFile != "" {
		f, err := os.OpenFile(logFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0644)
		if err != nil {
			return err
		}
		logger.SetOutput(f)
	}

	return nil
}

func main() {

	// Hidden command to generate docs in a given directory
	// ledgerdb generate-docs [path]
	if len(os.Args) == 3 && os.Args[1] == "generate-docs" {
		err := doc.GenMarkdownTree(rootCmd, os.Args[2])
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Setup our exit handler for maybeFail() and other exit panics
	defer exitHandler()

	if err := rootCmd.Execute(); err != nil {
		logger.WithError(err).Error("an error occurred running ledgerdb")
		os.Exit(1)
	}
}
