package commands

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/zkattend/zkattend/zkconfig"
)

var (
	// cfg is the effective configuration for this invocation: defaults,
	// overridden by --config if given, overridden again by flags.
	cfg zkconfig.Config

	// log is the structured logger every subcommand shares.
	log = logrus.NewEntry(logrus.StandardLogger())

	logLevel  string
	logFormat string
	cfgPath   string
	password  uint32
)

var rootCmd = &cobra.Command{
	Use:   "zkattendctl",
	Short: "CLI client for ZKTeco biometric time-attendance devices",
	Long:  "zkattendctl fetches users and attendance logs from ZKTeco devices and scans the local network for them.",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		loaded := zkconfig.Default()
		if cfgPath != "" {
			var err error
			loaded, err = zkconfig.Load(cfgPath)
			if err != nil {
				return err
			}
		}
		if logLevel != "" {
			loaded.LogLevel = logLevel
		}
		if logFormat != "" {
			loaded.LogFormat = logFormat
		}
		if password != 0 {
			loaded.Password = password
		}
		cfg = loaded

		level, err := logrus.ParseLevel(cfg.LogLevel)
		if err != nil {
			return fmt.Errorf("parse log level %q: %w", cfg.LogLevel, err)
		}
		logrus.SetLevel(level)
		switch cfg.LogFormat {
		case "json":
			logrus.SetFormatter(&logrus.JSONFormatter{})
		default:
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		}

		return nil
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default from config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text, json (default from config)")
	rootCmd.PersistentFlags().Uint32Var(&password, "password", 0, "device CMD_AUTH password")

	rootCmd.AddCommand(fetchCmd())
	rootCmd.AddCommand(scanCmd())
	rootCmd.AddCommand(usersCmd())
	rootCmd.AddCommand(versionCmd())
}

// Execute runs the root command and exits with code 1 on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
