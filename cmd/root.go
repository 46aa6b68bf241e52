package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	verbose bool
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "warscribe",
	Short: "Voice-driven Warhammer 40K game tracker",
	Long: `warscribe listens to table talk and keeps the score: battle rounds and
phases, command points with a reconciled ledger, secondary objectives with
their scoring caps, and primary mission scoring from the mission's formula.

Utterances flow through intent classification, a tiered context bundle, and
tool-call validation before anything touches the game state. Every change is
an event in an append-only log, so the session can always be replayed.`,
}

// Execute runs the root command.
func Execute() {
	defer func() {
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.warscribe.yaml)")
	rootCmd.PersistentFlags().String("games_dir", "./games", "directory holding tracked games")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	_ = viper.BindPFlag("games_dir", rootCmd.PersistentFlags().Lookup("games_dir"))
}

// initConfig reads the config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".warscribe")
	}

	viper.SetEnvPrefix("warscribe")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// getLogger lazily builds the process logger. Verbose runs use the zap
// development config; otherwise warnings and up go to stderr so the TUI
// stays clean.
func getLogger() *zap.Logger {
	if logger != nil {
		return logger
	}

	var err error
	if verbose {
		logger, err = zap.NewDevelopment()
	} else {
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
		cfg.OutputPaths = []string{"stderr"}
		logger, err = cfg.Build()
	}
	if err != nil {
		logger = zap.NewNop()
	}
	return logger
}
