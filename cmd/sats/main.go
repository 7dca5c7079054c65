package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/sats-budget/internal/cli"
	"github.com/Veraticus/sats-budget/internal/common"
	"github.com/Veraticus/sats-budget/internal/config"
)

var version = "dev"

func newRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sats",
		Short: cli.BitcoinIcon + " Envelope budgeting in sats",
		Long: `sats: a zero-based envelope budget denominated in satoshis.

Record income and expenses, assign income to category envelopes month by
month, and project the future purchasing power of your stack along the
bitcoin power-law curve.`,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(cfgFile)
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.config/sats/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "log format (console, json)")
	rootCmd.PersistentFlags().String("db", "", "path to the budget database")

	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
	_ = viper.BindPFlag("logging.format", rootCmd.PersistentFlags().Lookup("log-format"))
	_ = viper.BindPFlag("database.path", rootCmd.PersistentFlags().Lookup("db"))

	rootCmd.AddCommand(incomeCmd())
	rootCmd.AddCommand(expenseCmd())
	rootCmd.AddCommand(txCmd())
	rootCmd.AddCommand(categoryCmd())
	rootCmd.AddCommand(groupCmd())
	rootCmd.AddCommand(allocateCmd())
	rootCmd.AddCommand(unallocateCmd())
	rootCmd.AddCommand(monthCmd())
	rootCmd.AddCommand(reportCmd())
	rootCmd.AddCommand(projectCmd())
	rootCmd.AddCommand(checkpointCmd())
	rootCmd.AddCommand(importCmd())
	rootCmd.AddCommand(exportCmd())
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(tuiCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(versionCmd())

	return rootCmd
}

func main() {
	// A missing .env is fine.
	_ = godotenv.Load()

	handler := cli.NewInterruptHandler(os.Stderr)
	ctx, stop := handler.HandleInterrupts(context.Background(), "Completed writes were saved; nothing partial was stored.")

	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		var userErr *common.UserError
		switch {
		case errors.As(err, &userErr):
			fmt.Fprintln(os.Stderr, cli.FormatError(userErr.UserMessage))
			slog.Debug("Command failed", "error", err)
		case handler.WasInterrupted() && errors.Is(err, context.Canceled):
			// the handler already told the user
		default:
			fmt.Fprintln(os.Stderr, cli.FormatError(err.Error()))
		}
		os.Exit(1)
	}
}

func initConfig(cfgFile string) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}

		viper.AddConfigPath(fmt.Sprintf("%s/.config/sats", home))
		viper.AddConfigPath(".")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(config.EnvKeyReplacer())
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	settings, err := config.Load()
	if err != nil {
		return err
	}

	level, err := common.ParseLevel(settings.LogLevel)
	if err != nil {
		return err
	}
	if err := common.SetupLogger(os.Stderr, level, settings.LogFormat); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "sats version %s\n", version)
		},
	}
}
