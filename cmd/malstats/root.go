package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"malstats/internal/app"
	"malstats/pkg/logger"
	"malstats/pkg/utils"
)

var (
	cfgFile string
	debug   bool

	cfg *utils.Config
	log logger.Logger

	rootCmd = &cobra.Command{
		Use:           "malstats",
		Short:         "Statistics over exported anime and manga lists",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = utils.Load(cfgFile); err != nil {
				return err
			}
			if debug {
				cfg.Log.Level = "debug"
				cfg.Log.Development = true
			}
			if log, err = logger.New(cfg.Log); err != nil {
				return err
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
)

func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./config.yaml or ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(statsCommand())
	rootCmd.AddCommand(importCommand())
	rootCmd.AddCommand(snapshotsCommand())
	rootCmd.AddCommand(deleteCommand())
	rootCmd.AddCommand(exportCommand())
	rootCmd.AddCommand(tokenCommand())
	rootCmd.AddCommand(watchCommand())
}

func openApp() (*app.App, error) {
	return app.New(cfg, log)
}

// userArg picks the positional user name, falling back to source.username.
func userArg(args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return args[0], nil
	}
	if cfg.Source.Username != "" {
		return cfg.Source.Username, nil
	}
	return "", fmt.Errorf("no user given and source.username is not set")
}
