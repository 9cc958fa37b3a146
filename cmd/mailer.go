/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/authgate/apiserver/config"
	"github.com/authgate/apiserver/internal/mq"
	"github.com/authgate/apiserver/internal/notify"
	"github.com/spf13/cobra"
)

// mailerCmd runs the out-of-process mailer that consumes reset mail jobs
// published by the queue notifier and delivers them through Mailtrap (or
// the log backend in development).
var mailerCmd = &cobra.Command{
	Use:   "mailer",
	Short: "Consume queued password-reset mail jobs and deliver them",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

		bus, err := mq.NewBus(cmd.Context(), cfg)
		if err != nil {
			return fmt.Errorf("connect queue: %w", err)
		}
		defer func() {
			_ = bus.Close()
		}()

		var delegate notify.Notifier
		if cfg.DevMode {
			delegate = notify.NewLogNotifier(log)
		} else {
			delegate = notify.NewMailtrapNotifier(cfg.Mailtrap)
		}

		log.Info("mailer started", "channel", cfg.Queue.Channel, "backend", cfg.Queue.Backend)
		return notify.RunMailer(cmd.Context(), bus, cfg.Queue.Channel, delegate, log)
	},
}

func init() {
	rootCmd.AddCommand(mailerCmd)
}
