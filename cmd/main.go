package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/installdesk-backend/internal/app"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "installdesk",
		Short:         "Software installation requests over chat, tickets and a job runner",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(newServeCmd(), newTicketProxyCmd(), newWorkerCmd(), newMigrateCmd())
	return cmd
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the bot API (chat messages, request ingestion, request lookup)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := app.New(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()
			return a.Run(cmd.Context())
		},
	}
}

func newTicketProxyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ticket-proxy",
		Short: "Run the ticket mediation service in front of ServiceNow",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := app.NewTicketProxy(cmd.Context())
			if err != nil {
				return err
			}
			defer p.Close()
			return p.Run(cmd.Context())
		},
	}
}

func newWorkerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Run the Temporal worker for execution polling",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.RunWorker(cmd.Context())
		},
	}
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the request store schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Migrate(cmd.Context())
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		stop()
		os.Exit(1)
	}
}
