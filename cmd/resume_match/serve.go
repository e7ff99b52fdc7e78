package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-match/internal/server"
)

func newServeCmd() *cobra.Command {
	var common commonFlags

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  `Start an HTTP server with the analysis page, a JSON API and a state event stream.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := common.resolve()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			p, client, err := buildPipeline(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = client.Close() }()

			srv, err := server.New(server.Config{Port: cfg.Port, Pipeline: p})
			if err != nil {
				return fmt.Errorf("failed to create server: %w", err)
			}
			return srv.Start(ctx)
		},
	}

	common.register(cmd)
	cmd.Flags().IntVar(&common.flags.Port, "port", 0, "Port to listen on (default 8080)")
	return cmd
}
