package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/eventmodel/internal/cli"
	httpAdapter "github.com/aretw0/eventmodel/pkg/adapters/http"
	"github.com/aretw0/eventmodel/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Serves slice views as JSON, Mermaid diagrams and a browser page per model.
Model changes are pushed to browsers over /events and build metrics are exposed on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.HTTP.Port, _ = cmd.Flags().GetInt("port")
		}

		metrics := observability.NewMetrics()
		engine, err := cli.CreateEngine(cfg, cli.CreateLogger(cfg.Debug), metrics.Hooks())
		if err != nil {
			return err
		}

		server, err := httpAdapter.NewServer(engine, httpAdapter.WithMetrics(metrics.Handler()))
		if err != nil {
			return err
		}
		handler, err := server.Handler()
		if err != nil {
			return err
		}

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		if changes, err := engine.Watch(ctx); err == nil {
			go server.Streams.Pump(ctx, changes)
		} else {
			fmt.Fprintf(cmd.ErrOrStderr(), "Live reload disabled: %v\n", err)
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			fmt.Fprintf(cmd.OutOrStdout(), "Starting eventmodel server on %s\n", srv.Addr)
			fmt.Fprintf(cmd.OutOrStdout(), "Serving models from: %s\n", cfg.ModelDir)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			fmt.Fprintf(cmd.OutOrStdout(), "\nStart shutdown... Signal: %v\n", ctx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			// Asking listener to shut down and shed load.
			if err := srv.Shutdown(shutdownCtx); err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "Graceful shutdown did not complete in %v: %v\n", 5*time.Second, err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("error killing server: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), "eventmodel server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
}
