package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"chat-intake/internal/api"
	"chat-intake/internal/common/config"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the chat endpoint over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		p, err := buildPipeline(ctx)
		if err != nil {
			return err
		}
		defer p.Close()

		handler := api.NewRouter(api.Options{
			Processor:    p.processor,
			Logger:       p.log,
			MaxBodyBytes: p.cfg.Server.MaxBodyBytes,
			Checks:       p.readinessChecks(),
		})

		srv := &http.Server{
			Addr:         p.cfg.Server.Address,
			Handler:      handler,
			ReadTimeout:  config.GetDuration(p.cfg.Server.ReadTimeout),
			WriteTimeout: config.GetDuration(p.cfg.Server.WriteTimeout),
			BaseContext: func(_ net.Listener) context.Context {
				return ctx
			},
		}

		errCh := make(chan error, 1)
		go func() {
			p.log.Info("chat server listening", map[string]interface{}{
				"address": srv.Addr,
				"service": describe(p.cfg),
			})
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case <-ctx.Done():
			p.log.Info("shutdown signal received", nil)
		case err := <-errCh:
			if err != nil {
				return err
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}
