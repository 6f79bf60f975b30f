package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/tabimport/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveAddr      string
	serveMaxUpload int64
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP import service",
	RunE: func(cmd *cobra.Command, args []string) error {
		opt, err := baseOptions()
		if err != nil {
			return err
		}
		addr, maxUpload := ":8080", int64(server.DefaultMaxUploadBytes)
		if cfg != nil {
			addr, maxUpload = cfg.ServerAddr, cfg.MaxUploadBytes
		}
		if cmd.Flags().Changed("addr") {
			addr = serveAddr
		}
		if cmd.Flags().Changed("max-upload") {
			maxUpload = serveMaxUpload
		}

		srv := server.New(server.Config{Addr: addr, Options: opt, MaxUploadBytes: maxUpload})
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() { errCh <- srv.Start() }()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address (overrides config)")
	serveCmd.Flags().Int64Var(&serveMaxUpload, "max-upload", server.DefaultMaxUploadBytes, "maximum upload size in bytes (overrides config)")
}
