package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alexanderramin/roadmap/internal/config"
	"github.com/alexanderramin/roadmap/internal/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newServeCmd(app *App, v *viper.Viper) *cobra.Command {
	var basePath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the plans over HTTP",
		Long:  "Serves a JSON API for every plan operation. OpenAPI is at /openapi.json and docs at /docs.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			handler, err := server.New(server.Config{Plans: app.Plans, BasePath: basePath, Logger: logger})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			addr := app.Settings.Addr
			srv := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}
			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				_ = srv.Shutdown(shutdownCtx)
			}()
			fmt.Fprintf(cmd.OutOrStdout(), "Serving roadmap API on http://%s%s (OpenAPI at /openapi.json, docs at /docs)\n", addr, basePath)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
	config.AddServeFlags(v, cmd.Flags())
	cmd.Flags().StringVar(&basePath, "base-path", "/v1", "API base path")
	return cmd
}
