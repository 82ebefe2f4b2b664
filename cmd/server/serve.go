package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"cargodash/internal/api"
	"cargodash/internal/config"
	"cargodash/internal/engine"
	"cargodash/internal/mapview"
	"cargodash/internal/models"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(v)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8080)")
	_ = v.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	return cmd
}

// newServer builds the echo instance around a data source.
func newServer(cfg *config.Config, src api.DataSource) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.CORS())
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(_ echo.Context, rv middleware.RequestLoggerValues) error {
			attrs := []any{"method", rv.Method, "uri", rv.URI, "status", rv.Status, "latency", rv.Latency}
			if rv.Error != nil {
				slog.Warn("request failed", append(attrs, "error", rv.Error)...)
				return nil
			}
			slog.Info("request", attrs...)
			return nil
		},
	}))

	h := api.NewHandler(src, api.Settings{
		TopN:     cfg.Dashboard.TopN,
		LineRows: cfg.Dashboard.LineRows,
		Page: mapview.Page{
			Title:     "Cargo voyages",
			CenterLat: cfg.Map.CenterLat,
			CenterLon: cfg.Map.CenterLon,
			Zoom:      cfg.Map.Zoom,
			Columns:   models.FilterColumns,
			Axes:      models.FilterColumns,
		},
	})
	h.RegisterRoutes(e)
	return e
}

func serve(ctx context.Context, cfg *config.Config) error {
	src := engine.NewSource(engine.NewCache(), cfg.Data.Path, cfg.Data.Sheet)

	// A dataset that cannot be loaded ends the session before it starts.
	ds, err := src.Dataset()
	if err != nil {
		return err
	}

	e := newServer(cfg, src)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server ready", "addr", cfg.Server.Addr, "voyages", ds.Len())
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}
