// Package service wires the configured components together and runs them.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/digitnet/digitnet-go/internal/api"
	"github.com/digitnet/digitnet-go/internal/classifier"
	"github.com/digitnet/digitnet-go/internal/conf"
	"github.com/digitnet/digitnet-go/internal/datastore"
	"github.com/digitnet/digitnet-go/internal/errors"
	"github.com/digitnet/digitnet-go/internal/imagestore"
	"github.com/digitnet/digitnet-go/internal/logging"
	"github.com/digitnet/digitnet-go/internal/observability"
	"github.com/digitnet/digitnet-go/internal/processor"
)

// shutdownTimeout bounds how long in-flight requests may take to drain.
const shutdownTimeout = 10 * time.Second

// Serve starts the HTTP service and blocks until SIGINT or SIGTERM.
func Serve(settings *conf.Settings) error {
	log := logging.ForService("service")

	if err := conf.ValidateSettings(settings); err != nil {
		return err
	}

	logging.Trace("effective configuration",
		"port", settings.WebServer.Port,
		"model", settings.Model.Path,
		"sqlite", settings.Output.SQLite.Enabled,
		"mysql", settings.Output.MySQL.Enabled,
		"imagestore", settings.ImageStore.Type)

	fileLog, closeFileLog, err := newFileLogger(settings)
	if err != nil {
		return err
	}
	procLog := logging.ForService("processor")
	if fileLog != nil {
		defer func() {
			if err := closeFileLog(); err != nil {
				log.Error("failed to close application log", "error", err)
			}
		}()
		procLog = fileLog
	}

	metrics, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	dataStore := datastore.New(settings)
	if err := dataStore.Open(); err != nil {
		return err
	}
	defer closeDataStore(dataStore)

	tfc, err := classifier.NewTFLiteClassifier(settings)
	if err != nil {
		return err
	}
	defer func() {
		if err := tfc.Close(); err != nil {
			log.Error("failed to close classifier", "error", err)
		}
	}()
	metrics.ModelLoadedGauge.Set(1)

	adapter := classifier.NewAdapter(tfc, time.Duration(settings.Model.Timeout)*time.Second)

	images, err := imagestore.New(settings)
	if err != nil {
		return err
	}
	if images == nil {
		log.Info("image persistence disabled")
	}

	proc := processor.New(settings, adapter, dataStore, images, metrics, procLog)

	e := echo.New()
	e.HideBanner = true
	e.IPExtractor = echo.ExtractIPFromXFFHeader()

	if _, err := api.New(e, proc, dataStore, settings, metrics); err != nil {
		return err
	}

	errChan := make(chan error, 1)
	go func() {
		addr := ":" + settings.WebServer.Port
		log.Info("starting HTTP server", "address", addr, "version", settings.Version)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quitChan:
		log.Info("shutdown signal received", "signal", sig.String())
	case err := <-errChan:
		return errors.New(err).
			Component("service").
			Category(errors.CategoryConfiguration).
			Build()
	}

	metrics.ModelLoadedGauge.Set(0)

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", "error", err)
		return err
	}

	log.Info("shutdown complete")
	return nil
}

// newFileLogger opens the rotating application log file when enabled.
// Returns nil without error when file logging is turned off.
func newFileLogger(settings *conf.Settings) (*slog.Logger, func() error, error) {
	if !settings.Main.Log.Enabled {
		return nil, nil, nil
	}
	level := slog.LevelInfo
	if settings.Debug {
		level = slog.LevelDebug
	}
	return logging.NewFileLogger(settings.Main.Log.Path, "processor", level)
}

func closeDataStore(store datastore.Interface) {
	if err := store.Close(); err != nil {
		logging.Error("failed to close database", "error", err)
	}
}
