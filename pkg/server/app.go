package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"StructSnap/internal/service/binance"
	"StructSnap/internal/usecase"
	pkgch "StructSnap/pkg/clickhouse"
	"StructSnap/pkg/config"
	xhttp "StructSnap/pkg/http"
	applogger "StructSnap/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	log         *applogger.Logger
	pipeline    *usecase.SnapshotPipeline
	stream      *binance.MarkPriceStream
	deliverer   *usecase.SnapshotDeliverer
	chClient    *pkgch.Client
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
}

// New creates a new App instance with all dependencies. stream and chClient
// may be nil when the corresponding features are disabled.
func New(
	cfg *config.Config,
	log *applogger.Logger,
	pipeline *usecase.SnapshotPipeline,
	stream *binance.MarkPriceStream,
	deliverer *usecase.SnapshotDeliverer,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		log:       log,
		pipeline:  pipeline,
		stream:    stream,
		deliverer: deliverer,
		chClient:  chClient,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mark price stream is best effort; without it symbols evaluate against
	// their last 4h close.
	if a.stream != nil {
		if err := a.stream.Start(ctx); err != nil {
			a.log.Warn("mark price stream unavailable", applogger.Error(err))
		}
	}

	a.pipeline.Start(ctx)
	a.log.Info("snapshot pipeline started",
		applogger.Strings("symbols", a.cfg.Pipeline.Symbols),
		applogger.Duration("interval", a.cfg.Pipeline.Interval))

	a.httpServer = xhttp.NewServer(a.httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)
	if err := a.httpServer.Start(); err != nil {
		a.log.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.log.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	a.pipeline.Stop()

	if a.stream != nil {
		if err := a.stream.Close(); err != nil {
			a.log.Warn("stream close error", applogger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
	}

	if a.deliverer != nil {
		a.deliverer.Close()
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.log.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return nil
}
