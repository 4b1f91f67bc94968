package builder

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// shutdownTimeout bounds how long in-flight requests may take after a stop signal
const shutdownTimeout = 30 * time.Second

// App is the assembled HTTP service
type App struct {
	server *http.Server
	// db is nil when jobs and users are kept in memory
	db     *pgxpool.Pool
	logger *zap.Logger
}

// Run serves HTTP until SIGINT/SIGTERM or a server error, then shuts down gracefully
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		a.logger.Info("Starting HTTP server", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		a.logger.Error("Server error", zap.Error(err))
		a.close()
		return err
	case <-ctx.Done():
		a.logger.Info("Received shutdown signal")
	}

	return a.shutdown()
}

func (a *App) shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	a.logger.Info("Shutting down server gracefully")
	err := a.server.Shutdown(ctx)
	if err != nil {
		a.logger.Error("Server shutdown error", zap.Error(err))
	}

	a.close()
	if err == nil {
		a.logger.Info("Application stopped gracefully")
	}
	return err
}

func (a *App) close() {
	if a.db != nil {
		a.logger.Info("Closing database connections")
		a.db.Close()
	}
	_ = a.logger.Sync()
}
