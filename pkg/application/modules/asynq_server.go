package modules

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"
)

type AsynqServer struct{}

func (a AsynqServer) Run(
	gCtx context.Context,
	g *errgroup.Group,
	srv *asynq.Server,
	mux *asynq.ServeMux,
	scheduler *asynq.Scheduler,
) {
	g.Go(func() error {
		logger(gCtx).Info("asynq server started")

		if err := srv.Start(mux); err != nil {
			logger(gCtx).Error("asynq server start error", slog.Any("error", err))
			return fmt.Errorf("asynqServer.Start: %w", err)
		}

		<-gCtx.Done()

		logger(gCtx).Info("asynq server is shutting down")
		srv.Shutdown()
		return nil
	})

	g.Go(func() error {
		if err := scheduler.Start(); err != nil {
			logger(gCtx).Error("asynq scheduler start error", slog.Any("error", err))
			return fmt.Errorf("scheduler.Start: %w", err)
		}

		<-gCtx.Done()

		scheduler.Shutdown()
		logger(gCtx).Info("asynq scheduler shut down")
		return nil
	})
}
