package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"driver_training_service/internal/domain/entity"
	"driver_training_service/internal/tasks"
)

type RenewalRepository interface {
	ListAnnual(ctx context.Context) ([]entity.AssignmentDetail, error)
}

type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// RenewalSweeper runs the periodic renewal sweep: scan annual assignments,
// enqueue one reminder task per assignment whose renewal is due. Reminder
// delivery itself is an external collaborator; the handler only logs.
type RenewalSweeper struct {
	repository RenewalRepository
	enqueuer   TaskEnqueuer
	now        func() time.Time
}

func NewRenewalSweeper(repository RenewalRepository, enqueuer TaskEnqueuer) *RenewalSweeper {
	return &RenewalSweeper{
		repository: repository,
		enqueuer:   enqueuer,
		now:        time.Now,
	}
}

func (s *RenewalSweeper) HandleSweep(ctx context.Context, _ *asynq.Task) error {
	details, err := s.repository.ListAnnual(ctx)
	if err != nil {
		return fmt.Errorf("repository.ListAnnual: %w", err)
	}

	now := s.now()
	due := 0
	for _, d := range details {
		if !entity.RenewalDue(d.Assignment, d.Video, now) {
			continue
		}

		task, err := tasks.NewRenewalRemind(tasks.RenewalRemindPayload{
			UserId:     d.UserId,
			VideoId:    d.VideoId,
			VideoTitle: d.Video.Title,
		})
		if err != nil {
			return fmt.Errorf("tasks.NewRenewalRemind: %w", err)
		}
		if _, err := s.enqueuer.EnqueueContext(ctx, task); err != nil {
			return fmt.Errorf("enqueuer.EnqueueContext: %w", err)
		}
		due++
	}

	logger(ctx).Info("renewal sweep finished",
		slog.Int("checked", len(details)), slog.Int("due", due))
	return nil
}

func (s *RenewalSweeper) HandleRemind(ctx context.Context, task *asynq.Task) error {
	payload, err := tasks.ParseRenewalRemind(task)
	if err != nil {
		return fmt.Errorf("tasks.ParseRenewalRemind: %w", err)
	}

	logger(ctx).Info("annual renewal due",
		slog.String("user_id", payload.UserId),
		slog.String("video_id", payload.VideoId),
		slog.String("video_title", payload.VideoTitle),
	)
	return nil
}
