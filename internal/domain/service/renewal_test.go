package service

import (
	"context"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driver_training_service/internal/domain/entity"
	"driver_training_service/internal/tasks"
)

type fakeEnqueuer struct {
	enqueued []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.enqueued = append(f.enqueued, task)
	return &asynq.TaskInfo{}, nil
}

func TestSweepEnqueuesOneReminderPerDueAssignment(t *testing.T) {
	annual := entity.Video{Id: "vR", Title: "Hours of Service", IsAnnualRenewal: true}
	ordinary := entity.Video{Id: "vO", Title: "Office Safety"}
	repo := &fakeAssignmentRepo{
		videos: map[string]entity.Video{"vR": annual, "vO": ordinary},
		details: []entity.AssignmentDetail{
			detailRow("a1", "u1", annual, testNow.AddDate(0, 0, -400), true),
			detailRow("a2", "u2", annual, testNow.AddDate(0, 0, -10), true),
			detailRow("a3", "u3", ordinary, testNow.AddDate(-2, 0, 0), true),
		},
	}

	enqueuer := &fakeEnqueuer{}
	sweeper := NewRenewalSweeper(repo, enqueuer)
	sweeper.now = func() time.Time { return testNow }

	require.NoError(t, sweeper.HandleSweep(context.Background(), tasks.NewRenewalSweep()))

	require.Len(t, enqueuer.enqueued, 1)
	task := enqueuer.enqueued[0]
	assert.Equal(t, tasks.TypeRenewalRemind, task.Type())

	payload, err := tasks.ParseRenewalRemind(task)
	require.NoError(t, err)
	assert.Equal(t, "u1", payload.UserId)
	assert.Equal(t, "vR", payload.VideoId)
	assert.Equal(t, "Hours of Service", payload.VideoTitle)
}
