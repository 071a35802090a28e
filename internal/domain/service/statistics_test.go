package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driver_training_service/internal/domain/entity"
)

func TestStatsForEmptyScope(t *testing.T) {
	repo := &fakeAssignmentRepo{videos: testVideos()}
	svc := newTestAssignmentService(repo)
	stats := NewStatisticsService(svc)

	require.NoError(t, svc.Initialize(context.Background(), entity.UserScope("u1")))

	got := stats.UserStats("u1")
	assert.Equal(t, 0, got.NumAssigned)
	assert.Equal(t, 0, got.Completion)
}

func TestStatsRoundsCompletionPercent(t *testing.T) {
	videos := testVideos()
	repo := &fakeAssignmentRepo{
		videos: videos,
		details: []entity.AssignmentDetail{
			detailRow("a1", "u1", videos["vA"], testNow, true),
			detailRow("a2", "u1", videos["vB"], testNow, false),
			detailRow("a3", "u1", videos["vC"], testNow, false),
		},
	}
	svc := newTestAssignmentService(repo)
	stats := NewStatisticsService(svc)

	require.NoError(t, svc.Initialize(context.Background(), entity.UserScope("u1")))

	got := stats.UserStats("u1")
	assert.Equal(t, 3, got.NumAssigned)
	assert.Equal(t, 33, got.Completion)
}

func TestStatsByVideo(t *testing.T) {
	videos := testVideos()
	repo := &fakeAssignmentRepo{
		videos: videos,
		details: []entity.AssignmentDetail{
			detailRow("a1", "u1", videos["vA"], testNow, true),
			detailRow("a2", "u2", videos["vA"], testNow, true),
		},
	}
	svc := newTestAssignmentService(repo)
	stats := NewStatisticsService(svc)

	require.NoError(t, svc.Initialize(context.Background(), entity.VideoScope("vA")))

	got := stats.VideoStats("vA")
	assert.Equal(t, 2, got.NumAssigned)
	assert.Equal(t, 100, got.Completion)
}
