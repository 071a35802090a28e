package service

import (
	"math"

	"github.com/samber/lo"

	"driver_training_service/internal/domain/entity"
)

// StatisticsService derives assignment counts and completion percentages
// from the assignment cache. Stats are recomputed from the current snapshot
// on every read; the cache's own invalidation keeps them fresh.
type StatisticsService struct {
	assignments *AssignmentService
}

func NewStatisticsService(assignments *AssignmentService) *StatisticsService {
	return &StatisticsService{assignments: assignments}
}

func (s *StatisticsService) UserStats(userId string) entity.AssignmentStats {
	return aggregate(s.assignments.Assignments(entity.UserScope(userId)))
}

func (s *StatisticsService) VideoStats(videoId string) entity.AssignmentStats {
	return aggregate(s.assignments.Assignments(entity.VideoScope(videoId)))
}

func aggregate(details []entity.AssignmentDetail) entity.AssignmentStats {
	numAssigned := len(details)
	if numAssigned == 0 {
		return entity.AssignmentStats{}
	}

	completed := lo.CountBy(details, func(d entity.AssignmentDetail) bool { return d.IsCompleted })

	return entity.AssignmentStats{
		NumAssigned: numAssigned,
		Completion:  int(math.Round(100 * float64(completed) / float64(numAssigned))),
	}
}
