package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/samber/lo"

	"driver_training_service/internal/domain"
	"driver_training_service/internal/domain/entity"
	syncx "driver_training_service/internal/sync"
	"driver_training_service/pkg/errcodes"
)

type AssignmentRepository interface {
	ListByUser(ctx context.Context, userId string) ([]entity.AssignmentDetail, error)
	ListByVideo(ctx context.Context, videoId string) ([]entity.AssignmentDetail, error)
	InsertMany(ctx context.Context, assignments []entity.Assignment) error
	DeleteMany(ctx context.Context, ids []string) error
	Update(ctx context.Context, id string, patch entity.AssignmentPatch) error
}

// AssignmentService owns the assignment cache and the diff engine that
// reconciles remote assignment membership against a desired selection. It
// never patches the cache after a write; the resulting push event is what
// brings the new state back in.
type AssignmentService struct {
	repository AssignmentRepository
	cache      *syncx.Cache[entity.AssignmentDetail]
	reconciler *syncx.Reconciler
	governor   *syncx.Governor
	now        func() time.Time
}

func NewAssignmentService(repository AssignmentRepository, reconciler *syncx.Reconciler, governor *syncx.Governor) *AssignmentService {
	cache := syncx.NewCache(syncx.CacheConfig[entity.AssignmentDetail]{
		Collection: entity.CollectionAssignments,
		Fetch: func(ctx context.Context, scope string) ([]entity.AssignmentDetail, error) {
			kind, id, ok := strings.Cut(scope, ":")
			if !ok {
				return nil, domain.NewError(errcodes.InternalServerError,
					fmt.Sprintf("malformed assignment scope '%s'", scope))
			}
			if kind == "video" {
				return repository.ListByVideo(ctx, id)
			}
			return repository.ListByUser(ctx, id)
		},
		ID: func(d entity.AssignmentDetail) string { return d.Id },
	})

	return &AssignmentService{
		repository: repository,
		cache:      cache,
		reconciler: reconciler,
		governor:   governor,
		now:        time.Now,
	}
}

func (s *AssignmentService) Initialize(ctx context.Context, scope string) error {
	s.reconciler.Attach(entity.CollectionAssignments, scope, func(ctx context.Context) error {
		return s.cache.Refresh(ctx, scope)
	})
	return s.cache.Initialize(ctx, scope)
}

func (s *AssignmentService) Refresh(ctx context.Context, scope string) error {
	return s.cache.Refresh(ctx, scope)
}

func (s *AssignmentService) OfferRefresh(ctx context.Context, scope string) bool {
	return s.governor.Trigger(ctx, syncx.Key(entity.CollectionAssignments, scope), func(ctx context.Context) error {
		return s.cache.Refresh(ctx, scope)
	})
}

func (s *AssignmentService) Assignments(scope string) []entity.AssignmentDetail {
	return s.cache.Rows(scope)
}

func (s *AssignmentService) Loading(scope string) bool {
	return s.cache.Loading(scope)
}

func (s *AssignmentService) Err(scope string) error {
	return s.cache.Err(scope)
}

func (s *AssignmentService) Teardown(scope string) {
	s.reconciler.Detach(entity.CollectionAssignments, scope)
	s.governor.Forget(syncx.Key(entity.CollectionAssignments, scope))
	s.cache.Evict(scope)
}

// AssignToUser makes the set of videos assigned to a user match desired,
// issuing at most one bulk delete and one bulk insert.
func (s *AssignmentService) AssignToUser(ctx context.Context, userId string, videoIds []string) error {
	return s.reconcile(ctx, entity.UserScope(userId),
		func(d entity.AssignmentDetail) string { return d.VideoId },
		func(videoId string, now time.Time) entity.Assignment {
			return entity.Assignment{
				Id:           xid.New().String(),
				UserId:       userId,
				VideoId:      videoId,
				AssignedDate: now,
			}
		},
		videoIds)
}

// AssignToVideo makes the set of users assigned to a video match desired.
func (s *AssignmentService) AssignToVideo(ctx context.Context, videoId string, userIds []string) error {
	return s.reconcile(ctx, entity.VideoScope(videoId),
		func(d entity.AssignmentDetail) string { return d.UserId },
		func(userId string, now time.Time) entity.Assignment {
			return entity.Assignment{
				Id:           xid.New().String(),
				UserId:       userId,
				VideoId:      videoId,
				AssignedDate: now,
			}
		},
		userIds)
}

func (s *AssignmentService) reconcile(
	ctx context.Context,
	scope string,
	counterpart func(entity.AssignmentDetail) string,
	newRow func(counterpartId string, now time.Time) entity.Assignment,
	desired []string,
) error {
	if err := s.Initialize(ctx, scope); err != nil {
		return err
	}

	current := s.cache.Rows(scope)
	currentIds := lo.Map(current, func(d entity.AssignmentDetail, _ int) string { return counterpart(d) })

	toAdd := lo.Without(desired, currentIds...)
	toRemove := lo.Without(currentIds, desired...)

	// Removals go first. Pairs present in both sets are never touched, so
	// re-selecting an existing assignment keeps its assigned_date and
	// completion state.
	if len(toRemove) > 0 {
		removeIds := make([]string, 0, len(toRemove))
		for _, d := range current {
			if lo.Contains(toRemove, counterpart(d)) {
				removeIds = append(removeIds, d.Id)
			}
		}
		if err := s.repository.DeleteMany(ctx, removeIds); err != nil {
			return assignPhaseError(err, "delete")
		}
	}

	if len(toAdd) > 0 {
		now := s.now()
		rows := lo.Map(toAdd, func(counterpartId string, _ int) entity.Assignment {
			return newRow(counterpartId, now)
		})
		if err := s.repository.InsertMany(ctx, rows); err != nil {
			return assignPhaseError(err, "insert")
		}
	}

	return nil
}

// assignPhaseError marks which phase of the non-transactional delete/insert
// sequence failed. There is no compensation: callers must treat the state as
// possibly partially applied and re-read before retrying. Typed errors
// (conflict, timeout) pass through with their own codes.
func assignPhaseError(err error, phase string) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return domain.WrapError(err, errcodes.PartialAssign,
		fmt.Sprintf("assignment %s phase failed; state may be partially applied", phase))
}

// RecordWatch updates the sole assignment for a (user, video) pair after the
// driver watched the video. A renewal-due assignment is reset: this is the
// only path that changes assigned_date after creation.
func (s *AssignmentService) RecordWatch(ctx context.Context, userId, videoId string) error {
	detail, err := s.find(ctx, userId, videoId)
	if err != nil {
		return err
	}

	now := s.now()
	var patch entity.AssignmentPatch
	if entity.RenewalDue(detail.Assignment, detail.Video, now) {
		patch = entity.AssignmentPatch{
			AssignedDate: &now,
			IsCompleted:  lo.ToPtr(false),
			LastWatched:  &now,
			ModifiedDate: &now,
			LastAction:   lo.ToPtr(entity.ActionWatched),
		}
	} else {
		action := entity.ActionWatched
		if detail.IsCompleted {
			action = entity.ActionCompleted
		}
		patch = entity.AssignmentPatch{
			LastWatched:  &now,
			ModifiedDate: &now,
			LastAction:   &action,
		}
	}

	return s.repository.Update(ctx, detail.Id, patch)
}

// MarkComplete flips the completion flag. Watching alone never completes an
// assignment.
func (s *AssignmentService) MarkComplete(ctx context.Context, userId, videoId string) error {
	detail, err := s.find(ctx, userId, videoId)
	if err != nil {
		return err
	}

	now := s.now()
	patch := entity.AssignmentPatch{
		IsCompleted:  lo.ToPtr(true),
		LastWatched:  &now,
		ModifiedDate: &now,
		LastAction:   lo.ToPtr(entity.ActionCompleted),
	}

	return s.repository.Update(ctx, detail.Id, patch)
}

func (s *AssignmentService) find(ctx context.Context, userId, videoId string) (entity.AssignmentDetail, error) {
	scope := entity.UserScope(userId)
	if err := s.Initialize(ctx, scope); err != nil {
		return entity.AssignmentDetail{}, err
	}

	detail, ok := lo.Find(s.cache.Rows(scope), func(d entity.AssignmentDetail) bool {
		return d.VideoId == videoId
	})
	if !ok {
		return entity.AssignmentDetail{}, domain.NewError(errcodes.NotFound,
			fmt.Sprintf("no assignment for user '%s' and video '%s'", userId, videoId))
	}

	return detail, nil
}
