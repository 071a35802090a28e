package service

import (
	"context"
	"strings"

	"driver_training_service/internal/domain/entity"
	syncx "driver_training_service/internal/sync"
)

type VideoRepository interface {
	List(ctx context.Context, ownerId string) ([]entity.Video, error)
}

// VideoService exposes the cached video collection, partitioned by owning
// admin id. The empty scope holds the full catalog drivers browse.
type VideoService struct {
	cache      *syncx.Cache[entity.Video]
	reconciler *syncx.Reconciler
	governor   *syncx.Governor
}

func NewVideoService(repository VideoRepository, reconciler *syncx.Reconciler, governor *syncx.Governor) *VideoService {
	cache := syncx.NewCache(syncx.CacheConfig[entity.Video]{
		Collection: entity.CollectionVideos,
		Fetch:      repository.List,
		ID:         func(v entity.Video) string { return v.Id },
		Match:      entity.Video.Matches,
	})

	return &VideoService{
		cache:      cache,
		reconciler: reconciler,
		governor:   governor,
	}
}

func (s *VideoService) Initialize(ctx context.Context, scope string) error {
	s.reconciler.Attach(entity.CollectionVideos, scope, func(ctx context.Context) error {
		return s.cache.Refresh(ctx, scope)
	})
	return s.cache.Initialize(ctx, scope)
}

func (s *VideoService) Refresh(ctx context.Context, scope string) error {
	return s.cache.Refresh(ctx, scope)
}

func (s *VideoService) OfferRefresh(ctx context.Context, scope string) bool {
	return s.governor.Trigger(ctx, syncx.Key(entity.CollectionVideos, scope), func(ctx context.Context) error {
		return s.cache.Refresh(ctx, scope)
	})
}

func (s *VideoService) Videos(scope string) []entity.Video {
	return s.cache.Rows(scope)
}

func (s *VideoService) Search(scope, query string) []entity.Video {
	return s.cache.Search(scope, strings.ToLower(query))
}

func (s *VideoService) GetById(scope, id string) (entity.Video, bool) {
	return s.cache.GetByID(scope, id)
}

func (s *VideoService) Loading(scope string) bool {
	return s.cache.Loading(scope)
}

func (s *VideoService) Err(scope string) error {
	return s.cache.Err(scope)
}

func (s *VideoService) Teardown(scope string) {
	s.reconciler.Detach(entity.CollectionVideos, scope)
	s.governor.Forget(syncx.Key(entity.CollectionVideos, scope))
	s.cache.Evict(scope)
}
