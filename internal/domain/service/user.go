package service

import (
	"context"
	"strings"

	"driver_training_service/internal/domain/entity"
	syncx "driver_training_service/internal/sync"
)

type UserRepository interface {
	List(ctx context.Context) ([]entity.User, error)
}

// UserService exposes the cached user collection. Users live in a single
// unscoped snapshot shared by every admin view.
type UserService struct {
	cache      *syncx.Cache[entity.User]
	reconciler *syncx.Reconciler
	governor   *syncx.Governor
}

func NewUserService(repository UserRepository, reconciler *syncx.Reconciler, governor *syncx.Governor) *UserService {
	cache := syncx.NewCache(syncx.CacheConfig[entity.User]{
		Collection: entity.CollectionUsers,
		Fetch: func(ctx context.Context, _ string) ([]entity.User, error) {
			return repository.List(ctx)
		},
		ID:    func(u entity.User) string { return u.Id },
		Match: entity.User.Matches,
	})

	return &UserService{
		cache:      cache,
		reconciler: reconciler,
		governor:   governor,
	}
}

func (s *UserService) Initialize(ctx context.Context) error {
	s.reconciler.Attach(entity.CollectionUsers, "", func(ctx context.Context) error {
		return s.cache.Refresh(ctx, "")
	})
	return s.cache.Initialize(ctx, "")
}

func (s *UserService) Refresh(ctx context.Context) error {
	return s.cache.Refresh(ctx, "")
}

// OfferRefresh is the foreground/visibility hook; the governor decides
// whether the refresh actually runs.
func (s *UserService) OfferRefresh(ctx context.Context) bool {
	return s.governor.Trigger(ctx, syncx.Key(entity.CollectionUsers, ""), s.Refresh)
}

func (s *UserService) Users() []entity.User {
	return s.cache.Rows("")
}

func (s *UserService) Search(query string) []entity.User {
	return s.cache.Search("", strings.ToLower(query))
}

func (s *UserService) GetById(id string) (entity.User, bool) {
	return s.cache.GetByID("", id)
}

func (s *UserService) Loading() bool {
	return s.cache.Loading("")
}

func (s *UserService) Err() error {
	return s.cache.Err("")
}

func (s *UserService) Teardown() {
	s.reconciler.Detach(entity.CollectionUsers, "")
	s.governor.Forget(syncx.Key(entity.CollectionUsers, ""))
	s.cache.Evict("")
}
