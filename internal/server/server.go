package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"driver_training_service/internal/domain"
	"driver_training_service/internal/domain/entity"
	"driver_training_service/pkg/errcodes"
)

type UserService interface {
	Initialize(ctx context.Context) error
	OfferRefresh(ctx context.Context) bool
	Search(query string) []entity.User
	GetById(id string) (entity.User, bool)
	Teardown()
}

type VideoService interface {
	Initialize(ctx context.Context, scope string) error
	OfferRefresh(ctx context.Context, scope string) bool
	Search(scope, query string) []entity.Video
	GetById(scope, id string) (entity.Video, bool)
	Teardown(scope string)
}

type AssignmentService interface {
	Initialize(ctx context.Context, scope string) error
	OfferRefresh(ctx context.Context, scope string) bool
	Assignments(scope string) []entity.AssignmentDetail
	AssignToUser(ctx context.Context, userId string, videoIds []string) error
	AssignToVideo(ctx context.Context, videoId string, userIds []string) error
	RecordWatch(ctx context.Context, userId, videoId string) error
	MarkComplete(ctx context.Context, userId, videoId string) error
	Teardown(scope string)
}

type StatsService interface {
	UserStats(userId string) entity.AssignmentStats
	VideoStats(videoId string) entity.AssignmentStats
}

type Server struct {
	userService       UserService
	videoService      VideoService
	assignmentService AssignmentService
	statsService      StatsService
	validate          *validator.Validate
}

func NewServer(userSvc UserService, videoSvc VideoService, assignmentSvc AssignmentService, statsSvc StatsService) *Server {
	return &Server{
		userService:       userSvc,
		videoService:      videoSvc,
		assignmentService: assignmentSvc,
		statsService:      statsSvc,
		validate:          validator.New(),
	}
}

func (s *Server) RegisterRoutes(router chi.Router) {
	router.Get("/healthz", s.health)

	router.Route("/users", func(r chi.Router) {
		r.Get("/", s.listUsers)
		r.Get("/{userId}", s.getUser)
		r.Get("/{userId}/assignments", s.listUserAssignments)
		r.Put("/{userId}/assignments", s.assignToUser)
		r.Get("/{userId}/stats", s.userStats)
	})

	router.Route("/videos", func(r chi.Router) {
		r.Get("/", s.listVideos)
		r.Get("/{videoId}", s.getVideo)
		r.Get("/{videoId}/assignments", s.listVideoAssignments)
		r.Put("/{videoId}/assignments", s.assignToVideo)
		r.Get("/{videoId}/stats", s.videoStats)
	})

	router.Post("/watch", s.recordWatch)
	router.Post("/complete", s.markComplete)

	router.Route("/scopes/{collection}/{scope}", func(r chi.Router) {
		r.Post("/initialize", s.initializeScope)
		r.Post("/refresh", s.refreshScope)
		r.Delete("/", s.teardownScope)
	})
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listUsers(w http.ResponseWriter, r *http.Request) {
	if err := s.userService.Initialize(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}

	users := s.userService.Search(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, users)
}

func (s *Server) getUser(w http.ResponseWriter, r *http.Request) {
	if err := s.userService.Initialize(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}

	user, ok := s.userService.GetById(chi.URLParam(r, "userId"))
	if !ok {
		s.writeError(w, domain.NewError(errcodes.NotFound, "user not found"))
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) listVideos(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	if err := s.videoService.Initialize(r.Context(), scope); err != nil {
		s.writeError(w, err)
		return
	}

	videos := s.videoService.Search(scope, r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, videos)
}

func (s *Server) getVideo(w http.ResponseWriter, r *http.Request) {
	scope := r.URL.Query().Get("scope")
	if err := s.videoService.Initialize(r.Context(), scope); err != nil {
		s.writeError(w, err)
		return
	}

	video, ok := s.videoService.GetById(scope, chi.URLParam(r, "videoId"))
	if !ok {
		s.writeError(w, domain.NewError(errcodes.NotFound, "video not found"))
		return
	}
	writeJSON(w, http.StatusOK, video)
}

func (s *Server) listUserAssignments(w http.ResponseWriter, r *http.Request) {
	s.listAssignments(w, r, entity.UserScope(chi.URLParam(r, "userId")))
}

func (s *Server) listVideoAssignments(w http.ResponseWriter, r *http.Request) {
	s.listAssignments(w, r, entity.VideoScope(chi.URLParam(r, "videoId")))
}

func (s *Server) listAssignments(w http.ResponseWriter, r *http.Request, scope string) {
	if err := s.assignmentService.Initialize(r.Context(), scope); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.assignmentService.Assignments(scope))
}

func (s *Server) assignToUser(w http.ResponseWriter, r *http.Request) {
	var request AssignVideosRequest
	if !s.decode(w, r, &request) {
		return
	}

	if err := s.assignmentService.AssignToUser(r.Context(), chi.URLParam(r, "userId"), request.VideoIds); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) assignToVideo(w http.ResponseWriter, r *http.Request) {
	var request AssignUsersRequest
	if !s.decode(w, r, &request) {
		return
	}

	if err := s.assignmentService.AssignToVideo(r.Context(), chi.URLParam(r, "videoId"), request.UserIds); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) userStats(w http.ResponseWriter, r *http.Request) {
	userId := chi.URLParam(r, "userId")
	if err := s.assignmentService.Initialize(r.Context(), entity.UserScope(userId)); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statsService.UserStats(userId))
}

func (s *Server) videoStats(w http.ResponseWriter, r *http.Request) {
	videoId := chi.URLParam(r, "videoId")
	if err := s.assignmentService.Initialize(r.Context(), entity.VideoScope(videoId)); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.statsService.VideoStats(videoId))
}

func (s *Server) recordWatch(w http.ResponseWriter, r *http.Request) {
	var request WatchRequest
	if !s.decode(w, r, &request) {
		return
	}

	if err := s.assignmentService.RecordWatch(r.Context(), request.UserId, request.VideoId); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) markComplete(w http.ResponseWriter, r *http.Request) {
	var request WatchRequest
	if !s.decode(w, r, &request) {
		return
	}

	if err := s.assignmentService.MarkComplete(r.Context(), request.UserId, request.VideoId); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// scopeParam maps the path placeholder "-" to the empty (global) scope.
func scopeParam(r *http.Request) string {
	scope := chi.URLParam(r, "scope")
	if scope == "-" {
		return ""
	}
	return scope
}

func (s *Server) initializeScope(w http.ResponseWriter, r *http.Request) {
	var err error
	switch chi.URLParam(r, "collection") {
	case entity.CollectionUsers:
		err = s.userService.Initialize(r.Context())
	case entity.CollectionVideos:
		err = s.videoService.Initialize(r.Context(), scopeParam(r))
	case entity.CollectionAssignments:
		err = s.assignmentService.Initialize(r.Context(), scopeParam(r))
	default:
		err = domain.NewError(errcodes.NotFound, "unknown collection")
	}

	if err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// refreshScope is the foreground/visibility hook: the environment offers a
// refresh and the governor decides whether it runs.
func (s *Server) refreshScope(w http.ResponseWriter, r *http.Request) {
	var refreshed bool
	switch chi.URLParam(r, "collection") {
	case entity.CollectionUsers:
		refreshed = s.userService.OfferRefresh(r.Context())
	case entity.CollectionVideos:
		refreshed = s.videoService.OfferRefresh(r.Context(), scopeParam(r))
	case entity.CollectionAssignments:
		refreshed = s.assignmentService.OfferRefresh(r.Context(), scopeParam(r))
	default:
		s.writeError(w, domain.NewError(errcodes.NotFound, "unknown collection"))
		return
	}

	writeJSON(w, http.StatusOK, RefreshResponse{Refreshed: refreshed})
}

func (s *Server) teardownScope(w http.ResponseWriter, r *http.Request) {
	switch chi.URLParam(r, "collection") {
	case entity.CollectionUsers:
		s.userService.Teardown()
	case entity.CollectionVideos:
		s.videoService.Teardown(scopeParam(r))
	case entity.CollectionAssignments:
		s.assignmentService.Teardown(scopeParam(r))
	default:
		s.writeError(w, domain.NewError(errcodes.NotFound, "unknown collection"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, request any) bool {
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code:    "InvalidArgument",
			Message: "malformed request body",
		}})
		return false
	}
	if err := s.validate.Struct(request); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: ErrorBody{
			Code:    "InvalidArgument",
			Message: err.Error(),
		}})
		return false
	}
	return true
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := errcodes.InternalServerError
	message := "internal error"

	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
		switch appErr.Code {
		case errcodes.NotFound:
			status = http.StatusNotFound
		case errcodes.AssignmentExists:
			status = http.StatusConflict
		case errcodes.Timeout:
			status = http.StatusGatewayTimeout
		case errcodes.PartialAssign:
			status = http.StatusBadGateway
		}
	}

	writeJSON(w, status, ErrorResponse{Error: ErrorBody{
		Code:    string(code),
		Message: message,
	}})
}
