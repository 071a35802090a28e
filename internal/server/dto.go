package server

import (
	"net/http"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals

type AssignVideosRequest struct {
	VideoIds []string `json:"video_ids" validate:"required,dive,required"`
}

type AssignUsersRequest struct {
	UserIds []string `json:"user_ids" validate:"required,dive,required"`
}

type WatchRequest struct {
	UserId  string `json:"user_id" validate:"required"`
	VideoId string `json:"video_id" validate:"required"`
}

type RefreshResponse struct {
	Refreshed bool `json:"refreshed"`
}

type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
