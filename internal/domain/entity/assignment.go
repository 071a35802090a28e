package entity

import "time"

const ActionWatched = "watched"
const ActionCompleted = "completed"

const CollectionUsers = "users"
const CollectionVideos = "videos"
const CollectionAssignments = "assignments"

// RenewalPeriod is how long an annual-renewal assignment stays valid
// before the driver has to watch the video again.
const RenewalPeriod = 365 * 24 * time.Hour

type Assignment struct {
	Id           string     `db:"id" json:"id"`
	UserId       string     `db:"user_id" json:"user_id"`
	VideoId      string     `db:"video_id" json:"video_id"`
	IsCompleted  bool       `db:"is_completed" json:"is_completed"`
	AssignedDate time.Time  `db:"assigned_date" json:"assigned_date"`
	LastWatched  *time.Time `db:"last_watched" json:"last_watched,omitempty"`
	ModifiedDate *time.Time `db:"modified_date" json:"modified_date,omitempty"`
	LastAction   string     `db:"last_action" json:"last_action"`
}

// AssignmentDetail is the denormalized row the assignment cache holds:
// the assignment plus its video, joined server-side.
type AssignmentDetail struct {
	Assignment
	Video Video `db:"video" json:"video"`
}

// AssignmentPatch carries a partial update; nil fields are left unchanged.
type AssignmentPatch struct {
	AssignedDate *time.Time
	IsCompleted  *bool
	LastWatched  *time.Time
	ModifiedDate *time.Time
	LastAction   *string
}

// RenewalDue reports whether a completed-or-not annual assignment has aged
// past the renewal period and must be watched again. Pure; callers supply now.
func RenewalDue(a Assignment, v Video, now time.Time) bool {
	return v.IsAnnualRenewal && !a.AssignedDate.IsZero() && now.Sub(a.AssignedDate) > RenewalPeriod
}

// UserScope is the cache scope holding one driver's assignments.
func UserScope(userId string) string {
	return "user:" + userId
}

// VideoScope is the cache scope holding one video's assignments.
func VideoScope(videoId string) string {
	return "video:" + videoId
}
