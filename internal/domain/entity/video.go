package entity

import (
	"strings"
	"time"
)

const CategoryVan = "van"
const CategoryTruck = "truck"
const CategoryOffice = "office"

type Video struct {
	Id              string    `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	Description     string    `db:"description" json:"description"`
	Category        string    `db:"category" json:"category"`
	DurationSeconds int       `db:"duration_seconds" json:"duration_seconds"`
	YoutubeId       string    `db:"youtube_id" json:"youtube_id"`
	IsAnnualRenewal bool      `db:"is_annual_renewal" json:"is_annual_renewal"`
	OwnerId         string    `db:"owner_id" json:"owner_id"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Matches reports whether the video matches a lowercased search query
// against title, description and category.
func (v Video) Matches(query string) bool {
	return strings.Contains(strings.ToLower(v.Title), query) ||
		strings.Contains(strings.ToLower(v.Description), query) ||
		strings.Contains(strings.ToLower(v.Category), query)
}
