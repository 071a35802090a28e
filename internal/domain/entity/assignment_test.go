package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRenewalDue(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	annual := Video{Id: "v1", IsAnnualRenewal: true}
	ordinary := Video{Id: "v2"}

	tests := []struct {
		name     string
		video    Video
		assigned time.Time
		want     bool
	}{
		{"due past a year", annual, now.AddDate(0, 0, -400), true},
		{"fresh assignment", annual, now.AddDate(0, 0, -10), false},
		{"exactly at the boundary", annual, now.Add(-RenewalPeriod), false},
		{"just past the boundary", annual, now.Add(-RenewalPeriod - time.Second), true},
		{"non-renewal video never expires", ordinary, now.AddDate(-3, 0, 0), false},
		{"zero assigned date", annual, time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := Assignment{AssignedDate: tt.assigned}
			assert.Equal(t, tt.want, RenewalDue(a, tt.video, now))
		})
	}
}

func TestUserMatches(t *testing.T) {
	u := User{FullName: "Dana Driver", Email: "dana@example.com"}

	assert.True(t, u.Matches("dana"))
	assert.True(t, u.Matches("example.com"))
	assert.False(t, u.Matches("smith"))
}

func TestVideoMatches(t *testing.T) {
	v := Video{Title: "Winter Driving", Description: "Chains and braking", Category: CategoryTruck}

	assert.True(t, v.Matches("winter"))
	assert.True(t, v.Matches("braking"))
	assert.True(t, v.Matches("truck"))
	assert.False(t, v.Matches("forklift"))
}
