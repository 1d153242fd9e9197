package domain

import (
	"time"

	avatardomain "github.com/bdecent/avatarhub/internal/avatar/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type SelectionMode string

const (
	// SelectionAll surfaces every collectible avatar.
	SelectionAll SelectionMode = "all"
	// SelectionSpecific surfaces collectible avatars sharing at least one tag.
	SelectionSpecific SelectionMode = "specific"
)

type DisplayMode string

const (
	DisplayGrid DisplayMode = "grid"
	DisplayList DisplayMode = "list"
)

// Activity is a placement of the avatar picker inside a host course.
// The limit columns bound collection volume; zero means unlimited.
type Activity struct {
	ID            snowflake.ID                `gorm:"primaryKey" json:"id"`
	CourseID      int64                       `gorm:"not null;index" json:"course_id"`
	Name          string                      `gorm:"not null" json:"name"`
	SelectionMode SelectionMode               `gorm:"not null;default:all" json:"selection_mode"`
	Tags          datatypes.JSONSlice[string] `json:"tags,omitempty"`
	DisplayMode   DisplayMode                 `gorm:"not null;default:grid" json:"display_mode"`
	TotalLimit    int                         `gorm:"not null;default:0" json:"total_limit"`
	PerUserLimit  int                         `gorm:"not null;default:0" json:"per_user_limit"`
	IntervalLimit int                         `gorm:"not null;default:0" json:"interval_limit"`
	// IntervalSeconds is the rolling window used with IntervalLimit.
	IntervalSeconds int       `gorm:"not null;default:0" json:"interval_seconds"`
	CreatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Activity) TableName() string {
	return "activities"
}

// DefaultIntervalSeconds applies when an interval limit is configured
// without a window length.
const DefaultIntervalSeconds = 86400

// Interval returns the effective rolling window for the per-interval limit.
func (a Activity) Interval() time.Duration {
	seconds := a.IntervalSeconds
	if seconds <= 0 {
		seconds = DefaultIntervalSeconds
	}
	return time.Duration(seconds) * time.Second
}

// Surfaces reports whether the activity's pool includes the avatar.
// Archived and inactive avatars never surface.
func (a Activity) Surfaces(av avatardomain.Avatar) bool {
	if !av.Collectible() {
		return false
	}
	if a.SelectionMode != SelectionSpecific {
		return true
	}
	for _, tag := range a.Tags {
		if av.HasTag(tag) {
			return true
		}
	}
	return false
}
