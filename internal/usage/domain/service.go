package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// CollectionFact is a single collection occurrence surfaced in reports.
type CollectionFact struct {
	UserID        int64     `json:"user_id"`
	TimeCollected time.Time `json:"time_collected"`
}

// RankedGroup is the winner of a most-collected ranking. Ties break to the
// lowest group id so the report is deterministic.
type RankedGroup struct {
	ID          int64 `json:"id"`
	Collections int   `json:"collections"`
}

// Snapshot summarizes where an avatar appears and how it has been
// collected. An avatar with no collectors yields zero counts and nil facts.
type Snapshot struct {
	Activities          int             `json:"activities"`
	Courses             int             `json:"courses"`
	Users               int             `json:"users"`
	FirstCollected      *CollectionFact `json:"first_collected,omitempty"`
	LastCollected       *CollectionFact `json:"last_collected,omitempty"`
	MostCollectedCourse *RankedGroup    `json:"most_collected_course,omitempty"`
	MostCollectedCohort *RankedGroup    `json:"most_collected_cohort,omitempty"`
}

type Service interface {
	Snapshot(ctx context.Context, avatarID string) (Snapshot, error)
}

type Repository interface {
	CountUsers(ctx context.Context, db *gorm.DB, avatarID snowflake.ID) (int, error)
	FirstCollected(ctx context.Context, db *gorm.DB, avatarID snowflake.ID) (*CollectionFact, error)
	LastCollected(ctx context.Context, db *gorm.DB, avatarID snowflake.ID) (*CollectionFact, error)
	MostCollectedCourse(ctx context.Context, db *gorm.DB, avatarID snowflake.ID) (*RankedGroup, error)
	MostCollectedCohort(ctx context.Context, db *gorm.DB, avatarID snowflake.ID) (*RankedGroup, error)
}
