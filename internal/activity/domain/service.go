package domain

import (
	"context"
	"errors"

	avatardomain "github.com/bdecent/avatarhub/internal/avatar/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type CreateActivityRequest struct {
	CourseID        int64         `json:"course_id"`
	Name            string        `json:"name"`
	SelectionMode   SelectionMode `json:"selection_mode"`
	Tags            []string      `json:"tags"`
	DisplayMode     DisplayMode   `json:"display_mode"`
	TotalLimit      int           `json:"total_limit"`
	PerUserLimit    int           `json:"per_user_limit"`
	IntervalLimit   int           `json:"interval_limit"`
	IntervalSeconds int           `json:"interval_seconds"`
}

type UpdateActivityRequest struct {
	ID string `json:"-"`
	CreateActivityRequest
}

type ListActivityRequest struct {
	CourseID int64
}

type Service interface {
	Create(ctx context.Context, req CreateActivityRequest) (Activity, error)
	Update(ctx context.Context, req UpdateActivityRequest) (Activity, error)
	GetByID(ctx context.Context, id string) (Activity, error)
	List(ctx context.Context, req ListActivityRequest) ([]Activity, error)
	// AvailableAvatars resolves the avatar pool the activity surfaces,
	// ordered by catalog creation time.
	AvailableAvatars(ctx context.Context, id string) ([]avatardomain.Avatar, error)
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, activity *Activity) error
	Update(ctx context.Context, db *gorm.DB, activity *Activity) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Activity, error)
	List(ctx context.Context, db *gorm.DB, courseID int64) ([]*Activity, error)
}

var (
	ErrNotFound             = errors.New("activity_not_found")
	ErrInvalidID            = errors.New("invalid_activity_id")
	ErrInvalidName          = errors.New("invalid_activity_name")
	ErrInvalidCourse        = errors.New("invalid_course")
	ErrInvalidSelectionMode = errors.New("invalid_selection_mode")
)
