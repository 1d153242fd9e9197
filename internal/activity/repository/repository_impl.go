package repository

import (
	"context"

	"github.com/bdecent/avatarhub/internal/activity/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, activity *domain.Activity) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO activities (id, course_id, name, selection_mode, tags, display_mode, total_limit, per_user_limit, interval_limit, interval_seconds, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		activity.ID,
		activity.CourseID,
		activity.Name,
		activity.SelectionMode,
		activity.Tags,
		activity.DisplayMode,
		activity.TotalLimit,
		activity.PerUserLimit,
		activity.IntervalLimit,
		activity.IntervalSeconds,
		activity.CreatedAt,
		activity.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, activity *domain.Activity) error {
	return db.WithContext(ctx).Exec(
		`UPDATE activities
		 SET course_id = ?, name = ?, selection_mode = ?, tags = ?, display_mode = ?, total_limit = ?, per_user_limit = ?, interval_limit = ?, interval_seconds = ?, updated_at = ?
		 WHERE id = ?`,
		activity.CourseID,
		activity.Name,
		activity.SelectionMode,
		activity.Tags,
		activity.DisplayMode,
		activity.TotalLimit,
		activity.PerUserLimit,
		activity.IntervalLimit,
		activity.IntervalSeconds,
		activity.UpdatedAt,
		activity.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Activity, error) {
	var activity domain.Activity
	err := db.WithContext(ctx).Raw(
		`SELECT id, course_id, name, selection_mode, tags, display_mode, total_limit, per_user_limit, interval_limit, interval_seconds, created_at, updated_at
		 FROM activities WHERE id = ?`,
		id,
	).Scan(&activity).Error
	if err != nil {
		return nil, err
	}
	if activity.ID == 0 {
		return nil, nil
	}
	return &activity, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, courseID int64) ([]*domain.Activity, error) {
	var activities []*domain.Activity
	stmt := db.WithContext(ctx).Model(&domain.Activity{})
	if courseID != 0 {
		stmt = stmt.Where("course_id = ?", courseID)
	}
	err := stmt.
		Order("created_at asc, id asc").
		Find(&activities).Error
	if err != nil {
		return nil, err
	}
	return activities, nil
}
