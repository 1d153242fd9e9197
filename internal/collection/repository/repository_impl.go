package repository

import (
	"context"
	"time"

	"github.com/bdecent/avatarhub/internal/collection/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, collection *domain.Collection) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO collections (id, user_id, avatar_id, activity_id, variant, is_primary, time_collected, time_modified)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		collection.ID,
		collection.UserID,
		collection.AvatarID,
		collection.ActivityID,
		collection.Variant,
		collection.IsPrimary,
		collection.TimeCollected,
		collection.TimeModified,
	).Error
}

func (r *repo) FindByUserAndAvatar(ctx context.Context, db *gorm.DB, userID int64, avatarID snowflake.ID) (*domain.Collection, error) {
	var collection domain.Collection
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, avatar_id, activity_id, variant, is_primary, time_collected, time_modified
		 FROM collections WHERE user_id = ? AND avatar_id = ?`,
		userID,
		avatarID,
	).Scan(&collection).Error
	if err != nil {
		return nil, err
	}
	if collection.ID == 0 {
		return nil, nil
	}
	return &collection, nil
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID int64) ([]*domain.Collection, error) {
	var collections []*domain.Collection
	err := db.WithContext(ctx).
		Model(&domain.Collection{}).
		Where("user_id = ?", userID).
		Order("time_collected desc, id desc").
		Find(&collections).Error
	if err != nil {
		return nil, err
	}
	return collections, nil
}

func (r *repo) ClearPrimary(ctx context.Context, db *gorm.DB, userID int64) error {
	return db.WithContext(ctx).Exec(
		`UPDATE collections SET is_primary = ? WHERE user_id = ?`,
		false,
		userID,
	).Error
}

func (r *repo) UpdateProgress(ctx context.Context, db *gorm.DB, collection *domain.Collection) error {
	return db.WithContext(ctx).Exec(
		`UPDATE collections
		 SET variant = ?, activity_id = ?, is_primary = ?, time_modified = ?
		 WHERE id = ?`,
		collection.Variant,
		collection.ActivityID,
		collection.IsPrimary,
		collection.TimeModified,
		collection.ID,
	).Error
}

func (r *repo) CountByAvatar(ctx context.Context, db *gorm.DB, avatarID snowflake.ID) (int, error) {
	return r.count(ctx, db, `SELECT COUNT(*) FROM collections WHERE avatar_id = ?`, avatarID)
}

func (r *repo) CountByActivity(ctx context.Context, db *gorm.DB, activityID snowflake.ID) (int, error) {
	return r.count(ctx, db, `SELECT COUNT(*) FROM collections WHERE activity_id = ?`, activityID)
}

func (r *repo) CountByUserAndActivity(ctx context.Context, db *gorm.DB, userID int64, activityID snowflake.ID) (int, error) {
	return r.count(ctx, db,
		`SELECT COUNT(*) FROM collections WHERE user_id = ? AND activity_id = ?`,
		userID, activityID)
}

func (r *repo) CountByUserInActivitySince(ctx context.Context, db *gorm.DB, userID int64, activityID snowflake.ID, since time.Time) (int, error) {
	return r.count(ctx, db,
		`SELECT COUNT(*) FROM collections WHERE user_id = ? AND activity_id = ? AND time_collected > ?`,
		userID, activityID, since)
}

func (r *repo) count(ctx context.Context, db *gorm.DB, query string, args ...any) (int, error) {
	var count int
	err := db.WithContext(ctx).Raw(query, args...).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
