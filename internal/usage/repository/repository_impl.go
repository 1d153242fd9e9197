package repository

import (
	"context"
	"time"

	"github.com/bdecent/avatarhub/internal/usage/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) CountUsers(ctx context.Context, db *gorm.DB, avatarID snowflake.ID) (int, error) {
	var count int
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*) FROM collections WHERE avatar_id = ?`,
		avatarID,
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repo) FirstCollected(ctx context.Context, db *gorm.DB, avatarID snowflake.ID) (*domain.CollectionFact, error) {
	return r.edgeCollected(ctx, db, avatarID, "ASC")
}

func (r *repo) LastCollected(ctx context.Context, db *gorm.DB, avatarID snowflake.ID) (*domain.CollectionFact, error) {
	return r.edgeCollected(ctx, db, avatarID, "DESC")
}

func (r *repo) edgeCollected(ctx context.Context, db *gorm.DB, avatarID snowflake.ID, direction string) (*domain.CollectionFact, error) {
	var row struct {
		UserID        int64
		TimeCollected time.Time
	}
	err := db.WithContext(ctx).Raw(
		`SELECT user_id, time_collected
		 FROM collections
		 WHERE avatar_id = ?
		 ORDER BY time_collected `+direction+`, id `+direction+`
		 LIMIT 1`,
		avatarID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.UserID == 0 {
		return nil, nil
	}
	return &domain.CollectionFact{UserID: row.UserID, TimeCollected: row.TimeCollected}, nil
}

func (r *repo) MostCollectedCourse(ctx context.Context, db *gorm.DB, avatarID snowflake.ID) (*domain.RankedGroup, error) {
	var row struct {
		GroupID     int64
		Collections int
	}
	err := db.WithContext(ctx).Raw(
		`SELECT a.course_id AS group_id, COUNT(*) AS collections
		 FROM collections c
		 JOIN activities a ON a.id = c.activity_id
		 WHERE c.avatar_id = ?
		 GROUP BY a.course_id
		 ORDER BY collections DESC, a.course_id ASC
		 LIMIT 1`,
		avatarID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.Collections == 0 {
		return nil, nil
	}
	return &domain.RankedGroup{ID: row.GroupID, Collections: row.Collections}, nil
}

func (r *repo) MostCollectedCohort(ctx context.Context, db *gorm.DB, avatarID snowflake.ID) (*domain.RankedGroup, error) {
	var row struct {
		GroupID     int64
		Collections int
	}
	err := db.WithContext(ctx).Raw(
		`SELECT m.cohort_id AS group_id, COUNT(*) AS collections
		 FROM collections c
		 JOIN cohort_members m ON m.user_id = c.user_id
		 WHERE c.avatar_id = ?
		 GROUP BY m.cohort_id
		 ORDER BY collections DESC, m.cohort_id ASC
		 LIMIT 1`,
		avatarID,
	).Scan(&row).Error
	if err != nil {
		return nil, err
	}
	if row.Collections == 0 {
		return nil, nil
	}
	return &domain.RankedGroup{ID: row.GroupID, Collections: row.Collections}, nil
}
