package repository

import (
	"context"

	"github.com/bdecent/avatarhub/internal/avatar/domain"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, avatar *domain.Avatar, pro *domain.AvatarPro) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`INSERT INTO avatars (id, name, idnumber, description, secret_info, status, variant_count, tags, archived, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			avatar.ID,
			avatar.Name,
			avatar.IDNumber,
			avatar.Description,
			avatar.SecretInfo,
			avatar.Status,
			avatar.VariantCount,
			avatar.Tags,
			avatar.Archived,
			avatar.CreatedAt,
			avatar.UpdatedAt,
		).Error; err != nil {
			return err
		}
		return tx.Exec(
			`INSERT INTO avatar_pro (avatar_id, category_ids, include_subcategories, cohort_ids, total_capacity)
			 VALUES (?, ?, ?, ?, ?)`,
			pro.AvatarID,
			pro.CategoryIDs,
			pro.IncludeSubcategories,
			pro.CohortIDs,
			pro.TotalCapacity,
		).Error
	})
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, avatar *domain.Avatar, pro *domain.AvatarPro) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`UPDATE avatars
			 SET name = ?, idnumber = ?, description = ?, secret_info = ?, status = ?, variant_count = ?, tags = ?, archived = ?, archived_at = ?, updated_at = ?
			 WHERE id = ?`,
			avatar.Name,
			avatar.IDNumber,
			avatar.Description,
			avatar.SecretInfo,
			avatar.Status,
			avatar.VariantCount,
			avatar.Tags,
			avatar.Archived,
			avatar.ArchivedAt,
			avatar.UpdatedAt,
			avatar.ID,
		).Error; err != nil {
			return err
		}
		if pro == nil {
			return nil
		}
		return tx.Exec(
			`UPDATE avatar_pro
			 SET category_ids = ?, include_subcategories = ?, cohort_ids = ?, total_capacity = ?
			 WHERE avatar_id = ?`,
			pro.CategoryIDs,
			pro.IncludeSubcategories,
			pro.CohortIDs,
			pro.TotalCapacity,
			pro.AvatarID,
		).Error
	})
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Avatar, error) {
	var avatar domain.Avatar
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, idnumber, description, secret_info, status, variant_count, tags, archived, archived_at, created_at, updated_at
		 FROM avatars WHERE id = ?`,
		id,
	).Scan(&avatar).Error
	if err != nil {
		return nil, err
	}
	if avatar.ID == 0 {
		return nil, nil
	}
	return &avatar, nil
}

func (r *repo) FindPro(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.AvatarPro, error) {
	var pro domain.AvatarPro
	err := db.WithContext(ctx).Raw(
		`SELECT avatar_id, category_ids, include_subcategories, cohort_ids, total_capacity
		 FROM avatar_pro WHERE avatar_id = ?`,
		id,
	).Scan(&pro).Error
	if err != nil {
		return nil, err
	}
	if pro.AvatarID == 0 {
		return nil, nil
	}
	return &pro, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, limit int) ([]*domain.Avatar, error) {
	var avatars []*domain.Avatar
	stmt := db.WithContext(ctx).Model(&domain.Avatar{})
	if filter.Archived != nil {
		stmt = stmt.Where("archived = ?", *filter.Archived)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Cursor != nil {
		stmt = stmt.Where("created_at > ? OR (created_at = ? AND id > ?)",
			filter.Cursor.CreatedAt, filter.Cursor.CreatedAt, filter.Cursor.ID)
	}
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	err := stmt.
		Order("created_at asc, id asc").
		Find(&avatars).Error
	if err != nil {
		return nil, err
	}
	return avatars, nil
}

func (r *repo) ListCollectible(ctx context.Context, db *gorm.DB) ([]*domain.Avatar, error) {
	var avatars []*domain.Avatar
	err := db.WithContext(ctx).
		Model(&domain.Avatar{}).
		Where("archived = ? AND status = ?", false, domain.AvatarStatusActive).
		Order("created_at asc, id asc").
		Find(&avatars).Error
	if err != nil {
		return nil, err
	}
	return avatars, nil
}

func (r *repo) Delete(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM avatar_pro WHERE avatar_id = ?`, id).Error; err != nil {
			return err
		}
		return tx.Exec(`DELETE FROM avatars WHERE id = ?`, id).Error
	})
}
