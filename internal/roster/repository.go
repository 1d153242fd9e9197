package roster

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// UserCategoryIDs returns the category ids of the user's enrolled
	// courses. With ancestors enabled every path segment counts, so a
	// course in a subcategory satisfies a parent-category restriction.
	UserCategoryIDs(ctx context.Context, db *gorm.DB, userID int64, ancestors bool) ([]int64, error)
	UserCohortIDs(ctx context.Context, db *gorm.DB, userID int64) ([]int64, error)
	// MatchCandidates scans profile-field rows after the cursor and joins
	// them against collectible avatars by name or idnumber, skipping
	// pairs the user already holds.
	MatchCandidates(ctx context.Context, db *gorm.DB, field string, afterRow snowflake.ID, limit int) ([]MatchCandidate, error)
	CountMatchCandidates(ctx context.Context, db *gorm.DB, field string) (int, error)
}

type repo struct{}

func Provide() Repository {
	return &repo{}
}

func (r *repo) UserCategoryIDs(ctx context.Context, db *gorm.DB, userID int64, ancestors bool) ([]int64, error) {
	var rows []Enrollment
	err := db.WithContext(ctx).Raw(
		`SELECT category_id, category_path FROM enrollments WHERE user_id = ?`,
		userID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(rows))
	ids := make([]int64, 0, len(rows))
	add := func(id int64) {
		if id == 0 {
			return
		}
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	for _, row := range rows {
		add(row.CategoryID)
		if !ancestors {
			continue
		}
		for _, segment := range strings.Split(row.CategoryPath, "/") {
			segment = strings.TrimSpace(segment)
			if segment == "" {
				continue
			}
			parsed, err := strconv.ParseInt(segment, 10, 64)
			if err != nil {
				continue
			}
			add(parsed)
		}
	}
	return ids, nil
}

func (r *repo) UserCohortIDs(ctx context.Context, db *gorm.DB, userID int64) ([]int64, error) {
	var ids []int64
	err := db.WithContext(ctx).Raw(
		`SELECT cohort_id FROM cohort_members WHERE user_id = ?`,
		userID,
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *repo) MatchCandidates(ctx context.Context, db *gorm.DB, field string, afterRow snowflake.ID, limit int) ([]MatchCandidate, error) {
	// The limit bounds profile rows, not pairs. One row can match several
	// avatars (by name and by idnumber), and the caller's cursor is the row
	// id, so a batch must always carry every match of its last row.
	var candidates []MatchCandidate
	err := db.WithContext(ctx).Raw(
		`SELECT f.id AS row_id, f.user_id, a.id AS avatar_id
		 FROM user_profile_fields f
		 JOIN avatars a ON (a.name = f.value OR a.idnumber = f.value)
		 WHERE f.field = ?
		   AND a.archived = ?
		   AND a.status = ?
		   AND NOT EXISTS (
		     SELECT 1 FROM collections c
		     WHERE c.user_id = f.user_id AND c.avatar_id = a.id
		   )
		   AND f.id IN (
		     SELECT row_id FROM (
		       SELECT DISTINCT f2.id AS row_id
		       FROM user_profile_fields f2
		       JOIN avatars a2 ON (a2.name = f2.value OR a2.idnumber = f2.value)
		       WHERE f2.field = ?
		         AND f2.id > ?
		         AND a2.archived = ?
		         AND a2.status = ?
		         AND NOT EXISTS (
		           SELECT 1 FROM collections c2
		           WHERE c2.user_id = f2.user_id AND c2.avatar_id = a2.id
		         )
		       ORDER BY f2.id ASC
		       LIMIT ?
		     ) batch
		   )
		 ORDER BY f.id ASC, a.id ASC`,
		field,
		false,
		"active",
		field,
		afterRow,
		false,
		"active",
		limit,
	).Scan(&candidates).Error
	if err != nil {
		return nil, err
	}
	return candidates, nil
}

func (r *repo) CountMatchCandidates(ctx context.Context, db *gorm.DB, field string) (int, error) {
	var count int
	err := db.WithContext(ctx).Raw(
		`SELECT COUNT(*)
		 FROM user_profile_fields f
		 JOIN avatars a ON (a.name = f.value OR a.idnumber = f.value)
		 WHERE f.field = ?
		   AND a.archived = ?
		   AND a.status = ?
		   AND NOT EXISTS (
		     SELECT 1 FROM collections c
		     WHERE c.user_id = f.user_id AND c.avatar_id = a.id
		   )`,
		field,
		false,
		"active",
	).Scan(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
