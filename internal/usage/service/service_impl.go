package service

import (
	"context"

	activitydomain "github.com/bdecent/avatarhub/internal/activity/domain"
	avatardomain "github.com/bdecent/avatarhub/internal/avatar/domain"
	"github.com/bdecent/avatarhub/internal/usage/domain"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	Repo         domain.Repository
	AvatarRepo   avatardomain.Repository
	ActivityRepo activitydomain.Repository
}

type service struct {
	db           *gorm.DB
	log          *zap.Logger
	repo         domain.Repository
	avatarRepo   avatardomain.Repository
	activityRepo activitydomain.Repository
}

func New(p Params) domain.Service {
	return &service{
		db:           p.DB,
		log:          p.Log.Named("usage.service"),
		repo:         p.Repo,
		avatarRepo:   p.AvatarRepo,
		activityRepo: p.ActivityRepo,
	}
}

func (s *service) Snapshot(ctx context.Context, avatarID string) (domain.Snapshot, error) {
	id, err := snowflake.ParseString(avatarID)
	if err != nil {
		return domain.Snapshot{}, avatardomain.ErrInvalidID
	}

	avatar, err := s.avatarRepo.FindByID(ctx, s.db, id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if avatar == nil {
		return domain.Snapshot{}, avatardomain.ErrNotFound
	}

	var snapshot domain.Snapshot

	// Placement counts come from the pool rules, not from collections, so
	// an avatar nobody has collected still reports where it is offered.
	activities, err := s.activityRepo.List(ctx, s.db, 0)
	if err != nil {
		return domain.Snapshot{}, err
	}
	courses := make(map[int64]struct{})
	for _, activity := range activities {
		if !activity.Surfaces(*avatar) {
			continue
		}
		snapshot.Activities++
		courses[activity.CourseID] = struct{}{}
	}
	snapshot.Courses = len(courses)

	snapshot.Users, err = s.repo.CountUsers(ctx, s.db, id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if snapshot.Users == 0 {
		return snapshot, nil
	}

	snapshot.FirstCollected, err = s.repo.FirstCollected(ctx, s.db, id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snapshot.LastCollected, err = s.repo.LastCollected(ctx, s.db, id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snapshot.MostCollectedCourse, err = s.repo.MostCollectedCourse(ctx, s.db, id)
	if err != nil {
		return domain.Snapshot{}, err
	}
	snapshot.MostCollectedCohort, err = s.repo.MostCollectedCohort(ctx, s.db, id)
	if err != nil {
		return domain.Snapshot{}, err
	}

	return snapshot, nil
}
