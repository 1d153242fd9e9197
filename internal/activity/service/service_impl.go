package service

import (
	"context"
	"strings"

	activitydomain "github.com/bdecent/avatarhub/internal/activity/domain"
	avatardomain "github.com/bdecent/avatarhub/internal/avatar/domain"
	"github.com/bdecent/avatarhub/internal/clock"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	Repo       activitydomain.Repository
	AvatarRepo avatardomain.Repository
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	clock      clock.Clock
	repo       activitydomain.Repository
	avatarRepo avatardomain.Repository
}

func New(p Params) activitydomain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("activity.service"),
		genID:      p.GenID,
		clock:      p.Clock,
		repo:       p.Repo,
		avatarRepo: p.AvatarRepo,
	}
}

func (s *Service) Create(ctx context.Context, req activitydomain.CreateActivityRequest) (activitydomain.Activity, error) {
	if req.CourseID == 0 {
		return activitydomain.Activity{}, activitydomain.ErrInvalidCourse
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return activitydomain.Activity{}, activitydomain.ErrInvalidName
	}
	mode, err := normalizeSelectionMode(req.SelectionMode)
	if err != nil {
		return activitydomain.Activity{}, err
	}

	display := req.DisplayMode
	if display == "" {
		display = activitydomain.DisplayGrid
	}

	interval := req.IntervalSeconds
	if req.IntervalLimit > 0 && interval <= 0 {
		interval = activitydomain.DefaultIntervalSeconds
	}

	now := s.clock.Now()
	activity := activitydomain.Activity{
		ID:              s.genID.Generate(),
		CourseID:        req.CourseID,
		Name:            name,
		SelectionMode:   mode,
		Tags:            datatypes.NewJSONSlice(normalizeTags(req.Tags)),
		DisplayMode:     display,
		TotalLimit:      req.TotalLimit,
		PerUserLimit:    req.PerUserLimit,
		IntervalLimit:   req.IntervalLimit,
		IntervalSeconds: interval,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.repo.Insert(ctx, s.db, &activity); err != nil {
		return activitydomain.Activity{}, err
	}
	return activity, nil
}

func (s *Service) Update(ctx context.Context, req activitydomain.UpdateActivityRequest) (activitydomain.Activity, error) {
	activity, err := s.load(ctx, req.ID)
	if err != nil {
		return activitydomain.Activity{}, err
	}

	if req.CourseID == 0 {
		return activitydomain.Activity{}, activitydomain.ErrInvalidCourse
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return activitydomain.Activity{}, activitydomain.ErrInvalidName
	}
	mode, err := normalizeSelectionMode(req.SelectionMode)
	if err != nil {
		return activitydomain.Activity{}, err
	}

	interval := req.IntervalSeconds
	if req.IntervalLimit > 0 && interval <= 0 {
		interval = activitydomain.DefaultIntervalSeconds
	}

	activity.CourseID = req.CourseID
	activity.Name = name
	activity.SelectionMode = mode
	activity.Tags = datatypes.NewJSONSlice(normalizeTags(req.Tags))
	if req.DisplayMode != "" {
		activity.DisplayMode = req.DisplayMode
	}
	activity.TotalLimit = req.TotalLimit
	activity.PerUserLimit = req.PerUserLimit
	activity.IntervalLimit = req.IntervalLimit
	activity.IntervalSeconds = interval
	activity.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, activity); err != nil {
		return activitydomain.Activity{}, err
	}
	return *activity, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (activitydomain.Activity, error) {
	activity, err := s.load(ctx, id)
	if err != nil {
		return activitydomain.Activity{}, err
	}
	return *activity, nil
}

func (s *Service) List(ctx context.Context, req activitydomain.ListActivityRequest) ([]activitydomain.Activity, error) {
	items, err := s.repo.List(ctx, s.db, req.CourseID)
	if err != nil {
		return nil, err
	}
	activities := make([]activitydomain.Activity, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		activities = append(activities, *item)
	}
	return activities, nil
}

func (s *Service) AvailableAvatars(ctx context.Context, id string) ([]avatardomain.Avatar, error) {
	activity, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	candidates, err := s.avatarRepo.ListCollectible(ctx, s.db)
	if err != nil {
		return nil, err
	}

	pool := make([]avatardomain.Avatar, 0, len(candidates))
	for _, candidate := range candidates {
		if candidate == nil {
			continue
		}
		if activity.Surfaces(*candidate) {
			pool = append(pool, *candidate)
		}
	}
	return pool, nil
}

func (s *Service) load(ctx context.Context, id string) (*activitydomain.Activity, error) {
	parsed, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || parsed == 0 {
		return nil, activitydomain.ErrInvalidID
	}
	activity, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, activitydomain.ErrNotFound
	}
	return activity, nil
}

// Tags are stored lowercase so pool matching stays case-insensitive
// across the catalog and activity sides.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(strings.ToLower(tag))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func normalizeSelectionMode(mode activitydomain.SelectionMode) (activitydomain.SelectionMode, error) {
	switch mode {
	case "", activitydomain.SelectionAll:
		return activitydomain.SelectionAll, nil
	case activitydomain.SelectionSpecific:
		return activitydomain.SelectionSpecific, nil
	default:
		return "", activitydomain.ErrInvalidSelectionMode
	}
}
