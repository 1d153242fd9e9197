package service

import (
	"context"
	"strings"
	"time"

	avatardomain "github.com/bdecent/avatarhub/internal/avatar/domain"
	"github.com/bdecent/avatarhub/internal/clock"
	eventsdomain "github.com/bdecent/avatarhub/internal/events/domain"
	"github.com/bdecent/avatarhub/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB     *gorm.DB
	Log    *zap.Logger
	GenID  *snowflake.Node
	Clock  clock.Clock
	Repo   avatardomain.Repository
	Events eventsdomain.Service
}

type Service struct {
	db     *gorm.DB
	log    *zap.Logger
	genID  *snowflake.Node
	clock  clock.Clock
	repo   avatardomain.Repository
	events eventsdomain.Service
}

func New(p Params) avatardomain.Service {
	return &Service{
		db:     p.DB,
		log:    p.Log.Named("avatar.service"),
		genID:  p.GenID,
		clock:  p.Clock,
		repo:   p.Repo,
		events: p.Events,
	}
}

func (s *Service) Create(ctx context.Context, req avatardomain.CreateAvatarRequest) (avatardomain.AvatarWithPro, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return avatardomain.AvatarWithPro{}, avatardomain.ErrInvalidName
	}

	variants := req.VariantCount
	if variants == 0 {
		variants = 1
	}
	if variants < 1 || variants > avatardomain.MaxVariantCount {
		return avatardomain.AvatarWithPro{}, avatardomain.ErrInvalidVariantCount
	}

	now := s.clock.Now()
	avatar := avatardomain.Avatar{
		ID:           s.genID.Generate(),
		Name:         name,
		IDNumber:     strings.TrimSpace(req.IDNumber),
		Description:  req.Description,
		SecretInfo:   req.SecretInfo,
		Status:       avatardomain.AvatarStatusActive,
		VariantCount: variants,
		Tags:         datatypes.NewJSONSlice(normalizeTags(req.Tags)),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	pro := avatardomain.AvatarPro{
		AvatarID:             avatar.ID,
		CategoryIDs:          datatypes.NewJSONSlice(req.CategoryIDs),
		IncludeSubcategories: req.IncludeSubcategories,
		CohortIDs:            datatypes.NewJSONSlice(req.CohortIDs),
		TotalCapacity:        req.TotalCapacity,
	}

	if err := s.repo.Insert(ctx, s.db, &avatar, &pro); err != nil {
		return avatardomain.AvatarWithPro{}, err
	}

	s.emit(ctx, eventsdomain.KindAvatarCreated, avatar.ID, nil)

	return avatardomain.AvatarWithPro{Avatar: avatar, Pro: pro}, nil
}

func (s *Service) Update(ctx context.Context, req avatardomain.UpdateAvatarRequest) (avatardomain.AvatarWithPro, error) {
	avatar, pro, err := s.load(ctx, req.ID)
	if err != nil {
		return avatardomain.AvatarWithPro{}, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return avatardomain.AvatarWithPro{}, avatardomain.ErrInvalidName
	}
	variants := req.VariantCount
	if variants < 1 || variants > avatardomain.MaxVariantCount {
		return avatardomain.AvatarWithPro{}, avatardomain.ErrInvalidVariantCount
	}

	avatar.Name = name
	avatar.IDNumber = strings.TrimSpace(req.IDNumber)
	avatar.Description = req.Description
	avatar.SecretInfo = req.SecretInfo
	avatar.VariantCount = variants
	avatar.Tags = datatypes.NewJSONSlice(normalizeTags(req.Tags))
	avatar.UpdatedAt = s.clock.Now()

	pro.CategoryIDs = datatypes.NewJSONSlice(req.CategoryIDs)
	pro.IncludeSubcategories = req.IncludeSubcategories
	pro.CohortIDs = datatypes.NewJSONSlice(req.CohortIDs)
	pro.TotalCapacity = req.TotalCapacity

	if err := s.repo.Update(ctx, s.db, avatar, pro); err != nil {
		return avatardomain.AvatarWithPro{}, err
	}

	s.emit(ctx, eventsdomain.KindAvatarChanged, avatar.ID, nil)

	return avatardomain.AvatarWithPro{Avatar: *avatar, Pro: *pro}, nil
}

func (s *Service) GetByID(ctx context.Context, req avatardomain.GetAvatarRequest) (avatardomain.AvatarWithPro, error) {
	avatar, pro, err := s.load(ctx, req.ID)
	if err != nil {
		return avatardomain.AvatarWithPro{}, err
	}
	return avatardomain.AvatarWithPro{Avatar: *avatar, Pro: *pro}, nil
}

func (s *Service) List(ctx context.Context, req avatardomain.ListAvatarRequest) (avatardomain.ListAvatarResponse, error) {
	var cursor *avatardomain.ListCursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return avatardomain.ListAvatarResponse{}, avatardomain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339, decoded.CreatedAt)
		if err != nil {
			return avatardomain.ListAvatarResponse{}, avatardomain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return avatardomain.ListAvatarResponse{}, avatardomain.ErrInvalidPageToken
		}
		cursor = &avatardomain.ListCursor{
			ID:        id,
			CreatedAt: createdAt,
		}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.List(ctx, s.db, avatardomain.ListFilter{
		Archived: req.Archived,
		Status:   req.Status,
		Cursor:   cursor,
	}, pageSize+1)
	if err != nil {
		return avatardomain.ListAvatarResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(item *avatardomain.Avatar) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        item.ID.String(),
			CreatedAt: item.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(items) > pageSize {
		items = items[:pageSize]
	}

	avatars := make([]avatardomain.Avatar, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		avatars = append(avatars, *item)
	}

	resp := avatardomain.ListAvatarResponse{Avatars: avatars}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) ToggleStatus(ctx context.Context, id string) (avatardomain.AvatarWithPro, error) {
	avatar, pro, err := s.load(ctx, id)
	if err != nil {
		return avatardomain.AvatarWithPro{}, err
	}

	if avatar.Status == avatardomain.AvatarStatusActive {
		avatar.Status = avatardomain.AvatarStatusInactive
	} else {
		avatar.Status = avatardomain.AvatarStatusActive
	}
	avatar.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, avatar, nil); err != nil {
		return avatardomain.AvatarWithPro{}, err
	}

	s.emit(ctx, eventsdomain.KindAvatarChanged, avatar.ID, map[string]any{"status": string(avatar.Status)})

	return avatardomain.AvatarWithPro{Avatar: *avatar, Pro: *pro}, nil
}

func (s *Service) Archive(ctx context.Context, id string) error {
	avatar, _, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if avatar.Archived {
		return avatardomain.ErrAlreadyArchived
	}

	now := s.clock.Now()
	avatar.Archived = true
	avatar.ArchivedAt = &now
	avatar.UpdatedAt = now

	if err := s.repo.Update(ctx, s.db, avatar, nil); err != nil {
		return err
	}

	s.emit(ctx, eventsdomain.KindAvatarChanged, avatar.ID, map[string]any{"archived": true})
	return nil
}

func (s *Service) Restore(ctx context.Context, id string) error {
	avatar, _, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if !avatar.Archived {
		return avatardomain.ErrNotArchived
	}

	avatar.Archived = false
	avatar.ArchivedAt = nil
	avatar.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, avatar, nil); err != nil {
		return err
	}

	s.emit(ctx, eventsdomain.KindAvatarChanged, avatar.ID, map[string]any{"archived": false})
	return nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	avatar, _, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, s.db, avatar.ID); err != nil {
		return err
	}
	s.log.Info("avatar deleted", zap.String("avatar_id", avatar.ID.String()))
	return nil
}

func (s *Service) emit(ctx context.Context, kind eventsdomain.Kind, avatarID snowflake.ID, metadata map[string]any) {
	if err := s.events.Emit(ctx, eventsdomain.EmitRequest{
		Kind:     kind,
		AvatarID: avatarID,
		Metadata: metadata,
	}); err != nil {
		s.log.Warn("failed to emit event", zap.String("kind", string(kind)), zap.Error(err))
	}
}

func (s *Service) load(ctx context.Context, id string) (*avatardomain.Avatar, *avatardomain.AvatarPro, error) {
	parsed, err := s.parseID(id)
	if err != nil {
		return nil, nil, err
	}
	avatar, err := s.repo.FindByID(ctx, s.db, parsed)
	if err != nil {
		return nil, nil, err
	}
	if avatar == nil {
		return nil, nil, avatardomain.ErrNotFound
	}
	pro, err := s.repo.FindPro(ctx, s.db, parsed)
	if err != nil {
		return nil, nil, err
	}
	if pro == nil {
		pro = &avatardomain.AvatarPro{AvatarID: avatar.ID}
	}
	return avatar, pro, nil
}

func (s *Service) parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, avatardomain.ErrInvalidID
	}
	return id, nil
}

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
