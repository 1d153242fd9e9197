package service

import (
	"context"
	"strings"
	"time"

	"github.com/bdecent/avatarhub/internal/actorcontext"
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

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  eventsdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  eventsdomain.Repository
}

func New(p Params) eventsdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("events.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Emit(ctx context.Context, req eventsdomain.EmitRequest) error {
	if req.Kind == "" {
		return eventsdomain.ErrInvalidKind
	}

	actorType, actorID, ok := actorcontext.ActorFromContext(ctx)
	if !ok {
		actorType = actorcontext.ActorTypeSystem
	}

	payload := map[string]any{}
	for key, value := range req.Metadata {
		if key == "" {
			continue
		}
		payload[key] = value
	}

	event := eventsdomain.Event{
		ID:         s.genID.Generate(),
		Kind:       req.Kind,
		ActorType:  actorType,
		ActorID:    actorID,
		UserID:     req.UserID,
		AvatarID:   req.AvatarID,
		ActivityID: req.ActivityID,
		Variant:    req.Variant,
		Metadata:   datatypes.JSONMap(payload),
		CreatedAt:  s.clock.Now(),
	}

	if err := s.repo.Insert(ctx, s.db, &event); err != nil {
		s.log.Warn("failed to write event", zap.String("kind", string(req.Kind)), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req eventsdomain.ListEventRequest) (eventsdomain.ListEventResponse, error) {
	var cursor *eventsdomain.EventCursor
	if strings.TrimSpace(req.PageToken) != "" {
		decoded, err := pagination.DecodeCursor(req.PageToken)
		if err != nil {
			return eventsdomain.ListEventResponse{}, eventsdomain.ErrInvalidPageToken
		}
		createdAt, err := time.Parse(time.RFC3339, decoded.CreatedAt)
		if err != nil {
			return eventsdomain.ListEventResponse{}, eventsdomain.ErrInvalidPageToken
		}
		id, err := snowflake.ParseString(strings.TrimSpace(decoded.ID))
		if err != nil || id == 0 {
			return eventsdomain.ListEventResponse{}, eventsdomain.ErrInvalidPageToken
		}
		cursor = &eventsdomain.EventCursor{
			ID:        id,
			CreatedAt: createdAt,
		}
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}
	if pageSize > 250 {
		pageSize = 250
	}

	items, err := s.repo.List(ctx, s.db, eventsdomain.ListFilter{
		Kind:     req.Kind,
		UserID:   req.UserID,
		AvatarID: req.AvatarID,
		Cursor:   cursor,
		Limit:    pageSize,
	})
	if err != nil {
		return eventsdomain.ListEventResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, int32(pageSize), func(item *eventsdomain.Event) string {
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

	events := make([]eventsdomain.Event, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		events = append(events, *item)
	}

	resp := eventsdomain.ListEventResponse{Events: events}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}
