package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bdecent/avatarhub/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type EmitRequest struct {
	Kind       Kind
	UserID     int64
	AvatarID   snowflake.ID
	ActivityID snowflake.ID
	Variant    int
	Metadata   map[string]any
}

type ListEventRequest struct {
	pagination.Pagination
	Kind     Kind
	UserID   int64
	AvatarID snowflake.ID
}

type ListEventResponse struct {
	pagination.PageInfo
	Events []Event `json:"events"`
}

type Service interface {
	Emit(ctx context.Context, req EmitRequest) error
	List(ctx context.Context, req ListEventRequest) (ListEventResponse, error)
}

type ListFilter struct {
	Kind     Kind
	UserID   int64
	AvatarID snowflake.ID
	Cursor   *EventCursor
	Limit    int
}

type EventCursor struct {
	ID        snowflake.ID
	CreatedAt time.Time
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, event *Event) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Event, error)
}

var (
	ErrInvalidKind      = errors.New("invalid_event_kind")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
