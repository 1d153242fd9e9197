package domain

import (
	"context"
	"errors"

	"github.com/bdecent/avatarhub/pkg/db/pagination"
)

type CreateAvatarRequest struct {
	Name                 string   `json:"name"`
	IDNumber             string   `json:"idnumber"`
	Description          string   `json:"description"`
	SecretInfo           string   `json:"secret_info"`
	VariantCount         int      `json:"variant_count"`
	Tags                 []string `json:"tags"`
	CategoryIDs          []int64  `json:"category_ids"`
	IncludeSubcategories bool     `json:"include_subcategories"`
	CohortIDs            []int64  `json:"cohort_ids"`
	TotalCapacity        int      `json:"total_capacity"`
}

type UpdateAvatarRequest struct {
	ID string `json:"-"`
	CreateAvatarRequest
}

type GetAvatarRequest struct {
	ID string
}

type ListAvatarRequest struct {
	pagination.Pagination
	Archived *bool
	Status   AvatarStatus
}

type ListAvatarResponse struct {
	pagination.PageInfo
	Avatars []Avatar `json:"avatars"`
}

type AvatarWithPro struct {
	Avatar
	Pro AvatarPro `json:"pro"`
}

type Service interface {
	Create(ctx context.Context, req CreateAvatarRequest) (AvatarWithPro, error)
	Update(ctx context.Context, req UpdateAvatarRequest) (AvatarWithPro, error)
	GetByID(ctx context.Context, req GetAvatarRequest) (AvatarWithPro, error)
	List(ctx context.Context, req ListAvatarRequest) (ListAvatarResponse, error)
	ToggleStatus(ctx context.Context, id string) (AvatarWithPro, error)
	Archive(ctx context.Context, id string) error
	Restore(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

var (
	ErrNotFound            = errors.New("avatar_not_found")
	ErrInvalidID           = errors.New("invalid_avatar_id")
	ErrInvalidName         = errors.New("invalid_avatar_name")
	ErrInvalidVariantCount = errors.New("invalid_variant_count")
	ErrInvalidPageToken    = errors.New("invalid_page_token")
	ErrAlreadyArchived     = errors.New("avatar_already_archived")
	ErrNotArchived         = errors.New("avatar_not_archived")
)

// MaxVariantCount bounds how many artwork stages a single avatar can have.
const MaxVariantCount = 10
