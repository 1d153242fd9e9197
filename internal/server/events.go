package server

import (
	"net/http"

	eventsdomain "github.com/bdecent/avatarhub/internal/events/domain"
	"github.com/bdecent/avatarhub/pkg/db/pagination"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

type listEventsQuery struct {
	pagination.Pagination
	Kind     string `form:"kind"`
	UserID   int64  `form:"user_id"`
	AvatarID string `form:"avatar_id"`
}

func (s *Server) ListEvents(c *gin.Context) {
	var query listEventsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	var avatarID snowflake.ID
	if query.AvatarID != "" {
		parsed, err := snowflake.ParseString(query.AvatarID)
		if err != nil {
			AbortWithError(c, invalidRequestError())
			return
		}
		avatarID = parsed
	}

	resp, err := s.eventsSvc.List(c.Request.Context(), eventsdomain.ListEventRequest{
		Pagination: query.Pagination,
		Kind:       eventsdomain.Kind(query.Kind),
		UserID:     query.UserID,
		AvatarID:   avatarID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
