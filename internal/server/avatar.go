package server

import (
	"net/http"

	avatardomain "github.com/bdecent/avatarhub/internal/avatar/domain"
	eventsdomain "github.com/bdecent/avatarhub/internal/events/domain"
	"github.com/bdecent/avatarhub/pkg/db/pagination"
	"github.com/gin-gonic/gin"
)

type listAvatarsQuery struct {
	pagination.Pagination
	Status   string `form:"status"`
	Archived *bool  `form:"archived"`
}

func (s *Server) ListAvatars(c *gin.Context) {
	var query listAvatarsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.avatarSvc.List(c.Request.Context(), avatardomain.ListAvatarRequest{
		Pagination: query.Pagination,
		Status:     avatardomain.AvatarStatus(query.Status),
		Archived:   query.Archived,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) GetAvatar(c *gin.Context) {
	result, err := s.avatarSvc.GetByID(c.Request.Context(), avatardomain.GetAvatarRequest{ID: c.Param("id")})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	_ = s.eventsSvc.Emit(c.Request.Context(), eventsdomain.EmitRequest{
		Kind:     eventsdomain.KindAvatarViewed,
		AvatarID: result.ID,
	})

	c.JSON(http.StatusOK, result)
}

func (s *Server) CreateAvatar(c *gin.Context) {
	var req avatardomain.CreateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.avatarSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) UpdateAvatar(c *gin.Context) {
	var req avatardomain.UpdateAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	result, err := s.avatarSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) ToggleAvatarStatus(c *gin.Context) {
	result, err := s.avatarSvc.ToggleStatus(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) ArchiveAvatar(c *gin.Context) {
	if err := s.avatarSvc.Archive(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) RestoreAvatar(c *gin.Context) {
	if err := s.avatarSvc.Restore(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) DeleteAvatar(c *gin.Context) {
	if err := s.avatarSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) GetAvatarUsage(c *gin.Context) {
	snapshot, err := s.usageSvc.Snapshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
