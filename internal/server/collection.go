package server

import (
	"net/http"

	collectiondomain "github.com/bdecent/avatarhub/internal/collection/domain"
	"github.com/gin-gonic/gin"
)

type collectBody struct {
	ActivityID string `json:"activity_id"`
	// UserID lets an admin collect on behalf of another user; the event
	// is then recorded as an assignment rather than a pick.
	UserID int64 `json:"user_id"`
}

func (s *Server) CollectAvatar(c *gin.Context) {
	var body collectBody
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		AbortWithError(c, invalidRequestError())
		return
	}

	actor, _ := s.currentUser(c)
	userID := body.UserID
	if userID == 0 {
		userID = actor
	}

	result, err := s.collectionSvc.Collect(c.Request.Context(), collectiondomain.CollectRequest{
		AvatarID:   c.Param("id"),
		ActivityID: body.ActivityID,
		UserID:     userID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.metrics.RecordCommand("collect", result.Success)
	c.JSON(http.StatusOK, result)
}

func (s *Server) UpgradeAvatar(c *gin.Context) {
	var body collectBody
	if err := c.ShouldBindJSON(&body); err != nil && err.Error() != "EOF" {
		AbortWithError(c, invalidRequestError())
		return
	}

	actor, _ := s.currentUser(c)
	userID := body.UserID
	if userID == 0 {
		userID = actor
	}

	result, err := s.collectionSvc.Upgrade(c.Request.Context(), collectiondomain.UpgradeRequest{
		AvatarID:   c.Param("id"),
		ActivityID: body.ActivityID,
		UserID:     userID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	s.metrics.RecordCommand("upgrade", result.Success)
	c.JSON(http.StatusOK, result)
}

type setPrimaryBody struct {
	AvatarID string `json:"avatar_id"`
}

func (s *Server) SetPrimaryCollection(c *gin.Context) {
	var body setPrimaryBody
	if err := c.ShouldBindJSON(&body); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	userID, _ := s.currentUser(c)
	err := s.collectionSvc.SetPrimary(c.Request.Context(), collectiondomain.SetPrimaryRequest{
		AvatarID: body.AvatarID,
		UserID:   userID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) GetAvatarProgress(c *gin.Context) {
	userID, _ := s.currentUser(c)
	progress, err := s.collectionSvc.Progress(c.Request.Context(), collectiondomain.ProgressRequest{
		AvatarID: c.Param("id"),
		UserID:   userID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

func (s *Server) ListMyCollections(c *gin.Context) {
	userID, _ := s.currentUser(c)
	collections, err := s.collectionSvc.ListByUser(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"collections": collections})
}
