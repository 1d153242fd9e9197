package server

import (
	"net/http"

	activitydomain "github.com/bdecent/avatarhub/internal/activity/domain"
	avatardomain "github.com/bdecent/avatarhub/internal/avatar/domain"
	collectiondomain "github.com/bdecent/avatarhub/internal/collection/domain"
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
)

func (s *Server) CreateActivity(c *gin.Context) {
	var req activitydomain.CreateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.activitySvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (s *Server) UpdateActivity(c *gin.Context) {
	var req activitydomain.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = c.Param("id")

	result, err := s.activitySvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) GetActivity(c *gin.Context) {
	result, err := s.activitySvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type listActivitiesQuery struct {
	CourseID int64 `form:"course_id"`
}

func (s *Server) ListActivities(c *gin.Context) {
	var query listActivitiesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	activities, err := s.activitySvc.List(c.Request.Context(), activitydomain.ListActivityRequest{
		CourseID: query.CourseID,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"activities": activities})
}

// activityAvatarItem pairs a pool avatar with the requesting user's
// progress and the availability verdict for this activity.
type activityAvatarItem struct {
	Avatar    avatardomain.Avatar       `json:"avatar"`
	Progress  collectiondomain.Progress `json:"progress"`
	Available bool                      `json:"available"`
	Message   string                    `json:"message,omitempty"`
}

func (s *Server) ActivityAvatars(c *gin.Context) {
	activityID, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, activitydomain.ErrInvalidID)
		return
	}

	ctx := c.Request.Context()
	userID, _ := s.currentUser(c)

	avatars, err := s.activitySvc.AvailableAvatars(ctx, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	items := make([]activityAvatarItem, 0, len(avatars))
	for _, av := range avatars {
		progress, err := s.collectionSvc.Progress(ctx, collectiondomain.ProgressRequest{
			AvatarID: av.ID.String(),
			UserID:   userID,
		})
		if err != nil {
			AbortWithError(c, err)
			return
		}

		decision, err := s.policy.Evaluate(ctx, av.ID, userID, activityID)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		item := activityAvatarItem{
			Avatar:    av,
			Progress:  progress,
			Available: decision.Available,
		}
		if !decision.Available {
			item.Message = decision.Message()
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{"avatars": items})
}
