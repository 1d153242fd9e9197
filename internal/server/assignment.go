package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RunAssignment triggers a single assignment pass synchronously. Useful
// when the background job is disabled or an admin wants immediate results.
func (s *Server) RunAssignment(c *gin.Context) {
	if err := s.scheduler.RunOnce(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReinitializeAssignment drops the persisted scan cursor so the next run
// reconsiders every profile row from the start.
func (s *Server) ReinitializeAssignment(c *gin.Context) {
	if err := s.scheduler.Reinitialize(c.Request.Context()); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
