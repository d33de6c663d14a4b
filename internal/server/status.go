package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetStatus serves the diagnostic snapshot. The liveness query parameter
// short-circuits before any sub-check runs so probes stay cheap. This route
// always answers 200; sub-failures are inline tags in the payload.
func (s *Server) GetStatus(c *gin.Context) {
	if _, ok := c.GetQuery("liveness"); ok {
		c.JSON(http.StatusOK, gin.H{"alive": true})
		return
	}

	c.JSON(http.StatusOK, s.reporter.Status(c.Request.Context()))
}
