package server

import (
	"fmt"
	"net/http"
	"time"

	reportdomain "github.com/costmgmt/koku/internal/reportdata/domain"
	"github.com/costmgmt/koku/pkg/tenant"
	"github.com/gin-gonic/gin"
)

type purgeRequest struct {
	Schema      string `json:"schema"`
	ExpiredDate string `json:"expired_date"`
	ProviderID  *int64 `json:"provider_id"`
	Simulate    bool   `json:"simulate"`
}

type purgeResponse struct {
	Removed  []reportdomain.RemovalRecord `json:"removed"`
	Simulate bool                         `json:"simulate"`
}

// PurgeReportData triggers a purge for one tenant schema. Selector
// validation (exactly one of expired_date / provider_id) happens in the
// cleaner so ad-hoc callers and the retention worker share one rule.
func (s *Server) PurgeReportData(c *gin.Context) {
	var req purgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %s", ErrInvalidRequest, err))
		return
	}

	schema, err := tenant.Parse(req.Schema)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	opts := reportdomain.PurgeOptions{
		ProviderID: req.ProviderID,
		Simulate:   req.Simulate,
	}
	if req.ExpiredDate != "" {
		expired, err := time.Parse(dateLayout, req.ExpiredDate)
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: expired_date must be YYYY-MM-DD", ErrInvalidRequest))
			return
		}
		opts.ExpiredDate = &expired
	}

	records, err := s.cleaner.PurgeExpiredReportData(c.Request.Context(), schema, opts)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if records == nil {
		records = []reportdomain.RemovalRecord{}
	}
	c.JSON(http.StatusOK, purgeResponse{Removed: records, Simulate: req.Simulate})
}
