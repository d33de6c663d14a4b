package server

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	manifestdomain "github.com/costmgmt/koku/internal/manifest/domain"
	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type addManifestRequest struct {
	AssemblyID         string `json:"assembly_id"`
	ProviderID         int64  `json:"provider_id"`
	BillingPeriodStart string `json:"billing_period_start"`
	NumTotalFiles      int    `json:"num_total_files"`
	NumProcessedFiles  *int   `json:"num_processed_files"`
}

func (s *Server) GetManifest(c *gin.Context) {
	assemblyID := c.Query("assembly_id")
	providerID, err := strconv.ParseInt(c.Query("provider_id"), 10, 64)
	if assemblyID == "" || err != nil {
		AbortWithError(c, fmt.Errorf("%w: assembly_id and provider_id are required", ErrInvalidRequest))
		return
	}

	manifest, err := s.manifestSvc.Get(c.Request.Context(), assemblyID, providerID)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, manifest)
}

func (s *Server) GetManifestByID(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		AbortWithError(c, fmt.Errorf("%w: invalid manifest id", ErrInvalidRequest))
		return
	}

	manifest, err := s.manifestSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, manifest)
}

func (s *Server) AddManifest(c *gin.Context) {
	var req addManifestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, fmt.Errorf("%w: %s", ErrInvalidRequest, err))
		return
	}

	add := manifestdomain.AddRequest{
		AssemblyID:        req.AssemblyID,
		ProviderID:        req.ProviderID,
		NumTotalFiles:     req.NumTotalFiles,
		NumProcessedFiles: req.NumProcessedFiles,
	}
	if req.BillingPeriodStart != "" {
		start, err := time.Parse(dateLayout, req.BillingPeriodStart)
		if err != nil {
			AbortWithError(c, fmt.Errorf("%w: billing_period_start must be YYYY-MM-DD", ErrInvalidRequest))
			return
		}
		add.BillingPeriodStart = start
	}

	manifest, err := s.manifestSvc.Add(c.Request.Context(), add)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, manifest)
}

func (s *Server) DeleteManifest(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		AbortWithError(c, fmt.Errorf("%w: invalid manifest id", ErrInvalidRequest))
		return
	}

	ctx := c.Request.Context()
	manifest, err := s.manifestSvc.GetByID(ctx, id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if err := s.manifestSvc.Delete(ctx, manifest); err != nil {
		AbortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
