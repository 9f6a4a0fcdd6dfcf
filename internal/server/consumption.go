package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	consumptiondomain "github.com/smallbiznis/cantina/internal/consumption/domain"
	"github.com/smallbiznis/cantina/pkg/db/pagination"
)

func (s *Server) RegisterConsumption(c *gin.Context) {
	var req consumptiondomain.RegisterConsumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if s.ingestLimiter.Enabled() && !s.ingestLimiter.AllowCompany(req.CompanyID) {
		AbortWithError(c, ErrRateLimited)
		return
	}

	resp, err := s.consumptionSvc.Register(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) VoidConsumption(c *gin.Context) {
	resp, err := s.consumptionSvc.Void(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UnvoidConsumption(c *gin.Context) {
	resp, err := s.consumptionSvc.Unvoid(c.Request.Context(), strings.TrimSpace(c.Param("id")))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListConsumptions(c *gin.Context) {
	var query struct {
		pagination.Pagination
		CompanyID  string `form:"company_id"`
		EmployeeID string `form:"employee_id"`
		From       string `form:"from"`
		To         string `form:"to"`
		Voided     *bool  `form:"voided"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalTime(query.From)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}

	to, err := parseOptionalTime(query.To)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.consumptionSvc.List(c.Request.Context(), consumptiondomain.ListConsumptionRequest{
		CompanyID:  strings.TrimSpace(query.CompanyID),
		EmployeeID: strings.TrimSpace(query.EmployeeID),
		From:       from,
		To:         to,
		Voided:     query.Voided,
		PageToken:  query.PageToken,
		PageSize:   query.PageSize,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func parseOptionalTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func isConsumptionValidationError(err error) bool {
	switch err {
	case consumptiondomain.ErrInvalidCompany,
		consumptiondomain.ErrInvalidEmployee,
		consumptiondomain.ErrInvalidSource,
		consumptiondomain.ErrInvalidOccurredAt,
		consumptiondomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
