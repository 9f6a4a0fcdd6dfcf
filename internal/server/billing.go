package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	billingdomain "github.com/smallbiznis/cantina/internal/billing/domain"
	"github.com/smallbiznis/cantina/internal/export"
)

type statementQuery struct {
	Year  int `form:"year"`
	Month int `form:"month"`
}

func (s *Server) GetStatement(c *gin.Context) {
	var query statementQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.billingSvc.GetStatement(c.Request.Context(), billingdomain.StatementRequest{
		CompanyID: strings.TrimSpace(c.Param("id")),
		Year:      query.Year,
		Month:     time.Month(query.Month),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ExportStatement(c *gin.Context) {
	var query struct {
		statementQuery
		Format string `form:"format,default=csv"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	statement, err := s.billingSvc.GetStatement(c.Request.Context(), billingdomain.StatementRequest{
		CompanyID: strings.TrimSpace(c.Param("id")),
		Year:      query.Year,
		Month:     time.Month(query.Month),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	file, err := export.StatementFile(statement, export.Format(strings.ToLower(query.Format)))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.Name+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}
