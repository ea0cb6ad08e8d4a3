package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/seoscan/internal/compare"
	"github.com/nao1215/seoscan/internal/model"
	"github.com/nao1215/seoscan/internal/pipeline"
	"github.com/nao1215/seoscan/internal/report"
)

type section int

const (
	sectionArchitecture section = iota
	sectionTechnical
	sectionContent
	sectionMedia
)

func (s *Server) handleHealth(c *gin.Context) {
	status := http.StatusOK
	body := gin.H{"status": "ok"}
	if p, ok := s.store.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(c.Request.Context()); err != nil {
			s.logger.Error("health check failed", "error", err)
			status = http.StatusServiceUnavailable
			body["status"] = "unavailable"
		}
	}
	body["workers"] = s.pool.Workers()
	body["waiting"] = s.pool.Waiting()
	body["cached_reports"] = s.cache.len()
	c.JSON(status, body)
}

func (s *Server) handleProjects(c *gin.Context) {
	projects, err := s.store.ListProjects(c.Request.Context())
	if err != nil {
		s.fail(c, model.Internal("server.projects", err))
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	c.JSON(http.StatusOK, gin.H{"projects": projects})
}

func (s *Server) handleScans(c *gin.Context) {
	projectID := c.Param("project")
	scans, err := s.store.ListScans(c.Request.Context(), projectID)
	if err != nil {
		s.fail(c, model.Internal("server.scans", err))
		return
	}
	if len(scans) == 0 {
		s.fail(c, model.NotFound("server.scans", "project %s", projectID))
		return
	}
	c.JSON(http.StatusOK, gin.H{"project_id": projectID, "scans": scans})
}

func (s *Server) handleCompare(c *gin.Context) {
	cmp, err := s.comparer.CompareParams(c.Request.Context(),
		c.Param("project"), c.Query("scan1"), c.Query("scan2"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cmp)
}

func (s *Server) handleReport(c *gin.Context) {
	r, ok := s.scanReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, r)
}

func (s *Server) handleSection(sec section) gin.HandlerFunc {
	return func(c *gin.Context) {
		r, ok := s.scanReport(c)
		if !ok {
			return
		}
		switch sec {
		case sectionArchitecture:
			c.JSON(http.StatusOK, r.Architecture)
		case sectionTechnical:
			c.JSON(http.StatusOK, r.Technical)
		case sectionContent:
			c.JSON(http.StatusOK, r.Content)
		case sectionMedia:
			c.JSON(http.StatusOK, r.Media)
		}
	}
}

func (s *Server) handleExport(c *gin.Context) {
	dataset, err := report.ParseDataset(c.Param("dataset"))
	if err != nil {
		s.fail(c, err)
		return
	}
	projectID := c.Param("project")
	scanID, err := compare.ParseScanID("scan", c.Param("scan"))
	if err != nil {
		s.fail(c, err)
		return
	}

	r, err := s.report(c.Request.Context(), projectID, scanID)
	if err != nil {
		s.fail(c, err)
		return
	}
	crawl, err := s.store.LoadCrawl(c.Request.Context(), projectID, scanID)
	if err != nil {
		s.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if _, err := report.ExportCSV(&buf, dataset, crawl, r); err != nil {
		s.fail(c, model.Internal("server.export", err))
		return
	}
	filename := fmt.Sprintf("%s-%d-%s.csv", projectID, scanID, dataset)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// scanReport parses the scan parameter and returns its report. It writes
// the error response itself and reports false on failure.
func (s *Server) scanReport(c *gin.Context) (*model.AuditReport, bool) {
	scanID, err := compare.ParseScanID("scan", c.Param("scan"))
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	r, err := s.report(c.Request.Context(), c.Param("project"), scanID)
	if err != nil {
		s.fail(c, err)
		return nil, false
	}
	return r, true
}

// fail writes the error response for err.
func (s *Server) fail(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed",
			"request_id", c.GetString(requestIDKey),
			"path", c.Request.URL.Path,
			"error", err,
		)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

// statusFor maps an error to its status code and client message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, model.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, model.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, pipeline.ErrQueueFull):
		return http.StatusServiceUnavailable, "analysis queue is full, please retry later"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "analysis timed out"
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable, "request cancelled"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
