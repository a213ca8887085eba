package ui

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"gotally/app"
	"gotally/domain/core"
	dfilter "gotally/domain/filter"
	"gotally/domain/selection"
	apperrors "gotally/internal/errors"
	"gotally/ports"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 50 << 20

type configRequest struct {
	SumFields     []string `json:"sum_fields"`
	CountFields   []string `json:"count_fields"`
	AverageFields []string `json:"average_fields"`
	Save          bool     `json:"save"`
}

type dashboardRequest struct {
	Filters []dfilter.Spec `json:"filters"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "session": s.session.ID.String()})
}

func (s *Server) handleDatasetInfo(c *gin.Context) {
	info, err := s.services.Datasets.Current(s.session)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}

func (s *Server) handleDatasetSheets(c *gin.Context) {
	upload, ok := s.readUpload(c)
	if !ok {
		return
	}
	sheets, err := s.services.Datasets.ListSheets(c.Request.Context(), upload)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"sheets": sheets})
}

func (s *Server) handleDatasetUpload(c *gin.Context) {
	upload, ok := s.readUpload(c)
	if !ok {
		return
	}

	opts := ports.LoadOptions{SheetName: c.PostForm("sheet"), HeaderRow: 1}
	if raw := c.PostForm("header_row"); raw != "" {
		row, err := strconv.Atoi(raw)
		if err != nil || row < 1 {
			s.respondError(c, apperrors.InvalidInput("header_row must be a positive integer", err))
			return
		}
		opts.HeaderRow = row
	}

	result, err := s.services.Datasets.Load(c.Request.Context(), s.session, upload, opts)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleConfigGet(c *gin.Context) {
	view, err := s.services.Configuration.View(c.Request.Context(), s.session)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleConfigPut(c *gin.Context) {
	var req configRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.InvalidInput("invalid configuration body", err))
		return
	}

	set := selection.Set{
		Version:       selection.CurrentVersion,
		SumFields:     orEmpty(req.SumFields),
		CountFields:   orEmpty(req.CountFields),
		AverageFields: orEmpty(req.AverageFields),
	}
	view, err := s.services.Configuration.Configure(c.Request.Context(), s.session, set, req.Save)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleConfigDelete(c *gin.Context) {
	view, err := s.services.Configuration.Reset(c.Request.Context(), s.session)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleDashboardChoices(c *gin.Context) {
	choices, err := s.services.Dashboard.Choices(c.Request.Context(), s.session, c.Query("first"), c.Query("field"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, choices)
}

func (s *Server) handleDashboard(c *gin.Context) {
	view, ok := s.renderDashboard(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleDashboardReport(c *gin.Context) {
	view, ok := s.renderDashboard(c)
	if !ok {
		return
	}

	r := view.Report("Dashboard")
	switch c.DefaultQuery("format", "html") {
	case "md", "markdown":
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(r.Markdown()))
	default:
		c.Data(http.StatusOK, "text/html; charset=utf-8", r.HTML())
	}
}

func (s *Server) renderDashboard(c *gin.Context) (*app.DashboardView, bool) {
	var req dashboardRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.respondError(c, apperrors.InvalidInput("invalid dashboard body", err))
			return nil, false
		}
	}
	view, err := s.services.Dashboard.Render(c.Request.Context(), s.session, req.Filters)
	if err != nil {
		s.respondError(c, err)
		return nil, false
	}
	return view, true
}

func (s *Server) handleAnalysisOptions(c *gin.Context) {
	options, err := s.services.Analysis.Options(s.session, c.Query("categorical"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, options)
}

func (s *Server) handleAnalysis(c *gin.Context) {
	var req app.AnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, apperrors.InvalidInput("invalid analysis body", err))
		return
	}
	view, err := s.services.Analysis.Analyze(c.Request.Context(), s.session, req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

func (s *Server) handleQuery(c *gin.Context) {
	var req app.QueryRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.respondError(c, apperrors.InvalidInput("invalid query body", err))
			return
		}
	}
	result, err := s.services.Query.Query(c.Request.Context(), s.session, req)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleDescribe(c *gin.Context) {
	summaries, err := s.services.Query.Describe(c.Request.Context(), s.session)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"columns": summaries})
}

// readUpload reads the multipart "file" field
func (s *Server) readUpload(c *gin.Context) (ports.Upload, bool) {
	fh, err := c.FormFile("file")
	if err != nil {
		s.respondError(c, apperrors.InvalidInput("missing file field", err))
		return ports.Upload{}, false
	}
	f, err := fh.Open()
	if err != nil {
		s.respondError(c, apperrors.InvalidInput("unreadable upload", err))
		return ports.Upload{}, false
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		s.respondError(c, apperrors.InvalidInput("unreadable upload", err))
		return ports.Upload{}, false
	}
	if len(data) > maxUploadBytes {
		s.respondError(c, apperrors.InvalidInput("file is too large", nil))
		return ports.Upload{}, false
	}
	return ports.Upload{Filename: fh.Filename, Data: data}, true
}

// respondError maps domain and application errors to HTTP statuses
func (s *Server) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := apperrors.GetCode(err)
	switch {
	case code == apperrors.CodeInvalidInput, code == apperrors.CodeValidationError:
		status = http.StatusBadRequest
	case errors.Is(err, core.ErrNoDataset), errors.Is(err, core.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		s.logger.Error("[HTTP] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
