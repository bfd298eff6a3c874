// Package server exposes the batch pipeline over HTTP: spreadsheet upload,
// progress polling and one-shot result download.
package server

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/UnknownOlympus/pinpoint/internal/service"
	"github.com/UnknownOlympus/pinpoint/internal/session"
	"github.com/UnknownOlympus/pinpoint/internal/spreadsheet"
	"github.com/gin-gonic/gin"
)

//go:embed static/index.html
var indexPage []byte

const workbookContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Server wires the HTTP handlers to the batch service and the session
// registry. appCtx outlives individual requests; background batches are tied
// to it so an application shutdown fails them visibly instead of leaving
// sessions stuck in Processing.
type Server struct {
	log       *slog.Logger
	batches   *service.BatchService
	registry  *session.Registry
	appCtx    context.Context
	maxUpload int64
}

// New creates the HTTP server façade.
func New(
	appCtx context.Context,
	log *slog.Logger,
	batches *service.BatchService,
	registry *session.Registry,
	maxUpload int64,
) *Server {
	return &Server{
		log:       log,
		batches:   batches,
		registry:  registry,
		appCtx:    appCtx,
		maxUpload: maxUpload,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/", s.index)
	router.GET("/healthz", s.healthz)
	router.POST("/upload", s.upload)
	router.GET("/progress/:session_id", s.progress)
	router.GET("/download/:session_id", s.download)

	return router
}

func (s *Server) index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

func (s *Server) healthz(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// upload accepts a multipart spreadsheet and an extent selector ("mode"
// form field, "sample" or "full"), validates the submission and starts the
// batch in the background. Validation failures are synchronous; the batch
// itself can no longer fail the submission once accepted.
func (s *Server) upload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}
	defer file.Close()

	extent, err := service.ParseExtent(c.PostForm("mode"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	table, err := spreadsheet.Read(file, header.Filename)
	if err != nil {
		s.log.WarnContext(c.Request.Context(), "Rejected upload", "filename", header.Filename, "error", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// The request context dies with the response; the batch must not.
	sessionID, total, err := s.batches.Submit(s.appCtx, table, extent)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"session_id": sessionID,
		"total_rows": total,
		"mode":       extent,
	})
}

// progress returns the current session snapshot without ever blocking on
// the background batch.
func (s *Server) progress(c *gin.Context) {
	snapshot, err := s.registry.Get(c.Param("session_id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

// download streams the enriched workbook and discards the session. Retrieval
// is one-shot: a repeated download for the same session reports not-found.
func (s *Server) download(c *gin.Context) {
	sessionID := c.Param("session_id")

	table, err := s.registry.Consume(sessionID)
	switch {
	case errors.Is(err, session.ErrResultNotReady):
		c.JSON(http.StatusConflict, gin.H{"error": "processing not finished"})
		return
	case err != nil:
		c.JSON(http.StatusNotFound, gin.H{"error": "results not found"})
		return
	}

	buf, filename, contentType, err := materialize(table, c.Query("format"))
	if err != nil {
		s.log.ErrorContext(c.Request.Context(), "Failed to materialize results",
			"session_id", sessionID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to build result file"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// materialize serializes the enriched table, defaulting to an Excel
// workbook; format=csv selects CSV instead.
func materialize(table *models.Table, format string) (*bytes.Buffer, string, string, error) {
	timestamp := time.Now().Format("20060102_150405")
	buf := &bytes.Buffer{}

	if format == "csv" {
		if err := spreadsheet.WriteCSV(buf, table); err != nil {
			return nil, "", "", err
		}
		return buf, fmt.Sprintf("cluster_addresses_%s.csv", timestamp), "text/csv", nil
	}

	if err := spreadsheet.WriteWorkbook(buf, table); err != nil {
		return nil, "", "", err
	}
	return buf, fmt.Sprintf("cluster_addresses_%s.xlsx", timestamp), workbookContentType, nil
}
