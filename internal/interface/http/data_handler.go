package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/anbeck/user-directory/internal/application"
	"github.com/anbeck/user-directory/internal/csv"
	"github.com/anbeck/user-directory/internal/interface/middleware"
	"github.com/anbeck/user-directory/pkg/response"
)

// MaxUploadBytes caps a single CSV upload at 5 MB.
const MaxUploadBytes = 5 << 20

// DataHandler exposes the bulk import/export surface.
type DataHandler struct {
	Svc    *application.DirectoryService
	Logger *logrus.Logger
}

func NewDataHandler(svc *application.DirectoryService, logger *logrus.Logger) *DataHandler {
	return &DataHandler{Svc: svc, Logger: logger}
}

// Export streams the filtered directory as a CSV attachment. Column set
// and login-range filtering follow the actor's capability.
func (h *DataHandler) Export(c *gin.Context) {
	admin := middleware.IsAdmin(c)
	f := filterFromQuery(c, admin)

	document, err := h.Svc.Export(c.Request.Context(), f, admin, c.GetString(middleware.CtxAccountIDKey))
	if err != nil {
		h.Logger.WithError(err).Error("export failed")
		response.Error[any](c, http.StatusInternalServerError, "Failed to export users", nil)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename='users-%d.csv'", time.Now().UnixMilli()))
	c.Data(http.StatusOK, "text/csv", []byte(document))
}

// Import accepts a multipart CSV upload and runs the pipeline. The
// route is admin-only and rate limited; this handler still enforces the
// file-shape limits (size, extension, MIME) before touching the body.
func (h *DataHandler) Import(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "No file uploaded", nil)
		return
	}

	if fileHeader.Size > MaxUploadBytes {
		response.Error[any](c, http.StatusBadRequest, "Upload limits exceeded: max 5MB, accepted type: csv, 1 file per upload", nil)
		return
	}
	if !isCSVUpload(fileHeader.Filename, fileHeader.Header.Get("Content-Type")) {
		response.Error[any](c, http.StatusBadRequest, "Only CSV files are allowed", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "Invalid file upload", nil)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, MaxUploadBytes+1))
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "Invalid file upload", nil)
		return
	}
	if len(data) > MaxUploadBytes {
		response.Error[any](c, http.StatusBadRequest, "Upload limits exceeded: max 5MB, accepted type: csv, 1 file per upload", nil)
		return
	}

	count, err := h.Svc.Import(c.Request.Context(), data, c.GetString(middleware.CtxAccountIDKey))
	if err != nil {
		h.respondImportError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"count": count}, "Users imported successfully", nil)
}

func (h *DataHandler) respondImportError(c *gin.Context, err error) {
	var rejected *application.BatchRejectedError
	var parseErr *csv.ParseError
	var conflict *application.ImportConflictError

	switch {
	case errors.As(err, &rejected):
		response.Error[any](c, http.StatusBadRequest, "File import failed", rejected.RowErrors)
	case errors.As(err, &parseErr):
		response.Error[any](c, http.StatusBadRequest, "File import failed", parseErr.Details)
	case errors.Is(err, csv.ErrEmptyFile), errors.Is(err, csv.ErrScanRejected):
		response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
	case errors.As(err, &conflict):
		response.Error[any](c, http.StatusConflict, conflict.Error(), gin.H{"emails": conflict.Emails})
	default:
		h.Logger.WithError(err).Error("import failed")
		response.Error[any](c, http.StatusInternalServerError, "Failed to import users", nil)
	}
}

func isCSVUpload(filename, contentType string) bool {
	isCSVMime := contentType == "text/csv" || contentType == "application/vnd.ms-excel"
	isCSVExt := strings.HasSuffix(strings.ToLower(filename), ".csv")
	return isCSVMime && isCSVExt
}
