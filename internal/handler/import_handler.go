package handler

import (
	"context"
	"io"
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/patrickmb/timetable-import-api/internal/imports"
	"github.com/patrickmb/timetable-import-api/internal/models"
	"github.com/patrickmb/timetable-import-api/internal/service"
	"github.com/patrickmb/timetable-import-api/internal/store"
	appErrors "github.com/patrickmb/timetable-import-api/pkg/errors"
	"github.com/patrickmb/timetable-import-api/pkg/response"
)

type importService interface {
	Import(ctx context.Context, format imports.Format, data []byte) (*service.ImportReport, error)
	Current(ctx context.Context) (*store.StoredImport, error)
	Clear(ctx context.Context) error
	Runs(ctx context.Context, limit int) ([]models.ImportRun, error)
	ExportCSV(ctx context.Context) ([]byte, error)
}

type solverService interface {
	Solve(ctx context.Context) (*service.SolveResult, error)
}

// ArchiveReader serves the raw payload of a past import run. Nil disables
// the download endpoint.
type ArchiveReader interface {
	Open(runID string) ([]byte, string, error)
}

// ImportHandler exposes the import pipeline over HTTP.
type ImportHandler struct {
	imports        importService
	solver         solverService
	archive        ArchiveReader
	maxUploadBytes int64
}

// NewImportHandler constructs ImportHandler.
func NewImportHandler(imports importService, solver solverService, archive ArchiveReader, maxUploadBytes int64) *ImportHandler {
	return &ImportHandler{imports: imports, solver: solver, archive: archive, maxUploadBytes: maxUploadBytes}
}

// Upload accepts a multipart upload with a "file" part and a "format" field
// declaring how the payload should be read. The shape of the data is never
// guessed from the bytes.
func (h *ImportHandler) Upload(c *gin.Context) {
	format := imports.Format(c.PostForm("format"))
	if !format.Valid() {
		response.Error(c, appErrors.Clone(appErrors.ErrBadFormat,
			"form field \"format\" must be \"xlsx\" or \"json\""))
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "multipart field \"file\" is required"))
		return
	}
	defer file.Close()

	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		response.Error(c, appErrors.Clone(appErrors.ErrFileTooLarge,
			"upload exceeds the limit of "+strconv.FormatInt(h.maxUploadBytes, 10)+" bytes"))
		return
	}

	var reader io.Reader = file
	if h.maxUploadBytes > 0 {
		reader = io.LimitReader(file, h.maxUploadBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read upload"))
		return
	}
	if h.maxUploadBytes > 0 && int64(len(data)) > h.maxUploadBytes {
		response.Error(c, appErrors.ErrFileTooLarge)
		return
	}

	report, err := h.imports.Import(c.Request.Context(), format, data)
	if err != nil {
		response.Error(c, err)
		return
	}
	if !report.Valid {
		c.Header("Cache-Control", "no-store")
		c.JSON(http.StatusUnprocessableEntity, response.Envelope{Data: report})
		return
	}
	response.Created(c, report)
}

// Current returns the stored import aggregate with its provenance.
func (h *ImportHandler) Current(c *gin.Context) {
	entry, err := h.imports.Current(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entry)
}

// Clear empties the import slot.
func (h *ImportHandler) Clear(c *gin.Context) {
	if err := h.imports.Clear(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Runs lists recent import attempts from the audit trail.
func (h *ImportHandler) Runs(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			limit = v
		}
	}

	runs, err := h.imports.Runs(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	if runs == nil {
		runs = []models.ImportRun{}
	}
	response.JSON(c, http.StatusOK, runs)
}

// Export streams the stored import's lessons as a CSV attachment.
func (h *ImportHandler) Export(c *gin.Context) {
	data, err := h.imports.ExportCSV(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="lessons.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// RunUpload returns the archived raw payload of a past import run.
func (h *ImportHandler) RunUpload(c *gin.Context) {
	if h.archive == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "upload archiving is disabled"))
		return
	}

	runID := c.Param("id")
	data, format, err := h.archive.Open(runID)
	if err != nil {
		if os.IsNotExist(err) {
			response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no archived upload for run "+runID))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read archived upload"))
		return
	}

	contentType := "application/octet-stream"
	switch format {
	case "json":
		contentType = "application/json"
	case "xlsx":
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	c.Header("Content-Disposition", `attachment; filename="`+runID+"."+format+`"`)
	c.Data(http.StatusOK, contentType, data)
}

// Solve submits the stored import to the solver and relays the report URL.
func (h *ImportHandler) Solve(c *gin.Context) {
	result, err := h.solver.Solve(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, result)
}
