package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patrickmb/timetable-import-api/internal/imports"
	"github.com/patrickmb/timetable-import-api/internal/models"
	"github.com/patrickmb/timetable-import-api/internal/service"
	"github.com/patrickmb/timetable-import-api/internal/store"
	appErrors "github.com/patrickmb/timetable-import-api/pkg/errors"
)

type importServiceMock struct {
	report     *service.ImportReport
	importErr  error
	entry      *store.StoredImport
	currentErr error
	clearErr   error
	runs       []models.ImportRun
	runsErr    error
	csv        []byte
	csvErr     error

	gotFormat imports.Format
	gotData   []byte
}

func (m *importServiceMock) Import(ctx context.Context, format imports.Format, data []byte) (*service.ImportReport, error) {
	m.gotFormat = format
	m.gotData = data
	if m.importErr != nil {
		return nil, m.importErr
	}
	return m.report, nil
}

func (m *importServiceMock) Current(ctx context.Context) (*store.StoredImport, error) {
	if m.currentErr != nil {
		return nil, m.currentErr
	}
	return m.entry, nil
}

func (m *importServiceMock) Clear(ctx context.Context) error {
	return m.clearErr
}

func (m *importServiceMock) Runs(ctx context.Context, limit int) ([]models.ImportRun, error) {
	if m.runsErr != nil {
		return nil, m.runsErr
	}
	return m.runs, nil
}

func (m *importServiceMock) ExportCSV(ctx context.Context) ([]byte, error) {
	if m.csvErr != nil {
		return nil, m.csvErr
	}
	return m.csv, nil
}

type archiveMock struct {
	data   []byte
	format string
	err    error
}

func (m *archiveMock) Open(runID string) ([]byte, string, error) {
	if m.err != nil {
		return nil, "", m.err
	}
	return m.data, m.format, nil
}

type solverServiceMock struct {
	result *service.SolveResult
	err    error
}

func (m *solverServiceMock) Solve(ctx context.Context) (*service.SolveResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func multipartUpload(t *testing.T, format string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if format != "" {
		require.NoError(t, writer.WriteField("format", format))
	}
	part, err := writer.CreateFormFile("file", "timetable.xlsx")
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func uploadContext(t *testing.T, format string, payload []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	body, contentType := multipartUpload(t, format, payload)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/imports", body)
	req.Header.Set("Content-Type", contentType)
	c.Request = req
	return c, w
}

func TestImportHandlerUploadValid(t *testing.T) {
	mock := &importServiceMock{report: &service.ImportReport{
		Valid:    true,
		Errors:   []string{},
		Warnings: []string{},
		Summary:  &service.ImportSummary{Timeslots: 3, Rooms: 2, Lessons: 5},
	}}
	h := NewImportHandler(mock, nil, nil, 1<<20)

	c, w := uploadContext(t, "xlsx", []byte("workbook bytes"))
	h.Upload(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, imports.FormatWorkbook, mock.gotFormat)
	assert.Equal(t, []byte("workbook bytes"), mock.gotData)
}

func TestImportHandlerUploadInvalidReport(t *testing.T) {
	mock := &importServiceMock{report: &service.ImportReport{
		Valid:  false,
		Errors: []string{"Timeslots sheet row 2: startTime \"99:00\" is not a valid time"},
	}}
	h := NewImportHandler(mock, nil, nil, 1<<20)

	c, w := uploadContext(t, "xlsx", []byte("bad"))
	h.Upload(c)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var envelope struct {
		Data service.ImportReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.False(t, envelope.Data.Valid)
	assert.Len(t, envelope.Data.Errors, 1)
}

func TestImportHandlerUploadUnknownFormat(t *testing.T) {
	h := NewImportHandler(&importServiceMock{}, nil, nil, 1<<20)

	c, w := uploadContext(t, "csv", []byte("x"))
	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportHandlerUploadMissingFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewImportHandler(&importServiceMock{}, nil, nil, 1<<20)

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("format", "json"))
	require.NoError(t, writer.Close())

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/imports", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.Request = req

	h.Upload(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestImportHandlerUploadTooLarge(t *testing.T) {
	h := NewImportHandler(&importServiceMock{}, nil, nil, 8)

	c, w := uploadContext(t, "json", bytes.Repeat([]byte("a"), 64))
	h.Upload(c)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestImportHandlerCurrent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &importServiceMock{entry: &store.StoredImport{
		Data:      &models.Timetable{Duration: 60},
		Source:    "xlsx",
		Timestamp: time.Now(),
	}}
	h := NewImportHandler(mock, nil, nil, 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/imports/current", nil)

	h.Current(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestImportHandlerCurrentEmpty(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &importServiceMock{currentErr: appErrors.ErrNoImport}
	h := NewImportHandler(mock, nil, nil, 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/imports/current", nil)

	h.Current(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportHandlerClear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewImportHandler(&importServiceMock{}, nil, nil, 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodDelete, "/imports/current", nil)

	h.Clear(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestImportHandlerRuns(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &importServiceMock{runs: []models.ImportRun{{ID: "a", Source: "json", Valid: true}}}
	h := NewImportHandler(mock, nil, nil, 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/imports/runs?limit=5", nil)

	h.Runs(c)
	require.Equal(t, http.StatusOK, w.Code)

	var envelope struct {
		Data []models.ImportRun `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Len(t, envelope.Data, 1)
}

func TestImportHandlerExport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mock := &importServiceMock{csv: []byte("id,subject\n7,Algorithms\n")}
	h := NewImportHandler(mock, nil, nil, 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/imports/current/export", nil)

	h.Export(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "lessons.csv")
	assert.Equal(t, "id,subject\n7,Algorithms\n", w.Body.String())
}

func TestImportHandlerRunUpload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	archive := &archiveMock{data: []byte(`{"lessons":[]}`), format: "json"}
	h := NewImportHandler(&importServiceMock{}, nil, archive, 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/imports/runs/run-1/upload", nil)
	c.Params = gin.Params{{Key: "id", Value: "run-1"}}

	h.RunUpload(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

func TestImportHandlerRunUploadMissing(t *testing.T) {
	gin.SetMode(gin.TestMode)
	archive := &archiveMock{err: os.ErrNotExist}
	h := NewImportHandler(&importServiceMock{}, nil, archive, 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/imports/runs/run-9/upload", nil)
	c.Params = gin.Params{{Key: "id", Value: "run-9"}}

	h.RunUpload(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportHandlerRunUploadArchivingDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewImportHandler(&importServiceMock{}, nil, nil, 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/imports/runs/run-1/upload", nil)
	c.Params = gin.Params{{Key: "id", Value: "run-1"}}

	h.RunUpload(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestImportHandlerSolve(t *testing.T) {
	gin.SetMode(gin.TestMode)
	solver := &solverServiceMock{result: &service.SolveResult{ReportURL: "http://solver/report/1"}}
	h := NewImportHandler(&importServiceMock{}, solver, nil, 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/imports/current/solve", nil)

	h.Solve(c)
	require.Equal(t, http.StatusAccepted, w.Code)

	var envelope struct {
		Data service.SolveResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Equal(t, "http://solver/report/1", envelope.Data.ReportURL)
}

func TestImportHandlerSolveDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewImportHandler(&importServiceMock{}, &solverServiceMock{err: appErrors.ErrSolverOff}, nil, 0)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/imports/current/solve", nil)

	h.Solve(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
