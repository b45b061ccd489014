package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/patrickmb/timetable-import-api/internal/models"
	appErrors "github.com/patrickmb/timetable-import-api/pkg/errors"
)

// solveRequest mirrors the remote benchmark contract: the imported aggregate
// is handed off verbatim.
type solveRequest struct {
	Source    string            `json:"source"`
	Timetable *models.Timetable `json:"timetable"`
}

type solveResponse struct {
	ReportURL string `json:"reportUrl"`
}

// SolveResult is returned to the caller after a successful hand-off.
type SolveResult struct {
	ReportURL string `json:"reportUrl"`
}

// SolverService submits the stored aggregate to the remote solver/benchmark
// collaborator. The collaborator's internals are opaque here; this is a
// single request with a configured timeout and no retry.
type SolverService struct {
	store   importStore
	client  *http.Client
	baseURL string
	enabled bool
	logger  *zap.Logger
}

// NewSolverService builds the solver client.
func NewSolverService(st importStore, baseURL string, timeout time.Duration, enabled bool, logger *zap.Logger) *SolverService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &SolverService{
		store:   st,
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
		enabled: enabled,
		logger:  logger,
	}
}

// Solve sends the current import to the solver and returns the report URL.
func (s *SolverService) Solve(ctx context.Context) (*SolveResult, error) {
	if !s.enabled {
		return nil, appErrors.ErrSolverOff
	}

	entry, err := s.store.Get(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read import store")
	}
	if entry == nil || entry.Data == nil {
		return nil, appErrors.ErrNoImport
	}

	payload, err := json.Marshal(solveRequest{Source: "imported", Timetable: entry.Data})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode solver request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/run", bytes.NewReader(payload))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build solver request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, appErrors.Wrap(err, "SOLVER_UNREACHABLE", http.StatusBadGateway, "solver request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, appErrors.New("SOLVER_ERROR", http.StatusBadGateway,
			fmt.Sprintf("solver returned status %d", resp.StatusCode))
	}

	var out solveResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, appErrors.Wrap(err, "SOLVER_ERROR", http.StatusBadGateway, "failed to decode solver response")
	}

	s.logger.Info("import submitted to solver", zap.String("report_url", out.ReportURL))
	return &SolveResult{ReportURL: out.ReportURL}, nil
}
