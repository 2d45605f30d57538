package web

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/RezaEskandarii/jobboard/custom_errors"
	"github.com/RezaEskandarii/jobboard/internal/auth"
	"github.com/RezaEskandarii/jobboard/internal/logger"
	"github.com/RezaEskandarii/jobboard/internal/models"
	"github.com/RezaEskandarii/jobboard/internal/state"
	"github.com/RezaEskandarii/jobboard/internal/store"
)

// Database is the part of the storage adapter the API checks before serving.
type Database interface {
	Init(ctx context.Context) error
	Ping(ctx context.Context) error
}

type HttpRouteHandler struct {
	jobStore   store.JobStore
	gate       *auth.Gate
	db         Database
	clock      clockwork.Clock
	logger     *zap.SugaredLogger
	production bool
	limiter    *clientLimiter
}

func NewRouteHandler(
	jobStore store.JobStore,
	gate *auth.Gate,
	db Database,
	clock clockwork.Clock,
	logger *zap.SugaredLogger,
	production bool,
	rateLimit int,
) *HttpRouteHandler {
	handler := &HttpRouteHandler{
		jobStore:   jobStore,
		gate:       gate,
		db:         db,
		clock:      clock,
		logger:     logger,
		production: production,
	}
	// rateLimit is requests per client per RateLimitWindow, zero disables limiting
	if rateLimit > 0 {
		handler.limiter = newClientLimiter(rateLimit)
	}
	return handler
}

// Routes returns the API wrapped in the request middleware chain.
func (handler *HttpRouteHandler) Routes() http.Handler {
	mux := http.NewServeMux()

	// public
	mux.HandleFunc("GET /api/jobs", handler.handleListJobs)
	mux.HandleFunc("GET /api/jobs/{id}", handler.handleGetJob)
	mux.HandleFunc("POST /api/jobs", handler.handleCreateJob)
	mux.HandleFunc("PATCH /api/jobs/{id}/payment", handler.handleUpdatePayment)

	// admin
	mux.HandleFunc("GET /api/admin/jobs", handler.gate.RequireAuth(handler.handlePendingJobs))
	mux.HandleFunc("GET /api/admin/jobs/all", handler.gate.RequireAuth(handler.handleAllJobs))
	mux.HandleFunc("GET /api/admin/jobs/{id}", handler.gate.RequireAuth(handler.handleGetJob))
	mux.HandleFunc("PATCH /api/admin/jobs/{id}/approve", handler.gate.RequireAuth(handler.handleChangeStatus(state.StatusApproved)))
	mux.HandleFunc("PATCH /api/admin/jobs/{id}/reject", handler.gate.RequireAuth(handler.handleChangeStatus(state.StatusRejected)))
	mux.HandleFunc("DELETE /api/admin/jobs/{id}", handler.gate.RequireAuth(handler.handleDeleteJob))
	mux.HandleFunc("GET /api/admin/stats", handler.gate.RequireAuth(handler.handleStats))

	// auth
	mux.HandleFunc("POST /api/auth/login", handler.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", handler.handleLogout)
	mux.HandleFunc("GET /api/auth/check", handler.handleAuthCheck)

	mux.HandleFunc("GET /api/health", handler.handleHealth)
	mux.HandleFunc("/api/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "endpoint not found"})
	})

	return chain(mux,
		requestID,
		handler.accessLog,
		handler.recoverer,
		cors,
		handler.rateLimit,
		handler.ensureDatabase,
	)
}

func (handler *HttpRouteHandler) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := handler.jobStore.ListApprovedJobs(r.Context(), r.URL.Query().Get("team"))
	if err != nil {
		handler.writeError(w, r, err, "failed to load jobs")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (handler *HttpRouteHandler) handleGetJob(w http.ResponseWriter, r *http.Request) {
	id, err := getJobID(r)
	if err != nil {
		handler.writeError(w, r, err, "invalid job id")
		return
	}
	job, err := handler.jobStore.GetJob(r.Context(), id)
	if err != nil {
		handler.writeError(w, r, err, "failed to load job")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

type createJobResponse struct {
	ID      int64  `json:"id"`
	JobID   int64  `json:"jobId"`
	Message string `json:"message"`
}

func (handler *HttpRouteHandler) handleCreateJob(w http.ResponseWriter, r *http.Request) {
	var submission models.JobSubmission
	if err := decodeJSON(w, r, &submission); err != nil {
		handler.writeError(w, r, err, "invalid request body")
		return
	}
	id, err := handler.jobStore.CreateJob(r.Context(), submission)
	if err != nil {
		handler.writeError(w, r, err, "failed to create job")
		return
	}
	writeJSON(w, http.StatusOK, createJobResponse{ID: id, JobID: id, Message: "job created successfully"})
}

type paymentRequest struct {
	PaymentStatus   string `json:"paymentStatus"`
	PaymentIntentID string `json:"paymentIntentId"`
}

func (handler *HttpRouteHandler) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := getJobID(r)
	if err != nil {
		handler.writeError(w, r, err, "invalid job id")
		return
	}
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handler.writeError(w, r, err, "invalid request body")
		return
	}
	status := state.PaymentStatus(strings.ToLower(strings.TrimSpace(req.PaymentStatus)))
	if status == "" {
		handler.writeError(w, r, custom_errors.NewValidationError(errors.New("paymentStatus is required")), "")
		return
	}
	if err := handler.jobStore.UpdatePayment(r.Context(), id, status, req.PaymentIntentID); err != nil {
		handler.writeError(w, r, err, "failed to update payment")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "payment status updated"})
}

func (handler *HttpRouteHandler) handlePendingJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := handler.jobStore.ListPendingJobs(r.Context())
	if err != nil {
		handler.writeError(w, r, err, "failed to load pending jobs")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (handler *HttpRouteHandler) handleAllJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := handler.jobStore.ListAllJobs(r.Context())
	if err != nil {
		handler.writeError(w, r, err, "failed to load jobs")
		return
	}
	writeJSON(w, http.StatusOK, jobs)
}

func (handler *HttpRouteHandler) handleChangeStatus(status state.JobStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := getJobID(r)
		if err != nil {
			handler.writeError(w, r, err, "invalid job id")
			return
		}
		if err := handler.jobStore.UpdateStatus(r.Context(), id, status); err != nil {
			handler.writeError(w, r, err, "failed to update job status")
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Message: "job " + status.String(), ID: id})
	}
}

func (handler *HttpRouteHandler) handleDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := getJobID(r)
	if err != nil {
		handler.writeError(w, r, err, "invalid job id")
		return
	}
	if err := handler.jobStore.DeleteJob(r.Context(), id); err != nil {
		handler.writeError(w, r, err, "failed to delete job")
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "job deleted", ID: id})
}

type statsResponse struct {
	Counts map[state.JobStatus]int `json:"counts"`
	Total  int                     `json:"total"`
}

func (handler *HttpRouteHandler) handleStats(w http.ResponseWriter, r *http.Request) {
	counts, err := handler.jobStore.CountJobsGroupedByStatus(r.Context())
	if err != nil {
		handler.writeError(w, r, err, "failed to load stats")
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	writeJSON(w, http.StatusOK, statsResponse{Counts: counts, Total: total})
}

type loginRequest struct {
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (handler *HttpRouteHandler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handler.writeError(w, r, err, "invalid request body")
		return
	}
	token, err := handler.gate.Login(r.Context(), req.Password)
	if err != nil {
		if errors.Is(err, custom_errors.ErrUnauthorized) {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid password"})
			return
		}
		handler.writeError(w, r, err, "login failed")
		return
	}
	handler.gate.SetCookie(w, token)
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Message: "logged in"})
}

func (handler *HttpRouteHandler) handleLogout(w http.ResponseWriter, r *http.Request) {
	handler.gate.ClearCookie(w)
	writeJSON(w, http.StatusOK, loginResponse{Success: true, Message: "logged out"})
}

func (handler *HttpRouteHandler) handleAuthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"authenticated": handler.gate.Authenticated(r)})
}

type healthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Database  string `json:"database"`
}

func (handler *HttpRouteHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	database := "ok"
	if err := handler.db.Ping(r.Context()); err != nil {
		database = "unavailable"
	}
	writeJSON(w, http.StatusOK, healthResponse{
		Status:    "ok",
		Timestamp: handler.clock.Now().UTC().Format(time.RFC3339Nano),
		Database:  database,
	})
}

// writeError maps err onto a status code and a JSON body. fallback is the
// client message for unexpected failures, whose details are only shown
// outside production.
func (handler *HttpRouteHandler) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := custom_errors.HTTPStatus(err)
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		status = http.StatusRequestEntityTooLarge
	}

	body := errorResponse{Error: fallback}
	switch status {
	case http.StatusBadRequest:
		var validationErr *custom_errors.ValidationError
		if errors.As(err, &validationErr) {
			body.Error = validationErr.Error()
		}
	case http.StatusNotFound:
		body.Error = "job not found"
	case http.StatusUnauthorized:
		body.Error = "unauthorized"
	case http.StatusConflict:
		body.Error = "job status does not allow this change"
	case http.StatusRequestEntityTooLarge:
		body.Error = "request body too large"
	default:
		handler.logger.Errorw("Request failed",
			logger.FieldRequestID, requestIDFrom(r.Context()),
			logger.FieldMethod, r.Method,
			logger.FieldPath, r.URL.Path,
			logger.FieldError, err,
		)
		if !handler.production {
			body.Details = err.Error()
		}
	}
	writeJSON(w, status, body)
}
