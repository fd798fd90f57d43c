package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/swaggo/swag"

	"github.com/custodia-labs/lectern/internal/core/domain"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// ErrorResponse represents an API error response
// @Description API error response
type ErrorResponse struct {
	Error string `json:"error" example:"invalid input: query must be at least 2 characters"`
}

// StatusResponse represents a simple status response
// @Description Simple status response
type StatusResponse struct {
	Status string `json:"status" example:"ok"`
}

// BackendRequest selects and configures a summarization backend
// @Description Summarization backend settings
type BackendRequest struct {
	Provider     domain.AIProvider `json:"provider" example:"openai"`
	Model        string            `json:"model,omitempty" example:"gpt-4o-mini"`
	SummaryModel string            `json:"summary_model,omitempty" example:"facebook/bart-large-cnn"`
	APIKey       string            `json:"api_key,omitempty"`
	BaseURL      string            `json:"base_url,omitempty"`
}

func (r BackendRequest) settings() domain.BackendSettings {
	return domain.BackendSettings{
		Provider:     r.Provider,
		Model:        r.Model,
		SummaryModel: r.SummaryModel,
		APIKey:       r.APIKey,
		BaseURL:      r.BaseURL,
	}
}

// Health endpoints

// handleHealth godoc
// @Summary      Health check
// @Description  Returns liveness, version and uptime
// @Tags         Health
// @Produce      json
// @Success      200  {object}  domain.HealthResponse
// @Router       /health [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.healthService.Health(r.Context()))
}

// handleDetailedHealth godoc
// @Summary      Detailed health check
// @Description  Probes the database, cache, summarization backend and every catalog
// @Tags         Health
// @Produce      json
// @Success      200  {object}  domain.DetailedHealthResponse  "Healthy or degraded"
// @Failure      503  {object}  domain.DetailedHealthResponse  "A required dependency is down"
// @Router       /health/detailed [get]
func (s *Server) handleDetailedHealth(w http.ResponseWriter, r *http.Request) {
	report := s.healthService.Detailed(r.Context())
	status := http.StatusOK
	if report.Status == domain.HealthStatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// Book endpoints

// handleSearch godoc
// @Summary      Search books
// @Description  Searches every catalog, merges duplicates and ranks the results
// @Tags         Books
// @Accept       json
// @Produce      json
// @Param        request  body      domain.SearchRequest  true  "Search query"
// @Success      200      {object}  domain.SearchResponse
// @Failure      400      {object}  ErrorResponse  "Invalid query"
// @Failure      502      {object}  ErrorResponse  "No catalog answered"
// @Router       /search [post]
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req domain.SearchRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	resp, err := s.libraryService.Search(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGetBook godoc
// @Summary      Get book details
// @Description  Returns a book by source-qualified id, such as gutenberg:84
// @Tags         Books
// @Produce      json
// @Param        id   path      string  true  "Book ID"
// @Success      200  {object}  domain.BookDetail
// @Failure      400  {object}  ErrorResponse  "Malformed id"
// @Failure      404  {object}  ErrorResponse  "Book not found"
// @Failure      502  {object}  ErrorResponse  "Catalog unavailable"
// @Router       /books/{id} [get]
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) {
	book, err := s.libraryService.GetBook(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

// Summary endpoints

// handleSummarize godoc
// @Summary      Summarize a book
// @Description  Returns a cached or stored summary, generating one when none exists
// @Tags         Summaries
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true   "Book ID"
// @Param        request  body      domain.SummaryRequest  false  "Language, style and page budget"
// @Success      200      {object}  domain.SummaryResponse
// @Failure      400      {object}  ErrorResponse  "Invalid language or style"
// @Failure      404      {object}  ErrorResponse  "Book not found"
// @Failure      502      {object}  ErrorResponse  "Catalog unavailable"
// @Router       /books/{id}/summary [post]
func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	var req domain.SummaryRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	resp, err := s.summaryService.Summarize(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleGetSummary godoc
// @Summary      Get a summary
// @Description  Returns a stored summary by id
// @Tags         Summaries
// @Produce      json
// @Param        id   path      string  true  "Summary ID"
// @Success      200  {object}  domain.SummaryResponse
// @Failure      404  {object}  ErrorResponse  "Summary not found"
// @Router       /summaries/{id} [get]
func (s *Server) handleGetSummary(w http.ResponseWriter, r *http.Request) {
	resp, err := s.summaryService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Job endpoints

// handleSubmitJob godoc
// @Summary      Queue a summary
// @Description  Enqueues background generation of a book summary
// @Tags         Jobs
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true   "Book ID"
// @Param        request  body      domain.SummaryRequest  false  "Language, style and page budget"
// @Success      202      {object}  domain.SummaryJob
// @Failure      400      {object}  ErrorResponse  "Invalid request"
// @Failure      503      {object}  ErrorResponse  "Queue unavailable"
// @Router       /books/{id}/summary/jobs [post]
func (s *Server) handleSubmitJob(w http.ResponseWriter, r *http.Request) {
	if s.jobService == nil {
		s.writeServiceError(w, r, domain.ErrQueueUnavailable)
		return
	}

	var req domain.SummaryRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	job, err := s.jobService.SubmitSummary(r.Context(), r.PathValue("id"), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusAccepted, job)
}

// handleGetJob godoc
// @Summary      Get job status
// @Description  Returns the status of a queued summary; summary_id is set once complete
// @Tags         Jobs
// @Produce      json
// @Param        id   path      string  true  "Job ID"
// @Success      200  {object}  domain.SummaryJob
// @Failure      404  {object}  ErrorResponse  "Job not found"
// @Failure      503  {object}  ErrorResponse  "Queue unavailable"
// @Router       /jobs/{id} [get]
func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	if s.jobService == nil {
		s.writeServiceError(w, r, domain.ErrQueueUnavailable)
		return
	}

	job, err := s.jobService.GetJob(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, job)
}

// Admin endpoints

// handleIssueToken godoc
// @Summary      Issue an admin token
// @Description  Exchanges the admin key for a one hour JWT
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Param        request  body      domain.TokenRequest  true  "Admin key"
// @Success      200      {object}  domain.TokenResponse
// @Failure      400      {object}  ErrorResponse  "Missing key"
// @Failure      401      {object}  ErrorResponse  "Invalid key"
// @Router       /admin/token [post]
func (s *Server) handleIssueToken(w http.ResponseWriter, r *http.Request) {
	var req domain.TokenRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	resp, err := s.adminService.IssueToken(r.Context(), req)
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleClearCache godoc
// @Summary      Clear the cache
// @Description  Removes every cached search, book and summary response
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  StatusResponse
// @Failure      401  {object}  ErrorResponse  "Unauthorized"
// @Router       /cache/clear [delete]
func (s *Server) handleClearCache(w http.ResponseWriter, r *http.Request) {
	if err := s.adminService.ClearCache(r.Context()); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "cleared"})
}

// handleSwitchBackend godoc
// @Summary      Switch the summarization backend
// @Description  Validates, connects and activates a new summarization backend
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request  body      BackendRequest  true  "Backend settings"
// @Success      200      {object}  StatusResponse
// @Failure      400      {object}  ErrorResponse  "Invalid settings"
// @Failure      401      {object}  ErrorResponse  "Unauthorized"
// @Failure      502      {object}  ErrorResponse  "Backend unreachable"
// @Router       /admin/backend [put]
func (s *Server) handleSwitchBackend(w http.ResponseWriter, r *http.Request) {
	var req BackendRequest
	if !s.decodeBody(w, r, &req) {
		return
	}

	if err := s.adminService.SwitchBackend(r.Context(), req.settings()); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, StatusResponse{Status: "ok"})
}

// handleSwaggerDoc serves the registered OpenAPI document
func (s *Server) handleSwaggerDoc(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeError(w, http.StatusNotFound, "api documentation not registered")
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(doc))
}

// Helpers

// decodeBody decodes a JSON body into dst. An empty body leaves dst at its zero value.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	writeError(w, http.StatusBadRequest, "invalid request body")
	return false
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrInvalidProvider):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrSourceUnavailable),
		errors.Is(err, domain.ErrBackendUnavailable),
		errors.Is(err, domain.ErrContentUnavailable):
		return http.StatusBadGateway
	case errors.Is(err, domain.ErrQueueUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeServiceError writes err with its mapped status. Internal details stay in the log.
func (s *Server) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed",
			"path", r.URL.Path,
			"request_id", GetRequestID(r.Context()),
			"error", err,
		)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}
