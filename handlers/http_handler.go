// Package handlers provides the HTTP request handlers for the drug interactions API:
// drug search, interaction checks and the health endpoint.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/giygas/drug-interactions-api/catalogparser/entities"
	"github.com/giygas/drug-interactions-api/engine"
	"github.com/giygas/drug-interactions-api/interfaces"
	"github.com/giygas/drug-interactions-api/logging"
)

// HTTPHandlerImpl implements the interfaces.HTTPHandler interface
type HTTPHandlerImpl struct {
	engine    interfaces.Engine
	validator interfaces.DataValidator
	health    interfaces.HealthChecker
	startedAt time.Time
}

// NewHTTPHandler creates a new HTTP handler with injected dependencies
func NewHTTPHandler(eng interfaces.Engine, validator interfaces.DataValidator, health interfaces.HealthChecker) interfaces.HTTPHandler {
	return &HTTPHandlerImpl{
		engine:    eng,
		validator: validator,
		health:    health,
		startedAt: time.Now(),
	}
}

// SearchRequest is the body of POST /search_drugs
type SearchRequest struct {
	Query string `json:"query"`
}

// DrugName is one search result
type DrugName struct {
	Name string `json:"name"`
}

// SearchResponse is the body returned by POST /search_drugs
type SearchResponse struct {
	Drugs []DrugName `json:"drugs"`
}

// CheckRequest is the body of POST /check_interactions
type CheckRequest struct {
	Drugs []string `json:"drugs"`
}

// CheckResponse is the body returned by POST /check_interactions
type CheckResponse struct {
	TotalInteractions int                            `json:"total_interactions"`
	Interactions      []entities.ResolvedInteraction `json:"interactions"`
}

// HealthResponse defines the structure for consistent JSON ordering
type HealthResponse struct {
	Status        string         `json:"status"`
	DataLoaded    bool           `json:"data_loaded"`
	UptimeSeconds float64        `json:"uptime_seconds"`
	Data          map[string]any `json:"data"`
	System        map[string]any `json:"system"`
}

// RespondWithJSON writes a JSON response
func (h *HTTPHandlerImpl) RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err, "payload_type", fmt.Sprintf("%T", payload))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

// RespondWithError writes a JSON error response
func (h *HTTPHandlerImpl) RespondWithError(w http.ResponseWriter, code int, message string) {
	h.RespondWithJSON(w, code, map[string]any{
		"error":   http.StatusText(code),
		"message": message,
		"code":    code,
	})
}

// decodeBody reads a JSON request body into v, answering 400 or 413 itself on failure
func (h *HTTPHandlerImpl) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}

	var maxBytesErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxBytesErr):
		h.RespondWithError(w, http.StatusRequestEntityTooLarge, "Request body too large")
	case errors.Is(err, io.EOF):
		h.RespondWithError(w, http.StatusBadRequest, "Request body is empty")
	default:
		h.RespondWithError(w, http.StatusBadRequest, "Request body is not valid JSON")
	}
	return false
}

// SearchDrugs returns the catalog names closest to the query
func (h *HTTPHandlerImpl) SearchDrugs(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.validator.ValidateSearchQuery(req.Query); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	names := h.engine.Search(r.Context(), req.Query)

	response := SearchResponse{Drugs: make([]DrugName, len(names))}
	for i, name := range names {
		response.Drugs[i] = DrugName{Name: name}
	}
	h.RespondWithJSON(w, http.StatusOK, response)
}

// CheckInteractions normalizes the submitted names and returns every interacting pair
func (h *HTTPHandlerImpl) CheckInteractions(w http.ResponseWriter, r *http.Request) {
	var req CheckRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if err := h.validator.ValidateDrugList(req.Drugs); err != nil {
		h.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	interactions, err := h.engine.CheckInteractions(r.Context(), req.Drugs)
	if errors.Is(err, engine.ErrInsufficientInputs) {
		h.RespondWithError(w, http.StatusBadRequest, "Please provide at least 2 drugs")
		return
	}
	if err != nil {
		logging.Error("Interaction check failed", "error", err)
		h.RespondWithError(w, http.StatusInternalServerError, "Interaction check failed")
		return
	}

	h.RespondWithJSON(w, http.StatusOK, CheckResponse{
		TotalInteractions: len(interactions),
		Interactions:      interactions,
	})
}

// HealthCheck returns the catalog state and basic runtime statistics
func (h *HTTPHandlerImpl) HealthCheck(w http.ResponseWriter, r *http.Request) {
	status, data, httpStatus := h.health.HealthCheck()

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	loaded, _ := data["data_loaded"].(bool)
	h.RespondWithJSON(w, httpStatus, HealthResponse{
		Status:        status,
		DataLoaded:    loaded,
		UptimeSeconds: time.Since(h.startedAt).Seconds(),
		Data:          data,
		System: map[string]any{
			"goroutines": runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb": int(m.Alloc / 1024 / 1024),
				"sys_mb":   int(m.Sys / 1024 / 1024),
				"num_gc":   m.NumGC,
			},
		},
	})
}
