// Package handlers provides HTTP handlers and middleware for the memview API.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/scrypster/memview/internal/search"
	"github.com/scrypster/memview/internal/stats"
	"github.com/scrypster/memview/pkg/types"
)

// ErrorResponse is the standard error response format for the API.
type ErrorResponse struct {
	Error   string                 `json:"error"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// MemoriesResponse is the response format for GET /api/memories.
type MemoriesResponse struct {
	Memories []types.Memory `json:"memories"`
	Total    int            `json:"total"`
	Loading  bool           `json:"loading"`
}

// SearchResponse is the response format for GET /api/search.
type SearchResponse struct {
	Results []search.Result `json:"results"`
	Total   int             `json:"total"`
	Query   string          `json:"query"`
}

// StatsResponse is the response format for GET /api/stats.
type StatsResponse struct {
	types.Stats
	Timeline []stats.Bucket `json:"timeline"`
}

// ImportResponse is the response format for POST /api/import.
type ImportResponse struct {
	Imported int    `json:"imported"`
	Mode     string `json:"mode"`
}

// IdentityRequest is the request body for POST /api/identity.
type IdentityRequest struct {
	UserID string `json:"userId"`
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already sent, so just log
		log.Printf("handlers: failed to encode JSON response: %v", err)
	}
}

// respondError writes an error response with the given status code.
func respondError(w http.ResponseWriter, statusCode int, message string, err error) {
	errResp := ErrorResponse{
		Error: message,
		Code:  http.StatusText(statusCode),
	}

	if err != nil {
		errResp.Details = map[string]interface{}{
			"error": err.Error(),
		}
	}

	respondJSON(w, statusCode, errResp)
}
