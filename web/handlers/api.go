package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/scrypster/memview/internal/collection"
	"github.com/scrypster/memview/internal/config"
	"github.com/scrypster/memview/internal/export"
	"github.com/scrypster/memview/internal/graph"
	"github.com/scrypster/memview/internal/search"
	"github.com/scrypster/memview/internal/stats"
	"github.com/scrypster/memview/internal/storage"
	"github.com/scrypster/memview/pkg/types"
)

// timelineDays is how many day buckets /api/stats reports.
const timelineDays = 14

// APIHandlers contains HTTP handlers for the REST API.
//
// Reads are served from the live view's current snapshot; mutations go
// straight to the store and the view catches up on the next pushed
// snapshot. Handlers never wait for that snapshot.
type APIHandlers struct {
	view   *collection.View
	store  storage.MemoryStore
	config *config.Config
}

// NewAPIHandlers creates a new APIHandlers instance.
func NewAPIHandlers(view *collection.View, store storage.MemoryStore, cfg *config.Config) *APIHandlers {
	return &APIHandlers{
		view:   view,
		store:  store,
		config: cfg,
	}
}

// ListMemories handles GET /api/memories - the view's current snapshot,
// pinned records first.
func (h *APIHandlers) ListMemories(w http.ResponseWriter, r *http.Request) {
	records := h.view.Records()
	respondJSON(w, http.StatusOK, MemoriesResponse{
		Memories: records,
		Total:    len(records),
		Loading:  h.view.Loading(),
	})
}

// CreateMemory handles POST /api/memories - insert a new record.
// A missing id gets a generated UUID.
func (h *APIHandlers) CreateMemory(w http.ResponseWriter, r *http.Request) {
	var m types.Memory
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if m.Fact == "" {
		respondError(w, http.StatusBadRequest, "fact is required", nil)
		return
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}

	if err := h.store.Put(r.Context(), h.view.Identity(), m); err != nil {
		respondStoreError(w, "failed to create memory", err)
		return
	}

	respondJSON(w, http.StatusCreated, m)
}

// TogglePin handles POST /api/memories/{id}/pin - flip the pin flag.
// The current flag is read from the view snapshot.
func (h *APIHandlers) TogglePin(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var current *types.Memory
	for _, m := range h.view.Records() {
		if m.ID == id {
			rec := m
			current = &rec
			break
		}
	}
	if current == nil {
		respondError(w, http.StatusNotFound, "memory not found", nil)
		return
	}

	if err := h.store.SetPinned(r.Context(), h.view.Identity(), id, !current.Pinned); err != nil {
		respondStoreError(w, "failed to toggle pin", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"id":     id,
		"pinned": !current.Pinned,
	})
}

// UpdateMemory handles PATCH /api/memories/{id} - partial update of fact
// and/or tags.
func (h *APIHandlers) UpdateMemory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var body struct {
		Fact *string   `json:"fact"`
		Tags *[]string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	if body.Fact == nil && body.Tags == nil {
		respondError(w, http.StatusBadRequest, "nothing to update", nil)
		return
	}

	update := storage.FieldUpdate{Fact: body.Fact, Tags: body.Tags}
	if err := h.store.UpdateFields(r.Context(), h.view.Identity(), id, update); err != nil {
		respondStoreError(w, "failed to update memory", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"id": id})
}

// DeleteMemory handles DELETE /api/memories/{id}.
func (h *APIHandlers) DeleteMemory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.store.Delete(r.Context(), h.view.Identity(), id); err != nil {
		respondStoreError(w, "failed to delete memory", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Search handles GET /api/search?q= - relevance-ranked matches from the
// current snapshot.
func (h *APIHandlers) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	results := search.Rank(h.view.Records(), query)

	respondJSON(w, http.StatusOK, SearchResponse{
		Results: results,
		Total:   len(results),
		Query:   query,
	})
}

// GetStats handles GET /api/stats - aggregate counters plus the creation
// timeline.
func (h *APIHandlers) GetStats(w http.ResponseWriter, r *http.Request) {
	records := h.view.Records()
	now := time.Now()

	respondJSON(w, http.StatusOK, StatsResponse{
		Stats:    stats.Compute(records, now),
		Timeline: stats.Timeline(records, timelineDays),
	})
}

// GetGraph handles GET /api/graph - the relationship graph for the
// current snapshot.
func (h *APIHandlers) GetGraph(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, graph.Build(h.view.Records()))
}

// GetExport handles GET /api/export - download the full record set as an
// interchange document.
func (h *APIHandlers) GetExport(w http.ResponseWriter, r *http.Request) {
	doc := export.Export(h.view.Records(), time.Now())
	data, err := export.Marshal(doc)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to marshal export", err)
		return
	}

	filename := fmt.Sprintf("memview-export-%s.json", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// PostImport handles POST /api/import?mode=merge|replace - load an
// interchange document into the store. Mode defaults to merge.
func (h *APIHandlers) PostImport(w http.ResponseWriter, r *http.Request) {
	mode := export.Mode(r.URL.Query().Get("mode"))
	if mode == "" {
		mode = export.ModeMerge
	}
	if mode != export.ModeMerge && mode != export.ModeReplace {
		respondError(w, http.StatusBadRequest, "mode must be merge or replace", nil)
		return
	}

	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}
	doc, err := export.Parse(raw)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid export document", err)
		return
	}

	imported, err := export.Import(r.Context(), h.store, h.view.Identity(), doc, mode)
	if err != nil {
		respondStoreError(w, "import failed", err)
		return
	}

	respondJSON(w, http.StatusOK, ImportResponse{
		Imported: imported,
		Mode:     string(mode),
	})
}

// PostIdentity handles POST /api/identity - switch the live view to
// another user (or sign out with an empty userId). The previous
// subscription is torn down before the new one starts.
func (h *APIHandlers) PostIdentity(w http.ResponseWriter, r *http.Request) {
	var req IdentityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body", err)
		return
	}

	if err := h.view.SetIdentity(r.Context(), req.UserID); err != nil {
		respondError(w, http.StatusInternalServerError, "failed to switch identity", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"userId":  req.UserID,
		"loading": h.view.Loading(),
	})
}

// respondStoreError maps store errors onto HTTP status codes.
func respondStoreError(w http.ResponseWriter, message string, err error) {
	switch {
	case errors.Is(err, storage.ErrNotAuthenticated):
		respondError(w, http.StatusUnauthorized, "not authenticated", err)
	case errors.Is(err, storage.ErrNotFound):
		respondError(w, http.StatusNotFound, "memory not found", err)
	case errors.Is(err, storage.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, message, err)
	case errors.Is(err, storage.ErrCircuitOpen):
		respondError(w, http.StatusServiceUnavailable, "storage unavailable", err)
	default:
		respondError(w, http.StatusInternalServerError, message, err)
	}
}
