package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/fitcoach/internal/auth"
	"github.com/dukerupert/fitcoach/internal/model"
	"github.com/dukerupert/fitcoach/internal/store"
)

type ProgressHandler struct {
	store *store.ProgressStore
}

func NewProgressHandler(s *store.ProgressStore) *ProgressHandler {
	return &ProgressHandler{store: s}
}

func (h *ProgressHandler) List(w http.ResponseWriter, r *http.Request) {
	logs, err := h.store.ListByUser(auth.UserID(r.Context()))
	if err != nil {
		slog.Error("list progress", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list progress")
		return
	}
	if logs == nil {
		logs = []model.ProgressLog{}
	}
	writeJSON(w, http.StatusOK, logs)
}

func (h *ProgressHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Date              string   `json:"date" validate:"required,datetime=2006-01-02"`
		Weight            float64  `json:"weight" validate:"required,gt=0,lt=1000"`
		BodyFatPercentage *float64 `json:"body_fat_percentage" validate:"omitempty,min=0,max=100"`
		Notes             string   `json:"notes" validate:"max=2000"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}

	entry, err := h.store.Create(model.ProgressLog{
		UserID:            auth.UserID(r.Context()),
		Date:              req.Date,
		Weight:            req.Weight,
		BodyFatPercentage: req.BodyFatPercentage,
		Notes:             req.Notes,
	})
	if err != nil {
		slog.Error("create progress", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to log progress")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

// Delete removes one of the caller's own entries. Entries belonging to other
// users are reported as not found.
func (h *ProgressHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.DeleteForUser(r.PathValue("id"), auth.UserID(r.Context()))
	if err != nil {
		slog.Error("delete progress", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete progress")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "progress entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
