package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/fitcoach/internal/model"
	"github.com/dukerupert/fitcoach/internal/store"
)

type TransformationHandler struct {
	store *store.TransformationStore
}

func NewTransformationHandler(s *store.TransformationStore) *TransformationHandler {
	return &TransformationHandler{store: s}
}

type transformationRequest struct {
	Name           string `json:"name" validate:"required,max=100"`
	Achievement    string `json:"achievement" validate:"required,max=200"`
	Quote          string `json:"quote" validate:"required,max=2000"`
	Program        string `json:"program" validate:"required,max=200"`
	ImageBeforeURL string `json:"image_before_url" validate:"required,url"`
	ImageAfterURL  string `json:"image_after_url" validate:"required,url"`
}

func (req transformationRequest) toModel() model.Transformation {
	return model.Transformation{
		Name:           strings.TrimSpace(req.Name),
		Achievement:    strings.TrimSpace(req.Achievement),
		Quote:          req.Quote,
		Program:        strings.TrimSpace(req.Program),
		ImageBeforeURL: req.ImageBeforeURL,
		ImageAfterURL:  req.ImageAfterURL,
	}
}

func (h *TransformationHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.List()
	if err != nil {
		slog.Error("list transformations", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list transformations")
		return
	}
	if items == nil {
		items = []model.Transformation{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *TransformationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req transformationRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	item, err := h.store.Create(req.toModel())
	if err != nil {
		slog.Error("create transformation", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create transformation")
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *TransformationHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req transformationRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	item, err := h.store.Update(r.PathValue("id"), req.toModel())
	if err != nil {
		slog.Error("update transformation", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update transformation")
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "transformation not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *TransformationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.Delete(r.PathValue("id"))
	if err != nil {
		slog.Error("delete transformation", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete transformation")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "transformation not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
