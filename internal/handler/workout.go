package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/fitcoach/internal/model"
	"github.com/dukerupert/fitcoach/internal/store"
)

type WorkoutHandler struct {
	store *store.WorkoutStore
}

func NewWorkoutHandler(s *store.WorkoutStore) *WorkoutHandler {
	return &WorkoutHandler{store: s}
}

type workoutRequest struct {
	Title           string `json:"title" validate:"required,max=200"`
	Description     string `json:"description" validate:"max=5000"`
	VideoURL        string `json:"video_url" validate:"omitempty,url"`
	DurationMinutes int    `json:"duration_minutes" validate:"required,min=1,max=600"`
	Difficulty      string `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	Category        string `json:"category" validate:"max=100"`
}

func (req workoutRequest) toModel() model.Workout {
	return model.Workout{
		Title:           strings.TrimSpace(req.Title),
		Description:     req.Description,
		VideoURL:        req.VideoURL,
		DurationMinutes: req.DurationMinutes,
		Difficulty:      req.Difficulty,
		Category:        strings.TrimSpace(req.Category),
	}
}

func (h *WorkoutHandler) List(w http.ResponseWriter, r *http.Request) {
	workouts, err := h.store.List()
	if err != nil {
		slog.Error("list workouts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list workouts")
		return
	}
	if workouts == nil {
		workouts = []model.Workout{}
	}
	writeJSON(w, http.StatusOK, workouts)
}

func (h *WorkoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req workoutRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	workout, err := h.store.Create(req.toModel())
	if err != nil {
		slog.Error("create workout", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create workout")
		return
	}
	writeJSON(w, http.StatusCreated, workout)
}

func (h *WorkoutHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req workoutRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	workout, err := h.store.Update(r.PathValue("id"), req.toModel())
	if err != nil {
		slog.Error("update workout", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update workout")
		return
	}
	if workout == nil {
		writeError(w, http.StatusNotFound, "workout not found")
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (h *WorkoutHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.store.Delete(r.PathValue("id"))
	if err != nil {
		slog.Error("delete workout", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete workout")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "workout not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
