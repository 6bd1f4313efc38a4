package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/fitcoach/internal/model"
	"github.com/dukerupert/fitcoach/internal/store"
)

type ProgramHandler struct {
	programs  *store.ProgramStore
	workouts  *store.WorkoutStore
	schedules *store.ScheduleStore
}

func NewProgramHandler(ps *store.ProgramStore, ws *store.WorkoutStore, ss *store.ScheduleStore) *ProgramHandler {
	return &ProgramHandler{programs: ps, workouts: ws, schedules: ss}
}

type programRequest struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Description   string   `json:"description" validate:"max=5000"`
	ImageURL      string   `json:"image_url" validate:"omitempty,url"`
	Level         string   `json:"level" validate:"required,oneof=beginner intermediate advanced"`
	DurationWeeks int      `json:"duration_weeks" validate:"required,min=1,max=104"`
	PriceMonthly  *float64 `json:"price_monthly" validate:"omitempty,min=0"`
}

func (req programRequest) toModel() model.Program {
	return model.Program{
		Title:         strings.TrimSpace(req.Title),
		Description:   req.Description,
		ImageURL:      req.ImageURL,
		Level:         req.Level,
		DurationWeeks: req.DurationWeeks,
		PriceMonthly:  req.PriceMonthly,
	}
}

func (h *ProgramHandler) List(w http.ResponseWriter, r *http.Request) {
	programs, err := h.programs.List()
	if err != nil {
		slog.Error("list programs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list programs")
		return
	}
	if programs == nil {
		programs = []model.Program{}
	}
	writeJSON(w, http.StatusOK, programs)
}

func (h *ProgramHandler) Get(w http.ResponseWriter, r *http.Request) {
	program, err := h.programs.GetByID(r.PathValue("id"))
	if err != nil {
		slog.Error("get program", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get program")
		return
	}
	if program == nil {
		writeError(w, http.StatusNotFound, "program not found")
		return
	}
	writeJSON(w, http.StatusOK, program)
}

func (h *ProgramHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req programRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	program, err := h.programs.Create(req.toModel())
	if err != nil {
		slog.Error("create program", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create program")
		return
	}
	writeJSON(w, http.StatusCreated, program)
}

func (h *ProgramHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req programRequest
	if !decodeRequest(w, r, &req) {
		return
	}

	program, err := h.programs.Update(r.PathValue("id"), req.toModel())
	if err != nil {
		slog.Error("update program", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update program")
		return
	}
	if program == nil {
		writeError(w, http.StatusNotFound, "program not found")
		return
	}
	writeJSON(w, http.StatusOK, program)
}

func (h *ProgramHandler) Delete(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.programs.Delete(r.PathValue("id"))
	if err != nil {
		slog.Error("delete program", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete program")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "program not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Schedule returns the program's workouts ordered by week then day.
func (h *ProgramHandler) Schedule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	program, err := h.programs.GetByID(id)
	if err != nil {
		slog.Error("get program", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get program")
		return
	}
	if program == nil {
		writeError(w, http.StatusNotFound, "program not found")
		return
	}

	entries, err := h.schedules.ListByProgram(id)
	if err != nil {
		slog.Error("list schedule", "program_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list schedule")
		return
	}
	if entries == nil {
		entries = []model.ProgramWorkout{}
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *ProgramHandler) AddScheduleEntry(w http.ResponseWriter, r *http.Request) {
	programID := r.PathValue("id")
	var req struct {
		WorkoutID  string `json:"workout_id" validate:"required"`
		WeekNumber int    `json:"week_number" validate:"required,min=1"`
		DayNumber  int    `json:"day_number" validate:"required,min=1,max=7"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}

	program, err := h.programs.GetByID(programID)
	if err != nil {
		slog.Error("get program", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get program")
		return
	}
	if program == nil {
		writeError(w, http.StatusNotFound, "program not found")
		return
	}
	if req.WeekNumber > program.DurationWeeks {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": map[string]string{"week_number": "must not exceed the program duration"},
		})
		return
	}

	workout, err := h.workouts.GetByID(req.WorkoutID)
	if err != nil {
		slog.Error("get workout", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get workout")
		return
	}
	if workout == nil {
		writeError(w, http.StatusNotFound, "workout not found")
		return
	}

	entry, err := h.schedules.Add(programID, req.WorkoutID, req.WeekNumber, req.DayNumber)
	if err != nil {
		slog.Error("add schedule entry", "program_id", programID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to add workout to program")
		return
	}
	writeJSON(w, http.StatusCreated, entry)
}

func (h *ProgramHandler) DeleteScheduleEntry(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.schedules.Delete(r.PathValue("id"))
	if err != nil {
		slog.Error("delete schedule entry", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to remove workout from program")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "schedule entry not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
