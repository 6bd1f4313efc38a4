package handler

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/fitcoach/internal/auth"
	"github.com/dukerupert/fitcoach/internal/model"
	"github.com/dukerupert/fitcoach/internal/store"
)

// MeHandler serves the signed-in student's own profile, program and
// subscription.
type MeHandler struct {
	users         *store.UserStore
	programs      *store.ProgramStore
	schedules     *store.ScheduleStore
	subscriptions *store.SubscriptionStore
}

func NewMeHandler(us *store.UserStore, ps *store.ProgramStore, ss *store.ScheduleStore, subs *store.SubscriptionStore) *MeHandler {
	return &MeHandler{users: us, programs: ps, schedules: ss, subscriptions: subs}
}

func (h *MeHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(auth.UserID(r.Context()))
	if err != nil {
		slog.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get profile")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *MeHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name" validate:"required,max=100"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}

	user, err := h.users.UpdateName(auth.UserID(r.Context()), strings.TrimSpace(req.Name))
	if err != nil {
		slog.Error("update user name", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}
	if user == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *MeHandler) SetProgram(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProgramID string `json:"program_id" validate:"required"`
	}
	if !decodeRequest(w, r, &req) {
		return
	}

	program, err := h.programs.GetByID(req.ProgramID)
	if err != nil {
		slog.Error("get program", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get program")
		return
	}
	if program == nil {
		writeError(w, http.StatusNotFound, "program not found")
		return
	}

	if err := h.users.SetCurrentProgram(auth.UserID(r.Context()), &program.ID); err != nil {
		slog.Error("set current program", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to start program")
		return
	}
	writeJSON(w, http.StatusOK, program)
}

// Program returns the student's current program with its schedule, or a
// null program when none is selected.
func (h *MeHandler) Program(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(auth.UserID(r.Context()))
	if err != nil {
		slog.Error("get user", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get program")
		return
	}
	if user == nil || user.CurrentProgramID == nil {
		writeJSON(w, http.StatusOK, map[string]any{"program": nil})
		return
	}

	program, err := h.programs.GetByID(*user.CurrentProgramID)
	if err != nil {
		slog.Error("get program", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get program")
		return
	}
	if program == nil {
		writeJSON(w, http.StatusOK, map[string]any{"program": nil})
		return
	}

	schedule, err := h.schedules.ListByProgram(program.ID)
	if err != nil {
		slog.Error("list schedule", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get program")
		return
	}
	if schedule == nil {
		schedule = []model.ProgramWorkout{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"program": program, "schedule": schedule})
}

func (h *MeHandler) Subscription(w http.ResponseWriter, r *http.Request) {
	sub, err := h.subscriptions.LatestForUser(auth.UserID(r.Context()))
	if err != nil {
		slog.Error("get subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get subscription")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"subscription": sub,
		"is_active":    sub.IsActive(),
	})
}
