package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dukerupert/fitcoach/internal/model"
	"github.com/dukerupert/fitcoach/internal/store"
)

// Reconciler retries subscriptions that arrived before their customer link.
type Reconciler interface {
	Reconcile(ctx context.Context) (reconciled, pending int, err error)
}

type AdminHandler struct {
	users         *store.UserStore
	programs      *store.ProgramStore
	workouts      *store.WorkoutStore
	subscriptions *store.SubscriptionStore
	reconciler    Reconciler
	logger        *slog.Logger
}

func NewAdminHandler(us *store.UserStore, ps *store.ProgramStore, ws *store.WorkoutStore, ss *store.SubscriptionStore, rec Reconciler, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		users:         us,
		programs:      ps,
		workouts:      ws,
		subscriptions: ss,
		reconciler:    rec,
		logger:        logger.With("component", "admin"),
	}
}

func (h *AdminHandler) Students(w http.ResponseWriter, r *http.Request) {
	students, err := h.users.ListByRole(model.RoleStudent)
	if err != nil {
		h.logger.Error("list students", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list students")
		return
	}
	if students == nil {
		students = []model.User{}
	}
	writeJSON(w, http.StatusOK, students)
}

func (h *AdminHandler) Subscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := h.subscriptions.ListWithUsers()
	if err != nil {
		h.logger.Error("list subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list subscriptions")
		return
	}
	if subs == nil {
		subs = []model.SubscriptionWithUser{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	students, err := h.users.CountByRole(model.RoleStudent)
	if err != nil {
		h.logger.Error("count students", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	programs, err := h.programs.Count()
	if err != nil {
		h.logger.Error("count programs", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	workouts, err := h.workouts.Count()
	if err != nil {
		h.logger.Error("count workouts", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	active, err := h.subscriptions.CountActive()
	if err != nil {
		h.logger.Error("count active subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{
		"students":             students,
		"programs":             programs,
		"workouts":             workouts,
		"active_subscriptions": active,
	})
}

func (h *AdminHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	reconciled, pending, err := h.reconciler.Reconcile(r.Context())
	if err != nil {
		h.logger.Error("reconcile subscriptions", "reconciled", reconciled, "pending", pending, "error", err)
		writeError(w, http.StatusInternalServerError, "reconcile failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"reconciled": reconciled, "pending": pending})
}
