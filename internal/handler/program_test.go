package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/dukerupert/fitcoach/internal/model"
	"github.com/dukerupert/fitcoach/internal/store"
)

func setupPrograms(t *testing.T) (*ProgramHandler, *store.ProgramStore, *store.WorkoutStore) {
	t.Helper()
	db := setupTestDB(t)
	ps := store.NewProgramStore(db)
	ws := store.NewWorkoutStore(db)
	return NewProgramHandler(ps, ws, store.NewScheduleStore(db)), ps, ws
}

func TestProgramCreateAndGet(t *testing.T) {
	h, _, _ := setupPrograms(t)

	rec := serve("POST /api/admin/programs", h.Create, newRequest("POST", "/api/admin/programs",
		`{"title":"Strength Base","level":"beginner","duration_weeks":8,"price_monthly":29.5}`, ""))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, http.StatusCreated, rec.Body.String())
	}
	var created model.Program
	json.NewDecoder(rec.Body).Decode(&created)
	if created.ID == "" || created.Title != "Strength Base" {
		t.Fatalf("created = %+v", created)
	}

	rec = serve("GET /api/programs/{id}", h.Get, newRequest("GET", "/api/programs/"+created.ID, "", ""))
	if rec.Code != http.StatusOK {
		t.Errorf("get status = %d, want %d", rec.Code, http.StatusOK)
	}

	rec = serve("GET /api/programs/{id}", h.Get, newRequest("GET", "/api/programs/missing", "", ""))
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestProgramCreateValidation(t *testing.T) {
	h, _, _ := setupPrograms(t)

	rec := serve("POST /api/admin/programs", h.Create, newRequest("POST", "/api/admin/programs",
		`{"title":"","level":"elite","duration_weeks":0}`, ""))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestProgramUpdateAndDelete(t *testing.T) {
	h, ps, _ := setupPrograms(t)
	p, _ := ps.Create(model.Program{Title: "Old", Level: "beginner", DurationWeeks: 4})

	rec := serve("PUT /api/admin/programs/{id}", h.Update, newRequest("PUT", "/api/admin/programs/"+p.ID,
		`{"title":"New","level":"advanced","duration_weeks":6}`, ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d, want %d", rec.Code, http.StatusOK)
	}
	got, _ := ps.GetByID(p.ID)
	if got.Title != "New" || got.Level != "advanced" {
		t.Errorf("after update = %+v", got)
	}

	rec = serve("DELETE /api/admin/programs/{id}", h.Delete, newRequest("DELETE", "/api/admin/programs/"+p.ID, "", ""))
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	rec = serve("DELETE /api/admin/programs/{id}", h.Delete, newRequest("DELETE", "/api/admin/programs/"+p.ID, "", ""))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestScheduleWeekBoundedByDuration(t *testing.T) {
	h, ps, ws := setupPrograms(t)
	p, _ := ps.Create(model.Program{Title: "Four Weeks", Level: "beginner", DurationWeeks: 4})
	w, _ := ws.Create(model.Workout{Title: "Squats", DurationMinutes: 30, Difficulty: "beginner"})

	rec := serve("POST /api/admin/programs/{id}/schedule", h.AddScheduleEntry, newRequest("POST",
		"/api/admin/programs/"+p.ID+"/schedule", `{"workout_id":"`+w.ID+`","week_number":5,"day_number":1}`, ""))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("week beyond duration: status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	rec = serve("POST /api/admin/programs/{id}/schedule", h.AddScheduleEntry, newRequest("POST",
		"/api/admin/programs/"+p.ID+"/schedule", `{"workout_id":"`+w.ID+`","week_number":4,"day_number":2}`, ""))
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d (body %q)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	rec = serve("GET /api/programs/{id}/schedule", h.Schedule, newRequest("GET", "/api/programs/"+p.ID+"/schedule", "", ""))
	var entries []model.ProgramWorkout
	json.NewDecoder(rec.Body).Decode(&entries)
	if len(entries) != 1 || entries[0].Workout == nil || entries[0].Workout.Title != "Squats" {
		t.Errorf("schedule = %+v", entries)
	}

	rec = serve("DELETE /api/admin/schedule/{id}", h.DeleteScheduleEntry, newRequest("DELETE", "/api/admin/schedule/"+entries[0].ID, "", ""))
	if rec.Code != http.StatusNoContent {
		t.Errorf("delete entry status = %d, want %d", rec.Code, http.StatusNoContent)
	}
}

func TestScheduleUnknownWorkout(t *testing.T) {
	h, ps, _ := setupPrograms(t)
	p, _ := ps.Create(model.Program{Title: "P", Level: "beginner", DurationWeeks: 4})

	rec := serve("POST /api/admin/programs/{id}/schedule", h.AddScheduleEntry, newRequest("POST",
		"/api/admin/programs/"+p.ID+"/schedule", `{"workout_id":"nope","week_number":1,"day_number":1}`, ""))
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
