package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestDecodeRequestValidation(t *testing.T) {
	var req struct {
		Title string `json:"title" validate:"required"`
		Level string `json:"level" validate:"oneof=beginner advanced"`
		Weeks int    `json:"duration_weeks" validate:"min=1"`
	}

	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"level":"expert","duration_weeks":0}`))
	rec := httptest.NewRecorder()

	if decodeRequest(rec, r, &req) {
		t.Fatal("expected validation failure")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	json.NewDecoder(rec.Body).Decode(&body)
	want := map[string]string{
		"title":          "is required",
		"level":          "must be one of: beginner advanced",
		"duration_weeks": "must be at least 1",
	}
	for field, msg := range want {
		if body.Fields[field] != msg {
			t.Errorf("fields[%q] = %q, want %q", field, body.Fields[field], msg)
		}
	}
}

func TestDecodeRequestInvalidJSON(t *testing.T) {
	var req struct{}
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{`))
	rec := httptest.NewRecorder()

	if decodeRequest(rec, r, &req) {
		t.Fatal("expected decode failure")
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}
