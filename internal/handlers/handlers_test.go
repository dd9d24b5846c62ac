package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"campus-backend/internal/models"
	"campus-backend/internal/services"
)

func TestHandleServiceError_StatusAndCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"title": "Title is required"}}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"conflict", &services.ConflictError{Message: "Quiz is already in this pool"}, http.StatusConflict, "CONFLICT"},
		{"not found", &services.NotFoundError{Message: "Pool not found"}, http.StatusNotFound, "NOT_FOUND"},
		{"unauthorized", &services.UnauthorizedError{Message: "Invalid credentials"}, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"forbidden", &services.ForbiddenError{Message: "Access denied"}, http.StatusForbidden, "FORBIDDEN"},
		{"already passed", &services.AlreadyPassedError{}, http.StatusBadRequest, "ALREADY_PASSED"},
		{"cooldown", &services.CooldownActiveError{RemainingHours: 2}, http.StatusBadRequest, "COOLDOWN_ACTIVE"},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/pools", nil)
			req.Header.Set("X-Request-ID", "req-123")
			rr := httptest.NewRecorder()

			handleServiceError(rr, req, tc.err)

			if rr.Code != tc.status {
				t.Fatalf("expected status %d, got %d", tc.status, rr.Code)
			}

			var resp models.ErrorResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if resp.Error.Code != tc.code {
				t.Errorf("expected code %q, got %q", tc.code, resp.Error.Code)
			}
			if resp.Error.RequestID != "req-123" {
				t.Errorf("expected request id echoed, got %q", resp.Error.RequestID)
			}
		})
	}
}

func TestHandleServiceError_CooldownDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/pools/abc/submit", nil)
	rr := httptest.NewRecorder()

	handleServiceError(rr, req, &services.CooldownActiveError{RemainingHours: 2})

	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Error.Message != "Retry available in 2 hour(s)" {
		t.Errorf("unexpected message %q", resp.Error.Message)
	}
	if resp.Error.Fields["remaining_hours"] != "2" {
		t.Errorf("expected remaining_hours field, got %v", resp.Error.Fields)
	}
}

func TestValidateQuestion(t *testing.T) {
	valid := func() models.Question {
		return models.Question{
			Prompt:       "What is the capital of France?",
			Options:      []string{"Paris", "Lyon", "Nice"},
			CorrectIndex: 0,
			Points:       2,
		}
	}

	tests := []struct {
		name   string
		mutate func(*models.Question)
		field  string
	}{
		{"valid", func(q *models.Question) {}, ""},
		{"zero points allowed at validation", func(q *models.Question) { q.Points = 0 }, ""},
		{"empty prompt", func(q *models.Question) { q.Prompt = "" }, "questions[3].prompt"},
		{"single option", func(q *models.Question) { q.Options = []string{"Paris"} }, "questions[3].options"},
		{"no options", func(q *models.Question) { q.Options = nil }, "questions[3].options"},
		{"negative correct index", func(q *models.Question) { q.CorrectIndex = -1 }, "questions[3].correct_index"},
		{"correct index past options", func(q *models.Question) { q.CorrectIndex = 3 }, "questions[3].correct_index"},
		{"negative points", func(q *models.Question) { q.Points = -1 }, "questions[3].points"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			q := valid()
			tc.mutate(&q)

			fields := validateQuestion(&q, 3)
			if tc.field == "" {
				if fields != nil {
					t.Fatalf("expected no error, got %v", fields)
				}
				return
			}
			if _, ok := fields[tc.field]; !ok {
				t.Fatalf("expected error on %q, got %v", tc.field, fields)
			}
		})
	}
}

func TestSubmitRequest_Parsing(t *testing.T) {
	body := []byte(`{
		"answers": [
			{"question_id": "6f1f3f60-5ec7-4b2f-8f51-6f3dd1f6f111", "selected_option": 2}
		],
		"time_spent": 340
	}`)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pools/abc/submit", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	var parsed models.SubmitRequest
	if err := json.NewDecoder(req.Body).Decode(&parsed); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(parsed.Answers) != 1 || parsed.Answers[0].SelectedOption != 2 {
		t.Fatalf("unexpected answers %v", parsed.Answers)
	}
	if parsed.TimeSpentSeconds != 340 {
		t.Fatalf("expected time_spent 340, got %d", parsed.TimeSpentSeconds)
	}
}
