package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"campus-backend/internal/middleware"
	"campus-backend/internal/models"
	"campus-backend/internal/repository"
)

type QuizHandler struct {
	quizRepo *repository.QuizRepo
}

func NewQuizHandler(quizRepo *repository.QuizRepo) *QuizHandler {
	return &QuizHandler{quizRepo: quizRepo}
}

func (h *QuizHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Title is required", r))
		return
	}
	if len(req.Questions) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "At least one question is required", r))
		return
	}

	for i := range req.Questions {
		q := &req.Questions[i]
		if fields := validateQuestion(q, i); fields != nil {
			writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, r))
			return
		}
		if q.ID == uuid.Nil {
			q.ID = uuid.New()
		}
		if q.Points == 0 {
			q.Points = 1
		}
	}

	questionsJSON, err := json.Marshal(req.Questions)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to encode questions", r))
		return
	}

	quiz := &models.Quiz{
		AuthorID:      middleware.GetUserID(r.Context()),
		Title:         req.Title,
		QuestionsJSON: questionsJSON,
		QuestionCount: len(req.Questions),
	}

	if err := h.quizRepo.Create(r.Context(), quiz); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create quiz", r))
		return
	}

	writeJSON(w, http.StatusCreated, quiz)
}

func validateQuestion(q *models.Question, index int) map[string]string {
	key := func(field string) string { return fmt.Sprintf("questions[%d].%s", index, field) }

	if q.Prompt == "" {
		return map[string]string{key("prompt"): "Prompt is required"}
	}
	if len(q.Options) < 2 {
		return map[string]string{key("options"): "At least two options are required"}
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return map[string]string{key("correct_index"): "Correct index is out of range"}
	}
	if q.Points < 0 {
		return map[string]string{key("points"): "Points must not be negative"}
	}
	return nil
}

func (h *QuizHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	quizzes, err := h.quizRepo.ListByAuthor(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch quizzes", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"quizzes": quizzes})
}

func (h *QuizHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid quiz ID", r))
		return
	}

	quiz, err := h.quizRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Quiz not found", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	if quiz.AuthorID != userID && middleware.GetRole(r.Context()) != models.RoleCoordinator {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

func (h *QuizHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid quiz ID", r))
		return
	}

	quiz, err := h.quizRepo.GetByID(r.Context(), id)
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Quiz not found", r))
		return
	}

	userID := middleware.GetUserID(r.Context())
	if quiz.AuthorID != userID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Access denied", r))
		return
	}

	if err := h.quizRepo.Delete(r.Context(), id); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to delete quiz", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz deleted"})
}
