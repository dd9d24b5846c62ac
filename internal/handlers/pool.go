package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"campus-backend/internal/middleware"
	"campus-backend/internal/models"
	"campus-backend/internal/services"
)

type PoolHandler struct {
	poolService      *services.PoolService
	attemptService   *services.AttemptService
	analyticsService *services.AnalyticsService
}

func NewPoolHandler(poolService *services.PoolService, attemptService *services.AttemptService, analyticsService *services.AnalyticsService) *PoolHandler {
	return &PoolHandler{
		poolService:      poolService,
		attemptService:   attemptService,
		analyticsService: analyticsService,
	}
}

func (h *PoolHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	pool, err := h.poolService.Create(r.Context(), req, middleware.GetUserID(r.Context()))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"pool_id": pool.ID, "pool": pool})
}

func (h *PoolHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid pool ID", r))
		return
	}

	pool, err := h.poolService.Get(r.Context(), id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, pool)
}

func (h *PoolHandler) ListForCourse(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid course ID", r))
		return
	}

	pools, err := h.poolService.ListForCourse(r.Context(), courseID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch pools", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"pools": pools})
}

func (h *PoolHandler) AddQuiz(w http.ResponseWriter, r *http.Request) {
	poolID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid pool ID", r))
		return
	}

	var req models.AddQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	actorID := middleware.GetUserID(r.Context())
	if err := h.poolService.AddQuiz(r.Context(), poolID, req.QuizID, actorID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz added to pool"})
}

func (h *PoolHandler) RemoveQuiz(w http.ResponseWriter, r *http.Request) {
	poolID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid pool ID", r))
		return
	}
	quizID, err := uuid.Parse(chi.URLParam(r, "quizID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid quiz ID", r))
		return
	}

	actorID := middleware.GetUserID(r.Context())
	if err := h.poolService.RemoveQuiz(r.Context(), poolID, quizID, actorID); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Quiz removed from pool"})
}

func (h *PoolHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	poolID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid pool ID", r))
		return
	}

	ctx := r.Context()
	if err := h.poolService.Deactivate(ctx, poolID, middleware.GetUserID(ctx), middleware.GetRole(ctx)); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Pool deactivated"})
}

// ForStudent starts or resumes the caller's attempt. A student who already
// passed gets their terminal result instead of questions; one still in
// cooldown gets a COOLDOWN_ACTIVE rejection.
func (h *PoolHandler) ForStudent(w http.ResponseWriter, r *http.Request) {
	poolID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid pool ID", r))
		return
	}

	studentID := middleware.GetUserID(r.Context())
	attempt, err := h.attemptService.StartOrResume(r.Context(), studentID, poolID)
	if err != nil {
		var passedErr *services.AlreadyPassedError
		if errors.As(err, &passedErr) && passedErr.Attempt != nil {
			writeJSON(w, http.StatusOK, map[string]interface{}{
				"already_attempted": true,
				"attempt": models.AttemptResult{
					AttemptID:   passedErr.Attempt.ID,
					Score:       passedErr.Attempt.Score,
					MaxScore:    passedErr.Attempt.MaxScore,
					Percentage:  passedErr.Attempt.Percentage,
					Passed:      passedErr.Attempt.Passed,
					CompletedAt: passedErr.Attempt.CompletedAt,
				},
			})
			return
		}
		handleServiceError(w, r, err)
		return
	}

	pool, err := h.poolService.Get(r.Context(), poolID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	questions, err := attempt.StudentQuestions()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to decode attempt questions", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"attempt_id":      attempt.ID,
		"questions":       questions,
		"questions_count": len(questions),
		"time_limit":      pool.TimeLimitMinutes,
		"started_at":      attempt.StartedAt,
	})
}

func (h *PoolHandler) Submit(w http.ResponseWriter, r *http.Request) {
	poolID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid pool ID", r))
		return
	}

	var req models.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	studentID := middleware.GetUserID(r.Context())
	result, err := h.attemptService.Submit(r.Context(), studentID, poolID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *PoolHandler) Analytics(w http.ResponseWriter, r *http.Request) {
	poolID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid pool ID", r))
		return
	}

	analytics, err := h.analyticsService.PoolAnalytics(r.Context(), poolID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, analytics)
}
