package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"campus-backend/internal/middleware"
	"campus-backend/internal/models"
	"campus-backend/internal/repository"
	"campus-backend/internal/services"
)

type CourseHandler struct {
	courseRepo    *repository.CourseRepo
	unlockService *services.UnlockService
}

func NewCourseHandler(courseRepo *repository.CourseRepo, unlockService *services.UnlockService) *CourseHandler {
	return &CourseHandler{courseRepo: courseRepo, unlockService: unlockService}
}

func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCourseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Title is required", r))
		return
	}

	course := &models.Course{
		Title:     req.Title,
		CreatedBy: middleware.GetUserID(r.Context()),
	}
	if err := h.courseRepo.Create(r.Context(), course); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create course", r))
		return
	}

	writeJSON(w, http.StatusCreated, course)
}

func (h *CourseHandler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid course ID", r))
		return
	}

	if _, err := h.courseRepo.GetByID(r.Context(), courseID); err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Course not found", r))
		return
	}

	var req models.CreateUnitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Title is required", r))
		return
	}

	unit := &models.Unit{
		CourseID: courseID,
		Title:    req.Title,
		Position: req.Position,
	}
	if err := h.courseRepo.CreateUnit(r.Context(), unit); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create unit", r))
		return
	}

	writeJSON(w, http.StatusCreated, unit)
}

func (h *CourseHandler) CreateVideo(w http.ResponseWriter, r *http.Request) {
	unitID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid unit ID", r))
		return
	}

	if _, err := h.courseRepo.GetUnit(r.Context(), unitID); err != nil {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Unit not found", r))
		return
	}

	var req models.CreateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}
	if req.Title == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Title is required", r))
		return
	}

	video := &models.Video{
		UnitID:   unitID,
		Title:    req.Title,
		Position: req.Position,
	}
	if err := h.courseRepo.CreateVideo(r.Context(), video); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create video", r))
		return
	}

	writeJSON(w, http.StatusCreated, video)
}

// Unlocks returns the calling student's unlocked-content set for a course.
func (h *CourseHandler) Unlocks(w http.ResponseWriter, r *http.Request) {
	courseID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid course ID", r))
		return
	}

	studentID := middleware.GetUserID(r.Context())
	unlocks, err := h.unlockService.ListForStudent(r.Context(), studentID, courseID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch unlocks", r))
		return
	}

	contentIDs := make([]uuid.UUID, 0, len(unlocks))
	for _, u := range unlocks {
		contentIDs = append(contentIDs, u.ContentID)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"course_id":   courseID,
		"content_ids": contentIDs,
	})
}
