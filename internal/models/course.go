package models

import (
	"time"

	"github.com/google/uuid"
)

type Course struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	CreatedBy uuid.UUID `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// Unit is an ordered chapter within a course. Position is 0-based and
// unique per course.
type Unit struct {
	ID       uuid.UUID `json:"id"`
	CourseID uuid.UUID `json:"course_id"`
	Title    string    `json:"title"`
	Position int       `json:"position"`
}

// Video is an ordered content item within a unit. Position is 0-based and
// unique per unit.
type Video struct {
	ID       uuid.UUID `json:"id"`
	UnitID   uuid.UUID `json:"unit_id"`
	Title    string    `json:"title"`
	Position int       `json:"position"`
}

type CreateCourseRequest struct {
	Title string `json:"title"`
}

type CreateUnitRequest struct {
	Title    string `json:"title"`
	Position int    `json:"position"`
}

type CreateVideoRequest struct {
	Title    string `json:"title"`
	Position int    `json:"position"`
}

// Unlock is one row of a student's unlocked-content set for a course.
// The set only ever grows; re-adding an item is a no-op.
type Unlock struct {
	StudentID  uuid.UUID `json:"student_id"`
	CourseID   uuid.UUID `json:"course_id"`
	ContentID  uuid.UUID `json:"content_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}
