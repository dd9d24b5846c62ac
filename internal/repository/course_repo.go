package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"campus-backend/internal/models"
)

type CourseRepo struct {
	pool *pgxpool.Pool
}

func NewCourseRepo(pool *pgxpool.Pool) *CourseRepo {
	return &CourseRepo{pool: pool}
}

func (r *CourseRepo) Create(ctx context.Context, course *models.Course) error {
	course.ID = uuid.New()
	query := `INSERT INTO courses (id, title, created_by) VALUES ($1, $2, $3) RETURNING created_at`
	return r.pool.QueryRow(ctx, query, course.ID, course.Title, course.CreatedBy).Scan(&course.CreatedAt)
}

func (r *CourseRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	course := &models.Course{}
	query := `SELECT id, title, created_by, created_at FROM courses WHERE id = $1`
	err := r.pool.QueryRow(ctx, query, id).Scan(&course.ID, &course.Title, &course.CreatedBy, &course.CreatedAt)
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (r *CourseRepo) CreateUnit(ctx context.Context, unit *models.Unit) error {
	unit.ID = uuid.New()
	_, err := r.pool.Exec(ctx,
		"INSERT INTO units (id, course_id, title, position) VALUES ($1, $2, $3, $4)",
		unit.ID, unit.CourseID, unit.Title, unit.Position,
	)
	return err
}

func (r *CourseRepo) GetUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	unit := &models.Unit{}
	query := `SELECT id, course_id, title, position FROM units WHERE id = $1`
	err := r.pool.QueryRow(ctx, query, id).Scan(&unit.ID, &unit.CourseID, &unit.Title, &unit.Position)
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (r *CourseRepo) CreateVideo(ctx context.Context, video *models.Video) error {
	video.ID = uuid.New()
	_, err := r.pool.Exec(ctx,
		"INSERT INTO videos (id, unit_id, title, position) VALUES ($1, $2, $3, $4)",
		video.ID, video.UnitID, video.Title, video.Position,
	)
	return err
}

func (r *CourseRepo) GetVideo(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	video := &models.Video{}
	query := `SELECT id, unit_id, title, position FROM videos WHERE id = $1`
	err := r.pool.QueryRow(ctx, query, id).Scan(&video.ID, &video.UnitID, &video.Title, &video.Position)
	if err != nil {
		return nil, err
	}
	return video, nil
}

// NextVideoInUnit returns the video immediately after the given position
// within a unit. pgx.ErrNoRows means the anchor was the last item.
func (r *CourseRepo) NextVideoInUnit(ctx context.Context, unitID uuid.UUID, position int) (*models.Video, error) {
	video := &models.Video{}
	query := `SELECT id, unit_id, title, position FROM videos
		WHERE unit_id = $1 AND position > $2
		ORDER BY position ASC LIMIT 1`
	err := r.pool.QueryRow(ctx, query, unitID, position).Scan(&video.ID, &video.UnitID, &video.Title, &video.Position)
	if err != nil {
		return nil, err
	}
	return video, nil
}

// NextUnitInCourse returns the unit immediately after the given position
// within a course.
func (r *CourseRepo) NextUnitInCourse(ctx context.Context, courseID uuid.UUID, position int) (*models.Unit, error) {
	unit := &models.Unit{}
	query := `SELECT id, course_id, title, position FROM units
		WHERE course_id = $1 AND position > $2
		ORDER BY position ASC LIMIT 1`
	err := r.pool.QueryRow(ctx, query, courseID, position).Scan(&unit.ID, &unit.CourseID, &unit.Title, &unit.Position)
	if err != nil {
		return nil, err
	}
	return unit, nil
}
