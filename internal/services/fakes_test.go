package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"campus-backend/internal/models"
)

// In-memory stores backing the engine tests. They mirror the Postgres
// repos' contracts, including pgx.ErrNoRows and the unique violations the
// eligibility gate depends on.

type fakePoolStore struct {
	mu          sync.Mutex
	pools       map[uuid.UUID]*models.Pool
	memberships map[uuid.UUID][]models.PoolMembership
}

func newFakePoolStore() *fakePoolStore {
	return &fakePoolStore{
		pools:       make(map[uuid.UUID]*models.Pool),
		memberships: make(map[uuid.UUID][]models.PoolMembership),
	}
}

func (s *fakePoolStore) Create(ctx context.Context, p *models.Pool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = uuid.New()
	p.IsActive = true
	p.CreatedAt = time.Now()
	clone := *p
	s.pools[p.ID] = &clone
	return nil
}

func (s *fakePoolStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.pools[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *p
	clone.QuizIDs = nil
	for _, m := range s.memberships[id] {
		clone.QuizIDs = append(clone.QuizIDs, m.QuizID)
	}
	return &clone, nil
}

func (s *fakePoolStore) ListByCourse(ctx context.Context, courseID uuid.UUID) ([]*models.Pool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var pools []*models.Pool
	for _, p := range s.pools {
		if p.CourseID == courseID && p.IsActive {
			clone := *p
			pools = append(pools, &clone)
		}
	}
	return pools, nil
}

func (s *fakePoolStore) AddQuiz(ctx context.Context, poolID, quizID, addedBy uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.memberships[poolID] {
		if m.QuizID == quizID {
			return false, nil
		}
	}
	s.memberships[poolID] = append(s.memberships[poolID], models.PoolMembership{
		PoolID:  poolID,
		QuizID:  quizID,
		AddedBy: addedBy,
		AddedAt: time.Now(),
	})
	return true, nil
}

func (s *fakePoolStore) RemoveQuiz(ctx context.Context, poolID, quizID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := s.memberships[poolID]
	for i, m := range members {
		if m.QuizID == quizID {
			s.memberships[poolID] = append(members[:i], members[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (s *fakePoolStore) Memberships(ctx context.Context, poolID uuid.UUID) ([]models.PoolMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.PoolMembership(nil), s.memberships[poolID]...), nil
}

func (s *fakePoolStore) Deactivate(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p, ok := s.pools[id]; ok {
		p.IsActive = false
	}
	return nil
}

type fakeQuizStore struct {
	mu      sync.Mutex
	quizzes map[uuid.UUID]*models.Quiz
}

func newFakeQuizStore() *fakeQuizStore {
	return &fakeQuizStore{quizzes: make(map[uuid.UUID]*models.Quiz)}
}

func (s *fakeQuizStore) put(authorID uuid.UUID, questions []models.Question) *models.Quiz {
	s.mu.Lock()
	defer s.mu.Unlock()
	questionsJSON, _ := json.Marshal(questions)
	quiz := &models.Quiz{
		ID:            uuid.New(),
		AuthorID:      authorID,
		Title:         "quiz",
		QuestionsJSON: questionsJSON,
		QuestionCount: len(questions),
		CreatedAt:     time.Now(),
	}
	s.quizzes[quiz.ID] = quiz
	return quiz
}

func (s *fakeQuizStore) setQuestions(quizID uuid.UUID, questions []models.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()
	questionsJSON, _ := json.Marshal(questions)
	s.quizzes[quizID].QuestionsJSON = questionsJSON
	s.quizzes[quizID].QuestionCount = len(questions)
}

func (s *fakeQuizStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	quiz, ok := s.quizzes[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *quiz
	return &clone, nil
}

func (s *fakeQuizStore) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*models.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var quizzes []*models.Quiz
	for _, id := range ids {
		if quiz, ok := s.quizzes[id]; ok {
			clone := *quiz
			quizzes = append(quizzes, &clone)
		}
	}
	return quizzes, nil
}

type fakeCourseStore struct {
	courses map[uuid.UUID]*models.Course
	units   map[uuid.UUID]*models.Unit
	videos  map[uuid.UUID]*models.Video
}

func newFakeCourseStore() *fakeCourseStore {
	return &fakeCourseStore{
		courses: make(map[uuid.UUID]*models.Course),
		units:   make(map[uuid.UUID]*models.Unit),
		videos:  make(map[uuid.UUID]*models.Video),
	}
}

func (s *fakeCourseStore) addCourse() *models.Course {
	course := &models.Course{ID: uuid.New(), Title: "course", CreatedBy: uuid.New()}
	s.courses[course.ID] = course
	return course
}

func (s *fakeCourseStore) addUnit(courseID uuid.UUID, position int) *models.Unit {
	unit := &models.Unit{ID: uuid.New(), CourseID: courseID, Title: "unit", Position: position}
	s.units[unit.ID] = unit
	return unit
}

func (s *fakeCourseStore) addVideo(unitID uuid.UUID, position int) *models.Video {
	video := &models.Video{ID: uuid.New(), UnitID: unitID, Title: "video", Position: position}
	s.videos[video.ID] = video
	return video
}

func (s *fakeCourseStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Course, error) {
	if course, ok := s.courses[id]; ok {
		return course, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeCourseStore) GetUnit(ctx context.Context, id uuid.UUID) (*models.Unit, error) {
	if unit, ok := s.units[id]; ok {
		return unit, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeCourseStore) GetVideo(ctx context.Context, id uuid.UUID) (*models.Video, error) {
	if video, ok := s.videos[id]; ok {
		return video, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeCourseStore) NextVideoInUnit(ctx context.Context, unitID uuid.UUID, position int) (*models.Video, error) {
	var next *models.Video
	for _, v := range s.videos {
		if v.UnitID != unitID || v.Position <= position {
			continue
		}
		if next == nil || v.Position < next.Position {
			next = v
		}
	}
	if next == nil {
		return nil, pgx.ErrNoRows
	}
	return next, nil
}

func (s *fakeCourseStore) NextUnitInCourse(ctx context.Context, courseID uuid.UUID, position int) (*models.Unit, error) {
	var next *models.Unit
	for _, u := range s.units {
		if u.CourseID != courseID || u.Position <= position {
			continue
		}
		if next == nil || u.Position < next.Position {
			next = u
		}
	}
	if next == nil {
		return nil, pgx.ErrNoRows
	}
	return next, nil
}

type fakeAttemptStore struct {
	mu       sync.Mutex
	attempts map[uuid.UUID]*models.Attempt
}

func newFakeAttemptStore() *fakeAttemptStore {
	return &fakeAttemptStore{attempts: make(map[uuid.UUID]*models.Attempt)}
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "pool_attempts_one_open"}
}

func (s *fakeAttemptStore) Create(ctx context.Context, a *models.Attempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.attempts {
		if existing.PoolID != a.PoolID || existing.StudentID != a.StudentID {
			continue
		}
		if existing.Status == models.AttemptInProgress || existing.Passed {
			return uniqueViolation()
		}
	}
	a.ID = uuid.New()
	a.Status = models.AttemptInProgress
	a.StartedAt = time.Now()
	if a.AnswersJSON == nil {
		a.AnswersJSON = json.RawMessage("[]")
	}
	clone := *a
	s.attempts[a.ID] = &clone
	return nil
}

func (s *fakeAttemptStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.attempts[id]; ok {
		clone := *a
		return &clone, nil
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeAttemptStore) GetInProgress(ctx context.Context, poolID, studentID uuid.UUID) (*models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.PoolID == poolID && a.StudentID == studentID && a.Status == models.AttemptInProgress {
			clone := *a
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeAttemptStore) GetPassed(ctx context.Context, poolID, studentID uuid.UUID) (*models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.attempts {
		if a.PoolID == poolID && a.StudentID == studentID && a.Passed {
			clone := *a
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (s *fakeAttemptStore) GetLatestSubmitted(ctx context.Context, poolID, studentID uuid.UUID) (*models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest *models.Attempt
	for _, a := range s.attempts {
		if a.PoolID != poolID || a.StudentID != studentID || a.Status != models.AttemptSubmitted {
			continue
		}
		if latest == nil || (a.CompletedAt != nil && latest.CompletedAt != nil && a.CompletedAt.After(*latest.CompletedAt)) {
			latest = a
		}
	}
	if latest == nil {
		return nil, pgx.ErrNoRows
	}
	clone := *latest
	return &clone, nil
}

func (s *fakeAttemptStore) Submit(ctx context.Context, id uuid.UUID, score, maxScore int, percentage float64, passed bool, answersJSON json.RawMessage, timeSpentSeconds int, completedAt time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.attempts[id]
	if !ok || a.Status != models.AttemptInProgress {
		return false, nil
	}
	a.Score = score
	a.MaxScore = maxScore
	a.Percentage = percentage
	a.Passed = passed
	a.Status = models.AttemptSubmitted
	a.AnswersJSON = answersJSON
	a.TimeSpentSeconds = &timeSpentSeconds
	a.CompletedAt = &completedAt
	return true, nil
}

func (s *fakeAttemptStore) ListSubmittedByPool(ctx context.Context, poolID uuid.UUID) ([]*models.Attempt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var attempts []*models.Attempt
	for _, a := range s.attempts {
		if a.PoolID == poolID && a.Status == models.AttemptSubmitted {
			clone := *a
			attempts = append(attempts, &clone)
		}
	}
	return attempts, nil
}

type unlockKey struct {
	student, course, content uuid.UUID
}

type fakeUnlockStore struct {
	mu      sync.Mutex
	set     map[unlockKey]time.Time
	addCall int
}

func newFakeUnlockStore() *fakeUnlockStore {
	return &fakeUnlockStore{set: make(map[unlockKey]time.Time)}
}

func (s *fakeUnlockStore) Add(ctx context.Context, studentID, courseID, contentID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addCall++
	key := unlockKey{studentID, courseID, contentID}
	if _, ok := s.set[key]; !ok {
		s.set[key] = time.Now()
	}
	return nil
}

func (s *fakeUnlockStore) ListForStudent(ctx context.Context, studentID, courseID uuid.UUID) ([]models.Unlock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var unlocks []models.Unlock
	for key, at := range s.set {
		if key.student == studentID && key.course == courseID {
			unlocks = append(unlocks, models.Unlock{
				StudentID:  key.student,
				CourseID:   key.course,
				ContentID:  key.content,
				UnlockedAt: at,
			})
		}
	}
	return unlocks, nil
}

type fakeEventSink struct {
	mu         sync.Mutex
	audits     []models.AuditEvent
	reconciles []uuid.UUID
}

func (s *fakeEventSink) RecordAudit(ctx context.Context, event models.AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, event)
}

func (s *fakeEventSink) EnqueueReconcile(ctx context.Context, attemptID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconciles = append(s.reconciles, attemptID)
}

type failingUnlocker struct {
	err   error
	calls int
}

func (u *failingUnlocker) ApplyForAttempt(ctx context.Context, attempt *models.Attempt, pool *models.Pool) error {
	u.calls++
	return u.err
}

// makeQuestions builds n four-option questions worth the given points each.
func makeQuestions(n, points int) []models.Question {
	questions := make([]models.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, models.Question{
			ID:           uuid.New(),
			Prompt:       "prompt",
			Options:      []string{"a", "b", "c", "d"},
			CorrectIndex: i % 4,
			Points:       points,
		})
	}
	return questions
}
