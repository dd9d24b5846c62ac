package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"campus-backend/internal/handlers"
	"campus-backend/internal/middleware"
	"campus-backend/internal/models"
)

func New(
	jwtAuth *middleware.JWTAuth,
	authHandler *handlers.AuthHandler,
	courseHandler *handlers.CourseHandler,
	quizHandler *handlers.QuizHandler,
	poolHandler *handlers.PoolHandler,
	frontendURL string,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS(frontendURL))

	// Auth rate limiter (10 req/min per IP)
	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	staff := middleware.RequireRole(models.RoleInstructor, models.RoleCoordinator)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {

		// ──── Auth Routes (public) ────
		r.Route("/auth", func(r chi.Router) {
			r.Use(authLimiter.Middleware)
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
		})

		// ──── Course Catalog Routes ────
		r.Route("/courses", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Get("/{id}/pools", poolHandler.ListForCourse)
			r.Get("/{id}/unlocks", courseHandler.Unlocks)

			r.Group(func(r chi.Router) {
				r.Use(staff)
				r.Post("/", courseHandler.Create)
				r.Post("/{id}/units", courseHandler.CreateUnit)
			})
		})

		r.Route("/units", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(staff)
			r.Post("/{id}/videos", courseHandler.CreateVideo)
		})

		// ──── Quiz Authoring Routes ────
		r.Route("/quizzes", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)
			r.Use(staff)
			r.Post("/", quizHandler.Create)
			r.Get("/", quizHandler.List)
			r.Get("/{id}", quizHandler.Get)
			r.Delete("/{id}", quizHandler.Delete)
		})

		// ──── Pool Routes ────
		r.Route("/pools", func(r chi.Router) {
			r.Use(jwtAuth.Middleware)

			// Student-facing attempt lifecycle
			r.Get("/{id}/for-student", poolHandler.ForStudent)
			r.Post("/{id}/submit", poolHandler.Submit)
			r.Get("/{id}", poolHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(staff)
				r.Post("/", poolHandler.Create)
				r.Post("/{id}/quizzes", poolHandler.AddQuiz)
				r.Delete("/{id}/quizzes/{quizID}", poolHandler.RemoveQuiz)
				r.Delete("/{id}", poolHandler.Deactivate)
				r.Get("/{id}/analytics", poolHandler.Analytics)
			})
		})
	})

	return r
}
