package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campus-backend/internal/config"
	"campus-backend/internal/database"
	"campus-backend/internal/handlers"
	"campus-backend/internal/middleware"
	"campus-backend/internal/repository"
	"campus-backend/internal/router"
	"campus-backend/internal/services"
	"campus-backend/internal/worker"
)

func main() {
	log.Println("Starting Campus Backend...")

	// ──── Step 1: Load Environment Variables ────
	cfg := config.Load()
	log.Println("✓ Environment variables loaded")

	// ──── Step 2: Initialize PostgreSQL Connection Pool ────
	pool, err := database.NewPostgresPool(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("✗ PostgreSQL connection failed: %v", err)
	}
	defer pool.Close()
	log.Println("✓ PostgreSQL connected")

	// ──── Step 3: Initialize Redis ────
	redisClient, err := database.NewRedisClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("✗ Redis connection failed: %v", err)
	}
	defer redisClient.Close()
	log.Println("✓ Redis connected")

	// ──── Step 4: Run Database Migrations ────
	if err := database.RunMigrations(pool, "migrations"); err != nil {
		log.Fatalf("✗ Database migration failed: %v", err)
	}
	log.Println("✓ Database migrations applied")

	// ──── Initialize Repositories ────
	userRepo := repository.NewUserRepo(pool)
	courseRepo := repository.NewCourseRepo(pool)
	quizRepo := repository.NewQuizRepo(pool)
	poolRepo := repository.NewPoolRepo(pool)
	attemptRepo := repository.NewAttemptRepo(pool)
	unlockRepo := repository.NewUnlockRepo(pool)
	auditRepo := repository.NewAuditRepo(pool)

	// ──── Initialize Services ────
	jwtAuth := middleware.NewJWTAuth(cfg.JWTSecret)
	events := services.NewEventQueue(redisClient)
	authService := services.NewAuthService(userRepo, jwtAuth)
	poolService := services.NewPoolService(poolRepo, quizRepo, courseRepo, events)
	unlockService := services.NewUnlockService(courseRepo, unlockRepo, attemptRepo, poolRepo)
	attemptService := services.NewAttemptService(poolRepo, attemptRepo, poolService, unlockService, events, cfg.CooldownHours, nil)
	analyticsService := services.NewAnalyticsService(poolRepo, quizRepo, attemptRepo)

	// ──── Initialize Handlers ────
	authHandler := handlers.NewAuthHandler(authService)
	courseHandler := handlers.NewCourseHandler(courseRepo, unlockService)
	quizHandler := handlers.NewQuizHandler(quizRepo)
	poolHandler := handlers.NewPoolHandler(poolService, attemptService, analyticsService)

	// ──── Step 5: Start Side-Effect Worker Pool ────
	workerPool := worker.NewPool(redisClient, auditRepo, unlockService, cfg.WorkerCount)
	workerPool.Start()
	log.Printf("✓ Worker pool started (%d goroutines)", cfg.WorkerCount)

	// ──── Step 6: Start HTTP Server ────
	r := router.New(
		jwtAuth,
		authHandler,
		courseHandler,
		quizHandler,
		poolHandler,
		cfg.FrontendURL,
	)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down...")
		workerPool.Stop()

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		server.Shutdown(ctx)
	}()

	log.Printf("✓ Campus Backend ready on http://localhost:%s", cfg.Port)
	log.Printf("  API: http://localhost:%s/api/v1", cfg.Port)

	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server error: %v", err)
	}
}
