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

	"neurohire/internal/api"
	"neurohire/internal/app/service"
	"neurohire/internal/app/worker"
	"neurohire/internal/common/security"
	"neurohire/internal/domain/repository"
	"neurohire/internal/platform/config"
	"neurohire/internal/platform/database"
	"neurohire/internal/platform/queue"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	companyRepo := repository.NewPgCompanyRepository(database.DB)
	problemRepo := repository.NewPgProblemRepository(database.DB)
	assessmentRepo := repository.NewPgAssessmentRepository(database.DB)
	attemptRepo := repository.NewPgCandidateAssessmentRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)

	// 6. Initialize Services
	accessService := service.NewAccessService(companyRepo)
	authService := service.NewAuthService(userRepo)
	userService := service.NewUserService(userRepo)
	companyService := service.NewCompanyService(companyRepo, userRepo, database.DB)
	problemService := service.NewProblemService(problemRepo)
	assessmentService := service.NewAssessmentService(assessmentRepo, problemRepo, companyRepo, attemptRepo, userRepo, database.DB)
	lifecycleService := service.NewCandidateAssessmentService(attemptRepo, assessmentRepo, submissionRepo)
	submissionService := service.NewSubmissionService(submissionRepo, assessmentRepo, lifecycleService)

	// 7. Initialize Expiry Worker (as a goroutine)
	expiryWorker := worker.NewExpiryWorker(queue.RDB, attemptRepo)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go expiryWorker.Start(workerCtx)
	fmt.Println("Expiry worker started.")

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(
		authService,
		userService,
		companyService,
		problemService,
		assessmentService,
		lifecycleService,
		submissionService,
		accessService,
	)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop

	log.Println("Shutting down server...")
	workerCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and worker stopped gracefully.")
}
