package api

import (
	"net/http"
	"time"

	"neurohire/internal/api/handler"
	"neurohire/internal/app/service"
	"neurohire/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	userService *service.UserService,
	companyService *service.CompanyService,
	problemService *service.ProblemService,
	assessmentService *service.AssessmentService,
	lifecycleService *service.CandidateAssessmentService,
	submissionService *service.SubmissionService,
	accessService *service.AccessService,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the Bearer token when present and puts claims in context;
	// the Authenticator middleware on protected routes enforces it.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Route("/auth", authHandler.RegisterRoutes)

		userHandler := handler.NewUserHandler(userService, accessService)
		v1.Route("/users", userHandler.RegisterRoutes)

		companyHandler := handler.NewCompanyHandler(companyService, accessService)
		v1.Route("/companies", companyHandler.RegisterRoutes)
		v1.Route("/job-positions", companyHandler.RegisterJobPositionRoutes)

		problemHandler := handler.NewProblemHandler(problemService, accessService)
		v1.Route("/problems", problemHandler.RegisterRoutes)

		assessmentHandler := handler.NewAssessmentHandler(assessmentService, accessService)
		v1.Route("/assessments", assessmentHandler.RegisterRoutes)

		attemptHandler := handler.NewCandidateAssessmentHandler(lifecycleService, submissionService, accessService)
		v1.Route("/candidate-assessments", attemptHandler.RegisterRoutes)
		v1.Route("/extension-requests", attemptHandler.RegisterExtensionRoutes)

		submissionHandler := handler.NewSubmissionHandler(submissionService, accessService)
		v1.Route("/submissions", submissionHandler.RegisterRoutes)
	})

	return r
}
