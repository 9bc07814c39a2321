package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/markbook-app/markbook/internal/aigrade"
	"github.com/markbook-app/markbook/internal/audit"
	"github.com/markbook-app/markbook/internal/auth"
	"github.com/markbook-app/markbook/internal/cohort"
	"github.com/markbook-app/markbook/internal/quiz"
	"github.com/markbook-app/markbook/internal/review"
)

// Deps bundles everything the router serves. Grader may be nil when no
// model endpoint is configured; Audit may be nil when running without a
// database.
type Deps struct {
	Store   quiz.Store
	Review  *review.Service
	Cohort  *cohort.Service
	Grader  *aigrade.Service
	Auth    *auth.AuthService
	Audit   *audit.Log
	Names   Names
	Origins []string
}

// NewRouter mounts the full teacher-review API.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.Origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Post("/auth/login", auth.LoginHandler(d.Auth))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(d.Auth))

		pr.Route("/quizzes", func(qr chi.Router) {
			qr.Get("/", ListQuizzesHandler(d.Store))
			qr.Post("/", CreateQuizHandler(d.Store))
			qr.Put("/{quizID}", PutQuizHandler(d.Store))
			qr.Get("/{quizID}", GetQuizHandler(d.Store))
			qr.Post("/{quizID}/attempts", SubmitAttemptHandler(d.Review, d.Store))
			qr.Post("/{quizID}/responses", ImportResponseHandler(d.Review, d.Audit))
			qr.Get("/{quizID}/responses", ListResponsesHandler(d.Store, d.Names))
			qr.Get("/{quizID}/summary", SummaryHandler(d.Cohort))
			qr.Post("/{quizID}/ai-grade", AIGradeCohortHandler(d.Grader, d.Store))
		})

		pr.Route("/responses/{quizID}/{studentID}", func(rr chi.Router) {
			rr.Get("/", GetResponseHandler(d.Store))
			rr.Get("/grading", GetGradingHandler(d.Store))
			rr.Post("/grading", ApplyGradesHandler(d.Review, d.Audit))
			rr.Post("/approve", ApproveAIGradesHandler(d.Review, d.Audit))
			rr.Get("/audit", AuditTrailHandler(d.Audit))
		})
	})

	return r
}
