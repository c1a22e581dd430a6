package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/quizroom/quizroom/internal/api/http"
	"github.com/quizroom/quizroom/internal/auth"
	"github.com/quizroom/quizroom/internal/config"
	"github.com/quizroom/quizroom/internal/db"
	"github.com/quizroom/quizroom/internal/logging"
	"github.com/quizroom/quizroom/internal/quiz"
	"github.com/quizroom/quizroom/internal/rbac"
	"github.com/quizroom/quizroom/internal/storage"
)

func main() {
	_ = godotenv.Load() // best effort, env wins
	cfg := config.FromEnv()

	logger := logging.New(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		logger.Error("db open failed", "err", err)
		os.Exit(1)
	}
	store := quiz.NewSQLStore(dbh, cfg.DBDriver)

	blobs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		logger.Error("blob store", "err", err)
		os.Exit(1)
	}

	tracker := quiz.NewTracker(store, logger)
	eval := quiz.NewEvaluator(store, blobs, logger)

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)
	users := auth.NewUserStore(dbh)
	if err := users.EnsureAdmin(ctx, cfg.AdminUser, cfg.AdminPass); err != nil {
		logger.Error("ensure admin", "err", err)
		os.Exit(1)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/register", auth.RegisterHandler(users))
	r.Post("/auth/login", auth.LoginHandler(authSvc, users))

	// assets routes (protected)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Route("/assets", func(ar chi.Router) {
			api.MountAssets(ar, blobs)
		})
	})

	// Protected API (JWT -> identity in context -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		// Admin: manage questions
		pr.With(rbac.Require("question:create")).
			Post("/questions", api.CreateQuestionHandler(store, blobs))
		pr.With(rbac.Require("question:edit")).
			Put("/questions/{questionID}", api.UpdateQuestionHandler(store))
		pr.With(rbac.Require("question:delete")).
			Delete("/questions/{questionID}", api.DeleteQuestionHandler(store))

		// Student/Admin: browse questions
		pr.With(rbac.Require("question:view")).
			Get("/questions", api.ListQuestionsHandler(store))
		pr.With(rbac.Require("question:view")).
			Get("/questions/{questionID}", api.GetQuestionHandler(store))

		// Student flow
		pr.With(rbac.Require("attempt:start")).
			Post("/attempts", api.StartAttemptHandler(tracker))
		pr.With(rbac.Require("answer:submit")).
			Post("/submissions", api.SubmitAnswerHandler(eval))
		pr.With(rbac.RequireAny("answer:view-own", "answer:view-all")).
			Get("/submissions", api.ListSubmissionsHandler(store))

		// Admin surfaces
		pr.With(rbac.Require("notifications:view")).
			Get("/notifications", api.ListNotificationsHandler(eval))
		pr.With(rbac.Require("notifications:mark-read")).
			Post("/notifications/mark-read", api.MarkNotificationsReadHandler(eval))
		pr.With(rbac.Require("answers:export")).
			Get("/submissions/export", api.ExportSubmissionsHandler(store))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(users))

		// Classroom live status
		pr.With(rbac.Require("classroom:view")).
			Get("/classroom", api.GetClassroomHandler(store))
		pr.With(rbac.Require("classroom:update")).
			Put("/classroom", api.UpdateClassroomHandler(store))
		pr.With(rbac.Require("classroom:update")).
			Get("/meet-links", api.ListMeetLinksHandler(store))
		pr.With(rbac.Require("classroom:update")).
			Post("/meet-links", api.CreateMeetLinkHandler(store))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	logger.Info("listening", "addr", cfg.HTTPAddr, "db", cfg.DBDriver)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
