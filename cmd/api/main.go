package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vaughan-dsouza/tasktracer/internal/config"
	"github.com/vaughan-dsouza/tasktracer/internal/db"
	"github.com/vaughan-dsouza/tasktracer/internal/handlers"
	"github.com/vaughan-dsouza/tasktracer/internal/middleware"
	"github.com/vaughan-dsouza/tasktracer/internal/policy"
	"github.com/vaughan-dsouza/tasktracer/internal/repo"
	"github.com/vaughan-dsouza/tasktracer/internal/token"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	dbConn, err := db.Connect(cfg)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer dbConn.Close()

	if err := db.Migrate(dbConn); err != nil {
		logger.Fatal("db migrate", zap.Error(err))
	}

	tokens, err := token.New(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL())
	if err != nil {
		logger.Fatal("token service", zap.Error(err))
	}

	users := repo.NewUserStore(dbConn, logger)
	tasks := repo.NewTaskStore(dbConn, logger)
	h := handlers.New(users, tasks, tokens, logger)

	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logging(logger))

	// Public
	r.Post("/register", h.Auth.Register)
	r.Post("/login", h.Auth.Login)

	// Protected
	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(tokens, users, logger))

		r.Get("/me", h.Auth.Me)

		r.Post("/tasks", h.Tasks.Create)
		r.Get("/tasks", h.Tasks.List)
		r.Get("/tasks/{id}", h.Tasks.Get)
		r.Put("/tasks/{id}", h.Tasks.Update)
		r.Delete("/tasks/{id}", h.Tasks.Delete)

		r.Route("/admin", func(r chi.Router) {
			r.With(middleware.RequireAdmin(policy.ActionListAllTasks)).
				Get("/tasks", h.Admin.ListTasks)
			r.With(middleware.RequireAdmin(policy.ActionListUsers)).
				Get("/users", h.Admin.ListUsers)
			r.With(middleware.RequireAdmin(policy.ActionDeleteUser)).
				Delete("/users/{id}", h.Admin.DeleteUser)
			r.With(middleware.RequireAdmin(policy.ActionSetRole)).
				Put("/users/{id}/role", h.Admin.SetRole)
		})
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		logger.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}
