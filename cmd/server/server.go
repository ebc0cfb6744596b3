package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	membershipHandler "github.com/utdi/ukmik/be/internal/controller/http/membership"
	membershipSqlite "github.com/utdi/ukmik/be/internal/repositories/membership/sqlite"
	"github.com/utdi/ukmik/be/internal/services/approval"
	"github.com/utdi/ukmik/be/pkg/common/logger"
	"github.com/utdi/ukmik/be/pkg/common/mailer"
)

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,PATCH,DELETE,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "debug"
	}
	logger.Initialize(level)
	logger.Info("starting server")

	dbPath := os.Getenv("SQLITE_PATH")
	if dbPath == "" {
		dbPath = "./membership.db"
	}
	repo, err := membershipSqlite.NewSQLiteRepo(dbPath)
	if err != nil {
		logger.Fatal("init membership repo: %v", err)
	}

	mail, err := mailer.NewSMTP(mailer.ConfigFromEnv())
	if err != nil {
		logger.Fatal("init mailer: %v", err)
	}

	approvals := approval.NewService(repo, mail)
	h := membershipHandler.NewHandler(repo, approvals)

	router := chi.NewRouter()
	const maxBodySize = 6_300_000
	router.Use(middleware.RequestSize(maxBodySize))
	router.Use(middleware.Recoverer)

	router.Mount("/", h.Router())

	// Serve stored applicant photos
	uploadDir := os.Getenv("UPLOAD_DIR")
	if uploadDir == "" {
		uploadDir = "./uploads"
	}
	router.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	addr := ":" + port
	server := &http.Server{Addr: addr, Handler: withCORS(router)}

	go func() {
		logger.Info("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("listen: %v", err)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown: %v", err)
	}
	repo.Disconnect()
	logger.Info("server stopped")
}
