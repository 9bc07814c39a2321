package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/markbook-app/markbook/internal/aigrade"
	api "github.com/markbook-app/markbook/internal/api/http"
	"github.com/markbook-app/markbook/internal/audit"
	"github.com/markbook-app/markbook/internal/auth"
	"github.com/markbook-app/markbook/internal/cohort"
	"github.com/markbook-app/markbook/internal/config"
	"github.com/markbook-app/markbook/internal/db"
	"github.com/markbook-app/markbook/internal/grading"
	"github.com/markbook-app/markbook/internal/quiz"
	"github.com/markbook-app/markbook/internal/review"
	"github.com/markbook-app/markbook/internal/roster"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the grading API server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServer(cmd.Context(), config.FromEnv())
		},
	}
}

func runServer(ctx context.Context, cfg config.Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	store, conn, err := openStoreDB(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	var trail *audit.Log
	if conn != nil {
		trail = audit.NewLog(conn)
	}

	engine := grading.NewEngine(grading.WithPartialCredit(cfg.PartialCredit))
	reviewSvc := review.NewService(store, store, engine)
	cohortSvc := cohort.NewService(store, store)

	var grader *aigrade.Service
	if cfg.GradingAPIURL != "" {
		model := aigrade.NewHTTPModel(cfg.GradingAPIURL, cfg.GradingModel, cfg.GradingAPIKey)
		grader = aigrade.NewService(model, aigrade.WithLogger(logger))
	}

	var names api.Names
	if cfg.RosterPath != "" {
		r, err := roster.Load(cfg.RosterPath)
		if err != nil {
			return fmt.Errorf("load roster: %w", err)
		}
		names.Roster = &r
		logger.Info("roster loaded", "path", cfg.RosterPath, "students", len(r.Students))
	}

	handler := api.NewRouter(api.Deps{
		Store:   store,
		Review:  reviewSvc,
		Cohort:  cohortSvc,
		Grader:  grader,
		Auth:    auth.NewAuthService(cfg.AuthSecret, cfg.AdminUser, cfg.AdminPassHash),
		Audit:   trail,
		Names:   names,
		Origins: cfg.CORSOrigins,
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "db", cfg.DBDriver)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed", "error", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutting down")
	case <-ctx.Done():
		logger.Info("context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// openStoreDB picks the persistence backend. DB_DRIVER=memory keeps
// everything in-process, handy for demos and tests; the returned
// connection is nil in that mode.
func openStoreDB(ctx context.Context, cfg config.Config) (quiz.Store, *sql.DB, error) {
	if cfg.DBDriver == "memory" {
		return quiz.NewInMemoryStore(), nil, nil
	}
	conn, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return nil, nil, err
	}
	return quiz.NewSQLStore(conn, cfg.DBDriver), conn, nil
}
