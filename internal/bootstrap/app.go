package bootstrap

import (
	"context"
	"database/sql"

	"talentedge-backend/internal/applications"
	"talentedge-backend/internal/assessments"
	"talentedge-backend/internal/interviews"
	"talentedge-backend/internal/jobs"
	"talentedge-backend/internal/shared/config"
	"talentedge-backend/internal/shared/storage/db"
	"talentedge-backend/internal/shared/telemetry"
	"talentedge-backend/internal/users"
)

// App holds the wired application services. Repos are Postgres-backed when
// a database is configured and reachable, in-memory otherwise so the server
// still comes up for local development.
type App struct {
	DB *sql.DB

	Users        users.Repo
	Jobs         *jobs.Service
	Applications *applications.Service
	Interviews   *interviews.Service
	Assessments  *assessments.Service
}

// NewApp connects storage and wires every service.
func NewApp(ctx context.Context, cfg config.Config) *App {
	var sqlDB *sql.DB
	if cfg.DatabaseURL != "" {
		conn, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			telemetry.Warn("bootstrap.db_connect_failed", map[string]any{"error": err.Error()})
		} else if err := db.RunMigrations(ctx, conn); err != nil {
			telemetry.Warn("bootstrap.migrations_failed", map[string]any{"error": err.Error()})
			_ = conn.Close()
		} else {
			sqlDB = conn
		}
	}

	var (
		userRepo       users.Repo
		jobRepo        jobs.Repo
		appRepo        applications.Repo
		interviewRepo  interviews.Repo
		assessmentRepo assessments.Repo
	)
	if sqlDB != nil {
		userRepo = &users.PGRepo{DB: sqlDB}
		jobRepo = &jobs.PGRepo{DB: sqlDB}
		appRepo = &applications.PGRepo{DB: sqlDB}
		interviewRepo = &interviews.PGRepo{DB: sqlDB}
		assessmentRepo = &assessments.PGRepo{DB: sqlDB}
	} else {
		telemetry.Warn("bootstrap.memory_mode", map[string]any{"reason": "no database configured or reachable"})
		userRepo = users.NewMemoryRepo()
		jobRepo = jobs.NewMemoryRepo()
		appRepo = applications.NewMemoryRepo()
		interviewRepo = interviews.NewMemoryRepo()
		assessmentRepo = assessments.NewMemoryRepo()
	}

	jobSvc := &jobs.Service{Repo: jobRepo}
	appSvc := &applications.Service{Repo: appRepo, Jobs: jobRepo, Users: userRepo}
	interviewSvc := &interviews.Service{Repo: interviewRepo, Apps: appSvc}
	assessmentSvc := &assessments.Service{Repo: assessmentRepo, Apps: appSvc, Jobs: jobRepo}

	return &App{
		DB:           sqlDB,
		Users:        userRepo,
		Jobs:         jobSvc,
		Applications: appSvc,
		Interviews:   interviewSvc,
		Assessments:  assessmentSvc,
	}
}

// Close releases held resources.
func (a *App) Close() {
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
