package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrlokans/liftlog/internal/audit"
	"github.com/mrlokans/liftlog/internal/auth"
	"github.com/mrlokans/liftlog/internal/config"
	"github.com/mrlokans/liftlog/internal/database"
	auditrepo "github.com/mrlokans/liftlog/internal/database/audit"
	"github.com/mrlokans/liftlog/internal/database/exercises"
	"github.com/mrlokans/liftlog/internal/database/users"
	"github.com/mrlokans/liftlog/internal/database/workouts"
	http_controllers "github.com/mrlokans/liftlog/internal/http"
	"github.com/mrlokans/liftlog/internal/scheduler"
	"github.com/mrlokans/liftlog/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App holds the wired application and the resources it must release.
type App struct {
	Router    *http_controllers.Router
	DB        *database.Database
	Auditor   *audit.Service
	Tasks     *tasks.Client
	Scheduler *scheduler.AuditCleanupScheduler

	cancelTasks context.CancelFunc
}

// Build opens the store and wires every component without listening.
func Build(cfg *config.Config, version string) (*App, error) {
	if !cfg.Auth.Mode.IsValid() {
		return nil, fmt.Errorf("invalid AUTH_MODE %q: must be %q, %q or %q",
			cfg.Auth.Mode, config.AuthModeNone, config.AuthModeLocal, config.AuthModeProxy)
	}

	db, err := database.NewDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app := &App{DB: db}

	exerciseRepo := exercises.NewRepository(db.DB)
	if created, err := exerciseRepo.Seed(context.Background()); err != nil {
		log.Printf("WARNING: Failed to seed exercise library: %v", err)
	} else if created > 0 {
		log.Printf("Seeded %d default exercises", created)
	}

	workoutRepo := workouts.NewRepository(db.DB)

	if cfg.Audit.Enabled {
		app.Auditor = audit.NewService(auditrepo.NewRepository(db.DB))
	}

	if cfg.Tasks.Enabled {
		if err := app.startTasks(cfg, exerciseRepo); err != nil {
			app.Close()
			return nil, err
		}
	}

	authService, sessionManager, csrfSecret, err := setupAuth(cfg, db)
	if err != nil {
		app.Close()
		return nil, err
	}

	app.Router = http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:           db,
		Workouts:           workoutRepo,
		Calendar:           workoutRepo,
		Exercises:          exerciseRepo,
		Auditor:            app.Auditor,
		AuthConfig:         cfg.Auth,
		AuthService:        authService,
		SessionManager:     sessionManager,
		CSRFSecret:         csrfSecret,
		SecureCookies:      cfg.Auth.SecureCookies,
		TaskClient:         app.Tasks,
		AuditRetentionDays: cfg.Audit.RetentionDays,
		Version:            version,
	})

	return app, nil
}

func (a *App) startTasks(cfg *config.Config, seeder tasks.ExerciseSeeder) error {
	client, err := tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
	if err != nil {
		return fmt.Errorf("failed to initialize task queue: %w", err)
	}
	a.Tasks = client

	client.Register(tasks.NewSeedExercisesQueue(seeder))
	if a.Auditor != nil {
		client.Register(tasks.NewCleanupAuditEventsQueue(a.Auditor))
	}

	var ctx context.Context
	ctx, a.cancelTasks = context.WithCancel(context.Background())

	// Scheduled tasks are persisted, so the scheduler can start before the workers.
	if a.Auditor != nil {
		a.Scheduler = scheduler.NewAuditCleanupScheduler(client, cfg.Audit.CleanupSchedule, cfg.Audit.RetentionDays)
		if err := a.Scheduler.Start(ctx); err != nil {
			return err
		}
	}

	go client.Start(ctx)
	return nil
}

func setupAuth(cfg *config.Config, db *database.Database) (*auth.Service, *auth.SessionManager, []byte, error) {
	switch cfg.Auth.Mode {
	case config.AuthModeLocal:
		log.Printf("Authentication mode: local")
	case config.AuthModeProxy:
		log.Printf("Authentication mode: proxy (identity from %s header)", cfg.Auth.ProxyHeader)
		return nil, nil, nil, nil
	case config.AuthModeNone:
		log.Printf("Authentication mode: none (all workouts belong to %q)", cfg.Auth.DefaultUserID)
		return nil, nil, nil, nil
	default:
		return nil, nil, nil, fmt.Errorf("unsupported auth mode %q", cfg.Auth.Mode)
	}

	authService := auth.NewService(users.NewRepository(db.DB), cfg.Auth)

	var sessionManager *auth.SessionManager
	if db.Driver == config.DriverPostgres {
		log.Printf("Sessions are kept in memory and will not survive restarts")
		sessionManager = auth.NewMemorySessionManager(cfg.Auth)
	} else {
		sqlDB, err := db.SQLDB()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to get SQL DB for sessions: %w", err)
		}
		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("failed to initialize session manager: %w", err)
		}
	}

	csrfSecret, err := csrfSecretFrom(cfg.Auth.SessionSecret)
	if err != nil {
		return nil, nil, nil, err
	}

	hasUsers, err := authService.HasUsers(context.Background())
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to count users: %w", err)
	}
	if !hasUsers {
		log.Printf("No users found. POST /setup to create the first account.")
	}

	return authService, sessionManager, csrfSecret, nil
}

// csrfSecretFrom decodes a configured hex secret, falls back to raw bytes,
// or generates a fresh one.
func csrfSecretFrom(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return hex.DecodeString(secret)
}

// Shutdown stops background work, waiting until ctx expires.
func (a *App) Shutdown(ctx context.Context) {
	if a.Scheduler != nil {
		a.Scheduler.Stop()
	}
	if a.Tasks != nil {
		a.Tasks.Stop(ctx)
	}
	if a.cancelTasks != nil {
		a.cancelTasks()
	}
	if a.Router != nil {
		a.Router.Close()
	}
	a.Auditor.Wait()
}

// Close releases the stores. Call after Shutdown.
func (a *App) Close() {
	if a.cancelTasks != nil {
		a.cancelTasks()
	}
	if a.Tasks != nil {
		if err := a.Tasks.Close(); err != nil {
			log.Printf("Error closing task client: %v", err)
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}
}

func Serve(handler http.Handler, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting server at %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 is SIGINT
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Stop background work after in-flight requests drained
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting liftlog v%s", version)

	app, err := Build(cfg, version)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer app.Close()

	Serve(app.Router, cfg, app.Shutdown)
}
