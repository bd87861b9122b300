package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mrlokans/lending/internal/auth"
	"github.com/mrlokans/lending/internal/config"
	http_controllers "github.com/mrlokans/lending/internal/http"
	"github.com/mrlokans/lending/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs handler until SIGINT or SIGTERM, then shuts down within the configured
// timeout.
func Serve(handler http.Handler, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	// kill -2 is SIGINT, plain kill sends SIGTERM
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-serveErr:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-quit:
	}
	log.Printf("Shutdown Server, waiting %v before killing", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server Shutdown: %v", err)
	}

	// Background work stops after in-flight requests have drained.
	if onShutdown != nil {
		onShutdown(ctx)
	}

	log.Println("Server exiting")
	return nil
}

// Run wires every component and serves the HTTP API until interrupted.
func Run(cfg *config.Config, version string) error {
	log.Printf("Starting library lending v%s", version)

	app, err := Open(cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	sqlDB, err := app.DB.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to get SQL DB for sessions: %w", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize session manager: %w", err)
	}

	csrfSecret, err := csrfSecretFrom(cfg.Auth.SessionSecret)
	if err != nil {
		return err
	}

	authController := auth.NewAuthController(app.Auth, sessionManager, app.Audit, cfg.Auth)
	defer authController.Stop()

	hasUsers, err := app.Auth.HasUsers(context.Background())
	if err != nil {
		return fmt.Errorf("failed to count users: %w", err)
	}
	if !hasUsers {
		log.Printf("No users found. Run the seed command to create an administrator account.")
	}

	routerCfg := http_controllers.RouterConfig{
		Database:       app.DB,
		Borrow:         app.Borrow,
		Books:          app.Catalog,
		Reports:        app.Reports,
		Audit:          app.Audit,
		AuthService:    app.Auth,
		SessionManager: sessionManager,
		AuthController: authController,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		Version:        version,
	}

	// Initialize task queue if enabled
	var taskClient *tasks.Client
	var queue Enqueuer
	taskCtx, taskCancel := context.WithCancel(context.Background())
	defer taskCancel()

	if cfg.Tasks.Enabled {
		taskCfg := tasks.FromConfig(cfg)
		taskClient, err = tasks.NewClient(cfg.Database.Path, taskCfg)
		if err != nil {
			return fmt.Errorf("failed to initialize task queue: %w", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewOverdueScanQueue(app.Borrow, app.Audit),
			tasks.NewCleanupAuditEventsQueue(app.Audit, taskCfg.AuditRetentionDays),
		)
		go taskClient.Start(taskCtx)

		routerCfg.TaskQueue = taskClient
		queue = taskClient
	}

	sched, err := newScheduler(app, queue)
	if err != nil {
		return err
	}
	sched.Start(taskCtx)

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		sched.Stop()
		if taskClient != nil {
			taskClient.Stop(ctx)
		}
		taskCancel()
	}

	return Serve(router, cfg, onShutdown)
}

// csrfSecretFrom decodes a hex secret, falling back to the raw bytes. An empty value
// generates a secret that lives for the process lifetime.
func csrfSecretFrom(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	generated, err := auth.GenerateSessionSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	secret, err := hex.DecodeString(generated)
	if err != nil {
		return nil, fmt.Errorf("failed to decode generated secret: %w", err)
	}
	log.Printf("Generated session secret (set AUTH_SESSION_SECRET to persist)")
	return secret, nil
}
