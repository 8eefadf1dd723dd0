package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"token-claim-service/config"
	"token-claim-service/handlers"
	"token-claim-service/models"
	"token-claim-service/services"
	"token-claim-service/utils"
	"token-claim-service/workers"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/jonboulle/clockwork"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}
	if err := models.AutoMigrate(db); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	registry, err := services.LoadTaskRegistry(cfg.TasksFile)
	if err != nil {
		log.Fatal("failed to load tasks:", err)
	}

	clock := clockwork.NewRealClock()

	verifier := services.NewWorldcoinClient(
		cfg.WorldcoinAPIURL,
		cfg.WorldcoinAppID,
		cfg.WorldcoinAction,
		utils.NewHTTPClient(cfg.WorldcoinTimeout),
	)
	taskService := services.NewTaskService(db, registry, clock)
	userService := services.NewUserService(db, taskService, clock)
	sessionService := services.NewSessionService(db, clock, cfg.SessionSecret, cfg.SessionTTL)
	authService := services.NewAuthService(db, verifier, userService, sessionService, clock)
	claimService := services.NewClaimService(db, clock)
	states := services.NewSessionStates(clock, cfg.StatusTick)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	jobs := []services.MaintenanceJob{{
		Name:  "session-prune",
		Every: cfg.SessionPruneInterval,
		Run: func(ctx context.Context) error {
			if _, err := sessionService.PruneExpired(ctx); err != nil {
				return err
			}
			_, err := states.CloseInactive(ctx, sessionService)
			return err
		},
	}}

	if cfg.ArchiveEnabled() {
		r2, err := utils.NewR2Client(ctx, utils.R2Config{
			AccountID:       cfg.CloudflareAccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			AccessKeySecret: cfg.R2AccessKeySecret,
			Bucket:          cfg.R2Bucket,
			Endpoint:        cfg.R2Endpoint,
		})
		if err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		archiver := workers.NewAuthLogArchiver(db, r2, clock, cfg.AuthLogArchiveAfter, cfg.AuthLogArchiveBatch)
		jobs = append(jobs, services.MaintenanceJob{
			Name:  "auth-log-archive",
			Every: cfg.AuthLogArchiveInterval,
			Run: func(ctx context.Context) error {
				_, err := archiver.RunOnce(ctx)
				return err
			},
		})
	} else {
		log.Println("⚠️  R2 not configured, auth log archive disabled")
	}

	scheduler, err := services.StartMaintenanceScheduler(ctx, clock, jobs...)
	if err != nil {
		log.Fatal("failed to start scheduler:", err)
	}

	app := fiber.New(fiber.Config{
		AppName:      "token-claim-service",
		IdleTimeout:  60 * time.Second,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // status streams stay open
	})

	allowedOrigins := strings.Join(cfg.AllowedOrigins, ",")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control",
		ExposeHeaders:    "Content-Length, Content-Type, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	handlers.SetupRoutes(app, handlers.Deps{
		Auth:            authService,
		Users:           userService,
		Claims:          claimService,
		Tasks:           taskService,
		Sessions:        sessionService,
		States:          states,
		VerifyRateLimit: cfg.VerifyRateLimit,
		ClaimRateLimit:  cfg.ClaimRateLimit,
	})

	go func() {
		if err := app.Listen(cfg.ListenAddr()); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost%s", cfg.ListenAddr())
	log.Printf("✅ %d tasks loaded, %d reward available", len(registry.All()), registry.TotalReward())
	log.Printf("✅ CORS configured for origins: %s", allowedOrigins)

	<-ctx.Done()
	log.Println("Shutting down server...")

	// close streams first so Shutdown is not held by open connections
	states.CloseAll()
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := scheduler.Shutdown(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}
}
