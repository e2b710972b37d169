package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bytedance/sonic"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/etag"

	"github.com/abassolaiya/phibitechbackend/internals/configs"
	database "github.com/abassolaiya/phibitechbackend/internals/databases"
	paymentService "github.com/abassolaiya/phibitechbackend/internals/features/finance/payments/service"
	scheduler "github.com/abassolaiya/phibitechbackend/internals/features/users/auth/scheduler"
	helper "github.com/abassolaiya/phibitechbackend/internals/helpers"
	"github.com/abassolaiya/phibitechbackend/internals/helpers/mailer"
	helperOSS "github.com/abassolaiya/phibitechbackend/internals/helpers/oss"
	"github.com/abassolaiya/phibitechbackend/internals/middlewares"
	authMiddleware "github.com/abassolaiya/phibitechbackend/internals/middlewares/auth"
	routes "github.com/abassolaiya/phibitechbackend/internals/route"
	"github.com/abassolaiya/phibitechbackend/internals/seeds"
)

func main() {
	seedOnly := flag.Bool("seed", false, "run seeders and exit")
	authorsFile := flag.String("seed-authors", "", "optional JSON file of authors to seed")
	flag.Parse()

	cfg, err := configs.LoadEnv()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	// 🔌 DB connect + migrate + warm-up
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer database.Close(db)

	if cfg.DB.AutoMigrate || *seedOnly {
		if err := database.Migrate(db); err != nil {
			log.Fatalf("migrate: %v", err)
		}
	}

	if *seedOnly {
		if err := seeds.RunAllSeeds(context.Background(), db, cfg.Seed, *authorsFile); err != nil {
			log.Fatalf("seed: %v", err)
		}
		log.Println("[INFO] seeding done")
		return
	}
	database.WarmUpQueries(db)

	uploader, err := helperOSS.NewUploader(cfg.OSS)
	if err != nil {
		log.Fatalf("oss: %v", err)
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:           sonic.Marshal,
		JSONDecoder:           sonic.Unmarshal,
		DisableStartupMessage: true,
		BodyLimit:             cfg.BodyLimitMB << 20,
		ProxyHeader:           fiber.HeaderXForwardedFor,
		ReadTimeout:           15 * time.Second,
		WriteTimeout:          30 * time.Second,
		IdleTimeout:           90 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return helper.FromFiberError(c, err)
		},
	})

	app.Use(compress.New(compress.Config{Level: compress.LevelDefault}))
	app.Use(etag.New())
	middlewares.SetupMiddlewares(app, cfg)

	routes.SetupRoutes(app, routes.Deps{
		DB:       db,
		Config:   cfg,
		Sessions: authMiddleware.NewSessionStore(cfg.Session, cfg.IsProduction()),
		Uploader: uploader,
		Mailer:   mailer.New(cfg.SMTP),
		Gateway:  paymentService.NewGateway(cfg.Midtrans),
	})

	// ⏱ scheduler after the DB is ready
	cleanup, err := scheduler.StartTokenCleanupScheduler(db, cfg.CleanupCron)
	if err != nil {
		log.Fatalf("scheduler: %v", err)
	}

	go func() {
		addr := fmt.Sprintf("0.0.0.0:%s", cfg.Port)
		log.Printf("[INFO] listening on %s", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("[INFO] shutting down...")

	<-cleanup.Stop().Done()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("[WARN] shutdown: %v", err)
	}
}
