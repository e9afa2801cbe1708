package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"earnings-bot/bot"
	"earnings-bot/config"
	"earnings-bot/handlers"
	"earnings-bot/services"
	"earnings-bot/utils"
	"earnings-bot/workers"

	"github.com/go-co-op/gocron/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load config:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger := services.NewLedgerStore()
	catalog := services.DefaultCatalog()
	withdrawals := services.NewWithdrawalLog()

	earning := services.NewEarningEngine(ledger, catalog, cfg.Rules, services.SystemRandom())
	referrals := services.NewReferralEngine(ledger, cfg.Rules)
	gate := services.NewWithdrawalGate(ledger, cfg.Rules, withdrawals)

	var jobs []workers.Job

	// --- optional snapshot persistence ---
	var snapshot *workers.LedgerSnapshotWorker
	var cursors workers.CursorStore
	if cfg.Database.URL != "" {
		db, err := gorm.Open(postgres.Open(cfg.Database.URL), &gorm.Config{})
		if err != nil {
			log.Fatal("failed to connect to database:", err)
		}
		snapshot = workers.NewLedgerSnapshotWorker(db, ledger, withdrawals)
		if err := snapshot.Migrate(); err != nil {
			log.Fatal("failed to migrate database:", err)
		}
		if err := snapshot.Restore(ctx); err != nil {
			log.Fatal("failed to restore ledger:", err)
		}
		cursors = workers.NewGormCursorStore(db)
		jobs = append(jobs, workers.Job{Name: "ledger-snapshot", Interval: cfg.Snapshot.Interval, Run: snapshot.Flush})
	} else {
		log.Println("⚠️  DATABASE_URL not set, ledger is in-memory only")
	}

	// --- optional withdrawal export to R2 ---
	if cfg.R2.Enabled() {
		r2, err := utils.NewR2Client(ctx, cfg.R2)
		if err != nil {
			log.Fatal("failed to initialize R2 client:", err)
		}
		exporter := workers.NewWithdrawalExportWorker(withdrawals, r2, cursors, cfg.R2.ExportPrefix)
		jobs = append(jobs, workers.Job{Name: "withdrawal-export", Interval: cfg.R2.ExportInterval, Run: exporter.Export})
	}

	var sched gocron.Scheduler
	if len(jobs) > 0 {
		sched, err = workers.StartScheduler(ctx, jobs...)
		if err != nil {
			log.Fatal("failed to start scheduler:", err)
		}
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 1 * 1024 * 1024,
		Immutable: true,
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowedOrigins,
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID, X-Request-ID",
		MaxAge:       86400,
	}))

	handlers.SetupLedgerRoutes(app, handlers.LedgerServices{
		Ledger:     ledger,
		Catalog:    catalog,
		Earning:    earning,
		Referrals:  referrals,
		Withdrawal: gate,
	}, cfg.Server.ServiceToken)

	if cfg.Telegram.BotToken != "" {
		b, err := bot.NewBot(cfg.Telegram.BotToken, cfg.Telegram.PollTimeout, bot.Core{
			Rules:      cfg.Rules,
			Earning:    earning,
			Referrals:  referrals,
			Withdrawal: gate,
			Ledger:     ledger,
		})
		if err != nil {
			log.Fatal("failed to start bot:", err)
		}
		go b.StartPolling(ctx)
		log.Println("✅ Telegram bot polling")
	} else {
		log.Println("⚠️  TELEGRAM_BOT_TOKEN not set, chat transport disabled")
	}

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", cfg.Server.Port)
	log.Printf("✅ Catalog loaded with %d earning actions", catalog.Len())
	log.Printf("✅ CORS configured for origins: %s", cfg.Server.AllowedOrigins)
	if cfg.Server.ServiceToken == "" {
		log.Println("⚠️  SERVICE_TOKEN not set, admin API will reject every request")
	}

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if sched != nil {
		if err := sched.Shutdown(); err != nil {
			log.Printf("[Scheduler] shutdown error: %v", err)
		}
	}
	// final flush so the last changes reach the database
	if snapshot != nil {
		if err := snapshot.Flush(shutdownCtx); err != nil {
			log.Printf("❌ [SNAPSHOT] final flush failed: %v", err)
		}
	}
}
