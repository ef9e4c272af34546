package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/bbbislomjon-svg/piramida/internal/config"
	"github.com/bbbislomjon-svg/piramida/internal/handler"
	"github.com/bbbislomjon-svg/piramida/internal/ledger"
	"github.com/bbbislomjon-svg/piramida/internal/repository"
	"github.com/bbbislomjon-svg/piramida/internal/service"
	"github.com/bbbislomjon-svg/piramida/internal/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	repo, err := repository.New(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer repo.Close()

	engine := ledger.NewEngine(repo, cfg.Ledger)
	adminSvc := service.NewAdminService(repo, cfg.Telegram.AdminID)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var bot *telegram.Bot
	if cfg.Telegram.BotToken != "" {
		bot, err = telegram.NewBot(cfg, engine, adminSvc)
		if err != nil {
			log.Fatalf("Failed to create bot: %v", err)
		}
		go bot.StartPolling(ctx)
	} else {
		log.Println("BOT_TOKEN is empty, running without the Telegram bot")
	}

	app := fiber.New()
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
	}))

	handler.New(cfg, engine, adminSvc, repo).Register(app)

	go func() {
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Printf("Server listening on :%s", cfg.Server.Port)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	cancel()

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
}
