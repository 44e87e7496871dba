package main

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/skovalev/authcore/internal/config"
	"github.com/skovalev/authcore/internal/database"
	"github.com/skovalev/authcore/internal/handler"
	"github.com/skovalev/authcore/internal/queue"
	"github.com/skovalev/authcore/internal/repository"
	"github.com/skovalev/authcore/internal/router"
	"github.com/skovalev/authcore/internal/service"
	"github.com/skovalev/authcore/internal/token"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// Redis is optional: a nil client disables rate limiting.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Printf("redis unavailable; rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	tokens := token.New(token.Config{
		Secret:   cfg.JWTSecretKey,
		Issuer:   cfg.JWTValidIssuer,
		Audience: cfg.JWTValidAudience,
		TTL:      time.Duration(cfg.TokenTTLHours) * time.Hour,
	})
	auth := service.NewAuth(users, roles, tokens, queue.Publisher{}, cfg.BcryptCost)
	h := handler.NewAuthHandler(auth)

	// Audit consumer runs for the life of the process, reconnecting on
	// broker failures.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, h, tokens, users, cfg, rdb)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
