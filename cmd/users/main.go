package main

import (
	"context"
	"database/sql"
	"os"

	"petpal/internal/adapters/auth/credential"
	pg "petpal/internal/adapters/storage/postgres"
	"petpal/internal/platform/config"
	"petpal/internal/platform/logger"
	"petpal/internal/platform/server"
	"petpal/internal/router"
)

func main() {
	cfg, err := config.Load(config.Config{Port: "5001", ServiceName: "user-service"})
	if err != nil {
		logger.NewFromEnv("user-service").Error("config", map[string]any{"err": err})
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.ServiceName,
	})

	issuer, err := credential.NewIssuer(cfg.JWTSecret, cfg.CredentialTTL)
	if err != nil {
		log.Error("JWT_SECRET is required", map[string]any{"err": err})
		os.Exit(1)
	}

	var db *sql.DB
	if cfg.DBDSN != "" {
		db, err = pg.OpenMigrated(context.Background(), cfg.DBDSN)
		if err != nil {
			log.Error("postgres", map[string]any{"err": err})
			os.Exit(1)
		}
		defer db.Close()
	}

	h, err := router.NewUsers(router.UsersOptions{
		Base:               router.Base{Log: log, DB: db, TrustedProxies: cfg.TrustedProxyList()},
		Issuer:             issuer,
		LoginRatePerSecond: cfg.LoginRatePerSecond,
		LoginBurst:         cfg.LoginBurst,
	})
	if err != nil {
		log.Error("router", map[string]any{"err": err})
		os.Exit(1)
	}

	if err := server.Run(cfg.Addr(), h, log); err != nil {
		log.Error("server error", map[string]any{"err": err})
		os.Exit(1)
	}
}
