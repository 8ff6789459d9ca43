package main

import (
	"context"
	"os"

	sessionmem "petpal/internal/adapters/session/memory"
	sessionredis "petpal/internal/adapters/session/redis"
	"petpal/internal/gateway"
	"petpal/internal/platform/config"
	"petpal/internal/platform/logger"
	"petpal/internal/platform/server"
	"petpal/internal/ports/session"
	"petpal/internal/router"
)

// @title PetPal API
// @version 1.0
// @description Servicios de usuarios, mascotas, turnos e historia clínica.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load(config.Config{Port: "8080", ServiceName: "gateway"})
	if err != nil {
		logger.NewFromEnv("gateway").Error("config", map[string]any{"err": err})
		os.Exit(1)
	}
	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.ServiceName,
	})

	var store session.Store = sessionmem.NewStore()
	if cfg.RedisURL != "" {
		rs, err := sessionredis.Open(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Error("redis", map[string]any{"err": err})
			os.Exit(1)
		}
		defer rs.Close()
		store = rs
	}

	gw, err := gateway.New(gateway.Config{
		Upstreams: map[string]string{
			"users":        cfg.UserServiceURL,
			"pets":         cfg.PetServiceURL,
			"appointments": cfg.AppointmentServiceURL,
			"medical":      cfg.MedicalServiceURL,
		},
		Sessions:      store,
		SessionTTL:    cfg.CredentialTTL,
		SecureCookies: cfg.SecureCookies,
		Timeout:       cfg.UpstreamTimeout,
		Log:           log,
	})
	if err != nil {
		log.Error("gateway", map[string]any{"err": err})
		os.Exit(1)
	}

	h, err := router.NewGateway(router.GatewayOptions{Base: router.Base{Log: log, TrustedProxies: cfg.TrustedProxyList()}, Gateway: gw})
	if err != nil {
		log.Error("router", map[string]any{"err": err})
		os.Exit(1)
	}

	if err := server.Run(cfg.Addr(), h, log); err != nil {
		log.Error("server error", map[string]any{"err": err})
		os.Exit(1)
	}
}
