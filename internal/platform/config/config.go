package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config es común a todos los binarios; cada main usa lo que necesita.
type Config struct {
	Port        string `env:"PORT"`
	ServiceName string `env:"SERVICE_NAME"`

	// Si viene, usa Postgres. Si no, in-memory.
	DBDSN string `env:"DB_DSN"`

	JWTSecret     string        `env:"JWT_SECRET"`
	CredentialTTL time.Duration `env:"CREDENTIAL_TTL,default=24h"`

	UserServiceURL        string        `env:"USER_SERVICE_URL,default=http://localhost:5001"`
	PetServiceURL         string        `env:"PET_SERVICE_URL,default=http://localhost:5002"`
	AppointmentServiceURL string        `env:"APPOINTMENT_SERVICE_URL,default=http://localhost:5003"`
	MedicalServiceURL     string        `env:"MEDICAL_SERVICE_URL,default=http://localhost:5004"`
	UpstreamTimeout       time.Duration `env:"UPSTREAM_TIMEOUT,default=5s"`

	// Gateway: si REDIS_URL está vacío las sesiones quedan en memoria.
	RedisURL      string `env:"REDIS_URL"`
	SecureCookies bool   `env:"SECURE_COOKIES,default=false"`

	LoginRatePerSecond float64 `env:"LOGIN_RATE_PER_SECOND,default=5"`
	LoginBurst         int     `env:"LOGIN_BURST,default=10"`

	// IPs o CIDRs separados por coma (ej. la del gateway para user-service).
	// Solo a esos pares se les cree X-Forwarded-For / X-Real-IP.
	TrustedProxies string `env:"TRUSTED_PROXIES"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=json"`
}

// Load lee un .env opcional (ENV_FILE o ./.env) y después el entorno.
// defaults completa Port/ServiceName cuando no vienen por env.
func Load(defaults Config) (Config, error) {
	envFile := strings.TrimSpace(os.Getenv("ENV_FILE"))
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, err
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, err
	}

	if strings.TrimSpace(cfg.Port) == "" {
		cfg.Port = defaults.Port
	}
	if strings.TrimSpace(cfg.ServiceName) == "" {
		cfg.ServiceName = defaults.ServiceName
	}
	if strings.TrimSpace(cfg.JWTSecret) == "" {
		cfg.JWTSecret = defaults.JWTSecret
	}

	cfg.UserServiceURL = strings.TrimRight(cfg.UserServiceURL, "/")
	cfg.PetServiceURL = strings.TrimRight(cfg.PetServiceURL, "/")
	cfg.AppointmentServiceURL = strings.TrimRight(cfg.AppointmentServiceURL, "/")
	cfg.MedicalServiceURL = strings.TrimRight(cfg.MedicalServiceURL, "/")

	return cfg, nil
}

// TrustedProxyList parte TRUSTED_PROXIES descartando entradas vacías.
func (c Config) TrustedProxyList() []string {
	var out []string
	for _, p := range strings.Split(c.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Addr arma ":PORT".
func (c Config) Addr() string {
	p := strings.TrimSpace(c.Port)
	if p == "" {
		p = "8080"
	}
	if strings.HasPrefix(p, ":") {
		return p
	}
	return ":" + p
}
