package router

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	_ "petpal/docs"
	"petpal/internal/adapters/auth/usersvc"
	"petpal/internal/adapters/ownership/petsvc"
	"petpal/internal/adapters/password"
	mem "petpal/internal/adapters/storage/memory"
	pg "petpal/internal/adapters/storage/postgres"
	"petpal/internal/domain/appointments"
	"petpal/internal/domain/medical"
	"petpal/internal/domain/pets"
	"petpal/internal/domain/users"
	"petpal/internal/gateway"
	"petpal/internal/middleware"
	"petpal/internal/platform/httpx"
	"petpal/internal/platform/logger"
	"petpal/internal/platform/metrics"
	"petpal/internal/ports/auth"

	"github.com/go-chi/chi/v5"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Base es lo común a todos los servicios.
type Base struct {
	Log     logger.Logger
	Metrics *metrics.Metrics

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	// Pares (IP o CIDR) cuyo X-Forwarded-For se cree. Vacío: ninguno.
	TrustedProxies []string
}

// Remote son los servicios a los que se llama por HTTP. Transport es para tests.
type Remote struct {
	UserServiceURL string
	PetServiceURL  string
	Timeout        time.Duration
	Transport      http.RoundTripper
}

type UsersOptions struct {
	Base
	Issuer auth.TokenIssuer
	Hasher users.PasswordHasher // nil => bcrypt

	LoginRatePerSecond float64
	LoginBurst         int
}

type PetsOptions struct {
	Base
	Remote
}

type AppointmentsOptions struct {
	Base
	Remote
}

type MedicalOptions struct {
	Base
	Remote
}

type GatewayOptions struct {
	Base
	Gateway *gateway.Gateway
}

func newBase(service string, b *Base) (chi.Router, error) {
	if b.Log == nil {
		b.Log = logger.Nop()
	}
	b.Log = b.Log.With(map[string]any{"service": service})
	if b.Metrics == nil {
		b.Metrics = metrics.New(service)
	}

	trusted, err := middleware.ParseTrustedProxies(b.TrustedProxies)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP(trusted))
	r.Use(middleware.Recover(b.Log))
	r.Use(b.Metrics.Instrument)
	r.Use(middleware.RequestLog(b.Log))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": service})
	})
	r.Method(http.MethodGet, "/metrics", b.Metrics.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	return r, nil
}

// NewUsers arma el servicio de identidad. Verifica sus propias credenciales
// en proceso (firma + expiración + que la identidad siga existiendo).
func NewUsers(opts UsersOptions) (http.Handler, error) {
	if opts.Issuer == nil {
		return nil, errors.New("router: token issuer required")
	}
	r, err := newBase("user-service", &opts.Base)
	if err != nil {
		return nil, err
	}

	var repo users.Repository
	if opts.DB != nil {
		repo = pg.NewUsersRepo(opts.DB)
	} else {
		repo = mem.NewUserRepo()
	}

	hasher := opts.Hasher
	if hasher == nil {
		hasher = password.NewBcrypt(0)
	}

	svc := users.NewService(repo, hasher, opts.Issuer)
	limiter := middleware.NewRateLimiter(opts.LoginRatePerSecond, opts.LoginBurst, opts.Log)

	users.RegisterRoutes(r, users.Routes{
		Service:      svc,
		Log:          opts.Log,
		RequireAuth:  middleware.RequireAuth(svc, opts.Log),
		LoginLimiter: limiter.Handler,
	})
	return r, nil
}

func NewPets(opts PetsOptions) (http.Handler, error) {
	r, err := newBase("pet-service", &opts.Base)
	if err != nil {
		return nil, err
	}

	verifier, err := remoteVerifier(opts.Remote, opts.Metrics)
	if err != nil {
		return nil, err
	}

	var repo pets.Repository
	if opts.DB != nil {
		repo = pg.NewPetsRepo(opts.DB)
	} else {
		repo = mem.NewPetRepo()
	}

	pets.RegisterRoutes(r, pets.NewService(repo), middleware.RequireAuth(verifier, opts.Log), opts.Log)
	return r, nil
}

func NewAppointments(opts AppointmentsOptions) (http.Handler, error) {
	r, err := newBase("appointment-service", &opts.Base)
	if err != nil {
		return nil, err
	}

	verifier, err := remoteVerifier(opts.Remote, opts.Metrics)
	if err != nil {
		return nil, err
	}
	checker, err := petChecker(opts.Remote, opts.Metrics)
	if err != nil {
		return nil, err
	}

	var repo appointments.Repository
	if opts.DB != nil {
		repo = pg.NewAppointmentsRepo(opts.DB)
	} else {
		repo = mem.NewAppointmentRepo()
	}

	svc := appointments.NewService(repo, checker, opts.Log)
	appointments.RegisterRoutes(r, svc, middleware.RequireAuth(verifier, opts.Log), opts.Log)
	return r, nil
}

func NewMedical(opts MedicalOptions) (http.Handler, error) {
	r, err := newBase("medical-service", &opts.Base)
	if err != nil {
		return nil, err
	}

	verifier, err := remoteVerifier(opts.Remote, opts.Metrics)
	if err != nil {
		return nil, err
	}
	checker, err := petChecker(opts.Remote, opts.Metrics)
	if err != nil {
		return nil, err
	}

	var repo medical.Repository
	if opts.DB != nil {
		repo = pg.NewMedicalRepo(opts.DB)
	} else {
		repo = mem.NewMedicalRepo()
	}

	svc := medical.NewService(repo, checker, opts.Log)
	medical.RegisterRoutes(r, svc, middleware.RequireAuth(verifier, opts.Log), opts.Log)
	return r, nil
}

func NewGateway(opts GatewayOptions) (http.Handler, error) {
	if opts.Gateway == nil {
		return nil, errors.New("router: gateway required")
	}
	r, err := newBase("gateway", &opts.Base)
	if err != nil {
		return nil, err
	}
	opts.Gateway.RegisterRoutes(r)
	return r, nil
}

func remoteVerifier(rm Remote, m *metrics.Metrics) (auth.AuthVerifier, error) {
	client, err := usersvc.NewClient(usersvc.Config{
		BaseURL:   rm.UserServiceURL,
		Timeout:   rm.Timeout,
		Transport: rm.Transport,
	})
	if err != nil {
		return nil, err
	}
	return usersvc.NewVerifier(client, m), nil
}

func petChecker(rm Remote, m *metrics.Metrics) (*petsvc.Client, error) {
	return petsvc.NewClient(petsvc.Config{
		BaseURL:   rm.PetServiceURL,
		Timeout:   rm.Timeout,
		Transport: rm.Transport,
	}, m)
}
