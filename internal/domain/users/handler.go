package users

import (
	"net/http"
	"time"

	"petpal/internal/middleware"
	"petpal/internal/platform/httpx"
	"petpal/internal/platform/logger"
	"petpal/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// Routes agrupa lo que necesita RegisterRoutes. LoginLimiter puede ser nil.
type Routes struct {
	Service      *Service
	Log          logger.Logger
	RequireAuth  func(http.Handler) http.Handler
	LoginLimiter func(http.Handler) http.Handler
}

func RegisterRoutes(r chi.Router, rt Routes) {
	svc, log := rt.Service, rt.Log
	if log == nil {
		log = logger.Nop()
	}
	limit := rt.LoginLimiter
	if limit == nil {
		limit = func(next http.Handler) http.Handler { return next }
	}

	r.Route("/api/users", func(ur chi.Router) {
		ur.Post("/register", registerHandler(svc, log))
		ur.With(limit).Post("/login", loginHandler(svc, log))
		ur.Post("/verify-token", verifyTokenHandler(svc, log))

		ur.Group(func(ar chi.Router) {
			ar.Use(rt.RequireAuth)
			ar.Get("/profile", middleware.Authed(getProfileHandler(svc, log)))
			ar.Put("/profile", middleware.Authed(updateProfileHandler(svc, log)))
			ar.Delete("/profile", middleware.Authed(deleteProfileHandler(svc, log)))
			ar.Get("/{userID}", middleware.Authed(getUserHandler(svc, log)))
		})
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type registerResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
	Token   string `json:"token"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Message string   `json:"message"`
	Token   string   `json:"token"`
	User    Snapshot `json:"user"`
}

type profileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type updateProfileRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type verifyTokenResponse struct {
	Valid bool      `json:"valid"`
	User  *Snapshot `json:"user,omitempty"`
}

// registerHandler godoc
// @Summary Registrar usuario
// @Description Crea una identidad. name, email, password y phone son obligatorios. El email es único.
// @Tags users
// @Accept json
// @Produce json
// @Param payload body registerRequest true "Datos de registro"
// @Success 201 {object} registerResponse
// @Failure 400 {object} map[string]string "campo faltante o email ya registrado"
// @Router /api/users/register [post]
func registerHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		u, token, err := svc.Register(r.Context(), RegisterInput{
			Name:     req.Name,
			Email:    req.Email,
			Password: req.Password,
			Phone:    req.Phone,
			Address:  req.Address,
		})
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		log.Info("user registered", map[string]any{"user_id": u.ID})
		httpx.WriteJSON(w, http.StatusCreated, registerResponse{
			Message: "User created successfully",
			UserID:  u.ID,
			Token:   token,
		})
	}
}

// loginHandler godoc
// @Summary Login
// @Description Verifica email y password y emite una credencial bearer válida por 24h. Limitado por IP.
// @Tags users
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} loginResponse
// @Failure 400 {object} map[string]string "faltan campos"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 429 {object} map[string]string "demasiados intentos"
// @Router /api/users/login [post]
func loginHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		u, token, err := svc.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusOK, loginResponse{
			Message: "Login successful",
			Token:   token,
			User:    u.Snapshot(),
		})
	}
}

// verifyTokenHandler godoc
// @Summary Verificar credencial
// @Description Usado por los otros servicios. Valida firma, expiración y que la identidad exista. Nunca dice por qué falló.
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Success 200 {object} verifyTokenResponse
// @Failure 401 {object} verifyTokenResponse
// @Router /api/users/verify-token [post]
func verifyTokenHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := middleware.BearerToken(r.Header.Get("Authorization"))
		if token == "" {
			httpx.WriteJSON(w, http.StatusUnauthorized, verifyTokenResponse{Valid: false})
			return
		}

		u, err := svc.VerifyRemote(r.Context(), token)
		if err != nil {
			log.Debug("verify-token rejected", map[string]any{"err": err})
			httpx.WriteJSON(w, http.StatusUnauthorized, verifyTokenResponse{Valid: false})
			return
		}

		snap := u.Snapshot()
		httpx.WriteJSON(w, http.StatusOK, verifyTokenResponse{Valid: true, User: &snap})
	}
}

// getProfileHandler godoc
// @Summary Ver mi perfil
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Success 200 {object} profileResponse
// @Failure 401 {object} map[string]string
// @Router /api/users/profile [get]
func getProfileHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		u, err := svc.GetByID(r.Context(), p.UserID)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toProfileResponse(u))
	}
}

// updateProfileHandler godoc
// @Summary Actualizar mi perfil
// @Description Solo name, phone y address. Email y password se ignoran.
// @Tags users
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param payload body updateProfileRequest true "Campos a cambiar"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Router /api/users/profile [put]
func updateProfileHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		var req updateProfileRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		if _, err := svc.UpdateProfile(r.Context(), p.UserID, UpdateProfileInput{
			Name:    req.Name,
			Phone:   req.Phone,
			Address: req.Address,
		}); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteMessage(w, http.StatusOK, "Profile updated successfully")
	}
}

// deleteProfileHandler godoc
// @Summary Borrar mi cuenta
// @Description No borra en cascada los registros de otros servicios.
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Success 200 {object} map[string]string
// @Router /api/users/profile [delete]
func deleteProfileHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		if err := svc.DeleteProfile(r.Context(), p.UserID); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		log.Info("user deleted", map[string]any{"user_id": p.UserID})
		httpx.WriteMessage(w, http.StatusOK, "Profile deleted successfully")
	}
}

// getUserHandler godoc
// @Summary Ver usuario por id
// @Tags users
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param userID path string true "ID del usuario"
// @Success 200 {object} profileResponse
// @Failure 404 {object} map[string]string
// @Router /api/users/{userID} [get]
func getUserHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ auth.Principal) {
		u, err := svc.GetByID(r.Context(), chi.URLParam(r, "userID"))
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toProfileResponse(u))
	}
}

func toProfileResponse(u Identity) profileResponse {
	return profileResponse{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Address:   u.Address,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
