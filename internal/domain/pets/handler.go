package pets

import (
	"net/http"
	"time"

	"petpal/internal/middleware"
	"petpal/internal/platform/apperr"
	"petpal/internal/platform/fields"
	"petpal/internal/platform/httpx"
	"petpal/internal/platform/logger"
	"petpal/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

// RegisterRoutes monta /api/pets. requireAuth debe verificar contra el servicio de usuarios.
func RegisterRoutes(r chi.Router, svc *Service, requireAuth func(http.Handler) http.Handler, log logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}
	r.Route("/api/pets", func(pr chi.Router) {
		pr.Use(requireAuth)

		pr.Post("/", middleware.Authed(createPetHandler(svc, log)))
		pr.Get("/", middleware.Authed(listPetsHandler(svc, log)))

		// Protocolo de ownership (lo llaman appointments y medical)
		pr.Get("/verify/{petID}", middleware.Authed(verifyPetHandler(svc, log)))

		pr.Get("/{petID}", middleware.Authed(getPetHandler(svc, log)))
		pr.Put("/{petID}", middleware.Authed(updatePetHandler(svc, log)))
		pr.Delete("/{petID}", middleware.Authed(deletePetHandler(svc, log)))
	})
}

type createPetRequest struct {
	Name        string        `json:"name"`
	Species     string        `json:"species"`
	Breed       string        `json:"breed"`
	Age         fields.Number `json:"age" swaggertype:"number"`
	Weight      fields.Number `json:"weight" swaggertype:"number"`
	Color       string        `json:"color"`
	Gender      string        `json:"gender"`
	MicrochipID string        `json:"microchip_id"`
	Notes       string        `json:"notes"`
}

type updatePetRequest struct {
	Name        *string       `json:"name"`
	Species     *string       `json:"species"`
	Breed       *string       `json:"breed"`
	Age         fields.Number `json:"age" swaggertype:"number"`
	Weight      fields.Number `json:"weight" swaggertype:"number"`
	Color       *string       `json:"color"`
	Gender      *string       `json:"gender"`
	MicrochipID *string       `json:"microchip_id"`
	Notes       *string       `json:"notes"`
}

type petResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Species     string    `json:"species"`
	Breed       string    `json:"breed"`
	Age         float64   `json:"age"`
	Weight      *float64  `json:"weight,omitempty"`
	Color       string    `json:"color,omitempty"`
	Gender      string    `json:"gender,omitempty"`
	MicrochipID string    `json:"microchip_id,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type createPetResponse struct {
	Message string `json:"message"`
	PetID   string `json:"pet_id"`
}

type verifyPetResponse struct {
	Valid bool         `json:"valid"`
	Pet   *petResponse `json:"pet,omitempty"`
}

// createPetHandler godoc
// @Summary Crear mascota
// @Description name, species, breed y age son obligatorios. age y weight aceptan número o string numérico.
// @Tags pets
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param payload body createPetRequest true "Datos de la mascota"
// @Success 201 {object} createPetResponse
// @Failure 400 {object} map[string]string "validación"
// @Failure 401 {object} map[string]string "token faltante o inválido"
// @Router /api/pets/ [post]
func createPetHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		var req createPetRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		pet, err := svc.Create(r.Context(), p.UserID, CreateInput{
			Name:        req.Name,
			Species:     req.Species,
			Breed:       req.Breed,
			Age:         req.Age,
			Weight:      req.Weight,
			Color:       req.Color,
			Gender:      req.Gender,
			MicrochipID: req.MicrochipID,
			Notes:       req.Notes,
		})
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, createPetResponse{
			Message: "Pet created successfully",
			PetID:   pet.ID,
		})
	}
}

// listPetsHandler godoc
// @Summary Listar mis mascotas
// @Tags pets
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Success 200 {array} petResponse
// @Router /api/pets/ [get]
func listPetsHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		items, err := svc.ListByOwner(r.Context(), p.UserID)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		out := make([]petResponse, 0, len(items))
		for _, it := range items {
			out = append(out, toPetResponse(it))
		}
		httpx.WriteJSON(w, http.StatusOK, out)
	}
}

// getPetHandler godoc
// @Summary Ver mascota
// @Description Una mascota ajena responde igual que una inexistente.
// @Tags pets
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} petResponse
// @Failure 404 {object} map[string]string "Pet not found"
// @Router /api/pets/{petID} [get]
func getPetHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		pet, err := svc.Get(r.Context(), chi.URLParam(r, "petID"), p.UserID)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toPetResponse(pet))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description Solo se aplican los campos enviados. id, user_id y created_at se ignoran.
// @Tags pets
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param petID path string true "ID de la mascota"
// @Param payload body updatePetRequest true "Campos a cambiar"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/pets/{petID} [put]
func updatePetHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		var req updatePetRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		if _, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), p.UserID, UpdateInput{
			Name:        req.Name,
			Species:     req.Species,
			Breed:       req.Breed,
			Age:         req.Age,
			Weight:      req.Weight,
			Color:       req.Color,
			Gender:      req.Gender,
			MicrochipID: req.MicrochipID,
			Notes:       req.Notes,
		}); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteMessage(w, http.StatusOK, "Pet updated successfully")
	}
}

// deletePetHandler godoc
// @Summary Borrar mascota
// @Tags pets
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/pets/{petID} [delete]
func deletePetHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "petID"), p.UserID); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteMessage(w, http.StatusOK, "Pet deleted successfully")
	}
}

// verifyPetHandler godoc
// @Summary Verificar ownership
// @Description Endpoint servicio-a-servicio. 200 si la mascota es del caller, 404 en cualquier otro caso.
// @Tags pets
// @Produce json
// @Param Authorization header string true "Bearer <token> del usuario final"
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} verifyPetResponse
// @Failure 404 {object} verifyPetResponse
// @Router /api/pets/verify/{petID} [get]
func verifyPetHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		pet, err := svc.VerifyOwnership(r.Context(), chi.URLParam(r, "petID"), p.UserID)
		if err != nil {
			status := http.StatusNotFound
			if !apperr.Is(err, apperr.KindNotFound) {
				status = http.StatusInternalServerError
				log.Error("pet verify failed", map[string]any{"err": err})
			}
			httpx.WriteJSON(w, status, verifyPetResponse{Valid: false})
			return
		}

		resp := toPetResponse(pet)
		httpx.WriteJSON(w, http.StatusOK, verifyPetResponse{Valid: true, Pet: &resp})
	}
}

func toPetResponse(p Pet) petResponse {
	return petResponse{
		ID:          p.ID,
		UserID:      p.UserID,
		Name:        p.Name,
		Species:     p.Species,
		Breed:       p.Breed,
		Age:         p.Age,
		Weight:      p.Weight,
		Color:       p.Color,
		Gender:      p.Gender,
		MicrochipID: p.MicrochipID,
		Notes:       p.Notes,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}
