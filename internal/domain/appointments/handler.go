package appointments

import (
	"net/http"
	"time"

	"petpal/internal/middleware"
	"petpal/internal/platform/httpx"
	"petpal/internal/platform/logger"
	"petpal/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, requireAuth func(http.Handler) http.Handler, log logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}
	r.Route("/api/appointments", func(ar chi.Router) {
		ar.Use(requireAuth)

		ar.Post("/", middleware.Authed(createAppointmentHandler(svc, log)))
		ar.Get("/", middleware.Authed(listAppointmentsHandler(svc, log)))
		ar.Get("/upcoming", middleware.Authed(upcomingHandler(svc, log)))
		ar.Get("/pet/{petID}", middleware.Authed(listByPetHandler(svc, log)))

		ar.Get("/{appointmentID}", middleware.Authed(getAppointmentHandler(svc, log)))
		ar.Put("/{appointmentID}", middleware.Authed(updateAppointmentHandler(svc, log)))
		ar.Delete("/{appointmentID}", middleware.Authed(deleteAppointmentHandler(svc, log)))
	})
}

type createAppointmentRequest struct {
	PetID           string `json:"pet_id"`
	AppointmentDate string `json:"appointment_date"` // YYYY-MM-DD o ISO-8601
	AppointmentTime string `json:"appointment_time"` // HH:MM opcional
	AppointmentType string `json:"appointment_type"`
	Veterinarian    string `json:"veterinarian"`
	Clinic          string `json:"clinic"`
	Reason          string `json:"reason"`
	Notes           string `json:"notes"`
	Status          string `json:"status"`
}

type updateAppointmentRequest struct {
	PetID           *string `json:"pet_id"`
	AppointmentDate *string `json:"appointment_date"`
	AppointmentTime *string `json:"appointment_time"`
	AppointmentType *string `json:"appointment_type"`
	Veterinarian    *string `json:"veterinarian"`
	Clinic          *string `json:"clinic"`
	Reason          *string `json:"reason"`
	Notes           *string `json:"notes"`
	Status          *string `json:"status"`
}

type appointmentResponse struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	PetID           string    `json:"pet_id"`
	AppointmentDate time.Time `json:"appointment_date"`
	AppointmentTime string    `json:"appointment_time,omitempty"`
	AppointmentType string    `json:"appointment_type"`
	Veterinarian    string    `json:"veterinarian"`
	Clinic          string    `json:"clinic,omitempty"`
	Reason          string    `json:"reason,omitempty"`
	Notes           string    `json:"notes,omitempty"`
	Status          Status    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type createAppointmentResponse struct {
	Message       string `json:"message"`
	AppointmentID string `json:"appointment_id"`
}

// createAppointmentHandler godoc
// @Summary Crear turno
// @Description Requiere pet_id, appointment_date, appointment_type y veterinarian. La fecha tiene que ser futura. La mascota se verifica contra el servicio de mascotas con el mismo token.
// @Tags appointments
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param payload body createAppointmentRequest true "Datos del turno"
// @Success 201 {object} createAppointmentResponse
// @Failure 400 {object} map[string]string "validación o fecha pasada"
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string "Pet not found or access denied"
// @Router /api/appointments/ [post]
func createAppointmentHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		var req createAppointmentRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		a, err := svc.Create(r.Context(), p, CreateInput(req))
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		httpx.WriteJSON(w, http.StatusCreated, createAppointmentResponse{
			Message:       "Appointment created successfully",
			AppointmentID: a.ID,
		})
	}
}

// listAppointmentsHandler godoc
// @Summary Listar mis turnos
// @Tags appointments
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Success 200 {array} appointmentResponse
// @Router /api/appointments/ [get]
func listAppointmentsHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		items, err := svc.List(r.Context(), p.UserID)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toResponses(items))
	}
}

// upcomingHandler godoc
// @Summary Próximos turnos
// @Description scheduled o confirmed, desde ahora, el más próximo primero.
// @Tags appointments
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Success 200 {array} appointmentResponse
// @Router /api/appointments/upcoming [get]
func upcomingHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		items, err := svc.Upcoming(r.Context(), p.UserID)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toResponses(items))
	}
}

// listByPetHandler godoc
// @Summary Turnos de una mascota
// @Tags appointments
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param petID path string true "ID de la mascota"
// @Success 200 {array} appointmentResponse
// @Failure 404 {object} map[string]string "Pet not found or access denied"
// @Router /api/appointments/pet/{petID} [get]
func listByPetHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		items, err := svc.ListByPet(r.Context(), p, chi.URLParam(r, "petID"))
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toResponses(items))
	}
}

// getAppointmentHandler godoc
// @Summary Ver turno
// @Tags appointments
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param appointmentID path string true "ID del turno"
// @Success 200 {object} appointmentResponse
// @Failure 404 {object} map[string]string
// @Router /api/appointments/{appointmentID} [get]
func getAppointmentHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		a, err := svc.Get(r.Context(), chi.URLParam(r, "appointmentID"), p.UserID)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toResponse(a))
	}
}

// updateAppointmentHandler godoc
// @Summary Actualizar turno
// @Description Parcial. Si cambia pet_id se vuelve a verificar la mascota.
// @Tags appointments
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param appointmentID path string true "ID del turno"
// @Param payload body updateAppointmentRequest true "Campos a cambiar"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/appointments/{appointmentID} [put]
func updateAppointmentHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		var req updateAppointmentRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		if _, err := svc.Update(r.Context(), p, chi.URLParam(r, "appointmentID"), UpdateInput(req)); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteMessage(w, http.StatusOK, "Appointment updated successfully")
	}
}

// deleteAppointmentHandler godoc
// @Summary Borrar turno
// @Tags appointments
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param appointmentID path string true "ID del turno"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/appointments/{appointmentID} [delete]
func deleteAppointmentHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "appointmentID"), p.UserID); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteMessage(w, http.StatusOK, "Appointment deleted successfully")
	}
}

func toResponses(items []Appointment) []appointmentResponse {
	out := make([]appointmentResponse, 0, len(items))
	for _, a := range items {
		out = append(out, toResponse(a))
	}
	return out
}

func toResponse(a Appointment) appointmentResponse {
	return appointmentResponse{
		ID:              a.ID,
		UserID:          a.UserID,
		PetID:           a.PetID,
		AppointmentDate: a.AppointmentDate,
		AppointmentTime: a.AppointmentTime,
		AppointmentType: a.AppointmentType,
		Veterinarian:    a.Veterinarian,
		Clinic:          a.Clinic,
		Reason:          a.Reason,
		Notes:           a.Notes,
		Status:          a.Status,
		CreatedAt:       a.CreatedAt,
		UpdatedAt:       a.UpdatedAt,
	}
}
