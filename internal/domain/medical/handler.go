package medical

import (
	"net/http"
	"strconv"
	"time"

	"petpal/internal/middleware"
	"petpal/internal/platform/fields"
	"petpal/internal/platform/httpx"
	"petpal/internal/platform/logger"
	"petpal/internal/ports/auth"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, requireAuth func(http.Handler) http.Handler, log logger.Logger) {
	if log == nil {
		log = logger.Nop()
	}
	r.Route("/api/medical", func(mr chi.Router) {
		mr.Use(requireAuth)

		mr.Post("/", middleware.Authed(createRecordHandler(svc, log)))
		mr.Get("/", middleware.Authed(listRecordsHandler(svc, log)))

		// Lecturas derivadas
		mr.Get("/recent", middleware.Authed(recentHandler(svc, log)))
		mr.Get("/search", middleware.Authed(searchHandler(svc, log)))
		mr.Get("/stats", middleware.Authed(statsHandler(svc, log)))
		mr.Get("/export", middleware.Authed(exportHandler(svc, log)))
		mr.Get("/pet/{petID}", middleware.Authed(byPetHandler(svc, log)))
		mr.Get("/pet/{petID}/vaccinations", middleware.Authed(vaccinationsHandler(svc, log)))
		mr.Get("/pet/{petID}/type/{recordType}", middleware.Authed(byTypeHandler(svc, log)))

		mr.Get("/{recordID}", middleware.Authed(getRecordHandler(svc, log)))
		mr.Put("/{recordID}", middleware.Authed(updateRecordHandler(svc, log)))
		mr.Delete("/{recordID}", middleware.Authed(deleteRecordHandler(svc, log)))
	})
}

type createRecordRequest struct {
	PetID        string        `json:"pet_id"`
	VisitDate    string        `json:"visit_date"`
	RecordType   string        `json:"record_type"`
	Veterinarian string        `json:"veterinarian"`
	Diagnosis    string        `json:"diagnosis"`
	Treatment    string        `json:"treatment"`
	Medications  string        `json:"medications"`
	Notes        string        `json:"notes"`
	Clinic       string        `json:"clinic"`
	Weight       fields.Number `json:"weight" swaggertype:"number"`
	Temperature  fields.Number `json:"temperature" swaggertype:"number"`
	FollowUpDate string        `json:"follow_up_date"`
}

type updateRecordRequest struct {
	PetID        *string       `json:"pet_id"`
	VisitDate    *string       `json:"visit_date"`
	RecordType   *string       `json:"record_type"`
	Veterinarian *string       `json:"veterinarian"`
	Diagnosis    *string       `json:"diagnosis"`
	Treatment    *string       `json:"treatment"`
	Medications  *string       `json:"medications"`
	Notes        *string       `json:"notes"`
	Clinic       *string       `json:"clinic"`
	Weight       fields.Number `json:"weight" swaggertype:"number"`
	Temperature  fields.Number `json:"temperature" swaggertype:"number"`
	FollowUpDate *string       `json:"follow_up_date"`
}

type recordResponse struct {
	ID           string     `json:"id"`
	UserID       string     `json:"user_id"`
	PetID        string     `json:"pet_id"`
	VisitDate    time.Time  `json:"visit_date"`
	RecordType   string     `json:"record_type"`
	Veterinarian string     `json:"veterinarian"`
	Diagnosis    string     `json:"diagnosis"`
	Treatment    string     `json:"treatment,omitempty"`
	Medications  string     `json:"medications,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	Clinic       string     `json:"clinic,omitempty"`
	Weight       *float64   `json:"weight,omitempty"`
	Temperature  *float64   `json:"temperature,omitempty"`
	FollowUpDate *time.Time `json:"follow_up_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

type createRecordResponse struct {
	Message  string `json:"message"`
	RecordID string `json:"record_id"`
}

type searchResponse struct {
	Records []recordResponse `json:"records"`
	Total   int              `json:"total"`
	Query   string           `json:"query"`
}

type exportResponse struct {
	Records      []recordResponse `json:"records"`
	ExportedAt   time.Time        `json:"exported_at"`
	TotalRecords int              `json:"total_records"`
}

// createRecordHandler godoc
// @Summary Crear registro médico
// @Description Requiere pet_id, visit_date, record_type, veterinarian y diagnosis. La mascota se verifica contra el servicio de mascotas.
// @Tags medical
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param payload body createRecordRequest true "Datos del registro"
// @Success 201 {object} createRecordResponse
// @Failure 400 {object} map[string]string
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string "Pet not found or access denied"
// @Router /api/medical/ [post]
func createRecordHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		var req createRecordRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}

		rec, err := svc.Create(r.Context(), p, CreateInput(req))
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusCreated, createRecordResponse{
			Message:  "Medical record created successfully",
			RecordID: rec.ID,
		})
	}
}

// listRecordsHandler godoc
// @Summary Listar mis registros
// @Tags medical
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Success 200 {array} recordResponse
// @Router /api/medical/ [get]
func listRecordsHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		items, err := svc.List(r.Context(), p.UserID)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toResponses(items))
	}
}

// recentHandler godoc
// @Summary Registros recientes
// @Tags medical
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param limit query int false "Por defecto 10, máximo 100"
// @Success 200 {array} recordResponse
// @Router /api/medical/recent [get]
func recentHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
		if err != nil {
			limit = DefaultRecentLimit
		}
		items, err := svc.Recent(r.Context(), p.UserID, limit)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toResponses(items))
	}
}

// searchHandler godoc
// @Summary Buscar registros
// @Description q busca en diagnosis, treatment, medications, notes y veterinarian.
// @Tags medical
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param q query string false "Texto"
// @Param type query string false "record_type exacto"
// @Param pet_id query string false "ID de mascota"
// @Param start_date query string false "Desde (visit_date)"
// @Param end_date query string false "Hasta (visit_date)"
// @Success 200 {object} searchResponse
// @Failure 400 {object} map[string]string
// @Router /api/medical/search [get]
func searchHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		q := r.URL.Query()
		items, err := svc.Search(r.Context(), p.UserID, SearchFilter{
			Query:      q.Get("q"),
			RecordType: q.Get("type"),
			PetID:      q.Get("pet_id"),
			StartDate:  q.Get("start_date"),
			EndDate:    q.Get("end_date"),
		})
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, searchResponse{
			Records: toResponses(items),
			Total:   len(items),
			Query:   q.Get("q"),
		})
	}
}

// statsHandler godoc
// @Summary Estadísticas
// @Tags medical
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Success 200 {object} Stats
// @Router /api/medical/stats [get]
func statsHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		st, err := svc.Stats(r.Context(), p.UserID)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, st)
	}
}

// exportHandler godoc
// @Summary Exportar historia clínica
// @Tags medical
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Success 200 {object} exportResponse
// @Router /api/medical/export [get]
func exportHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		items, at, err := svc.Export(r.Context(), p.UserID)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, exportResponse{
			Records:      toResponses(items),
			ExportedAt:   at,
			TotalRecords: len(items),
		})
	}
}

// byPetHandler godoc
// @Summary Registros de una mascota
// @Tags medical
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param petID path string true "ID de la mascota"
// @Success 200 {array} recordResponse
// @Failure 404 {object} map[string]string "Pet not found or access denied"
// @Router /api/medical/pet/{petID} [get]
func byPetHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		items, err := svc.ListByPet(r.Context(), p, chi.URLParam(r, "petID"), "")
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toResponses(items))
	}
}

// @Summary Historial de vacunas
// @Tags medical
// @Param petID path string true "ID de la mascota"
// @Success 200 {array} recordResponse
// @Router /api/medical/pet/{petID}/vaccinations [get]
func vaccinationsHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		items, err := svc.Vaccinations(r.Context(), p, chi.URLParam(r, "petID"))
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toResponses(items))
	}
}

// @Summary Registros de una mascota por tipo
// @Tags medical
// @Param petID path string true "ID de la mascota"
// @Param recordType path string true "record_type"
// @Success 200 {array} recordResponse
// @Router /api/medical/pet/{petID}/type/{recordType} [get]
func byTypeHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		items, err := svc.ListByPet(r.Context(), p, chi.URLParam(r, "petID"), chi.URLParam(r, "recordType"))
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toResponses(items))
	}
}

// getRecordHandler godoc
// @Summary Ver registro
// @Tags medical
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param recordID path string true "ID del registro"
// @Success 200 {object} recordResponse
// @Failure 404 {object} map[string]string
// @Router /api/medical/{recordID} [get]
func getRecordHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		rec, err := svc.Get(r.Context(), chi.URLParam(r, "recordID"), p.UserID)
		if err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteJSON(w, http.StatusOK, toResponse(rec))
	}
}

// updateRecordHandler godoc
// @Summary Actualizar registro
// @Tags medical
// @Accept json
// @Produce json
// @Param Authorization header string true "Bearer <token>"
// @Param recordID path string true "ID del registro"
// @Param payload body updateRecordRequest true "Campos a cambiar"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/medical/{recordID} [put]
func updateRecordHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		var req updateRecordRequest
		if err := httpx.DecodeJSON(r, &req); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		if _, err := svc.Update(r.Context(), p, chi.URLParam(r, "recordID"), UpdateInput(req)); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteMessage(w, http.StatusOK, "Medical record updated successfully")
	}
}

// deleteRecordHandler godoc
// @Summary Borrar registro
// @Tags medical
// @Param Authorization header string true "Bearer <token>"
// @Param recordID path string true "ID del registro"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/medical/{recordID} [delete]
func deleteRecordHandler(svc *Service, log logger.Logger) middleware.AuthedHandlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p auth.Principal) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "recordID"), p.UserID); err != nil {
			httpx.WriteError(w, r, log, err)
			return
		}
		httpx.WriteMessage(w, http.StatusOK, "Medical record deleted successfully")
	}
}

func toResponses(items []Record) []recordResponse {
	out := make([]recordResponse, 0, len(items))
	for _, rec := range items {
		out = append(out, toResponse(rec))
	}
	return out
}

func toResponse(rec Record) recordResponse {
	return recordResponse{
		ID:           rec.ID,
		UserID:       rec.UserID,
		PetID:        rec.PetID,
		VisitDate:    rec.VisitDate,
		RecordType:   rec.RecordType,
		Veterinarian: rec.Veterinarian,
		Diagnosis:    rec.Diagnosis,
		Treatment:    rec.Treatment,
		Medications:  rec.Medications,
		Notes:        rec.Notes,
		Clinic:       rec.Clinic,
		Weight:       rec.Weight,
		Temperature:  rec.Temperature,
		FollowUpDate: rec.FollowUpDate,
		CreatedAt:    rec.CreatedAt,
		UpdatedAt:    rec.UpdatedAt,
	}
}
