// Package httpx junta los helpers de respuesta que antes estaban duplicados
// en cada handler (writeJSON). Con cinco servicios ya no tenía sentido repetirlos.
package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"petpal/internal/platform/apperr"
	"petpal/internal/platform/logger"

	chimw "github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 1 << 20

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteMessage escribe el cuerpo estándar de error/éxito: {"message": "..."}.
func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, map[string]string{"message": msg})
}

// WriteError traduce un error de service a status + {"message"}.
// Los errores internos se loguean con detalle y al cliente solo le llega "internal error".
func WriteError(w http.ResponseWriter, r *http.Request, log logger.Logger, err error) {
	status := apperr.HTTPStatus(err)
	if status >= http.StatusInternalServerError && log != nil {
		log.Error("request failed", map[string]any{
			"request_id": chimw.GetReqID(r.Context()),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     status,
			"err":        err,
		})
	}
	WriteMessage(w, status, apperr.PublicMessage(err))
}

// DecodeJSON decodifica el body a v. Body vacío => "No data provided".
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return apperr.Validation("No data provided")
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return apperr.Validation("invalid json")
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) || bytes.Equal(raw, []byte("{}")) {
		return apperr.Validation("No data provided")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return apperr.Validation("%s has an invalid type", typeErr.Field)
		}
		return apperr.Validation("invalid json")
	}
	return nil
}
