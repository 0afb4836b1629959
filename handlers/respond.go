package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"contasai/web/controller"
	"contasai/web/services"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// statusForError maps the failure taxonomy onto HTTP statuses: client-side
// validation is 400, backend failures are 502, anything else 500.
func statusForError(err error) int {
	var verr controller.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	var aerr *services.APIError
	if errors.As(err, &aerr) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
