package apitest

import (
	"encoding/json"
	"net/http"
	"strconv"
)

type envelope struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

type listEnvelope struct {
	Data     any `json:"data"`
	Paginate struct {
		IsNext bool `json:"is_next"`
	} `json:"paginate"`
}

type errorBody struct {
	Message string              `json:"message,omitempty"`
	Error   map[string][]string `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

func writeOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, envelope{Status: http.StatusOK, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string, fields map[string][]string) {
	writeJSON(w, status, errorBody{Message: message, Error: fields})
}

func writeUnauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "Unauthenticated.", nil)
}

func writeNotFound(w http.ResponseWriter) {
	writeError(w, http.StatusNotFound, "Not found.", nil)
}

func writeForbidden(w http.ResponseWriter) {
	writeError(w, http.StatusForbidden, "This action is unauthorized.", nil)
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
