package api

import (
	"encoding/json"
	"log"
	"net/http"

	"remotecalc/internal/types"
)

// SendErrorResponse отвечает JSON вида {"error": message}
func SendErrorResponse(w http.ResponseWriter, status int, message string) {
	SendJSON(w, status, types.ErrorResponse{Error: message})
}

func SendJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Ошибка записи ответа: %v", err)
	}
}
