package handlers

import (
	"encoding/json"
	"encoding/xml"
	"log"
	"net/http"

	"delivery-log-service/internal/api/dto"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

// writeTwiML renders one outbound message in the reply envelope the
// messaging transport expects.
func writeTwiML(w http.ResponseWriter, r *http.Request, status int, text string) {
	w.Header().Set("Content-Type", "application/xml")
	w.WriteHeader(status)

	if _, err := w.Write([]byte(xml.Header)); err != nil {
		log.Printf("twiml write failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
		return
	}
	if err := xml.NewEncoder(w).Encode(dto.MessagingResponse{Message: text}); err != nil {
		log.Printf("twiml encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}
