package api

import (
	"net/http"

	"delivery-log-service/internal/api/handlers"
	"delivery-log-service/internal/ports"
	"delivery-log-service/internal/services"
)

// NewRouter wires HTTP handlers with their dependencies and returns an
// http.Handler. This is the API composition root; handlers stay unaware of
// concrete adapters.
func NewRouter(conv *services.Conversation, repo ports.DeliveryRepository) http.Handler {
	mux := http.NewServeMux()

	webhook := &handlers.WebhookHandler{Conversation: conv}
	deliveries := &handlers.DeliveryHandler{Repo: repo}

	mux.HandleFunc("/health", handlers.Health)
	mux.HandleFunc("/webhook", webhook.Receive)
	mux.HandleFunc("/deliveries", deliveries.List)

	return loggingMiddleware(recoverMiddleware(mux))
}
