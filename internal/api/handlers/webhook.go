package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"delivery-log-service/internal/services"
)

// WebhookHandler receives the messaging provider's inbound webhook. Each
// call is one conversation turn; all state lives behind the conversation's
// pending store.
type WebhookHandler struct {
	Conversation *services.Conversation
}

// Receive parses the provider's form-encoded payload, hands the message to
// the conversation, and renders the single reply as TwiML.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if err := r.ParseForm(); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid form body")
		return
	}

	// NumMedia is absent on plain text messages; treat that as zero.
	mediaCount, _ := strconv.Atoi(r.FormValue("NumMedia"))

	msg := services.Inbound{
		SenderID:         strings.TrimPrefix(r.FormValue("From"), "whatsapp:"),
		Body:             strings.TrimSpace(r.FormValue("Body")),
		MediaCount:       mediaCount,
		MediaContentType: r.FormValue("MediaContentType0"),
		MediaURL:         r.FormValue("MediaUrl0"),
	}

	reply := h.Conversation.Handle(r.Context(), msg)
	writeTwiML(w, r, reply.Status, reply.Text)
}
