package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/AratKruglik/wayforpay-go/internal/core/domain"
	"github.com/AratKruglik/wayforpay-go/internal/core/ports"
)

// WebhookHandler adapts the gateway port to the inbound callback endpoint.
type WebhookHandler struct {
	gateway ports.Gateway
	logger  *slog.Logger
}

func NewWebhookHandler(gateway ports.Gateway, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		gateway: gateway,
		logger:  logger,
	}
}

// HandleCallback decodes the flat field map the gateway POSTs, runs it
// through the core and answers with the signed acknowledgement. A signature
// mismatch maps to 403, every other validation failure to 400.
func (h *WebhookHandler) HandleCallback(w http.ResponseWriter, r *http.Request) {
	var payload map[string]any
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ack, err := h.gateway.HandleWebhook(r.Context(), payload)
	if err != nil {
		var malformed *domain.MalformedWebhookError
		switch {
		case errors.Is(err, domain.ErrSignatureMismatch):
			writeJSONError(w, "invalid signature", http.StatusForbidden)

		case errors.As(err, &malformed):
			writeJSONError(w, err.Error(), http.StatusBadRequest)

		default:
			h.logger.Error("unexpected error while handling webhook", "error", err)
			writeJSONError(w, "internal server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(ack); err != nil {
		h.logger.Error("failed to write webhook acknowledgement", "error", err)
	}
}

// writeJSONError is a helper for sending errors in JSON format.
func writeJSONError(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status":  "error",
		"message": message,
	})
}
