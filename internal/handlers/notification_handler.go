package handlers

import (
	"net/http"

	"github.com/Lixing-Zhang/kart-challenge/client-core/internal/notify"
	"go.uber.org/zap"
)

// NotificationHandler hands pending toasts to the UI
type NotificationHandler struct {
	center *notify.Center
	logger *zap.Logger
}

func NewNotificationHandler(center *notify.Center, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{center: center, logger: logger}
}

// Drain handles GET /api/notifications
// Each notification is delivered once.
func (h *NotificationHandler) Drain(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, h.center.Drain(), h.logger)
}
