package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/turismo-portal/internal/email"
)

// SettingSource supplies the currently configured notification addresses.
type SettingSource interface {
	ActiveEmails(ctx context.Context, settingType SettingType) ([]string, error)
}

// Handler turns confirmation payloads into the customer email and the staff
// copies. It backs both the Kafka worker and the Lambda entrypoint.
type Handler struct {
	emailService *email.Service
	settings     SettingSource
}

func NewHandler(emailService *email.Service, settings SettingSource) *Handler {
	return &Handler{
		emailService: emailService,
		settings:     settings,
	}
}

// HandleMessage adapts Process to the Kafka consumer callback.
func (h *Handler) HandleMessage(ctx context.Context, key, value []byte) error {
	var confirmation OrderConfirmation
	if err := json.Unmarshal(value, &confirmation); err != nil {
		log.Printf("[Notifier] Failed to unmarshal confirmation: %v", err)
		return err
	}
	return h.Process(ctx, confirmation)
}

// Process sends the buyer confirmation and then a copy to every active
// internal address. A failed internal copy is logged and does not stop the
// remaining ones.
func (h *Handler) Process(ctx context.Context, confirmation OrderConfirmation) error {
	log.Printf("[Notifier] Processing confirmation for order %s (%s)",
		confirmation.OrderNumber, confirmation.UserEmail)

	lines := make([]email.OrderLine, len(confirmation.Items))
	for i, item := range confirmation.Items {
		lines[i] = email.OrderLine{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		}
	}

	if err := h.emailService.SendOrderConfirmation(
		confirmation.UserEmail, confirmation.OrderNumber, confirmation.UserName,
		confirmation.TotalAmount, lines); err != nil {
		log.Printf("[Notifier] Failed to send confirmation to %s: %v", confirmation.UserEmail, err)
		return err
	}

	internal, err := h.settings.ActiveEmails(ctx, TypeInternal)
	if err != nil {
		log.Printf("[Notifier] Could not load internal addresses: %v", err)
		return err
	}
	for _, addr := range internal {
		if err := h.emailService.SendInternalNotification(
			addr, confirmation.OrderNumber, confirmation.UserName, confirmation.UserEmail,
			confirmation.TotalAmount, lines); err != nil {
			log.Printf("[Notifier] Failed to send internal copy to %s: %v", addr, err)
		}
	}

	log.Printf("[Notifier] Order %s notified (%d internal copies)",
		confirmation.OrderNumber, len(internal))
	return nil
}
