package chat

import (
	"TallyChat/models"
	svc "TallyChat/pkg/services"
)

// BuildHistory converts persisted messages into the gateway's turn format.
// Order is preserved exactly; nothing is added, dropped, or reordered.
// A brand-new conversation yields an empty history.
func BuildHistory(msgs []models.Message) []svc.ChatMessage {
	if len(msgs) == 0 {
		return nil
	}
	history := make([]svc.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		role := models.RoleUser
		if m.Role == models.RoleAssistant {
			role = models.RoleAssistant
		}
		history = append(history, svc.ChatMessage{Role: role, Text: m.Content})
	}
	return history
}
