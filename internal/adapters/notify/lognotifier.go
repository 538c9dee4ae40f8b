package notify

import (
	"context"

	"pet-adoption-platform/internal/platform/logger"
	"pet-adoption-platform/internal/ports/notify"
)

// LogNotifier implementa los hooks de revisión logueando el evento.
// El envío real de emails está fuera de alcance; este adapter deja el
// rastro necesario para enchufar un canal real después sin tocar el motor.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) ApplicationApproved(ctx context.Context, notice notify.ReviewNotice) error {
	n.emit("application approved", notice)
	return nil
}

func (n *LogNotifier) ApplicationRejected(ctx context.Context, notice notify.ReviewNotice) error {
	n.emit("application rejected", notice)
	return nil
}

func (n *LogNotifier) ApplicationAutoRejected(ctx context.Context, notice notify.ReviewNotice) error {
	n.emit("application auto-rejected", notice)
	return nil
}

func (n *LogNotifier) emit(msg string, notice notify.ReviewNotice) {
	if n == nil || n.log == nil {
		return
	}
	n.log.Info(msg, map[string]any{
		"application_id": notice.ApplicationID,
		"user_id":        notice.UserID,
		"pet_id":         notice.PetID,
	})
}
