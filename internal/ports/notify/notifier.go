package notify

import "context"

// ReviewNotice lleva lo mínimo que necesita un canal de notificación
// para avisar a un solicitante sobre el resultado de su revisión.
type ReviewNotice struct {
	ApplicationID string
	UserID        string
	PetID         string
	Notes         string
}

// Notifier recibe los hooks post-commit del motor de revisión.
// La decisión ya quedó persistida cuando se invocan: un error aquí
// jamás debe revertir ni reportarse como fallo de la revisión.
type Notifier interface {
	ApplicationApproved(ctx context.Context, n ReviewNotice) error
	ApplicationRejected(ctx context.Context, n ReviewNotice) error
	ApplicationAutoRejected(ctx context.Context, n ReviewNotice) error
}
