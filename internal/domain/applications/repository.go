package applications

import (
	"context"
	"time"
)

type ListFilter struct {
	Status Status
	PetID  string
}

// ApproveParams agrupa los writes de la transacción de aprobación.
type ApproveParams struct {
	ApplicationID string
	PetID         string
	ReviewedAt    time.Time
	ReviewerNotes string

	// Nota del sistema para las hermanas auto-rechazadas (no la del admin).
	AutoRejectNotes string
}

// ApprovalResult reporta qué hermanas quedaron auto-rechazadas en la misma
// transacción, para disparar las notificaciones post-commit.
type ApprovalResult struct {
	AutoRejected []Application
}

type Repository interface {
	Create(ctx context.Context, a Application) error
	GetByID(ctx context.Context, id string) (Application, error)
	ListByUser(ctx context.Context, userID string) ([]Application, error)
	List(ctx context.Context, f ListFilter) ([]Application, error)

	// FindByUserAndPet devuelve la solicitud no-withdrawn del par (user, pet),
	// o ErrNotFound si no existe.
	FindByUserAndPet(ctx context.Context, userID, petID string) (Application, error)
	HasApprovedByUser(ctx context.Context, userID string) (bool, error)
	HasApprovedForPet(ctx context.Context, petID string) (bool, error)

	// Reject es un update condicional de una sola fila (WHERE status = pending).
	// Si la fila ya no está pending devuelve ErrInvalidState.
	Reject(ctx context.Context, id string, reviewedAt time.Time, notes string) error

	// Withdraw es el mismo update condicional, iniciado por el solicitante.
	Withdraw(ctx context.Context, id string) error

	// Approve ejecuta la transacción atómica completa: aprueba la solicitud
	// (condicional sobre pending), pasa la mascota a pending y auto-rechaza
	// todas las hermanas pending. Todo commitea junto o nada persiste.
	// Una aprobación perdida por carrera devuelve ErrInvalidState.
	Approve(ctx context.Context, p ApproveParams) (ApprovalResult, error)
}
