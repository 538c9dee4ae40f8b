package applications

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"pet-adoption-platform/internal/ports/notify"
)

// Decision es la acción del revisor sobre una solicitud pending.
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

type ReviewInput struct {
	Decision      string
	ReviewerNotes string
}

type ReviewOutcome struct {
	Application Application

	// Hermanas rechazadas por la aprobación, ya con la nota del sistema.
	AutoRejected []Application
}

// Review aplica la decisión de un admin sobre una solicitud pending.
//
// reject: update condicional de una sola fila, sin tocar nada más.
// approve: una transacción atómica que aprueba la solicitud, pasa la mascota
// a pending y auto-rechaza todas las hermanas pending. La re-verificación de
// status dentro de la transacción es la que resuelve dos aprobaciones
// concurrentes para la misma mascota: la que commitea primero gana y la otra
// recibe ErrInvalidState.
//
// Los hooks de notificación corren recién después del commit; si fallan se
// loguean y la revisión igual se reporta exitosa.
func (s *Service) Review(ctx context.Context, applicationID string, in ReviewInput) (ReviewOutcome, error) {
	applicationID = strings.TrimSpace(applicationID)
	if applicationID == "" {
		return ReviewOutcome{}, ErrNotFound
	}

	decision := Decision(strings.TrimSpace(in.Decision))
	if decision != DecisionApprove && decision != DecisionReject {
		return ReviewOutcome{}, ErrInvalidInput
	}

	app, err := s.repo.GetByID(ctx, applicationID)
	if err != nil {
		return ReviewOutcome{}, ErrNotFound
	}
	if app.Status != StatusPending {
		return ReviewOutcome{}, ErrInvalidState
	}

	now := s.now()
	notes := strings.TrimSpace(in.ReviewerNotes)

	if decision == DecisionReject {
		if err := s.repo.Reject(ctx, app.ID, now, notes); err != nil {
			if errors.Is(err, ErrInvalidState) || errors.Is(err, ErrNotFound) {
				// Perdió la carrera contra otra decisión entre el read y el write.
				return ReviewOutcome{}, ErrInvalidState
			}
			return ReviewOutcome{}, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
		}

		app.Status = StatusRejected
		app.ReviewedAt = &now
		app.ReviewerNotes = notes

		s.emitHook(ctx, hookRejected, app)
		return ReviewOutcome{Application: app}, nil
	}

	res, err := s.repo.Approve(ctx, ApproveParams{
		ApplicationID:   app.ID,
		PetID:           app.PetID,
		ReviewedAt:      now,
		ReviewerNotes:   notes,
		AutoRejectNotes: AutoRejectNote,
	})
	if err != nil {
		if errors.Is(err, ErrInvalidState) {
			return ReviewOutcome{}, ErrInvalidState
		}
		if errors.Is(err, ErrNotFound) {
			return ReviewOutcome{}, ErrNotFound
		}
		return ReviewOutcome{}, fmt.Errorf("%w: %v", ErrTransactionFailed, err)
	}

	app.Status = StatusApproved
	app.ReviewedAt = &now
	app.ReviewerNotes = notes

	s.emitHook(ctx, hookApproved, app)
	for _, sibling := range res.AutoRejected {
		s.emitHook(ctx, hookAutoRejected, sibling)
	}

	return ReviewOutcome{Application: app, AutoRejected: res.AutoRejected}, nil
}

type hookKind string

const (
	hookApproved     hookKind = "application_approved"
	hookRejected     hookKind = "application_rejected"
	hookAutoRejected hookKind = "application_auto_rejected"
)

// emitHook dispara la notificación post-commit correspondiente.
// Best-effort: un fallo acá nunca revierte ni reporta fallo de la decisión.
func (s *Service) emitHook(ctx context.Context, kind hookKind, a Application) {
	if s.notifier == nil {
		return
	}

	n := notify.ReviewNotice{
		ApplicationID: a.ID,
		UserID:        a.UserID,
		PetID:         a.PetID,
		Notes:         a.ReviewerNotes,
	}

	var err error
	switch kind {
	case hookApproved:
		err = s.notifier.ApplicationApproved(ctx, n)
	case hookRejected:
		err = s.notifier.ApplicationRejected(ctx, n)
	case hookAutoRejected:
		err = s.notifier.ApplicationAutoRejected(ctx, n)
	}

	if err != nil && s.log != nil {
		s.log.Warn("notification hook failed", map[string]any{
			"hook":           string(kind),
			"application_id": a.ID,
			"error":          err.Error(),
		})
	}
}
