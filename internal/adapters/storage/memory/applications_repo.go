package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"pet-adoption-platform/internal/domain/applications"
	"pet-adoption-platform/internal/domain/pets"
)

// ApplicationsRepo guarda las solicitudes in-memory. Necesita el PetRepo
// para mutar el status de la mascota dentro de la "transacción" de Approve,
// que acá es simplemente todo-bajo-el-mismo-lock.
type ApplicationsRepo struct {
	mu   sync.Mutex
	byID map[string]applications.Application
	pets *PetRepo
}

func NewApplicationsRepo(petRepo *PetRepo) *ApplicationsRepo {
	return &ApplicationsRepo{
		byID: make(map[string]applications.Application),
		pets: petRepo,
	}
}

func (r *ApplicationsRepo) Create(ctx context.Context, a applications.Application) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("application id required")
	}
	if _, exists := r.byID[a.ID]; exists {
		return errors.New("application already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *ApplicationsRepo) GetByID(ctx context.Context, id string) (applications.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return applications.Application{}, applications.ErrNotFound
	}
	return a, nil
}

func (r *ApplicationsRepo) ListByUser(ctx context.Context, userID string) ([]applications.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]applications.Application, 0)
	for _, a := range r.byID {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sortBySubmittedDesc(out)
	return out, nil
}

func (r *ApplicationsRepo) List(ctx context.Context, f applications.ListFilter) ([]applications.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]applications.Application, 0)
	for _, a := range r.byID {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.PetID != "" && a.PetID != f.PetID {
			continue
		}
		out = append(out, a)
	}
	sortBySubmittedDesc(out)
	return out, nil
}

func (r *ApplicationsRepo) FindByUserAndPet(ctx context.Context, userID, petID string) (applications.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.byID {
		if a.UserID == userID && a.PetID == petID && a.Status != applications.StatusWithdrawn {
			return a, nil
		}
	}
	return applications.Application{}, applications.ErrNotFound
}

func (r *ApplicationsRepo) HasApprovedByUser(ctx context.Context, userID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.byID {
		if a.UserID == userID && a.Status == applications.StatusApproved {
			return true, nil
		}
	}
	return false, nil
}

func (r *ApplicationsRepo) HasApprovedForPet(ctx context.Context, petID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, a := range r.byID {
		if a.PetID == petID && a.Status == applications.StatusApproved {
			return true, nil
		}
	}
	return false, nil
}

func (r *ApplicationsRepo) Reject(ctx context.Context, id string, reviewedAt time.Time, notes string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return applications.ErrNotFound
	}
	if a.Status != applications.StatusPending {
		return applications.ErrInvalidState
	}

	a.Status = applications.StatusRejected
	a.ReviewedAt = &reviewedAt
	a.ReviewerNotes = notes
	r.byID[id] = a
	return nil
}

func (r *ApplicationsRepo) Withdraw(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.byID[id]
	if !ok {
		return applications.ErrNotFound
	}
	if a.Status != applications.StatusPending {
		return applications.ErrInvalidState
	}

	a.Status = applications.StatusWithdrawn
	r.byID[id] = a
	return nil
}

// Approve hace todos los writes bajo el mismo lock: o entra todo o,
// si alguna validación falla, no se tocó nada. Eso replica la semántica
// de la transacción de Postgres para dev y tests.
func (r *ApplicationsRepo) Approve(ctx context.Context, p applications.ApproveParams) (applications.ApprovalResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.byID[p.ApplicationID]
	if !ok {
		return applications.ApprovalResult{}, applications.ErrNotFound
	}
	if target.Status != applications.StatusPending {
		// Carrera perdida: otra aprobación llegó primero.
		return applications.ApprovalResult{}, applications.ErrInvalidState
	}

	// Validar ANTES de mutar para no dejar estado parcial.
	if _, ok := r.pets.statusOf(p.PetID); !ok {
		return applications.ApprovalResult{}, applications.ErrNotFound
	}

	reviewedAt := p.ReviewedAt

	target.Status = applications.StatusApproved
	target.ReviewedAt = &reviewedAt
	target.ReviewerNotes = p.ReviewerNotes
	r.byID[target.ID] = target

	if err := r.pets.setStatus(p.PetID, pets.StatusPending); err != nil {
		// No puede pasar: ya validamos existencia y tenemos el lock de apps.
		return applications.ApprovalResult{}, err
	}

	rejected := make([]applications.Application, 0)
	for id, a := range r.byID {
		if a.PetID != p.PetID || a.ID == p.ApplicationID {
			continue
		}
		if a.Status != applications.StatusPending {
			continue
		}
		a.Status = applications.StatusRejected
		a.ReviewedAt = &reviewedAt
		a.ReviewerNotes = p.AutoRejectNotes
		r.byID[id] = a
		rejected = append(rejected, a)
	}
	sortBySubmittedDesc(rejected)

	return applications.ApprovalResult{AutoRejected: rejected}, nil
}

func sortBySubmittedDesc(items []applications.Application) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].SubmittedAt.After(items[j].SubmittedAt)
	})
}
