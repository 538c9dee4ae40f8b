package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-adoption-platform/internal/domain/pets"
)

var (
	ErrNotFound = errors.New("not found")
)

// PetRepo es el repo in-memory para dev y tests.
// Exportado porque el repo de applications necesita mutar el status
// de la mascota dentro de su "transacción".
type PetRepo struct {
	mu   sync.RWMutex
	byID map[string]pets.Pet
}

func NewPetRepo() *PetRepo {
	return &PetRepo{
		byID: make(map[string]pets.Pet),
	}
}

func (r *PetRepo) Create(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.byID[p.ID]; exists {
		return errors.New("pet already exists")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *PetRepo) Update(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("pet id required")
	}
	if _, exists := r.byID[p.ID]; !exists {
		return ErrNotFound
	}
	r.byID[p.ID] = p
	return nil
}

func (r *PetRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[id]; !exists {
		return ErrNotFound
	}
	delete(r.byID, id)
	return nil
}

func (r *PetRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return pets.Pet{}, ErrNotFound
	}
	return p, nil
}

func (r *PetRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]pets.Pet, 0)
	for _, p := range r.byID {
		if !matchesFilter(p, f) {
			continue
		}
		matched = append(matched, p)
	}

	// Orden estable: más recientes primero, como el catálogo real.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = pets.DefaultPageSize
	}

	start := (page - 1) * limit
	if start >= total {
		return []pets.Pet{}, total, nil
	}
	end := start + limit
	if end > total {
		end = total
	}

	return matched[start:end], total, nil
}

// setStatus lo usa ApplicationsRepo dentro de su lock de aprobación.
// El caller ya validó que la mascota existe.
func (r *PetRepo) setStatus(id string, st pets.Status) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = st
	r.byID[id] = p
	return nil
}

func (r *PetRepo) statusOf(id string) (pets.Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return "", false
	}
	return p.Status, true
}

func matchesFilter(p pets.Pet, f pets.ListFilter) bool {
	if f.Status != "" && p.Status != f.Status {
		return false
	}
	if f.Species != "" && p.Species != f.Species {
		return false
	}
	if f.Gender != "" && p.Gender != f.Gender {
		return false
	}
	if f.Size != "" && p.Size != f.Size {
		return false
	}
	if f.Location != "" && !containsFold(p.Location, f.Location) {
		return false
	}
	switch f.AgeRange {
	case pets.AgeYoung:
		if p.AgeMonths > 12 {
			return false
		}
	case pets.AgeAdult:
		if p.AgeMonths < 12 || p.AgeMonths > 84 {
			return false
		}
	case pets.AgeSenior:
		if p.AgeMonths < 84 {
			return false
		}
	}
	if f.Query != "" {
		if !containsFold(p.Name, f.Query) &&
			!containsFold(p.Breed, f.Query) &&
			!containsFold(p.Description, f.Query) {
			return false
		}
	}
	return true
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
