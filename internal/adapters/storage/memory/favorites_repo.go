package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"pet-adoption-platform/internal/domain/favorites"
)

type favoritesRepo struct {
	mu   sync.RWMutex
	byID map[string]favorites.Favorite
}

func NewFavoritesRepo() favorites.Repository {
	return &favoritesRepo{
		byID: make(map[string]favorites.Favorite),
	}
}

func (r *favoritesRepo) Create(ctx context.Context, f favorites.Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(f.ID) == "" {
		return errors.New("favorite id required")
	}
	for _, existing := range r.byID {
		if existing.UserID == f.UserID && existing.PetID == f.PetID {
			return errors.New("favorite already exists")
		}
	}
	r.byID[f.ID] = f
	return nil
}

func (r *favoritesRepo) Delete(ctx context.Context, userID, petID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, f := range r.byID {
		if f.UserID == userID && f.PetID == petID {
			delete(r.byID, id)
			return nil
		}
	}
	return ErrNotFound
}

func (r *favoritesRepo) Exists(ctx context.Context, userID, petID string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, f := range r.byID {
		if f.UserID == userID && f.PetID == petID {
			return true, nil
		}
	}
	return false, nil
}

func (r *favoritesRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, f := range r.byID {
		if f.UserID == userID {
			count++
		}
	}
	return count, nil
}

func (r *favoritesRepo) ListByUser(ctx context.Context, userID string) ([]favorites.Favorite, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]favorites.Favorite, 0)
	for _, f := range r.byID {
		if f.UserID == userID {
			out = append(out, f)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	return out, nil
}
