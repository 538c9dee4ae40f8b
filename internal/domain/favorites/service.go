package favorites

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("favorite not found")
	ErrDuplicate    = errors.New("pet already in favorites")
	ErrLimitReached = errors.New("favorites limit reached")
)

// MaxPerUser limita la lista de favoritos por usuario.
const MaxPerUser = 50

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

func (s *Service) Add(ctx context.Context, userID, petID string) (Favorite, error) {
	userID = strings.TrimSpace(userID)
	petID = strings.TrimSpace(petID)
	if userID == "" || petID == "" {
		return Favorite{}, ErrInvalidInput
	}

	exists, err := s.repo.Exists(ctx, userID, petID)
	if err != nil {
		return Favorite{}, err
	}
	if exists {
		return Favorite{}, ErrDuplicate
	}

	count, err := s.repo.CountByUser(ctx, userID)
	if err != nil {
		return Favorite{}, err
	}
	if count >= MaxPerUser {
		return Favorite{}, ErrLimitReached
	}

	f := Favorite{
		ID:        uuid.NewString(),
		UserID:    userID,
		PetID:     petID,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, f); err != nil {
		return Favorite{}, err
	}
	return f, nil
}

func (s *Service) Remove(ctx context.Context, userID, petID string) error {
	userID = strings.TrimSpace(userID)
	petID = strings.TrimSpace(petID)
	if userID == "" || petID == "" {
		return ErrInvalidInput
	}
	return s.repo.Delete(ctx, userID, petID)
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Favorite, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}
