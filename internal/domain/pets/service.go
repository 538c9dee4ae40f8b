package pets

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("pet not found")
	ErrHasApproved  = errors.New("pet has an approved application")
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 50
)

type Service struct {
	repo     Repository
	validate *validator.Validate
	now      func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:     repo,
		validate: validator.New(),
		now:      time.Now,
	}
}

type CreateInput struct {
	Name         string   `validate:"required"`
	Species      string   `validate:"required,oneof=dog cat rabbit bird other"`
	Breed        string   `validate:"required"`
	AgeMonths    int      `validate:"gte=0"`
	Gender       string   `validate:"required,oneof=male female"`
	Size         string   `validate:"required,oneof=small medium large"`
	Description  string   `validate:"required,min=10"`
	HealthStatus string   `validate:"omitempty"`
	Vaccination  string   `validate:"omitempty,oneof=none partial complete"`
	Location     string   `validate:"required"`
	Photos       []string `validate:"required,min=1,dive,url"`
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	if err := s.validate.Struct(in); err != nil {
		return Pet{}, ErrInvalidInput
	}

	vacc := VaccinationStatus(in.Vaccination)
	if vacc == "" {
		vacc = VaccinationNone
	}

	now := s.now()
	p := Pet{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(in.Name),
		Species:      Species(in.Species),
		Breed:        strings.TrimSpace(in.Breed),
		AgeMonths:    in.AgeMonths,
		Gender:       Gender(in.Gender),
		Size:         Size(in.Size),
		Description:  strings.TrimSpace(in.Description),
		HealthStatus: strings.TrimSpace(in.HealthStatus),
		Vaccination:  vacc,
		Location:     strings.TrimSpace(in.Location),
		Photos:       in.Photos,
		Status:       StatusAvailable,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

type UpdateInput struct {
	// Punteros para update parcial: nil = no tocar.
	Name         *string
	Species      *string
	Breed        *string
	AgeMonths    *int
	Gender       *string
	Size         *string
	Description  *string
	HealthStatus *string
	Vaccination  *string
	Location     *string
	Photos       *[]string
	Status       *string
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, ErrNotFound
	}

	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Species != nil {
		if !validSpecies(Species(*in.Species)) {
			return Pet{}, ErrInvalidInput
		}
		p.Species = Species(*in.Species)
	}
	if in.Breed != nil {
		if strings.TrimSpace(*in.Breed) == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Breed = strings.TrimSpace(*in.Breed)
	}
	if in.AgeMonths != nil {
		if *in.AgeMonths < 0 {
			return Pet{}, ErrInvalidInput
		}
		p.AgeMonths = *in.AgeMonths
	}
	if in.Gender != nil {
		g := Gender(*in.Gender)
		if g != GenderMale && g != GenderFemale {
			return Pet{}, ErrInvalidInput
		}
		p.Gender = g
	}
	if in.Size != nil {
		sz := Size(*in.Size)
		if sz != SizeSmall && sz != SizeMedium && sz != SizeLarge {
			return Pet{}, ErrInvalidInput
		}
		p.Size = sz
	}
	if in.Description != nil {
		if len(strings.TrimSpace(*in.Description)) < 10 {
			return Pet{}, ErrInvalidInput
		}
		p.Description = strings.TrimSpace(*in.Description)
	}
	if in.HealthStatus != nil {
		p.HealthStatus = strings.TrimSpace(*in.HealthStatus)
	}
	if in.Vaccination != nil {
		v := VaccinationStatus(*in.Vaccination)
		if v != VaccinationNone && v != VaccinationPartial && v != VaccinationComplete {
			return Pet{}, ErrInvalidInput
		}
		p.Vaccination = v
	}
	if in.Location != nil {
		if strings.TrimSpace(*in.Location) == "" {
			return Pet{}, ErrInvalidInput
		}
		p.Location = strings.TrimSpace(*in.Location)
	}
	if in.Photos != nil {
		if len(*in.Photos) == 0 {
			return Pet{}, ErrInvalidInput
		}
		p.Photos = *in.Photos
	}
	if in.Status != nil {
		st := Status(*in.Status)
		if st != StatusAvailable && st != StatusPending && st != StatusAdopted {
			return Pet{}, ErrInvalidInput
		}
		p.Status = st
	}

	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrNotFound
	}
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return ErrNotFound
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) GetByID(ctx context.Context, id string) (Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Pet{}, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, ErrNotFound
	}
	return p, nil
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Pet, int, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = DefaultPageSize
	}
	if f.Limit > MaxPageSize {
		f.Limit = MaxPageSize
	}
	return s.repo.List(ctx, f)
}

func validSpecies(sp Species) bool {
	switch sp {
	case SpeciesDog, SpeciesCat, SpeciesRabbit, SpeciesBird, SpeciesOther:
		return true
	default:
		return false
	}
}
