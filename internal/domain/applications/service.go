package applications

import (
	"context"
	"errors"
	"strings"
	"time"

	"pet-adoption-platform/internal/platform/logger"
	"pet-adoption-platform/internal/ports/notify"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("application not found")
	ErrForbidden    = errors.New("forbidden")

	// ErrInvalidState cubre approved/rejected/withdrawn por igual: para el
	// revisor la solicitud simplemente ya fue procesada.
	ErrInvalidState = errors.New("application already processed")

	// ErrTransactionFailed garantiza que nada quedó persistido; es el único
	// error de revisión seguro de reintentar.
	ErrTransactionFailed = errors.New("review transaction failed")

	ErrDuplicate       = errors.New("application already exists for this pet")
	ErrApprovedPending = errors.New("an approved adoption is already in progress")
)

type Service struct {
	repo     Repository
	notifier notify.Notifier
	log      logger.Logger
	validate *validator.Validate
	now      func() time.Time
}

// NewService arma el servicio. notifier y log pueden ser nil (tests, modo dev).
func NewService(repo Repository, notifier notify.Notifier, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		log:      log,
		validate: validator.New(),
		now:      time.Now,
	}
}

// SubmitInput replica el formulario de adopción completo. Los campos son
// inmutables después del submit: la revisión solo los lee.
type SubmitInput struct {
	PetID string `validate:"required"`

	FullName string `validate:"required"`
	Email    string `validate:"required,email"`
	Phone    string `validate:"required"`
	Address  string `validate:"required"`

	HousingType      string `validate:"required,oneof=own rent"`
	LivingSituation  string `validate:"required,oneof=house apartment other"`
	HouseholdMembers int    `validate:"required,min=1"`
	Occupation       string
	MonthlyIncome    string
	HasYard          bool

	HasPetExperience   bool
	PreviousPetType    string
	YearsOfExperience  int `validate:"gte=0"`
	PreviousPetOutcome string
	HasCurrentPets     bool
	CurrentPetsInfo    string

	Motivation string `validate:"required,min=50"`
}

func (s *Service) Submit(ctx context.Context, userID string, in SubmitInput) (Application, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return Application{}, ErrInvalidInput
	}
	if err := s.validate.Struct(in); err != nil {
		return Application{}, ErrInvalidInput
	}

	// Una solicitud viva por (user, pet).
	if _, err := s.repo.FindByUserAndPet(ctx, userID, in.PetID); err == nil {
		return Application{}, ErrDuplicate
	}

	// Con una adopción aprobada en curso no se aplica a otra mascota.
	has, err := s.repo.HasApprovedByUser(ctx, userID)
	if err != nil {
		return Application{}, err
	}
	if has {
		return Application{}, ErrApprovedPending
	}

	a := Application{
		ID:     uuid.NewString(),
		PetID:  strings.TrimSpace(in.PetID),
		UserID: userID,

		FullName: strings.TrimSpace(in.FullName),
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		Address:  strings.TrimSpace(in.Address),

		HousingType:      HousingType(in.HousingType),
		LivingSituation:  LivingSituation(in.LivingSituation),
		HouseholdMembers: in.HouseholdMembers,
		Occupation:       strings.TrimSpace(in.Occupation),
		MonthlyIncome:    strings.TrimSpace(in.MonthlyIncome),
		HasYard:          in.HasYard,

		HasPetExperience:   in.HasPetExperience,
		PreviousPetType:    strings.TrimSpace(in.PreviousPetType),
		YearsOfExperience:  in.YearsOfExperience,
		PreviousPetOutcome: strings.TrimSpace(in.PreviousPetOutcome),
		HasCurrentPets:     in.HasCurrentPets,
		CurrentPetsInfo:    strings.TrimSpace(in.CurrentPetsInfo),

		Motivation: strings.TrimSpace(in.Motivation),

		Status:      StatusPending,
		SubmittedAt: s.now(),
	}

	if err := s.repo.Create(ctx, a); err != nil {
		return Application{}, err
	}
	return a, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Application{}, ErrNotFound
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Application{}, ErrNotFound
	}
	return a, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.ListByUser(ctx, userID)
}

// List es el listado admin, con filtro opcional por status y pet.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Application, error) {
	return s.repo.List(ctx, f)
}

// Withdraw retira una solicitud pending. Solo el solicitante puede hacerlo.
func (s *Service) Withdraw(ctx context.Context, id, userID string) (Application, error) {
	id = strings.TrimSpace(id)
	userID = strings.TrimSpace(userID)
	if id == "" || userID == "" {
		return Application{}, ErrInvalidInput
	}

	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Application{}, ErrNotFound
	}
	if a.UserID != userID {
		return Application{}, ErrForbidden
	}
	if a.Status != StatusPending {
		return Application{}, ErrInvalidState
	}

	if err := s.repo.Withdraw(ctx, id); err != nil {
		if errors.Is(err, ErrInvalidState) {
			return Application{}, ErrInvalidState
		}
		return Application{}, err
	}

	a.Status = StatusWithdrawn
	return a, nil
}

// HasApprovedForPet lo usa el módulo pets como guard de delete.
func (s *Service) HasApprovedForPet(ctx context.Context, petID string) (bool, error) {
	petID = strings.TrimSpace(petID)
	if petID == "" {
		return false, nil
	}
	return s.repo.HasApprovedForPet(ctx, petID)
}
