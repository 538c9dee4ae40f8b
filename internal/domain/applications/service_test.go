package applications

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func validSubmitInput(petID string) SubmitInput {
	return SubmitInput{
		PetID:            petID,
		FullName:         "Jane Applicant",
		Email:            "jane@example.com",
		Phone:            "+51 999 888 777",
		Address:          "Av. Siempre Viva 742, Lima",
		HousingType:      "own",
		LivingSituation:  "house",
		HouseholdMembers: 3,
		Motivation:       strings.Repeat("we have loved dogs all our lives ", 3),
	}
}

func TestSubmit_CreatesPendingApplication(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	a, err := svc.Submit(context.Background(), "user-1", validSubmitInput("pet-x"))
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	if a.ID == "" {
		t.Fatalf("expected generated id")
	}
	if a.Status != StatusPending {
		t.Fatalf("expected pending, got %s", a.Status)
	}
	if !a.SubmittedAt.Equal(now) {
		t.Fatalf("expected SubmittedAt = now")
	}
	if a.ReviewedAt != nil || a.ReviewerNotes != "" {
		t.Fatalf("review fields must start empty")
	}

	stored, err := repo.GetByID(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("application not persisted: %v", err)
	}
	if stored.UserID != "user-1" || stored.PetID != "pet-x" {
		t.Fatalf("persisted application has wrong owner/pet: %+v", stored)
	}
}

func TestSubmit_Validation(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	cases := map[string]func(*SubmitInput){
		"missing pet":          func(in *SubmitInput) { in.PetID = "" },
		"bad email":            func(in *SubmitInput) { in.Email = "not-an-email" },
		"unknown housing":      func(in *SubmitInput) { in.HousingType = "castle" },
		"zero household":       func(in *SubmitInput) { in.HouseholdMembers = 0 },
		"negative experience":  func(in *SubmitInput) { in.YearsOfExperience = -1 },
		"motivation too short": func(in *SubmitInput) { in.Motivation = "because" },
	}

	for name, mutate := range cases {
		in := validSubmitInput("pet-x")
		mutate(&in)
		if _, err := svc.Submit(context.Background(), "user-1", in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}

	if _, err := svc.Submit(context.Background(), "  ", validSubmitInput("pet-x")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("blank user: expected ErrInvalidInput")
	}
}

func TestSubmit_DuplicatePerUserAndPet(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	if _, err := svc.Submit(context.Background(), "user-1", validSubmitInput("pet-x")); err != nil {
		t.Fatalf("first submit failed: %v", err)
	}
	if _, err := svc.Submit(context.Background(), "user-1", validSubmitInput("pet-x")); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Otra mascota u otro usuario no cuentan como duplicado.
	if _, err := svc.Submit(context.Background(), "user-1", validSubmitInput("pet-y")); err != nil {
		t.Fatalf("different pet should be allowed: %v", err)
	}
	if _, err := svc.Submit(context.Background(), "user-2", validSubmitInput("pet-x")); err != nil {
		t.Fatalf("different user should be allowed: %v", err)
	}
}

func TestSubmit_AfterWithdraw_Allowed(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	a, err := svc.Submit(context.Background(), "user-1", validSubmitInput("pet-x"))
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}
	if _, err := svc.Withdraw(context.Background(), a.ID, "user-1"); err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}

	// La retirada libera el par (user, pet).
	if _, err := svc.Submit(context.Background(), "user-1", validSubmitInput("pet-x")); err != nil {
		t.Fatalf("resubmit after withdraw should be allowed: %v", err)
	}
}

func TestSubmit_BlockedWhileApprovedInProgress(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	approved := pendingApp("a1", "pet-x", "user-1", time.Now())
	approved.Status = StatusApproved
	repo.seed(approved)

	if _, err := svc.Submit(context.Background(), "user-1", validSubmitInput("pet-y")); !errors.Is(err, ErrApprovedPending) {
		t.Fatalf("expected ErrApprovedPending, got %v", err)
	}

	// El bloqueo es por usuario, no global.
	if _, err := svc.Submit(context.Background(), "user-2", validSubmitInput("pet-y")); err != nil {
		t.Fatalf("other users are not blocked: %v", err)
	}
}

func TestWithdraw(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	repo.seed(pendingApp("a1", "pet-x", "user-1", time.Now()))

	if _, err := svc.Withdraw(context.Background(), "a1", "user-2"); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-owner, got %v", err)
	}

	a, err := svc.Withdraw(context.Background(), "a1", "user-1")
	if err != nil {
		t.Fatalf("withdraw failed: %v", err)
	}
	if a.Status != StatusWithdrawn {
		t.Fatalf("expected withdrawn, got %s", a.Status)
	}

	if _, err := svc.Withdraw(context.Background(), "a1", "user-1"); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second withdraw, got %v", err)
	}
	if _, err := svc.Withdraw(context.Background(), "missing", "user-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
