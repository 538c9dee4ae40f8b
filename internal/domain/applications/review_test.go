package applications

import (
	"context"
	"errors"
	"testing"
	"time"

	"pet-adoption-platform/internal/ports/notify"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID      map[string]Application
	petStatus map[string]string

	// failpoints: simulan una caída del store. El contrato es que la
	// transacción no dejó NADA persistido.
	failApprove error
	failReject  error
}

func newTestRepo() *testRepo {
	return &testRepo{
		byID:      map[string]Application{},
		petStatus: map[string]string{},
	}
}

func (r *testRepo) seed(a Application) {
	r.byID[a.ID] = a
	if _, ok := r.petStatus[a.PetID]; !ok {
		r.petStatus[a.PetID] = "available"
	}
}

func (r *testRepo) Create(ctx context.Context, a Application) error {
	if a.ID == "" {
		return errors.New("repo: id required")
	}
	if _, ok := r.byID[a.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Application, error) {
	a, ok := r.byID[id]
	if !ok {
		return Application{}, errRepoNotFound
	}
	return a, nil
}

func (r *testRepo) ListByUser(ctx context.Context, userID string) ([]Application, error) {
	out := make([]Application, 0)
	for _, a := range r.byID {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Application, error) {
	out := make([]Application, 0)
	for _, a := range r.byID {
		if f.Status != "" && a.Status != f.Status {
			continue
		}
		if f.PetID != "" && a.PetID != f.PetID {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (r *testRepo) FindByUserAndPet(ctx context.Context, userID, petID string) (Application, error) {
	for _, a := range r.byID {
		if a.UserID == userID && a.PetID == petID && a.Status != StatusWithdrawn {
			return a, nil
		}
	}
	return Application{}, errRepoNotFound
}

func (r *testRepo) HasApprovedByUser(ctx context.Context, userID string) (bool, error) {
	for _, a := range r.byID {
		if a.UserID == userID && a.Status == StatusApproved {
			return true, nil
		}
	}
	return false, nil
}

func (r *testRepo) HasApprovedForPet(ctx context.Context, petID string) (bool, error) {
	for _, a := range r.byID {
		if a.PetID == petID && a.Status == StatusApproved {
			return true, nil
		}
	}
	return false, nil
}

func (r *testRepo) Reject(ctx context.Context, id string, reviewedAt time.Time, notes string) error {
	if r.failReject != nil {
		return r.failReject
	}
	a, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if a.Status != StatusPending {
		return ErrInvalidState
	}
	a.Status = StatusRejected
	a.ReviewedAt = &reviewedAt
	a.ReviewerNotes = notes
	r.byID[id] = a
	return nil
}

func (r *testRepo) Withdraw(ctx context.Context, id string) error {
	a, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	if a.Status != StatusPending {
		return ErrInvalidState
	}
	a.Status = StatusWithdrawn
	r.byID[id] = a
	return nil
}

func (r *testRepo) Approve(ctx context.Context, p ApproveParams) (ApprovalResult, error) {
	// La transacción real es todo-o-nada: el failpoint devuelve error
	// sin haber tocado una sola fila.
	if r.failApprove != nil {
		return ApprovalResult{}, r.failApprove
	}

	target, ok := r.byID[p.ApplicationID]
	if !ok {
		return ApprovalResult{}, ErrNotFound
	}
	if target.Status != StatusPending {
		return ApprovalResult{}, ErrInvalidState
	}
	if _, ok := r.petStatus[p.PetID]; !ok {
		return ApprovalResult{}, ErrNotFound
	}

	reviewedAt := p.ReviewedAt

	target.Status = StatusApproved
	target.ReviewedAt = &reviewedAt
	target.ReviewerNotes = p.ReviewerNotes
	r.byID[target.ID] = target

	r.petStatus[p.PetID] = "pending"

	rejected := make([]Application, 0)
	for id, a := range r.byID {
		if a.PetID != p.PetID || a.ID == p.ApplicationID || a.Status != StatusPending {
			continue
		}
		a.Status = StatusRejected
		a.ReviewedAt = &reviewedAt
		a.ReviewerNotes = p.AutoRejectNotes
		r.byID[id] = a
		rejected = append(rejected, a)
	}

	return ApprovalResult{AutoRejected: rejected}, nil
}

// -------------------------
// Notifier fake
// -------------------------

type recordingNotifier struct {
	approved     []notify.ReviewNotice
	rejected     []notify.ReviewNotice
	autoRejected []notify.ReviewNotice

	err error // si se setea, todos los hooks fallan
}

func (n *recordingNotifier) ApplicationApproved(ctx context.Context, notice notify.ReviewNotice) error {
	n.approved = append(n.approved, notice)
	return n.err
}

func (n *recordingNotifier) ApplicationRejected(ctx context.Context, notice notify.ReviewNotice) error {
	n.rejected = append(n.rejected, notice)
	return n.err
}

func (n *recordingNotifier) ApplicationAutoRejected(ctx context.Context, notice notify.ReviewNotice) error {
	n.autoRejected = append(n.autoRejected, notice)
	return n.err
}

// -------------------------
// Helpers
// -------------------------

func pendingApp(id, petID, userID string, submitted time.Time) Application {
	return Application{
		ID:          id,
		PetID:       petID,
		UserID:      userID,
		FullName:    "Test Applicant",
		Email:       "applicant@example.com",
		Status:      StatusPending,
		SubmittedAt: submitted,
	}
}

func countApprovedForPet(r *testRepo, petID string) int {
	count := 0
	for _, a := range r.byID {
		if a.PetID == petID && a.Status == StatusApproved {
			count++
		}
	}
	return count
}

// -------------------------
// Tests
// -------------------------

func TestReview_Approve_RejectsSiblingsAndMarksPet(t *testing.T) {
	repo := newTestRepo()
	notifier := &recordingNotifier{}
	svc := NewService(repo, notifier, nil)

	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	base := now.Add(-24 * time.Hour)
	repo.seed(pendingApp("a1", "pet-x", "user-1", base))
	repo.seed(pendingApp("a2", "pet-x", "user-2", base.Add(time.Hour)))
	repo.seed(pendingApp("a3", "pet-x", "user-3", base.Add(2*time.Hour)))

	out, err := svc.Review(context.Background(), "a1", ReviewInput{
		Decision:      "approve",
		ReviewerNotes: "great home",
	})
	if err != nil {
		t.Fatalf("Review returned error: %v", err)
	}

	if out.Application.Status != StatusApproved {
		t.Fatalf("expected approved, got %s", out.Application.Status)
	}
	if out.Application.ReviewedAt == nil || !out.Application.ReviewedAt.Equal(now) {
		t.Fatalf("expected ReviewedAt = now")
	}
	if out.Application.ReviewerNotes != "great home" {
		t.Fatalf("expected admin note on approved application, got %q", out.Application.ReviewerNotes)
	}

	if repo.petStatus["pet-x"] != "pending" {
		t.Fatalf("expected pet pending, got %s", repo.petStatus["pet-x"])
	}

	if len(out.AutoRejected) != 2 {
		t.Fatalf("expected 2 auto-rejected siblings, got %d", len(out.AutoRejected))
	}
	for _, id := range []string{"a2", "a3"} {
		sibling := repo.byID[id]
		if sibling.Status != StatusRejected {
			t.Fatalf("expected sibling %s rejected, got %s", id, sibling.Status)
		}
		if sibling.ReviewedAt == nil || !sibling.ReviewedAt.Equal(now) {
			t.Fatalf("expected sibling %s stamped with ReviewedAt", id)
		}
		// La nota del sistema, no la del admin.
		if sibling.ReviewerNotes != AutoRejectNote {
			t.Fatalf("expected system auto-reject note on %s, got %q", id, sibling.ReviewerNotes)
		}
	}

	if countApprovedForPet(repo, "pet-x") != 1 {
		t.Fatalf("single-approval invariant broken")
	}

	// Hooks post-commit: 1 aprobado + 2 auto-rechazados, 0 rechazos directos.
	if len(notifier.approved) != 1 || len(notifier.autoRejected) != 2 || len(notifier.rejected) != 0 {
		t.Fatalf("unexpected hook counts: approved=%d auto=%d rejected=%d",
			len(notifier.approved), len(notifier.autoRejected), len(notifier.rejected))
	}
}

func TestReview_Reject_TouchesOnlyTargetRow(t *testing.T) {
	repo := newTestRepo()
	notifier := &recordingNotifier{}
	svc := NewService(repo, notifier, nil)

	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	repo.seed(pendingApp("b1", "pet-y", "user-1", now.Add(-time.Hour)))
	repo.seed(pendingApp("b2", "pet-y", "user-2", now.Add(-time.Hour)))

	out, err := svc.Review(context.Background(), "b1", ReviewInput{
		Decision:      "reject",
		ReviewerNotes: "insufficient space",
	})
	if err != nil {
		t.Fatalf("Review returned error: %v", err)
	}

	if out.Application.Status != StatusRejected {
		t.Fatalf("expected rejected, got %s", out.Application.Status)
	}
	if out.Application.ReviewerNotes != "insufficient space" {
		t.Fatalf("expected exact admin note, got %q", out.Application.ReviewerNotes)
	}
	if len(out.AutoRejected) != 0 {
		t.Fatalf("reject must not touch siblings")
	}

	// La mascota no cambia, la hermana tampoco.
	if repo.petStatus["pet-y"] != "available" {
		t.Fatalf("expected pet untouched, got %s", repo.petStatus["pet-y"])
	}
	if repo.byID["b2"].Status != StatusPending {
		t.Fatalf("expected sibling untouched, got %s", repo.byID["b2"].Status)
	}

	if len(notifier.rejected) != 1 || len(notifier.approved) != 0 || len(notifier.autoRejected) != 0 {
		t.Fatalf("unexpected hook counts on reject")
	}
}

func TestReview_AlreadyProcessed_FailsClosedWithoutChanges(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	reviewed := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	approved := pendingApp("c1", "pet-z", "user-1", reviewed.Add(-time.Hour))
	approved.Status = StatusApproved
	approved.ReviewedAt = &reviewed
	approved.ReviewerNotes = "original approval note"
	repo.seed(approved)

	for _, decision := range []string{"reject", "approve"} {
		_, err := svc.Review(context.Background(), "c1", ReviewInput{Decision: decision})
		if !errors.Is(err, ErrInvalidState) {
			t.Fatalf("decision %q: expected ErrInvalidState, got %v", decision, err)
		}
	}

	got := repo.byID["c1"]
	if got.Status != StatusApproved || !got.ReviewedAt.Equal(reviewed) || got.ReviewerNotes != "original approval note" {
		t.Fatalf("already-processed application must remain untouched, got %+v", got)
	}
}

func TestReview_WithdrawnApplication_SameInvalidState(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	withdrawn := pendingApp("w1", "pet-z", "user-1", time.Now())
	withdrawn.Status = StatusWithdrawn
	repo.seed(withdrawn)

	_, err := svc.Review(context.Background(), "w1", ReviewInput{Decision: "approve"})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for withdrawn, got %v", err)
	}
}

func TestReview_NotFound(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	_, err := svc.Review(context.Background(), "missing", ReviewInput{Decision: "approve"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(repo.byID) != 0 {
		t.Fatalf("no record should have been touched")
	}
}

func TestReview_UnknownDecision(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	repo.seed(pendingApp("a1", "pet-x", "user-1", time.Now()))

	for _, bad := range []string{"", "maybe", "APPROVE "} {
		_, err := svc.Review(context.Background(), "a1", ReviewInput{Decision: bad})
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("decision %q: expected ErrInvalidInput, got %v", bad, err)
		}
	}

	if repo.byID["a1"].Status != StatusPending {
		t.Fatalf("invalid decision must not mutate the application")
	}
}

func TestReview_SecondApprove_LosesWithInvalidState(t *testing.T) {
	// Dos aprobaciones para hermanas de la misma mascota: la primera gana y
	// auto-rechaza a la otra; la segunda debe fallar con invalid state,
	// nunca duplicar la aprobación.
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)

	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	repo.seed(pendingApp("a2", "pet-x", "user-2", now.Add(-time.Hour)))
	repo.seed(pendingApp("a3", "pet-x", "user-3", now.Add(-time.Hour)))

	first, err := svc.Review(context.Background(), "a2", ReviewInput{Decision: "approve"})
	if err != nil {
		t.Fatalf("first approve failed: %v", err)
	}
	if len(first.AutoRejected) != 1 || first.AutoRejected[0].ID != "a3" {
		t.Fatalf("expected a3 auto-rejected by first approve")
	}

	_, err = svc.Review(context.Background(), "a3", ReviewInput{Decision: "approve"})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState for losing approve, got %v", err)
	}

	if countApprovedForPet(repo, "pet-x") != 1 {
		t.Fatalf("single-approval invariant broken after race")
	}
}

func TestReview_StoreFailure_NoPartialState(t *testing.T) {
	repo := newTestRepo()
	notifier := &recordingNotifier{}
	svc := NewService(repo, notifier, nil)

	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	repo.seed(pendingApp("a1", "pet-x", "user-1", now.Add(-time.Hour)))
	repo.seed(pendingApp("a2", "pet-x", "user-2", now.Add(-time.Hour)))
	repo.failApprove = errors.New("store unavailable")

	_, err := svc.Review(context.Background(), "a1", ReviewInput{Decision: "approve"})
	if !errors.Is(err, ErrTransactionFailed) {
		t.Fatalf("expected ErrTransactionFailed, got %v", err)
	}

	// Ninguna fila cambió y no salió ninguna notificación.
	if repo.byID["a1"].Status != StatusPending || repo.byID["a2"].Status != StatusPending {
		t.Fatalf("failed transaction must leave every row untouched")
	}
	if repo.petStatus["pet-x"] != "available" {
		t.Fatalf("failed transaction must leave pet untouched")
	}
	if len(notifier.approved)+len(notifier.autoRejected)+len(notifier.rejected) != 0 {
		t.Fatalf("no hooks may fire on a failed transaction")
	}

	// El retry después del fallo es seguro: nada quedó persistido.
	repo.failApprove = nil
	if _, err := svc.Review(context.Background(), "a1", ReviewInput{Decision: "approve"}); err != nil {
		t.Fatalf("retry after transaction failure should succeed: %v", err)
	}
}

func TestReview_NotifierFailure_DoesNotFailDecision(t *testing.T) {
	repo := newTestRepo()
	notifier := &recordingNotifier{err: errors.New("smtp down")}
	svc := NewService(repo, notifier, nil)

	repo.seed(pendingApp("a1", "pet-x", "user-1", time.Now()))

	out, err := svc.Review(context.Background(), "a1", ReviewInput{Decision: "approve"})
	if err != nil {
		t.Fatalf("notifier failure must not fail the review: %v", err)
	}
	if out.Application.Status != StatusApproved {
		t.Fatalf("decision must stand even if hooks fail")
	}
	if repo.byID["a1"].Status != StatusApproved {
		t.Fatalf("approval must be persisted")
	}
}
