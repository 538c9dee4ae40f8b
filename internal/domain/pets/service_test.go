package pets

import (
	"context"
	"errors"
	"testing"
	"time"
)

type testRepo struct {
	byID map[string]Pet

	// captura el último filtro que llegó al store
	lastFilter ListFilter
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Pet{}}
}

func (r *testRepo) Create(ctx context.Context, p Pet) error {
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Update(ctx context.Context, p Pet) error {
	if _, ok := r.byID[p.ID]; !ok {
		return errors.New("not found")
	}
	r.byID[p.ID] = p
	return nil
}

func (r *testRepo) Delete(ctx context.Context, id string) error {
	if _, ok := r.byID[id]; !ok {
		return errors.New("not found")
	}
	delete(r.byID, id)
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Pet, error) {
	p, ok := r.byID[id]
	if !ok {
		return Pet{}, errors.New("not found")
	}
	return p, nil
}

func (r *testRepo) List(ctx context.Context, f ListFilter) ([]Pet, int, error) {
	r.lastFilter = f
	return []Pet{}, 0, nil
}

func validCreateInput() CreateInput {
	return CreateInput{
		Name:        "Rocky",
		Species:     "dog",
		Breed:       "mixed",
		AgeMonths:   24,
		Gender:      "male",
		Size:        "medium",
		Description: "friendly dog looking for an active family",
		Vaccination: "complete",
		Location:    "Lima",
		Photos:      []string{"https://cdn.example.com/rocky.jpg"},
	}
}

func TestCreate(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	p, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if p.ID == "" {
		t.Fatalf("expected generated id")
	}
	if p.Status != StatusAvailable {
		t.Fatalf("new pets must start available, got %s", p.Status)
	}
	if !p.CreatedAt.Equal(now) || !p.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps = now")
	}
	if _, ok := repo.byID[p.ID]; !ok {
		t.Fatalf("pet not persisted")
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := NewService(newTestRepo())

	cases := map[string]func(*CreateInput){
		"missing name":    func(in *CreateInput) { in.Name = "" },
		"unknown species": func(in *CreateInput) { in.Species = "dragon" },
		"negative age":    func(in *CreateInput) { in.AgeMonths = -1 },
		"bad gender":      func(in *CreateInput) { in.Gender = "unknown" },
		"bad size":        func(in *CreateInput) { in.Size = "gigantic" },
		"short desc":      func(in *CreateInput) { in.Description = "cute" },
		"no photos":       func(in *CreateInput) { in.Photos = nil },
		"photo not a url": func(in *CreateInput) { in.Photos = []string{"rocky.jpg"} },
	}

	for name, mutate := range cases {
		in := validCreateInput()
		mutate(&in)
		if _, err := svc.Create(context.Background(), in); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestUpdate_Partial(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	created := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return created }
	p, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	later := created.Add(48 * time.Hour)
	svc.now = func() time.Time { return later }

	name := "Rocco"
	status := "adopted"
	updated, err := svc.Update(context.Background(), p.ID, UpdateInput{
		Name:   &name,
		Status: &status,
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if updated.Name != "Rocco" || updated.Status != StatusAdopted {
		t.Fatalf("unexpected update result: %+v", updated)
	}
	// Lo no enviado queda igual.
	if updated.Breed != p.Breed || updated.Location != p.Location {
		t.Fatalf("untouched fields must survive a partial update")
	}
	if !updated.UpdatedAt.Equal(later) || !updated.CreatedAt.Equal(created) {
		t.Fatalf("only UpdatedAt moves on update")
	}

	bad := "flying"
	if _, err := svc.Update(context.Background(), p.ID, UpdateInput{Species: &bad}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for bad species, got %v", err)
	}
	if _, err := svc.Update(context.Background(), "missing", UpdateInput{Name: &name}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestList_NormalizesPagination(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	if _, _, err := svc.List(context.Background(), ListFilter{Page: 0, Limit: 0}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.lastFilter.Page != 1 || repo.lastFilter.Limit != DefaultPageSize {
		t.Fatalf("expected defaults page=1 limit=%d, got page=%d limit=%d",
			DefaultPageSize, repo.lastFilter.Page, repo.lastFilter.Limit)
	}

	if _, _, err := svc.List(context.Background(), ListFilter{Page: 3, Limit: 500}); err != nil {
		t.Fatalf("List: %v", err)
	}
	if repo.lastFilter.Page != 3 || repo.lastFilter.Limit != MaxPageSize {
		t.Fatalf("expected limit capped at %d, got %d", MaxPageSize, repo.lastFilter.Limit)
	}
}

func TestDelete(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	p, err := svc.Create(context.Background(), validCreateInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := svc.Delete(context.Background(), p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}
