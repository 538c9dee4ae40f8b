package pets

import "context"

// AgeRange son los buckets de edad que expone el catálogo público.
// young = hasta 12 meses, adult = 12-84, senior = 84+.
type AgeRange string

const (
	AgeYoung  AgeRange = "young"
	AgeAdult  AgeRange = "adult"
	AgeSenior AgeRange = "senior"
)

type ListFilter struct {
	Status   Status
	Species  Species
	Gender   Gender
	Size     Size
	Location string
	AgeRange AgeRange
	Query    string // busca en name, breed y description

	Page  int
	Limit int
}

type Repository interface {
	Create(ctx context.Context, p Pet) error
	Update(ctx context.Context, p Pet) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (Pet, error)

	// List devuelve la página pedida y el total sin paginar.
	List(ctx context.Context, f ListFilter) ([]Pet, int, error)
}
