package favorites

import "context"

type Repository interface {
	Create(ctx context.Context, f Favorite) error
	Delete(ctx context.Context, userID, petID string) error
	Exists(ctx context.Context, userID, petID string) (bool, error)
	CountByUser(ctx context.Context, userID string) (int, error)
	ListByUser(ctx context.Context, userID string) ([]Favorite, error)
}
