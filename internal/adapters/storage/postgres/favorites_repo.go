package postgres

import (
	"context"
	"database/sql"
	"strings"

	"pet-adoption-platform/internal/domain/favorites"
)

type FavoritesRepo struct {
	db *sql.DB
}

func NewFavoritesRepo(db *sql.DB) *FavoritesRepo {
	return &FavoritesRepo{db: db}
}

func (r *FavoritesRepo) Create(ctx context.Context, f favorites.Favorite) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO favorites (id, user_id, pet_id, created_at)
		VALUES ($1,$2,$3,$4)
	`,
		f.ID,
		f.UserID,
		f.PetID,
		f.CreatedAt,
	)
	return err
}

func (r *FavoritesRepo) Delete(ctx context.Context, userID, petID string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = $1 AND pet_id = $2
	`, userID, petID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *FavoritesRepo) Exists(ctx context.Context, userID, petID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM favorites WHERE user_id = $1 AND pet_id = $2
		)
	`, userID, petID).Scan(&exists)
	return exists, err
}

func (r *FavoritesRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM favorites WHERE user_id = $1
	`, userID).Scan(&count)
	return count, err
}

func (r *FavoritesRepo) ListByUser(ctx context.Context, userID string) ([]favorites.Favorite, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, pet_id, created_at
		FROM favorites
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]favorites.Favorite, 0)
	for rows.Next() {
		var f favorites.Favorite
		if err := rows.Scan(&f.ID, &f.UserID, &f.PetID, &f.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}

	return out, rows.Err()
}
