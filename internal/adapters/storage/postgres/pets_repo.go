package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"pet-adoption-platform/internal/domain/pets"
)

type PetsRepo struct {
	db *sql.DB
}

func NewPetsRepo(db *sql.DB) *PetsRepo {
	return &PetsRepo{db: db}
}

const petColumns = `
	id, name, species, breed, age_months, gender, size,
	description, health_status, vaccination_status, location, photos,
	status, created_at, updated_at
`

func (r *PetsRepo) Create(ctx context.Context, p pets.Pet) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO pets (
			id, name, species, breed, age_months, gender, size,
			description, health_status, vaccination_status, location, photos,
			status, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)
	`,
		p.ID,
		p.Name,
		string(p.Species),
		p.Breed,
		p.AgeMonths,
		string(p.Gender),
		string(p.Size),
		p.Description,
		p.HealthStatus,
		string(p.Vaccination),
		p.Location,
		encodeTextArray(p.Photos),
		string(p.Status),
		p.CreatedAt,
		p.UpdatedAt,
	)
	return err
}

func (r *PetsRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE pets
		SET
			name = $2,
			species = $3,
			breed = $4,
			age_months = $5,
			gender = $6,
			size = $7,
			description = $8,
			health_status = $9,
			vaccination_status = $10,
			location = $11,
			photos = $12,
			status = $13,
			updated_at = $14
		WHERE id = $1
	`,
		p.ID,
		p.Name,
		string(p.Species),
		p.Breed,
		p.AgeMonths,
		string(p.Gender),
		string(p.Size),
		p.Description,
		p.HealthStatus,
		string(p.Vaccination),
		p.Location,
		encodeTextArray(p.Photos),
		string(p.Status),
		p.UpdatedAt,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PetsRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pets WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PetsRepo) GetByID(ctx context.Context, id string) (pets.Pet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return pets.Pet{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+petColumns+`
		FROM pets
		WHERE id = $1
	`, id)

	p, err := scanPet(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return pets.Pet{}, ErrNotFound
		}
		return pets.Pet{}, err
	}
	return p, nil
}

func (r *PetsRepo) List(ctx context.Context, f pets.ListFilter) ([]pets.Pet, int, error) {
	where, args := buildPetFilter(f)

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pets`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	limit := f.Limit
	if limit < 1 {
		limit = pets.DefaultPageSize
	}
	offset := (page - 1) * limit

	args = append(args, limit, offset)
	query := `SELECT ` + petColumns + ` FROM pets` + where +
		` ORDER BY created_at DESC LIMIT $` + strconv.Itoa(len(args)-1) +
		` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, p)
	}

	return out, total, rows.Err()
}

// buildPetFilter arma el WHERE dinámico con placeholders posicionales.
func buildPetFilter(f pets.ListFilter) (string, []any) {
	conds := make([]string, 0)
	args := make([]any, 0)

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.Species != "" {
		add("species = $%d", string(f.Species))
	}
	if f.Gender != "" {
		add("gender = $%d", string(f.Gender))
	}
	if f.Size != "" {
		add("size = $%d", string(f.Size))
	}
	if f.Location != "" {
		add("location ILIKE '%%' || $%d || '%%'", f.Location)
	}
	switch f.AgeRange {
	case pets.AgeYoung:
		conds = append(conds, "age_months <= 12")
	case pets.AgeAdult:
		conds = append(conds, "age_months BETWEEN 12 AND 84")
	case pets.AgeSenior:
		conds = append(conds, "age_months >= 84")
	}
	if f.Query != "" {
		// el mismo placeholder se reutiliza en las tres columnas
		args = append(args, f.Query)
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(name ILIKE '%%' || $%d || '%%' OR breed ILIKE '%%' || $%d || '%%' OR description ILIKE '%%' || $%d || '%%')",
			n, n, n,
		))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPet(row rowScanner) (pets.Pet, error) {
	var p pets.Pet
	var species, gender, size, vaccination, status string

	// photos es text[]; por database/sql llega en formato texto ({a,b}),
	// así que se escanea crudo y se decodifica a mano.
	var photos sql.NullString

	if err := row.Scan(
		&p.ID,
		&p.Name,
		&species,
		&p.Breed,
		&p.AgeMonths,
		&gender,
		&size,
		&p.Description,
		&p.HealthStatus,
		&vaccination,
		&p.Location,
		&photos,
		&status,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return pets.Pet{}, err
	}

	p.Species = pets.Species(species)
	p.Gender = pets.Gender(gender)
	p.Size = pets.Size(size)
	p.Vaccination = pets.VaccinationStatus(vaccination)
	p.Status = pets.Status(status)
	p.Photos = parseTextArray(photos.String)

	return p, nil
}

// parseTextArray decodifica el formato texto de un array de Postgres:
// {a,b}, elementos entre comillas con backslash-escapes, NULL sin comillas.
func parseTextArray(s string) []string {
	out := make([]string, 0)

	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '{' || s[len(s)-1] != '}' {
		return out
	}
	s = s[1 : len(s)-1]
	if s == "" {
		return out
	}

	var elem strings.Builder
	inQuotes := false
	wasQuoted := false
	escaped := false

	flush := func() {
		v := elem.String()
		elem.Reset()
		if !wasQuoted && v == "NULL" {
			wasQuoted = false
			return
		}
		wasQuoted = false
		out = append(out, v)
	}

	for _, r := range s {
		switch {
		case escaped:
			elem.WriteRune(r)
			escaped = false
		case r == '\\':
			escaped = true
		case r == '"':
			inQuotes = !inQuotes
			wasQuoted = true
		case r == ',' && !inQuotes:
			flush()
		default:
			elem.WriteRune(r)
		}
	}
	flush()

	return out
}

// encodeTextArray arma el literal text[] para los writes, con cada elemento
// entre comillas para que comas y comillas embebidas no rompan el array.
func encodeTextArray(items []string) string {
	if len(items) == 0 {
		return "{}"
	}
	quoted := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.ReplaceAll(it, `\`, `\\`)
		it = strings.ReplaceAll(it, `"`, `\"`)
		quoted = append(quoted, `"`+it+`"`)
	}
	return "{" + strings.Join(quoted, ",") + "}"
}
