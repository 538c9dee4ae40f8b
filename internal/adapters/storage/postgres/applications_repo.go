package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"pet-adoption-platform/internal/domain/applications"
)

type ApplicationsRepo struct {
	db *sql.DB
}

func NewApplicationsRepo(db *sql.DB) *ApplicationsRepo {
	return &ApplicationsRepo{db: db}
}

const applicationColumns = `
	id, pet_id, user_id,
	full_name, email, phone, address,
	housing_type, living_situation, household_members, occupation, monthly_income, has_yard,
	has_pet_experience, previous_pet_type, years_of_experience, previous_pet_outcome,
	has_current_pets, current_pets_info,
	motivation,
	status, submitted_at, reviewed_at, reviewer_notes
`

func (r *ApplicationsRepo) Create(ctx context.Context, a applications.Application) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO adoption_applications (
			id, pet_id, user_id,
			full_name, email, phone, address,
			housing_type, living_situation, household_members, occupation, monthly_income, has_yard,
			has_pet_experience, previous_pet_type, years_of_experience, previous_pet_outcome,
			has_current_pets, current_pets_info,
			motivation,
			status, submitted_at, reviewed_at, reviewer_notes
		) VALUES (
			$1,$2,$3,
			$4,$5,$6,$7,
			$8,$9,$10,$11,$12,$13,
			$14,$15,$16,$17,
			$18,$19,
			$20,
			$21,$22,$23,$24
		)
	`,
		a.ID, a.PetID, a.UserID,
		a.FullName, a.Email, a.Phone, a.Address,
		string(a.HousingType), string(a.LivingSituation), a.HouseholdMembers, a.Occupation, a.MonthlyIncome, a.HasYard,
		a.HasPetExperience, a.PreviousPetType, a.YearsOfExperience, a.PreviousPetOutcome,
		a.HasCurrentPets, a.CurrentPetsInfo,
		a.Motivation,
		string(a.Status), a.SubmittedAt, toNullTime(a.ReviewedAt), a.ReviewerNotes,
	)
	return err
}

func (r *ApplicationsRepo) GetByID(ctx context.Context, id string) (applications.Application, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return applications.Application{}, applications.ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+`
		FROM adoption_applications
		WHERE id = $1
	`, id)

	a, err := scanApplication(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return applications.Application{}, applications.ErrNotFound
		}
		return applications.Application{}, err
	}
	return a, nil
}

func (r *ApplicationsRepo) ListByUser(ctx context.Context, userID string) ([]applications.Application, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT `+applicationColumns+`
		FROM adoption_applications
		WHERE user_id = $1
		ORDER BY submitted_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectApplications(rows)
}

func (r *ApplicationsRepo) List(ctx context.Context, f applications.ListFilter) ([]applications.Application, error) {
	conds := make([]string, 0)
	args := make([]any, 0)

	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.Status != "" {
		add("status = $%d", string(f.Status))
	}
	if f.PetID != "" {
		add("pet_id = $%d", f.PetID)
	}

	query := `SELECT ` + applicationColumns + ` FROM adoption_applications`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY submitted_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectApplications(rows)
}

func (r *ApplicationsRepo) FindByUserAndPet(ctx context.Context, userID, petID string) (applications.Application, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+applicationColumns+`
		FROM adoption_applications
		WHERE user_id = $1
		  AND pet_id = $2
		  AND status <> 'withdrawn'
		ORDER BY submitted_at DESC
		LIMIT 1
	`, userID, petID)

	a, err := scanApplication(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return applications.Application{}, applications.ErrNotFound
		}
		return applications.Application{}, err
	}
	return a, nil
}

func (r *ApplicationsRepo) HasApprovedByUser(ctx context.Context, userID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM adoption_applications
			WHERE user_id = $1 AND status = 'approved'
		)
	`, userID).Scan(&exists)
	return exists, err
}

func (r *ApplicationsRepo) HasApprovedForPet(ctx context.Context, petID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM adoption_applications
			WHERE pet_id = $1 AND status = 'approved'
		)
	`, petID).Scan(&exists)
	return exists, err
}

// Reject es un update condicional de una sola fila. El predicado sobre
// status implementa el fail-closed: si otra decisión llegó primero,
// 0 filas => ErrInvalidState.
func (r *ApplicationsRepo) Reject(ctx context.Context, id string, reviewedAt time.Time, notes string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE adoption_applications
		SET status = 'rejected', reviewed_at = $2, reviewer_notes = $3
		WHERE id = $1 AND status = 'pending'
	`, id, reviewedAt, notes)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return applications.ErrInvalidState
	}
	return nil
}

func (r *ApplicationsRepo) Withdraw(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE adoption_applications
		SET status = 'withdrawn'
		WHERE id = $1 AND status = 'pending'
	`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return applications.ErrInvalidState
	}
	return nil
}

// Approve ejecuta la transacción de aprobación completa. El lock sobre la
// fila de la mascota (SELECT ... FOR UPDATE) serializa aprobaciones
// concurrentes del mismo pet; la que llega segunda vuelve a evaluar el
// predicado status = 'pending' y muere con ErrInvalidState en vez de
// duplicar la aprobación. Serializable de yapa, porque el default del
// store no es garantía suficiente para el invariante.
func (r *ApplicationsRepo) Approve(ctx context.Context, p applications.ApproveParams) (applications.ApprovalResult, error) {
	tx, err := r.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return applications.ApprovalResult{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var petStatus string
	err = tx.QueryRowContext(ctx, `
		SELECT status FROM pets WHERE id = $1 FOR UPDATE
	`, p.PetID).Scan(&petStatus)
	if err != nil {
		if err == sql.ErrNoRows {
			return applications.ApprovalResult{}, applications.ErrNotFound
		}
		return applications.ApprovalResult{}, err
	}

	// 1) Aprobar la solicitud (condicional sobre pending).
	res, err := tx.ExecContext(ctx, `
		UPDATE adoption_applications
		SET status = 'approved', reviewed_at = $2, reviewer_notes = $3
		WHERE id = $1 AND status = 'pending'
	`, p.ApplicationID, p.ReviewedAt, p.ReviewerNotes)
	if err != nil {
		return applications.ApprovalResult{}, err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return applications.ApprovalResult{}, applications.ErrInvalidState
	}

	// 2) Sacar la mascota del pool disponible.
	if _, err := tx.ExecContext(ctx, `
		UPDATE pets SET status = 'pending', updated_at = $2 WHERE id = $1
	`, p.PetID, p.ReviewedAt); err != nil {
		return applications.ApprovalResult{}, err
	}

	// 3) Auto-rechazar todas las hermanas pending en un solo update,
	//    devolviendo lo necesario para las notificaciones post-commit.
	rows, err := tx.QueryContext(ctx, `
		UPDATE adoption_applications
		SET status = 'rejected', reviewed_at = $3, reviewer_notes = $4
		WHERE pet_id = $1 AND id <> $2 AND status = 'pending'
		RETURNING id, user_id, pet_id
	`, p.PetID, p.ApplicationID, p.ReviewedAt, p.AutoRejectNotes)
	if err != nil {
		return applications.ApprovalResult{}, err
	}

	reviewedAt := p.ReviewedAt
	rejected := make([]applications.Application, 0)
	for rows.Next() {
		var a applications.Application
		if err := rows.Scan(&a.ID, &a.UserID, &a.PetID); err != nil {
			rows.Close()
			return applications.ApprovalResult{}, err
		}
		a.Status = applications.StatusRejected
		a.ReviewedAt = &reviewedAt
		a.ReviewerNotes = p.AutoRejectNotes
		rejected = append(rejected, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return applications.ApprovalResult{}, err
	}

	if err := tx.Commit(); err != nil {
		return applications.ApprovalResult{}, err
	}

	return applications.ApprovalResult{AutoRejected: rejected}, nil
}

func collectApplications(rows *sql.Rows) ([]applications.Application, error) {
	out := make([]applications.Application, 0)
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func scanApplication(row rowScanner) (applications.Application, error) {
	var a applications.Application
	var housingType, livingSituation, status string
	var reviewedAt sql.NullTime

	if err := row.Scan(
		&a.ID, &a.PetID, &a.UserID,
		&a.FullName, &a.Email, &a.Phone, &a.Address,
		&housingType, &livingSituation, &a.HouseholdMembers, &a.Occupation, &a.MonthlyIncome, &a.HasYard,
		&a.HasPetExperience, &a.PreviousPetType, &a.YearsOfExperience, &a.PreviousPetOutcome,
		&a.HasCurrentPets, &a.CurrentPetsInfo,
		&a.Motivation,
		&status, &a.SubmittedAt, &reviewedAt, &a.ReviewerNotes,
	); err != nil {
		return applications.Application{}, err
	}

	a.HousingType = applications.HousingType(housingType)
	a.LivingSituation = applications.LivingSituation(livingSituation)
	a.Status = applications.Status(status)
	if reviewedAt.Valid {
		t := reviewedAt.Time
		a.ReviewedAt = &t
	}

	return a, nil
}

func toNullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
