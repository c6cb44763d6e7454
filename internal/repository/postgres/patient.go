package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/model"
)

const patientColumns = `p.id, p.owner_id, p.name, p.date_of_birth, p.notes, p.created_at, p.updated_at, p.deleted_at`

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (id, owner_id, name, date_of_birth, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	patient.ID = uuid.New()
	patient.CreatedAt = time.Now().UTC()
	patient.UpdatedAt = patient.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		patient.ID,
		patient.OwnerID,
		patient.Name,
		patient.DateOfBirth,
		patient.Notes,
		patient.CreatedAt,
		patient.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create patient: %w", translate(err))
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT ` + patientColumns + ` FROM patients p WHERE p.id = $1 AND p.deleted_at IS NULL`

	var patient model.Patient
	if err := r.db.GetContext(ctx, &patient, query, id); err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", translate(err))
	}
	return &patient, nil
}

// Update never touches owner_id.
func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients
		SET name = $1, date_of_birth = $2, notes = $3, updated_at = $4
		WHERE id = $5 AND deleted_at IS NULL
	`
	patient.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		patient.Name,
		patient.DateOfBirth,
		patient.Notes,
		patient.UpdatedAt,
		patient.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", translate(err))
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	return nil
}

func (r *patientRepository) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	query := `UPDATE patients SET deleted_at = $1, updated_at = $1 WHERE id = $2 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, at, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", translate(err))
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	return nil
}

func (r *patientRepository) ListAccessible(ctx context.Context, userID uuid.UUID, now time.Time) ([]*model.PatientWithAccess, error) {
	query := `
		SELECT ` + patientColumns + `, 'admin' AS access_level
		FROM patients p
		WHERE p.owner_id = $1 AND p.deleted_at IS NULL
		UNION ALL
		SELECT ` + patientColumns + `, s.access_level
		FROM patients p
		JOIN patient_shares s ON s.patient_id = p.id
		WHERE s.shared_with_user_id = $1
		AND p.deleted_at IS NULL
		AND (s.expires_at IS NULL OR s.expires_at >= $2)
		ORDER BY name ASC
	`

	var patients []*model.PatientWithAccess
	if err := r.db.SelectContext(ctx, &patients, query, userID, now); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", translate(err))
	}
	return patients, nil
}
