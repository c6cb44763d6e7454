package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/model"
)

const shareColumns = `id, patient_id, granted_by, shared_with_user_id, access_level, expires_at, created_at`

// Create relies on the (patient_id, shared_with_user_id) unique index; a
// concurrent grant for the same pair surfaces as repository.ErrUniqueViolation.
func (r *shareRepository) Create(ctx context.Context, share *model.PatientShare) error {
	query := `
		INSERT INTO patient_shares (` + shareColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	share.ID = uuid.New()
	if share.CreatedAt.IsZero() {
		share.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		share.ID,
		share.PatientID,
		share.GrantedBy,
		share.SharedWithUserID,
		share.AccessLevel,
		share.ExpiresAt,
		share.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create share: %w", translate(err))
	}
	return nil
}

func (r *shareRepository) Get(ctx context.Context, id uuid.UUID) (*model.PatientShare, error) {
	query := `SELECT ` + shareColumns + ` FROM patient_shares WHERE id = $1`

	var share model.PatientShare
	if err := r.db.GetContext(ctx, &share, query, id); err != nil {
		return nil, fmt.Errorf("failed to get share: %w", translate(err))
	}
	return &share, nil
}

func (r *shareRepository) ListForPatientAndUser(ctx context.Context, patientID, userID uuid.UUID) ([]*model.PatientShare, error) {
	query := `
		SELECT ` + shareColumns + `
		FROM patient_shares
		WHERE patient_id = $1 AND shared_with_user_id = $2
		ORDER BY created_at DESC
	`
	var shares []*model.PatientShare
	if err := r.db.SelectContext(ctx, &shares, query, patientID, userID); err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", translate(err))
	}
	return shares, nil
}

func (r *shareRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientShare, error) {
	query := `
		SELECT ` + shareColumns + `
		FROM patient_shares
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	var shares []*model.PatientShare
	if err := r.db.SelectContext(ctx, &shares, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", translate(err))
	}
	return shares, nil
}

func (r *shareRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patient_shares WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete share: %w", translate(err))
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("failed to delete share: %w", err)
	}
	return nil
}
