package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/model"
)

const pendingShareColumns = `id, patient_id, email, access_level, granted_by, expires_at, share_expires_at, claimed_at, claimed_by_user_id, created_at`

func (r *pendingShareRepository) Create(ctx context.Context, pending *model.PendingShare) error {
	query := `
		INSERT INTO pending_shares (id, patient_id, email, access_level, granted_by, expires_at, share_expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	pending.ID = uuid.New()
	pending.Email = model.NormalizeEmail(pending.Email)
	if pending.CreatedAt.IsZero() {
		pending.CreatedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, query,
		pending.ID,
		pending.PatientID,
		pending.Email,
		pending.AccessLevel,
		pending.GrantedBy,
		pending.ExpiresAt,
		pending.ShareExpiresAt,
		pending.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pending share: %w", translate(err))
	}
	return nil
}

func (r *pendingShareRepository) Get(ctx context.Context, id uuid.UUID) (*model.PendingShare, error) {
	query := `SELECT ` + pendingShareColumns + ` FROM pending_shares WHERE id = $1`

	var pending model.PendingShare
	if err := r.db.GetContext(ctx, &pending, query, id); err != nil {
		return nil, fmt.Errorf("failed to get pending share: %w", translate(err))
	}
	return &pending, nil
}

func (r *pendingShareRepository) FindOpen(ctx context.Context, patientID uuid.UUID, email string, now time.Time) ([]*model.PendingShare, error) {
	query := `
		SELECT ` + pendingShareColumns + `
		FROM pending_shares
		WHERE patient_id = $1 AND email = $2
		AND claimed_at IS NULL
		AND expires_at >= $3
		ORDER BY created_at DESC
	`
	var pending []*model.PendingShare
	if err := r.db.SelectContext(ctx, &pending, query, patientID, model.NormalizeEmail(email), now); err != nil {
		return nil, fmt.Errorf("failed to find pending shares: %w", translate(err))
	}
	return pending, nil
}

func (r *pendingShareRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PendingShare, error) {
	query := `
		SELECT ` + pendingShareColumns + `
		FROM pending_shares
		WHERE patient_id = $1
		ORDER BY created_at DESC
	`
	var pending []*model.PendingShare
	if err := r.db.SelectContext(ctx, &pending, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list pending shares: %w", translate(err))
	}
	return pending, nil
}

func (r *pendingShareRepository) ListOpenForEmail(ctx context.Context, email string, now time.Time) ([]*model.PendingShare, error) {
	query := `
		SELECT ` + pendingShareColumns + `
		FROM pending_shares
		WHERE email = $1
		AND claimed_at IS NULL
		AND expires_at >= $2
		ORDER BY created_at DESC
	`
	var pending []*model.PendingShare
	if err := r.db.SelectContext(ctx, &pending, query, model.NormalizeEmail(email), now); err != nil {
		return nil, fmt.Errorf("failed to list invitations: %w", translate(err))
	}
	return pending, nil
}

func (r *pendingShareRepository) MarkClaimed(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	query := `
		UPDATE pending_shares
		SET claimed_at = $1, claimed_by_user_id = $2
		WHERE id = $3 AND claimed_at IS NULL
	`
	result, err := r.db.ExecContext(ctx, query, at, userID, id)
	if err != nil {
		return fmt.Errorf("failed to mark pending share claimed: %w", translate(err))
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("failed to mark pending share claimed: %w", err)
	}
	return nil
}
