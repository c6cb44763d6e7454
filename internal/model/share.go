package model

import (
	"time"

	"github.com/google/uuid"
)

// PatientShare grants a non-owner user access to a patient. At most one row
// exists per (PatientID, SharedWithUserID).
type PatientShare struct {
	ID               uuid.UUID   `db:"id" json:"id"`
	PatientID        uuid.UUID   `db:"patient_id" json:"patient_id"`
	GrantedBy        uuid.UUID   `db:"granted_by" json:"granted_by"`
	SharedWithUserID uuid.UUID   `db:"shared_with_user_id" json:"shared_with_user_id"`
	AccessLevel      AccessLevel `db:"access_level" json:"access_level"`
	ExpiresAt        *time.Time  `db:"expires_at" json:"expires_at,omitempty"`
	CreatedAt        time.Time   `db:"created_at" json:"created_at"`
}

// ExpiredAt reports whether the share is past its expiry at the given instant.
// A share is still active at exactly ExpiresAt.
func (s *PatientShare) ExpiredAt(now time.Time) bool {
	return s.ExpiresAt != nil && s.ExpiresAt.Before(now)
}

// PendingShare is an invitation to an email address without an account.
// Once ClaimedAt is set the row is terminal. ShareExpiresAt is copied onto
// the PatientShare created by the claim.
type PendingShare struct {
	ID              uuid.UUID   `db:"id" json:"id"`
	PatientID       uuid.UUID   `db:"patient_id" json:"patient_id"`
	Email           string      `db:"email" json:"email"`
	AccessLevel     AccessLevel `db:"access_level" json:"access_level"`
	GrantedBy       uuid.UUID   `db:"granted_by" json:"granted_by"`
	ExpiresAt       time.Time   `db:"expires_at" json:"expires_at"`
	ShareExpiresAt  *time.Time  `db:"share_expires_at" json:"share_expires_at,omitempty"`
	ClaimedAt       *time.Time  `db:"claimed_at" json:"claimed_at,omitempty"`
	ClaimedByUserID *uuid.UUID  `db:"claimed_by_user_id" json:"claimed_by_user_id,omitempty"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
}

func (p *PendingShare) Claimed() bool {
	return p.ClaimedAt != nil
}

func (p *PendingShare) ExpiredAt(now time.Time) bool {
	return p.ExpiresAt.Before(now)
}

type CreateShareRequest struct {
	Email       string     `json:"email" binding:"required,email"`
	AccessLevel string     `json:"access_level" binding:"required,oneof=read write admin"`
	ExpiresAt   *time.Time `json:"expires_at" binding:"omitempty"`
}
