package access

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
	"github.com/jwalitptl/careconnect-api/pkg/errors"
	"github.com/jwalitptl/careconnect-api/pkg/metrics"
)

// Resolver computes the effective access level a user has on a patient.
type Resolver struct {
	patients repository.PatientRepository
	shares   repository.ShareRepository
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewResolver(patients repository.PatientRepository, shares repository.ShareRepository, m *metrics.Metrics) *Resolver {
	return &Resolver{
		patients: patients,
		shares:   shares,
		metrics:  m,
		now:      time.Now,
	}
}

// WithClock replaces the time source used for expiry checks.
func (r *Resolver) WithClock(now func() time.Time) *Resolver {
	r.now = now
	return r
}

// ResolveAccess returns admin for the owner, the level of the newest
// unexpired share otherwise, or AccessNone. Soft-deleted patients are NotFound.
func (r *Resolver) ResolveAccess(ctx context.Context, patientID, userID uuid.UUID) (model.AccessLevel, error) {
	if patientID == uuid.Nil || userID == uuid.Nil {
		return model.AccessNone, errors.InvalidInput("patient id and user id are required")
	}

	patient, err := r.patients.Get(ctx, patientID)
	if err != nil {
		return model.AccessNone, repository.NotFoundOr("patient", err)
	}
	if patient.OwnerID == userID {
		return model.AccessAdmin, nil
	}

	rows, err := r.shares.ListForPatientAndUser(ctx, patientID, userID)
	if err != nil {
		return model.AccessNone, repository.Upstream(err)
	}

	now := r.now()
	var newest *model.PatientShare
	for _, share := range rows {
		if share.ExpiredAt(now) {
			continue
		}
		if newest == nil || share.CreatedAt.After(newest.CreatedAt) {
			newest = share
		}
	}
	if newest == nil {
		return model.AccessNone, nil
	}
	return newest.AccessLevel, nil
}

// Require resolves the caller's level and authorizes it against required.
// The resolved level is returned even when the decision is a denial.
func (r *Resolver) Require(ctx context.Context, patientID, userID uuid.UUID, required model.AccessLevel) (model.AccessLevel, error) {
	level, err := r.ResolveAccess(ctx, patientID, userID)
	if err != nil {
		return model.AccessNone, err
	}

	decision := Authorize(level, required)
	outcome := "allow"
	if !decision.Allowed {
		outcome = string(decision.Reason)
	}
	r.metrics.AccessDecision(string(required), outcome)

	return level, decision.Err()
}
