package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
)

type mockPatientRepo struct {
	patients map[uuid.UUID]*model.Patient
	getErr   error
}

func (m *mockPatientRepo) Create(ctx context.Context, p *model.Patient) error {
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.patients[id]
	if !ok || p.IsDeleted() {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (m *mockPatientRepo) Update(ctx context.Context, p *model.Patient) error { return nil }

func (m *mockPatientRepo) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (m *mockPatientRepo) ListAccessible(ctx context.Context, userID uuid.UUID, now time.Time) ([]*model.PatientWithAccess, error) {
	return nil, nil
}

type mockShareRepo struct {
	shares []*model.PatientShare
}

func (m *mockShareRepo) Create(ctx context.Context, s *model.PatientShare) error {
	m.shares = append(m.shares, s)
	return nil
}

func (m *mockShareRepo) Get(ctx context.Context, id uuid.UUID) (*model.PatientShare, error) {
	for _, s := range m.shares {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *mockShareRepo) ListForPatientAndUser(ctx context.Context, patientID, userID uuid.UUID) ([]*model.PatientShare, error) {
	var out []*model.PatientShare
	for _, s := range m.shares {
		if s.PatientID == patientID && s.SharedWithUserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *mockShareRepo) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientShare, error) {
	return nil, nil
}

func (m *mockShareRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

var now = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

type fixture struct {
	resolver *Resolver
	patients *mockPatientRepo
	shares   *mockShareRepo
	owner    uuid.UUID
	patient  *model.Patient
}

func newFixture() *fixture {
	owner := uuid.New()
	patient := &model.Patient{Base: model.Base{ID: uuid.New()}, OwnerID: owner, Name: "P1"}
	patients := &mockPatientRepo{patients: map[uuid.UUID]*model.Patient{patient.ID: patient}}
	shares := &mockShareRepo{}
	return &fixture{
		resolver: NewResolver(patients, shares, nil).WithClock(func() time.Time { return now }),
		patients: patients,
		shares:   shares,
		owner:    owner,
		patient:  patient,
	}
}

func (f *fixture) share(userID uuid.UUID, level model.AccessLevel, createdAt time.Time, expiresAt *time.Time) {
	f.shares.shares = append(f.shares.shares, &model.PatientShare{
		ID:               uuid.New(),
		PatientID:        f.patient.ID,
		GrantedBy:        f.owner,
		SharedWithUserID: userID,
		AccessLevel:      level,
		CreatedAt:        createdAt,
		ExpiresAt:        expiresAt,
	})
}

func TestResolveAccess_OwnerIsAdmin(t *testing.T) {
	f := newFixture()

	level, err := f.resolver.ResolveAccess(context.Background(), f.patient.ID, f.owner)
	require.NoError(t, err)
	assert.Equal(t, model.AccessAdmin, level)
}

func TestResolveAccess_OwnerIgnoresShareRows(t *testing.T) {
	f := newFixture()
	f.share(f.owner, model.AccessRead, now.Add(-time.Hour), nil)

	level, err := f.resolver.ResolveAccess(context.Background(), f.patient.ID, f.owner)
	require.NoError(t, err)
	assert.Equal(t, model.AccessAdmin, level)
}

func TestResolveAccess_SharedUser(t *testing.T) {
	f := newFixture()
	u2 := uuid.New()
	f.share(u2, model.AccessWrite, now.Add(-time.Hour), nil)

	level, err := f.resolver.ResolveAccess(context.Background(), f.patient.ID, u2)
	require.NoError(t, err)
	assert.Equal(t, model.AccessWrite, level)

	assert.Equal(t, Decision{Reason: ReasonInsufficientLevel}, Authorize(level, model.AccessAdmin))
}

func TestResolveAccess_NoShare(t *testing.T) {
	f := newFixture()

	level, err := f.resolver.ResolveAccess(context.Background(), f.patient.ID, uuid.New())
	require.NoError(t, err)
	assert.Equal(t, model.AccessNone, level)
}

func TestResolveAccess_ExpiredShareIsIgnored(t *testing.T) {
	f := newFixture()
	u2 := uuid.New()
	expired := now.Add(-time.Minute)
	f.share(u2, model.AccessAdmin, now.Add(-48*time.Hour), &expired)

	level, err := f.resolver.ResolveAccess(context.Background(), f.patient.ID, u2)
	require.NoError(t, err)
	assert.Equal(t, model.AccessNone, level)
	assert.Len(t, f.shares.shares, 1, "expired rows are not purged")
}

func TestResolveAccess_FutureExpiryStillActive(t *testing.T) {
	f := newFixture()
	u2 := uuid.New()
	later := now.Add(time.Hour)
	f.share(u2, model.AccessRead, now.Add(-time.Hour), &later)

	level, err := f.resolver.ResolveAccess(context.Background(), f.patient.ID, u2)
	require.NoError(t, err)
	assert.Equal(t, model.AccessRead, level)
}

func TestResolveAccess_NewestActiveShareWins(t *testing.T) {
	f := newFixture()
	u2 := uuid.New()
	expired := now.Add(-time.Minute)
	f.share(u2, model.AccessRead, now.Add(-3*time.Hour), nil)
	f.share(u2, model.AccessWrite, now.Add(-2*time.Hour), nil)
	f.share(u2, model.AccessAdmin, now.Add(-time.Hour), &expired)

	level, err := f.resolver.ResolveAccess(context.Background(), f.patient.ID, u2)
	require.NoError(t, err)
	assert.Equal(t, model.AccessWrite, level)
}

func TestResolveAccess_PatientNotFound(t *testing.T) {
	f := newFixture()

	_, err := f.resolver.ResolveAccess(context.Background(), uuid.New(), f.owner)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestResolveAccess_SoftDeletedPatientNotFound(t *testing.T) {
	f := newFixture()
	deleted := now.Add(-time.Hour)
	f.patient.DeletedAt = &deleted

	_, err := f.resolver.ResolveAccess(context.Background(), f.patient.ID, f.owner)
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestResolveAccess_InvalidInput(t *testing.T) {
	f := newFixture()

	_, err := f.resolver.ResolveAccess(context.Background(), uuid.Nil, f.owner)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))

	_, err = f.resolver.ResolveAccess(context.Background(), f.patient.ID, uuid.Nil)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
}

func TestResolveAccess_StoreUnavailable(t *testing.T) {
	f := newFixture()
	f.patients.getErr = fmt.Errorf("failed to get patient: %w", repository.ErrUnavailable)

	_, err := f.resolver.ResolveAccess(context.Background(), f.patient.ID, f.owner)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUpstreamUnavailable, apperrors.CodeOf(err))
	assert.ErrorIs(t, err, repository.ErrUnavailable)
	assert.Equal(t, 1, strings.Count(err.Error(), "failed to get patient"))
}

func TestResolveAccess_StoreError(t *testing.T) {
	f := newFixture()
	f.patients.getErr = errors.New("syntax error at or near")

	_, err := f.resolver.ResolveAccess(context.Background(), f.patient.ID, f.owner)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrInternal, apperrors.CodeOf(err))
}

func TestRequire(t *testing.T) {
	f := newFixture()
	u2 := uuid.New()
	f.share(u2, model.AccessWrite, now.Add(-time.Hour), nil)

	level, err := f.resolver.Require(context.Background(), f.patient.ID, u2, model.AccessWrite)
	require.NoError(t, err)
	assert.Equal(t, model.AccessWrite, level)

	_, err = f.resolver.Require(context.Background(), f.patient.ID, u2, model.AccessAdmin)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))

	_, err = f.resolver.Require(context.Background(), f.patient.ID, uuid.New(), model.AccessRead)
	assert.True(t, apperrors.Is(err, apperrors.ErrForbidden))
}
