package appointment

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/careconnect-api/internal/model"
	apperrors "github.com/jwalitptl/careconnect-api/pkg/errors"
	"github.com/jwalitptl/careconnect-api/pkg/logger"
)

type serviceFixture struct {
	*conflictFixture
	svc    *Service
	access *mockAccess
	user   uuid.UUID
}

func newServiceFixture() *serviceFixture {
	cf := newConflictFixture()
	doctors := &mockDoctorRepo{doctors: map[uuid.UUID]*model.Doctor{
		cf.d1: {Base: model.Base{ID: cf.d1}, Name: "Dr. One"},
		cf.d2: {Base: model.Base{ID: cf.d2}, Name: "Dr. Two"},
	}}
	acc := &mockAccess{levels: make(map[[2]uuid.UUID]model.AccessLevel)}
	user := uuid.New()
	acc.grant(cf.p1, user, model.AccessWrite)

	return &serviceFixture{
		conflictFixture: cf,
		svc:             NewService(cf.repo, doctors, acc, cf.checker, logger.NewNop()),
		access:          acc,
		user:            user,
	}
}

func TestSchedule(t *testing.T) {
	f := newServiceFixture()

	a, err := f.svc.Schedule(context.Background(), f.user, &model.CreateAppointmentRequest{
		PatientID: f.p1,
		DoctorID:  f.d1,
		DateTime:  base,
		Type:      "checkup",
	})
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusScheduled, a.Status)
	assert.Equal(t, f.user, a.CreatedBy)
	assert.Contains(t, f.repo.appointments, a.ID)
}

func TestSchedule_ConflictAborts(t *testing.T) {
	f := newServiceFixture()
	f.repo.add(f.p2, f.d1, base, model.AppointmentStatusScheduled)

	_, err := f.svc.Schedule(context.Background(), f.user, &model.CreateAppointmentRequest{
		PatientID: f.p1,
		DoctorID:  f.d1,
		DateTime:  base.Add(20 * time.Minute),
	})
	var conflictErr *ConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Len(t, conflictErr.Conflicts, 1)
	assert.Len(t, f.repo.appointments, 1)
}

func TestSchedule_ForceOverridesConflict(t *testing.T) {
	f := newServiceFixture()
	f.repo.add(f.p2, f.d1, base, model.AppointmentStatusScheduled)

	_, err := f.svc.Schedule(context.Background(), f.user, &model.CreateAppointmentRequest{
		PatientID: f.p1,
		DoctorID:  f.d1,
		DateTime:  base.Add(20 * time.Minute),
		Force:     true,
	})
	require.NoError(t, err)
	assert.Len(t, f.repo.appointments, 2)
}

func TestSchedule_RequiresWriteAccess(t *testing.T) {
	f := newServiceFixture()
	reader := uuid.New()
	f.access.grant(f.p1, reader, model.AccessRead)

	_, err := f.svc.Schedule(context.Background(), reader, &model.CreateAppointmentRequest{
		PatientID: f.p1,
		DoctorID:  f.d1,
		DateTime:  base,
	})
	assert.ErrorIs(t, err, errDenied)
}

func TestSchedule_UnknownDoctor(t *testing.T) {
	f := newServiceFixture()

	_, err := f.svc.Schedule(context.Background(), f.user, &model.CreateAppointmentRequest{
		PatientID: f.p1,
		DoctorID:  uuid.New(),
		DateTime:  base,
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestReschedule_DoesNotConflictWithItself(t *testing.T) {
	f := newServiceFixture()
	a := f.repo.add(f.p1, f.d1, base, model.AppointmentStatusScheduled)

	moved, err := f.svc.Reschedule(context.Background(), f.user, a.ID, &model.RescheduleAppointmentRequest{
		DateTime: base.Add(15 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, base.Add(15*time.Minute), moved.DateTime)
	assert.Equal(t, base.Add(15*time.Minute), f.repo.appointments[a.ID].DateTime)
}

func TestReschedule_ConflictWithOther(t *testing.T) {
	f := newServiceFixture()
	a := f.repo.add(f.p1, f.d1, base, model.AppointmentStatusScheduled)
	f.repo.add(f.p2, f.d1, base.Add(2*time.Hour), model.AppointmentStatusScheduled)

	_, err := f.svc.Reschedule(context.Background(), f.user, a.ID, &model.RescheduleAppointmentRequest{
		DateTime: base.Add(2*time.Hour + 10*time.Minute),
	})
	var conflictErr *ConflictError
	require.True(t, errors.As(err, &conflictErr))
	assert.Equal(t, base, f.repo.appointments[a.ID].DateTime)
}

func TestCancelAndComplete(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	a := f.repo.add(f.p1, f.d1, base, model.AppointmentStatusScheduled)
	b := f.repo.add(f.p1, f.d2, base.Add(time.Hour), model.AppointmentStatusScheduled)

	cancelled, err := f.svc.Cancel(ctx, f.user, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCancelled, cancelled.Status)

	_, err = f.svc.Cancel(ctx, f.user, a.ID)
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))

	_, err = f.svc.Reschedule(ctx, f.user, a.ID, &model.RescheduleAppointmentRequest{DateTime: base})
	assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))

	completed, err := f.svc.Complete(ctx, f.user, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AppointmentStatusCompleted, completed.Status)
	assert.Len(t, f.repo.appointments, 2)
}

func TestCancelledSlotIsFree(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	a := f.repo.add(f.p2, f.d1, base, model.AppointmentStatusScheduled)
	f.access.grant(f.p2, f.user, model.AccessWrite)

	_, err := f.svc.Cancel(ctx, f.user, a.ID)
	require.NoError(t, err)

	_, err = f.svc.Schedule(ctx, f.user, &model.CreateAppointmentRequest{
		PatientID: f.p1,
		DoctorID:  f.d1,
		DateTime:  base,
	})
	require.NoError(t, err)
}

func TestGetAndList_RequireRead(t *testing.T) {
	f := newServiceFixture()
	ctx := context.Background()
	a := f.repo.add(f.p1, f.d1, base, model.AppointmentStatusScheduled)

	got, err := f.svc.Get(ctx, f.user, a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)

	list, err := f.svc.ListForPatient(ctx, f.user, f.p1)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = f.svc.Get(ctx, uuid.New(), a.ID)
	assert.ErrorIs(t, err, errDenied)

	_, err = f.svc.Get(ctx, f.user, uuid.New())
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestCheckConflicts(t *testing.T) {
	f := newServiceFixture()
	a := f.repo.add(f.p1, f.d1, base, model.AppointmentStatusScheduled)

	conflicts, err := f.svc.CheckConflicts(context.Background(), f.user, &model.ConflictCheckRequest{
		PatientID: f.p1,
		DoctorID:  f.d1,
		DateTime:  base.Add(15 * time.Minute),
	})
	require.NoError(t, err)
	assert.Len(t, conflicts, 2)

	conflicts, err = f.svc.CheckConflicts(context.Background(), f.user, &model.ConflictCheckRequest{
		PatientID:            f.p1,
		DoctorID:             f.d1,
		DateTime:             base.Add(15 * time.Minute),
		ExcludeAppointmentID: &a.ID,
	})
	require.NoError(t, err)
	assert.Empty(t, conflicts)
}
