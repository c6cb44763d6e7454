package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/model"
)

var (
	// ErrNotFound is returned when a lookup or conditional write matches no row.
	ErrNotFound = errors.New("record not found")
	// ErrUniqueViolation is returned when an insert hits a unique constraint.
	ErrUniqueViolation = errors.New("unique constraint violation")
	// ErrUnavailable is returned when the datastore could not be reached.
	ErrUnavailable = errors.New("datastore unreachable")
)

// All repository interfaces in one file
type (
	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
	}

	// PatientRepository never returns soft-deleted rows from Get.
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error
		ListAccessible(ctx context.Context, userID uuid.UUID, now time.Time) ([]*model.PatientWithAccess, error)
	}

	DoctorRepository interface {
		Create(ctx context.Context, doctor *model.Doctor) error
		Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
		List(ctx context.Context) ([]*model.Doctor, error)
	}

	ShareRepository interface {
		Create(ctx context.Context, share *model.PatientShare) error
		Get(ctx context.Context, id uuid.UUID) (*model.PatientShare, error)
		// ListForPatientAndUser returns every row for the pair, expired or not,
		// newest first.
		ListForPatientAndUser(ctx context.Context, patientID, userID uuid.UUID) ([]*model.PatientShare, error)
		ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientShare, error)
		Delete(ctx context.Context, id uuid.UUID) error
	}

	PendingShareRepository interface {
		Create(ctx context.Context, pending *model.PendingShare) error
		Get(ctx context.Context, id uuid.UUID) (*model.PendingShare, error)
		// FindOpen returns unclaimed invitations for the pair that expire after now.
		FindOpen(ctx context.Context, patientID uuid.UUID, email string, now time.Time) ([]*model.PendingShare, error)
		ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PendingShare, error)
		ListOpenForEmail(ctx context.Context, email string, now time.Time) ([]*model.PendingShare, error)
		// MarkClaimed sets the claim fields only if the row is still unclaimed;
		// otherwise it returns ErrNotFound.
		MarkClaimed(ctx context.Context, id, userID uuid.UUID, at time.Time) error
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error)
		// The window lookups return non-cancelled appointments ordered by date_time.
		ListDoctorAppointmentsInWindow(ctx context.Context, doctorID uuid.UUID, window model.AppointmentWindow) ([]*model.AppointmentDetail, error)
		ListPatientAppointmentsInWindow(ctx context.Context, patientID uuid.UUID, window model.AppointmentWindow) ([]*model.AppointmentDetail, error)
	}

	OutboxRepository interface {
		Create(ctx context.Context, event *model.OutboxEvent) error
		GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error)
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errorMessage *string) error
		DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
	}
)
