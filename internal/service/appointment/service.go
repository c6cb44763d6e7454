package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
	"github.com/jwalitptl/careconnect-api/pkg/errors"
	"github.com/jwalitptl/careconnect-api/pkg/logger"
)

// AccessChecker is satisfied by access.Resolver.
type AccessChecker interface {
	Require(ctx context.Context, patientID, userID uuid.UUID, required model.AccessLevel) (model.AccessLevel, error)
}

type Service struct {
	repo    repository.AppointmentRepository
	doctors repository.DoctorRepository
	access  AccessChecker
	checker *Checker
	logger  *logger.Logger
	now     func() time.Time
}

func NewService(repo repository.AppointmentRepository, doctors repository.DoctorRepository, access AccessChecker, checker *Checker, log *logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{
		repo:    repo,
		doctors: doctors,
		access:  access,
		checker: checker,
		logger:  log,
		now:     time.Now,
	}
}

// CheckConflicts is the dry run used before asking the caller to confirm.
func (s *Service) CheckConflicts(ctx context.Context, userID uuid.UUID, req *model.ConflictCheckRequest) ([]Conflict, error) {
	if _, err := s.access.Require(ctx, req.PatientID, userID, model.AccessRead); err != nil {
		return nil, err
	}
	return s.checker.FindConflicts(ctx, Query{
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		ProposedAt:      req.DateTime,
		DurationMinutes: req.DurationMinutes,
		ExcludeID:       req.ExcludeAppointmentID,
	})
}

// Schedule books an appointment. Conflicts abort with *ConflictError unless
// req.Force is set.
func (s *Service) Schedule(ctx context.Context, userID uuid.UUID, req *model.CreateAppointmentRequest) (*model.Appointment, error) {
	if _, err := s.access.Require(ctx, req.PatientID, userID, model.AccessWrite); err != nil {
		return nil, err
	}
	if _, err := s.doctors.Get(ctx, req.DoctorID); err != nil {
		return nil, repository.NotFoundOr("doctor", err)
	}

	if err := s.ensureFree(ctx, Query{
		DoctorID:        req.DoctorID,
		PatientID:       req.PatientID,
		ProposedAt:      req.DateTime,
		DurationMinutes: req.DurationMinutes,
	}, req.Force); err != nil {
		return nil, err
	}

	appointment := &model.Appointment{
		PatientID: req.PatientID,
		DoctorID:  req.DoctorID,
		DateTime:  req.DateTime.UTC(),
		Status:    model.AppointmentStatusScheduled,
		Type:      req.Type,
		Location:  req.Location,
		Notes:     req.Notes,
		CreatedBy: userID,
	}
	if err := s.repo.Create(ctx, appointment); err != nil {
		return nil, repository.Upstream(err)
	}

	s.logger.WithContext(ctx).Info("appointment scheduled",
		"appointment_id", appointment.ID.String(),
		"forced", req.Force)
	return appointment, nil
}

// Reschedule moves a scheduled appointment. The appointment never conflicts
// with itself.
func (s *Service) Reschedule(ctx context.Context, userID, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error) {
	appointment, err := s.getWithAccess(ctx, userID, id, model.AccessWrite)
	if err != nil {
		return nil, err
	}
	if appointment.Status != model.AppointmentStatusScheduled {
		return nil, errors.InvalidInput(fmt.Sprintf("cannot reschedule a %s appointment", appointment.Status))
	}

	if err := s.ensureFree(ctx, Query{
		DoctorID:        appointment.DoctorID,
		PatientID:       appointment.PatientID,
		ProposedAt:      req.DateTime,
		DurationMinutes: req.DurationMinutes,
		ExcludeID:       &appointment.ID,
	}, req.Force); err != nil {
		return nil, err
	}

	appointment.DateTime = req.DateTime.UTC()
	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, repository.NotFoundOr("appointment", err)
	}
	return appointment, nil
}

func (s *Service) Cancel(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, userID, id, model.AppointmentStatusCancelled)
}

func (s *Service) Complete(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, userID, id, model.AppointmentStatusCompleted)
}

func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*model.Appointment, error) {
	return s.getWithAccess(ctx, userID, id, model.AccessRead)
}

func (s *Service) ListForPatient(ctx context.Context, userID, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	if _, err := s.access.Require(ctx, patientID, userID, model.AccessRead); err != nil {
		return nil, err
	}
	appointments, err := s.repo.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, repository.Upstream(err)
	}
	return appointments, nil
}

// Only scheduled appointments move to a terminal status. Rows are never deleted.
func (s *Service) transition(ctx context.Context, userID, id uuid.UUID, to model.AppointmentStatus) (*model.Appointment, error) {
	appointment, err := s.getWithAccess(ctx, userID, id, model.AccessWrite)
	if err != nil {
		return nil, err
	}
	if appointment.Status != model.AppointmentStatusScheduled {
		return nil, errors.InvalidInput(fmt.Sprintf("appointment is already %s", appointment.Status))
	}

	appointment.Status = to
	if err := s.repo.Update(ctx, appointment); err != nil {
		return nil, repository.NotFoundOr("appointment", err)
	}
	return appointment, nil
}

func (s *Service) getWithAccess(ctx context.Context, userID, id uuid.UUID, required model.AccessLevel) (*model.Appointment, error) {
	appointment, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repository.NotFoundOr("appointment", err)
	}
	if _, err := s.access.Require(ctx, appointment.PatientID, userID, required); err != nil {
		return nil, err
	}
	return appointment, nil
}

func (s *Service) ensureFree(ctx context.Context, q Query, force bool) error {
	conflicts, err := s.checker.FindConflicts(ctx, q)
	if err != nil {
		return err
	}
	if len(conflicts) == 0 {
		return nil
	}
	if force {
		s.logger.WithContext(ctx).Warn(nil, "scheduling over conflicts", "conflicts", len(conflicts))
		return nil
	}
	return &ConflictError{Conflicts: conflicts}
}
