package patient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
	"github.com/jwalitptl/careconnect-api/pkg/errors"
)

type PatientService interface {
	CreatePatient(ctx context.Context, userID uuid.UUID, req *model.CreatePatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, userID, id uuid.UUID) (*model.PatientWithAccess, error)
	UpdatePatient(ctx context.Context, userID, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	DeletePatient(ctx context.Context, userID, id uuid.UUID) error
	ListPatients(ctx context.Context, userID uuid.UUID) ([]*model.PatientWithAccess, error)
}

// AccessChecker is satisfied by access.Resolver.
type AccessChecker interface {
	Require(ctx context.Context, patientID, userID uuid.UUID, required model.AccessLevel) (model.AccessLevel, error)
}

type Service struct {
	repo   repository.PatientRepository
	access AccessChecker
	now    func() time.Time
}

var _ PatientService = (*Service)(nil)

func NewService(repo repository.PatientRepository, access AccessChecker) *Service {
	return &Service{
		repo:   repo,
		access: access,
		now:    time.Now,
	}
}

// CreatePatient makes the caller the owner.
func (s *Service) CreatePatient(ctx context.Context, userID uuid.UUID, req *model.CreatePatientRequest) (*model.Patient, error) {
	patient := &model.Patient{
		OwnerID:     userID,
		Name:        req.Name,
		DateOfBirth: req.DateOfBirth,
		Notes:       req.Notes,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, repository.Upstream(err)
	}
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, userID, id uuid.UUID) (*model.PatientWithAccess, error) {
	level, err := s.access.Require(ctx, id, userID, model.AccessRead)
	if err != nil {
		return nil, err
	}
	patient, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &model.PatientWithAccess{Patient: *patient, AccessLevel: level}, nil
}

func (s *Service) UpdatePatient(ctx context.Context, userID, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	if _, err := s.access.Require(ctx, id, userID, model.AccessWrite); err != nil {
		return nil, err
	}
	patient, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		patient.Name = *req.Name
	}
	if req.DateOfBirth != nil {
		patient.DateOfBirth = req.DateOfBirth
	}
	if req.Notes != nil {
		patient.Notes = *req.Notes
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, repository.NotFoundOr("patient", err)
	}
	return patient, nil
}

// DeletePatient soft-deletes. Only the owner may delete, whatever shares exist.
func (s *Service) DeletePatient(ctx context.Context, userID, id uuid.UUID) error {
	patient, err := s.get(ctx, id)
	if err != nil {
		return err
	}
	if patient.OwnerID != userID {
		return errors.Forbidden("only the owner may delete a patient")
	}

	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return repository.NotFoundOr("patient", err)
	}
	return nil
}

// ListPatients returns owned patients and those shared with the caller
// through an unexpired share.
func (s *Service) ListPatients(ctx context.Context, userID uuid.UUID) ([]*model.PatientWithAccess, error) {
	patients, err := s.repo.ListAccessible(ctx, userID, s.now())
	if err != nil {
		return nil, repository.Upstream(err)
	}
	return patients, nil
}

func (s *Service) get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repository.NotFoundOr("patient", err)
	}
	return patient, nil
}
