package doctor

import (
	"context"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

type Service interface {
	CreateDoctor(ctx context.Context, userID uuid.UUID, req *model.CreateDoctorRequest) (*model.Doctor, error)
	GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error)
	ListDoctors(ctx context.Context) ([]*model.Doctor, error)
}

type service struct {
	repo repository.DoctorRepository
}

func NewService(repo repository.DoctorRepository) Service {
	return &service{repo: repo}
}

func (s *service) CreateDoctor(ctx context.Context, userID uuid.UUID, req *model.CreateDoctorRequest) (*model.Doctor, error) {
	doctor := &model.Doctor{
		Name:      req.Name,
		Specialty: req.Specialty,
		Phone:     req.Phone,
		CreatedBy: userID,
	}
	if err := s.repo.Create(ctx, doctor); err != nil {
		return nil, repository.Upstream(err)
	}
	return doctor, nil
}

func (s *service) GetDoctor(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	doctor, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, repository.NotFoundOr("doctor", err)
	}
	return doctor, nil
}

func (s *service) ListDoctors(ctx context.Context) ([]*model.Doctor, error) {
	doctors, err := s.repo.List(ctx)
	if err != nil {
		return nil, repository.Upstream(err)
	}
	return doctors, nil
}
