package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/jwalitptl/careconnect-api/internal/repository"
)

type userRepository struct {
	BaseRepository
}

type patientRepository struct {
	BaseRepository
}

type doctorRepository struct {
	BaseRepository
}

type shareRepository struct {
	BaseRepository
}

type pendingShareRepository struct {
	BaseRepository
}

type appointmentRepository struct {
	BaseRepository
}

type outboxRepository struct {
	BaseRepository
}

func NewUserRepository(db *sqlx.DB) repository.UserRepository {
	return &userRepository{NewBaseRepository(db)}
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{NewBaseRepository(db)}
}

func NewDoctorRepository(db *sqlx.DB) repository.DoctorRepository {
	return &doctorRepository{NewBaseRepository(db)}
}

func NewShareRepository(db *sqlx.DB) repository.ShareRepository {
	return &shareRepository{NewBaseRepository(db)}
}

func NewPendingShareRepository(db *sqlx.DB) repository.PendingShareRepository {
	return &pendingShareRepository{NewBaseRepository(db)}
}

func NewAppointmentRepository(db *sqlx.DB) repository.AppointmentRepository {
	return &appointmentRepository{NewBaseRepository(db)}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{NewBaseRepository(db)}
}
