package model

import (
	"time"

	"github.com/google/uuid"
)

// Patient is a record owned by exactly one user. OwnerID never changes.
type Patient struct {
	Base
	OwnerID     uuid.UUID  `db:"owner_id" json:"owner_id"`
	Name        string     `db:"name" json:"name"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Notes       string     `db:"notes" json:"notes,omitempty"`
}

type CreatePatientRequest struct {
	Name        string     `json:"name" binding:"required,max=200"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Notes       string     `json:"notes" binding:"max=2000"`
}

type UpdatePatientRequest struct {
	Name        *string    `json:"name" binding:"omitempty,max=200"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	Notes       *string    `json:"notes" binding:"omitempty,max=2000"`
}

// PatientWithAccess is a patient row annotated with the caller's level.
type PatientWithAccess struct {
	Patient
	AccessLevel AccessLevel `db:"access_level" json:"access_level"`
}
