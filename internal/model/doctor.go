package model

import (
	"github.com/google/uuid"
)

type Doctor struct {
	Base
	Name      string    `db:"name" json:"name"`
	Specialty string    `db:"specialty" json:"specialty,omitempty"`
	Phone     string    `db:"phone" json:"phone,omitempty"`
	CreatedBy uuid.UUID `db:"created_by" json:"created_by"`
}

type CreateDoctorRequest struct {
	Name      string `json:"name" binding:"required,max=200"`
	Specialty string `json:"specialty" binding:"max=200"`
	Phone     string `json:"phone" binding:"max=50"`
}
