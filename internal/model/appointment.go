package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

type Appointment struct {
	Base
	PatientID uuid.UUID         `db:"patient_id" json:"patient_id"`
	DoctorID  uuid.UUID         `db:"doctor_id" json:"doctor_id"`
	DateTime  time.Time         `db:"date_time" json:"date_time"`
	Status    AppointmentStatus `db:"status" json:"status"`
	Type      string            `db:"type" json:"type,omitempty"`
	Location  string            `db:"location" json:"location,omitempty"`
	Notes     string            `db:"notes" json:"notes,omitempty"`
	CreatedBy uuid.UUID         `db:"created_by" json:"created_by"`
}

// AppointmentDetail is an appointment joined with the names of both parties.
type AppointmentDetail struct {
	Appointment
	PatientName string `db:"patient_name" json:"patient_name"`
	DoctorName  string `db:"doctor_name" json:"doctor_name"`
}

// AppointmentWindow selects non-cancelled appointments of one party whose
// DateTime lies in [From, To], both bounds inclusive.
type AppointmentWindow struct {
	From      time.Time
	To        time.Time
	ExcludeID *uuid.UUID
}

type CreateAppointmentRequest struct {
	PatientID       uuid.UUID `json:"patient_id" binding:"required"`
	DoctorID        uuid.UUID `json:"doctor_id" binding:"required"`
	DateTime        time.Time `json:"date_time" binding:"required"`
	DurationMinutes *int      `json:"duration_minutes" binding:"omitempty,min=0"`
	Type            string    `json:"type" binding:"max=100"`
	Location        string    `json:"location" binding:"max=200"`
	Notes           string    `json:"notes" binding:"max=1000"`
	Force           bool      `json:"force"`
}

type RescheduleAppointmentRequest struct {
	DateTime        time.Time `json:"date_time" binding:"required"`
	DurationMinutes *int      `json:"duration_minutes" binding:"omitempty,min=0"`
	Force           bool      `json:"force"`
}

type ConflictCheckRequest struct {
	PatientID            uuid.UUID  `json:"patient_id" binding:"required"`
	DoctorID             uuid.UUID  `json:"doctor_id" binding:"required"`
	DateTime             time.Time  `json:"date_time" binding:"required"`
	DurationMinutes      *int       `json:"duration_minutes" binding:"omitempty,min=0"`
	ExcludeAppointmentID *uuid.UUID `json:"exclude_appointment_id"`
}
