package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/model"
)

const appointmentDetailSelect = `
		SELECT a.id, a.patient_id, a.doctor_id, a.date_time, a.status,
			   a.type, a.location, a.notes, a.created_by,
			   a.created_at, a.updated_at,
			   p.name AS patient_name, d.name AS doctor_name
		FROM appointments a
		JOIN patients p ON p.id = a.patient_id
		JOIN doctors d ON d.id = a.doctor_id
`

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, patient_id, doctor_id, date_time, status,
			type, location, notes, created_by,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now().UTC()
	appointment.UpdatedAt = appointment.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.PatientID,
		appointment.DoctorID,
		appointment.DateTime,
		appointment.Status,
		appointment.Type,
		appointment.Location,
		appointment.Notes,
		appointment.CreatedBy,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create appointment: %w", translate(err))
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, patient_id, doctor_id, date_time, status,
			   type, location, notes, created_by,
			   created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	if err := r.db.GetContext(ctx, &appointment, query, id); err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", translate(err))
	}
	return &appointment, nil
}

// Update persists the mutable scheduling fields: date, status and free text.
func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET date_time = $1, status = $2, type = $3, location = $4, notes = $5, updated_at = $6
		WHERE id = $7
	`
	appointment.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		appointment.DateTime,
		appointment.Status,
		appointment.Type,
		appointment.Location,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update appointment: %w", translate(err))
	}
	if err := expectOneRow(result); err != nil {
		return fmt.Errorf("failed to update appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	query := appointmentDetailSelect + `
		WHERE a.patient_id = $1
		ORDER BY a.date_time ASC
	`
	var appointments []*model.AppointmentDetail
	if err := r.db.SelectContext(ctx, &appointments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", translate(err))
	}
	return appointments, nil
}

func (r *appointmentRepository) ListDoctorAppointmentsInWindow(ctx context.Context, doctorID uuid.UUID, window model.AppointmentWindow) ([]*model.AppointmentDetail, error) {
	return r.listInWindow(ctx, "a.doctor_id", doctorID, window)
}

func (r *appointmentRepository) ListPatientAppointmentsInWindow(ctx context.Context, patientID uuid.UUID, window model.AppointmentWindow) ([]*model.AppointmentDetail, error) {
	return r.listInWindow(ctx, "a.patient_id", patientID, window)
}

// listInWindow uses inclusive bounds on both ends of the window.
func (r *appointmentRepository) listInWindow(ctx context.Context, column string, id uuid.UUID, window model.AppointmentWindow) ([]*model.AppointmentDetail, error) {
	query := appointmentDetailSelect + `
		WHERE ` + column + ` = $1
		AND a.status <> 'cancelled'
		AND a.date_time >= $2
		AND a.date_time <= $3
	`
	args := []interface{}{id, window.From, window.To}

	if window.ExcludeID != nil {
		query += " AND a.id <> $4"
		args = append(args, *window.ExcludeID)
	}

	query += " ORDER BY a.date_time ASC"

	var appointments []*model.AppointmentDetail
	if err := r.db.SelectContext(ctx, &appointments, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list appointments in window: %w", translate(err))
	}
	return appointments, nil
}
