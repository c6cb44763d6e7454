package appointment

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
	"github.com/jwalitptl/careconnect-api/pkg/errors"
	"github.com/jwalitptl/careconnect-api/pkg/metrics"
)

const DefaultWindowMinutes = 30

type ConflictType string

const (
	ConflictDoctor  ConflictType = "doctor"
	ConflictPatient ConflictType = "patient"
)

// Conflict is an existing appointment too close to a proposed slot. Doctor
// conflicts name the other patient; patient conflicts name the other doctor.
type Conflict struct {
	Type          ConflictType `json:"type"`
	AppointmentID uuid.UUID    `json:"appointment_id"`
	DateTime      time.Time    `json:"date_time"`
	PatientName   string       `json:"patient_name,omitempty"`
	DoctorName    string       `json:"doctor_name,omitempty"`
}

// Query describes a proposed slot. A nil DurationMinutes uses the checker's
// default window.
type Query struct {
	DoctorID        uuid.UUID
	PatientID       uuid.UUID
	ProposedAt      time.Time
	DurationMinutes *int
	ExcludeID       *uuid.UUID
}

// ConflictError aborts a write whose slot has conflicts.
type ConflictError struct {
	Conflicts []Conflict
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("proposed time conflicts with %d existing appointment(s)", len(e.Conflicts))
}

// Checker finds appointments of the same doctor or patient within
// [ProposedAt - d, ProposedAt + d]. It never writes.
type Checker struct {
	repo          repository.AppointmentRepository
	windowMinutes int
	metrics       *metrics.Metrics
}

func NewChecker(repo repository.AppointmentRepository, windowMinutes int, m *metrics.Metrics) *Checker {
	if windowMinutes < 0 {
		windowMinutes = DefaultWindowMinutes
	}
	return &Checker{repo: repo, windowMinutes: windowMinutes, metrics: m}
}

func (c *Checker) FindConflicts(ctx context.Context, q Query) ([]Conflict, error) {
	if q.DoctorID == uuid.Nil || q.PatientID == uuid.Nil {
		return nil, errors.InvalidInput("doctor id and patient id are required")
	}
	if q.ProposedAt.IsZero() {
		return nil, errors.InvalidInput("proposed date and time is required")
	}

	minutes := c.windowMinutes
	if q.DurationMinutes != nil {
		minutes = *q.DurationMinutes
	}
	if minutes < 0 {
		return nil, errors.InvalidInput("duration must not be negative")
	}

	d := time.Duration(minutes) * time.Minute
	window := model.AppointmentWindow{
		From:      q.ProposedAt.Add(-d),
		To:        q.ProposedAt.Add(d),
		ExcludeID: q.ExcludeID,
	}

	doctorRows, err := c.repo.ListDoctorAppointmentsInWindow(ctx, q.DoctorID, window)
	if err != nil {
		return nil, repository.Upstream(err)
	}
	patientRows, err := c.repo.ListPatientAppointmentsInWindow(ctx, q.PatientID, window)
	if err != nil {
		return nil, repository.Upstream(err)
	}

	doctorConflicts := collect(ConflictDoctor, doctorRows, window)
	patientConflicts := collect(ConflictPatient, patientRows, window)
	c.metrics.ConflictCheck(len(doctorConflicts), len(patientConflicts))

	conflicts := make([]Conflict, 0, len(doctorConflicts)+len(patientConflicts))
	conflicts = append(conflicts, doctorConflicts...)
	return append(conflicts, patientConflicts...), nil
}

// collect re-applies the window filter so the result does not depend on the
// store's ordering or status filtering.
func collect(kind ConflictType, rows []*model.AppointmentDetail, window model.AppointmentWindow) []Conflict {
	out := make([]Conflict, 0, len(rows))
	for _, row := range rows {
		if row.Status == model.AppointmentStatusCancelled {
			continue
		}
		if window.ExcludeID != nil && row.ID == *window.ExcludeID {
			continue
		}
		if row.DateTime.Before(window.From) || row.DateTime.After(window.To) {
			continue
		}
		c := Conflict{
			Type:          kind,
			AppointmentID: row.ID,
			DateTime:      row.DateTime,
		}
		if kind == ConflictDoctor {
			c.PatientName = row.PatientName
		} else {
			c.DoctorName = row.DoctorName
		}
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DateTime.Before(out[j].DateTime) })
	return out
}
