package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

type mockAppointmentRepo struct {
	appointments map[uuid.UUID]*model.Appointment
	patientNames map[uuid.UUID]string
	doctorNames  map[uuid.UUID]string
	windowErr    error
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{
		appointments: make(map[uuid.UUID]*model.Appointment),
		patientNames: make(map[uuid.UUID]string),
		doctorNames:  make(map[uuid.UUID]string),
	}
}

func (m *mockAppointmentRepo) add(patientID, doctorID uuid.UUID, at time.Time, status model.AppointmentStatus) *model.Appointment {
	a := &model.Appointment{
		Base:      model.Base{ID: uuid.New()},
		PatientID: patientID,
		DoctorID:  doctorID,
		DateTime:  at,
		Status:    status,
	}
	m.appointments[a.ID] = a
	return a
}

func (m *mockAppointmentRepo) Create(ctx context.Context, a *model.Appointment) error {
	a.ID = uuid.New()
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *mockAppointmentRepo) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	if a, ok := m.appointments[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockAppointmentRepo) Update(ctx context.Context, a *model.Appointment) error {
	if _, ok := m.appointments[a.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *a
	m.appointments[a.ID] = &cp
	return nil
}

func (m *mockAppointmentRepo) detail(a *model.Appointment) *model.AppointmentDetail {
	return &model.AppointmentDetail{
		Appointment: *a,
		PatientName: m.patientNames[a.PatientID],
		DoctorName:  m.doctorNames[a.DoctorID],
	}
}

func (m *mockAppointmentRepo) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.AppointmentDetail, error) {
	var out []*model.AppointmentDetail
	for _, a := range m.appointments {
		if a.PatientID == patientID {
			out = append(out, m.detail(a))
		}
	}
	return out, nil
}

func (m *mockAppointmentRepo) inWindow(match func(*model.Appointment) bool, w model.AppointmentWindow) ([]*model.AppointmentDetail, error) {
	if m.windowErr != nil {
		return nil, m.windowErr
	}
	var out []*model.AppointmentDetail
	for _, a := range m.appointments {
		if !match(a) || a.Status == model.AppointmentStatusCancelled {
			continue
		}
		if w.ExcludeID != nil && a.ID == *w.ExcludeID {
			continue
		}
		if a.DateTime.Before(w.From) || a.DateTime.After(w.To) {
			continue
		}
		out = append(out, m.detail(a))
	}
	return out, nil
}

func (m *mockAppointmentRepo) ListDoctorAppointmentsInWindow(ctx context.Context, doctorID uuid.UUID, w model.AppointmentWindow) ([]*model.AppointmentDetail, error) {
	return m.inWindow(func(a *model.Appointment) bool { return a.DoctorID == doctorID }, w)
}

func (m *mockAppointmentRepo) ListPatientAppointmentsInWindow(ctx context.Context, patientID uuid.UUID, w model.AppointmentWindow) ([]*model.AppointmentDetail, error) {
	return m.inWindow(func(a *model.Appointment) bool { return a.PatientID == patientID }, w)
}

type mockDoctorRepo struct {
	doctors map[uuid.UUID]*model.Doctor
}

func (m *mockDoctorRepo) Create(ctx context.Context, d *model.Doctor) error {
	d.ID = uuid.New()
	m.doctors[d.ID] = d
	return nil
}

func (m *mockDoctorRepo) Get(ctx context.Context, id uuid.UUID) (*model.Doctor, error) {
	if d, ok := m.doctors[id]; ok {
		return d, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockDoctorRepo) List(ctx context.Context) ([]*model.Doctor, error) {
	return nil, nil
}

// mockAccess grants fixed levels per (patient, user).
type mockAccess struct {
	levels map[[2]uuid.UUID]model.AccessLevel
}

var errDenied = errors.New("denied")

func (m *mockAccess) grant(patientID, userID uuid.UUID, level model.AccessLevel) {
	m.levels[[2]uuid.UUID{patientID, userID}] = level
}

func (m *mockAccess) Require(ctx context.Context, patientID, userID uuid.UUID, required model.AccessLevel) (model.AccessLevel, error) {
	level := m.levels[[2]uuid.UUID{patientID, userID}]
	if !level.AtLeast(required) {
		return level, errDenied
	}
	return level, nil
}
