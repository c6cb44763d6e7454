package share

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/email"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
)

type mockUserRepo struct {
	users map[uuid.UUID]*model.User
}

func (m *mockUserRepo) Create(ctx context.Context, u *model.User) error {
	u.ID = uuid.New()
	m.users[u.ID] = u
	return nil
}

func (m *mockUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, addr string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == addr {
			return u, nil
		}
	}
	return nil, repository.ErrNotFound
}

type mockPatientRepo struct {
	patients map[uuid.UUID]*model.Patient
	getErr   error
}

func (m *mockPatientRepo) Create(ctx context.Context, p *model.Patient) error {
	p.ID = uuid.New()
	m.patients[p.ID] = p
	return nil
}

func (m *mockPatientRepo) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	p, ok := m.patients[id]
	if !ok || p.IsDeleted() {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (m *mockPatientRepo) Update(ctx context.Context, p *model.Patient) error { return nil }

func (m *mockPatientRepo) SoftDelete(ctx context.Context, id uuid.UUID, at time.Time) error {
	return nil
}

func (m *mockPatientRepo) ListAccessible(ctx context.Context, userID uuid.UUID, now time.Time) ([]*model.PatientWithAccess, error) {
	return nil, nil
}

// mockShareRepo enforces the (patient, user) unique index like the real table.
type mockShareRepo struct {
	mu        sync.Mutex
	shares    map[uuid.UUID]*model.PatientShare
	createErr error
	deleteErr error
}

func (m *mockShareRepo) Create(ctx context.Context, s *model.PatientShare) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, existing := range m.shares {
		if existing.PatientID == s.PatientID && existing.SharedWithUserID == s.SharedWithUserID {
			return repository.ErrUniqueViolation
		}
	}
	s.ID = uuid.New()
	cp := *s
	m.shares[s.ID] = &cp
	return nil
}

func (m *mockShareRepo) Get(ctx context.Context, id uuid.UUID) (*model.PatientShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.shares[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockShareRepo) ListForPatientAndUser(ctx context.Context, patientID, userID uuid.UUID) ([]*model.PatientShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PatientShare
	for _, s := range m.shares {
		if s.PatientID == patientID && s.SharedWithUserID == userID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockShareRepo) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PatientShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PatientShare
	for _, s := range m.shares {
		if s.PatientID == patientID {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (m *mockShareRepo) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if _, ok := m.shares[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.shares, id)
	return nil
}

type mockPendingRepo struct {
	mu      sync.Mutex
	pending map[uuid.UUID]*model.PendingShare
	markErr error
}

func (m *mockPendingRepo) Create(ctx context.Context, p *model.PendingShare) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.ID = uuid.New()
	cp := *p
	m.pending[p.ID] = &cp
	return nil
}

func (m *mockPendingRepo) Get(ctx context.Context, id uuid.UUID) (*model.PendingShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.pending[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, repository.ErrNotFound
}

func (m *mockPendingRepo) FindOpen(ctx context.Context, patientID uuid.UUID, addr string, now time.Time) ([]*model.PendingShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PendingShare
	for _, p := range m.pending {
		if p.PatientID == patientID && p.Email == addr && !p.Claimed() && !p.ExpiresAt.Before(now) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockPendingRepo) ListForPatient(ctx context.Context, patientID uuid.UUID) ([]*model.PendingShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PendingShare
	for _, p := range m.pending {
		if p.PatientID == patientID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockPendingRepo) ListOpenForEmail(ctx context.Context, addr string, now time.Time) ([]*model.PendingShare, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.PendingShare
	for _, p := range m.pending {
		if p.Email == addr && !p.Claimed() && !p.ExpiresAt.Before(now) {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockPendingRepo) MarkClaimed(ctx context.Context, id, userID uuid.UUID, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.markErr != nil {
		return m.markErr
	}
	p, ok := m.pending[id]
	if !ok || p.Claimed() {
		return repository.ErrNotFound
	}
	p.ClaimedAt = &at
	p.ClaimedByUserID = &userID
	return nil
}

type mockMailer struct {
	sent []string
	err  error
}

func (m *mockMailer) SendInvitation(ctx context.Context, to string, data email.InvitationData) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, to)
	return nil
}

type mockEmitter struct {
	mu     sync.Mutex
	events []string
	err    error
}

func (m *mockEmitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, eventType)
	return nil
}
