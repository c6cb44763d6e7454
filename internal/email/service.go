package email

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/model"
)

// Service sends transactional email. Implementations report an unreachable
// mail server as an UpstreamUnavailable error.
type Service interface {
	SendInvitation(ctx context.Context, to string, data InvitationData) error
}

// InvitationData fills the invitation template.
type InvitationData struct {
	PendingShareID uuid.UUID
	PatientName    string
	InviterName    string
	AccessLevel    model.AccessLevel
	ExpiresAt      time.Time
	ClaimURL       string
}

// Nop drops every message. Used when no SMTP host is configured.
type Nop struct{}

func (Nop) SendInvitation(context.Context, string, InvitationData) error { return nil }
