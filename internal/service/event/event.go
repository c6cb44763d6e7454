package event

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/model"
)

// Emitter records domain events for asynchronous publication.
type Emitter interface {
	Emit(ctx context.Context, eventType string, payload interface{}) error
}

// SharePayload is the body of every share.* event.
type SharePayload struct {
	PatientID      uuid.UUID         `json:"patient_id"`
	ShareID        *uuid.UUID        `json:"share_id,omitempty"`
	PendingShareID *uuid.UUID        `json:"pending_share_id,omitempty"`
	ActorID        uuid.UUID         `json:"actor_id"`
	RecipientID    *uuid.UUID        `json:"recipient_id,omitempty"`
	Email          string            `json:"email,omitempty"`
	AccessLevel    model.AccessLevel `json:"access_level,omitempty"`
	OccurredAt     time.Time         `json:"occurred_at"`
}

// Nop discards events.
type Nop struct{}

func (Nop) Emit(context.Context, string, interface{}) error { return nil }
