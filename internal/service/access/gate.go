package access

import (
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/pkg/errors"
)

// DenyReason explains a denied Decision.
type DenyReason string

const (
	ReasonNone              DenyReason = ""
	ReasonNoAccess          DenyReason = "NO_ACCESS"
	ReasonInsufficientLevel DenyReason = "INSUFFICIENT_LEVEL"
)

type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Err returns nil for an allowed decision and a Forbidden error otherwise.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	switch d.Reason {
	case ReasonNoAccess:
		return errors.Forbidden("you do not have access to this patient")
	default:
		return errors.Forbidden("your access level does not permit this operation")
	}
}

// Authorize compares a resolved level against the level an operation requires.
// It never touches storage.
func Authorize(level, required model.AccessLevel) Decision {
	if !level.Valid() {
		return Decision{Reason: ReasonNoAccess}
	}
	if !level.AtLeast(required) {
		return Decision{Reason: ReasonInsufficientLevel}
	}
	return Decision{Allowed: true}
}
