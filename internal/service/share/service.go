package share

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/careconnect-api/internal/email"
	"github.com/jwalitptl/careconnect-api/internal/model"
	"github.com/jwalitptl/careconnect-api/internal/repository"
	"github.com/jwalitptl/careconnect-api/internal/service/event"
	"github.com/jwalitptl/careconnect-api/pkg/errors"
	"github.com/jwalitptl/careconnect-api/pkg/logger"
	"github.com/jwalitptl/careconnect-api/pkg/metrics"
	"github.com/jwalitptl/careconnect-api/pkg/validator"
)

const DefaultInviteTTL = 7 * 24 * time.Hour

type ShareService interface {
	CreateShare(ctx context.Context, patientID, grantingUserID uuid.UUID, recipientEmail string, level model.AccessLevel, expiresAt *time.Time) (*CreateResult, error)
	ClaimPendingShare(ctx context.Context, pendingID, claimingUserID uuid.UUID, claimingEmail string) (*model.PatientShare, error)
	RevokeShare(ctx context.Context, shareID, actingUserID uuid.UUID) error
	ListShares(ctx context.Context, patientID uuid.UUID) ([]*model.PatientShare, error)
	ListPendingShares(ctx context.Context, patientID uuid.UUID) ([]*model.PendingShare, error)
	ListInvitationsForEmail(ctx context.Context, email string) ([]*model.PendingShare, error)
}

// CreateResult holds exactly one of Share or PendingShare. NotificationError
// is set when the invitation was stored but its email could not be sent.
type CreateResult struct {
	Share             *model.PatientShare
	PendingShare      *model.PendingShare
	NotificationError error
}

type Deps struct {
	Users         repository.UserRepository
	Patients      repository.PatientRepository
	Shares        repository.ShareRepository
	PendingShares repository.PendingShareRepository
	Mailer        email.Service
	Events        event.Emitter
	Logger        *logger.Logger
	Metrics       *metrics.Metrics
}

type Service struct {
	users     repository.UserRepository
	patients  repository.PatientRepository
	shares    repository.ShareRepository
	pending   repository.PendingShareRepository
	mailer    email.Service
	events    event.Emitter
	logger    *logger.Logger
	metrics   *metrics.Metrics
	inviteTTL time.Duration
	now       func() time.Time
}

var _ ShareService = (*Service)(nil)

func NewService(deps Deps, inviteTTL time.Duration) *Service {
	if inviteTTL <= 0 {
		inviteTTL = DefaultInviteTTL
	}
	s := &Service{
		users:     deps.Users,
		patients:  deps.Patients,
		shares:    deps.Shares,
		pending:   deps.PendingShares,
		mailer:    deps.Mailer,
		events:    deps.Events,
		logger:    deps.Logger,
		metrics:   deps.Metrics,
		inviteTTL: inviteTTL,
		now:       time.Now,
	}
	if s.mailer == nil {
		s.mailer = email.Nop{}
	}
	if s.events == nil {
		s.events = event.Nop{}
	}
	if s.logger == nil {
		s.logger = logger.NewNop()
	}
	return s
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// CreateShare grants level to a registered recipient or invites the address.
// A nil expiresAt never expires; otherwise it must be in the future.
func (s *Service) CreateShare(ctx context.Context, patientID, grantingUserID uuid.UUID, recipientEmail string, level model.AccessLevel, expiresAt *time.Time) (res *CreateResult, err error) {
	defer func() { s.metrics.ShareOperation("create", err) }()

	if !level.Valid() {
		return nil, errors.InvalidInput(fmt.Sprintf("invalid access level %q", level))
	}
	if patientID == uuid.Nil || grantingUserID == uuid.Nil {
		return nil, errors.InvalidInput("patient id and granting user id are required")
	}
	addr := model.NormalizeEmail(recipientEmail)
	if err := validator.Email(addr); err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	if expiresAt != nil {
		if !expiresAt.After(s.now()) {
			return nil, errors.InvalidInput("expiry must be in the future")
		}
		utc := expiresAt.UTC()
		expiresAt = &utc
	}

	patient, err := s.patients.Get(ctx, patientID)
	if err != nil {
		return nil, repository.NotFoundOr("patient", err)
	}

	recipient, err := s.users.GetByEmail(ctx, addr)
	switch {
	case err == nil:
		share, err := s.shareWithUser(ctx, patient, grantingUserID, recipient, level, expiresAt)
		if err != nil {
			return nil, err
		}
		return &CreateResult{Share: share}, nil
	case stderrors.Is(err, repository.ErrNotFound):
		return s.invite(ctx, patient, grantingUserID, addr, level, expiresAt)
	default:
		return nil, repository.Upstream(err)
	}
}

func (s *Service) shareWithUser(ctx context.Context, patient *model.Patient, grantingUserID uuid.UUID, recipient *model.User, level model.AccessLevel, expiresAt *time.Time) (*model.PatientShare, error) {
	if recipient.ID == patient.OwnerID {
		return nil, errors.InvalidInput("patient is already owned by this user")
	}

	now := s.now()
	if err := s.clearExpiredShares(ctx, patient.ID, recipient.ID, now); err != nil {
		return nil, err
	}

	share := &model.PatientShare{
		PatientID:        patient.ID,
		GrantedBy:        grantingUserID,
		SharedWithUserID: recipient.ID,
		AccessLevel:      level,
		ExpiresAt:        expiresAt,
		CreatedAt:        now,
	}
	if err := s.createShare(ctx, share); err != nil {
		return nil, err
	}

	s.emit(ctx, model.EventShareCreated, event.SharePayload{
		PatientID:   patient.ID,
		ShareID:     &share.ID,
		ActorID:     grantingUserID,
		RecipientID: &recipient.ID,
		AccessLevel: level,
		OccurredAt:  now,
	})
	s.logger.WithContext(ctx).Info("patient shared",
		"patient_id", patient.ID.String(),
		"share_id", share.ID.String(),
		"access_level", string(level))

	return share, nil
}

// clearExpiredShares fails with DuplicateShare when the pair already has an
// active share and otherwise deletes the expired rows, which still occupy the
// (patient, user) unique index.
func (s *Service) clearExpiredShares(ctx context.Context, patientID, userID uuid.UUID, now time.Time) error {
	existing, err := s.shares.ListForPatientAndUser(ctx, patientID, userID)
	if err != nil {
		return repository.Upstream(err)
	}
	for _, row := range existing {
		if !row.ExpiredAt(now) {
			return errors.DuplicateShare("patient is already shared with this user", nil)
		}
	}
	for _, row := range existing {
		if err := s.shares.Delete(ctx, row.ID); err != nil && !stderrors.Is(err, repository.ErrNotFound) {
			return repository.Upstream(err)
		}
	}
	return nil
}

func (s *Service) createShare(ctx context.Context, share *model.PatientShare) error {
	err := s.shares.Create(ctx, share)
	if stderrors.Is(err, repository.ErrUniqueViolation) {
		return errors.DuplicateShare("patient is already shared with this user", err)
	}
	return repository.Upstream(err)
}

func (s *Service) invite(ctx context.Context, patient *model.Patient, grantingUserID uuid.UUID, addr string, level model.AccessLevel, shareExpiresAt *time.Time) (*CreateResult, error) {
	now := s.now()

	open, err := s.pending.FindOpen(ctx, patient.ID, addr, now)
	if err != nil {
		return nil, repository.Upstream(err)
	}
	if len(open) > 0 {
		return nil, errors.DuplicateShare("an invitation for this email is already pending", nil)
	}

	pending := &model.PendingShare{
		PatientID:      patient.ID,
		Email:          addr,
		AccessLevel:    level,
		GrantedBy:      grantingUserID,
		ExpiresAt:      now.Add(s.inviteTTL),
		ShareExpiresAt: shareExpiresAt,
		CreatedAt:      now,
	}
	if err := s.pending.Create(ctx, pending); err != nil {
		return nil, repository.Upstream(err)
	}

	s.emit(ctx, model.EventShareInvited, event.SharePayload{
		PatientID:      patient.ID,
		PendingShareID: &pending.ID,
		ActorID:        grantingUserID,
		Email:          addr,
		AccessLevel:    level,
		OccurredAt:     now,
	})

	result := &CreateResult{PendingShare: pending}

	// The stored invitation is what counts; a failed email is only reported.
	sendErr := s.mailer.SendInvitation(ctx, addr, email.InvitationData{
		PendingShareID: pending.ID,
		PatientName:    patient.Name,
		InviterName:    s.inviterName(ctx, grantingUserID),
		AccessLevel:    level,
		ExpiresAt:      pending.ExpiresAt,
	})
	s.metrics.InvitationEmail(sendErr)
	if sendErr != nil {
		s.logger.WithContext(ctx).Warn(sendErr, "invitation email not sent",
			"pending_share_id", pending.ID.String())
		if !errors.Is(sendErr, errors.ErrUpstreamUnavailable) {
			sendErr = errors.UpstreamUnavailable("email", sendErr)
		}
		result.NotificationError = sendErr
	}

	return result, nil
}

func (s *Service) inviterName(ctx context.Context, userID uuid.UUID) string {
	user, err := s.users.Get(ctx, userID)
	if err != nil || user.Name == "" {
		return "A CareConnect user"
	}
	return user.Name
}

// ClaimPendingShare turns an invitation into a share. The share insert and
// the claim mark are separate writes; a failed mark is compensated by
// deleting the share. A soft-deleted patient makes the invitation NotFound.
func (s *Service) ClaimPendingShare(ctx context.Context, pendingID, claimingUserID uuid.UUID, claimingEmail string) (share *model.PatientShare, err error) {
	defer func() { s.metrics.ShareOperation("claim", err) }()

	if pendingID == uuid.Nil || claimingUserID == uuid.Nil {
		return nil, errors.InvalidInput("invitation id and user id are required")
	}

	pending, err := s.pending.Get(ctx, pendingID)
	if err != nil {
		return nil, repository.NotFoundOr("invitation", err)
	}

	now := s.now()
	if pending.Claimed() {
		return nil, errors.AlreadyClaimed()
	}
	if pending.ExpiredAt(now) {
		return nil, errors.Expired("invitation")
	}
	if model.NormalizeEmail(claimingEmail) != model.NormalizeEmail(pending.Email) {
		return nil, errors.EmailMismatch()
	}

	patient, err := s.patients.Get(ctx, pending.PatientID)
	if err != nil {
		return nil, repository.NotFoundOr("patient", err)
	}
	if patient.OwnerID == claimingUserID {
		return nil, errors.InvalidInput("patient is already owned by this user")
	}
	if pending.ShareExpiresAt != nil && pending.ShareExpiresAt.Before(now) {
		return nil, errors.Expired("shared access")
	}
	if err := s.clearExpiredShares(ctx, patient.ID, claimingUserID, now); err != nil {
		return nil, err
	}

	share = &model.PatientShare{
		PatientID:        pending.PatientID,
		GrantedBy:        pending.GrantedBy,
		SharedWithUserID: claimingUserID,
		AccessLevel:      pending.AccessLevel,
		ExpiresAt:        pending.ShareExpiresAt,
		CreatedAt:        now,
	}
	if err := s.createShare(ctx, share); err != nil {
		return nil, err
	}

	if markErr := s.pending.MarkClaimed(ctx, pending.ID, claimingUserID, now); markErr != nil {
		return nil, s.compensateClaim(ctx, pending, share, markErr)
	}

	pending.ClaimedAt = &now
	pending.ClaimedByUserID = &claimingUserID

	s.emit(ctx, model.EventShareClaimed, event.SharePayload{
		PatientID:      share.PatientID,
		ShareID:        &share.ID,
		PendingShareID: &pending.ID,
		ActorID:        claimingUserID,
		RecipientID:    &claimingUserID,
		Email:          pending.Email,
		AccessLevel:    share.AccessLevel,
		OccurredAt:     now,
	})

	return share, nil
}

func (s *Service) compensateClaim(ctx context.Context, pending *model.PendingShare, share *model.PatientShare, markErr error) error {
	log := s.logger.WithContext(ctx)

	if delErr := s.shares.Delete(ctx, share.ID); delErr != nil {
		s.metrics.PartialClaim()
		log.Error(delErr, "claim compensation failed, share left without claimed invitation",
			"pending_share_id", pending.ID.String(),
			"share_id", share.ID.String(),
			"mark_error", markErr.Error())
		return errors.PartialClaimFailure(fmt.Errorf("mark claimed: %v; delete share: %w", markErr, delErr))
	}

	// The conditional update matched nothing: another request claimed first.
	if stderrors.Is(markErr, repository.ErrNotFound) {
		return errors.AlreadyClaimed()
	}
	log.Warn(markErr, "claim rolled back", "pending_share_id", pending.ID.String())
	return repository.Upstream(markErr)
}

func (s *Service) RevokeShare(ctx context.Context, shareID, actingUserID uuid.UUID) (err error) {
	defer func() { s.metrics.ShareOperation("revoke", err) }()

	share, err := s.shares.Get(ctx, shareID)
	if err != nil {
		return repository.NotFoundOr("share", err)
	}

	if share.GrantedBy != actingUserID {
		patient, err := s.patients.Get(ctx, share.PatientID)
		if err != nil && !stderrors.Is(err, repository.ErrNotFound) {
			return repository.Upstream(err)
		}
		if patient == nil || patient.OwnerID != actingUserID {
			return errors.Forbidden("only the granting user or the patient owner may revoke this share")
		}
	}

	if err := s.shares.Delete(ctx, share.ID); err != nil {
		return repository.NotFoundOr("share", err)
	}

	s.emit(ctx, model.EventShareRevoked, event.SharePayload{
		PatientID:   share.PatientID,
		ShareID:     &share.ID,
		ActorID:     actingUserID,
		RecipientID: &share.SharedWithUserID,
		AccessLevel: share.AccessLevel,
		OccurredAt:  s.now(),
	})

	return nil
}

func (s *Service) ListShares(ctx context.Context, patientID uuid.UUID) ([]*model.PatientShare, error) {
	shares, err := s.shares.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, repository.Upstream(err)
	}
	return shares, nil
}

func (s *Service) ListPendingShares(ctx context.Context, patientID uuid.UUID) ([]*model.PendingShare, error) {
	pending, err := s.pending.ListForPatient(ctx, patientID)
	if err != nil {
		return nil, repository.Upstream(err)
	}
	return pending, nil
}

// ListInvitationsForEmail returns the open invitations a user signed up with
// addr can claim.
func (s *Service) ListInvitationsForEmail(ctx context.Context, addr string) ([]*model.PendingShare, error) {
	pending, err := s.pending.ListOpenForEmail(ctx, model.NormalizeEmail(addr), s.now())
	if err != nil {
		return nil, repository.Upstream(err)
	}
	return pending, nil
}

// emit never fails the caller; the row change is already committed.
func (s *Service) emit(ctx context.Context, eventType string, payload event.SharePayload) {
	if err := s.events.Emit(ctx, eventType, payload); err != nil {
		s.logger.WithContext(ctx).Error(err, "failed to record event", "event_type", eventType)
	}
}
