package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"

	"gopkg.in/gomail.v2"

	"github.com/jwalitptl/careconnect-api/internal/config"
	"github.com/jwalitptl/careconnect-api/pkg/circuitbreaker"
	"github.com/jwalitptl/careconnect-api/pkg/errors"
	"github.com/jwalitptl/careconnect-api/pkg/logger"
)

var invitationTmpl = template.Must(template.New("invitation").Parse(`<p>Hello,</p>
<p>{{.InviterName}} has shared the care record of <strong>{{.PatientName}}</strong> with you ({{.AccessLevel}} access).</p>
<p>Create your CareConnect account with this email address and accept the invitation:</p>
<p><a href="{{.ClaimURL}}">{{.ClaimURL}}</a></p>
<p>The invitation expires on {{.ExpiresAt.Format "2 Jan 2006"}}.</p>`))

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type SMTPService struct {
	dialer  dialer
	from    string
	baseURL string
	cb      *circuitbreaker.CircuitBreaker
	logger  *logger.Logger
}

func NewSMTPService(cfg config.SMTPConfig, log *logger.Logger) *SMTPService {
	return newSMTPService(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg, log)
}

func newSMTPService(d dialer, cfg config.SMTPConfig, log *logger.Logger) *SMTPService {
	return &SMTPService{
		dialer:  d,
		from:    cfg.From,
		baseURL: strings.TrimRight(cfg.AppBaseURL, "/"),
		cb: circuitbreaker.NewCircuitBreaker(circuitbreaker.Settings{
			Name:        "smtp",
			Timeout:     30 * time.Second,
			MaxFailures: cfg.MaxFailures,
			OnStateChange: func(name, from, to string) {
				log.Info("circuit breaker state changed", "breaker", name, "from", from, "to", to)
			},
		}),
		logger: log,
	}
}

// ClaimURL is the link a recipient follows to accept an invitation.
func (s *SMTPService) ClaimURL(data InvitationData) string {
	return fmt.Sprintf("%s/invitations/%s", s.baseURL, data.PendingShareID)
}

func (s *SMTPService) SendInvitation(ctx context.Context, to string, data InvitationData) error {
	if data.ClaimURL == "" {
		data.ClaimURL = s.ClaimURL(data)
	}

	var body bytes.Buffer
	if err := invitationTmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to render invitation: %w", err)
	}

	m := gomail.NewMessage(gomail.SetEncoding(gomail.Unencoded))
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", fmt.Sprintf("%s shared a patient record with you", data.InviterName))
	m.SetBody("text/html", body.String())

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := s.cb.Execute(func() error { return s.dialer.DialAndSend(m) }); err != nil {
		s.logger.Error(err, "failed to send invitation email", "pending_share_id", data.PendingShareID.String())
		return errors.UpstreamUnavailable("email", err)
	}
	return nil
}
