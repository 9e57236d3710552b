// Package intake runs the two-step entry flow that turns a member's input
// into a funding request and hands it to the provisioner.
package intake

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/garyjia/faction-bank/internal/domain/entity"
)

var (
	// ErrPromptExpired is returned for a prompt that timed out or was already used
	ErrPromptExpired = errors.New("prompt expired")
	// ErrNotYourPrompt is returned when someone other than the submitter answers a prompt
	ErrNotYourPrompt = errors.New("prompt belongs to another member")
)

// Provisioner opens a ticket workspace for a request
type Provisioner interface {
	Provision(ctx context.Context, req *entity.FundingRequest) (*entity.Ticket, error)
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Config is fixed at startup
type Config struct {
	PromptTimeout time.Duration
	MaxSessions   int
}

// Flow owns the prompt sessions of the entry flow
type Flow struct {
	cfg         Config
	sessions    *SessionStore
	provisioner Provisioner
	logger      Logger
}

// NewFlow creates a Flow
func NewFlow(cfg Config, provisioner Provisioner, logger Logger) *Flow {
	if cfg.PromptTimeout <= 0 {
		cfg.PromptTimeout = 5 * time.Minute
	}
	return &Flow{
		cfg:         cfg,
		sessions:    NewSessionStore(cfg.PromptTimeout, cfg.MaxSessions),
		provisioner: provisioner,
		logger:      logger,
	}
}

// Begin opens the amount/comment form for an actor and returns its session id
func (f *Flow) Begin(actor entity.Member) string {
	sess := f.sessions.Open(actor)
	f.logger.Info("Entry prompt opened", "session_id", sess.ID, "actor_id", actor.ID)
	return sess.ID
}

// SubmitForm validates the amount and advances the session to the condition choice.
// A bad amount leaves the session where it was.
func (f *Flow) SubmitForm(ctx context.Context, sessionID string, actor entity.Member, amountText, comment string) (Session, error) {
	sess, ok := f.sessions.Get(sessionID)
	if !ok || sess.Phase != PhaseForm {
		return Session{}, ErrPromptExpired
	}
	if sess.Owner.ID != actor.ID {
		return Session{}, ErrNotYourPrompt
	}

	if utf8.RuneCountInString(amountText) > entity.MaxAmountInputLength {
		return Session{}, entity.ErrInvalidFormat
	}
	amount, err := entity.ParseAmount(amountText)
	if err != nil {
		return Session{}, err
	}

	sess.Phase = PhaseCondition
	sess.Amount = amount
	sess.Comment = entity.TruncateRunes(comment, entity.MaxCommentLength)
	if !f.sessions.Update(sess) {
		return Session{}, ErrPromptExpired
	}
	return sess, nil
}

// SelectCondition completes the flow and provisions the ticket in the guild
// the selection came from. The session is consumed even when provisioning fails.
func (f *Flow) SelectCondition(ctx context.Context, sessionID, guildID string, actor entity.Member, value string) (*entity.Ticket, error) {
	sess, ok := f.sessions.Get(sessionID)
	if !ok || sess.Phase != PhaseCondition {
		return nil, ErrPromptExpired
	}
	if sess.Owner.ID != actor.ID {
		f.logger.Info("Rejected selection on another member's prompt", "session_id", sessionID, "actor_id", actor.ID)
		return nil, ErrNotYourPrompt
	}

	condition, err := entity.ParseDeliveryCondition(value)
	if err != nil {
		return nil, err
	}

	sess, ok = f.sessions.Take(sessionID)
	if !ok {
		return nil, ErrPromptExpired
	}

	req, err := entity.NewFundingRequest(guildID, sess.Owner, sess.Amount, condition, sess.Comment)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	ticket, err := f.provisioner.Provision(ctx, req)
	if err != nil {
		f.logger.Error("Provisioning failed", "session_id", sessionID, "actor_id", actor.ID, "error", err)
		return nil, err
	}
	return ticket, nil
}

// Sweep drops expired prompts
func (f *Flow) Sweep() int {
	return f.sessions.Sweep()
}

// Pending returns the number of stored prompts
func (f *Flow) Pending() int {
	return f.sessions.Len()
}
