package service

import (
	"context"
	"fmt"

	"github.com/garyjia/faction-bank/internal/application/dispatcher"
	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/access"
	"github.com/garyjia/faction-bank/internal/domain/entity"
	"github.com/garyjia/faction-bank/internal/domain/event"
)

// LedgerFile is a rendered ledger ready for upload
type LedgerFile struct {
	Name        string
	ContentType string
	Data        []byte
	Rows        int
}

// JournalService records lifecycle events and renders them as a ledger
type JournalService struct {
	repo     port.JournalRepository
	tx       port.TransactionManager
	exporter port.LedgerExporter
	policy   *access.Policy
	logger   Logger
}

// NewJournalService creates a JournalService
func NewJournalService(
	repo port.JournalRepository,
	tx port.TransactionManager,
	exporter port.LedgerExporter,
	policy *access.Policy,
	logger Logger,
) *JournalService {
	return &JournalService{
		repo:     repo,
		tx:       tx,
		exporter: exporter,
		policy:   policy,
		logger:   logger,
	}
}

// Subscribe attaches the journal to every lifecycle event
func (s *JournalService) Subscribe(d dispatcher.Dispatcher) {
	d.SubscribeAll("ticket-journal", s.Record)
}

// Record appends one event to the journal
func (s *JournalService) Record(ctx context.Context, evt *event.Event) error {
	entry := &entity.JournalEntry{
		EventID:     evt.ID,
		EventType:   journalEventType(evt.Type),
		TicketID:    evt.TicketID,
		GuildID:     evt.GuildID,
		RequesterID: evt.GetPayloadString(event.KeyRequesterID),
		ActorID:     evt.ActorID,
		Amount:      evt.GetPayloadInt(event.KeyAmount),
		Condition:   evt.GetPayloadString(event.KeyCondition),
		Comment:     evt.GetPayloadString(event.KeyComment),
		Status:      evt.GetPayloadString(event.KeyStatus),
		CreatedAt:   evt.Timestamp,
	}

	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.repo.Append(txCtx, entry)
	})
	if err != nil {
		s.logger.Error("Failed to journal ticket event", "ticket_id", evt.TicketID, "event_type", evt.Type, "error", err)
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// Export renders the newest limit journal entries for an approver
func (s *JournalService) Export(ctx context.Context, actor entity.Member, limit int) (*LedgerFile, error) {
	if !s.policy.IsApprover(actor) {
		return nil, ErrForbidden
	}
	if limit <= 0 {
		limit = 5000
	}

	entries, err := s.repo.List(ctx, limit, 0)
	if err != nil {
		return nil, fmt.Errorf("list journal: %w", err)
	}
	data, err := s.exporter.Export(ctx, entries)
	if err != nil {
		return nil, fmt.Errorf("render ledger: %w", err)
	}

	s.logger.Info("Ledger exported", "actor_id", actor.ID, "rows", len(entries))
	return &LedgerFile{
		Name:        "bank-ledger" + s.exporter.Extension(),
		ContentType: s.exporter.ContentType(),
		Data:        data,
		Rows:        len(entries),
	}, nil
}

func journalEventType(t event.Type) string {
	switch t {
	case event.TypeTicketOpened:
		return entity.JournalEventOpened
	case event.TypeTicketApproved:
		return entity.JournalEventApproved
	case event.TypeTicketRejected:
		return entity.JournalEventRejected
	case event.TypeTicketClosed:
		return entity.JournalEventClosed
	default:
		return string(t)
	}
}
