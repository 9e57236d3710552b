package port

import (
	"context"

	"github.com/garyjia/faction-bank/internal/domain/entity"
)

// JournalRepository defines persistence operations for the ticket journal
type JournalRepository interface {
	// Append stores a new entry; duplicate event ids are ignored
	Append(ctx context.Context, entry *entity.JournalEntry) error
	// GetByTicketID returns all entries of one ticket, oldest first
	GetByTicketID(ctx context.Context, ticketID string) ([]*entity.JournalEntry, error)
	// List returns entries oldest first
	List(ctx context.Context, limit, offset int) ([]*entity.JournalEntry, error)
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
