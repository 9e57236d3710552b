package repository

import (
	"context"
	"database/sql"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/entity"
	"github.com/garyjia/faction-bank/internal/infrastructure/persistence/sqlite"
)

// JournalRepository implements port.JournalRepository
type JournalRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewJournalRepository creates a new journal repository
func NewJournalRepository(db *sql.DB, logger *zap.Logger) *JournalRepository {
	return &JournalRepository{db: db, logger: logger}
}

const journalColumns = `id, event_id, event_type, ticket_id, guild_id, requester_id, actor_id,
	amount, condition, comment, status, created_at`

// Append inserts an entry; a repeated event id is ignored
func (r *JournalRepository) Append(ctx context.Context, entry *entity.JournalEntry) error {
	query := `
		INSERT INTO ticket_journal (
			event_id, event_type, ticket_id, guild_id, requester_id, actor_id,
			amount, condition, comment, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(event_id) DO NOTHING
	`

	result, err := sqlite.ExecutorFrom(ctx, r.db).ExecContext(ctx, query,
		entry.EventID,
		entry.EventType,
		entry.TicketID,
		entry.GuildID,
		entry.RequesterID,
		entry.ActorID,
		entry.Amount,
		entry.Condition,
		entry.Comment,
		entry.Status,
		entry.CreatedAt.UTC(),
	)
	if err != nil {
		r.logger.Error("Failed to append journal entry", zap.String("ticket_id", entry.TicketID), zap.Error(err))
		return fmt.Errorf("failed to append journal entry: %w", err)
	}

	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return nil
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	entry.ID = id
	return nil
}

// GetByTicketID returns the entries of one ticket, oldest first
func (r *JournalRepository) GetByTicketID(ctx context.Context, ticketID string) ([]*entity.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM ticket_journal WHERE ticket_id = ? ORDER BY created_at ASC, id ASC`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, ticketID)
	if err != nil {
		r.logger.Error("Failed to get journal by ticket", zap.String("ticket_id", ticketID), zap.Error(err))
		return nil, fmt.Errorf("failed to get journal: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

// List returns entries oldest first
func (r *JournalRepository) List(ctx context.Context, limit, offset int) ([]*entity.JournalEntry, error) {
	query := `SELECT ` + journalColumns + ` FROM ticket_journal ORDER BY created_at ASC, id ASC LIMIT ? OFFSET ?`

	rows, err := sqlite.ExecutorFrom(ctx, r.db).QueryContext(ctx, query, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list journal", zap.Error(err))
		return nil, fmt.Errorf("failed to list journal: %w", err)
	}
	defer rows.Close()
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]*entity.JournalEntry, error) {
	var entries []*entity.JournalEntry
	for rows.Next() {
		var e entity.JournalEntry
		if err := rows.Scan(
			&e.ID,
			&e.EventID,
			&e.EventType,
			&e.TicketID,
			&e.GuildID,
			&e.RequesterID,
			&e.ActorID,
			&e.Amount,
			&e.Condition,
			&e.Comment,
			&e.Status,
			&e.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan journal entry: %w", err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal rows: %w", err)
	}
	return entries, nil
}

var _ port.JournalRepository = (*JournalRepository)(nil)
