package port

import (
	"context"

	"github.com/garyjia/faction-bank/internal/domain/entity"
)

// Mirror forwards short lifecycle notices to a secondary chat system
type Mirror interface {
	Publish(ctx context.Context, text string) error
}

// LedgerExporter renders journal entries into a downloadable workbook
type LedgerExporter interface {
	Export(ctx context.Context, entries []*entity.JournalEntry) ([]byte, error)
	ContentType() string
	Extension() string
}
