package service

import (
	"context"
	"fmt"
	"time"

	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/entity"
)

// TranscriptDelivery records where a transcript ended up
type TranscriptDelivery string

const (
	DeliveredToLogChannel TranscriptDelivery = "log_channel"
	DeliveredToCloser     TranscriptDelivery = "direct"
	DeliveryDiscarded     TranscriptDelivery = "discarded"
)

// Teardown records what happened to the workspace
type Teardown string

const (
	TeardownDeleted Teardown = "deleted"
	TeardownLocked  Teardown = "locked"
	TeardownFailed  Teardown = "failed"
)

// CloseOutcome summarizes an archive run
type CloseOutcome struct {
	Transcript *entity.Transcript
	Delivery   TranscriptDelivery
	Teardown   Teardown
}

// ArchiverConfig is fixed at startup
type ArchiverConfig struct {
	// LogChannelID is optional; without it transcripts go to the closer
	LogChannelID string
}

// TranscriptArchiver snapshots a workspace history, hands it off and tears the workspace down
type TranscriptArchiver struct {
	cfg      ArchiverConfig
	platform port.ChatPlatform
	logger   Logger
	now      func() time.Time
}

// NewTranscriptArchiver creates a TranscriptArchiver
func NewTranscriptArchiver(cfg ArchiverConfig, platform port.ChatPlatform, logger Logger) *TranscriptArchiver {
	return &TranscriptArchiver{
		cfg:      cfg,
		platform: platform,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Archive runs the whole close sequence. Delivery failures never stop the
// teardown; the returned error is non-nil only when the workspace could be
// neither deleted nor locked.
func (a *TranscriptArchiver) Archive(ctx context.Context, ticket entity.Ticket, closer entity.Member) (CloseOutcome, error) {
	outcome := CloseOutcome{Delivery: DeliveryDiscarded}

	transcript, err := a.Snapshot(ctx, ticket.ID, ticket.Name)
	if err != nil {
		a.logger.Error("Failed to read ticket history, transcript discarded",
			"ticket_id", ticket.ID, "actor_id", closer.ID, "error", err)
	} else {
		outcome.Transcript = transcript
		outcome.Delivery = a.deliver(ctx, ticket, closer, transcript)
	}

	outcome.Teardown = a.teardown(ctx, ticket, closer)
	if outcome.Teardown == TeardownFailed {
		return outcome, fmt.Errorf("%w: ticket %s", ErrWorkspaceTeardownFailure, ticket.ID)
	}
	return outcome, nil
}

// Snapshot builds the transcript of a workspace from its full history
func (a *TranscriptArchiver) Snapshot(ctx context.Context, channelID, channelName string) (*entity.Transcript, error) {
	history, err := a.platform.History(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}

	entries := make([]entity.TranscriptEntry, 0, len(history))
	for _, m := range history {
		entries = append(entries, entity.TranscriptEntry{
			Timestamp:   m.Timestamp,
			AuthorID:    m.AuthorID,
			AuthorName:  m.AuthorName,
			Body:        m.Content,
			Attachments: m.Attachments,
		})
	}
	return &entity.Transcript{
		ChannelName: channelName,
		Entries:     entries,
		GeneratedAt: a.now(),
	}, nil
}

func (a *TranscriptArchiver) deliver(ctx context.Context, ticket entity.Ticket, closer entity.Member, t *entity.Transcript) TranscriptDelivery {
	file := port.FileAttachment{
		Name:        t.FileName(),
		ContentType: "text/plain",
		Data:        []byte(t.Render()),
	}

	if a.cfg.LogChannelID != "" {
		_, err := a.platform.Post(ctx, a.cfg.LogChannelID, port.OutgoingMessage{
			Content: fmt.Sprintf("📄 Transcript for **%s** (closed by %s)", ticket.Name, closer.Mention()),
			Files:   []port.FileAttachment{file},
		})
		if err == nil {
			return DeliveredToLogChannel
		}
		a.logger.Warn("Transcript upload to log channel failed, falling back to closer",
			"ticket_id", ticket.ID, "log_channel_id", a.cfg.LogChannelID,
			"error", fmt.Errorf("%w: %v", ErrDeliveryFailure, err))
	}

	err := a.platform.SendDirect(ctx, closer.ID, port.OutgoingMessage{
		Content: fmt.Sprintf("📄 Transcript for **%s**", ticket.Name),
		Files:   []port.FileAttachment{file},
	})
	if err == nil {
		return DeliveredToCloser
	}
	a.logger.Warn("Transcript discarded",
		"ticket_id", ticket.ID, "actor_id", closer.ID,
		"error", fmt.Errorf("%w: %v", ErrDeliveryFailure, err))
	return DeliveryDiscarded
}

func (a *TranscriptArchiver) teardown(ctx context.Context, ticket entity.Ticket, closer entity.Member) Teardown {
	err := a.platform.DeleteChannel(ctx, ticket.ID, "Closed by "+closer.Name())
	if err == nil {
		a.logger.Info("Ticket workspace deleted", "ticket_id", ticket.ID, "actor_id", closer.ID)
		return TeardownDeleted
	}
	a.logger.Warn("Ticket workspace deletion failed, locking instead",
		"ticket_id", ticket.ID, "actor_id", closer.ID, "error", err)

	if lerr := a.lock(ctx, ticket); lerr != nil {
		a.logger.Error("Failed to lock ticket workspace", "ticket_id", ticket.ID, "error", lerr)
		return TeardownFailed
	}
	a.logger.Info("Ticket workspace locked", "ticket_id", ticket.ID, "actor_id", closer.ID)
	return TeardownLocked
}

// lock revokes send rights from every principal except the bot and renames the workspace
func (a *TranscriptArchiver) lock(ctx context.Context, ticket entity.Ticket) error {
	ch, err := a.platform.Channel(ctx, ticket.ID)
	if err != nil {
		return fmt.Errorf("load channel: %w", err)
	}

	self := a.platform.SelfID()
	overwrites := make([]port.PermissionOverwrite, 0, len(ch.Overwrites))
	for _, ow := range ch.Overwrites {
		if ow.TargetID != self {
			ow.Allow &^= port.PermSend
			ow.Deny |= port.PermSend
		}
		overwrites = append(overwrites, ow)
	}

	_, err = a.platform.EditChannel(ctx, ticket.ID, port.ChannelEdit{
		Name:       ClosedName(ch.Name),
		Overwrites: overwrites,
		Reason:     "Ticket closed",
	})
	return err
}

// ClosedName prefixes a workspace name with the closed marker
func ClosedName(name string) string {
	return entity.TruncateRunes(entity.ClosedChannelPrefix+name, entity.MaxChannelNameLength)
}
