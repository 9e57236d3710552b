package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/garyjia/faction-bank/internal/application/dispatcher"
	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/access"
	"github.com/garyjia/faction-bank/internal/domain/entity"
	"github.com/garyjia/faction-bank/internal/domain/event"
)

const testCategoryName = "📥 bank-tickets"

var (
	requester = entity.Member{ID: "u-req", Username: "Jane Doe"}
	alice     = entity.Member{ID: "u-alice", Username: "alice", RoleIDs: []string{"r-bank", "r-lead"}}
	bob       = entity.Member{ID: "u-bob", Username: "bob", RoleIDs: []string{"r-bank"}}
	carol     = entity.Member{ID: "u-carol", Username: "carol", RoleIDs: []string{"r-lead"}}
	outsider  = entity.Member{ID: "u-out", Username: "mallory", RoleIDs: []string{"r-member"}}
)

type harness struct {
	platform    *fakePlatform
	logger      *testLogger
	registry    *TicketRegistry
	categories  *CategoryResolver
	notifier    *ApproverNotifier
	events      dispatcher.Dispatcher
	provisioner *Provisioner
	archiver    *TranscriptArchiver
	controller  *ApprovalController
	logChannel  string

	mu       sync.Mutex
	received []event.Type
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	configuredCat bool
	noLogChannel  bool
	setupPlatform func(*fakePlatform)
}

func withPlatform(fn func(*fakePlatform)) harnessOption {
	return func(c *harnessConfig) { c.setupPlatform = fn }
}

// withConfiguredCategory points the resolver at a category with an unrelated name
func withConfiguredCategory() harnessOption {
	return func(c *harnessConfig) { c.configuredCat = true }
}

func withoutLogChannel() harnessOption {
	return func(c *harnessConfig) { c.noLogChannel = true }
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	cfg := &harnessConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	p := newFakePlatform()
	p.addRole("r-bank", alice, bob)
	p.addRole("r-lead", alice, carol)

	h := &harness{platform: p, logger: &testLogger{}}
	if !cfg.noLogChannel {
		h.logChannel = p.addTextChannel("bank-logs", "", nil)
	}
	if cfg.setupPlatform != nil {
		cfg.setupPlatform(p)
	}
	categoryID := ""
	if cfg.configuredCat {
		categoryID = p.addCategory("Bank Queue")
	}

	policy := access.NewPolicy([]string{"r-bank", "r-lead"}, []string{"u-trusted"})
	h.events = dispatcher.NewDispatcher()
	h.events.SubscribeAll("recorder", func(ctx context.Context, evt *event.Event) error {
		h.mu.Lock()
		defer h.mu.Unlock()
		h.received = append(h.received, evt.Type)
		return nil
	})

	h.registry = NewTicketRegistry()
	h.categories = NewCategoryResolver(p, categoryID, testCategoryName)
	h.notifier = NewApproverNotifier(p, 1000, h.logger)
	h.provisioner = NewProvisioner(ProvisionerConfig{
		ChannelPrefix:   "bank",
		ApproverRoleIDs: policy.ApproverRoleIDs(),
		Controls: []port.Button{
			{CustomID: "bank:approve", Label: "Approve", Style: port.ButtonSuccess},
			{CustomID: "bank:reject", Label: "Reject", Style: port.ButtonDanger},
			{CustomID: "bank:close", Label: "Close", Style: port.ButtonSecondary},
		},
	}, p, h.categories, h.registry, h.notifier, h.events, h.logger)
	h.archiver = NewTranscriptArchiver(ArchiverConfig{LogChannelID: h.logChannel}, p, h.logger)
	h.controller = NewApprovalController(policy, p, h.registry, h.categories, h.archiver, h.events, h.logger)

	t.Cleanup(func() {
		h.notifier.Wait()
		_ = h.events.Close()
	})
	return h
}

// open provisions a ticket for the default requester
func (h *harness) open(t *testing.T, amountText string, condition entity.DeliveryCondition, comment string) *entity.Ticket {
	t.Helper()
	amount, err := entity.ParseAmount(amountText)
	require.NoError(t, err)
	req, err := entity.NewFundingRequest(h.platform.guildID, requester, amount, condition, comment)
	require.NoError(t, err)
	ticket, err := h.provisioner.Provision(context.Background(), req)
	require.NoError(t, err)
	return ticket
}

// drain waits for detached work and returns the published event types
func (h *harness) drain() []event.Type {
	h.notifier.Wait()
	_ = h.events.Close()
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]event.Type(nil), h.received...)
}

func summaryOf(t *testing.T, p *fakePlatform, ticket *entity.Ticket) port.Embed {
	t.Helper()
	for _, m := range p.channelMessages(ticket.ID) {
		if m.ID == ticket.SummaryMessageID {
			require.Len(t, m.Embeds, 1)
			return m.Embeds[0]
		}
	}
	t.Fatalf("summary message %s not found", ticket.SummaryMessageID)
	return port.Embed{}
}
