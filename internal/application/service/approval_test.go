package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/entity"
	"github.com/garyjia/faction-bank/internal/domain/event"
)

func action(ticket *entity.Ticket, actor entity.Member) ActionRequest {
	return ActionRequest{TicketID: ticket.ID, Actor: actor}
}

func TestApprove_UpdatesSummaryAndPromptsPayout(t *testing.T) {
	h := newHarness(t)
	ticket := h.open(t, "12m", entity.ConditionASAP, "")

	updated, err := h.controller.Approve(context.Background(), action(ticket, alice))
	require.NoError(t, err)
	assert.Equal(t, entity.StatusApproved, updated.Status)

	embed := summaryOf(t, h.platform, ticket)
	assert.Equal(t, ColorApproved, embed.Color)
	last := embed.Fields[len(embed.Fields)-1]
	assert.Equal(t, "Status", last.Name)
	assert.Equal(t, "✅ Approved by <@u-alice>", last.Value)

	msgs := h.platform.channelMessages(ticket.ID)
	require.Len(t, msgs, 2)
	assert.Equal(t, ApprovedNotice, msgs[1].Content)
	assert.Empty(t, msgs[0].Content, "addressee mentions are cleared on decision")
}

func TestReject_KeepsWorkspaceOpen(t *testing.T) {
	h := newHarness(t)
	ticket := h.open(t, "12m", entity.ConditionASAP, "")

	updated, err := h.controller.Reject(context.Background(), action(ticket, bob))
	require.NoError(t, err)
	assert.Equal(t, entity.StatusRejected, updated.Status)

	embed := summaryOf(t, h.platform, ticket)
	assert.Equal(t, ColorRejected, embed.Color)
	assert.Equal(t, "❌ Rejected by <@u-bob>", embed.Fields[len(embed.Fields)-1].Value)

	_, ok := h.platform.channel(ticket.ID)
	assert.True(t, ok)
	assert.Len(t, h.platform.channelMessages(ticket.ID), 1, "no notice on reject")
}

func TestDecisions_RepeatAppendsAttribution(t *testing.T) {
	h := newHarness(t)
	ticket := h.open(t, "12m", entity.ConditionASAP, "")
	ctx := context.Background()

	_, err := h.controller.Approve(ctx, action(ticket, alice))
	require.NoError(t, err)
	_, err = h.controller.Reject(ctx, action(ticket, carol))
	require.NoError(t, err)
	_, err = h.controller.Approve(ctx, action(ticket, bob))
	require.NoError(t, err)

	embed := summaryOf(t, h.platform, ticket)
	require.Len(t, embed.Fields, 6)
	assert.Equal(t, "✅ Approved by <@u-alice>", embed.Fields[3].Value)
	assert.Equal(t, "❌ Rejected by <@u-carol>", embed.Fields[4].Value)
	assert.Equal(t, "✅ Approved by <@u-bob>", embed.Fields[5].Value)
	assert.Equal(t, ColorApproved, embed.Color)
}

func TestActions_NonApproverIsForbidden(t *testing.T) {
	h := newHarness(t)
	ticket := h.open(t, "12m", entity.ConditionASAP, "")
	ctx := context.Background()
	before := summaryOf(t, h.platform, ticket)

	_, err := h.controller.Approve(ctx, action(ticket, outsider))
	assert.True(t, errors.Is(err, ErrForbidden))
	_, err = h.controller.Reject(ctx, action(ticket, outsider))
	assert.True(t, errors.Is(err, ErrForbidden))
	_, err = h.controller.Close(ctx, action(ticket, outsider))
	assert.True(t, errors.Is(err, ErrForbidden))

	_, err = h.controller.Close(ctx, action(ticket, requester))
	assert.True(t, errors.Is(err, ErrForbidden), "requesters cannot close their own ticket")

	_, ok := h.platform.channel(ticket.ID)
	assert.True(t, ok, "workspace still exists")
	snapshot, _ := h.registry.Get(ticket.ID)
	assert.Equal(t, entity.StatusPending, snapshot.Status)
	assert.Equal(t, before, summaryOf(t, h.platform, ticket))
	assert.Equal(t, []event.Type{event.TypeTicketOpened}, h.drain())
}

func TestActions_AdministratorAndListedUser(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	admin := entity.Member{ID: "u-admin", Administrator: true}
	trusted := entity.Member{ID: "u-trusted"}

	first := h.open(t, "1k", entity.ConditionASAP, "")
	_, err := h.controller.Approve(ctx, action(first, admin))
	require.NoError(t, err)

	second := h.open(t, "1k", entity.ConditionASAP, "")
	_, err = h.controller.Reject(ctx, action(second, trusted))
	require.NoError(t, err)
}

func TestClose_ApproveThenClose(t *testing.T) {
	h := newHarness(t)
	ticket := h.open(t, "1.5b", entity.ConditionASAP, "")
	ctx := context.Background()

	_, err := h.controller.Approve(ctx, action(ticket, alice))
	require.NoError(t, err)
	embed := summaryOf(t, h.platform, ticket)
	assert.Equal(t, "✅ Approved by <@u-alice>", embed.Fields[len(embed.Fields)-1].Value)
	h.platform.say(ticket.ID, requester.ID, requester.Username, "sent, thanks")

	outcome, err := h.controller.Close(ctx, action(ticket, alice))
	require.NoError(t, err)

	assert.Equal(t, DeliveredToLogChannel, outcome.Delivery)
	assert.Equal(t, TeardownDeleted, outcome.Teardown)
	require.NotNil(t, outcome.Transcript)
	require.Len(t, outcome.Transcript.Entries, 3)
	assert.Equal(t, ApprovedNotice, outcome.Transcript.Entries[1].Body)
	assert.Contains(t, outcome.Transcript.Render(), ApprovedNotice)

	_, ok := h.platform.channel(ticket.ID)
	assert.False(t, ok, "workspace deleted")

	logged := h.platform.postedTo(h.logChannel)
	require.Len(t, logged, 1)
	assert.Equal(t, "📄 Transcript for **bank-jane-doe-u-req** (closed by <@u-alice>)", logged[0].Content)
	require.Len(t, logged[0].Files, 1)
	assert.True(t, strings.HasPrefix(logged[0].Files[0].Name, "transcript_bank-jane-doe-u-req_"))

	_, err = h.controller.Approve(ctx, action(ticket, alice))
	assert.True(t, errors.Is(err, ErrTicketClosed))
	_, err = h.controller.Close(ctx, action(ticket, alice))
	assert.True(t, errors.Is(err, ErrTicketClosed))

	assert.ElementsMatch(t,
		[]event.Type{event.TypeTicketOpened, event.TypeTicketApproved, event.TypeTicketClosed},
		h.drain())
}

func TestClose_LocksWhenDeletionFails(t *testing.T) {
	h := newHarness(t)
	ticket := h.open(t, "12m", entity.ConditionASAP, "")
	h.platform.failDelete = true

	outcome, err := h.controller.Close(context.Background(), action(ticket, alice))
	require.NoError(t, err)
	assert.Equal(t, TeardownLocked, outcome.Teardown)

	ch, ok := h.platform.channel(ticket.ID)
	require.True(t, ok)
	assert.Equal(t, "closed-bank-jane-doe-u-req", ch.Name)
	for _, ow := range ch.Overwrites {
		if ow.TargetID == "bot" {
			assert.True(t, ow.Allow.Has(port.PermSend))
			continue
		}
		assert.True(t, ow.Deny.Has(port.PermSend), ow.TargetID)
		assert.False(t, ow.Allow.Has(port.PermSend), ow.TargetID)
	}
}

func TestClose_TeardownFailureIsNotFatal(t *testing.T) {
	h := newHarness(t)
	ticket := h.open(t, "12m", entity.ConditionASAP, "")
	h.platform.failDelete = true
	h.platform.failEdit = true

	outcome, err := h.controller.Close(context.Background(), action(ticket, alice))
	require.NoError(t, err)
	assert.Equal(t, TeardownFailed, outcome.Teardown)
	assert.Equal(t, DeliveredToLogChannel, outcome.Delivery)

	_, err = h.controller.Close(context.Background(), action(ticket, alice))
	assert.True(t, errors.Is(err, ErrTicketClosed))
}

func TestClose_ConcurrentClosersSerialize(t *testing.T) {
	h := newHarness(t)
	ticket := h.open(t, "12m", entity.ConditionASAP, "")

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = h.controller.Close(context.Background(), action(ticket, alice))
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.True(t, errors.Is(err, ErrTicketClosed), err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, h.platform.postedTo(h.logChannel), 1, "one transcript")
}

func TestAdoption(t *testing.T) {
	t.Run("unknown workspace in the tickets category is adopted", func(t *testing.T) {
		var channelID string
		h := newHarness(t, withPlatform(func(p *fakePlatform) {
			cat := p.addCategory(testCategoryName)
			channelID = p.addTextChannel("bank-old-u-old", cat, []port.PermissionOverwrite{
				{TargetID: "guild", Target: port.TargetRole, Deny: port.PermView},
				{TargetID: "u-old", Target: port.TargetMember, Allow: port.PermView | port.PermSend},
				{TargetID: "bot", Target: port.TargetMember, Allow: port.PermView | port.PermSend},
			})
		}))
		h.platform.say(channelID, "u-old", "old", "still waiting")

		outcome, err := h.controller.Close(context.Background(), ActionRequest{TicketID: channelID, Actor: alice})
		require.NoError(t, err)
		assert.Equal(t, TeardownDeleted, outcome.Teardown)
		require.Len(t, outcome.Transcript.Entries, 1)

		closed := h.drain()
		assert.Equal(t, []event.Type{event.TypeTicketClosed}, closed)
	})

	t.Run("approval on an adopted ticket edits the pressed message", func(t *testing.T) {
		var channelID string
		h := newHarness(t, withPlatform(func(p *fakePlatform) {
			cat := p.addCategory(testCategoryName)
			channelID = p.addTextChannel("bank-old-u-old", cat, nil)
		}))
		summary := port.Embed{Title: "💸 Faction Bank Request", Color: ColorPending, Fields: []port.EmbedField{{Name: "Amount", Value: "5"}}}
		msg, err := h.platform.Post(context.Background(), channelID, port.OutgoingMessage{Embeds: []port.Embed{summary}})
		require.NoError(t, err)

		_, err = h.controller.Approve(context.Background(), ActionRequest{
			TicketID: channelID, Actor: alice, MessageID: msg.ID, Summary: &summary,
		})
		require.NoError(t, err)

		snapshot, ok := h.registry.Get(channelID)
		require.True(t, ok)
		assert.True(t, snapshot.Adopted)
		assert.Equal(t, entity.StatusApproved, snapshot.Status)

		msgs := h.platform.channelMessages(channelID)
		require.Len(t, msgs[0].Embeds, 1)
		assert.Len(t, msgs[0].Embeds[0].Fields, 2)
	})

	t.Run("locked remnant is treated as closed", func(t *testing.T) {
		var channelID string
		h := newHarness(t, withPlatform(func(p *fakePlatform) {
			cat := p.addCategory(testCategoryName)
			channelID = p.addTextChannel("closed-bank-old-u-old", cat, nil)
		}))

		_, err := h.controller.Close(context.Background(), ActionRequest{TicketID: channelID, Actor: alice})
		assert.True(t, errors.Is(err, ErrTicketClosed))
	})

	t.Run("workspace of another guild resolves that guild's category", func(t *testing.T) {
		var channelID string
		h := newHarness(t, withPlatform(func(p *fakePlatform) {
			p.addCategory(testCategoryName)
			cat := p.addCategoryIn("guild-2", testCategoryName)
			channelID = p.addTextChannelIn("guild-2", "bank-old-u-old", cat, nil)
		}))

		_, err := h.controller.Reject(context.Background(), ActionRequest{TicketID: channelID, Actor: alice})
		require.NoError(t, err)
		snapshot, ok := h.registry.Get(channelID)
		require.True(t, ok)
		assert.Equal(t, "guild-2", snapshot.GuildID)
	})

	t.Run("non-approvers cannot adopt", func(t *testing.T) {
		var channelID string
		h := newHarness(t, withPlatform(func(p *fakePlatform) {
			cat := p.addCategory(testCategoryName)
			channelID = p.addTextChannel("bank-old-u-old", cat, nil)
		}))

		_, err := h.controller.Close(context.Background(), ActionRequest{TicketID: channelID, Actor: outsider})
		assert.ErrorIs(t, err, ErrForbidden)
		assert.Equal(t, 0, h.registry.Len())
	})

	t.Run("workspace outside the category is not a ticket", func(t *testing.T) {
		h := newHarness(t)
		general := h.platform.addTextChannel("general", "", nil)

		_, err := h.controller.Close(context.Background(), ActionRequest{TicketID: general, Actor: alice})
		assert.True(t, errors.Is(err, ErrTicketNotFound))
		_, ok := h.platform.channel(general)
		assert.True(t, ok)
	})
}

func TestAuthorize(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	ticket := h.open(t, "3m", entity.ConditionASAP, "")
	general := h.platform.addTextChannel("general", "", nil)

	assert.NoError(t, h.controller.Authorize(ctx, action(ticket, bob)))
	assert.ErrorIs(t, h.controller.Authorize(ctx, action(ticket, outsider)), ErrForbidden)
	assert.ErrorIs(t, h.controller.Authorize(ctx, ActionRequest{TicketID: general, Actor: alice}), ErrTicketNotFound)

	_, err := h.controller.Close(ctx, action(ticket, alice))
	require.NoError(t, err)
	assert.ErrorIs(t, h.controller.Authorize(ctx, action(ticket, bob)), ErrTicketClosed)
	assert.ErrorIs(t, h.controller.Authorize(ctx, action(ticket, outsider)), ErrTicketClosed, "closed is reported before authorization")

	assert.ElementsMatch(t, []event.Type{event.TypeTicketOpened, event.TypeTicketClosed}, h.drain())
}
