package intake

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/access"
	"github.com/garyjia/faction-bank/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

type mockProvisioner struct {
	provisionFunc func(ctx context.Context, req *entity.FundingRequest) (*entity.Ticket, error)
	calls         []*entity.FundingRequest
}

func (m *mockProvisioner) Provision(ctx context.Context, req *entity.FundingRequest) (*entity.Ticket, error) {
	m.calls = append(m.calls, req)
	if m.provisionFunc != nil {
		return m.provisionFunc(ctx, req)
	}
	return &entity.Ticket{ID: "chan-1", RequesterID: req.Requester.ID, Request: req, Status: entity.StatusPending}, nil
}

const testGuild = "guild-7"

var (
	member = entity.Member{ID: "u-req", Username: "jane"}
	other  = entity.Member{ID: "u-other", Username: "mallory"}
)

func TestFlow_HappyPath(t *testing.T) {
	prov := &mockProvisioner{}
	f := NewFlow(Config{PromptTimeout: time.Minute}, prov, nopLogger{})
	ctx := context.Background()

	sid := f.Begin(member)
	sess, err := f.SubmitForm(ctx, sid, member, "1.5b", "")
	require.NoError(t, err)
	assert.Equal(t, PhaseCondition, sess.Phase)
	assert.Equal(t, int64(1_500_000_000), sess.Amount)

	ticket, err := f.SelectCondition(ctx, sid, testGuild, member, "ASAP")
	require.NoError(t, err)
	assert.Equal(t, "chan-1", ticket.ID)

	require.Len(t, prov.calls, 1)
	assert.Equal(t, int64(1_500_000_000), prov.calls[0].Amount)
	assert.Equal(t, testGuild, prov.calls[0].GuildID, "guild taken from the selection")
	assert.Equal(t, entity.ConditionASAP, prov.calls[0].Condition)
	assert.Equal(t, "", prov.calls[0].Comment)
	assert.Equal(t, 0, f.Pending(), "session consumed")
}

func TestFlow_InvalidAmountDoesNotAdvance(t *testing.T) {
	f := NewFlow(Config{}, &mockProvisioner{}, nopLogger{})
	ctx := context.Background()
	sid := f.Begin(member)

	tests := []struct {
		input string
		want  error
	}{
		{"abc", entity.ErrInvalidFormat},
		{"-5", entity.ErrInvalidFormat},
		{"0", entity.ErrNonPositiveAmount},
		{strings.Repeat("1", entity.MaxAmountInputLength+1), entity.ErrInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := f.SubmitForm(ctx, sid, member, tt.input, "")
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}

	_, err := f.SelectCondition(ctx, sid, testGuild, member, "ASAP")
	assert.True(t, errors.Is(err, ErrPromptExpired), "phase two is not reachable")

	_, err = f.SubmitForm(ctx, sid, member, "10k", "")
	assert.NoError(t, err, "a corrected amount still works")
}

func TestFlow_SelectionScopedToSubmitter(t *testing.T) {
	prov := &mockProvisioner{}
	f := NewFlow(Config{}, prov, nopLogger{})
	ctx := context.Background()

	sid := f.Begin(member)
	_, err := f.SubmitForm(ctx, sid, member, "10k", "please")
	require.NoError(t, err)

	_, err = f.SelectCondition(ctx, sid, testGuild, other, "ASAP")
	assert.True(t, errors.Is(err, ErrNotYourPrompt))
	assert.Empty(t, prov.calls)

	ticket, err := f.SelectCondition(ctx, sid, testGuild, member, "flying")
	require.NoError(t, err)
	assert.Equal(t, entity.ConditionFlying, ticket.Request.Condition)
	assert.Equal(t, "please", ticket.Request.Comment)
}

func TestFlow_FormScopedToOpener(t *testing.T) {
	f := NewFlow(Config{}, &mockProvisioner{}, nopLogger{})
	sid := f.Begin(member)

	_, err := f.SubmitForm(context.Background(), sid, other, "10k", "")
	assert.True(t, errors.Is(err, ErrNotYourPrompt))
}

func TestFlow_ExpiredPrompt(t *testing.T) {
	f := NewFlow(Config{PromptTimeout: time.Minute}, &mockProvisioner{}, nopLogger{})
	clock := &fakeClock{t: time.Now()}
	f.sessions.now = clock.now
	ctx := context.Background()

	sid := f.Begin(member)
	_, err := f.SubmitForm(ctx, sid, member, "10k", "")
	require.NoError(t, err)

	clock.advance(2 * time.Minute)
	_, err = f.SelectCondition(ctx, sid, testGuild, member, "ASAP")
	assert.True(t, errors.Is(err, ErrPromptExpired))

	_, err = f.SubmitForm(ctx, "missing", member, "10k", "")
	assert.True(t, errors.Is(err, ErrPromptExpired))
}

func TestFlow_SelectionIsSingleUse(t *testing.T) {
	prov := &mockProvisioner{}
	f := NewFlow(Config{}, prov, nopLogger{})
	ctx := context.Background()

	sid := f.Begin(member)
	_, err := f.SubmitForm(ctx, sid, member, "10k", "")
	require.NoError(t, err)

	_, err = f.SelectCondition(ctx, sid, testGuild, member, "ASAP")
	require.NoError(t, err)
	_, err = f.SelectCondition(ctx, sid, testGuild, member, "ASAP")
	assert.True(t, errors.Is(err, ErrPromptExpired))
	assert.Len(t, prov.calls, 1)
}

func TestFlow_UnknownConditionKeepsPrompt(t *testing.T) {
	prov := &mockProvisioner{}
	f := NewFlow(Config{}, prov, nopLogger{})
	ctx := context.Background()

	sid := f.Begin(member)
	_, err := f.SubmitForm(ctx, sid, member, "10k", "")
	require.NoError(t, err)

	_, err = f.SelectCondition(ctx, sid, testGuild, member, "tomorrow")
	require.Error(t, err)
	_, err = f.SelectCondition(ctx, sid, testGuild, member, "online")
	assert.NoError(t, err)
}

func TestFlow_ProvisioningFailureSurfaces(t *testing.T) {
	boom := errors.New("category unresolvable")
	prov := &mockProvisioner{provisionFunc: func(ctx context.Context, req *entity.FundingRequest) (*entity.Ticket, error) {
		return nil, boom
	}}
	f := NewFlow(Config{}, prov, nopLogger{})
	ctx := context.Background()

	sid := f.Begin(member)
	_, err := f.SubmitForm(ctx, sid, member, "10k", "")
	require.NoError(t, err)

	_, err = f.SelectCondition(ctx, sid, testGuild, member, "ASAP")
	assert.True(t, errors.Is(err, boom))
}

type mockGateway struct {
	posted map[string][]port.OutgoingMessage
}

func (m *mockGateway) Post(ctx context.Context, channelID string, msg port.OutgoingMessage) (*port.Message, error) {
	if m.posted == nil {
		m.posted = map[string][]port.OutgoingMessage{}
	}
	m.posted[channelID] = append(m.posted[channelID], msg)
	return &port.Message{ID: "m1", ChannelID: channelID}, nil
}

func (m *mockGateway) Edit(ctx context.Context, channelID, messageID string, edit port.MessageEdit) error {
	return nil
}

func (m *mockGateway) History(ctx context.Context, channelID string) ([]port.Message, error) {
	return nil, nil
}

func (m *mockGateway) SendDirect(ctx context.Context, userID string, msg port.OutgoingMessage) error {
	return nil
}

func TestPanel(t *testing.T) {
	gw := &mockGateway{}
	button := port.Button{CustomID: "bank:open", Label: "Open Bank Ticket", Style: port.ButtonPrimary}
	p := NewPanel(access.NewPolicy([]string{"r-bank"}, nil), gw, button)

	err := p.Post(context.Background(), other, "general")
	assert.True(t, errors.Is(err, access.ErrForbidden))
	assert.Empty(t, gw.posted)

	approver := entity.Member{ID: "u-a", RoleIDs: []string{"r-bank"}}
	require.NoError(t, p.Post(context.Background(), approver, "general"))
	require.Len(t, gw.posted["general"], 1)

	msg := gw.posted["general"][0]
	assert.Equal(t, []port.Button{button}, msg.Buttons)
	require.Len(t, msg.Embeds, 1)
	assert.Equal(t, "💸 Faction Bank Requests", msg.Embeds[0].Title)
	assert.Contains(t, msg.Embeds[0].Description, "ASAP, Only if I am online, Only if I am in Hospital, Only if I am Flying.")
}

func TestConditionMenu(t *testing.T) {
	menu := ConditionMenu("bank:cond:abc")
	require.Len(t, menu.Options, 4)
	assert.Equal(t, "ASAP", menu.Options[0].Value)
	assert.Equal(t, "Send as soon as approved", menu.Options[0].Description)
	assert.Equal(t, "hospital", menu.Options[2].Value)
	assert.Equal(t, "Only if I am in Hospital", menu.Options[2].Label)
}
