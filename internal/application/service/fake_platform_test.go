package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/entity"
)

var (
	errFake         = errors.New("platform refused")
	errUnknownGuild = errors.New("unknown guild")
)

// fakePlatform is an in-memory guild
type fakePlatform struct {
	mu sync.Mutex

	self        string
	guildID     string
	channels    map[string]*port.Channel
	messages    map[string][]port.Message
	posted      map[string][]port.OutgoingMessage
	dms         map[string][]port.OutgoingMessage
	roles       []port.Role
	roleMembers map[string][]entity.Member
	nextID      int
	clock       time.Time

	failCreateCategory bool
	failListChannels   bool
	failCreateChannel  bool
	failDelete         bool
	failEdit           bool
	failHistory        bool
	failPostAll        bool
	failPost           map[string]bool
	failDM             map[string]bool
	deleted            []string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		self:        "bot",
		guildID:     "guild",
		channels:    make(map[string]*port.Channel),
		messages:    make(map[string][]port.Message),
		posted:      make(map[string][]port.OutgoingMessage),
		dms:         make(map[string][]port.OutgoingMessage),
		roleMembers: make(map[string][]entity.Member),
		failPost:    make(map[string]bool),
		failDM:      make(map[string]bool),
		clock:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (f *fakePlatform) id() string {
	f.nextID++
	return fmt.Sprintf("%d", 1000+f.nextID)
}

func (f *fakePlatform) addCategory(name string) string {
	return f.addCategoryIn(f.guildID, name)
}

func (f *fakePlatform) addCategoryIn(guildID, name string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.id()
	f.channels[id] = &port.Channel{ID: id, GuildID: guildID, Name: name, Kind: port.ChannelKindCategory}
	return id
}

func (f *fakePlatform) addTextChannel(name, parentID string, overwrites []port.PermissionOverwrite) string {
	return f.addTextChannelIn(f.guildID, name, parentID, overwrites)
}

func (f *fakePlatform) addTextChannelIn(guildID, name, parentID string, overwrites []port.PermissionOverwrite) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.id()
	f.channels[id] = &port.Channel{ID: id, GuildID: guildID, Name: name, ParentID: parentID, Kind: port.ChannelKindText, Overwrites: overwrites}
	return id
}

func (f *fakePlatform) addRole(id string, members ...entity.Member) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.roles = append(f.roles, port.Role{ID: id, Name: "role-" + id})
	f.roleMembers[id] = append(f.roleMembers[id], members...)
}

// say appends a user message to a channel
func (f *fakePlatform) say(channelID, authorID, authorName, content string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.clock = f.clock.Add(time.Minute)
	f.messages[channelID] = append(f.messages[channelID], port.Message{
		ID: f.id(), ChannelID: channelID, AuthorID: authorID, AuthorName: authorName, Content: content, Timestamp: f.clock,
	})
}

func (f *fakePlatform) channel(id string) (port.Channel, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[id]
	if !ok {
		return port.Channel{}, false
	}
	return *ch, true
}

func (f *fakePlatform) channelMessages(id string) []port.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]port.Message(nil), f.messages[id]...)
}

func (f *fakePlatform) postedTo(id string) []port.OutgoingMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]port.OutgoingMessage(nil), f.posted[id]...)
}

func (f *fakePlatform) directMessages(userID string) []port.OutgoingMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]port.OutgoingMessage(nil), f.dms[userID]...)
}

func (f *fakePlatform) textChannels() []port.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []port.Channel
	for _, ch := range f.channels {
		if ch.Kind == port.ChannelKindText {
			out = append(out, *ch)
		}
	}
	return out
}

func (f *fakePlatform) categories() []port.Channel {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []port.Channel
	for _, ch := range f.channels {
		if ch.Kind == port.ChannelKindCategory {
			out = append(out, *ch)
		}
	}
	return out
}

func (f *fakePlatform) SelfID() string { return f.self }

func (f *fakePlatform) Channel(ctx context.Context, channelID string) (*port.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	cp := *ch
	cp.Overwrites = append([]port.PermissionOverwrite(nil), ch.Overwrites...)
	return &cp, nil
}

func (f *fakePlatform) GuildChannels(ctx context.Context, guildID string) ([]port.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failListChannels {
		return nil, errFake
	}
	out := make([]port.Channel, 0, len(f.channels))
	for _, ch := range f.channels {
		if ch.GuildID == guildID {
			out = append(out, *ch)
		}
	}
	return out, nil
}

func (f *fakePlatform) Roles(ctx context.Context, guildID string) ([]port.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]port.Role(nil), f.roles...), nil
}

func (f *fakePlatform) RoleMembers(ctx context.Context, guildID, roleID string) ([]entity.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]entity.Member(nil), f.roleMembers[roleID]...), nil
}

func (f *fakePlatform) CreateCategory(ctx context.Context, guildID, name string) (*port.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateCategory {
		return nil, errFake
	}
	if guildID == "" {
		return nil, errUnknownGuild
	}
	id := f.id()
	ch := &port.Channel{ID: id, GuildID: guildID, Name: name, Kind: port.ChannelKindCategory}
	f.channels[id] = ch
	cp := *ch
	return &cp, nil
}

func (f *fakePlatform) CreateTextChannel(ctx context.Context, guildID string, spec port.ChannelSpec) (*port.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreateChannel {
		return nil, errFake
	}
	if guildID == "" {
		return nil, errUnknownGuild
	}
	id := f.id()
	ch := &port.Channel{
		ID: id, GuildID: guildID, Name: spec.Name, ParentID: spec.ParentID,
		Kind: port.ChannelKindText, Overwrites: append([]port.PermissionOverwrite(nil), spec.Overwrites...),
	}
	f.channels[id] = ch
	cp := *ch
	return &cp, nil
}

func (f *fakePlatform) EditChannel(ctx context.Context, channelID string, edit port.ChannelEdit) (*port.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failEdit {
		return nil, errFake
	}
	ch, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	if edit.Name != "" {
		ch.Name = edit.Name
	}
	if edit.Overwrites != nil {
		ch.Overwrites = append([]port.PermissionOverwrite(nil), edit.Overwrites...)
	}
	cp := *ch
	return &cp, nil
}

func (f *fakePlatform) DeleteChannel(ctx context.Context, channelID, reason string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDelete {
		return errFake
	}
	if _, ok := f.channels[channelID]; !ok {
		return fmt.Errorf("unknown channel %s", channelID)
	}
	delete(f.channels, channelID)
	delete(f.messages, channelID)
	f.deleted = append(f.deleted, channelID)
	return nil
}

func (f *fakePlatform) Post(ctx context.Context, channelID string, msg port.OutgoingMessage) (*port.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPostAll || f.failPost[channelID] {
		return nil, errFake
	}
	if _, ok := f.channels[channelID]; !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	f.clock = f.clock.Add(time.Minute)
	m := port.Message{
		ID: f.id(), ChannelID: channelID, AuthorID: f.self, AuthorName: "Bank Bot",
		Content: msg.Content, Timestamp: f.clock, Embeds: append([]port.Embed(nil), msg.Embeds...),
	}
	f.messages[channelID] = append(f.messages[channelID], m)
	f.posted[channelID] = append(f.posted[channelID], msg)
	return &m, nil
}

func (f *fakePlatform) Edit(ctx context.Context, channelID, messageID string, edit port.MessageEdit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := f.messages[channelID]
	for i := range msgs {
		if msgs[i].ID == messageID {
			msgs[i].Content = edit.Content
			msgs[i].Embeds = append([]port.Embed(nil), edit.Embeds...)
			return nil
		}
	}
	return fmt.Errorf("unknown message %s", messageID)
}

func (f *fakePlatform) History(ctx context.Context, channelID string) ([]port.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failHistory {
		return nil, errFake
	}
	return append([]port.Message(nil), f.messages[channelID]...), nil
}

func (f *fakePlatform) SendDirect(ctx context.Context, userID string, msg port.OutgoingMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDM[userID] {
		return errFake
	}
	f.dms[userID] = append(f.dms[userID], msg)
	return nil
}

var _ port.ChatPlatform = (*fakePlatform)(nil)

type testLogger struct {
	mu    sync.Mutex
	warns []string
	errs  []string
}

func (l *testLogger) Info(msg string, keysAndValues ...interface{}) {}

func (l *testLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func (l *testLogger) Error(msg string, keysAndValues ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errs = append(l.errs, msg)
}
