package port

import (
	"context"
	"time"

	"github.com/garyjia/faction-bank/internal/domain/entity"
)

// ChannelKind distinguishes workspace containers from text workspaces
type ChannelKind int

const (
	ChannelKindOther ChannelKind = iota
	ChannelKindText
	ChannelKindCategory
)

// Permission is a platform-neutral permission bit set
type Permission uint32

const (
	PermView Permission = 1 << iota
	PermSend
	PermAttach
	PermReadHistory
	PermManageChannel
	PermManageMessages
	PermAddReactions
)

// Has reports whether every bit of q is set in p
func (p Permission) Has(q Permission) bool {
	return p&q == q
}

// OverwriteTarget says whether an overwrite applies to a role or a member
type OverwriteTarget int

const (
	TargetRole OverwriteTarget = iota
	TargetMember
)

// PermissionOverwrite scopes permissions for one principal on one channel
type PermissionOverwrite struct {
	TargetID string
	Target   OverwriteTarget
	Allow    Permission
	Deny     Permission
}

// Channel is a workspace or category as seen by the platform
type Channel struct {
	ID         string
	GuildID    string
	Name       string
	ParentID   string
	Kind       ChannelKind
	Overwrites []PermissionOverwrite
}

// Role is a guild group
type Role struct {
	ID   string
	Name string
}

// ChannelSpec describes a text workspace to create
type ChannelSpec struct {
	Name       string
	ParentID   string
	Reason     string
	Overwrites []PermissionOverwrite
}

// ChannelEdit replaces the name and overwrites of an existing channel
type ChannelEdit struct {
	Name       string
	Overwrites []PermissionOverwrite
	Reason     string
}

// EmbedField is one name/value pair of a rich summary
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich summary display
type Embed struct {
	Title       string
	Description string
	Color       int
	Fields      []EmbedField
	Footer      string
	Timestamp   time.Time
}

// ButtonStyle is the visual severity of a button
type ButtonStyle int

const (
	ButtonPrimary ButtonStyle = iota
	ButtonSecondary
	ButtonSuccess
	ButtonDanger
)

// Button is an interactive control bound to a custom id
type Button struct {
	CustomID string
	Label    string
	Style    ButtonStyle
}

// SelectOption is one choice of a select menu
type SelectOption struct {
	Label       string
	Value       string
	Description string
}

// SelectMenu is a single-choice control bound to a custom id
type SelectMenu struct {
	CustomID    string
	Placeholder string
	Options     []SelectOption
}

// FileAttachment is an uploaded file
type FileAttachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// OutgoingMessage is a message to post
type OutgoingMessage struct {
	Content        string
	Embeds         []Embed
	Buttons        []Button
	Select         *SelectMenu
	Files          []FileAttachment
	MentionRoleIDs []string
}

// MessageEdit replaces the content and embeds of a posted message
type MessageEdit struct {
	Content string
	Embeds  []Embed
}

// Message is a posted message read back from the platform
type Message struct {
	ID          string
	ChannelID   string
	AuthorID    string
	AuthorName  string
	Content     string
	Timestamp   time.Time
	Attachments []entity.AttachmentRef
	Embeds      []Embed
}

// GuildDirectory resolves identities, roles and channels
type GuildDirectory interface {
	SelfID() string
	Channel(ctx context.Context, channelID string) (*Channel, error)
	GuildChannels(ctx context.Context, guildID string) ([]Channel, error)
	Roles(ctx context.Context, guildID string) ([]Role, error)
	RoleMembers(ctx context.Context, guildID, roleID string) ([]entity.Member, error)
}

// WorkspaceManager creates, edits and deletes workspaces
type WorkspaceManager interface {
	CreateCategory(ctx context.Context, guildID, name string) (*Channel, error)
	CreateTextChannel(ctx context.Context, guildID string, spec ChannelSpec) (*Channel, error)
	EditChannel(ctx context.Context, channelID string, edit ChannelEdit) (*Channel, error)
	DeleteChannel(ctx context.Context, channelID, reason string) error
}

// MessageGateway posts, edits and reads messages
type MessageGateway interface {
	Post(ctx context.Context, channelID string, msg OutgoingMessage) (*Message, error)
	Edit(ctx context.Context, channelID, messageID string, edit MessageEdit) error
	// History returns every message of the channel, oldest first
	History(ctx context.Context, channelID string) ([]Message, error)
	SendDirect(ctx context.Context, userID string, msg OutgoingMessage) error
}

// ChatPlatform is the complete chat-platform boundary
type ChatPlatform interface {
	GuildDirectory
	WorkspaceManager
	MessageGateway
}
