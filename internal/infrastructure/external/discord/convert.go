package discord

import (
	"bytes"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/garyjia/faction-bank/internal/application/port"
	"github.com/garyjia/faction-bank/internal/domain/entity"
)

var permissionBits = []struct {
	port    port.Permission
	discord int64
}{
	{port.PermView, discordgo.PermissionViewChannel},
	{port.PermSend, discordgo.PermissionSendMessages},
	{port.PermAttach, discordgo.PermissionAttachFiles},
	{port.PermReadHistory, discordgo.PermissionReadMessageHistory},
	{port.PermManageChannel, discordgo.PermissionManageChannels},
	{port.PermManageMessages, discordgo.PermissionManageMessages},
	{port.PermAddReactions, discordgo.PermissionAddReactions},
}

func toPermissions(p port.Permission) int64 {
	var out int64
	for _, b := range permissionBits {
		if p.Has(b.port) {
			out |= b.discord
		}
	}
	return out
}

// fromPermissions drops Discord bits that have no neutral counterpart
func fromPermissions(bits int64) port.Permission {
	var out port.Permission
	for _, b := range permissionBits {
		if bits&b.discord == b.discord {
			out |= b.port
		}
	}
	return out
}

func toOverwrites(in []port.PermissionOverwrite) []*discordgo.PermissionOverwrite {
	out := make([]*discordgo.PermissionOverwrite, 0, len(in))
	for _, ow := range in {
		kind := discordgo.PermissionOverwriteTypeRole
		if ow.Target == port.TargetMember {
			kind = discordgo.PermissionOverwriteTypeMember
		}
		out = append(out, &discordgo.PermissionOverwrite{
			ID:    ow.TargetID,
			Type:  kind,
			Allow: toPermissions(ow.Allow),
			Deny:  toPermissions(ow.Deny),
		})
	}
	return out
}

func fromOverwrites(in []*discordgo.PermissionOverwrite) []port.PermissionOverwrite {
	out := make([]port.PermissionOverwrite, 0, len(in))
	for _, ow := range in {
		if ow == nil {
			continue
		}
		target := port.TargetRole
		if ow.Type == discordgo.PermissionOverwriteTypeMember {
			target = port.TargetMember
		}
		out = append(out, port.PermissionOverwrite{
			TargetID: ow.ID,
			Target:   target,
			Allow:    fromPermissions(ow.Allow),
			Deny:     fromPermissions(ow.Deny),
		})
	}
	return out
}

func fromChannel(c *discordgo.Channel) *port.Channel {
	kind := port.ChannelKindOther
	switch c.Type {
	case discordgo.ChannelTypeGuildText:
		kind = port.ChannelKindText
	case discordgo.ChannelTypeGuildCategory:
		kind = port.ChannelKindCategory
	}
	return &port.Channel{
		ID:         c.ID,
		GuildID:    c.GuildID,
		Name:       c.Name,
		ParentID:   c.ParentID,
		Kind:       kind,
		Overwrites: fromOverwrites(c.PermissionOverwrites),
	}
}

func toEmbeds(in []port.Embed) []*discordgo.MessageEmbed {
	out := make([]*discordgo.MessageEmbed, 0, len(in))
	for _, e := range in {
		embed := &discordgo.MessageEmbed{
			Title:       e.Title,
			Description: e.Description,
			Color:       e.Color,
		}
		for _, f := range e.Fields {
			embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
				Name:   f.Name,
				Value:  f.Value,
				Inline: f.Inline,
			})
		}
		if e.Footer != "" {
			embed.Footer = &discordgo.MessageEmbedFooter{Text: e.Footer}
		}
		if !e.Timestamp.IsZero() {
			embed.Timestamp = e.Timestamp.UTC().Format(time.RFC3339)
		}
		out = append(out, embed)
	}
	return out
}

func fromEmbeds(in []*discordgo.MessageEmbed) []port.Embed {
	out := make([]port.Embed, 0, len(in))
	for _, e := range in {
		if e == nil {
			continue
		}
		embed := port.Embed{Title: e.Title, Description: e.Description, Color: e.Color}
		for _, f := range e.Fields {
			embed.Fields = append(embed.Fields, port.EmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
		}
		if e.Footer != nil {
			embed.Footer = e.Footer.Text
		}
		if ts, err := time.Parse(time.RFC3339, e.Timestamp); err == nil {
			embed.Timestamp = ts
		}
		out = append(out, embed)
	}
	return out
}

var buttonStyles = map[port.ButtonStyle]discordgo.ButtonStyle{
	port.ButtonPrimary:   discordgo.PrimaryButton,
	port.ButtonSecondary: discordgo.SecondaryButton,
	port.ButtonSuccess:   discordgo.SuccessButton,
	port.ButtonDanger:    discordgo.DangerButton,
}

// Components lays buttons out in one row and the select menu in its own row
func Components(buttons []port.Button, menu *port.SelectMenu) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	if len(buttons) > 0 {
		row := discordgo.ActionsRow{}
		for _, b := range buttons {
			style, ok := buttonStyles[b.Style]
			if !ok {
				style = discordgo.PrimaryButton
			}
			row.Components = append(row.Components, discordgo.Button{
				Label:    b.Label,
				Style:    style,
				CustomID: b.CustomID,
			})
		}
		rows = append(rows, row)
	}
	if menu != nil {
		options := make([]discordgo.SelectMenuOption, 0, len(menu.Options))
		for _, o := range menu.Options {
			options = append(options, discordgo.SelectMenuOption{
				Label:       o.Label,
				Value:       o.Value,
				Description: o.Description,
			})
		}
		one := 1
		rows = append(rows, discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				MenuType:    discordgo.StringSelectMenu,
				CustomID:    menu.CustomID,
				Placeholder: menu.Placeholder,
				MinValues:   &one,
				MaxValues:   1,
				Options:     options,
			},
		}})
	}
	return rows
}

// toAllowedMentions pings only the listed roles
func toAllowedMentions(roleIDs []string) *discordgo.MessageAllowedMentions {
	return &discordgo.MessageAllowedMentions{
		Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		Roles: roleIDs,
	}
}

// Files converts uploads for a message or interaction response
func Files(in []port.FileAttachment) []*discordgo.File {
	out := make([]*discordgo.File, 0, len(in))
	for _, f := range in {
		out = append(out, &discordgo.File{
			Name:        f.Name,
			ContentType: f.ContentType,
			Reader:      bytes.NewReader(f.Data),
		})
	}
	return out
}

// SummaryOf returns the first embed of a message, or nil
func SummaryOf(m *discordgo.Message) *port.Embed {
	if m == nil {
		return nil
	}
	embeds := fromEmbeds(m.Embeds)
	if len(embeds) == 0 {
		return nil
	}
	return &embeds[0]
}

func fromMessage(m *discordgo.Message) port.Message {
	msg := port.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		Content:   m.Content,
		Timestamp: m.Timestamp,
		Embeds:    fromEmbeds(m.Embeds),
	}
	if m.Author != nil {
		msg.AuthorID = m.Author.ID
		msg.AuthorName = m.Author.Username
		if m.Author.GlobalName != "" {
			msg.AuthorName = m.Author.GlobalName
		}
	}
	for _, a := range m.Attachments {
		if a == nil {
			continue
		}
		msg.Attachments = append(msg.Attachments, entity.AttachmentRef{Filename: a.Filename, URL: a.URL})
	}
	return msg
}

// FromMember converts an interaction member into the actor seen by access checks
func FromMember(m *discordgo.Member) entity.Member {
	if m == nil {
		return entity.Member{}
	}
	member := entity.Member{
		DisplayName:   m.Nick,
		Administrator: m.Permissions&discordgo.PermissionAdministrator != 0,
		RoleIDs:       append([]string(nil), m.Roles...),
	}
	if m.User != nil {
		member.ID = m.User.ID
		member.Username = m.User.Username
		if member.DisplayName == "" {
			member.DisplayName = m.User.GlobalName
		}
	}
	return member
}
