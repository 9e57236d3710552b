package entity

import "fmt"

// Member is an actor inside a guild as seen at the moment of an interaction
type Member struct {
	ID            string   `json:"id"`
	Username      string   `json:"username"`
	DisplayName   string   `json:"display_name"`
	Administrator bool     `json:"administrator"`
	RoleIDs       []string `json:"role_ids"`
}

// Mention returns the platform mention markup for the member
func (m Member) Mention() string {
	return fmt.Sprintf("<@%s>", m.ID)
}

// Name returns the display name, falling back to the username
func (m Member) Name() string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Username
}

// RoleMention returns mention markup for a role id
func RoleMention(roleID string) string {
	return fmt.Sprintf("<@&%s>", roleID)
}

// ChannelMention returns mention markup for a channel id
func ChannelMention(channelID string) string {
	return fmt.Sprintf("<#%s>", channelID)
}
