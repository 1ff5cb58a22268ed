package discord

// member.go contains all structures that represent a guild member.

// Member represents the guild-scoped association between a user and a
// guild. User may be nil when the member arrived without its identity
// profile attached.
type Member struct {
	User     *User    `json:"user,omitempty"`
	GuildID  *GuildID `json:"guild_id,omitempty"`
	Nick     *string  `json:"nick,omitempty"`
	Roles    []RoleID `json:"roles"`
	JoinedAt string   `json:"joined_at,omitempty"`
	Pending  *bool    `json:"pending,omitempty"`
}

// HasRole reports whether the member's role set contains roleID.
func (m Member) HasRole(roleID RoleID) bool {
	for _, id := range m.Roles {
		if id == roleID {
			return true
		}
	}

	return false
}
