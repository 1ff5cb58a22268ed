package discord

// guild.go contains the structures to represent a guild.

// Guild represents a guild (server) container.
type Guild struct {
	ID          GuildID `json:"id"`
	Name        string  `json:"name"`
	Icon        string  `json:"icon,omitempty"`
	OwnerID     *UserID `json:"owner_id,omitempty"`
	MemberCount int32   `json:"member_count,omitempty"`

	// Only populated on GUILD_CREATE payloads. Cached separately.
	Roles   []Role   `json:"roles,omitempty"`
	Members []Member `json:"members,omitempty"`
}

// EveryoneRoleID returns the ID of the guild's implicit everyone role.
func (g Guild) EveryoneRoleID() RoleID {
	return RoleID(g.ID)
}
