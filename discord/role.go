package discord

// role.go represents all structures for a guild role.

// Role represents a role on a guild. The role whose ID equals the guild ID
// is the implicit everyone role.
type Role struct {
	ID           RoleID   `json:"id"`
	GuildID      *GuildID `json:"guild_id,omitempty"`
	Name         string   `json:"name"`
	Color        int32    `json:"color"`
	Hoist        bool     `json:"hoist"`
	Icon         string   `json:"icon,omitempty"`
	UnicodeEmoji string   `json:"unicode_emoji,omitempty"`
	Position     int32    `json:"position"`
	Managed      bool     `json:"managed"`
	Mentionable  bool     `json:"mentionable"`
}

// IconURL returns the CDN URL of the role's custom icon, or an empty string
// when the role has none.
func (r Role) IconURL() string {
	if r.Icon == "" {
		return ""
	}

	return cdnBaseURL + "/role-icons/" + r.ID.String() + "/" + r.Icon + ".png"
}
