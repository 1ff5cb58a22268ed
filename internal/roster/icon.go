package roster

import "github.com/roleboard/roleboard/discord"

// RoleIconKind discriminates how a role's glyph should be rendered.
type RoleIconKind string

const (
	RoleIconNone  RoleIconKind = "none"
	RoleIconImage RoleIconKind = "image"
	RoleIconEmoji RoleIconKind = "emoji"
)

// RoleIcon is the resolved display glyph of a role.
type RoleIcon struct {
	Kind  RoleIconKind `json:"kind"`
	URL   string       `json:"url,omitempty"`
	Emoji string       `json:"emoji,omitempty"`
}

// ResolveRoleIcon determines a role's display glyph: a custom icon image
// wins over a unicode emoji, and a role with neither simply has no icon.
func ResolveRoleIcon(role discord.Role) RoleIcon {
	if role.Icon != "" {
		return RoleIcon{
			Kind: RoleIconImage,
			URL:  role.IconURL(),
		}
	}

	if role.UnicodeEmoji != "" {
		return RoleIcon{
			Kind:  RoleIconEmoji,
			Emoji: role.UnicodeEmoji,
		}
	}

	return RoleIcon{Kind: RoleIconNone}
}
