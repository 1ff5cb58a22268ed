package discord

// user.go represents all structures for a user.

const cdnBaseURL = "https://cdn.discordapp.com"

// User represents the account-level identity of a member.
type User struct {
	ID            UserID  `json:"id"`
	Username      string  `json:"username"`
	Discriminator string  `json:"discriminator,omitempty"`
	GlobalName    *string `json:"global_name,omitempty"`
	Avatar        string  `json:"avatar,omitempty"`
	Bot           bool    `json:"bot,omitempty"`
}

// AvatarURL returns the CDN URL of the user's avatar, falling back to a
// default avatar when the user has not set one.
func (u User) AvatarURL() string {
	if u.Avatar == "" {
		index := (int64(u.ID) >> 22) % 6

		return cdnBaseURL + "/embed/avatars/" + Snowflake(index).String() + ".png"
	}

	return cdnBaseURL + "/avatars/" + u.ID.String() + "/" + u.Avatar + ".png"
}
