package roster

import "github.com/roleboard/roleboard/discord"

// The roster core reads guild state through these interfaces and never
// writes it. Implementations are expected to be cheap, in-memory and
// possibly incomplete; a result computed from them is a view of whatever
// happened to be cached at the time of the call.

type RoleSource interface {
	GetSortedRoles(guildID discord.GuildID) []discord.Role
}

type MemberSource interface {
	// GetMemberIDs returns the IDs of all currently cached members of a
	// guild, in cache iteration order.
	GetMemberIDs(guildID discord.GuildID) []discord.UserID

	GetMember(guildID discord.GuildID, userID discord.UserID) (discord.Member, bool)
}

type UserSource interface {
	GetUser(userID discord.UserID) (discord.User, bool)
}

// Snapshot is the full read-only view a roster session works against.
type Snapshot interface {
	RoleSource
	MemberSource
	UserSource
}

// ProfileOpener is invoked when a member is picked in a roster view. It is
// purely a side effect towards the surrounding UI and contributes nothing
// to computed results.
type ProfileOpener func(userID discord.UserID, guildID discord.GuildID)
