package internal

import (
	"sort"
	"time"

	"github.com/roleboard/roleboard/discord"
)

// GuildState stores the daemon's view of every guild fed to it by the
// host's event pipeline. It is the cache snapshot the roster core reads;
// entries are only ever created or updated by state events, never by
// queries.
type GuildState struct {
	Guilds Cache[discord.GuildID, discord.Guild]

	GuildRoles DoubleCache[discord.GuildID, discord.RoleID, discord.Role]

	GuildMembers DoubleCache[discord.GuildID, discord.UserID, discord.Member]

	Users Cache[discord.UserID, StateUser]
}

// StateUser wraps a cached user with the time it was last written.
type StateUser struct {
	LastUpdated time.Time `json:"__roleboard_last_updated,omitempty"`
	discord.User
}

func NewGuildState() *GuildState {
	return &GuildState{
		Guilds: NewCache[discord.GuildID, discord.Guild](100),

		GuildRoles: NewDoubleCache[discord.GuildID, discord.RoleID, discord.Role](0, 50),

		GuildMembers: NewDoubleCache[discord.GuildID, discord.UserID, discord.Member](0, 50),

		Users: NewCache[discord.UserID, StateUser](100),
	}
}

//
// Guild Operations
//

// GetGuild returns the guild with the same ID from the cache.
// Returns a boolean to signify a match or not.
func (gs *GuildState) GetGuild(guildID discord.GuildID) (guild discord.Guild, ok bool) {
	return gs.Guilds.Load(guildID)
}

// SetGuild creates or updates a guild entry in the cache. Roles and
// members carried on the payload are split into their own caches and
// cleared from the stored guild to avoid duplicating the data.
func (gs *GuildState) SetGuild(guild discord.Guild) {
	for _, role := range guild.Roles {
		gs.SetGuildRole(guild.ID, role)
	}

	for _, member := range guild.Members {
		gs.SetGuildMember(guild.ID, member)
	}

	guild.Roles = nil
	guild.Members = nil

	gs.Guilds.Store(guild.ID, guild)
}

// RemoveGuild removes a guild and everything cached under it.
func (gs *GuildState) RemoveGuild(guildID discord.GuildID) {
	gs.Guilds.Delete(guildID)
	gs.GuildRoles.ClearKey(guildID)
	gs.GuildMembers.ClearKey(guildID)
}

//
// Role Operations
//

// GetGuildRole returns the role with the same ID from the cache.
// Returns a boolean to signify a match or not.
func (gs *GuildState) GetGuildRole(guildID discord.GuildID, roleID discord.RoleID) (role discord.Role, ok bool) {
	return gs.GuildRoles.Load(guildID, roleID)
}

// SetGuildRole creates or updates a role entry in the cache.
func (gs *GuildState) SetGuildRole(guildID discord.GuildID, role discord.Role) {
	if role.GuildID == nil {
		role.GuildID = &guildID
	}

	gs.GuildRoles.Store(guildID, role.ID, role)
}

// RemoveGuildRole removes a role from the cache.
func (gs *GuildState) RemoveGuildRole(guildID discord.GuildID, roleID discord.RoleID) {
	gs.GuildRoles.Delete(guildID, roleID)
}

// GetSortedRoles returns all roles of a guild ordered by their relative
// sort order, highest position first. An unknown guild yields an empty
// list, never an error.
func (gs *GuildState) GetSortedRoles(guildID discord.GuildID) []discord.Role {
	guildRoles, ok := gs.GuildRoles.Inner(guildID)

	if !ok {
		return []discord.Role{}
	}

	roles := make([]discord.Role, 0, guildRoles.Count())

	guildRoles.Range(func(id discord.RoleID, role discord.Role) bool {
		if role.ID.IsNil() {
			role.ID = id
		}

		roles = append(roles, role)
		return false
	})

	sort.SliceStable(roles, func(i, j int) bool {
		if roles[i].Position != roles[j].Position {
			return roles[i].Position > roles[j].Position
		}

		return roles[i].ID < roles[j].ID
	})

	return roles
}

//
// Member Operations
//

// GetMember returns the guild member with the same ID from the cache,
// with the user field populated from the user cache when present.
// Returns a boolean to signify a match or not.
func (gs *GuildState) GetMember(guildID discord.GuildID, userID discord.UserID) (member discord.Member, ok bool) {
	member, ok = gs.GuildMembers.Load(guildID, userID)

	if !ok {
		return
	}

	user, userOk := gs.GetUser(userID)
	if userOk {
		member.User = &user
	}

	return
}

// SetGuildMember creates or updates a guild member entry in the cache.
// The user carried on the member is stored in the user cache.
func (gs *GuildState) SetGuildMember(guildID discord.GuildID, member discord.Member) {
	if member.User == nil {
		return
	}

	userID := member.User.ID

	gs.SetUser(*member.User)

	// The user lives in its own cache. Keep the member entry light.
	member.User = nil
	member.GuildID = &guildID

	gs.GuildMembers.Store(guildID, userID, member)
}

// RemoveGuildMember removes a guild member from the cache.
func (gs *GuildState) RemoveGuildMember(guildID discord.GuildID, userID discord.UserID) {
	gs.GuildMembers.Delete(guildID, userID)
}

// GetMemberIDs returns the IDs of every member currently cached for the
// guild, in cache iteration order. This is not guaranteed to be the
// complete roster; the upstream cache may be partial.
func (gs *GuildState) GetMemberIDs(guildID discord.GuildID) []discord.UserID {
	guildMembers, ok := gs.GuildMembers.Inner(guildID)

	if !ok {
		return []discord.UserID{}
	}

	return guildMembers.Keys()
}

// MemberCount returns the number of members currently cached for a guild.
func (gs *GuildState) MemberCount(guildID discord.GuildID) int {
	return gs.GuildMembers.Count(guildID)
}

//
// User Operations
//

// GetUser returns the user with the same ID from the cache.
// Returns a boolean to signify a match or not.
func (gs *GuildState) GetUser(userID discord.UserID) (user discord.User, ok bool) {
	stateUser, ok := gs.Users.Load(userID)

	if !ok {
		return
	}

	user = stateUser.User

	return
}

// SetUser creates or updates a user entry in the cache.
func (gs *GuildState) SetUser(user discord.User) {
	gs.Users.Store(user.ID, StateUser{
		LastUpdated: time.Now(),
		User:        user,
	})
}

// RemoveUser removes a user from the cache.
func (gs *GuildState) RemoveUser(userID discord.UserID) {
	gs.Users.Delete(userID)
}
