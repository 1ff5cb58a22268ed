// Package roster resolves which members of a guild hold a given role and
// filters the resolved members by display identity. All functions are pure
// reads over a cache snapshot; recomputing on cache change is the
// caller's responsibility.
package roster

import (
	"strings"

	"github.com/roleboard/roleboard/discord"
)

// Selector identifies whose roster to resolve. The everyone role is an
// explicit case instead of the roleID==guildID convention, so the
// wildcard behaviour is visible at call sites.
type Selector struct {
	roleID   discord.RoleID
	everyone bool
}

// Everyone selects all cached members of a guild.
func Everyone() Selector {
	return Selector{everyone: true}
}

// NamedRole selects members holding a specific role.
func NamedRole(roleID discord.RoleID) Selector {
	return Selector{roleID: roleID}
}

// SelectorFor maps a raw role ID to a Selector, folding the implicit
// everyone role (ID equal to the guild ID) into the Everyone case.
func SelectorFor(guildID discord.GuildID, roleID discord.RoleID) Selector {
	if discord.Snowflake(roleID) == discord.Snowflake(guildID) {
		return Everyone()
	}

	return NamedRole(roleID)
}

func (s Selector) IsEveryone() bool {
	return s.everyone
}

// RoleID returns the selected role ID. Nil for the everyone case.
func (s Selector) RoleID() discord.RoleID {
	return s.roleID
}

// ResolveMembers returns the IDs of all cached guild members matching the
// selector, in cache iteration order. Members without a cached member
// record are skipped, not errors; a role held by nobody yields an empty
// slice. The result is always a subset of the guild's currently cached
// member IDs.
func ResolveMembers(src MemberSource, guildID discord.GuildID, selector Selector) []discord.UserID {
	memberIDs := src.GetMemberIDs(guildID)

	if selector.IsEveryone() {
		return memberIDs
	}

	matched := make([]discord.UserID, 0, len(memberIDs))

	for _, userID := range memberIDs {
		member, ok := src.GetMember(guildID, userID)
		if !ok {
			continue
		}

		if member.HasRole(selector.roleID) {
			matched = append(matched, userID)
		}
	}

	return matched
}

// MemberRecord pairs a member's account identity with its guild-scoped
// membership for display.
type MemberRecord struct {
	User   discord.User   `json:"user"`
	Member discord.Member `json:"member"`
}

// DisplayName returns the name shown for the record: the guild nickname
// when set, then the global display name, then the username.
func (r MemberRecord) DisplayName() string {
	if r.Member.Nick != nil && *r.Member.Nick != "" {
		return *r.Member.Nick
	}

	if r.User.GlobalName != nil && *r.User.GlobalName != "" {
		return *r.User.GlobalName
	}

	return r.User.Username
}

func (r MemberRecord) matches(query string) bool {
	if strings.Contains(strings.ToLower(r.User.Username), query) {
		return true
	}

	if r.User.GlobalName != nil && strings.Contains(strings.ToLower(*r.User.GlobalName), query) {
		return true
	}

	if r.Member.Nick != nil && strings.Contains(strings.ToLower(*r.Member.Nick), query) {
		return true
	}

	return false
}

// BuildRecords joins resolved member IDs against the member and user
// caches. IDs whose membership or identity profile is not cached are
// silently dropped; a partially loaded pairing is treated as missing.
func BuildRecords(members MemberSource, users UserSource, guildID discord.GuildID, userIDs []discord.UserID) []MemberRecord {
	records := make([]MemberRecord, 0, len(userIDs))

	for _, userID := range userIDs {
		member, ok := members.GetMember(guildID, userID)
		if !ok {
			continue
		}

		user, ok := users.GetUser(userID)
		if !ok {
			continue
		}

		records = append(records, MemberRecord{
			User:   user,
			Member: member,
		})
	}

	return records
}

// FilterMembers returns the records whose username, display name or guild
// nickname contains query, case-insensitively. An empty query returns
// records unchanged. Input order is preserved.
func FilterMembers(records []MemberRecord, query string) []MemberRecord {
	if query == "" {
		return records
	}

	query = strings.ToLower(query)

	filtered := make([]MemberRecord, 0, len(records))

	for _, record := range records {
		if record.matches(query) {
			filtered = append(filtered, record)
		}
	}

	return filtered
}
