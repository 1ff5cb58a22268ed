package discord

import "encoding/json"

// events.go contains the state event payloads consumed from the host
// application's event pipeline.

// State event types.
const (
	EventGuildCreate       = "GUILD_CREATE"
	EventGuildUpdate       = "GUILD_UPDATE"
	EventGuildDelete       = "GUILD_DELETE"
	EventGuildRoleCreate   = "GUILD_ROLE_CREATE"
	EventGuildRoleUpdate   = "GUILD_ROLE_UPDATE"
	EventGuildRoleDelete   = "GUILD_ROLE_DELETE"
	EventGuildMemberAdd    = "GUILD_MEMBER_ADD"
	EventGuildMemberUpdate = "GUILD_MEMBER_UPDATE"
	EventGuildMemberRemove = "GUILD_MEMBER_REMOVE"
	EventGuildMembersChunk = "GUILD_MEMBERS_CHUNK"
	EventUserUpdate        = "USER_UPDATE"
)

// StatePayload is the envelope for a single state event.
type StatePayload struct {
	Type string          `json:"t"`
	Data json.RawMessage `json:"d"`
}

type GuildCreate Guild

type GuildUpdate Guild

type GuildDelete struct {
	ID GuildID `json:"id"`
}

type GuildRoleCreate struct {
	GuildID GuildID `json:"guild_id"`
	Role    Role    `json:"role"`
}

type GuildRoleUpdate GuildRoleCreate

type GuildRoleDelete struct {
	GuildID GuildID `json:"guild_id"`
	RoleID  RoleID  `json:"role_id"`
}

type GuildMemberAdd struct {
	Member
	GuildID GuildID `json:"guild_id"`
}

type GuildMemberUpdate GuildMemberAdd

type GuildMemberRemove struct {
	GuildID GuildID `json:"guild_id"`
	User    User    `json:"user"`
}

type GuildMembersChunk struct {
	GuildID    GuildID  `json:"guild_id"`
	Members    []Member `json:"members"`
	ChunkIndex int32    `json:"chunk_index"`
	ChunkCount int32    `json:"chunk_count"`
}

type UserUpdate User
