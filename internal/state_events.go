package internal

import (
	"fmt"

	"github.com/roleboard/roleboard/discord"
	"github.com/roleboard/roleboard/pkg/jsonutil"
)

// ChangeKind says which slice of a guild's cached state moved.
type ChangeKind string

const (
	ChangeGuild   ChangeKind = "guild"
	ChangeRoles   ChangeKind = "roles"
	ChangeMembers ChangeKind = "members"
	ChangeUsers   ChangeKind = "users"
)

// StateChange is broadcast after a state event has been applied. A nil
// guild ID means the change is not scoped to one guild (user updates).
type StateChange struct {
	GuildID discord.GuildID `json:"guild_id"`
	Kind    ChangeKind      `json:"kind"`
}

// Affects reports whether a session for guildID should recompute.
func (c StateChange) Affects(guildID discord.GuildID) bool {
	return c.GuildID == guildID || c.GuildID.IsNil()
}

func init() {
	registerDispatch(discord.EventGuildCreate, OnGuildCreate)
	registerDispatch(discord.EventGuildUpdate, OnGuildUpdate)
	registerDispatch(discord.EventGuildDelete, OnGuildDelete)
	registerDispatch(discord.EventGuildRoleCreate, OnGuildRoleCreate)
	registerDispatch(discord.EventGuildRoleUpdate, OnGuildRoleUpdate)
	registerDispatch(discord.EventGuildRoleDelete, OnGuildRoleDelete)
	registerDispatch(discord.EventGuildMemberAdd, OnGuildMemberAdd)
	registerDispatch(discord.EventGuildMemberUpdate, OnGuildMemberUpdate)
	registerDispatch(discord.EventGuildMemberRemove, OnGuildMemberRemove)
	registerDispatch(discord.EventGuildMembersChunk, OnGuildMembersChunk)
	registerDispatch(discord.EventUserUpdate, OnUserUpdate)
}

func OnGuildCreate(rb *Roleboard, payload discord.StatePayload) error {
	var guildCreate discord.GuildCreate

	if err := jsonutil.Unmarshal(payload.Data, &guildCreate); err != nil {
		return fmt.Errorf("guild create unmarshal: %w", err)
	}

	rb.State.SetGuild(discord.Guild(guildCreate))

	rb.notifyChange(guildCreate.ID, ChangeGuild)
	rb.notifyChange(guildCreate.ID, ChangeRoles)
	rb.notifyChange(guildCreate.ID, ChangeMembers)

	return nil
}

func OnGuildUpdate(rb *Roleboard, payload discord.StatePayload) error {
	var guildUpdate discord.GuildUpdate

	if err := jsonutil.Unmarshal(payload.Data, &guildUpdate); err != nil {
		return fmt.Errorf("guild update unmarshal: %w", err)
	}

	rb.State.SetGuild(discord.Guild(guildUpdate))

	rb.notifyChange(guildUpdate.ID, ChangeGuild)

	return nil
}

func OnGuildDelete(rb *Roleboard, payload discord.StatePayload) error {
	var guildDelete discord.GuildDelete

	if err := jsonutil.Unmarshal(payload.Data, &guildDelete); err != nil {
		return fmt.Errorf("guild delete unmarshal: %w", err)
	}

	rb.State.RemoveGuild(guildDelete.ID)

	rb.notifyChange(guildDelete.ID, ChangeGuild)
	rb.notifyChange(guildDelete.ID, ChangeRoles)
	rb.notifyChange(guildDelete.ID, ChangeMembers)

	return nil
}

func OnGuildRoleCreate(rb *Roleboard, payload discord.StatePayload) error {
	var guildRoleCreate discord.GuildRoleCreate

	if err := jsonutil.Unmarshal(payload.Data, &guildRoleCreate); err != nil {
		return fmt.Errorf("guild role create unmarshal: %w", err)
	}

	rb.State.SetGuildRole(guildRoleCreate.GuildID, guildRoleCreate.Role)

	rb.notifyChange(guildRoleCreate.GuildID, ChangeRoles)

	return nil
}

func OnGuildRoleUpdate(rb *Roleboard, payload discord.StatePayload) error {
	var guildRoleUpdate discord.GuildRoleUpdate

	if err := jsonutil.Unmarshal(payload.Data, &guildRoleUpdate); err != nil {
		return fmt.Errorf("guild role update unmarshal: %w", err)
	}

	rb.State.SetGuildRole(guildRoleUpdate.GuildID, guildRoleUpdate.Role)

	rb.notifyChange(guildRoleUpdate.GuildID, ChangeRoles)

	return nil
}

func OnGuildRoleDelete(rb *Roleboard, payload discord.StatePayload) error {
	var guildRoleDelete discord.GuildRoleDelete

	if err := jsonutil.Unmarshal(payload.Data, &guildRoleDelete); err != nil {
		return fmt.Errorf("guild role delete unmarshal: %w", err)
	}

	rb.State.RemoveGuildRole(guildRoleDelete.GuildID, guildRoleDelete.RoleID)

	rb.notifyChange(guildRoleDelete.GuildID, ChangeRoles)

	return nil
}

func OnGuildMemberAdd(rb *Roleboard, payload discord.StatePayload) error {
	var guildMemberAdd discord.GuildMemberAdd

	if err := jsonutil.Unmarshal(payload.Data, &guildMemberAdd); err != nil {
		return fmt.Errorf("guild member add unmarshal: %w", err)
	}

	rb.State.SetGuildMember(guildMemberAdd.GuildID, guildMemberAdd.Member)

	rb.notifyChange(guildMemberAdd.GuildID, ChangeMembers)

	return nil
}

func OnGuildMemberUpdate(rb *Roleboard, payload discord.StatePayload) error {
	var guildMemberUpdate discord.GuildMemberUpdate

	if err := jsonutil.Unmarshal(payload.Data, &guildMemberUpdate); err != nil {
		return fmt.Errorf("guild member update unmarshal: %w", err)
	}

	rb.State.SetGuildMember(guildMemberUpdate.GuildID, guildMemberUpdate.Member)

	rb.notifyChange(guildMemberUpdate.GuildID, ChangeMembers)

	return nil
}

func OnGuildMemberRemove(rb *Roleboard, payload discord.StatePayload) error {
	var guildMemberRemove discord.GuildMemberRemove

	if err := jsonutil.Unmarshal(payload.Data, &guildMemberRemove); err != nil {
		return fmt.Errorf("guild member remove unmarshal: %w", err)
	}

	rb.State.RemoveGuildMember(guildMemberRemove.GuildID, guildMemberRemove.User.ID)

	rb.notifyChange(guildMemberRemove.GuildID, ChangeMembers)

	return nil
}

func OnGuildMembersChunk(rb *Roleboard, payload discord.StatePayload) error {
	var guildMembersChunk discord.GuildMembersChunk

	if err := jsonutil.Unmarshal(payload.Data, &guildMembersChunk); err != nil {
		return fmt.Errorf("guild members chunk unmarshal: %w", err)
	}

	for _, member := range guildMembersChunk.Members {
		rb.State.SetGuildMember(guildMembersChunk.GuildID, member)
	}

	// One change signal per chunk, not per member.
	rb.notifyChange(guildMembersChunk.GuildID, ChangeMembers)

	return nil
}

func OnUserUpdate(rb *Roleboard, payload discord.StatePayload) error {
	var userUpdate discord.UserUpdate

	if err := jsonutil.Unmarshal(payload.Data, &userUpdate); err != nil {
		return fmt.Errorf("user update unmarshal: %w", err)
	}

	rb.State.SetUser(discord.User(userUpdate))

	// Not guild scoped; every open session rechecks its view.
	rb.notifyChange(0, ChangeUsers)

	return nil
}
