package internal

import (
	"context"
	"testing"

	"github.com/roleboard/roleboard/discord"
	"github.com/roleboard/roleboard/pkg/broadcast"
	"github.com/roleboard/roleboard/pkg/jsonutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"
)

func newTestRoleboard(t *testing.T) *Roleboard {
	t.Helper()

	rb := &Roleboard{
		Logger:       zerolog.Nop(),
		State:        NewGuildState(),
		Changes:      broadcast.NewServer[StateChange](),
		SessionsOpen: atomic.NewInt32(0),
	}

	rb.ctx, rb.cancel = context.WithCancel(context.Background())

	t.Cleanup(func() {
		rb.cancel()
		rb.Changes.Close()
	})

	return rb
}

func statePayload(t *testing.T, eventType string, data interface{}) discord.StatePayload {
	t.Helper()

	raw, err := jsonutil.Marshal(data)
	require.NoError(t, err)

	return discord.StatePayload{
		Type: eventType,
		Data: raw,
	}
}

func TestOnGuildCreatePopulatesState(t *testing.T) {
	rb := newTestRoleboard(t)

	payload := statePayload(t, discord.EventGuildCreate, testGuildPayload())
	require.NoError(t, rb.DispatchStateEvent(payload))

	guild, ok := rb.State.GetGuild(500)
	assert.True(t, ok)
	assert.Equal(t, "Test Guild", guild.Name)

	assert.Len(t, rb.State.GetSortedRoles(500), 3)
	assert.Equal(t, 2, rb.State.MemberCount(500))

	member, ok := rb.State.GetMember(500, 1)
	assert.True(t, ok)
	assert.Equal(t, "ann", member.User.Username)
}

func TestOnGuildDeleteClearsState(t *testing.T) {
	rb := newTestRoleboard(t)

	require.NoError(t, rb.DispatchStateEvent(statePayload(t, discord.EventGuildCreate, testGuildPayload())))
	require.NoError(t, rb.DispatchStateEvent(statePayload(t, discord.EventGuildDelete, discord.GuildDelete{ID: 500})))

	_, ok := rb.State.GetGuild(500)
	assert.False(t, ok)
	assert.Equal(t, 0, rb.State.MemberCount(500))
}

func TestOnGuildRoleEvents(t *testing.T) {
	rb := newTestRoleboard(t)

	require.NoError(t, rb.DispatchStateEvent(statePayload(t, discord.EventGuildRoleCreate, discord.GuildRoleCreate{
		GuildID: 500,
		Role:    discord.Role{ID: 600, Name: "Moderators", Position: 5},
	})))

	role, ok := rb.State.GetGuildRole(500, 600)
	assert.True(t, ok)
	assert.Equal(t, "Moderators", role.Name)

	require.NoError(t, rb.DispatchStateEvent(statePayload(t, discord.EventGuildRoleUpdate, discord.GuildRoleUpdate{
		GuildID: 500,
		Role:    discord.Role{ID: 600, Name: "Admins", Position: 5},
	})))

	role, _ = rb.State.GetGuildRole(500, 600)
	assert.Equal(t, "Admins", role.Name)

	require.NoError(t, rb.DispatchStateEvent(statePayload(t, discord.EventGuildRoleDelete, discord.GuildRoleDelete{
		GuildID: 500,
		RoleID:  600,
	})))

	_, ok = rb.State.GetGuildRole(500, 600)
	assert.False(t, ok)
}

func TestOnGuildMemberEvents(t *testing.T) {
	rb := newTestRoleboard(t)

	nick := "Bobby"

	require.NoError(t, rb.DispatchStateEvent(statePayload(t, discord.EventGuildMemberAdd, discord.GuildMemberAdd{
		GuildID: 500,
		Member: discord.Member{
			User:  &discord.User{ID: 2, Username: "bob"},
			Roles: []discord.RoleID{600},
		},
	})))

	member, ok := rb.State.GetMember(500, 2)
	assert.True(t, ok)
	assert.Nil(t, member.Nick)

	require.NoError(t, rb.DispatchStateEvent(statePayload(t, discord.EventGuildMemberUpdate, discord.GuildMemberUpdate{
		GuildID: 500,
		Member: discord.Member{
			User:  &discord.User{ID: 2, Username: "bob"},
			Nick:  &nick,
			Roles: []discord.RoleID{600},
		},
	})))

	member, _ = rb.State.GetMember(500, 2)
	require.NotNil(t, member.Nick)
	assert.Equal(t, "Bobby", *member.Nick)

	require.NoError(t, rb.DispatchStateEvent(statePayload(t, discord.EventGuildMemberRemove, discord.GuildMemberRemove{
		GuildID: 500,
		User:    discord.User{ID: 2, Username: "bob"},
	})))

	_, ok = rb.State.GetMember(500, 2)
	assert.False(t, ok)
}

func TestOnGuildMembersChunk(t *testing.T) {
	rb := newTestRoleboard(t)

	require.NoError(t, rb.DispatchStateEvent(statePayload(t, discord.EventGuildMembersChunk, discord.GuildMembersChunk{
		GuildID: 500,
		Members: []discord.Member{
			{User: &discord.User{ID: 1, Username: "ann"}},
			{User: &discord.User{ID: 2, Username: "bob"}},
			{User: &discord.User{ID: 3, Username: "cat"}},
		},
		ChunkIndex: 0,
		ChunkCount: 1,
	})))

	assert.Equal(t, 3, rb.State.MemberCount(500))
}

func TestOnUserUpdateReflectsInMembers(t *testing.T) {
	rb := newTestRoleboard(t)

	require.NoError(t, rb.DispatchStateEvent(statePayload(t, discord.EventGuildMemberAdd, discord.GuildMemberAdd{
		GuildID: 500,
		Member: discord.Member{
			User: &discord.User{ID: 2, Username: "bob"},
		},
	})))

	require.NoError(t, rb.DispatchStateEvent(statePayload(t, discord.EventUserUpdate, discord.UserUpdate{
		ID:       2,
		Username: "robert",
	})))

	member, ok := rb.State.GetMember(500, 2)
	assert.True(t, ok)
	assert.Equal(t, "robert", member.User.Username)
}

func TestDispatchUnknownEventType(t *testing.T) {
	rb := newTestRoleboard(t)

	assert.NoError(t, rb.DispatchStateEvent(discord.StatePayload{
		Type: "PRESENCE_UPDATE",
		Data: []byte(`{}`),
	}))
}

func TestDispatchMalformedPayload(t *testing.T) {
	rb := newTestRoleboard(t)

	assert.Error(t, rb.DispatchStateEvent(discord.StatePayload{
		Type: discord.EventGuildCreate,
		Data: []byte(`[]`),
	}))
}

func TestOnConsumerMessage(t *testing.T) {
	rb := newTestRoleboard(t)

	rb.OnConsumerMessage([]byte(`{"t":"GUILD_MEMBER_ADD","d":{"guild_id":"500","user":{"id":"2","username":"bob"}}}`))

	member, ok := rb.State.GetMember(500, 2)
	assert.True(t, ok)
	assert.Equal(t, "bob", member.User.Username)

	// Garbage never panics or takes the consumer down.
	rb.OnConsumerMessage([]byte(`not json`))
}

func TestStateChangeBroadcast(t *testing.T) {
	rb := newTestRoleboard(t)

	changes := rb.Changes.Subscribe()
	defer rb.Changes.Unsubscribe(changes)

	payload := statePayload(t, discord.EventGuildMemberAdd, discord.GuildMemberAdd{
		GuildID: 500,
		Member: discord.Member{
			User: &discord.User{ID: 2, Username: "bob"},
		},
	})

	go func() {
		_ = rb.DispatchStateEvent(payload)
	}()

	change := <-changes
	assert.Equal(t, discord.GuildID(500), change.GuildID)
	assert.Equal(t, ChangeMembers, change.Kind)
}

func TestStateChangeAffects(t *testing.T) {
	scoped := StateChange{GuildID: 500, Kind: ChangeMembers}
	assert.True(t, scoped.Affects(500))
	assert.False(t, scoped.Affects(501))

	global := StateChange{Kind: ChangeUsers}
	assert.True(t, global.Affects(500))
	assert.True(t, global.Affects(501))
}
