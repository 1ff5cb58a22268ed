package roster

import (
	"sort"
	"testing"

	"github.com/roleboard/roleboard/discord"
	"github.com/stretchr/testify/assert"
)

type fakeSnapshot struct {
	roles     map[discord.GuildID][]discord.Role
	memberIDs map[discord.GuildID][]discord.UserID
	members   map[discord.GuildID]map[discord.UserID]discord.Member
	users     map[discord.UserID]discord.User
}

func newFakeSnapshot() *fakeSnapshot {
	return &fakeSnapshot{
		roles:     make(map[discord.GuildID][]discord.Role),
		memberIDs: make(map[discord.GuildID][]discord.UserID),
		members:   make(map[discord.GuildID]map[discord.UserID]discord.Member),
		users:     make(map[discord.UserID]discord.User),
	}
}

func (f *fakeSnapshot) addRole(guildID discord.GuildID, role discord.Role) {
	f.roles[guildID] = append(f.roles[guildID], role)
}

func (f *fakeSnapshot) addMember(guildID discord.GuildID, user discord.User, nick string, roles ...discord.RoleID) {
	member := discord.Member{Roles: roles}
	if nick != "" {
		member.Nick = &nick
	}

	if f.members[guildID] == nil {
		f.members[guildID] = make(map[discord.UserID]discord.Member)
	}

	f.memberIDs[guildID] = append(f.memberIDs[guildID], user.ID)
	f.members[guildID][user.ID] = member
	f.users[user.ID] = user
}

func (f *fakeSnapshot) GetSortedRoles(guildID discord.GuildID) []discord.Role {
	roles := make([]discord.Role, len(f.roles[guildID]))
	copy(roles, f.roles[guildID])

	sort.SliceStable(roles, func(i, j int) bool {
		return roles[i].Position > roles[j].Position
	})

	return roles
}

func (f *fakeSnapshot) GetMemberIDs(guildID discord.GuildID) []discord.UserID {
	return f.memberIDs[guildID]
}

func (f *fakeSnapshot) GetMember(guildID discord.GuildID, userID discord.UserID) (discord.Member, bool) {
	member, ok := f.members[guildID][userID]
	return member, ok
}

func (f *fakeSnapshot) GetUser(userID discord.UserID) (discord.User, bool) {
	user, ok := f.users[userID]
	return user, ok
}

const testGuildID = discord.GuildID(100)

func testSnapshot() *fakeSnapshot {
	snapshot := newFakeSnapshot()
	snapshot.addRole(testGuildID, discord.Role{ID: discord.RoleID(testGuildID), Name: "@everyone", Position: 0})
	snapshot.addRole(testGuildID, discord.Role{ID: 200, Name: "Moderators", Position: 2})
	snapshot.addMember(testGuildID, discord.User{ID: 1, Username: "Ann"}, "")
	snapshot.addMember(testGuildID, discord.User{ID: 2, Username: "bob"}, "Bobby", 200)

	return snapshot
}

func TestSelectorFor(t *testing.T) {
	selector := SelectorFor(testGuildID, discord.RoleID(testGuildID))
	assert.True(t, selector.IsEveryone())

	selector = SelectorFor(testGuildID, 200)
	assert.False(t, selector.IsEveryone())
	assert.Equal(t, discord.RoleID(200), selector.RoleID())
}

func TestResolveMembersEveryone(t *testing.T) {
	snapshot := testSnapshot()

	resolved := ResolveMembers(snapshot, testGuildID, Everyone())

	assert.ElementsMatch(t, snapshot.GetMemberIDs(testGuildID), resolved)
}

func TestResolveMembersNamedRole(t *testing.T) {
	snapshot := testSnapshot()

	resolved := ResolveMembers(snapshot, testGuildID, NamedRole(200))

	assert.Equal(t, []discord.UserID{2}, resolved)

	for _, userID := range resolved {
		member, ok := snapshot.GetMember(testGuildID, userID)
		assert.True(t, ok)
		assert.True(t, member.HasRole(200))
	}
}

func TestResolveMembersCompleteOverCache(t *testing.T) {
	snapshot := testSnapshot()
	snapshot.addMember(testGuildID, discord.User{ID: 3, Username: "carol"}, "", 200)

	resolved := ResolveMembers(snapshot, testGuildID, NamedRole(200))

	assert.ElementsMatch(t, []discord.UserID{2, 3}, resolved)
}

func TestResolveMembersEmptyRole(t *testing.T) {
	snapshot := testSnapshot()

	resolved := ResolveMembers(snapshot, testGuildID, NamedRole(999))

	assert.Empty(t, resolved)
}

func TestResolveMembersUnknownGuild(t *testing.T) {
	snapshot := testSnapshot()

	resolved := ResolveMembers(snapshot, discord.GuildID(999), Everyone())

	assert.Empty(t, resolved)
}

func TestResolveMembersSkipsUncachedMembers(t *testing.T) {
	snapshot := testSnapshot()

	// Member ID known but record evicted from the member cache.
	snapshot.memberIDs[testGuildID] = append(snapshot.memberIDs[testGuildID], 4)

	resolved := ResolveMembers(snapshot, testGuildID, NamedRole(200))

	assert.Equal(t, []discord.UserID{2}, resolved)
}

func TestBuildRecordsDropsMissingProfiles(t *testing.T) {
	snapshot := testSnapshot()

	// Membership cached, identity profile not loaded yet.
	snapshot.members[testGuildID][5] = discord.Member{}
	snapshot.memberIDs[testGuildID] = append(snapshot.memberIDs[testGuildID], 5)

	records := BuildRecords(snapshot, snapshot, testGuildID, snapshot.GetMemberIDs(testGuildID))

	assert.Len(t, records, 2)

	for _, record := range records {
		assert.NotEqual(t, discord.UserID(5), record.User.ID)
	}
}

func TestFilterMembersEmptyQueryIsIdentity(t *testing.T) {
	snapshot := testSnapshot()
	records := BuildRecords(snapshot, snapshot, testGuildID, snapshot.GetMemberIDs(testGuildID))

	filtered := FilterMembers(records, "")

	assert.Equal(t, records, filtered)
}

func TestFilterMembersSubsetAndIdempotent(t *testing.T) {
	snapshot := testSnapshot()
	records := BuildRecords(snapshot, snapshot, testGuildID, snapshot.GetMemberIDs(testGuildID))

	filtered := FilterMembers(records, "b")

	assert.LessOrEqual(t, len(filtered), len(records))
	assert.Equal(t, filtered, FilterMembers(filtered, "b"))
}

func TestFilterMembersCaseInsensitive(t *testing.T) {
	snapshot := testSnapshot()
	records := BuildRecords(snapshot, snapshot, testGuildID, snapshot.GetMemberIDs(testGuildID))

	assert.Equal(t, FilterMembers(records, "ab"), FilterMembers(records, "AB"))
	assert.Len(t, FilterMembers(records, "ANN"), 1)
}

func TestFilterMembersMatchesAllNameFields(t *testing.T) {
	snapshot := testSnapshot()
	records := BuildRecords(snapshot, snapshot, testGuildID, snapshot.GetMemberIDs(testGuildID))

	byUsername := FilterMembers(records, "bob")
	assert.Len(t, byUsername, 1)
	assert.Equal(t, discord.UserID(2), byUsername[0].User.ID)

	byNick := FilterMembers(records, "bobby")
	assert.Len(t, byNick, 1)
	assert.Equal(t, discord.UserID(2), byNick[0].User.ID)

	assert.Empty(t, FilterMembers(records, "zzz"))
}

func TestFilterMembersMatchesGlobalName(t *testing.T) {
	globalName := "The Annihilator"

	records := []MemberRecord{
		{User: discord.User{ID: 1, Username: "ann", GlobalName: &globalName}},
	}

	assert.Len(t, FilterMembers(records, "annihilator"), 1)
}

func TestFilterMembersPreservesOrder(t *testing.T) {
	records := []MemberRecord{
		{User: discord.User{ID: 3, Username: "abc"}},
		{User: discord.User{ID: 1, Username: "aab"}},
		{User: discord.User{ID: 2, Username: "abb"}},
	}

	filtered := FilterMembers(records, "ab")

	assert.Equal(t, records, filtered)
}

func TestDisplayNamePriority(t *testing.T) {
	nick := "nick"
	globalName := "global"

	record := MemberRecord{
		User:   discord.User{Username: "username", GlobalName: &globalName},
		Member: discord.Member{Nick: &nick},
	}

	assert.Equal(t, "nick", record.DisplayName())

	record.Member.Nick = nil
	assert.Equal(t, "global", record.DisplayName())

	record.User.GlobalName = nil
	assert.Equal(t, "username", record.DisplayName())
}
