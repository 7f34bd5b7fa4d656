package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cacheStub satisfies CacheRef for tests: it interns users in a local map
// and holds a fixed session identity.
type cacheStub struct {
	me    *User
	conns map[Snowflake]*VoiceConn
	users map[Snowflake]*User
}

func newCacheStub() *cacheStub {
	return &cacheStub{
		conns: make(map[Snowflake]*VoiceConn),
		users: make(map[Snowflake]*User),
	}
}

func (c *cacheStub) Me() *User { return c.me }

func (c *cacheStub) VoiceConn(guildID Snowflake) *VoiceConn { return c.conns[guildID] }

func (c *cacheStub) InternUser(data *User) *User {
	if existing, ok := c.users[data.ID]; ok {
		return existing
	}
	u := data.Clone()
	c.users[data.ID] = u
	return u
}

func fullGuildData() *GuildData {
	return &GuildData{
		ID:      1,
		Name:    "test guild",
		OwnerID: 50,
		Roles: []*Role{
			{ID: 1, Name: "@everyone"},
			{ID: 5, Name: "mods"},
		},
		Channels: []*Channel{
			{ID: 11, Type: ChannelTypeGuildText, Name: "general"},
			{ID: 12, Type: ChannelTypeGuildVoice, Name: "voice"},
		},
		Members: []*MemberData{
			{User: &User{ID: 50, Username: "alice"}, Roles: []Snowflake{5}, JoinedAt: time.Now()},
		},
		Emojis: []*Emoji{
			{ID: 70, Name: "blob"},
		},
		Presences: []*PresenceData{
			{User: &User{ID: 50, Username: "alice"}, Status: "online"},
		},
		VoiceStates: []*VoiceState{
			{UserID: 50, ChannelID: 12, SessionID: "v1"},
		},
	}
}

// ============================================================================
// Guild Construction Tests
// ============================================================================

func TestNewGuild_WiresOwnedCollections(t *testing.T) {
	cache := newCacheStub()
	g := NewGuild(fullGuildData(), cache)

	ch := g.Channel(11)
	require.NotNil(t, ch)
	assert.Same(t, g, ch.Guild, "channels carry a back-pointer to their guild")
	assert.Equal(t, g.ID, ch.GuildID)

	member := g.Member(50)
	require.NotNil(t, member)
	assert.Equal(t, "online", member.Status, "inline presences are applied")
	assert.Same(t, cache.users[50], member.User, "member users are interned")

	require.Len(t, g.Emojis(), 1)
	assert.Equal(t, g.ID, g.Emojis()[0].GuildID)

	vs := g.VoiceStateFor(50)
	require.NotNil(t, vs)
	assert.Equal(t, g.ID, vs.GuildID)
}

func TestGuild_LargeInference(t *testing.T) {
	cache := newCacheStub()
	yes, no := true, false

	tests := []struct {
		name string
		data *GuildData
		want bool
	}{
		{name: "explicit large", data: &GuildData{ID: 1, Large: &yes, MemberCount: 10}, want: true},
		{name: "explicit small", data: &GuildData{ID: 1, Large: &no, MemberCount: 9000}, want: false},
		{name: "inferred from count", data: &GuildData{ID: 1, MemberCount: 251}, want: true},
		{name: "inferred under threshold", data: &GuildData{ID: 1, MemberCount: 250}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGuild(tt.data, cache)
			assert.Equal(t, tt.want, g.Large)
		})
	}
}

func TestGuild_ApplyDataPreservesAbsentCollections(t *testing.T) {
	cache := newCacheStub()
	g := NewGuild(fullGuildData(), cache)

	// A follow-up record carrying only scalar fields must not wipe the
	// cached members, channels or roles.
	g.ApplyData(&GuildData{ID: 1, Name: "renamed"})

	assert.Equal(t, "renamed", g.Name)
	assert.NotNil(t, g.Member(50))
	assert.NotNil(t, g.Channel(11))
	assert.NotNil(t, g.Role(5))
}

// ============================================================================
// Member Construction Tests
// ============================================================================

func TestMakeMember_ResolvesRoles(t *testing.T) {
	cache := newCacheStub()
	g := NewGuild(fullGuildData(), cache)

	m := g.MakeMember(&MemberData{
		User:  &User{ID: 60, Username: "bob"},
		Roles: []Snowflake{5, 999},
	})

	// Unknown role ids are dropped; the default role is always present;
	// the result is sorted ascending by id.
	require.Len(t, m.Roles, 2)
	assert.Equal(t, Snowflake(1), m.Roles[0].ID)
	assert.Equal(t, Snowflake(5), m.Roles[1].ID)
	assert.Equal(t, g.ID, m.GuildID)
}

func TestMakeMember_InternsSameUserAcrossMembers(t *testing.T) {
	cache := newCacheStub()
	g := NewGuild(fullGuildData(), cache)

	a := g.MakeMember(&MemberData{User: &User{ID: 60, Username: "bob"}})
	b := g.MakeMember(&MemberData{User: &User{ID: 60, Username: "bob"}})

	assert.NotSame(t, a, b, "members are distinct objects")
	assert.Same(t, a.User, b.User, "but share one user identity")
}

func TestGuild_MeResolvesThroughCache(t *testing.T) {
	cache := newCacheStub()
	g := NewGuild(fullGuildData(), cache)

	assert.Nil(t, g.Me(), "no session identity yet")

	cache.me = cache.InternUser(&User{ID: 50, Username: "alice"})
	me := g.Me()
	require.NotNil(t, me)
	assert.Same(t, g.Member(50), me)
}

// ============================================================================
// Role Ordering Tests
// ============================================================================

func TestGuild_RolesSortedAscending(t *testing.T) {
	cache := newCacheStub()
	g := NewGuild(&GuildData{ID: 1, Roles: []*Role{
		{ID: 9, Name: "c"},
		{ID: 1, Name: "@everyone"},
		{ID: 4, Name: "b"},
	}}, cache)

	roles := g.Roles()
	require.Len(t, roles, 3)
	assert.Equal(t, Snowflake(1), roles[0].ID)
	assert.Equal(t, Snowflake(4), roles[1].ID)
	assert.Equal(t, Snowflake(9), roles[2].ID)

	assert.Same(t, roles[0], g.DefaultRole(), "default role id equals the guild id")
}

// ============================================================================
// Voice State Tests
// ============================================================================

func TestUpdateVoiceState_MoveBetweenChannels(t *testing.T) {
	cache := newCacheStub()
	data := fullGuildData()
	data.Channels = append(data.Channels, &Channel{ID: 13, Type: ChannelTypeGuildVoice, Name: "afk"})
	data.VoiceStates = nil
	g := NewGuild(data, cache)

	member, before, after := g.UpdateVoiceState(&VoiceState{
		UserID: 50, ChannelID: 12, SessionID: "v1",
	})
	require.Same(t, g.Member(50), member)
	assert.Nil(t, before)
	assert.Equal(t, Snowflake(12), after.ChannelID)
	assert.Len(t, g.Channel(12).VoiceMembers, 1)

	// Moving channels drops the old participant entry and adds the new.
	_, before, after = g.UpdateVoiceState(&VoiceState{
		UserID: 50, ChannelID: 13, SessionID: "v1",
	})
	assert.Equal(t, Snowflake(12), before.ChannelID)
	assert.Equal(t, Snowflake(13), after.ChannelID)
	assert.Empty(t, g.Channel(12).VoiceMembers)
	assert.Len(t, g.Channel(13).VoiceMembers, 1)

	// A zero channel id removes the user from voice entirely.
	_, _, after = g.UpdateVoiceState(&VoiceState{UserID: 50, SessionID: "v1"})
	assert.Zero(t, after.ChannelID)
	assert.Nil(t, g.VoiceStateFor(50))
	assert.Empty(t, g.Channel(13).VoiceMembers)
}

func TestUpdateVoiceState_UnknownMemberStillTracked(t *testing.T) {
	cache := newCacheStub()
	g := NewGuild(fullGuildData(), cache)

	member, _, after := g.UpdateVoiceState(&VoiceState{
		UserID: 999, ChannelID: 12, SessionID: "v2",
	})

	assert.Nil(t, member)
	require.NotNil(t, after)
	assert.NotNil(t, g.VoiceStateFor(999), "voice state is cached even without a member")
	assert.Empty(t, g.Channel(12).VoiceMembers, "participant lists only track known members")
}
