package state

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parsascontentcorner/discordlitegateway/internal/models"
)

// seedGuild drives a small guild through the normal create path so the
// cache entry is wired exactly like production traffic would wire it.
func seedGuild(t *testing.T, s *State, data *models.GuildData) *models.Guild {
	t.Helper()
	s.OnGuildCreate(context.Background(), data)
	guild := s.Guild(data.ID)
	require.NotNil(t, guild)
	return guild
}

func seedMessage(t *testing.T, s *State, id, channelID models.Snowflake) *models.Message {
	t.Helper()
	s.OnMessageCreate(&models.MessageData{
		ID:        id,
		ChannelID: channelID,
		Author:    &models.User{ID: 900, Username: "author"},
		Content:   strPtr("hello"),
	})
	msg := s.Messages().Get(id)
	require.NotNil(t, msg)
	return msg
}

func basicGuildData(id models.Snowflake) *models.GuildData {
	return &models.GuildData{
		ID:   id,
		Name: "guild",
		Members: []*models.MemberData{
			{User: &models.User{ID: 50, Username: "alice"}, JoinedAt: time.Now()},
		},
		Channels: []*models.Channel{
			{ID: id*10 + 1, Type: models.ChannelTypeGuildText, Name: "general"},
			{ID: id*10 + 2, Type: models.ChannelTypeGuildVoice, Name: "voice"},
		},
		Roles: []*models.Role{
			{ID: id, Name: "@everyone"},
		},
	}
}

// ============================================================================
// Guild Lifecycle Tests
// ============================================================================

func TestGuildCreate_UnavailableRecordIsIgnored(t *testing.T) {
	s, rec := newTestState(t, Options{})

	s.OnGuildCreate(context.Background(), &models.GuildData{
		ID: 1, Name: "down", Unavailable: boolPtr(true),
	})

	assert.Nil(t, s.Guild(1))
	assert.Zero(t, rec.count("guild_join"))
}

func TestGuildCreate_JoinVersusReAvailability(t *testing.T) {
	s, rec := newTestState(t, Options{})
	guild := seedGuild(t, s, basicGuildData(1))

	assert.Equal(t, 1, rec.count("guild_join"))

	// The guild goes down and comes back: the same cache entry survives.
	s.OnGuildDelete(&models.GuildData{ID: 1, Unavailable: boolPtr(true)})
	assert.True(t, guild.Unavailable)
	assert.Equal(t, 1, rec.count("guild_unavailable"))

	s.OnGuildCreate(context.Background(), &models.GuildData{
		ID: 1, Name: "guild", Unavailable: boolPtr(false),
	})
	assert.Equal(t, 1, rec.count("guild_available"))
	assert.Same(t, guild, s.Guild(1), "re-availability merges in place")
	assert.False(t, guild.Unavailable)
}

func TestGuildUpdate_DispatchesBeforeAndAfter(t *testing.T) {
	s, rec := newTestState(t, Options{})
	guild := seedGuild(t, s, basicGuildData(1))

	s.OnGuildUpdate(&models.GuildData{ID: 1, Name: "renamed"})

	event, ok := rec.last("guild_update")
	require.True(t, ok)
	require.Len(t, event.args, 2)
	before := event.args[0].(*models.Guild)
	after := event.args[1].(*models.Guild)
	assert.Equal(t, "guild", before.Name)
	assert.Equal(t, "renamed", after.Name)
	assert.Same(t, guild, after)
}

func TestGuildDelete_RemovalPurgesOnlyThatGuildsMessages(t *testing.T) {
	s, rec := newTestState(t, Options{})
	seedGuild(t, s, basicGuildData(1))
	seedGuild(t, s, basicGuildData(2))

	kept := seedMessage(t, s, 100, 21)
	seedMessage(t, s, 101, 11)
	seedMessage(t, s, 102, 11)

	s.OnGuildDelete(&models.GuildData{ID: 1})

	assert.Nil(t, s.Guild(1))
	assert.Equal(t, 1, rec.count("guild_remove"))
	assert.Nil(t, s.Messages().Get(101))
	assert.Nil(t, s.Messages().Get(102))
	assert.Same(t, kept, s.Messages().Get(100), "other guilds keep their history")
}

func TestGuildDelete_UnknownGuildIsNoOp(t *testing.T) {
	s, rec := newTestState(t, Options{})
	s.OnGuildDelete(&models.GuildData{ID: 99})
	assert.Zero(t, rec.count("guild_remove"))
}

// ============================================================================
// Member Event Tests
// ============================================================================

func TestGuildMemberAdd_TracksCount(t *testing.T) {
	s, rec := newTestState(t, Options{})
	guild := seedGuild(t, s, basicGuildData(1))
	start := guild.MemberCount

	s.OnGuildMemberAdd(&models.GuildMemberAdd{
		GuildID: 1,
		MemberData: models.MemberData{
			User: &models.User{ID: 60, Username: "bob"},
			Nick: "bobby",
		},
	})

	member := guild.Member(60)
	require.NotNil(t, member)
	assert.Equal(t, "bobby", member.Nick)
	assert.Equal(t, start+1, guild.MemberCount)
	assert.Equal(t, 1, rec.count("member_join"))
}

func TestGuildMemberRemove_CleansVoiceParticipation(t *testing.T) {
	s, rec := newTestState(t, Options{})
	guild := seedGuild(t, s, basicGuildData(1))
	start := guild.MemberCount

	// alice joins the voice channel, then leaves the guild entirely.
	s.OnVoiceStateUpdate(&models.VoiceState{
		GuildID: 1, ChannelID: 12, UserID: 50, SessionID: "v1",
	})
	require.Len(t, guild.Channel(12).VoiceMembers, 1)

	s.OnGuildMemberRemove(&models.GuildMemberRemove{
		GuildID: 1, User: &models.User{ID: 50},
	})

	assert.Nil(t, guild.Member(50))
	assert.Equal(t, start-1, guild.MemberCount)
	assert.Empty(t, guild.Channel(12).VoiceMembers)
	assert.Equal(t, 1, rec.count("member_remove"))
}

func TestGuildMemberUpdate_BeforeAfterSnapshots(t *testing.T) {
	s, rec := newTestState(t, Options{})
	guild := seedGuild(t, s, basicGuildData(1))

	s.OnGuildRoleCreate(&models.GuildRoleEvent{
		GuildID: 1, Role: &models.Role{ID: 5, Name: "mods"},
	})

	s.OnGuildMemberUpdate(&models.GuildMemberUpdate{
		GuildID: 1,
		User:    &models.User{ID: 50, Username: "alice"},
		Nick:    "captain",
		Roles:   []models.Snowflake{5},
	})

	event, ok := rec.last("member_update")
	require.True(t, ok)
	before := event.args[0].(*models.Member)
	after := event.args[1].(*models.Member)
	assert.Empty(t, before.Nick)
	assert.Equal(t, "captain", after.Nick)
	assert.Same(t, guild.Member(50), after)
	// Resolved roles always include the default role, sorted by id.
	require.Len(t, after.Roles, 2)
	assert.Equal(t, models.Snowflake(1), after.Roles[0].ID)
	assert.Equal(t, models.Snowflake(5), after.Roles[1].ID)
}

func TestPresenceUpdate_PartialUnknownUserIsSkipped(t *testing.T) {
	s, rec := newTestState(t, Options{})
	guild := seedGuild(t, s, basicGuildData(1))

	// Post-removal presence noise: id only, no username.
	s.OnPresenceUpdate(&models.PresenceData{
		GuildID: 1,
		User:    &models.User{ID: 777},
		Status:  "online",
	})

	assert.Nil(t, guild.Member(777))
	assert.Zero(t, rec.count("member_update"))
}

func TestPresenceUpdate_CompleteUserIsMaterialized(t *testing.T) {
	s, rec := newTestState(t, Options{})
	guild := seedGuild(t, s, basicGuildData(1))

	s.OnPresenceUpdate(&models.PresenceData{
		GuildID: 1,
		User:    &models.User{ID: 777, Username: "carol"},
		Status:  "idle",
		Game:    &models.Activity{Name: "chess"},
	})

	member := guild.Member(777)
	require.NotNil(t, member)
	assert.Equal(t, "idle", member.Status)
	require.NotNil(t, member.Game)
	assert.Equal(t, "chess", member.Game.Name)
	assert.Equal(t, 1, rec.count("member_update"))
}

// ============================================================================
// Role and Emoji Tests
// ============================================================================

func TestGuildRoleLifecycle(t *testing.T) {
	s, rec := newTestState(t, Options{})
	guild := seedGuild(t, s, basicGuildData(1))

	s.OnGuildRoleCreate(&models.GuildRoleEvent{
		GuildID: 1, Role: &models.Role{ID: 5, Name: "mods"},
	})
	require.NotNil(t, guild.Role(5))
	assert.Equal(t, 1, rec.count("guild_role_create"))

	s.OnGuildRoleUpdate(&models.GuildRoleEvent{
		GuildID: 1, Role: &models.Role{ID: 5, Name: "admins"},
	})
	assert.Equal(t, "admins", guild.Role(5).Name)
	event, _ := rec.last("guild_role_update")
	assert.Equal(t, "mods", event.args[0].(*models.Role).Name)

	s.OnGuildRoleDelete(&models.GuildRoleDelete{GuildID: 1, RoleID: 5})
	assert.Nil(t, guild.Role(5))
	assert.Equal(t, 1, rec.count("guild_role_delete"))
}

func TestGuildEmojisUpdate_ReplacesList(t *testing.T) {
	s, rec := newTestState(t, Options{})
	guild := seedGuild(t, s, basicGuildData(1))

	s.OnGuildEmojisUpdate(&models.GuildEmojisUpdate{
		GuildID: 1,
		Emojis:  []*models.Emoji{{ID: 70, Name: "blob"}},
	})

	emojis := guild.Emojis()
	require.Len(t, emojis, 1)
	assert.Equal(t, models.Snowflake(1), emojis[0].GuildID, "emoji is stamped with its guild")
	assert.Equal(t, 1, rec.count("guild_emojis_update"))
}

func TestGuildBanEvents(t *testing.T) {
	s, rec := newTestState(t, Options{})
	seedGuild(t, s, basicGuildData(1))

	s.OnGuildBanAdd(&models.GuildBan{GuildID: 1, User: &models.User{ID: 50}})
	assert.Equal(t, 1, rec.count("member_ban"))

	// Bans for users who were never members dispatch nothing.
	s.OnGuildBanAdd(&models.GuildBan{GuildID: 1, User: &models.User{ID: 999}})
	assert.Equal(t, 1, rec.count("member_ban"))

	s.OnGuildBanRemove(&models.GuildBan{GuildID: 1, User: &models.User{ID: 50, Username: "alice"}})
	event, ok := rec.last("member_unban")
	require.True(t, ok)
	assert.Same(t, s.User(50), event.args[1], "unban carries the shared user object")
}

// ============================================================================
// Message Event Tests
// ============================================================================

func TestMessageCreate_BuffersAndDispatches(t *testing.T) {
	s, rec := newTestState(t, Options{})
	seedGuild(t, s, basicGuildData(1))

	msg := seedMessage(t, s, 100, 11)

	assert.Equal(t, "hello", msg.Content)
	assert.Equal(t, models.Snowflake(1), msg.GuildID, "guild id resolved through the channel")
	assert.Same(t, s.User(900), msg.Author, "author is interned")
	assert.Equal(t, 1, rec.count("message"))
}

func TestMessageDelete_ScrolledOutIsNoOp(t *testing.T) {
	s, rec := newTestState(t, Options{})
	seedGuild(t, s, basicGuildData(1))
	seedMessage(t, s, 100, 11)

	s.OnMessageDelete(&models.MessageDelete{ID: 100, ChannelID: 11})
	assert.Equal(t, 1, rec.count("message_delete"))
	assert.Nil(t, s.Messages().Get(100))

	// Second delete for the same id finds nothing.
	s.OnMessageDelete(&models.MessageDelete{ID: 100, ChannelID: 11})
	assert.Equal(t, 1, rec.count("message_delete"))
}

func TestMessageDeleteBulk_DispatchesPerBufferedMessage(t *testing.T) {
	s, rec := newTestState(t, Options{})
	seedGuild(t, s, basicGuildData(1))
	seedMessage(t, s, 100, 11)
	seedMessage(t, s, 101, 11)

	s.OnMessageDeleteBulk(&models.MessageDeleteBulk{
		IDs:       []models.Snowflake{100, 101, 999},
		ChannelID: 11,
	})

	assert.Equal(t, 2, rec.count("message_delete"), "unbuffered ids contribute nothing")
	assert.Zero(t, s.Messages().Len())
}

func TestMessageUpdate_MergePolicies(t *testing.T) {
	s, rec := newTestState(t, Options{})
	seedGuild(t, s, basicGuildData(1))
	msg := seedMessage(t, s, 100, 11)

	// Full merge when a content field is present.
	edited := time.Now()
	s.OnMessageUpdate(&models.MessageData{
		ID: 100, ChannelID: 11,
		Content:         strPtr("edited"),
		EditedTimestamp: &edited,
	})
	assert.Equal(t, "edited", msg.Content)

	// Embed-only patch when content is absent.
	s.OnMessageUpdate(&models.MessageData{
		ID: 100, ChannelID: 11,
		Embeds: []models.Embed{{Title: "link"}},
	})
	assert.Equal(t, "edited", msg.Content, "embed patch leaves content alone")
	require.Len(t, msg.Embeds, 1)

	// Call-state patch takes priority over everything else.
	s.OnMessageUpdate(&models.MessageData{
		ID: 100, ChannelID: 11,
		Call: &models.CallMessage{Participants: []models.Snowflake{900}},
	})
	require.NotNil(t, msg.Call)

	assert.Equal(t, 3, rec.count("message_edit"))
	event, _ := rec.last("message_edit")
	assert.NotSame(t, event.args[0], event.args[1], "before is a snapshot, not the live object")
}

func TestMessageUpdate_UnbufferedMessageIsSkipped(t *testing.T) {
	s, rec := newTestState(t, Options{})
	s.OnMessageUpdate(&models.MessageData{ID: 42, Content: strPtr("x")})
	assert.Zero(t, rec.count("message_edit"))
}

// ============================================================================
// Reaction Event Tests
// ============================================================================

func TestReactionLifecycle(t *testing.T) {
	s, rec := newTestState(t, Options{})
	loginAs(s, &models.User{ID: 1, Username: "self"}, true)
	seedGuild(t, s, basicGuildData(1))
	msg := seedMessage(t, s, 100, 11)

	emoji := &models.Emoji{Name: "👍"}

	s.OnMessageReactionAdd(&models.MessageReactionAdd{
		UserID: 50, MessageID: 100, ChannelID: 11, Emoji: emoji,
	})
	require.Len(t, msg.Reactions, 1)
	assert.Equal(t, 1, msg.Reactions[0].Count)
	assert.False(t, msg.Reactions[0].Me)

	// Our own reaction flips the Me flag on the existing row.
	s.OnMessageReactionAdd(&models.MessageReactionAdd{
		UserID: 1, MessageID: 100, ChannelID: 11, Emoji: emoji,
	})
	assert.Equal(t, 2, msg.Reactions[0].Count)
	assert.True(t, msg.Reactions[0].Me)

	s.OnMessageReactionRemove(&models.MessageReactionRemove{
		UserID: 1, MessageID: 100, ChannelID: 11, Emoji: emoji,
	})
	assert.Equal(t, 1, msg.Reactions[0].Count)
	assert.False(t, msg.Reactions[0].Me)

	s.OnMessageReactionRemove(&models.MessageReactionRemove{
		UserID: 50, MessageID: 100, ChannelID: 11, Emoji: emoji,
	})
	assert.Empty(t, msg.Reactions, "row dropped at zero")

	assert.Equal(t, 2, rec.count("reaction_add"))
	assert.Equal(t, 2, rec.count("reaction_remove"))
}

func TestReactionRemove_ZeroCountRowIsDropped(t *testing.T) {
	s, rec := newTestState(t, Options{})
	seedGuild(t, s, basicGuildData(1))

	// Message records may arrive with a zero-count reaction aggregate.
	s.OnMessageCreate(&models.MessageData{
		ID:        100,
		ChannelID: 11,
		Author:    &models.User{ID: 900, Username: "author"},
		Content:   strPtr("hello"),
		Reactions: []*models.ReactionData{
			{Count: 0, Emoji: &models.Emoji{Name: "👍"}},
		},
	})
	msg := s.Messages().Get(100)
	require.Len(t, msg.Reactions, 1)

	s.OnMessageReactionRemove(&models.MessageReactionRemove{
		UserID: 50, MessageID: 100, ChannelID: 11,
		Emoji: &models.Emoji{Name: "👍"},
	})

	assert.Empty(t, msg.Reactions, "the row never lingers with a negative count")
	assert.Equal(t, 1, rec.count("reaction_remove"))
}

func TestReactionRemove_WithoutRowIsTolerated(t *testing.T) {
	s, rec := newTestState(t, Options{})
	seedGuild(t, s, basicGuildData(1))
	msg := seedMessage(t, s, 100, 11)

	s.OnMessageReactionRemove(&models.MessageReactionRemove{
		UserID: 50, MessageID: 100, ChannelID: 11,
		Emoji: &models.Emoji{Name: "👍"},
	})

	assert.Empty(t, msg.Reactions)
	assert.Zero(t, rec.count("reaction_remove"), "stale removals dispatch nothing")
}

func TestReactionRemoveAll_DispatchesPreviousSet(t *testing.T) {
	s, rec := newTestState(t, Options{})
	seedGuild(t, s, basicGuildData(1))
	msg := seedMessage(t, s, 100, 11)

	s.OnMessageReactionAdd(&models.MessageReactionAdd{
		UserID: 50, MessageID: 100, ChannelID: 11, Emoji: &models.Emoji{Name: "👍"},
	})
	s.OnMessageReactionRemoveAll(&models.MessageReactionRemoveAll{
		MessageID: 100, ChannelID: 11,
	})

	assert.Empty(t, msg.Reactions)
	event, ok := rec.last("reaction_clear")
	require.True(t, ok)
	assert.Len(t, event.args[1].([]*models.Reaction), 1)
}

func TestReactionAdd_ReusesCachedCustomEmoji(t *testing.T) {
	s, _ := newTestState(t, Options{})
	guild := seedGuild(t, s, basicGuildData(1))
	s.OnGuildEmojisUpdate(&models.GuildEmojisUpdate{
		GuildID: 1,
		Emojis:  []*models.Emoji{{ID: 70, Name: "blob"}},
	})
	msg := seedMessage(t, s, 100, 11)

	s.OnMessageReactionAdd(&models.MessageReactionAdd{
		UserID: 50, MessageID: 100, ChannelID: 11,
		Emoji: &models.Emoji{ID: 70, Name: "blob"},
	})

	require.Len(t, msg.Reactions, 1)
	assert.Same(t, guild.Emojis()[0], msg.Reactions[0].Emoji)
}

// ============================================================================
// Typing and Call Tests
// ============================================================================

func TestTypingStart_ResolvesGuildMember(t *testing.T) {
	s, rec := newTestState(t, Options{})
	guild := seedGuild(t, s, basicGuildData(1))

	s.OnTypingStart(&models.TypingStart{
		ChannelID: 11, UserID: 50, Timestamp: 1700000000,
	})

	event, ok := rec.last("typing")
	require.True(t, ok)
	require.Len(t, event.args, 3)
	assert.Same(t, guild.Member(50), event.args[1])
	assert.Equal(t, time.Unix(1700000000, 0).UTC(), event.args[2])
}

func TestTypingStart_UnknownActorIsSilent(t *testing.T) {
	s, rec := newTestState(t, Options{})
	seedGuild(t, s, basicGuildData(1))

	s.OnTypingStart(&models.TypingStart{ChannelID: 11, UserID: 999, Timestamp: 1})
	assert.Zero(t, rec.count("typing"))
}

func TestCallLifecycle(t *testing.T) {
	s, rec := newTestState(t, Options{})
	seedGuild(t, s, basicGuildData(1))
	seedMessage(t, s, 100, 11)

	s.OnCallCreate(&models.CallData{
		ChannelID: 11, MessageID: 100, Region: "antwerp",
		Ringing: []models.Snowflake{50},
	})
	call := s.Call(11)
	require.NotNil(t, call)
	assert.Equal(t, 1, rec.count("call"))

	s.OnCallUpdate(&models.CallData{ChannelID: 11, MessageID: 100, Region: "brussels"})
	assert.Equal(t, "brussels", call.Region)
	event, _ := rec.last("call_update")
	assert.Equal(t, "antwerp", event.args[0].(*models.Call).Region)

	s.OnCallDelete(&models.CallDelete{ChannelID: 11})
	assert.Nil(t, s.Call(11))
	assert.Equal(t, 1, rec.count("call_remove"))
}

func TestCallCreate_RequiresBufferedMessage(t *testing.T) {
	s, rec := newTestState(t, Options{})
	s.OnCallCreate(&models.CallData{ChannelID: 11, MessageID: 404})
	assert.Nil(t, s.Call(11))
	assert.Zero(t, rec.count("call"))
}

// ============================================================================
// Channel Event Tests
// ============================================================================

func TestChannelCreate_GuildAndPrivatePaths(t *testing.T) {
	s, rec := newTestState(t, Options{})
	guild := seedGuild(t, s, basicGuildData(1))

	s.OnChannelCreate(&models.Channel{
		ID: 13, Type: models.ChannelTypeGuildText, GuildID: 1, Name: "memes",
	})
	require.NotNil(t, guild.Channel(13))
	assert.Equal(t, 1, rec.count("channel_create"))

	s.OnChannelCreate(&models.Channel{
		ID: 200, Type: models.ChannelTypeDM,
		Recipients: []*models.User{{ID: 7, Username: "pal"}},
	})
	assert.NotNil(t, s.PrivateChannel(200))
	assert.NotNil(t, s.PrivateChannelByUser(7))
	assert.Equal(t, 2, rec.count("channel_create"))
}

func TestChannelUpdate_GroupDMKeepsRecipients(t *testing.T) {
	s, rec := newTestState(t, Options{})
	s.OnChannelCreate(&models.Channel{
		ID: 300, Type: models.ChannelTypeGroupDM, Name: "the gang",
		Recipients: []*models.User{{ID: 7, Username: "pal"}, {ID: 8, Username: "buddy"}},
	})
	ch := s.PrivateChannel(300)
	require.NotNil(t, ch)

	s.OnChannelUpdate(&models.Channel{
		ID: 300, Type: models.ChannelTypeGroupDM, Name: "renamed gang",
	})

	assert.Equal(t, "renamed gang", ch.Name)
	assert.Len(t, ch.Recipients, 2, "a group rename never clobbers recipients")
	event, ok := rec.last("channel_update")
	require.True(t, ok)
	assert.Equal(t, "the gang", event.args[0].(*models.Channel).Name)
}

func TestChannelDelete_EvictsFromGuild(t *testing.T) {
	s, rec := newTestState(t, Options{})
	guild := seedGuild(t, s, basicGuildData(1))

	s.OnChannelDelete(&models.Channel{ID: 11, GuildID: 1})

	assert.Nil(t, guild.Channel(11))
	assert.Equal(t, 1, rec.count("channel_delete"))
}

func TestChannelRecipientAddRemove(t *testing.T) {
	s, rec := newTestState(t, Options{})
	s.OnChannelCreate(&models.Channel{
		ID: 300, Type: models.ChannelTypeGroupDM,
		Recipients: []*models.User{{ID: 7, Username: "pal"}},
	})
	ch := s.PrivateChannel(300)

	s.OnChannelRecipientAdd(&models.ChannelRecipientEvent{
		ChannelID: 300, User: &models.User{ID: 8, Username: "buddy"},
	})
	assert.Len(t, ch.Recipients, 2)
	assert.Equal(t, 1, rec.count("group_join"))

	s.OnChannelRecipientRemove(&models.ChannelRecipientEvent{
		ChannelID: 300, User: &models.User{ID: 8, Username: "buddy"},
	})
	assert.Len(t, ch.Recipients, 1)
	assert.Equal(t, 1, rec.count("group_remove"))

	// Removing someone who already left is a no-op.
	s.OnChannelRecipientRemove(&models.ChannelRecipientEvent{
		ChannelID: 300, User: &models.User{ID: 8, Username: "buddy"},
	})
	assert.Equal(t, 1, rec.count("group_remove"))
}

// ============================================================================
// Voice and Identity Tests
// ============================================================================

func TestVoiceStateUpdate_TracksChannelMembership(t *testing.T) {
	s, rec := newTestState(t, Options{})
	guild := seedGuild(t, s, basicGuildData(1))

	s.OnVoiceStateUpdate(&models.VoiceState{
		GuildID: 1, ChannelID: 12, UserID: 50, SessionID: "v1",
	})
	assert.Len(t, guild.Channel(12).VoiceMembers, 1)
	assert.Equal(t, 1, rec.count("voice_state_update"))

	// Leaving clears both the voice state and the channel list.
	s.OnVoiceStateUpdate(&models.VoiceState{
		GuildID: 1, ChannelID: 0, UserID: 50, SessionID: "v1",
	})
	assert.Empty(t, guild.Channel(12).VoiceMembers)
	assert.Nil(t, guild.VoiceStateFor(50))
}

func TestVoiceStateUpdate_SelfMovesVoiceConnChannel(t *testing.T) {
	s, _ := newTestState(t, Options{})
	loginAs(s, &models.User{ID: 1, Username: "self"}, true)
	guild := seedGuild(t, s, basicGuildData(1))

	s.OnGuildMemberAdd(&models.GuildMemberAdd{
		GuildID:    1,
		MemberData: models.MemberData{User: &models.User{ID: 1, Username: "self"}},
	})
	s.AddVoiceConn(&models.VoiceConn{GuildID: 1})

	s.OnVoiceStateUpdate(&models.VoiceState{
		GuildID: 1, ChannelID: 12, UserID: 1, SessionID: "v1",
	})

	require.NotNil(t, s.VoiceConn(1).Channel)
	assert.Same(t, guild.Channel(12), s.VoiceConn(1).Channel)
}

func TestUserUpdate_SharedReferenceObservesChange(t *testing.T) {
	s, _ := newTestState(t, Options{})
	loginAs(s, &models.User{ID: 1, Username: "old-name"}, true)

	me := s.Me()
	s.OnUserUpdate(&models.User{ID: 1, Username: "new-name"})

	assert.Same(t, me, s.Me())
	assert.Equal(t, "new-name", me.Username)
}

func TestResumed_Dispatches(t *testing.T) {
	s, rec := newTestState(t, Options{})
	s.OnResumed()
	assert.Equal(t, 1, rec.count("resumed"))
}

func TestGuildSync_AppliesMembersAndPresences(t *testing.T) {
	s, _ := newTestState(t, Options{})
	guild := seedGuild(t, s, basicGuildData(1))

	s.OnGuildSync(&models.GuildSync{
		ID:    1,
		Large: boolPtr(false),
		Members: []*models.MemberData{
			{User: &models.User{ID: 60, Username: "bob"}},
		},
		Presences: []*models.PresenceData{
			{User: &models.User{ID: 60}, Status: "online"},
		},
	})

	member := guild.Member(60)
	require.NotNil(t, member)
	assert.Equal(t, "online", member.Status)
}
