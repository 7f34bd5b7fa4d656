package models

import "time"

// This file defines the already-parsed gateway event records the state
// engine consumes. The transport layer decodes raw frames into these
// structures; the engine never sees wire bytes.

// Ready is the initial handshake record.
type Ready struct {
	Version         int          `json:"v"`
	SessionID       string       `json:"session_id"`
	User            *User        `json:"user"`
	Guilds          []*GuildData `json:"guilds"`
	PrivateChannels []*Channel   `json:"private_channels"`
}

// GuildData is an incoming guild record. Unavailable and Large are
// pointers because their presence on the wire is semantically distinct
// from a false value.
type GuildData struct {
	ID           Snowflake       `json:"id"`
	Name         string          `json:"name"`
	Icon         string          `json:"icon"`
	Region       string          `json:"region"`
	OwnerID      Snowflake       `json:"owner_id"`
	AFKChannelID Snowflake       `json:"afk_channel_id"`
	AFKTimeout   int             `json:"afk_timeout"`
	Unavailable  *bool           `json:"unavailable"`
	Large        *bool           `json:"large"`
	MemberCount  int             `json:"member_count"`
	Roles        []*Role         `json:"roles"`
	Members      []*MemberData   `json:"members"`
	Channels     []*Channel      `json:"channels"`
	Emojis       []*Emoji        `json:"emojis"`
	Presences    []*PresenceData `json:"presences"`
	VoiceStates  []*VoiceState   `json:"voice_states"`
}

// MemberData is an incoming member record; roles arrive as ids.
type MemberData struct {
	User     *User       `json:"user"`
	Nick     string      `json:"nick"`
	Roles    []Snowflake `json:"roles"`
	JoinedAt time.Time   `json:"joined_at"`
	Deaf     bool        `json:"deaf"`
	Mute     bool        `json:"mute"`
}

// PresenceData is an incoming presence record. The user field may be a
// partial record carrying only an id.
type PresenceData struct {
	User    *User       `json:"user"`
	GuildID Snowflake   `json:"guild_id"`
	Status  string      `json:"status"`
	Game    *Activity   `json:"game"`
	Roles   []Snowflake `json:"roles"`
	Nick    string      `json:"nick"`
}

// MessageData is an incoming message record, shared by MESSAGE_CREATE and
// MESSAGE_UPDATE. Content is a pointer: an update without a content field
// is an embed-only patch.
type MessageData struct {
	ID              Snowflake       `json:"id"`
	ChannelID       Snowflake       `json:"channel_id"`
	Author          *User           `json:"author"`
	Content         *string         `json:"content"`
	Timestamp       time.Time       `json:"timestamp"`
	EditedTimestamp *time.Time      `json:"edited_timestamp"`
	TTS             bool            `json:"tts"`
	MentionEveryone bool            `json:"mention_everyone"`
	Pinned          bool            `json:"pinned"`
	Embeds          []Embed         `json:"embeds"`
	Attachments     []*Attachment   `json:"attachments"`
	Reactions       []*ReactionData `json:"reactions"`
	Call            *CallMessage    `json:"call"`
}

// ReactionData is an incoming reaction aggregate inside a message record.
type ReactionData struct {
	Count int    `json:"count"`
	Me    bool   `json:"me"`
	Emoji *Emoji `json:"emoji"`
}

// MessageDelete is a single message removal record.
type MessageDelete struct {
	ID        Snowflake `json:"id"`
	ChannelID Snowflake `json:"channel_id"`
}

// MessageDeleteBulk is a batched message removal record.
type MessageDeleteBulk struct {
	IDs       []Snowflake `json:"ids"`
	ChannelID Snowflake   `json:"channel_id"`
}

// MessageReactionAdd is a reaction addition record.
type MessageReactionAdd struct {
	UserID    Snowflake `json:"user_id"`
	MessageID Snowflake `json:"message_id"`
	ChannelID Snowflake `json:"channel_id"`
	Emoji     *Emoji    `json:"emoji"`
}

// MessageReactionRemove is a reaction removal record.
type MessageReactionRemove struct {
	UserID    Snowflake `json:"user_id"`
	MessageID Snowflake `json:"message_id"`
	ChannelID Snowflake `json:"channel_id"`
	Emoji     *Emoji    `json:"emoji"`
}

// MessageReactionRemoveAll clears every reaction on a message.
type MessageReactionRemoveAll struct {
	MessageID Snowflake `json:"message_id"`
	ChannelID Snowflake `json:"channel_id"`
}

// ChannelRecipientEvent adds or removes a group-DM recipient.
type ChannelRecipientEvent struct {
	ChannelID Snowflake `json:"channel_id"`
	User      *User     `json:"user"`
}

// GuildMemberAdd is a member join record.
type GuildMemberAdd struct {
	MemberData
	GuildID Snowflake `json:"guild_id"`
}

// GuildMemberRemove is a member leave record.
type GuildMemberRemove struct {
	GuildID Snowflake `json:"guild_id"`
	User    *User     `json:"user"`
}

// GuildMemberUpdate carries role/nick/user changes for a member.
type GuildMemberUpdate struct {
	GuildID Snowflake   `json:"guild_id"`
	Roles   []Snowflake `json:"roles"`
	User    *User       `json:"user"`
	Nick    string      `json:"nick"`
}

// GuildEmojisUpdate replaces a guild's custom emoji list.
type GuildEmojisUpdate struct {
	GuildID Snowflake `json:"guild_id"`
	Emojis  []*Emoji  `json:"emojis"`
}

// GuildSync is the legacy bulk member/presence payload for user-style
// sessions.
type GuildSync struct {
	ID        Snowflake       `json:"id"`
	Large     *bool           `json:"large"`
	Members   []*MemberData   `json:"members"`
	Presences []*PresenceData `json:"presences"`
}

// GuildBan is a ban addition or removal record.
type GuildBan struct {
	GuildID Snowflake `json:"guild_id"`
	User    *User     `json:"user"`
}

// GuildRoleEvent carries a created or updated role.
type GuildRoleEvent struct {
	GuildID Snowflake `json:"guild_id"`
	Role    *Role     `json:"role"`
}

// GuildRoleDelete is a role removal record.
type GuildRoleDelete struct {
	GuildID Snowflake `json:"guild_id"`
	RoleID  Snowflake `json:"role_id"`
}

// GuildMembersChunk is one page of a bulk member retrieval.
type GuildMembersChunk struct {
	GuildID Snowflake     `json:"guild_id"`
	Members []*MemberData `json:"members"`
}

// TypingStart is a typing indicator record; the timestamp is unix seconds.
type TypingStart struct {
	ChannelID Snowflake `json:"channel_id"`
	UserID    Snowflake `json:"user_id"`
	Timestamp int64     `json:"timestamp"`
}

// CallData is an incoming call record for CALL_CREATE and CALL_UPDATE.
type CallData struct {
	ChannelID   Snowflake     `json:"channel_id"`
	MessageID   Snowflake     `json:"message_id"`
	Region      string        `json:"region"`
	Ringing     []Snowflake   `json:"ringing"`
	Unavailable *bool         `json:"unavailable"`
	VoiceStates []*VoiceState `json:"voice_states"`
}

// CallDelete ends a call.
type CallDelete struct {
	ChannelID Snowflake `json:"channel_id"`
}
