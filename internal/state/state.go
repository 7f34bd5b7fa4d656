// Package state implements the client-side state-synchronization engine:
// it consumes already-parsed gateway event records and maintains a
// consistent in-memory mirror of guilds, channels, members, messages,
// roles, emoji and calls, gated behind a readiness handshake.
package state

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/parsascontentcorner/discordlitegateway/internal/models"
	"github.com/parsascontentcorner/discordlitegateway/internal/rest"
)

// DispatchFunc hands a semantic event to application code. It must not
// block the engine; wiring it to a worker pool is the caller's job.
type DispatchFunc func(event string, args ...any)

// ChunkerFunc issues an outbound request-members call for a batch of
// guilds. Its completion means the request was sent; member arrival is
// signaled separately through GUILD_MEMBERS_CHUNK records.
type ChunkerFunc func(ctx context.Context, guilds []*models.Guild) error

// SyncerFunc issues a legacy bulk-sync request for user-style sessions.
type SyncerFunc func(ctx context.Context, guildIDs []models.Snowflake) error

const (
	defaultMaxMessages = 5000
	minMessages        = 100

	defaultQuietPeriod = 2 * time.Second
	defaultChunkWait   = 30 * time.Second

	// membersPerChunk is how many members one GUILD_MEMBERS_CHUNK page
	// carries; guildsPerChunkRequest bounds one outbound request.
	membersPerChunk       = 1000
	guildsPerChunkRequest = 75
)

// Options tunes the state engine. Zero values select the defaults.
type Options struct {
	// MaxMessages bounds the message history buffer, floored at 100.
	MaxMessages int

	// GuildReadyQuietPeriod is the readiness debounce interval.
	GuildReadyQuietPeriod time.Duration

	// ChunkWait is the per-outstanding-listener share of the bounded
	// wait for member chunks during the handshake.
	ChunkWait time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxMessages == 0 {
		o.MaxMessages = defaultMaxMessages
	}
	if o.MaxMessages < minMessages {
		o.MaxMessages = minMessages
	}
	if o.GuildReadyQuietPeriod == 0 {
		o.GuildReadyQuietPeriod = defaultQuietPeriod
	}
	if o.ChunkWait == 0 {
		o.ChunkWait = defaultChunkWait
	}
	return o
}

// State is the in-memory mirror of the remote session. All mutation runs
// through the On* reconciliation handlers, serialized by a single mutex
// so each handler is atomic with respect to the others.
type State struct {
	logger   *zap.Logger
	dispatch DispatchFunc
	chunker  ChunkerFunc
	syncer   SyncerFunc
	rest     *rest.Client
	opts     Options

	mu        sync.Mutex
	user      *models.User
	isBot     bool
	sessionID string
	sequence  int64

	users                 map[models.Snowflake]*models.User
	guilds                map[models.Snowflake]*models.Guild
	calls                 map[models.Snowflake]*models.Call
	privateChannels       map[models.Snowflake]*models.Channel
	privateChannelsByUser map[models.Snowflake]*models.Channel
	voiceConns            map[models.Snowflake]*models.VoiceConn
	messages              *MessageCache

	listeners *listenerRegistry
	ready     *readyState
}

// New creates a state engine. The rest client is an opaque handle passed
// through to constructed entities for read-through calls; the engine
// never invokes it directly.
func New(logger *zap.Logger, dispatch DispatchFunc, chunker ChunkerFunc, syncer SyncerFunc, restClient *rest.Client, opts Options) *State {
	s := &State{
		logger:    logger,
		dispatch:  dispatch,
		chunker:   chunker,
		syncer:    syncer,
		rest:      restClient,
		opts:      opts.withDefaults(),
		listeners: newListenerRegistry(),
	}
	s.reset()
	return s
}

// Clear drops all cached state. It is invoked on a
// reconnect-without-resume, before the gateway replays a fresh READY.
func (s *State) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset()
}

func (s *State) reset() {
	s.user = nil
	s.sessionID = ""
	s.sequence = 0
	s.users = make(map[models.Snowflake]*models.User)
	s.guilds = make(map[models.Snowflake]*models.Guild)
	s.calls = make(map[models.Snowflake]*models.Call)
	s.privateChannels = make(map[models.Snowflake]*models.Channel)
	s.privateChannelsByUser = make(map[models.Snowflake]*models.Channel)
	s.voiceConns = make(map[models.Snowflake]*models.VoiceConn)
	s.messages = NewMessageCache(s.opts.MaxMessages)
}

// Rest returns the opaque HTTP handle.
func (s *State) Rest() *rest.Client {
	return s.rest
}

// SetSequence records the last seen gateway sequence number.
func (s *State) SetSequence(seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sequence = seq
}

// Sequence returns the last seen gateway sequence number.
func (s *State) Sequence() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sequence
}

// SessionID returns the gateway session id from the handshake.
func (s *State) SessionID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionID
}

// Me returns the session's own user, nil before READY.
func (s *State) Me() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// InternUser returns the shared user object for a record, constructing
// and caching it on first observation. Entries persist for the process
// lifetime.
func (s *State) InternUser(data *models.User) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.internUser(data)
}

func (s *State) internUser(data *models.User) *models.User {
	if existing, ok := s.users[data.ID]; ok {
		return existing
	}
	user := data.Clone()
	s.users[data.ID] = user
	return user
}

// User returns a cached user by id, nil if never observed.
func (s *State) User(id models.Snowflake) *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

// Guild returns a cached guild by id, nil if absent.
func (s *State) Guild(id models.Snowflake) *models.Guild {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.guilds[id]
}

// Guilds returns all cached guilds in unspecified order.
func (s *State) Guilds() []*models.Guild {
	s.mu.Lock()
	defer s.mu.Unlock()
	guilds := make([]*models.Guild, 0, len(s.guilds))
	for _, g := range s.guilds {
		guilds = append(guilds, g)
	}
	return guilds
}

func (s *State) addGuild(g *models.Guild) {
	s.guilds[g.ID] = g
}

func (s *State) removeGuild(id models.Snowflake) {
	delete(s.guilds, id)
}

func (s *State) addGuildFromData(data *models.GuildData) *models.Guild {
	guild := models.NewGuild(data, cacheRef{s})
	s.addGuild(guild)
	return guild
}

// PrivateChannel returns a cached DM or group-DM channel by id.
func (s *State) PrivateChannel(id models.Snowflake) *models.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.privateChannels[id]
}

// PrivateChannelByUser returns the DM channel with a user, nil if none
// has been observed.
func (s *State) PrivateChannelByUser(userID models.Snowflake) *models.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.privateChannelsByUser[userID]
}

// PrivateChannels returns all cached private channels in unspecified
// order.
func (s *State) PrivateChannels() []*models.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	channels := make([]*models.Channel, 0, len(s.privateChannels))
	for _, c := range s.privateChannels {
		channels = append(channels, c)
	}
	return channels
}

func (s *State) addPrivateChannel(c *models.Channel) {
	s.privateChannels[c.ID] = c
	if recipient := c.Recipient(); recipient != nil {
		s.privateChannelsByUser[recipient.ID] = c
	}
}

func (s *State) removePrivateChannel(c *models.Channel) {
	delete(s.privateChannels, c.ID)
	if recipient := c.Recipient(); recipient != nil {
		delete(s.privateChannelsByUser, recipient.ID)
	}
}

// newPrivateChannel builds a DM or group-DM channel from an incoming
// record, interning every recipient.
func (s *State) newPrivateChannel(data *models.Channel) *models.Channel {
	ch := data.Clone()
	for i, r := range ch.Recipients {
		ch.Recipients[i] = s.internUser(r)
	}
	return ch
}

// Channel returns a channel by id, searching guild channels first and
// private channels second. The search order is part of the contract.
func (s *State) Channel(id models.Snowflake) *models.Channel {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.channel(id)
}

func (s *State) channel(id models.Snowflake) *models.Channel {
	if id == 0 {
		return nil
	}
	for _, guild := range s.guilds {
		if ch := guild.Channel(id); ch != nil {
			return ch
		}
	}
	return s.privateChannels[id]
}

// Call returns an active call by channel id, nil if absent.
func (s *State) Call(channelID models.Snowflake) *models.Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[channelID]
}

// VoiceConn returns the voice-client handle for a guild.
func (s *State) VoiceConn(guildID models.Snowflake) *models.VoiceConn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceConns[guildID]
}

// AddVoiceConn registers a voice-client handle for a guild.
func (s *State) AddVoiceConn(conn *models.VoiceConn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voiceConns[conn.GuildID] = conn
}

// RemoveVoiceConn drops the voice-client handle for a guild.
func (s *State) RemoveVoiceConn(guildID models.Snowflake) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.voiceConns, guildID)
}

// Messages exposes the bounded history buffer.
func (s *State) Messages() *MessageCache {
	return s.messages
}

// cacheRef adapts State to the models.CacheRef back-reference held by
// guilds. Its methods run while a reconciliation handler already holds
// the state mutex, so they must not lock it again.
type cacheRef struct {
	s *State
}

func (c cacheRef) Me() *models.User {
	return c.s.user
}

func (c cacheRef) VoiceConn(guildID models.Snowflake) *models.VoiceConn {
	return c.s.voiceConns[guildID]
}

func (c cacheRef) InternUser(data *models.User) *models.User {
	return c.s.internUser(data)
}

// newMessage builds a cached message from an incoming record, resolving
// its channel, interning its author and materializing reaction rows.
func (s *State) newMessage(channel *models.Channel, data *models.MessageData) *models.Message {
	msg := &models.Message{
		ID:              data.ID,
		ChannelID:       data.ChannelID,
		Timestamp:       data.Timestamp,
		TTS:             data.TTS,
		MentionEveryone: data.MentionEveryone,
		Pinned:          data.Pinned,
		Embeds:          data.Embeds,
		Attachments:     data.Attachments,
		Channel:         channel,
	}
	if data.Content != nil {
		msg.Content = *data.Content
	}
	if data.EditedTimestamp != nil {
		msg.EditedTimestamp = *data.EditedTimestamp
	}
	if data.Author != nil {
		msg.Author = s.internUser(data.Author)
	}
	if channel != nil && channel.Guild != nil {
		msg.GuildID = channel.Guild.ID
	}
	for _, r := range data.Reactions {
		msg.Reactions = append(msg.Reactions, &models.Reaction{
			Emoji: s.reactionEmoji(r.Emoji),
			Count: r.Count,
			Me:    r.Me,
		})
	}
	return msg
}

// reactionEmoji resolves a partial emoji record to a reaction identity:
// unicode emoji pass through, custom emoji reuse the cached guild entity
// when one exists.
func (s *State) reactionEmoji(data *models.Emoji) *models.Emoji {
	if data == nil {
		return &models.Emoji{}
	}
	if !data.Custom() {
		return &models.Emoji{Name: data.Name}
	}
	for _, guild := range s.guilds {
		for _, emoji := range guild.Emojis() {
			if emoji.ID == data.ID {
				return emoji
			}
		}
	}
	return data.Clone()
}

// memberFor resolves who acted on a channel: a recipient for private
// channels, a guild member otherwise. The result may be nil.
func (s *State) memberFor(channel *models.Channel, userID models.Snowflake) any {
	if channel == nil {
		return nil
	}
	if channel.Private() {
		for _, r := range channel.Recipients {
			if r.ID == userID {
				return r
			}
		}
		return nil
	}
	if channel.Guild == nil {
		return nil
	}
	if member := channel.Guild.Member(userID); member != nil {
		return member
	}
	return nil
}

func (s *State) isSelf(userID models.Snowflake) bool {
	return s.user != nil && s.user.ID == userID
}
