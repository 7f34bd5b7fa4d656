package models

import "sort"

// CacheRef is the back-reference a guild holds to its owning state cache.
// It replaces any global lookup: member and voice-client resolution always
// goes through the cache that constructed the guild.
type CacheRef interface {
	// Me returns the user of the current session, nil before READY.
	Me() *User

	// VoiceConn returns the voice-client handle for a guild, nil if the
	// session has no voice connection there.
	VoiceConn(guildID Snowflake) *VoiceConn

	// InternUser returns the process-wide shared user object for a
	// record, constructing and caching it on first observation.
	InternUser(data *User) *User
}

// Guild represents a Discord guild (server) and owns its members,
// channels, roles and emoji.
type Guild struct {
	ID           Snowflake
	Name         string
	Icon         string
	Region       string
	OwnerID      Snowflake
	AFKChannelID Snowflake
	AFKTimeout   int
	Unavailable  bool
	Large        bool
	MemberCount  int

	cache       CacheRef
	members     map[Snowflake]*Member
	channels    map[Snowflake]*Channel
	roles       map[Snowflake]*Role
	emojis      []*Emoji
	voiceStates map[Snowflake]*VoiceState
}

// NewGuild constructs a guild from an incoming guild record. The cache
// back-reference is required; all user objects inside the record are
// interned through it.
func NewGuild(data *GuildData, cache CacheRef) *Guild {
	g := &Guild{
		ID:          data.ID,
		cache:       cache,
		members:     make(map[Snowflake]*Member),
		channels:    make(map[Snowflake]*Channel),
		roles:       make(map[Snowflake]*Role),
		voiceStates: make(map[Snowflake]*VoiceState),
	}
	g.ApplyData(data)
	return g
}

// ApplyData merges an incoming guild record in place. Nested collections
// present in the record replace the cached ones.
func (g *Guild) ApplyData(data *GuildData) {
	g.Name = data.Name
	g.Icon = data.Icon
	g.Region = data.Region
	g.OwnerID = data.OwnerID
	g.AFKChannelID = data.AFKChannelID
	g.AFKTimeout = data.AFKTimeout

	if data.Unavailable != nil {
		g.Unavailable = *data.Unavailable
	}
	if data.MemberCount > 0 {
		g.MemberCount = data.MemberCount
	}
	if data.Large != nil {
		g.Large = *data.Large
	} else {
		g.Large = g.MemberCount > LargeThreshold
	}

	if len(data.Roles) > 0 {
		g.roles = make(map[Snowflake]*Role, len(data.Roles))
		for _, r := range data.Roles {
			g.roles[r.ID] = r.Clone()
		}
	}

	if len(data.Channels) > 0 {
		g.channels = make(map[Snowflake]*Channel, len(data.Channels))
		for _, c := range data.Channels {
			ch := c.Clone()
			ch.GuildID = g.ID
			ch.Guild = g
			g.channels[ch.ID] = ch
		}
	}

	if len(data.Members) > 0 {
		g.members = make(map[Snowflake]*Member, len(data.Members))
		for _, md := range data.Members {
			m := g.MakeMember(md)
			g.members[m.User.ID] = m
		}
	}

	if len(data.Emojis) > 0 {
		emojis := make([]*Emoji, 0, len(data.Emojis))
		for _, e := range data.Emojis {
			emoji := e.Clone()
			emoji.GuildID = g.ID
			emojis = append(emojis, emoji)
		}
		g.emojis = emojis
	}

	for _, p := range data.Presences {
		if p.User == nil {
			continue
		}
		if m := g.Member(p.User.ID); m != nil {
			m.ApplyPresence(p)
		}
	}

	for _, vs := range data.VoiceStates {
		st := vs.Clone()
		st.GuildID = g.ID
		g.voiceStates[st.UserID] = st
	}
}

// ApplySync merges a legacy GUILD_SYNC record: the bulk member and
// presence payload delivered to user-style sessions after the handshake.
func (g *Guild) ApplySync(data *GuildSync) {
	if data.Large != nil {
		g.Large = *data.Large
	}

	for _, md := range data.Members {
		m := g.MakeMember(md)
		g.members[m.User.ID] = m
	}

	for _, p := range data.Presences {
		if p.User == nil {
			continue
		}
		if m := g.Member(p.User.ID); m != nil {
			m.ApplyPresence(p)
		}
	}
}

// LargeThreshold is the member count above which a guild's member list is
// not sent inline and must be requested in chunks.
const LargeThreshold = 250

// MakeMember constructs a member from an incoming member record. The role
// id list is resolved against the guild's cached roles, the default role
// is always included, and the result is sorted ascending by role id.
func (g *Guild) MakeMember(data *MemberData) *Member {
	roles := make([]*Role, 0, len(data.Roles)+1)
	if def := g.DefaultRole(); def != nil {
		roles = append(roles, def)
	}
	for _, id := range data.Roles {
		if role := g.roles[id]; role != nil {
			roles = append(roles, role)
		}
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })

	return &Member{
		User:     g.cache.InternUser(data.User),
		GuildID:  g.ID,
		Nick:     data.Nick,
		JoinedAt: data.JoinedAt,
		Deaf:     data.Deaf,
		Mute:     data.Mute,
		Roles:    roles,
	}
}

// Clone returns a shallow snapshot of the guild for before/after event
// dispatch. The owned collections are shared with the live object.
func (g *Guild) Clone() *Guild {
	if g == nil {
		return nil
	}
	clone := *g
	return &clone
}

// Me returns this session's member object in the guild, nil if absent.
func (g *Guild) Me() *Member {
	me := g.cache.Me()
	if me == nil {
		return nil
	}
	return g.Member(me.ID)
}

// VoiceConn returns the session's voice-client handle for this guild.
func (g *Guild) VoiceConn() *VoiceConn {
	return g.cache.VoiceConn(g.ID)
}

// Member returns a member by user id, nil if absent.
func (g *Guild) Member(userID Snowflake) *Member {
	return g.members[userID]
}

// Members returns all cached members in unspecified order.
func (g *Guild) Members() []*Member {
	members := make([]*Member, 0, len(g.members))
	for _, m := range g.members {
		members = append(members, m)
	}
	return members
}

// AddMember inserts or replaces a member keyed by user id.
func (g *Guild) AddMember(m *Member) {
	g.members[m.User.ID] = m
}

// RemoveMember evicts a member by user id.
func (g *Guild) RemoveMember(userID Snowflake) {
	delete(g.members, userID)
}

// Channel returns a guild channel by id, nil if absent.
func (g *Guild) Channel(channelID Snowflake) *Channel {
	return g.channels[channelID]
}

// Channels returns all cached guild channels in unspecified order.
func (g *Guild) Channels() []*Channel {
	channels := make([]*Channel, 0, len(g.channels))
	for _, c := range g.channels {
		channels = append(channels, c)
	}
	return channels
}

// AddChannel inserts or replaces a guild channel.
func (g *Guild) AddChannel(c *Channel) {
	c.GuildID = g.ID
	c.Guild = g
	g.channels[c.ID] = c
}

// RemoveChannel evicts a guild channel by id.
func (g *Guild) RemoveChannel(channelID Snowflake) {
	delete(g.channels, channelID)
}

// Role returns a role by id, nil if absent.
func (g *Guild) Role(roleID Snowflake) *Role {
	return g.roles[roleID]
}

// Roles returns all cached roles sorted ascending by id.
func (g *Guild) Roles() []*Role {
	roles := make([]*Role, 0, len(g.roles))
	for _, r := range g.roles {
		roles = append(roles, r)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].ID < roles[j].ID })
	return roles
}

// AddRole inserts or replaces a role.
func (g *Guild) AddRole(r *Role) {
	g.roles[r.ID] = r
}

// RemoveRole evicts a role by id.
func (g *Guild) RemoveRole(roleID Snowflake) {
	delete(g.roles, roleID)
}

// DefaultRole returns the guild's everyone role, whose id equals the
// guild id.
func (g *Guild) DefaultRole() *Role {
	return g.roles[g.ID]
}

// Emojis returns the guild's custom emoji list.
func (g *Guild) Emojis() []*Emoji {
	return g.emojis
}

// SetEmojis replaces the guild's custom emoji list.
func (g *Guild) SetEmojis(emojis []*Emoji) {
	g.emojis = emojis
}

// VoiceStateFor returns the cached voice state for a user, nil if the
// user is not in voice.
func (g *Guild) VoiceStateFor(userID Snowflake) *VoiceState {
	return g.voiceStates[userID]
}

// UpdateVoiceState applies an incoming voice state record. It returns the
// affected member (nil if unknown), the previous state and the new state.
// A record with a zero channel id removes the user from voice. Voice
// channel participant lists are kept in step.
func (g *Guild) UpdateVoiceState(data *VoiceState) (*Member, *VoiceState, *VoiceState) {
	member := g.Member(data.UserID)

	var before *VoiceState
	if cur := g.voiceStates[data.UserID]; cur != nil {
		before = cur.Clone()
	}

	after := data.Clone()
	after.GuildID = g.ID
	if after.ChannelID == 0 {
		delete(g.voiceStates, data.UserID)
	} else {
		g.voiceStates[data.UserID] = after
	}

	if member != nil {
		if before != nil && before.ChannelID != 0 && before.ChannelID != after.ChannelID {
			if ch := g.Channel(before.ChannelID); ch != nil {
				ch.RemoveVoiceMember(member.User.ID)
			}
		}
		if after.ChannelID != 0 {
			if ch := g.Channel(after.ChannelID); ch != nil {
				ch.AddVoiceMember(member)
			}
		}
	}

	return member, before, after
}
