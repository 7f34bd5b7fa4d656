package state

import (
	"context"

	"go.uber.org/zap"

	"github.com/parsascontentcorner/discordlitegateway/internal/models"
)

// OnReady processes the initial handshake record: it caches the session
// identity, the initial guilds and private channels, and spawns the
// readiness orchestrator. Readiness is only dispatched once that
// background task finishes chunking.
func (s *State) OnReady(ctx context.Context, data *models.Ready) {
	s.mu.Lock()

	rs := newReadyState()
	s.ready = rs
	s.sessionID = data.SessionID
	s.user = s.internUser(data.User)
	s.isBot = s.user.Bot

	for _, guildData := range data.Guilds {
		guild := s.addGuildFromData(guildData)
		if guild.Large {
			rs.append(guild)
		}
	}

	for _, channelData := range data.PrivateChannels {
		s.addPrivateChannel(s.newPrivateChannel(channelData))
	}

	s.mu.Unlock()

	go s.delayReady(ctx, rs)
}

// OnResumed handles a successful session resume.
func (s *State) OnResumed() {
	s.dispatch("resumed")
}

// OnUserUpdate refreshes the session's own identity in place so every
// reference to the shared user object observes the change.
func (s *State) OnUserUpdate(data *models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.users[data.ID]; ok {
		existing.Update(data)
		s.user = existing
		return
	}
	s.user = s.internUser(data)
}

// getCreateGuild reconciles a GUILD_CREATE record against the cache: an
// explicitly available record for a known id means the guild came back,
// so it is merged in place; anything else is a fresh insert.
func (s *State) getCreateGuild(data *models.GuildData) *models.Guild {
	if data.Unavailable != nil && !*data.Unavailable {
		if guild := s.guilds[data.ID]; guild != nil {
			guild.Unavailable = false
			guild.ApplyData(data)
			return guild
		}
	}
	return s.addGuildFromData(data)
}

// OnGuildCreate handles guild joins and availability transitions. Large
// guilds fold into the active handshake when one is running; otherwise
// they take the independent chunk-and-dispatch path.
func (s *State) OnGuildCreate(ctx context.Context, data *models.GuildData) {
	if data.Unavailable != nil && *data.Unavailable {
		// Joined a guild that is down; nothing useful to cache yet.
		return
	}

	s.mu.Lock()
	guild := s.getCreateGuild(data)

	if guild.Large {
		if data.Unavailable != nil && !*data.Unavailable {
			if rs := s.ready; rs != nil {
				// Still inside the handshake: extend the pending list
				// and restart the debounce timer instead of dispatching.
				rs.clearGate()
				rs.append(guild)
				s.mu.Unlock()
				return
			}
		}
		s.mu.Unlock()
		go s.chunkAndDispatch(ctx, guild, data.Unavailable)
		return
	}
	s.mu.Unlock()

	if data.Unavailable != nil && !*data.Unavailable {
		s.dispatch("guild_available", guild)
	} else {
		s.dispatch("guild_join", guild)
	}
}

// OnGuildUpdate merges guild-level fields and dispatches before/after
// snapshots.
func (s *State) OnGuildUpdate(data *models.GuildData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guilds[data.ID]
	if guild == nil {
		s.logger.Debug("guild update for unknown guild", zap.Int64("guild_id", int64(data.ID)))
		return
	}

	before := guild.Clone()
	guild.ApplyData(data)
	s.dispatch("guild_update", before, guild)
}

// OnGuildDelete handles both outages and true removals. An unavailable
// marker only flips the flag; a real removal purges the guild's messages
// from the history buffer and evicts the guild.
func (s *State) OnGuildDelete(data *models.GuildData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guilds[data.ID]
	if guild == nil {
		return
	}

	if data.Unavailable != nil && *data.Unavailable {
		guild.Unavailable = true
		s.dispatch("guild_unavailable", guild)
		return
	}

	s.messages.PurgeGuild(guild.ID)
	s.removeGuild(guild.ID)
	s.dispatch("guild_remove", guild)
}

// OnGuildSync applies the legacy bulk member/presence payload delivered
// to user-style sessions.
func (s *State) OnGuildSync(data *models.GuildSync) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guilds[data.ID]
	if guild == nil {
		return
	}
	guild.ApplySync(data)
}

// OnGuildMemberAdd materializes the joining member and bumps the running
// member count.
func (s *State) OnGuildMemberAdd(data *models.GuildMemberAdd) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guilds[data.GuildID]
	if guild == nil {
		return
	}

	member := guild.MakeMember(&data.MemberData)
	guild.AddMember(member)
	guild.MemberCount++
	s.dispatch("member_join", member)
}

// OnGuildMemberRemove evicts the member, decrements the member count and
// best-effort removes them from their last-known voice channel.
func (s *State) OnGuildMemberRemove(data *models.GuildMemberRemove) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guilds[data.GuildID]
	if guild == nil {
		return
	}
	member := guild.Member(data.User.ID)
	if member == nil {
		return
	}

	guild.RemoveMember(member.User.ID)
	guild.MemberCount--

	if vs := guild.VoiceStateFor(member.User.ID); vs != nil && vs.ChannelID != 0 {
		if ch := guild.Channel(vs.ChannelID); ch != nil {
			ch.RemoveVoiceMember(member.User.ID)
		}
	}

	s.dispatch("member_remove", member)
}

// OnGuildMemberUpdate applies role, nick and user changes to a member.
func (s *State) OnGuildMemberUpdate(data *models.GuildMemberUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guilds[data.GuildID]
	if guild == nil {
		return
	}
	member := guild.Member(data.User.ID)
	if member == nil {
		return
	}

	before := member.Clone()
	refreshed := guild.MakeMember(&models.MemberData{
		User:  data.User,
		Nick:  data.Nick,
		Roles: data.Roles,
	})
	member.Nick = refreshed.Nick
	member.Roles = refreshed.Roles
	member.User.Update(data.User)
	s.dispatch("member_update", before, member)
}

// OnGuildEmojisUpdate replaces the guild's custom emoji list.
func (s *State) OnGuildEmojisUpdate(data *models.GuildEmojisUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guilds[data.GuildID]
	if guild == nil {
		return
	}

	before := guild.Emojis()
	emojis := make([]*models.Emoji, 0, len(data.Emojis))
	for _, e := range data.Emojis {
		emoji := e.Clone()
		emoji.GuildID = guild.ID
		emojis = append(emojis, emoji)
	}
	guild.SetEmojis(emojis)
	s.dispatch("guild_emojis_update", before, emojis)
}

// OnGuildBanAdd dispatches the ban for listeners. The member itself is
// left alone: the matching GUILD_MEMBER_REMOVE follows on the stream.
func (s *State) OnGuildBanAdd(data *models.GuildBan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guilds[data.GuildID]
	if guild == nil || data.User == nil {
		return
	}
	if member := guild.Member(data.User.ID); member != nil {
		s.dispatch("member_ban", member)
	}
}

// OnGuildBanRemove dispatches the unban with the shared user object.
func (s *State) OnGuildBanRemove(data *models.GuildBan) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guilds[data.GuildID]
	if guild == nil || data.User == nil {
		return
	}
	user := s.internUser(data.User)
	s.dispatch("member_unban", guild, user)
}

// OnGuildRoleCreate inserts the new role.
func (s *State) OnGuildRoleCreate(data *models.GuildRoleEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guilds[data.GuildID]
	if guild == nil {
		return
	}
	role := data.Role.Clone()
	guild.AddRole(role)
	s.dispatch("guild_role_create", role)
}

// OnGuildRoleUpdate merges role fields and dispatches before/after
// snapshots.
func (s *State) OnGuildRoleUpdate(data *models.GuildRoleEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guilds[data.GuildID]
	if guild == nil {
		return
	}
	role := guild.Role(data.Role.ID)
	if role == nil {
		return
	}

	before := role.Clone()
	role.Update(data.Role)
	s.dispatch("guild_role_update", before, role)
}

// OnGuildRoleDelete evicts the role.
func (s *State) OnGuildRoleDelete(data *models.GuildRoleDelete) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guilds[data.GuildID]
	if guild == nil {
		return
	}
	role := guild.Role(data.RoleID)
	if role == nil {
		return
	}

	guild.RemoveRole(role.ID)
	s.dispatch("guild_role_delete", role)
}

// OnGuildMembersChunk materializes one page of a bulk member retrieval
// and resolves any chunk listener waiting on the guild. An existing
// member with a known join date wins over the chunked copy.
func (s *State) OnGuildMembersChunk(data *models.GuildMembersChunk) {
	s.mu.Lock()

	guild := s.guilds[data.GuildID]
	if guild == nil {
		s.mu.Unlock()
		return
	}

	for _, memberData := range data.Members {
		m := guild.MakeMember(memberData)
		existing := guild.Member(m.User.ID)
		if existing == nil || existing.JoinedAt.IsZero() {
			guild.AddMember(m)
		}
	}
	s.mu.Unlock()

	s.logger.Info("processed a member chunk",
		zap.Int64("guild_id", int64(data.GuildID)),
		zap.Int("members", len(data.Members)),
	)
	s.listeners.resolve(listenerChunk, guild, len(data.Members))
}

// OnPresenceUpdate resolves the member, materializing one from the
// payload when it is complete, and applies the presence fields. Partial
// payloads for unknown members are stale post-removal noise and are
// skipped.
func (s *State) OnPresenceUpdate(data *models.PresenceData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guilds[data.GuildID]
	if guild == nil || data.User == nil {
		return
	}

	member := guild.Member(data.User.ID)
	if member == nil {
		if data.User.Partial() {
			return
		}
		member = guild.MakeMember(&models.MemberData{
			User:  data.User,
			Nick:  data.Nick,
			Roles: data.Roles,
		})
		guild.AddMember(member)
	}

	before := member.Clone()
	member.ApplyPresence(data)
	s.dispatch("member_update", before, member)
}

// OnVoiceStateUpdate applies a voice state record. Known guilds update
// their per-member voice state (and the session's own voice-client
// channel pointer); otherwise the channel id is resolved among active
// calls.
func (s *State) OnVoiceStateUpdate(data *models.VoiceState) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guilds[data.GuildID]
	if guild != nil {
		if s.isSelf(data.UserID) {
			if conn := s.voiceConns[guild.ID]; conn != nil {
				conn.Channel = guild.Channel(data.ChannelID)
			}
		}

		member, before, after := guild.UpdateVoiceState(data)
		if after != nil {
			s.dispatch("voice_state_update", member, before, after)
		}
		return
	}

	// Unknown guild: direct or group call voice state.
	if call := s.calls[data.ChannelID]; call != nil {
		call.UpdateVoiceState(data)
	}
}
