package state

import (
	"go.uber.org/zap"

	"github.com/parsascontentcorner/discordlitegateway/internal/models"
)

// OnChannelCreate inserts a new channel: private channels go into the
// top-level cache (maintaining the DM reverse index), guild channels
// into their owning guild.
func (s *State) OnChannelCreate(data *models.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var channel *models.Channel
	if data.Private() {
		channel = s.newPrivateChannel(data)
		s.addPrivateChannel(channel)
	} else {
		guild := s.guilds[data.GuildID]
		if guild == nil {
			s.logger.Debug("channel create for unknown guild",
				zap.Int64("guild_id", int64(data.GuildID)),
				zap.Int64("channel_id", int64(data.ID)),
			)
			return
		}
		channel = data.Clone()
		guild.AddChannel(channel)
	}

	s.dispatch("channel_create", channel)
}

// OnChannelUpdate merges channel fields, special-casing group DMs which
// have no owning guild, and dispatches before/after snapshots.
func (s *State) OnChannelUpdate(data *models.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if data.Type == models.ChannelTypeGroupDM {
		channel := s.privateChannels[data.ID]
		if channel == nil {
			return
		}
		before := channel.Clone()
		channel.UpdateGroup(data)
		s.dispatch("channel_update", before, channel)
		return
	}

	guild := s.guilds[data.GuildID]
	if guild == nil {
		return
	}
	channel := guild.Channel(data.ID)
	if channel == nil {
		return
	}

	before := channel.Clone()
	channel.Update(data)
	s.dispatch("channel_update", before, channel)
}

// OnChannelDelete evicts the channel from its owning guild, or from the
// private channel cache (clearing the DM reverse index too).
func (s *State) OnChannelDelete(data *models.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guilds[data.GuildID]
	if guild != nil {
		channel := guild.Channel(data.ID)
		if channel == nil {
			return
		}
		guild.RemoveChannel(channel.ID)
		s.dispatch("channel_delete", channel)
		return
	}

	channel := s.privateChannels[data.ID]
	if channel == nil {
		return
	}
	s.removePrivateChannel(channel)
	s.dispatch("channel_delete", channel)
}

// OnChannelRecipientAdd appends a user to a group DM's recipient list.
func (s *State) OnChannelRecipientAdd(data *models.ChannelRecipientEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	channel := s.privateChannels[data.ChannelID]
	if channel == nil || data.User == nil {
		return
	}

	user := s.internUser(data.User)
	channel.Recipients = append(channel.Recipients, user)
	s.dispatch("group_join", channel, user)
}

// OnChannelRecipientRemove drops a user from a group DM's recipient
// list. Removing an absent recipient is a no-op.
func (s *State) OnChannelRecipientRemove(data *models.ChannelRecipientEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	channel := s.privateChannels[data.ChannelID]
	if channel == nil || data.User == nil {
		return
	}

	for i, r := range channel.Recipients {
		if r.ID == data.User.ID {
			channel.Recipients = append(channel.Recipients[:i], channel.Recipients[i+1:]...)
			s.dispatch("group_remove", channel, r)
			return
		}
	}
}
