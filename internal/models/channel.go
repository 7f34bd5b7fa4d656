package models

// ChannelType represents Discord channel types
type ChannelType int

// Discord channel type constants
const (
	ChannelTypeGuildText     ChannelType = 0
	ChannelTypeDM            ChannelType = 1
	ChannelTypeGuildVoice    ChannelType = 2
	ChannelTypeGroupDM       ChannelType = 3
	ChannelTypeGuildCategory ChannelType = 4
)

// Channel represents a Discord channel. Guild channels are owned by a
// Guild; DM and group-DM channels are owned by the top-level state cache.
type Channel struct {
	ID            Snowflake   `json:"id"`
	Type          ChannelType `json:"type"`
	GuildID       Snowflake   `json:"guild_id"`
	Name          string      `json:"name"`
	Topic         string      `json:"topic"`
	Position      int         `json:"position"`
	Bitrate       int         `json:"bitrate"`
	UserLimit     int         `json:"user_limit"`
	NSFW          bool        `json:"nsfw"`
	LastMessageID Snowflake   `json:"last_message_id"`
	OwnerID       Snowflake   `json:"owner_id"`
	Icon          string      `json:"icon"`
	Recipients    []*User     `json:"recipients"`

	// Guild is the owning guild for guild channels, nil for private ones.
	Guild *Guild `json:"-"`

	// VoiceMembers lists the members currently connected to a voice channel.
	VoiceMembers []*Member `json:"-"`
}

// Private reports whether the channel is a DM or group DM.
func (c *Channel) Private() bool {
	return c.Type == ChannelTypeDM || c.Type == ChannelTypeGroupDM
}

// Recipient returns the single counterpart of a DM channel, nil otherwise.
func (c *Channel) Recipient() *User {
	if c.Type != ChannelTypeDM || len(c.Recipients) == 0 {
		return nil
	}
	return c.Recipients[0]
}

// Clone returns a snapshot of the channel. Recipient and voice member
// lists are copied so the snapshot is stable against later mutation.
func (c *Channel) Clone() *Channel {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Recipients = append([]*User(nil), c.Recipients...)
	clone.VoiceMembers = append([]*Member(nil), c.VoiceMembers...)
	return &clone
}

// Update merges an incoming guild-channel record in place.
func (c *Channel) Update(data *Channel) {
	c.Type = data.Type
	c.Name = data.Name
	c.Topic = data.Topic
	c.Position = data.Position
	c.Bitrate = data.Bitrate
	c.UserLimit = data.UserLimit
	c.NSFW = data.NSFW
}

// UpdateGroup merges an incoming group-DM record in place. Group DMs have
// no owning guild; only the group-level fields move.
func (c *Channel) UpdateGroup(data *Channel) {
	c.Name = data.Name
	c.Icon = data.Icon
	c.OwnerID = data.OwnerID
}

// AddVoiceMember records a member joining the voice channel.
func (c *Channel) AddVoiceMember(m *Member) {
	for _, existing := range c.VoiceMembers {
		if existing.User.ID == m.User.ID {
			return
		}
	}
	c.VoiceMembers = append(c.VoiceMembers, m)
}

// RemoveVoiceMember removes a member from the voice channel participant
// list. Absence is not an error.
func (c *Channel) RemoveVoiceMember(userID Snowflake) {
	for i, existing := range c.VoiceMembers {
		if existing.User.ID == userID {
			c.VoiceMembers = append(c.VoiceMembers[:i], c.VoiceMembers[i+1:]...)
			return
		}
	}
}
