package models

// VoiceState tracks one user's presence in a voice channel. A zero
// ChannelID means the user is not in voice.
type VoiceState struct {
	GuildID   Snowflake `json:"guild_id"`
	ChannelID Snowflake `json:"channel_id"`
	UserID    Snowflake `json:"user_id"`
	SessionID string    `json:"session_id"`
	Deaf      bool      `json:"deaf"`
	Mute      bool      `json:"mute"`
	SelfDeaf  bool      `json:"self_deaf"`
	SelfMute  bool      `json:"self_mute"`
	Suppress  bool      `json:"suppress"`
}

// Clone returns a snapshot of the voice state.
func (v *VoiceState) Clone() *VoiceState {
	if v == nil {
		return nil
	}
	clone := *v
	return &clone
}

// VoiceConn is the per-guild voice-client handle held by the state cache.
// The engine only tracks which channel the connection points at; actual
// audio transport lives elsewhere.
type VoiceConn struct {
	GuildID Snowflake
	Channel *Channel
}
