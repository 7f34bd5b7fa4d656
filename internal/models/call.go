package models

// Call tracks a direct or group call, keyed in the state cache by the
// channel it runs in.
type Call struct {
	ChannelID   Snowflake
	MessageID   Snowflake
	Region      string
	Ringing     []Snowflake
	Unavailable bool

	voiceStates map[Snowflake]*VoiceState
}

// NewCall constructs a call from an incoming call record.
func NewCall(data *CallData) *Call {
	c := &Call{
		ChannelID:   data.ChannelID,
		MessageID:   data.MessageID,
		voiceStates: make(map[Snowflake]*VoiceState),
	}
	c.Update(data)
	for _, vs := range data.VoiceStates {
		c.voiceStates[vs.UserID] = vs.Clone()
	}
	return c
}

// Update merges an incoming call record in place.
func (c *Call) Update(data *CallData) {
	c.Region = data.Region
	c.Ringing = data.Ringing
	if data.Unavailable != nil {
		c.Unavailable = *data.Unavailable
	}
}

// UpdateVoiceState applies a voice state record for a call participant.
// A zero channel id removes the participant.
func (c *Call) UpdateVoiceState(data *VoiceState) {
	if data.ChannelID == 0 {
		delete(c.voiceStates, data.UserID)
		return
	}
	c.voiceStates[data.UserID] = data.Clone()
}

// VoiceStateFor returns the cached voice state for a participant, nil if
// the user is not connected.
func (c *Call) VoiceStateFor(userID Snowflake) *VoiceState {
	return c.voiceStates[userID]
}

// Connected returns how many participants are currently in the call.
func (c *Call) Connected() int {
	return len(c.voiceStates)
}

// Clone returns a shallow snapshot of the call for before/after dispatch.
func (c *Call) Clone() *Call {
	if c == nil {
		return nil
	}
	clone := *c
	clone.Ringing = append([]Snowflake(nil), c.Ringing...)
	return &clone
}
