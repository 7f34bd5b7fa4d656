package models

import "time"

// Message represents a cached chat message owned by the bounded history
// buffer.
type Message struct {
	ID              Snowflake
	ChannelID       Snowflake
	GuildID         Snowflake
	Author          *User
	Content         string
	Timestamp       time.Time
	EditedTimestamp time.Time
	TTS             bool
	MentionEveryone bool
	Pinned          bool
	Embeds          []Embed
	Attachments     []*Attachment
	Reactions       []*Reaction
	Call            *CallMessage

	// Channel is the resolved channel the message was observed in, nil
	// when the channel was never cached.
	Channel *Channel
}

// Embed is a message embed. Only the fields the cache needs to carry
// through edits are modeled.
type Embed struct {
	Title       string `json:"title"`
	Type        string `json:"type"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

// Attachment represents a message attachment
type Attachment struct {
	ID          Snowflake `json:"id"`
	Filename    string    `json:"filename"`
	Size        int       `json:"size"`
	URL         string    `json:"url"`
	ProxyURL    string    `json:"proxy_url"`
	Height      *int      `json:"height"`
	Width       *int      `json:"width"`
	ContentType string    `json:"content_type"`
}

// CallMessage carries the call state attached to a call system message.
type CallMessage struct {
	Participants   []Snowflake `json:"participants"`
	EndedTimestamp *time.Time  `json:"ended_timestamp"`
}

// Clone returns a snapshot of the message for before/after dispatch. The
// reaction list is copied so the snapshot is stable against later
// reaction churn.
func (m *Message) Clone() *Message {
	if m == nil {
		return nil
	}
	clone := *m
	clone.Reactions = append([]*Reaction(nil), m.Reactions...)
	return &clone
}

// Update applies a full field merge from an incoming message record.
func (m *Message) Update(data *MessageData) {
	if data.Content != nil {
		m.Content = *data.Content
	}
	if data.EditedTimestamp != nil {
		m.EditedTimestamp = *data.EditedTimestamp
	}
	m.TTS = data.TTS
	m.MentionEveryone = data.MentionEveryone
	m.Pinned = data.Pinned
	if data.Embeds != nil {
		m.Embeds = data.Embeds
	}
}

// ApplyEmbeds replaces only the embed list, for content-less edits.
func (m *Message) ApplyEmbeds(embeds []Embed) {
	m.Embeds = embeds
}

// ApplyCall merges an incoming call-state patch into the message.
func (m *Message) ApplyCall(data *CallMessage) {
	if m.Call == nil {
		m.Call = &CallMessage{}
	}
	m.Call.Participants = data.Participants
	m.Call.EndedTimestamp = data.EndedTimestamp
}

// Reaction aggregates the count for one (message, emoji) pair and whether
// the session user participated.
type Reaction struct {
	Emoji *Emoji
	Count int
	Me    bool
}

// Clone returns a snapshot of the reaction.
func (r *Reaction) Clone() *Reaction {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}
