package models

import "time"

// Member is a (guild, user) pairing. The same user may be a distinct
// member object in every guild they share with the session.
type Member struct {
	User     *User
	GuildID  Snowflake
	Nick     string
	JoinedAt time.Time
	Deaf     bool
	Mute     bool

	// Roles is kept sorted ascending by id and always contains the
	// guild's default role.
	Roles []*Role

	Status string
	Game   *Activity
}

// Activity is the game or status activity attached to a presence.
type Activity struct {
	Name string `json:"name"`
	Type int    `json:"type"`
	URL  string `json:"url"`
}

// Clone returns a snapshot of the member. The role list is copied so the
// snapshot survives later role changes.
func (m *Member) Clone() *Member {
	if m == nil {
		return nil
	}
	clone := *m
	clone.Roles = append([]*Role(nil), m.Roles...)
	return &clone
}

// ApplyPresence merges an incoming presence record in place. When the
// payload carries a full user record the shared user object is refreshed
// as well.
func (m *Member) ApplyPresence(data *PresenceData) {
	m.Status = data.Status
	m.Game = data.Game
	if data.User != nil && !data.User.Partial() {
		m.User.Update(data.User)
	}
}
