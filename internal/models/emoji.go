package models

// Emoji represents either a custom guild emoji (non-zero ID) or a plain
// unicode emoji (ID zero, identified by Name alone).
type Emoji struct {
	ID            Snowflake   `json:"id"`
	Name          string      `json:"name"`
	GuildID       Snowflake   `json:"-"`
	RequireColons bool        `json:"require_colons"`
	Managed       bool        `json:"managed"`
	Roles         []Snowflake `json:"roles"`
}

// Custom reports whether this is a custom guild emoji.
func (e *Emoji) Custom() bool {
	return e.ID != 0
}

// Matches reports whether two emoji identify the same reaction row.
// Custom emoji compare by id, unicode emoji by name.
func (e *Emoji) Matches(other *Emoji) bool {
	if other == nil {
		return false
	}
	if e.ID != 0 || other.ID != 0 {
		return e.ID == other.ID
	}
	return e.Name == other.Name
}

// Clone returns a snapshot of the emoji.
func (e *Emoji) Clone() *Emoji {
	if e == nil {
		return nil
	}
	clone := *e
	clone.Roles = append([]Snowflake(nil), e.Roles...)
	return &clone
}
