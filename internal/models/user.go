package models

// User represents a Discord user identity. User objects are interned by
// the state cache and shared by reference across every guild, member and
// channel that references the same id.
type User struct {
	ID            Snowflake `json:"id"`
	Username      string    `json:"username"`
	Discriminator string    `json:"discriminator"`
	Avatar        string    `json:"avatar"`
	Bot           bool      `json:"bot"`
}

// Clone returns a shallow snapshot of the user.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

// Update merges the fields of an incoming user record in place.
func (u *User) Update(data *User) {
	u.Username = data.Username
	u.Discriminator = data.Discriminator
	u.Avatar = data.Avatar
	u.Bot = data.Bot
}

// Partial reports whether the record carries only an id, which happens in
// presence payloads for members that have already been removed.
func (u *User) Partial() bool {
	return u.Username == ""
}
