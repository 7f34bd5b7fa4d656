package models

// Role represents a guild role. A role is owned by exactly one guild.
type Role struct {
	ID          Snowflake `json:"id"`
	Name        string    `json:"name"`
	Color       int       `json:"color"`
	Hoist       bool      `json:"hoist"`
	Position    int       `json:"position"`
	Permissions int64     `json:"permissions,string"`
	Managed     bool      `json:"managed"`
	Mentionable bool      `json:"mentionable"`
}

// Clone returns a snapshot of the role.
func (r *Role) Clone() *Role {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}

// Update merges the fields of an incoming role record in place.
func (r *Role) Update(data *Role) {
	r.Name = data.Name
	r.Color = data.Color
	r.Hoist = data.Hoist
	r.Position = data.Position
	r.Permissions = data.Permissions
	r.Managed = data.Managed
	r.Mentionable = data.Mentionable
}
