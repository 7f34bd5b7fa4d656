// Package models defines the in-memory entity types mirrored from the
// Discord gateway: users, guilds, members, channels, roles, emoji,
// messages, reactions and calls.
package models

import (
	"bytes"
	"strconv"
)

// Snowflake is a Discord entity id. The gateway transmits ids as decimal
// strings; they are numeric and globally unique.
type Snowflake int64

// UnmarshalJSON accepts both string-encoded and bare numeric ids.
// A JSON null decodes to zero.
func (s *Snowflake) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if bytes.Equal(data, []byte("null")) {
		*s = 0
		return nil
	}

	id, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return err
	}

	*s = Snowflake(id)
	return nil
}

// MarshalJSON encodes the id as a decimal string, matching the wire format.
func (s Snowflake) MarshalJSON() ([]byte, error) {
	return []byte(`"` + strconv.FormatInt(int64(s), 10) + `"`), nil
}

// String returns the decimal representation of the id.
func (s Snowflake) String() string {
	return strconv.FormatInt(int64(s), 10)
}
