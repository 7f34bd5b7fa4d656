package state

import "github.com/parsascontentcorner/discordlitegateway/internal/models"

// MessageCache is the bounded message history buffer: an append-only
// ordered sequence of recently observed messages across all channels,
// evicting oldest-first at capacity.
type MessageCache struct {
	max   int
	items []*models.Message
}

// NewMessageCache creates a buffer holding at most max messages. Values
// below 100 are raised to 100.
func NewMessageCache(max int) *MessageCache {
	if max < minMessages {
		max = minMessages
	}
	return &MessageCache{max: max}
}

// Cap returns the configured capacity.
func (c *MessageCache) Cap() int {
	return c.max
}

// Len returns the number of buffered messages.
func (c *MessageCache) Len() int {
	return len(c.items)
}

// Append adds a message, evicting the oldest entry when at capacity.
func (c *MessageCache) Append(m *models.Message) {
	if len(c.items) >= c.max {
		drop := len(c.items) - c.max + 1
		c.items = append(c.items[:0], c.items[drop:]...)
	}
	c.items = append(c.items, m)
}

// Get returns the buffered message with the given id, nil if it has
// scrolled out or was never observed. The buffer is small enough that a
// linear scan is fine.
func (c *MessageCache) Get(id models.Snowflake) *models.Message {
	for _, m := range c.items {
		if m.ID == id {
			return m
		}
	}
	return nil
}

// Remove deletes the message with the given id and returns it, nil if
// absent. Relative order of the remainder is preserved.
func (c *MessageCache) Remove(id models.Snowflake) *models.Message {
	for i, m := range c.items {
		if m.ID == id {
			c.items = append(c.items[:i], c.items[i+1:]...)
			return m
		}
	}
	return nil
}

// RemoveIf deletes every message matching the predicate and returns the
// removed messages in buffer order.
func (c *MessageCache) RemoveIf(pred func(*models.Message) bool) []*models.Message {
	var removed []*models.Message
	kept := c.items[:0]
	for _, m := range c.items {
		if pred(m) {
			removed = append(removed, m)
		} else {
			kept = append(kept, m)
		}
	}
	c.items = kept
	return removed
}

// PurgeGuild rebuilds the buffer without the removed guild's messages,
// preserving capacity and the relative order of the remainder.
func (c *MessageCache) PurgeGuild(guildID models.Snowflake) {
	kept := make([]*models.Message, 0, len(c.items))
	for _, m := range c.items {
		if m.GuildID != guildID {
			kept = append(kept, m)
		}
	}
	c.items = kept
}

// All returns the buffered messages in arrival order.
func (c *MessageCache) All() []*models.Message {
	return append([]*models.Message(nil), c.items...)
}
