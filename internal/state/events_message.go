package state

import (
	"time"

	"go.uber.org/zap"

	"github.com/parsascontentcorner/discordlitegateway/internal/models"
)

// OnMessageCreate appends the message to the history buffer and hands it
// downstream.
func (s *State) OnMessageCreate(data *models.MessageData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	channel := s.channel(data.ChannelID)
	message := s.newMessage(channel, data)
	s.dispatch("message", message)
	s.messages.Append(message)
}

// OnMessageDelete removes the message from the buffer if it is still
// there. A delete for a message that scrolled out is a no-op.
func (s *State) OnMessageDelete(data *models.MessageDelete) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if removed := s.messages.Remove(data.ID); removed != nil {
		s.dispatch("message_delete", removed)
	}
}

// OnMessageDeleteBulk removes every listed message still buffered,
// dispatching one delete per message.
func (s *State) OnMessageDeleteBulk(data *models.MessageDeleteBulk) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids := make(map[models.Snowflake]struct{}, len(data.IDs))
	for _, id := range data.IDs {
		ids[id] = struct{}{}
	}

	removed := s.messages.RemoveIf(func(m *models.Message) bool {
		_, ok := ids[m.ID]
		return ok
	})
	for _, m := range removed {
		s.dispatch("message_delete", m)
	}
}

// OnMessageUpdate applies one of three merge policies: a call-state
// patch, an embed-only patch when the record lacks a content field, or a
// full field merge. The previous and new snapshots are dispatched as a
// pair.
func (s *State) OnMessageUpdate(data *models.MessageData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	message := s.messages.Get(data.ID)
	if message == nil {
		return
	}

	before := message.Clone()
	switch {
	case data.Call != nil:
		message.ApplyCall(data.Call)
	case data.Content == nil:
		message.ApplyEmbeds(data.Embeds)
	default:
		message.Update(data)
	}

	s.dispatch("message_edit", before, message)
}

// OnMessageReactionAdd increments the reaction row for the (message,
// emoji) pair, materializing it on first occurrence. A reaction on a
// message that scrolled out of the buffer is skipped.
func (s *State) OnMessageReactionAdd(data *models.MessageReactionAdd) {
	s.mu.Lock()
	defer s.mu.Unlock()

	message := s.messages.Get(data.MessageID)
	if message == nil {
		return
	}

	emoji := s.reactionEmoji(data.Emoji)
	reaction := findReaction(message.Reactions, emoji)
	isMe := s.isSelf(data.UserID)

	if reaction == nil {
		reaction = &models.Reaction{Emoji: emoji, Count: 1, Me: isMe}
		message.Reactions = append(message.Reactions, reaction)
	} else {
		reaction.Count++
		if isMe {
			reaction.Me = true
		}
	}

	channel := s.channel(data.ChannelID)
	s.dispatch("reaction_add", reaction, s.memberFor(channel, data.UserID))
}

// OnMessageReactionRemove decrements the reaction row, dropping it at
// zero. Removal notifications may arrive duplicated or out of order
// relative to adds, so a remove with no matching row is logged and
// ignored.
func (s *State) OnMessageReactionRemove(data *models.MessageReactionRemove) {
	s.mu.Lock()
	defer s.mu.Unlock()

	message := s.messages.Get(data.MessageID)
	if message == nil {
		return
	}

	emoji := s.reactionEmoji(data.Emoji)
	reaction := findReaction(message.Reactions, emoji)
	if reaction == nil {
		s.logger.Warn("unexpected reaction remove",
			zap.Int64("message_id", int64(data.MessageID)),
			zap.String("emoji", emoji.Name),
		)
		return
	}

	reaction.Count--
	if s.isSelf(data.UserID) {
		reaction.Me = false
	}
	// Message records may carry zero-count reaction aggregates, so the
	// decrement can land below zero; the row goes either way.
	if reaction.Count <= 0 {
		for i, r := range message.Reactions {
			if r == reaction {
				message.Reactions = append(message.Reactions[:i], message.Reactions[i+1:]...)
				break
			}
		}
	}

	channel := s.channel(data.ChannelID)
	s.dispatch("reaction_remove", reaction, s.memberFor(channel, data.UserID))
}

// OnMessageReactionRemoveAll clears every reaction on the message and
// dispatches the previous set.
func (s *State) OnMessageReactionRemoveAll(data *models.MessageReactionRemoveAll) {
	s.mu.Lock()
	defer s.mu.Unlock()

	message := s.messages.Get(data.MessageID)
	if message == nil {
		return
	}

	before := append([]*models.Reaction(nil), message.Reactions...)
	message.Reactions = nil
	s.dispatch("reaction_clear", message, before)
}

// OnTypingStart resolves who is typing where and dispatches the
// indicator with its timestamp.
func (s *State) OnTypingStart(data *models.TypingStart) {
	s.mu.Lock()
	defer s.mu.Unlock()

	channel := s.channel(data.ChannelID)
	if channel == nil {
		return
	}

	var member any
	switch channel.Type {
	case models.ChannelTypeDM:
		member = channel.Recipient()
	case models.ChannelTypeGroupDM:
		for _, r := range channel.Recipients {
			if r.ID == data.UserID {
				member = r
				break
			}
		}
	default:
		if channel.Guild != nil {
			if m := channel.Guild.Member(data.UserID); m != nil {
				member = m
			}
		}
	}

	if member != nil {
		s.dispatch("typing", channel, member, time.Unix(data.Timestamp, 0).UTC())
	}
}

// OnCallCreate caches a new call keyed by its channel. The call message
// must still be buffered; otherwise the record is skipped.
func (s *State) OnCallCreate(data *models.CallData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if message := s.messages.Get(data.MessageID); message == nil {
		return
	}

	call := models.NewCall(data)
	s.calls[data.ChannelID] = call
	s.dispatch("call", call)
}

// OnCallUpdate merges call fields and dispatches before/after snapshots.
func (s *State) OnCallUpdate(data *models.CallData) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := s.calls[data.ChannelID]
	if call == nil {
		return
	}

	before := call.Clone()
	call.Update(data)
	s.dispatch("call_update", before, call)
}

// OnCallDelete evicts the ended call.
func (s *State) OnCallDelete(data *models.CallDelete) {
	s.mu.Lock()
	defer s.mu.Unlock()

	call := s.calls[data.ChannelID]
	if call == nil {
		return
	}
	delete(s.calls, data.ChannelID)
	s.dispatch("call_remove", call)
}

func findReaction(reactions []*models.Reaction, emoji *models.Emoji) *models.Reaction {
	for _, r := range reactions {
		if r.Emoji.Matches(emoji) {
			return r
		}
	}
	return nil
}
