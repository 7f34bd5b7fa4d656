package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/parsascontentcorner/discordlitegateway/internal/models"
	"github.com/parsascontentcorner/discordlitegateway/internal/state"
)

// route decodes one dispatch frame into its event record and invokes the
// matching reconciliation handler. Unknown event types are ignored.
func (c *Conn) route(ctx context.Context, eventType string, data json.RawMessage) error {
	c.logger.Debug("received dispatch event", zap.String("event_type", eventType))
	return routeEvent(ctx, c.state, eventType, data)
}

func routeEvent(ctx context.Context, s *state.State, eventType string, data json.RawMessage) error {
	switch eventType {
	case "READY":
		return decodeInto(eventType, data, func(p *models.Ready) { s.OnReady(ctx, p) })
	case "RESUMED":
		s.OnResumed()
		return nil

	case "MESSAGE_CREATE":
		return decodeInto(eventType, data, s.OnMessageCreate)
	case "MESSAGE_UPDATE":
		return decodeInto(eventType, data, s.OnMessageUpdate)
	case "MESSAGE_DELETE":
		return decodeInto(eventType, data, s.OnMessageDelete)
	case "MESSAGE_DELETE_BULK":
		return decodeInto(eventType, data, s.OnMessageDeleteBulk)
	case "MESSAGE_REACTION_ADD":
		return decodeInto(eventType, data, s.OnMessageReactionAdd)
	case "MESSAGE_REACTION_REMOVE":
		return decodeInto(eventType, data, s.OnMessageReactionRemove)
	case "MESSAGE_REACTION_REMOVE_ALL":
		return decodeInto(eventType, data, s.OnMessageReactionRemoveAll)

	case "PRESENCE_UPDATE":
		return decodeInto(eventType, data, s.OnPresenceUpdate)
	case "USER_UPDATE":
		return decodeInto(eventType, data, s.OnUserUpdate)
	case "TYPING_START":
		return decodeInto(eventType, data, s.OnTypingStart)

	case "CHANNEL_CREATE":
		return decodeInto(eventType, data, s.OnChannelCreate)
	case "CHANNEL_UPDATE":
		return decodeInto(eventType, data, s.OnChannelUpdate)
	case "CHANNEL_DELETE":
		return decodeInto(eventType, data, s.OnChannelDelete)
	case "CHANNEL_RECIPIENT_ADD":
		return decodeInto(eventType, data, s.OnChannelRecipientAdd)
	case "CHANNEL_RECIPIENT_REMOVE":
		return decodeInto(eventType, data, s.OnChannelRecipientRemove)

	case "GUILD_CREATE":
		return decodeInto(eventType, data, func(p *models.GuildData) { s.OnGuildCreate(ctx, p) })
	case "GUILD_UPDATE":
		return decodeInto(eventType, data, s.OnGuildUpdate)
	case "GUILD_DELETE":
		return decodeInto(eventType, data, s.OnGuildDelete)
	case "GUILD_SYNC":
		return decodeInto(eventType, data, s.OnGuildSync)
	case "GUILD_MEMBER_ADD":
		return decodeInto(eventType, data, s.OnGuildMemberAdd)
	case "GUILD_MEMBER_REMOVE":
		return decodeInto(eventType, data, s.OnGuildMemberRemove)
	case "GUILD_MEMBER_UPDATE":
		return decodeInto(eventType, data, s.OnGuildMemberUpdate)
	case "GUILD_MEMBERS_CHUNK":
		return decodeInto(eventType, data, s.OnGuildMembersChunk)
	case "GUILD_EMOJIS_UPDATE":
		return decodeInto(eventType, data, s.OnGuildEmojisUpdate)
	case "GUILD_BAN_ADD":
		return decodeInto(eventType, data, s.OnGuildBanAdd)
	case "GUILD_BAN_REMOVE":
		return decodeInto(eventType, data, s.OnGuildBanRemove)
	case "GUILD_ROLE_CREATE":
		return decodeInto(eventType, data, s.OnGuildRoleCreate)
	case "GUILD_ROLE_UPDATE":
		return decodeInto(eventType, data, s.OnGuildRoleUpdate)
	case "GUILD_ROLE_DELETE":
		return decodeInto(eventType, data, s.OnGuildRoleDelete)

	case "VOICE_STATE_UPDATE":
		return decodeInto(eventType, data, s.OnVoiceStateUpdate)

	case "CALL_CREATE":
		return decodeInto(eventType, data, s.OnCallCreate)
	case "CALL_UPDATE":
		return decodeInto(eventType, data, s.OnCallUpdate)
	case "CALL_DELETE":
		return decodeInto(eventType, data, s.OnCallDelete)

	default:
		return nil
	}
}

// decodeInto unmarshals an event body and hands it to a handler.
func decodeInto[T any](eventType string, data json.RawMessage, handle func(*T)) error {
	record := new(T)
	if err := json.Unmarshal(data, record); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", eventType, err)
	}
	handle(record)
	return nil
}
