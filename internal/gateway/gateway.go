// Package gateway maintains the websocket connection to the Discord
// Gateway and feeds decoded event records into the state engine.
package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/parsascontentcorner/discordlitegateway/internal/models"
	"github.com/parsascontentcorner/discordlitegateway/internal/state"
)

const (
	// Gateway opcodes
	opDispatch            = 0  // Receive: Event dispatch
	opHeartbeat           = 1  // Send/Receive: Heartbeat
	opIdentify            = 2  // Send: Identify (begin session)
	opResume              = 6  // Send: Resume session
	opReconnect           = 7  // Receive: Reconnect
	opRequestGuildMembers = 8  // Send: Request guild members
	opInvalidSession      = 9  // Receive: Invalid session
	opHello               = 10 // Receive: Hello (heartbeat interval)
	opHeartbeatACK        = 11 // Receive: Heartbeat ACK
	opGuildSync           = 12 // Send: Legacy guild sync
)

// Conn is a connection to the Discord Gateway. It decodes frames, tracks
// the session, and routes dispatch events into the state engine. It also
// implements the engine's chunker and syncer collaborators.
type Conn struct {
	token      string
	gatewayURL string
	logger     *zap.Logger
	state      *state.State

	conn   *websocket.Conn
	connMu sync.RWMutex

	heartbeatInterval time.Duration
	lastHeartbeatAt   time.Time
	heartbeatMu       sync.RWMutex

	closeChan chan struct{}
	closeOnce sync.Once
}

// payload is a raw Gateway frame
type payload struct {
	Op int             `json:"op"`
	D  json.RawMessage `json:"d"`
	S  *int64          `json:"s"`
	T  *string         `json:"t"`
}

// helloPayload is the HELLO event data
type helloPayload struct {
	HeartbeatInterval int `json:"heartbeat_interval"`
}

// New creates a Gateway connection for the given bot or user token.
func New(token, gatewayURL string, logger *zap.Logger) *Conn {
	return &Conn{
		token:      token,
		gatewayURL: gatewayURL,
		logger:     logger,
		closeChan:  make(chan struct{}),
	}
}

// Bind attaches the state engine the connection feeds. It must be called
// before Connect; the engine in turn is constructed with this
// connection's RequestGuildMembers and RequestGuildSync as collaborators.
func (c *Conn) Bind(s *state.State) {
	c.state = s
}

// Connect establishes the connection and blocks until it closes or the
// context is cancelled.
func (c *Conn) Connect(ctx context.Context) error {
	c.logger.Info("connecting to gateway", zap.String("gateway_url", c.gatewayURL))

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.gatewayURL, nil)
	if err != nil {
		return fmt.Errorf("failed to dial gateway: %w", err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()

	go c.receiveLoop(ctx)

	select {
	case <-c.closeChan:
		c.logger.Info("gateway connection closed by signal")
	case <-ctx.Done():
		c.logger.Info("gateway connection closed by context")
		c.Close()
	}

	return nil
}

// receiveLoop processes incoming Gateway frames
func (c *Conn) receiveLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closeChan:
			return
		default:
		}

		c.connMu.RLock()
		conn := c.conn
		c.connMu.RUnlock()

		if conn == nil {
			return
		}

		_, message, err := conn.ReadMessage()
		if err != nil {
			c.logger.Error("failed to read gateway message", zap.Error(err))
			c.Close()
			return
		}

		var p payload
		if err := json.Unmarshal(message, &p); err != nil {
			c.logger.Error("failed to unmarshal gateway payload", zap.Error(err))
			continue
		}

		if p.S != nil {
			c.state.SetSequence(*p.S)
		}

		if err := c.handlePayload(ctx, &p); err != nil {
			c.logger.Error("failed to handle gateway payload",
				zap.Int("opcode", p.Op),
				zap.Error(err),
			)
		}
	}
}

// handlePayload processes a Gateway frame based on opcode
func (c *Conn) handlePayload(ctx context.Context, p *payload) error {
	switch p.Op {
	case opHello:
		return c.handleHello(ctx, p)

	case opHeartbeatACK:
		c.logger.Debug("received heartbeat ACK")
		c.updateHeartbeat()
		return nil

	case opDispatch:
		if p.T == nil {
			return fmt.Errorf("dispatch event missing event type")
		}
		return c.route(ctx, *p.T, p.D)

	case opHeartbeat:
		// The gateway may ask for an immediate beat.
		return c.sendHeartbeat()

	case opReconnect:
		c.logger.Warn("received reconnect request from gateway")
		c.Close()
		return nil

	case opInvalidSession:
		// Session cannot be resumed: drop all cached state before the
		// gateway replays a fresh READY.
		c.logger.Warn("received invalid session from gateway")
		c.state.Clear()
		return c.sendIdentify()

	default:
		c.logger.Debug("received unknown opcode", zap.Int("opcode", p.Op))
		return nil
	}
}

// handleHello starts the heartbeat loop and identifies.
func (c *Conn) handleHello(ctx context.Context, p *payload) error {
	var hello helloPayload
	if err := json.Unmarshal(p.D, &hello); err != nil {
		return fmt.Errorf("failed to unmarshal HELLO payload: %w", err)
	}

	c.heartbeatInterval = time.Duration(hello.HeartbeatInterval) * time.Millisecond
	c.logger.Info("received HELLO from gateway",
		zap.Duration("heartbeat_interval", c.heartbeatInterval),
	)

	go c.heartbeatLoop(ctx)

	return c.sendIdentify()
}

// sendIdentify begins the session.
func (c *Conn) sendIdentify() error {
	identify := map[string]any{
		"op": opIdentify,
		"d": map[string]any{
			"token": c.token,
			"properties": map[string]string{
				"$os":      "linux",
				"$browser": "discordlitegateway",
				"$device":  "discordlitegateway",
			},
			"compress":        false,
			"large_threshold": models.LargeThreshold,
		},
	}

	c.logger.Debug("sending IDENTIFY to gateway")
	return c.sendJSON(identify)
}

// RequestGuildMembers issues one outbound member-chunk request covering a
// batch of guilds. Completion means the request was written; the members
// themselves arrive later as GUILD_MEMBERS_CHUNK dispatches.
func (c *Conn) RequestGuildMembers(ctx context.Context, guilds []*models.Guild) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ids := make([]models.Snowflake, 0, len(guilds))
	for _, g := range guilds {
		ids = append(ids, g.ID)
	}

	c.logger.Debug("requesting guild members", zap.Int("guilds", len(ids)))
	return c.sendJSON(map[string]any{
		"op": opRequestGuildMembers,
		"d": map[string]any{
			"guild_id": ids,
			"query":    "",
			"limit":    0,
		},
	})
}

// RequestGuildSync issues the legacy bulk-sync request used by user-style
// sessions.
func (c *Conn) RequestGuildSync(ctx context.Context, guildIDs []models.Snowflake) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	c.logger.Debug("requesting guild sync", zap.Int("guilds", len(guildIDs)))
	return c.sendJSON(map[string]any{
		"op": opGuildSync,
		"d":  guildIDs,
	})
}

// heartbeatLoop sends periodic heartbeat frames
func (c *Conn) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(c.heartbeatInterval)
	defer ticker.Stop()

	c.logger.Info("started heartbeat loop",
		zap.Duration("interval", c.heartbeatInterval),
	)

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.closeChan:
			return
		case <-ticker.C:
			if err := c.sendHeartbeat(); err != nil {
				c.logger.Error("failed to send heartbeat", zap.Error(err))
				c.Close()
				return
			}
		}
	}
}

// sendHeartbeat sends a heartbeat carrying the last seen sequence
func (c *Conn) sendHeartbeat() error {
	seq := c.state.Sequence()

	c.logger.Debug("sending heartbeat", zap.Int64("sequence", seq))

	c.updateHeartbeat()
	return c.sendJSON(map[string]any{
		"op": opHeartbeat,
		"d":  seq,
	})
}

// sendJSON writes a frame to the gateway
func (c *Conn) sendJSON(v any) error {
	c.connMu.RLock()
	defer c.connMu.RUnlock()

	if c.conn == nil {
		return fmt.Errorf("connection is nil")
	}

	return c.conn.WriteJSON(v)
}

// Close closes the connection
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.closeChan)

		c.connMu.Lock()
		if c.conn != nil {
			c.conn.Close()
			c.conn = nil
		}
		c.connMu.Unlock()

		c.logger.Info("gateway connection closed")
	})
}

func (c *Conn) updateHeartbeat() {
	c.heartbeatMu.Lock()
	c.lastHeartbeatAt = time.Now()
	c.heartbeatMu.Unlock()
}

// IsStale checks if the connection has gone without a heartbeat for the
// given duration.
func (c *Conn) IsStale(staleDuration time.Duration) bool {
	c.heartbeatMu.RLock()
	lastHeartbeat := c.lastHeartbeatAt
	c.heartbeatMu.RUnlock()

	return time.Since(lastHeartbeat) > staleDuration
}
