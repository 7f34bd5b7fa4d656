package state

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/parsascontentcorner/discordlitegateway/internal/models"
)

// readyState is the transient record scoped to the initial handshake: a
// debounce gate plus the guilds still pending member chunking. It exists
// from the READY record until the handshake completes.
type readyState struct {
	mu       sync.Mutex
	launched bool
	guilds   []*models.Guild
}

func newReadyState() *readyState {
	return &readyState{}
}

// setGate arms the gate. The debounce loop arms it before each sleep;
// if nothing cleared it during the quiet period, collection is over.
func (rs *readyState) setGate() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.launched = true
}

// clearGate restarts the debounce timer; called whenever another large
// guild arrives while the handshake is collecting.
func (rs *readyState) clearGate() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.launched = false
}

func (rs *readyState) gateSet() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.launched
}

func (rs *readyState) append(g *models.Guild) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.guilds = append(rs.guilds, g)
}

func (rs *readyState) pending() []*models.Guild {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return append([]*models.Guild(nil), rs.guilds...)
}

// receiveChunk registers one chunk-class listener resolving when a member
// chunk for the guild is reconciled.
func (s *State) receiveChunk(guildID models.Snowflake) *Waiter {
	return s.listeners.register(listenerChunk, func(arg any) (bool, error) {
		guild, ok := arg.(*models.Guild)
		if !ok {
			return false, nil
		}
		return guild.ID == guildID, nil
	})
}

// chunksNeeded registers one chunk listener per expected member page:
// ceil(memberCount / 1000).
func (s *State) chunksNeeded(guild *models.Guild) []*Waiter {
	count := int(math.Ceil(float64(guild.MemberCount) / float64(membersPerChunk)))
	waiters := make([]*Waiter, 0, count)
	for i := 0; i < count; i++ {
		waiters = append(waiters, s.receiveChunk(guild.ID))
	}
	return waiters
}

// awaitChunks waits for all chunk listeners to settle, bounded by the
// given timeout. A timeout is logged and swallowed: partial member data
// is acceptable and never blocks the handshake.
func (s *State) awaitChunks(waiters []*Waiter, timeout time.Duration) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	for _, w := range waiters {
		select {
		case <-w.Done():
		case <-deadline.C:
			s.logger.Info("timed out waiting for member chunks",
				zap.Int("outstanding", len(waiters)),
				zap.Duration("timeout", timeout),
			)
			return
		}
	}
}

// delayReady runs the readiness handshake in the background, spawned once
// at the READY record. It debounces guild availability, requests member
// chunks for every pending large guild, optionally performs the legacy
// sync for user-style sessions, and finally emits the ready event.
func (s *State) delayReady(ctx context.Context, rs *readyState) {
	// Debounce: arm the gate and sleep; a large guild arriving during
	// the quiet period clears the gate and restarts the timer.
	for !rs.gateSet() {
		rs.setGate()
		select {
		case <-time.After(s.opts.GuildReadyQuietPeriod):
		case <-ctx.Done():
			return
		}
	}

	// Only the goroutine owning the live readyState proceeds; one left
	// over from a superseded handshake stops here. Discarding before the
	// snapshot also routes large guilds arriving from now on through the
	// independent chunk path instead of a pending list nobody reads again.
	if !s.discardReadyState(rs) {
		return
	}

	guilds := rs.pending()

	// Register every chunk listener before any request goes out so no
	// chunk record can race past an unarmed listener.
	var waiters []*Waiter
	for _, guild := range guilds {
		waiters = append(waiters, s.chunksNeeded(guild)...)
	}

	for i := 0; i < len(guilds); i += guildsPerChunkRequest {
		end := i + guildsPerChunkRequest
		if end > len(guilds) {
			end = len(guilds)
		}
		if err := s.chunker(ctx, guilds[i:end]); err != nil {
			s.logger.Warn("chunk request failed", zap.Error(err))
		}
	}

	if len(waiters) > 0 {
		s.awaitChunks(waiters, time.Duration(len(waiters))*s.opts.ChunkWait)
	}

	s.mu.Lock()
	isBot := s.isBot
	guildIDs := make([]models.Snowflake, 0, len(s.guilds))
	for id := range s.guilds {
		guildIDs = append(guildIDs, id)
	}
	s.mu.Unlock()

	if !isBot {
		s.logger.Info("requesting guild sync", zap.Int("guilds", len(guildIDs)))
		if err := s.syncer(ctx, guildIDs); err != nil {
			s.logger.Warn("guild sync request failed", zap.Error(err))
		}
	}

	s.dispatch("ready")
}

// discardReadyState destroys the handshake record if rs is still the
// active one and reports whether it was. A stale or repeated discard is
// a no-op, so a goroutine from a superseded handshake can never destroy
// its successor's record.
func (s *State) discardReadyState(rs *readyState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ready != rs {
		return false
	}
	s.ready = nil
	return true
}

// chunkAndDispatch is the independent chunk path for large guilds that
// arrive after the handshake completed: one request, a short bounded
// wait, then direct availability dispatch.
func (s *State) chunkAndDispatch(ctx context.Context, guild *models.Guild, unavailable *bool) {
	waiters := s.chunksNeeded(guild)

	if err := s.chunker(ctx, []*models.Guild{guild}); err != nil {
		s.logger.Warn("chunk request failed",
			zap.Int64("guild_id", int64(guild.ID)),
			zap.Error(err),
		)
	}

	if len(waiters) > 0 {
		s.awaitChunks(waiters, time.Duration(len(waiters))*time.Second)
	}

	if unavailable != nil && !*unavailable {
		s.dispatch("guild_available", guild)
	} else {
		s.dispatch("guild_join", guild)
	}
}
