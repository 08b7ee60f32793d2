package app

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/linguamates/callrelay/internal/core"
	"github.com/linguamates/callrelay/internal/domain"
)

// Coordinator owns all room-membership transitions and the presence
// broadcasts they produce. Membership mutation and its notification run
// under one mutex, so every member of a room observes presence updates
// in the same order as the joins and leaves that caused them.
//
// Delivery goes through a ConnectionSink and is fire-and-forget: a full
// buffer or a vanished connection drops the frame, and the WebRTC layer
// above is expected to renegotiate.
type Coordinator struct {
	mu      sync.Mutex
	reg     *Registry
	sink    core.ConnectionSink
	metrics *Metrics
	users   map[domain.SocketID]string
}

func NewCoordinator(reg *Registry, sink core.ConnectionSink, m *Metrics) *Coordinator {
	return &Coordinator{
		reg:     reg,
		sink:    sink,
		metrics: m,
		users:   make(map[domain.SocketID]string),
	}
}

// Registry exposes read-only occupancy for the ops endpoint.
func (c *Coordinator) Registry() *Registry { return c.reg }

// Join adds sid to room and broadcasts the new membership. A socket
// holds at most one room: joining a second room leaves the first, with
// its own presence update, before entering the new one.
func (c *Coordinator) Join(room domain.RoomID, sid domain.SocketID, userID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if prev, ok := c.reg.RoomOf(sid); ok && prev != room {
		c.leaveLocked(prev, sid)
	}

	if userID != "" {
		c.users[sid] = userID
	}
	members, count := c.reg.Join(room, sid)
	log.Info().Str("module", "app.coordinator").Str("room", string(room)).Str("sid", string(sid)).Str("user", userID).Int("count", count).Msg("joined call")

	c.broadcast(members, core.ParticipantUpdate{
		Type:         core.EventParticipantUpdate,
		Participants: members,
		Count:        count,
	})
	c.syncGauges()
}

// Leave removes sid from room and, if anyone remains, broadcasts the
// shrunk membership. Leaving a room one is not in is a no-op.
func (c *Coordinator) Leave(room domain.RoomID, sid domain.SocketID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.leaveLocked(room, sid)
	c.syncGauges()
}

// Disconnect is the transport-level goodbye: whatever room the socket
// was in, leave it.
func (c *Coordinator) Disconnect(sid domain.SocketID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if room, ok := c.reg.RoomOf(sid); ok {
		c.leaveLocked(room, sid)
	}
	delete(c.users, sid)
	c.syncGauges()
}

func (c *Coordinator) leaveLocked(room domain.RoomID, sid domain.SocketID) {
	members, exists := c.reg.Leave(room, sid)
	log.Info().Str("module", "app.coordinator").Str("room", string(room)).Str("sid", string(sid)).Bool("room_alive", exists).Msg("left call")
	if !exists {
		return
	}
	c.broadcast(members, core.ParticipantUpdate{
		Type:         core.EventParticipantUpdate,
		Participants: members,
		Count:        len(members),
	})
}

// RelaySignal forwards an opaque WebRTC payload. With a target it is
// unicast to that member only; otherwise it fans out to every member of
// the room except the sender. Signals for rooms or targets that no
// longer exist are dropped silently.
func (c *Coordinator) RelaySignal(room domain.RoomID, from domain.SocketID, signal json.RawMessage, target domain.SocketID) {
	out := core.SignalOut{Type: core.EventCallSignal, FromSocketID: from, Signal: signal}

	if target != "" {
		if !c.reg.Contains(room, target) {
			log.Debug().Str("module", "app.coordinator").Str("room", string(room)).Str("target", string(target)).Msg("signal target gone, dropped")
			return
		}
		c.send(target, out)
		c.metrics.Signals.Inc()
		return
	}

	sent := 0
	for _, sid := range c.reg.Members(room) {
		if sid == from {
			continue
		}
		c.send(sid, out)
		sent++
	}
	if sent > 0 {
		c.metrics.Signals.Inc()
	}
}

// RelayMessage broadcasts an in-call chat line to everyone else in the
// room, with the same best-effort semantics as signaling.
func (c *Coordinator) RelayMessage(room domain.RoomID, from domain.SocketID, message string) {
	out := core.MessageOut{Type: core.EventCallMessage, FromSocketID: from, Message: message}
	for _, sid := range c.reg.Members(room) {
		if sid == from {
			continue
		}
		c.send(sid, out)
	}
}

// BroadcastTranslation delivers a finished transcript/translation pair
// to the whole room, the speaker included (both sides see subtitles).
func (c *Coordinator) BroadcastTranslation(room domain.RoomID, t core.Translation) {
	for _, sid := range c.reg.Members(room) {
		c.send(sid, t)
	}
}

// NotifySegmentError tells only the originating participant that their
// segment failed. Other members never see it.
func (c *Coordinator) NotifySegmentError(sid domain.SocketID, msg string) {
	c.send(sid, core.TranslationError{Type: core.EventTranslationError, Error: msg})
}

func (c *Coordinator) broadcast(members []domain.SocketID, v any) {
	for _, sid := range members {
		c.send(sid, v)
	}
}

func (c *Coordinator) send(sid domain.SocketID, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "app.coordinator").Msg("marshal outbound event")
		return
	}
	if err := c.sink.TrySend(sid, b); err != nil {
		log.Debug().Err(err).Str("module", "app.coordinator").Str("sid", string(sid)).Msg("dropped outbound event")
	}
}

func (c *Coordinator) syncGauges() {
	c.metrics.OpenRooms.Set(float64(c.reg.RoomCount()))
	c.metrics.Participants.Set(float64(c.reg.ParticipantCount()))
}
