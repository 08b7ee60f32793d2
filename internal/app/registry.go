package app

import (
	"sort"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/linguamates/callrelay/internal/domain"
)

// Registry is the process-wide map from room id to the set of connected
// sockets. A room exists here iff its set is non-empty: the entry is
// created on first join and deleted when the last socket leaves, so
// abandoned calls cannot grow the map.
//
// A socket belongs to at most one room at a time; the coordinator
// leaves the old room before joining a new one. The registry is
// injectable state, not a package global, so tests own their instance.
type Registry struct {
	mu     sync.RWMutex
	rooms  map[domain.RoomID]map[domain.SocketID]struct{}
	roomOf map[domain.SocketID]domain.RoomID
}

func NewRegistry() *Registry {
	return &Registry{
		rooms:  make(map[domain.RoomID]map[domain.SocketID]struct{}),
		roomOf: make(map[domain.SocketID]domain.RoomID),
	}
}

// Join idempotently adds sid to the room, creating it if absent, and
// returns the resulting membership snapshot.
func (r *Registry) Join(room domain.RoomID, sid domain.SocketID) ([]domain.SocketID, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.rooms[room]
	if !ok {
		set = make(map[domain.SocketID]struct{})
		r.rooms[room] = set
	}
	set[sid] = struct{}{}
	r.roomOf[sid] = room
	log.Debug().Str("module", "app.registry").Str("room", string(room)).Str("sid", string(sid)).Int("count", len(set)).Msg("join")
	return snapshot(set), len(set)
}

// Leave removes sid from the room and deletes the entry when the set
// becomes empty. Leaving a room one is not in, or a room that does not
// exist, is a no-op, not an error. The second return reports whether
// the room still exists afterwards.
func (r *Registry) Leave(room domain.RoomID, sid domain.SocketID) (members []domain.SocketID, exists bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	set, ok := r.rooms[room]
	if !ok {
		return nil, false
	}
	delete(set, sid)
	if r.roomOf[sid] == room {
		delete(r.roomOf, sid)
	}
	if len(set) == 0 {
		delete(r.rooms, room)
		log.Debug().Str("module", "app.registry").Str("room", string(room)).Msg("room deleted")
		return nil, false
	}
	log.Debug().Str("module", "app.registry").Str("room", string(room)).Str("sid", string(sid)).Int("count", len(set)).Msg("leave")
	return snapshot(set), true
}

// Members returns the current set, empty if the room does not exist.
func (r *Registry) Members(room domain.RoomID) []domain.SocketID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return snapshot(r.rooms[room])
}

// Contains reports whether sid is currently a member of room.
func (r *Registry) Contains(room domain.RoomID, sid domain.SocketID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.rooms[room][sid]
	return ok
}

// RoomOf returns the room sid currently belongs to, if any.
func (r *Registry) RoomOf(sid domain.SocketID) (domain.RoomID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.roomOf[sid]
	return room, ok
}

// RoomCount is the number of live rooms.
func (r *Registry) RoomCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// ParticipantCount is the number of sockets joined to any room.
func (r *Registry) ParticipantCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.roomOf)
}

// RoomInfo is a read-only occupancy view for the ops endpoint.
type RoomInfo struct {
	Room  domain.RoomID `json:"room"`
	Count int           `json:"count"`
}

func (r *Registry) List() []RoomInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RoomInfo, 0, len(r.rooms))
	for room, set := range r.rooms {
		out = append(out, RoomInfo{Room: room, Count: len(set)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Room < out[j].Room })
	return out
}

func snapshot(set map[domain.SocketID]struct{}) []domain.SocketID {
	out := make([]domain.SocketID, 0, len(set))
	for sid := range set {
		out = append(out, sid)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
