// Package runtime is the engine of the chat server: the shared
// session/channel registry, the message router, and the per-connection
// session loop. It contains no transport code beyond writing lines to
// already-established connection handles.
package runtime

import (
	"sort"
	"sync"

	"chat-server/contract"
	"chat-server/errors"

	"github.com/samber/lo"
)

type Set map[string]struct{}

// Registry owns the two maps every session goroutine touches: the nickname
// directory and the channel membership sets. A single mutex guards both,
// because rename and send-time membership checks span the two structures
// and must be atomic; one lock per map would allow a reader to observe a
// half-applied rename.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]contract.Conn // nickname -> connection handle (non-owning)
	channels map[string]Set           // channel name -> member nicknames
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[string]contract.Conn),
		channels: make(map[string]Set),
	}
}

// Register claims a nickname with an atomic check-and-insert. On
// ErrNicknameTaken nothing changes.
func (r *Registry) Register(nickname string, conn contract.Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.sessions[nickname]; taken {
		return errors.ErrNicknameTaken
	}
	r.sessions[nickname] = conn
	return nil
}

// Rename atomically replaces oldNick with newNick. The old nickname is
// removed from the directory and from every channel; memberships do not
// carry over to the new name. Renaming to any nickname currently present
// in the directory fails, including the caller's own: the claim check runs
// before the removal, so a session asking for the name it already holds
// gets ErrNicknameTaken and no state changes. Concurrent readers see
// either the old name or the new one, never both and never neither.
func (r *Registry) Rename(oldNick, newNick string, conn contract.Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.sessions[newNick]; taken {
		return errors.ErrNicknameTaken
	}
	delete(r.sessions, oldNick)
	r.leaveAllLocked(oldNick)
	r.sessions[newNick] = conn
	return nil
}

// Unregister removes the session and purges its channel memberships in one
// critical section. Idempotent: unknown nicknames are a no-op.
func (r *Registry) Unregister(nickname string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, nickname)
	r.leaveAllLocked(nickname)
}

func (r *Registry) Lookup(nickname string) (contract.Conn, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.sessions[nickname]
	return conn, ok
}

// Join adds the nickname to the channel, creating the channel on first
// use. Joining a channel twice is a no-op.
func (r *Registry) Join(nickname, channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.channels[channel]; !ok {
		r.channels[channel] = make(Set)
	}
	r.channels[channel][nickname] = struct{}{}
}

// LeaveAll removes the nickname from every channel's member set. Used on
// disconnect and rename.
func (r *Registry) LeaveAll(nickname string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.leaveAllLocked(nickname)
}

// leaveAllLocked must be called with r.mu held. Channels left with no
// members are removed entirely so the channel map cannot grow without
// bound over the server's lifetime.
func (r *Registry) leaveAllLocked(nickname string) {
	for name, members := range r.channels {
		delete(members, nickname)
		if len(members) == 0 {
			delete(r.channels, name)
		}
	}
}

// IsMember reports channel membership at call time. The session loop calls
// this on every /send: membership is enforced when the message is sent,
// not when the channel was joined.
func (r *Registry) IsMember(nickname, channel string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.channels[channel]
	if !ok {
		return false
	}
	_, ok = members[nickname]
	return ok
}

// Recipients resolves the connection handles of every channel member
// except excludeNick. The lookup runs under the lock; the returned slice
// is a copy, so callers write to the handles outside the critical section
// and a slow recipient never stalls registry operations.
// Returns nil if the channel doesn't exist.
func (r *Registry) Recipients(channel, excludeNick string) []contract.Conn {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.channels[channel]
	if !ok {
		return nil
	}
	var conns []contract.Conn
	for nickname := range members {
		if nickname == excludeNick {
			continue
		}
		if conn, exists := r.sessions[nickname]; exists {
			conns = append(conns, conn)
		}
	}
	return conns
}

// Members returns the channel's member nicknames, sorted for stable
// logging and assertions.
func (r *Registry) Members(channel string) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	members, ok := r.channels[channel]
	if !ok {
		return nil
	}
	names := lo.Keys(members)
	sort.Strings(names)
	return names
}

// Counts reports the number of active sessions and live channels, for
// telemetry.
func (r *Registry) Counts() (sessions, channels int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.sessions), len(r.channels)
}
