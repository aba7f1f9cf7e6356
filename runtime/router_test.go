package runtime

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRouter_Broadcast_ExcludesSender(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	router := NewRouter(slog.Default(), registry, nil)
	alice := newFakeConn("c1")
	bob := newFakeConn("c2")
	carol := newFakeConn("c3")

	// Given three members of the same channel
	req.NoError(registry.Register("alice", alice))
	req.NoError(registry.Register("bob", bob))
	req.NoError(registry.Register("carol", carol))
	registry.Join("alice", "lobby")
	registry.Join("bob", "lobby")
	registry.Join("carol", "lobby")

	// When alice broadcasts
	router.Broadcast("alice", "lobby", "hi")

	// Then everyone but alice receives the formatted line
	req.Equal([]string{"[Channel lobby] alice: hi"}, bob.written())
	req.Equal([]string{"[Channel lobby] alice: hi"}, carol.written())
	req.Empty(alice.written())
}

func TestRouter_Broadcast_UnknownChannelIsSilent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	router := NewRouter(slog.Default(), registry, nil)
	alice := newFakeConn("c1")
	req.NoError(registry.Register("alice", alice))

	router.Broadcast("alice", "nowhere", "hi")

	req.Empty(alice.written())
}

func TestRouter_Broadcast_DeliveryFailureDoesNotAbortOthers(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	router := NewRouter(slog.Default(), registry, nil)
	alice := newFakeConn("c1")
	broken := newFakeConn("c2")
	broken.failing = true
	carol := newFakeConn("c3")

	req.NoError(registry.Register("alice", alice))
	req.NoError(registry.Register("bob", broken))
	req.NoError(registry.Register("carol", carol))
	registry.Join("alice", "lobby")
	registry.Join("bob", "lobby")
	registry.Join("carol", "lobby")

	// When one recipient's connection is broken
	router.Broadcast("alice", "lobby", "hi")

	// Then the healthy recipient still gets the message
	// And the sender is not informed of the failure
	req.Equal([]string{"[Channel lobby] alice: hi"}, carol.written())
	req.Empty(alice.written())
}

func TestRouter_SendPrivate_DeliversToTarget(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	router := NewRouter(slog.Default(), registry, nil)
	alice := newFakeConn("c1")
	bob := newFakeConn("c2")
	req.NoError(registry.Register("alice", alice))
	req.NoError(registry.Register("bob", bob))

	err := router.SendPrivate(alice, "alice", "bob", "psst")

	req.NoError(err)
	req.Equal([]string{"[Private] alice: psst"}, bob.written())
	req.Empty(alice.written())
}

func TestRouter_SendPrivate_UnknownTargetRepliesToSender(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	router := NewRouter(slog.Default(), registry, nil)
	alice := newFakeConn("c1")
	req.NoError(registry.Register("alice", alice))

	err := router.SendPrivate(alice, "alice", "ghost", "hello")

	req.NoError(err)
	req.Equal([]string{"User 'ghost' not found."}, alice.written())
}

func TestRouter_SendPrivate_SenderWriteFailureIsSurfaced(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	router := NewRouter(slog.Default(), registry, nil)
	alice := newFakeConn("c1")
	alice.failing = true
	req.NoError(registry.Register("alice", alice))

	// When the "not found" reply can't be written to the sender itself
	err := router.SendPrivate(alice, "alice", "ghost", "hello")

	// Then the failure is reported so the session loop can tear down
	req.Error(err)
}

func TestRouter_SendPrivate_TargetWriteFailureIsSwallowed(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	router := NewRouter(slog.Default(), registry, nil)
	alice := newFakeConn("c1")
	broken := newFakeConn("c2")
	broken.failing = true
	req.NoError(registry.Register("alice", alice))
	req.NoError(registry.Register("bob", broken))

	err := router.SendPrivate(alice, "alice", "bob", "psst")

	req.NoError(err)
	req.Empty(alice.written())
}
