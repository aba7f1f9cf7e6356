package runtime

import (
	"io"
	"log/slog"
	"testing"

	"chat-server/domain"

	"github.com/stretchr/testify/require"
)

// scriptedConn feeds a fixed sequence of input lines, then EOF.
type scriptedConn struct {
	fakeConn
	reads []string
	next  int
}

func newScriptedConn(id string, reads ...string) *scriptedConn {
	return &scriptedConn{fakeConn: fakeConn{id: id}, reads: reads}
}

func (c *scriptedConn) ReadLine() (string, error) {
	if c.next >= len(c.reads) {
		return "", io.EOF
	}
	line := c.reads[c.next]
	c.next++
	return line, nil
}

// runSession drives a full session over scripted input and returns the
// connection with everything the server wrote to it, banner stripped.
func runSession(t *testing.T, registry *Registry, conn *scriptedConn) []string {
	t.Helper()
	router := NewRouter(slog.Default(), registry, nil)
	loop := NewSessionLoop(slog.Default(), registry, router, conn)
	require.NoError(t, loop.Run())

	written := conn.written()
	banner := domain.Banner()
	require.GreaterOrEqual(t, len(written), len(banner))
	require.Equal(t, banner, written[:len(banner)])
	return written[len(banner):]
}

func TestSessionLoop_NicknameThenJoin(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newScriptedConn("c1", "/nick alice", "/join lobby")

	replies := runSession(t, registry, conn)

	req.Equal([]string{
		"Nickname set to 'alice'.",
		"You have joined channel 'lobby'.",
	}, replies)
}

func TestSessionLoop_CommandsBeforeNickname(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newScriptedConn("c1",
		"/join lobby",
		"/send lobby hi",
		"/pm bob hi",
	)

	replies := runSession(t, registry, conn)

	req.Equal([]string{
		"You must set a nickname before joining channels.",
		"You must set a nickname before sending messages.",
		"You must set a nickname before sending private messages.",
	}, replies)
}

func TestSessionLoop_EmptyArguments(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newScriptedConn("c1", "/nick ", "/join ")

	replies := runSession(t, registry, conn)

	req.Equal([]string{
		"Nickname cannot be empty.",
		"Channel name cannot be empty.",
	}, replies)
}

func TestSessionLoop_SendRequiresMembershipAtSendTime(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newScriptedConn("c1",
		"/nick alice",
		"/send lobby hi",
		"/send lobby",
	)

	replies := runSession(t, registry, conn)

	req.Equal([]string{
		"Nickname set to 'alice'.",
		"You must join channel 'lobby' before sending messages there.",
		"Usage: /send <channel> <message>",
	}, replies)
}

func TestSessionLoop_BroadcastReachesOtherMemberOnly(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	// Given bob is already a member of lobby
	bob := newFakeConn("c2")
	req.NoError(registry.Register("bob", bob))
	registry.Join("bob", "lobby")

	conn := newScriptedConn("c1", "/nick alice", "/join lobby", "/send lobby hi")
	replies := runSession(t, registry, conn)

	// Then bob received the broadcast and alice got no echo
	req.Equal([]string{"[Channel lobby] alice: hi"}, bob.written())
	req.Equal([]string{
		"Nickname set to 'alice'.",
		"You have joined channel 'lobby'.",
	}, replies)
}

func TestSessionLoop_UnknownCommand(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newScriptedConn("c1", "hello there")

	replies := runSession(t, registry, conn)

	req.Equal([]string{"Unknown command. Try /nick, /join, /send, /pm, or /quit."}, replies)
}

func TestSessionLoop_BlankLinesAreIgnored(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newScriptedConn("c1", "", "   ", "/nick alice")

	replies := runSession(t, registry, conn)

	req.Equal([]string{"Nickname set to 'alice'."}, replies)
}

func TestSessionLoop_QuitAcknowledgesAndCleansUp(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newScriptedConn("c1", "/nick alice", "/join lobby", "/quit")

	replies := runSession(t, registry, conn)

	req.Equal([]string{
		"Nickname set to 'alice'.",
		"You have joined channel 'lobby'.",
		"Disconnecting...",
	}, replies)

	// Then the nickname is free, memberships are purged, the handle closed
	_, ok := registry.Lookup("alice")
	req.False(ok)
	req.False(registry.IsMember("alice", "lobby"))
	req.True(conn.closed)
}

func TestSessionLoop_DisconnectWithoutQuitCleansUp(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newScriptedConn("c1", "/nick alice", "/join lobby")
	// EOF after the last scripted line simulates an abrupt disconnect.

	runSession(t, registry, conn)

	_, ok := registry.Lookup("alice")
	req.False(ok)
	sessions, channels := registry.Counts()
	req.Zero(sessions)
	req.Zero(channels)
	req.True(conn.closed)
}

func TestSessionLoop_RenameKeepsSingleIdentity(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newScriptedConn("c1", "/nick alice", "/join lobby", "/nick alicia")

	replies := runSession(t, registry, conn)

	req.Equal([]string{
		"Nickname set to 'alice'.",
		"You have joined channel 'lobby'.",
		"Nickname set to 'alicia'.",
	}, replies)

	// The old identity is gone everywhere after the session ends
	_, ok := registry.Lookup("alice")
	req.False(ok)
}

func TestSessionLoop_RenameToOwnNameIsRejected(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	conn := newScriptedConn("c1", "/nick alice", "/nick alice")

	replies := runSession(t, registry, conn)

	req.Equal([]string{
		"Nickname set to 'alice'.",
		"Nickname already taken. Try another one.",
	}, replies)
}

func TestSessionLoop_SecondClaimOfTakenNickname(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	req.NoError(registry.Register("eve", newFakeConn("c1")))

	conn := newScriptedConn("c2", "/nick eve")
	replies := runSession(t, registry, conn)

	req.Equal([]string{"Nickname already taken. Try another one."}, replies)
}
