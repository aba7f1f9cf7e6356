package runtime

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"chat-server/contract"
	"chat-server/domain"
	apperrors "chat-server/errors"
)

// SessionLoop drives one client connection from accept to close. It owns
// the connection handle, parses each input line into a command, mutates
// the registry, and hands deliveries to the router. The loop moves from
// unauthenticated to authenticated on the first successful /nick and ends
// on /quit, EOF, or a transport error — all three exits run the same
// cleanup, so a dead connection can never leave a nickname or a channel
// membership behind.
type SessionLoop struct {
	log      *slog.Logger
	registry contract.IRegistry
	router   contract.IRouter
	conn     contract.Conn
	session  domain.Session // zero Nickname while unauthenticated
}

func NewSessionLoop(log *slog.Logger, registry contract.IRegistry, router contract.IRouter, conn contract.Conn) *SessionLoop {
	return &SessionLoop{
		log:      log.With("conn", conn.ID(), "remote", conn.RemoteAddr()),
		registry: registry,
		router:   router,
		conn:     conn,
	}
}

// Run blocks until the session ends. It always returns nil: a transport
// failure is fatal to this connection only and must never bubble up as a
// server error.
func (s *SessionLoop) Run() error {
	defer s.cleanup()

	s.log.Info("Session started")
	for _, line := range domain.Banner() {
		if err := s.conn.WriteLine(line); err != nil {
			s.log.Debug("Connection lost during welcome banner", "error", err)
			return nil
		}
	}

	for {
		line, err := s.conn.ReadLine()
		if err != nil {
			// EOF, reset, or forced close. Never retried.
			s.log.Debug("Read failed, closing session", "error", err)
			return nil
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		closed, err := s.dispatch(domain.ParseCommand(line))
		if err != nil {
			// Our own connection refused a write: same exit as a read error.
			s.log.Debug("Write failed, closing session", "error", err)
			return nil
		}
		if closed {
			return nil
		}
	}
}

// dispatch executes one command. The returned error is always a write
// failure on this session's own connection; closed reports a /quit.
func (s *SessionLoop) dispatch(cmd domain.Command) (closed bool, err error) {
	switch c := cmd.(type) {
	case domain.Nick:
		return false, s.handleNick(c)
	case domain.Join:
		return false, s.handleJoin(c)
	case domain.Send:
		return false, s.handleSend(c)
	case domain.Private:
		return false, s.handlePrivate(c)
	case domain.Quit:
		return true, s.conn.WriteLine(domain.ReplyDisconnecting)
	case domain.Malformed:
		return false, s.conn.WriteLine(c.Usage)
	default:
		return false, s.conn.WriteLine(domain.ReplyUnknownCommand)
	}
}

func (s *SessionLoop) handleNick(cmd domain.Nick) error {
	if cmd.Name == "" {
		return s.conn.WriteLine(domain.ReplyNicknameEmpty)
	}

	var err error
	if s.authenticated() {
		err = s.registry.Rename(s.session.Nickname, cmd.Name, s.conn)
	} else {
		err = s.registry.Register(cmd.Name, s.conn)
	}
	if errors.Is(err, apperrors.ErrNicknameTaken) {
		return s.conn.WriteLine(domain.ReplyNicknameTaken)
	}

	previous := s.session.Nickname
	s.session = domain.NewSession(cmd.Name)
	if previous == "" {
		s.log.Info("Nickname claimed", "nickname", cmd.Name)
	} else {
		s.log.Info("Nickname changed", "from", previous, "to", cmd.Name)
	}
	return s.conn.WriteLine(domain.ReplyNicknameSet(cmd.Name))
}

func (s *SessionLoop) handleJoin(cmd domain.Join) error {
	if cmd.Channel == "" {
		return s.conn.WriteLine(domain.ReplyChannelEmpty)
	}
	if !s.authenticated() {
		return s.conn.WriteLine(domain.ReplyNickBeforeJoin)
	}

	s.registry.Join(s.session.Nickname, cmd.Channel)
	s.log.Debug("Joined channel", "nickname", s.session.Nickname, "channel", cmd.Channel)
	return s.conn.WriteLine(domain.ReplyChannelJoined(cmd.Channel))
}

func (s *SessionLoop) handleSend(cmd domain.Send) error {
	if !s.authenticated() {
		return s.conn.WriteLine(domain.ReplyNickBeforeSend)
	}
	// Membership is read now, at send time: a session that just left (or
	// was renamed) is rejected even if it was a member moments ago.
	if !s.registry.IsMember(s.session.Nickname, cmd.Channel) {
		return s.conn.WriteLine(domain.ReplyMustJoinChannel(cmd.Channel))
	}

	s.router.Broadcast(s.session.Nickname, cmd.Channel, cmd.Message)
	return nil
}

func (s *SessionLoop) handlePrivate(cmd domain.Private) error {
	if !s.authenticated() {
		return s.conn.WriteLine(domain.ReplyNickBeforePrivate)
	}
	return s.router.SendPrivate(s.conn, s.session.Nickname, cmd.Target, cmd.Message)
}

func (s *SessionLoop) authenticated() bool {
	return s.session.Nickname != ""
}

// cleanup runs on every exit path. Unregister removes the nickname and all
// channel memberships in one critical section, then the handle is
// released.
func (s *SessionLoop) cleanup() {
	if s.authenticated() {
		s.registry.Unregister(s.session.Nickname)
	}
	_ = s.conn.Close()
	s.log.Info(fmt.Sprintf("Session ended (%s)", s.conn.RemoteAddr()))
}
