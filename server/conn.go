// Package server carries the TCP plumbing: the listener accept loop and
// the line-oriented connection handle the runtime engine writes to.
package server

import (
	"bufio"
	"net"
	"strings"
	"sync"
	"time"

	"chat-server/contract"

	"github.com/google/uuid"
)

var _ contract.Conn = (*LineConn)(nil)

// LineConn wraps a net.Conn as a stream of newline-delimited text lines.
//
// WriteLine is guarded by a per-connection mutex: the session goroutine
// that owns the connection writes its own replies while the router writes
// broadcasts on behalf of other sessions, and without the mutex those
// writes could interleave byte-wise on the socket. The optional write
// deadline bounds how long a stalled recipient can hold a writer.
type LineConn struct {
	id           string
	conn         net.Conn
	reader       *bufio.Reader
	writeMu      sync.Mutex
	writeTimeout time.Duration
}

func NewLineConn(conn net.Conn, writeTimeout time.Duration) *LineConn {
	return &LineConn{
		id:           uuid.NewString(),
		conn:         conn,
		reader:       bufio.NewReader(conn),
		writeTimeout: writeTimeout,
	}
}

// ReadLine blocks until a full line arrives. Only the owning session
// goroutine calls it. Any error, including a partial line before EOF, is
// treated by the caller as a disconnect.
func (c *LineConn) ReadLine() (string, error) {
	line, err := c.reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (c *LineConn) WriteLine(line string) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if c.writeTimeout > 0 {
		if err := c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout)); err != nil {
			return err
		}
	}
	_, err := c.conn.Write([]byte(line + "\n"))
	return err
}

func (c *LineConn) Close() error {
	return c.conn.Close()
}

func (c *LineConn) ID() string {
	return c.id
}

func (c *LineConn) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}
