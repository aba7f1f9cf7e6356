//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
)

// Conn abstracts one client's bidirectional byte stream as a stream of
// newline-delimited text lines. Implementations must make WriteLine safe
// for concurrent callers: the session goroutine that owns the connection
// and the router (writing on behalf of other sessions) share it.
type Conn interface {
	// ReadLine blocks until a full line arrives, the peer disconnects,
	// or the underlying connection is closed.
	ReadLine() (string, error)
	WriteLine(line string) error
	Close() error
	ID() string
	RemoteAddr() string
}

// IRegistry is the single shared-state domain of the server: the nickname
// directory and the channel membership sets, mutated together under one
// exclusive lock. Multi-step mutations (rename, unregister) are atomic:
// no caller ever observes a half-applied transition.
type IRegistry interface {
	Register(nickname string, conn Conn) error
	Rename(oldNick, newNick string, conn Conn) error
	Unregister(nickname string)
	Lookup(nickname string) (Conn, bool)
	Join(nickname, channel string)
	LeaveAll(nickname string)
	IsMember(nickname, channel string) bool
	Recipients(channel, excludeNick string) []Conn
	Members(channel string) []string
	Counts() (sessions, channels int)
}

// IRouter delivers messages best-effort. A failed write to a recipient is
// logged and swallowed; only a failed write to the sender's own connection
// is reported back, because it means that session is dead.
type IRouter interface {
	Broadcast(senderNick, channel, text string)
	SendPrivate(sender Conn, senderNick, targetNick, text string) error
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes, avoiding the need
// for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}
