package domain

import "strings"

// Command is one parsed client line. Every non-blank line maps to exactly
// one Command value; parsing never fails, malformed input yields Malformed
// or Unknown so the session loop can answer with the right error line.
type Command interface {
	Keyword() string
}

type Nick struct {
	Name string // trimmed, may be empty (rejected by the session loop)
}

type Join struct {
	Channel string
}

type Send struct {
	Channel string
	Message string
}

type Private struct {
	Target  string
	Message string
}

type Quit struct{}

// Malformed covers /send and /pm lines missing their message part.
type Malformed struct {
	Usage string
}

type Unknown struct {
	Line string
}

func (Nick) Keyword() string      { return "/nick" }
func (Join) Keyword() string      { return "/join" }
func (Send) Keyword() string      { return "/send" }
func (Private) Keyword() string   { return "/pm" }
func (Quit) Keyword() string      { return "/quit" }
func (Malformed) Keyword() string { return "malformed" }
func (Unknown) Keyword() string   { return "unknown" }

// ParseCommand maps one already-trimmed, non-empty line to a Command.
//
// The shapes mirror the wire protocol exactly: a keyword without its
// argument separator ("/nick" alone) is an unknown command, and /send or
// /pm with fewer than three space-separated parts is malformed. The
// message part keeps its inner spacing untouched.
func ParseCommand(line string) Command {
	switch {
	case strings.HasPrefix(line, "/nick "):
		return Nick{Name: strings.TrimSpace(line[len("/nick "):])}

	case strings.HasPrefix(line, "/join "):
		return Join{Channel: strings.TrimSpace(line[len("/join "):])}

	case strings.HasPrefix(line, "/send "):
		parts := strings.SplitN(line, " ", 3)
		if len(parts) < 3 {
			return Malformed{Usage: UsageSend}
		}
		return Send{Channel: parts[1], Message: parts[2]}

	case strings.HasPrefix(line, "/pm "):
		parts := strings.SplitN(line, " ", 3)
		if len(parts) < 3 {
			return Malformed{Usage: UsagePrivate}
		}
		return Private{Target: parts[1], Message: parts[2]}

	case line == "/quit":
		return Quit{}

	default:
		return Unknown{Line: line}
	}
}
