package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/wcsocket/wcsocket-go/pkg/transport"
)

// Client is the part of *transport.Transport the REPL drives.
type Client interface {
	Emit(event string, data any, opts *transport.EmitOptions) (transport.CallID, bool)
	CancelPendingResponse(id transport.CallID) bool
	PendingCount() int
	Close(code int, reason string)
	State() transport.State
	ID() string
	URI() string
}

// Session executes REPL commands against a client.
type Session struct {
	client Client

	mu sync.Mutex
	w  io.Writer
}

// NewSession creates a session writing results to w.
func NewSession(client Client, w io.Writer) *Session {
	return &Session{client: client, w: w}
}

func (s *Session) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.w, format, args...)
}

// Exec runs one command line. It reports whether the session should end.
func (s *Session) Exec(line string) (quit bool) {
	input := strings.TrimSpace(line)
	if input == "" {
		return false
	}

	cmd, rest, _ := strings.Cut(input, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case "help", "?":
		s.printHelp()
	case "emit", "e":
		s.cmdEmit(rest, false)
	case "call", "c":
		s.cmdEmit(rest, true)
	case "cancel":
		s.cmdCancel(rest)
	case "pending":
		s.printf("%d pending call(s)\n", s.client.PendingCount())
	case "state", "s":
		s.printf("%s %s (id %s)\n", s.client.State(), s.client.URI(), s.client.ID())
	case "close":
		s.cmdClose(rest)
	case "quit", "exit", "q":
		s.client.Close(transport.CloseNormal, "")
		return true
	default:
		s.printf("Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

// ParseEventArgs splits "<event> [json]" into the event name and decoded
// data. Data that is not valid JSON is sent as a string.
func ParseEventArgs(args string) (string, any, error) {
	event, raw, _ := strings.Cut(strings.TrimSpace(args), " ")
	if event == "" {
		return "", nil, fmt.Errorf("event name required")
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return event, nil, nil
	}

	var data any
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return event, raw, nil
	}
	return event, data, nil
}

func (s *Session) cmdEmit(args string, withCallback bool) {
	event, data, err := ParseEventArgs(args)
	if err != nil {
		usage := "emit"
		if withCallback {
			usage = "call"
		}
		s.printf("Usage: %s <event> [json]\n", usage)
		return
	}

	opts := &transport.EmitOptions{}
	if withCallback {
		opts.Callback = func(err error, data any) {
			if err != nil {
				s.printf("[ack] %s failed: %v\n", event, err)
				return
			}
			s.printf("[ack] %s %s\n", event, FormatJSON(data))
		}
	}

	// Only a pending call reports ok, so a fire-and-forget emit is judged
	// by the state it leaves behind.
	id, pending := s.client.Emit(event, data, opts)
	switch {
	case pending:
		s.printf("sent %s (cid %d)\n", event, id)
	case s.client.State() != transport.StateOpen:
		s.printf("%s not sent (transport is %s)\n", event, s.client.State())
	default:
		s.printf("sent %s\n", event)
	}
}

func (s *Session) cmdCancel(args string) {
	id, err := strconv.ParseUint(args, 10, 64)
	if err != nil || id == 0 {
		s.printf("Usage: cancel <cid>\n")
		return
	}
	if s.client.CancelPendingResponse(transport.CallID(id)) {
		s.printf("cancelled %d\n", id)
	} else {
		s.printf("no pending call %d\n", id)
	}
}

func (s *Session) cmdClose(args string) {
	code := transport.CloseNormal
	codeArg, reason, _ := strings.Cut(args, " ")
	if codeArg != "" {
		n, err := strconv.Atoi(codeArg)
		if err != nil {
			s.printf("Usage: close [code] [reason]\n")
			return
		}
		code = n
	}
	s.client.Close(code, strings.TrimSpace(reason))
}

func (s *Session) printHelp() {
	s.printf(`Commands:
  emit <event> [json]    Send an event without waiting for a response
  call <event> [json]    Send an event and print its response
  cancel <cid>           Stop waiting for a call's response
  pending                Show the number of calls awaiting a response
  state                  Show connection state
  close [code] [reason]  Close the connection (default 1000)
  help                   Show this help
  quit                   Close and exit
`)
}
