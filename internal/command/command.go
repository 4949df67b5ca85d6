// Package command turns a raw input line into a well-formed Command value
// (spec.md §4.5). Parse never panics and never returns an invalid variant;
// malformed input becomes Kind = Invalid carrying a diagnostic, which the
// coordinator reports without treating as fatal.
package command

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Kind tags the variant of a parsed Command.
type Kind int

const (
	Invalid Kind = iota
	Quit
	Help
	Status
	Auto
	Stop
	Reset
	ProgressMark
	QueueShow
	QueueAppend
	Clear
	Direct
)

// Command is the tagged variant every raw line parses into.
type Command struct {
	ID   string // correlation id, stamped for every parsed command
	Kind Kind

	AgentID int    // set for every variant except Quit/Help/Status/Invalid
	Text    string // queue-append payload, or direct-dispatch head
	Tail    []string // direct-dispatch pipe-split remainder, appended to the queue in order

	Err string // diagnostic, set when Kind == Invalid
}

// splitIDPrefix recognizes both "N:" and "N-" as the agent-id prefix of a direct
// dispatch command.
func splitIDPrefix(line string) (id string, payload string, sep byte, ok bool) {
	for i, r := range line {
		switch {
		case r >= '0' && r <= '9':
			continue
		case r == ':' || r == '-':
			if i == 0 {
				return "", "", 0, false
			}
			return line[:i], line[i+1:], byte(r), true
		default:
			return "", "", 0, false
		}
	}
	return "", "", 0, false
}

// Parse converts a raw line into a Command. It is total: every input,
// including empty or garbage text, yields a well-formed Command.
func Parse(raw string) Command {
	id := uuid.NewString()
	line := strings.TrimSpace(raw)

	switch line {
	case "quit", "exit":
		return Command{ID: id, Kind: Quit}
	case "help":
		return Command{ID: id, Kind: Help}
	case "status":
		return Command{ID: id, Kind: Status}
	case "":
		return Command{ID: id, Kind: Invalid, Err: "empty command"}
	}

	if fields := strings.Fields(line); len(fields) >= 2 {
		switch fields[0] {
		case "auto":
			return parseSimpleAgentCommand(id, Auto, fields[1])
		case "stop":
			return parseSimpleAgentCommand(id, Stop, fields[1])
		case "reset":
			return parseSimpleAgentCommand(id, Reset, fields[1])
		case "clear":
			return parseSimpleAgentCommand(id, Clear, fields[1])
		case "progress":
			if len(fields) == 3 && fields[2] == "mark" {
				return parseSimpleAgentCommand(id, ProgressMark, fields[1])
			}
			return Command{ID: id, Kind: Invalid, Err: "malformed progress command: " + line}
		case "queue":
			return parseQueue(id, line, fields[1])
		}
	}
	if fields := strings.Fields(line); len(fields) == 1 {
		switch fields[0] {
		case "auto", "stop", "reset", "clear", "queue":
			return Command{ID: id, Kind: Invalid, Err: "missing agent id: " + line}
		}
	}

	if rawID, payload, _, ok := splitIDPrefix(line); ok {
		agentID, err := strconv.Atoi(rawID)
		if err != nil || agentID <= 0 {
			return Command{ID: id, Kind: Invalid, Err: "invalid agent id: " + rawID}
		}
		if strings.TrimSpace(payload) == "" {
			return Command{ID: id, Kind: Invalid, Err: "missing payload for agent " + rawID}
		}
		parts := strings.Split(payload, "|")
		head := strings.TrimSpace(parts[0])
		if head == "" {
			return Command{ID: id, Kind: Invalid, Err: "missing payload for agent " + rawID}
		}
		var tail []string
		for _, p := range parts[1:] {
			p = strings.TrimSpace(p)
			if p != "" {
				tail = append(tail, p)
			}
		}
		return Command{ID: id, Kind: Direct, AgentID: agentID, Text: head, Tail: tail}
	}

	return Command{ID: id, Kind: Invalid, Err: "unrecognized command: " + line}
}

func parseSimpleAgentCommand(id string, kind Kind, rawID string) Command {
	agentID, err := strconv.Atoi(rawID)
	if err != nil || agentID <= 0 {
		return Command{ID: id, Kind: Invalid, Err: "invalid agent id: " + rawID}
	}
	return Command{ID: id, Kind: kind, AgentID: agentID}
}

func parseQueue(id, line, rawID string) Command {
	rest := strings.TrimSpace(strings.TrimPrefix(line, "queue"))
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return Command{ID: id, Kind: Invalid, Err: "missing agent id: " + line}
	}
	agentID, err := strconv.Atoi(fields[0])
	if err != nil || agentID <= 0 {
		return Command{ID: id, Kind: Invalid, Err: "invalid agent id: " + rawID}
	}

	remainder := strings.TrimSpace(strings.TrimPrefix(rest, fields[0]))
	if remainder == "" {
		return Command{ID: id, Kind: QueueShow, AgentID: agentID}
	}

	text, ok := unquote(remainder)
	if !ok {
		return Command{ID: id, Kind: Invalid, Err: "malformed queue add: " + line}
	}
	return Command{ID: id, Kind: QueueAppend, AgentID: agentID, Text: text}
}

// unquote strips one layer of double quotes from s, requiring both a
// leading and trailing quote.
func unquote(s string) (string, bool) {
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return "", false
	}
	return s[1 : len(s)-1], true
}
