package command

import (
	"reflect"
	"testing"
)

func TestParse_SimpleCommands(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line string
		want Kind
	}{
		{"quit", Quit},
		{"exit", Quit},
		{"help", Help},
		{"status", Status},
		{"  status  ", Status},
	}
	for _, tt := range tests {
		got := Parse(tt.line)
		if got.Kind != tt.want {
			t.Errorf("Parse(%q).Kind = %v, want %v", tt.line, got.Kind, tt.want)
		}
		if got.ID == "" {
			t.Errorf("Parse(%q).ID is empty", tt.line)
		}
	}
}

func TestParse_AgentScopedCommands(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line string
		kind Kind
		id   int
	}{
		{"auto 1", Auto, 1},
		{"stop 2", Stop, 2},
		{"reset 3", Reset, 3},
		{"clear 4", Clear, 4},
		{"progress 5 mark", ProgressMark, 5},
	}
	for _, tt := range tests {
		got := Parse(tt.line)
		if got.Kind != tt.kind || got.AgentID != tt.id {
			t.Errorf("Parse(%q) = %+v, want kind %v id %d", tt.line, got, tt.kind, tt.id)
		}
	}
}

func TestParse_Queue(t *testing.T) {
	t.Parallel()

	show := Parse("queue 1")
	if show.Kind != QueueShow || show.AgentID != 1 {
		t.Errorf("queue show: got %+v", show)
	}

	add := Parse(`queue 1 "do the thing"`)
	if add.Kind != QueueAppend || add.AgentID != 1 || add.Text != "do the thing" {
		t.Errorf("queue append: got %+v", add)
	}

	bad := Parse("queue 1 do the thing")
	if bad.Kind != Invalid {
		t.Errorf("queue malformed add: got %+v, want Invalid", bad)
	}
}

func TestParse_Direct(t *testing.T) {
	t.Parallel()
	tests := []struct {
		line     string
		agentID  int
		text     string
		tail     []string
	}{
		{"1: hello world", 1, "hello world", nil},
		{"1-hello world", 1, "hello world", nil},
		{"2: task A | task B | task C", 2, "task A", []string{"task B", "task C"}},
		{"3: head |", 3, "head", nil},
	}
	for _, tt := range tests {
		got := Parse(tt.line)
		if got.Kind != Direct {
			t.Fatalf("Parse(%q).Kind = %v, want Direct (err=%s)", tt.line, got.Kind, got.Err)
		}
		if got.AgentID != tt.agentID || got.Text != tt.text {
			t.Errorf("Parse(%q) = %+v, want agent %d text %q", tt.line, got, tt.agentID, tt.text)
		}
		if !reflect.DeepEqual(got.Tail, tt.tail) {
			t.Errorf("Parse(%q).Tail = %v, want %v", tt.line, got.Tail, tt.tail)
		}
	}
}

func TestParse_NeverPanicsAndAlwaysValid(t *testing.T) {
	t.Parallel()
	inputs := []string{
		"", "   ", ":", "-", "1:", "1-", "0: x", "-1: x", "abc: x",
		"auto", "auto abc", "stop", "reset", "clear", "queue",
		"queue abc", "progress", "progress 1", "progress 1 nope",
		"queue 1 \"unterminated", "random garbage text here",
		"1: a | b | | c |", "\x00\x01binary",
	}
	for _, in := range inputs {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("Parse(%q) panicked: %v", in, r)
				}
			}()
			got := Parse(in)
			if got.ID == "" {
				t.Errorf("Parse(%q) produced empty ID", in)
			}
			if got.Kind < Invalid || got.Kind > Direct {
				t.Errorf("Parse(%q) produced out-of-range Kind %v", in, got.Kind)
			}
		}()
	}
}

func TestParse_InvalidAgentID(t *testing.T) {
	t.Parallel()
	tests := []string{"auto 0", "auto -1", "auto abc", "0: x", "-1: x"}
	for _, in := range tests {
		got := Parse(in)
		if got.Kind != Invalid {
			t.Errorf("Parse(%q).Kind = %v, want Invalid", in, got.Kind)
		}
		if got.Err == "" {
			t.Errorf("Parse(%q) expected a diagnostic, got none", in)
		}
	}
}

func TestParse_MissingPayloadIsInvalid(t *testing.T) {
	t.Parallel()
	got := Parse("1:")
	if got.Kind != Invalid {
		t.Errorf("Parse(\"1:\") = %+v, want Invalid", got)
	}
	got2 := Parse("1: |")
	if got2.Kind != Invalid {
		t.Errorf("Parse(\"1: |\") = %+v, want Invalid", got2)
	}
}
