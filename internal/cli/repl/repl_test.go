package repl

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/yndnr/minikv/internal/cli/output"
	"github.com/yndnr/minikv/pkg/resp"
)

// recorder is an Executor that records commands and answers from a map
// keyed by the upper-cased command word.
type recorder struct {
	calls   [][]string
	replies map[string]resp.Value
}

func (r *recorder) exec(_ context.Context, args []string) (resp.Value, error) {
	r.calls = append(r.calls, args)
	v, ok := r.replies[strings.ToUpper(args[0])]
	if !ok {
		return resp.Error("ERR unknown command '" + args[0] + "'"), errors.New("server error")
	}
	return v, nil
}

func newTestREPL(input string, rec *recorder, opts ...Option) (*REPL, *bytes.Buffer) {
	out := &bytes.Buffer{}
	opts = append([]Option{WithIO(strings.NewReader(input), out)}, opts...)
	return New(rec.exec, opts...), out
}

func TestREPL_Run_Exit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"exit command", "exit\n"},
		{"quit command", "quit\n"},
		{"EOF", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			r, _ := newTestREPL(tt.input, rec)
			if err := r.Run(context.Background()); err != nil {
				t.Errorf("Run() error = %v", err)
			}
			if len(rec.calls) != 0 {
				t.Errorf("executor called %d times", len(rec.calls))
			}
		})
	}
}

func TestREPL_Run_Commands(t *testing.T) {
	rec := &recorder{replies: map[string]resp.Value{
		"PING": resp.SimpleString("PONG"),
		"GET":  resp.Nil(),
		"ECHO": resp.BulkString("hello world"),
	}}
	r, out := newTestREPL("ping\n\nGET foo\necho \"hello world\"\nbogus\nexit\n", rec)

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{
		"minikv> PONG",
		"minikv> minikv> (nil)",
		"minikv> \"hello world\"",
		"minikv> (error) ERR unknown command 'bogus'",
		"minikv> ",
	}
	if got := strings.Split(out.String(), "\n"); !reflect.DeepEqual(got, want) {
		t.Errorf("output =\n%q\nwant\n%q", got, want)
	}

	if len(rec.calls) != 4 {
		t.Fatalf("calls = %v", rec.calls)
	}
	if !reflect.DeepEqual(rec.calls[2], []string{"echo", "hello world"}) {
		t.Errorf("echo args = %q", rec.calls[2])
	}
}

func TestREPL_Run_JSONOutput(t *testing.T) {
	rec := &recorder{replies: map[string]resp.Value{"PING": resp.SimpleString("PONG")}}
	r, out := newTestREPL("ping\n", rec, WithFormatter(&output.JSONFormatter{}), WithPrompt(""))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if got := out.String(); got != "{\"type\":\"simple-string\",\"value\":\"PONG\"}\n\n" {
		t.Errorf("output = %q", got)
	}
}

func TestREPL_Run_Help(t *testing.T) {
	rec := &recorder{}
	r, out := newTestREPL("help s\nhelp zz\n", rec, WithPrompt(""))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !strings.Contains(out.String(), "SET key value [PX milliseconds]") {
		t.Errorf("help output missing SET usage: %q", out.String())
	}
	if !strings.Contains(out.String(), "no command matches \"zz\"") {
		t.Errorf("help output missing no-match line: %q", out.String())
	}
	if len(rec.calls) != 0 {
		t.Errorf("help should not reach the server, got %v", rec.calls)
	}
}

func TestREPL_Run_HistoryAdded(t *testing.T) {
	history := NewHistory("")
	r, _ := newTestREPL("  ping  \n\tget k\t\nexit\n", &recorder{replies: map[string]resp.Value{
		"PING": resp.SimpleString("PONG"),
		"GET":  resp.Nil(),
	}}, WithHistory(history))

	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := []string{"exit", "get k", "ping"}
	for i, w := range want {
		if got := history.Get(i); got != w {
			t.Errorf("history.Get(%d) = %q, want %q", i, got, w)
		}
	}
}

func TestREPL_Run_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rec := &recorder{}
	r, _ := newTestREPL("ping\n", rec)
	if err := r.Run(ctx); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("executor called after cancel: %v", rec.calls)
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{"ping", []string{"ping"}, false},
		{"set  k   v", []string{"set", "k", "v"}, false},
		{`set k "two words"`, []string{"set", "k", "two words"}, false},
		{`set k "line\r\nbreak"`, []string{"set", "k", "line\r\nbreak"}, false},
		{`echo ""`, []string{"echo", ""}, false},
		{`echo "say \"hi\""`, []string{"echo", `say "hi"`}, false},
		{`echo "open`, nil, true},
		{"   ", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := SplitArgs(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SplitArgs(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitArgs(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}
