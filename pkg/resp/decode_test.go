package resp

import (
	"errors"
	"strconv"
	"strings"
	"testing"
)

// ============================================================
// Decode Tests - Well-formed Input
// ============================================================

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		want     Value
		consumed int
	}{
		{
			name:     "simple string",
			input:    "+OK\r\n",
			want:     SimpleString("OK"),
			consumed: 5,
		},
		{
			name:     "empty simple string",
			input:    "+\r\n",
			want:     SimpleString(""),
			consumed: 3,
		},
		{
			name:     "bulk string",
			input:    "$5\r\nhello\r\n",
			want:     BulkString("hello"),
			consumed: 11,
		},
		{
			name:     "empty bulk string",
			input:    "$0\r\n\r\n",
			want:     BulkString(""),
			consumed: 6,
		},
		{
			name:     "bulk string with embedded CRLF",
			input:    "$4\r\na\r\nb\r\n",
			want:     BulkString("a\r\nb"),
			consumed: 10,
		},
		{
			name:     "nil bulk string",
			input:    "$-1\r\n",
			want:     Nil(),
			consumed: 5,
		},
		{
			name:     "utf-8 bulk string",
			input:    "$6\r\nhéllo\r\n",
			want:     BulkString("héllo"),
			consumed: 12,
		},
		{
			name:     "echo command",
			input:    "*2\r\n$4\r\necho\r\n$2\r\nhi\r\n",
			want:     Array(BulkString("echo"), BulkString("hi")),
			consumed: 22,
		},
		{
			name:     "empty array",
			input:    "*0\r\n",
			want:     Array(),
			consumed: 4,
		},
		{
			name:     "mixed elements",
			input:    "*3\r\n+a\r\n$1\r\nb\r\n$-1\r\n",
			want:     Array(SimpleString("a"), BulkString("b"), Nil()),
			consumed: 20,
		},
		{
			name:     "nested arrays",
			input:    "*2\r\n*1\r\n$1\r\na\r\n*2\r\n*0\r\n+b\r\n",
			want:     Array(Array(BulkString("a")), Array(Array(), SimpleString("b"))),
			consumed: 27,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n, err := Decode([]byte(tt.input))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("Decode() = %v, want %v", got, tt.want)
			}
			if n != tt.consumed {
				t.Errorf("consumed = %d, want %d", n, tt.consumed)
			}
			if n != len(tt.input) {
				t.Errorf("consumed = %d, want full input length %d", n, len(tt.input))
			}
		})
	}
}

func TestDecode_LeavesTrailingBytes(t *testing.T) {
	first := "*1\r\n$4\r\nping\r\n"
	second := "*2\r\n$3\r\nget\r\n$3\r\nfoo\r\n"
	buf := []byte(first + second)

	v, n, err := Decode(buf)
	if err != nil {
		t.Fatalf("Decode() first error = %v", err)
	}
	if n != len(first) {
		t.Fatalf("first consumed = %d, want %d", n, len(first))
	}
	if !v.Equal(Array(BulkString("ping"))) {
		t.Errorf("first = %v", v)
	}

	v, n, err = Decode(buf[n:])
	if err != nil {
		t.Fatalf("Decode() second error = %v", err)
	}
	if n != len(second) {
		t.Errorf("second consumed = %d, want %d", n, len(second))
	}
	if !v.Equal(Array(BulkString("get"), BulkString("foo"))) {
		t.Errorf("second = %v", v)
	}
}

// ============================================================
// Decode Tests - Partial Input
// ============================================================

func TestDecode_Incomplete(t *testing.T) {
	full := "*2\r\n$4\r\necho\r\n$2\r\nhi\r\n"

	// Every strict prefix of a valid message is incomplete, never malformed.
	for i := 0; i < len(full); i++ {
		prefix := full[:i]
		t.Run(strconv.Quote(prefix), func(t *testing.T) {
			_, _, err := Decode([]byte(prefix))
			if !errors.Is(err, ErrIncomplete) {
				t.Errorf("Decode(%q) error = %v, want ErrIncomplete", prefix, err)
			}
			if errors.Is(err, ErrProtocol) {
				t.Errorf("Decode(%q) reported a protocol error for a prefix", prefix)
			}
		})
	}
}

// ============================================================
// Decode Tests - Malformed Input
// ============================================================

func TestDecode_ProtocolErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"unknown tag", "?foo\r\n"},
		{"integer tag not supported", ":1\r\n"},
		{"error tag in request", "-ERR x\r\n"},
		{"non-numeric array length", "*x\r\n"},
		{"missing array length", "*\r\n"},
		{"negative array length", "*-1\r\n"},
		{"non-numeric bulk length", "$abc\r\n"},
		{"negative bulk length", "$-2\r\n"},
		{"bad bulk terminator", "$2\r\nhiXY"},
		{"bulk payload longer than length", "$1\r\nhi\r\n"},
		{"invalid utf-8 bulk", "$2\r\n\xff\xfe\r\n"},
		{"invalid utf-8 simple string", "+\xff\r\n"},
		{"bad element inside array", "*2\r\n$1\r\na\r\n?\r\n"},
		{"header without CRLF too long", "*" + strings.Repeat("1", 64)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tt.input))
			if !errors.Is(err, ErrProtocol) {
				t.Errorf("Decode(%q) error = %v, want ErrProtocol", tt.input, err)
			}
		})
	}
}

func TestDecode_Limits(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"array length", "*" + strconv.Itoa(MaxArrayLen+1) + "\r\n"},
		{"bulk length", "$" + strconv.Itoa(MaxBulkLen+1) + "\r\n"},
		{"simple string line", "+" + strings.Repeat("a", MaxLineLen+2)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode([]byte(tt.input))
			if !errors.Is(err, ErrLimitExceeded) {
				t.Fatalf("error = %v, want ErrLimitExceeded", err)
			}
			if !errors.Is(err, ErrProtocol) {
				t.Errorf("ErrLimitExceeded should wrap ErrProtocol")
			}
		})
	}
}

func TestDecode_DeepNesting(t *testing.T) {
	const depth = 100000
	input := strings.Repeat("*1\r\n", depth) + "*0\r\n"

	v, n, err := Decode([]byte(input))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if n != len(input) {
		t.Errorf("consumed = %d, want %d", n, len(input))
	}

	levels := 0
	for v.Kind == KindArray && len(v.Array) == 1 {
		v = v.Array[0]
		levels++
	}
	if levels != depth {
		t.Errorf("levels = %d, want %d", levels, depth)
	}
}

// ============================================================
// DecodeReply Tests
// ============================================================

func TestDecodeReply(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{"+PONG\r\n", SimpleString("PONG")},
		{"-ERR unknown command 'foo'\r\n", Error("ERR unknown command 'foo'")},
		{"$2\r\nhi\r\n", BulkString("hi")},
		{"$-1\r\n", Nil()},
	}

	for _, tt := range tests {
		t.Run(strconv.Quote(tt.input), func(t *testing.T) {
			got, n, err := DecodeReply([]byte(tt.input))
			if err != nil {
				t.Fatalf("DecodeReply() error = %v", err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("DecodeReply() = %v, want %v", got, tt.want)
			}
			if n != len(tt.input) {
				t.Errorf("consumed = %d, want %d", n, len(tt.input))
			}
		})
	}
}
