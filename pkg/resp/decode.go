package resp

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"
)

// Type tags.
const (
	TagSimpleString = '+'
	TagError        = '-'
	TagBulkString   = '$'
	TagArray        = '*'
)

// Protocol limits.
const (
	// MaxArrayLen limits the number of elements in a single array.
	MaxArrayLen = 1024

	// MaxBulkLen limits the payload of a single bulk string (512KB).
	MaxBulkLen = 512 * 1024

	// MaxLineLen limits a simple string or error line (4KB).
	MaxLineLen = 4 * 1024

	// maxHeaderLen bounds "*<n>" and "$<n>" header lines.
	maxHeaderLen = 32
)

var (
	// ErrProtocol reports malformed wire data.
	ErrProtocol = errors.New("resp: protocol error")

	// ErrIncomplete reports that the buffer ends before the message does.
	// It is not a protocol violation: the caller should read more bytes.
	ErrIncomplete = errors.New("resp: incomplete message")

	// ErrLimitExceeded reports a length or count above the protocol limits.
	// It wraps ErrProtocol.
	ErrLimitExceeded = fmt.Errorf("%w: limit exceeded", ErrProtocol)
)

var crlf = []byte("\r\n")

// Decode decodes the first message in buf and returns it with the number
// of bytes it occupies. Bytes after the message are left untouched.
//
// Decode only accepts request tags (+, $, *). If buf holds a valid but
// partial message the error is ErrIncomplete.
func Decode(buf []byte) (Value, int, error) {
	return decode(buf, false)
}

// DecodeReply is like Decode but also accepts error replies (-). It is
// meant for clients reading server replies.
func DecodeReply(buf []byte) (Value, int, error) {
	return decode(buf, true)
}

// frame is an array whose elements are still being decoded.
type frame struct {
	items []Value
	want  int
}

// decode walks nested arrays with an explicit stack so that nesting depth
// costs heap, not goroutine stack.
func decode(buf []byte, allowError bool) (Value, int, error) {
	var (
		stack []frame
		pos   int
	)

	for {
		if pos >= len(buf) {
			return Value{}, 0, ErrIncomplete
		}

		var (
			v   Value
			n   int
			err error
		)

		switch tag := buf[pos]; tag {
		case TagSimpleString:
			v, n, err = decodeLine(buf[pos:], KindSimpleString)
		case TagError:
			if !allowError {
				return Value{}, 0, fmt.Errorf("%w: error value in request", ErrProtocol)
			}
			v, n, err = decodeLine(buf[pos:], KindError)
		case TagBulkString:
			v, n, err = decodeBulk(buf[pos:])
		case TagArray:
			var count int
			count, n, err = decodeArrayHeader(buf[pos:])
			if err != nil {
				return Value{}, 0, err
			}
			pos += n
			if count > 0 {
				stack = append(stack, frame{items: make([]Value, 0, count), want: count})
				continue
			}
			v = Array()
			n = 0
		default:
			return Value{}, 0, fmt.Errorf("%w: unknown type tag %q", ErrProtocol, tag)
		}
		if err != nil {
			return Value{}, 0, err
		}
		pos += n

		// Fold the finished value into its parents; every array that
		// becomes full is itself a finished value.
		for {
			if len(stack) == 0 {
				return v, pos, nil
			}
			top := &stack[len(stack)-1]
			top.items = append(top.items, v)
			if len(top.items) < top.want {
				break
			}
			v = Array(top.items...)
			stack = stack[:len(stack)-1]
		}
	}
}

// readLine returns the text between the tag byte and the first CRLF, and
// the total bytes up to and including that CRLF.
func readLine(buf []byte, maxLen int) ([]byte, int, error) {
	idx := bytes.Index(buf[1:], crlf)
	if idx < 0 {
		// A trailing CR may still be followed by its LF.
		if len(buf)-1 > maxLen+1 {
			return nil, 0, fmt.Errorf("%w: line length exceeds %d", ErrLimitExceeded, maxLen)
		}
		return nil, 0, ErrIncomplete
	}
	if idx > maxLen {
		return nil, 0, fmt.Errorf("%w: line length exceeds %d", ErrLimitExceeded, maxLen)
	}
	return buf[1 : 1+idx], 1 + idx + len(crlf), nil
}

func decodeLine(buf []byte, kind Kind) (Value, int, error) {
	line, n, err := readLine(buf, MaxLineLen)
	if err != nil {
		return Value{}, 0, err
	}
	if !utf8.Valid(line) {
		return Value{}, 0, fmt.Errorf("%w: invalid utf-8 in %s", ErrProtocol, kind)
	}
	return Value{Kind: kind, Str: string(line)}, n, nil
}

func readInt(buf []byte, what string) (int, int, error) {
	line, n, err := readLine(buf, maxHeaderLen)
	if err != nil {
		if errors.Is(err, ErrLimitExceeded) {
			return 0, 0, fmt.Errorf("%w: invalid %s", ErrProtocol, what)
		}
		return 0, 0, err
	}
	v, err := strconv.Atoi(string(line))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: invalid %s %q", ErrProtocol, what, line)
	}
	return v, n, nil
}

func decodeArrayHeader(buf []byte) (int, int, error) {
	count, n, err := readInt(buf, "array length")
	if err != nil {
		return 0, 0, err
	}
	if count < 0 {
		return 0, 0, fmt.Errorf("%w: negative array length %d", ErrProtocol, count)
	}
	if count > MaxArrayLen {
		return 0, 0, fmt.Errorf("%w: array length %d exceeds %d", ErrLimitExceeded, count, MaxArrayLen)
	}
	return count, n, nil
}

func decodeBulk(buf []byte) (Value, int, error) {
	size, n, err := readInt(buf, "bulk length")
	if err != nil {
		return Value{}, 0, err
	}
	if size == -1 {
		return Nil(), n, nil
	}
	if size < 0 {
		return Value{}, 0, fmt.Errorf("%w: negative bulk length %d", ErrProtocol, size)
	}
	if size > MaxBulkLen {
		return Value{}, 0, fmt.Errorf("%w: bulk length %d exceeds %d", ErrLimitExceeded, size, MaxBulkLen)
	}

	end := n + size
	if len(buf) < end+len(crlf) {
		return Value{}, 0, ErrIncomplete
	}
	if !bytes.Equal(buf[end:end+len(crlf)], crlf) {
		return Value{}, 0, fmt.Errorf("%w: invalid bulk terminator", ErrProtocol)
	}
	payload := buf[n:end]
	if !utf8.Valid(payload) {
		return Value{}, 0, fmt.Errorf("%w: invalid utf-8 in bulk string", ErrProtocol)
	}
	return BulkString(string(payload)), end + len(crlf), nil
}
