package resp

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnsupportedReply reports an attempt to encode a value that is not a
// scalar reply.
var ErrUnsupportedReply = errors.New("resp: unsupported reply")

// Encode encodes a scalar reply.
func Encode(v Value) ([]byte, error) {
	return AppendEncode(nil, v)
}

// AppendEncode appends the encoding of v to dst and returns the extended
// slice. On error dst is returned unchanged.
func AppendEncode(dst []byte, v Value) ([]byte, error) {
	switch v.Kind {
	case KindSimpleString:
		return appendLine(dst, TagSimpleString, v.Str), nil
	case KindError:
		return appendLine(dst, TagError, v.Str), nil
	case KindBulkString:
		return appendBulk(dst, v.Str), nil
	case KindNil:
		return append(dst, "$-1\r\n"...), nil
	default:
		return dst, fmt.Errorf("%w: %s", ErrUnsupportedReply, v.Kind)
	}
}

// EncodeCommand encodes a request as an array of bulk strings.
func EncodeCommand(args ...string) []byte {
	size := 16
	for _, a := range args {
		size += len(a) + 16
	}
	dst := make([]byte, 0, size)
	dst = append(dst, TagArray)
	dst = strconv.AppendInt(dst, int64(len(args)), 10)
	dst = append(dst, crlf...)
	for _, a := range args {
		dst = appendBulk(dst, a)
	}
	return dst
}

func appendLine(dst []byte, tag byte, s string) []byte {
	dst = append(dst, tag)
	dst = append(dst, s...)
	return append(dst, crlf...)
}

func appendBulk(dst []byte, s string) []byte {
	dst = append(dst, TagBulkString)
	dst = strconv.AppendInt(dst, int64(len(s)), 10)
	dst = append(dst, crlf...)
	dst = append(dst, s...)
	return append(dst, crlf...)
}
