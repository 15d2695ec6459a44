package resp

import (
	"strconv"
	"strings"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	// KindNil is the zero Kind, so the zero Value is Nil.
	KindNil Kind = iota
	KindSimpleString
	KindBulkString
	KindArray
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindSimpleString:
		return "simple-string"
	case KindBulkString:
		return "bulk-string"
	case KindArray:
		return "array"
	case KindError:
		return "error"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Value is a decoded or to-be-encoded RESP value.
//
// Str carries the text of simple strings, bulk strings and errors.
// Array carries the elements of an array and may itself hold arrays.
type Value struct {
	Kind  Kind
	Str   string
	Array []Value
}

// SimpleString returns a status reply such as "OK" or "PONG".
func SimpleString(s string) Value {
	return Value{Kind: KindSimpleString, Str: s}
}

// BulkString returns a length-prefixed text value.
func BulkString(s string) Value {
	return Value{Kind: KindBulkString, Str: s}
}

// Array returns an array of the given elements. An empty call yields an
// empty, non-nil array.
func Array(items ...Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{Kind: KindArray, Array: items}
}

// Nil returns the nil bulk string.
func Nil() Value {
	return Value{}
}

// Error returns an error reply. msg should start with an error prefix such
// as "ERR".
func Error(msg string) Value {
	return Value{Kind: KindError, Str: msg}
}

// IsNil reports whether v is the nil bulk string.
func (v Value) IsNil() bool {
	return v.Kind == KindNil
}

// Equal reports whether v and o hold the same variant and contents.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}
	switch v.Kind {
	case KindNil:
		return true
	case KindArray:
		if len(v.Array) != len(o.Array) {
			return false
		}
		for i := range v.Array {
			if !v.Array[i].Equal(o.Array[i]) {
				return false
			}
		}
		return true
	default:
		return v.Str == o.Str
	}
}

// String renders v for logs and test failures, not for the wire.
func (v Value) String() string {
	switch v.Kind {
	case KindNil:
		return "(nil)"
	case KindSimpleString:
		return "+" + v.Str
	case KindBulkString:
		return strconv.Quote(v.Str)
	case KindError:
		return "(error) " + v.Str
	case KindArray:
		parts := make([]string, len(v.Array))
		for i, item := range v.Array {
			parts[i] = item.String()
		}
		return "[" + strings.Join(parts, " ") + "]"
	default:
		return v.Kind.String()
	}
}
