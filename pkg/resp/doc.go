// Package resp implements the RESP2 wire codec used by minikv.
//
// The codec is a pair of pure functions over byte slices:
//
//   - Decode turns the front of a buffer into a Value and reports how
//     many bytes it consumed. A buffer that holds only part of a message
//     yields ErrIncomplete, so callers can read more and retry.
//   - Encode turns a scalar reply (simple string, bulk string, nil,
//     error) into bytes. Arrays are requests only and are rejected with
//     ErrUnsupportedReply.
//
// Wire format:
//
//	+<text>\r\n                 simple string
//	-<text>\r\n                 error (replies only)
//	$<len>\r\n<text>\r\n        bulk string ($-1\r\n is nil)
//	*<count>\r\n<elements...>   array
//
// Payloads are text: bulk strings and simple strings must be valid UTF-8.
package resp
