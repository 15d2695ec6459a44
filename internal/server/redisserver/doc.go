// Package redisserver serves the minikv store over RESP2.
//
// Each accepted connection is handled by its own goroutine, which reads
// bytes into a per-connection buffer, decodes as many complete messages
// as the buffer holds, dispatches each to the CommandHandler, and writes
// the encoded reply. Partial messages stay buffered until more bytes
// arrive; malformed input gets an error reply and closes only that
// connection.
//
// Supported commands: PING, ECHO, SET (with optional PX), GET. Command
// names and the PX option are case-insensitive.
package redisserver
