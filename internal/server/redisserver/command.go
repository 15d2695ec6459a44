package redisserver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/yndnr/minikv/internal/storage/memory"
	"github.com/yndnr/minikv/internal/telemetry/logger"
	"github.com/yndnr/minikv/internal/telemetry/metric"
	"github.com/yndnr/minikv/pkg/resp"
)

var (
	// ErrMalformedCommand reports a request that is not an array whose
	// first element is a bulk string, or an argument of the wrong type.
	ErrMalformedCommand = errors.New("malformed command")

	// ErrUnknownCommand is matched by every UnknownCommandError.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrStoreAccess reports a failed store operation.
	ErrStoreAccess = errors.New("store access failed")

	// ErrRateLimited reports a command rejected by the connection limiter.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrReplyEncoding reports a reply the codec could not encode.
	ErrReplyEncoding = errors.New("reply encoding failed")
)

// UnknownCommandError carries the command word as sent by the client.
type UnknownCommandError struct {
	Name string
}

func (e *UnknownCommandError) Error() string {
	return "unknown command '" + e.Name + "'"
}

func (e *UnknownCommandError) Unwrap() error {
	return ErrUnknownCommand
}

// errorReply converts err into an "ERR ..." reply. CR and LF would end the
// reply line early, so they are replaced.
func errorReply(err error) resp.Value {
	msg := strings.Map(func(r rune) rune {
		if r == '\r' || r == '\n' {
			return ' '
		}
		return r
	}, err.Error())
	return resp.Error("ERR " + msg)
}

// wrongArity builds the reply for a command called with the wrong number
// of arguments.
func wrongArity(cmd string) resp.Value {
	return resp.Error("ERR wrong number of arguments for '" + strings.ToLower(cmd) + "' command")
}

// normalizeCommandName upper-cases ASCII without allocating for tokens
// that are already upper case.
func normalizeCommandName(s string) string {
	for i := 0; i < len(s); i++ {
		if c := s[i]; c >= 'a' && c <= 'z' {
			return strings.ToUpper(s)
		}
	}
	return s
}

// parseCommand splits a request into its normalized command word and
// arguments.
func parseCommand(v resp.Value) (string, string, []resp.Value, error) {
	if v.Kind != resp.KindArray || len(v.Array) == 0 {
		return "", "", nil, ErrMalformedCommand
	}
	head := v.Array[0]
	if head.Kind != resp.KindBulkString {
		return "", "", nil, ErrMalformedCommand
	}
	return normalizeCommandName(head.Str), head.Str, v.Array[1:], nil
}

// commandLabel returns a bounded metric label for a request.
func commandLabel(v resp.Value) string {
	name, _, _, err := parseCommand(v)
	if err != nil {
		return "malformed"
	}
	switch name {
	case "PING", "ECHO", "SET", "GET":
		return strings.ToLower(name)
	default:
		return "unknown"
	}
}

// CommandHandler dispatches decoded requests to the store.
type CommandHandler struct {
	store   *memory.Store
	metrics *metric.Registry
	logger  logger.Logger
}

// NewCommandHandler creates a CommandHandler. A nil metrics registry uses
// metric.Global; a nil logger discards output.
func NewCommandHandler(store *memory.Store, metrics *metric.Registry, l logger.Logger) *CommandHandler {
	if metrics == nil {
		metrics = metric.Global()
	}
	if l == nil {
		l = logger.Nop()
	}
	return &CommandHandler{
		store:   store,
		metrics: metrics,
		logger:  l,
	}
}

// Handle executes one request and returns its reply. Replies are always
// scalars.
func (h *CommandHandler) Handle(ctx context.Context, v resp.Value) (reply resp.Value) {
	start := time.Now()
	label := commandLabel(v)
	defer func() {
		h.metrics.ObserveCommand(label, resultOf(reply), time.Since(start))
	}()

	name, raw, args, err := parseCommand(v)
	if err != nil {
		return errorReply(err)
	}

	if logger.FromContext(ctx).Enabled(slog.LevelDebug) {
		logger.L(ctx).Debug("command", debugAttrs(name, args)...)
	}

	switch name {
	case "PING":
		return resp.SimpleString("PONG")
	case "ECHO":
		return h.handleEcho(args)
	case "SET":
		return h.guardStore(ctx, func() resp.Value { return h.handleSet(args) })
	case "GET":
		return h.guardStore(ctx, func() resp.Value { return h.handleGet(args) })
	default:
		return errorReply(&UnknownCommandError{Name: raw})
	}
}

// debugAttrs describes a command for the debug log. Everything after the
// key goes under "args", which the logger redacts.
func debugAttrs(name string, args []resp.Value) []any {
	attrs := []any{"command", name, "argc", len(args)}
	if len(args) == 0 {
		return attrs
	}
	attrs = append(attrs, "key", args[0].Str)
	if len(args) > 1 {
		rest := make([]string, len(args)-1)
		for i, a := range args[1:] {
			rest[i] = a.Str
		}
		attrs = append(attrs, "args", strings.Join(rest, " "))
	}
	return attrs
}

// guardStore turns a panic inside a store operation into an error reply
// so the connection survives it.
func (h *CommandHandler) guardStore(ctx context.Context, fn func() resp.Value) (reply resp.Value) {
	defer func() {
		if r := recover(); r != nil {
			logger.L(ctx).Error("store operation panicked",
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			reply = errorReply(ErrStoreAccess)
		}
	}()
	return fn()
}

func (h *CommandHandler) handleEcho(args []resp.Value) resp.Value {
	if len(args) == 0 {
		return wrongArity("ECHO")
	}
	switch args[0].Kind {
	case resp.KindBulkString, resp.KindSimpleString:
		return args[0]
	default:
		return errorReply(ErrMalformedCommand)
	}
}

// handleSet implements SET key value [PX ms]. Every malformed shape
// yields Nil.
func (h *CommandHandler) handleSet(args []resp.Value) resp.Value {
	if len(args) != 2 && len(args) != 4 {
		return resp.Nil()
	}
	for _, a := range args {
		if a.Kind != resp.KindBulkString {
			return resp.Nil()
		}
	}
	key, value := args[0].Str, args[1].Str

	if len(args) == 2 {
		h.store.SetValue(key, value)
		return resp.SimpleString("OK")
	}

	if !strings.EqualFold(args[2].Str, "px") {
		return resp.Nil()
	}
	ms, err := strconv.ParseInt(args[3].Str, 10, 64)
	if err != nil || ms < 0 {
		return resp.Nil()
	}

	h.store.SetWithTTL(key, value, ms)
	return resp.SimpleString("OK")
}

// handleGet implements GET key. A value that cannot travel as a simple
// string is returned as a bulk string.
func (h *CommandHandler) handleGet(args []resp.Value) resp.Value {
	if len(args) != 1 || args[0].Kind != resp.KindBulkString {
		return resp.Nil()
	}
	value, ok := h.store.Get(args[0].Str)
	if !ok {
		return resp.Nil()
	}
	if strings.ContainsAny(value, "\r\n") {
		return resp.BulkString(value)
	}
	return resp.SimpleString(value)
}

func resultOf(v resp.Value) string {
	switch v.Kind {
	case resp.KindNil:
		return metric.ResultNil
	case resp.KindError:
		return metric.ResultError
	default:
		return metric.ResultOK
	}
}
