package repl

import (
	"sort"
	"strings"
)

// Completer knows the commands the server supports.
type Completer struct {
	commands map[string]string
}

// NewCompleter creates a Completer for the minikv command set.
func NewCompleter() *Completer {
	return &Completer{
		commands: map[string]string{
			"PING": "PING",
			"ECHO": "ECHO message",
			"GET":  "GET key",
			"SET":  "SET key value [PX milliseconds]",
		},
	}
}

// Complete returns the sorted command names starting with prefix,
// ignoring case.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.ToUpper(prefix)
	var out []string
	for name := range c.commands {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Usage returns the usage line for a command name.
func (c *Completer) Usage(name string) (string, bool) {
	u, ok := c.commands[strings.ToUpper(name)]
	return u, ok
}
