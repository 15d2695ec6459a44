package output

import (
	"fmt"
	"io"

	"github.com/yndnr/minikv/pkg/resp"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, json or yaml)", s)
	}
}

// Formatter writes a reply.
type Formatter interface {
	Format(w io.Writer, r Reply) error
}

// NewFormatter creates a formatter for the given format. Unknown formats
// fall back to text.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TextFormatter{}
	}
}

// Reply is the printable form of a scalar server reply.
type Reply struct {
	Type  string  `json:"type" yaml:"type"`
	Value *string `json:"value" yaml:"value"`
}

// FromValue converts a decoded reply. Nil has no value.
func FromValue(v resp.Value) Reply {
	r := Reply{Type: v.Kind.String()}
	if !v.IsNil() {
		s := v.Str
		r.Value = &s
	}
	return r
}
