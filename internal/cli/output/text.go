package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/yndnr/minikv/pkg/resp"
)

// TextFormatter prints replies the way redis-cli does.
type TextFormatter struct{}

// Format writes r as a single line.
func (f *TextFormatter) Format(w io.Writer, r Reply) error {
	var line string
	switch {
	case r.Value == nil:
		line = "(nil)"
	case r.Type == resp.KindError.String():
		line = "(error) " + *r.Value
	case r.Type == resp.KindBulkString.String():
		line = strconv.Quote(*r.Value)
	default:
		line = *r.Value
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
