package output

import (
	"encoding/json"
	"io"
)

// JSONFormatter formats replies as JSON.
type JSONFormatter struct{}

// Format writes r as a JSON object on one line.
func (f *JSONFormatter) Format(w io.Writer, r Reply) error {
	return json.NewEncoder(w).Encode(r)
}
