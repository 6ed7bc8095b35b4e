package formatter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrUnknownFormat is returned by ForOutput for an unsupported format name.
var ErrUnknownFormat = errors.New("unknown output format")

// Record is the outcome of one operation as printed by the CLI.
type Record struct {
	Operation  string `json:"operation"`
	Text       string `json:"text"`
	IsError    bool   `json:"is_error"`
	SessionID  string `json:"session_id,omitempty"`
	DurationMS int64  `json:"duration_ms"`
}

// Formatter writes a Record to w.
type Formatter interface {
	Format(w io.Writer, rec *Record) error
}

// ForOutput returns the formatter for an --output value ("text" or "json").
func ForOutput(name string) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text", "table":
		return TextFormatter{}, nil
	case "json":
		return NewJSONFormatter(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// TextFormatter prints the operation text as is.
type TextFormatter struct{}

// Format writes rec.Text followed by a newline.
func (TextFormatter) Format(w io.Writer, rec *Record) error {
	text := strings.TrimRight(rec.Text, "\n")
	_, err := fmt.Fprintln(w, text)
	return err
}

// JSONFormatter prints each record as one JSON object per line.
type JSONFormatter struct {
	// Pretty enables indented JSON.
	Pretty bool
}

// NewJSONFormatter creates a compact JSON formatter.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes rec as JSON.
func (jf *JSONFormatter) Format(w io.Writer, rec *Record) error {
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false) // Don't escape < > & in content

	if jf.Pretty {
		encoder.SetIndent("", "  ")
	}

	return encoder.Encode(rec)
}
