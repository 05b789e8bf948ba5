// Package kitty writes kitty terminal graphics protocol commands.
package kitty

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"strings"
)

// TTYPath is the controlling terminal. Graphics commands must bypass
// stdout, which lf captures.
const TTYPath = "/dev/tty"

// Control is one key=value pair of a graphics command.
type Control struct {
	Key   string
	Value string
}

// DeleteAll removes every image on the screen.
var DeleteAll = []Control{{"a", "d"}, {"d", "A"}}

// Serialize builds an APC graphics command. The payload, if any, is
// written as given.
func Serialize(payload []byte, control ...Control) []byte {
	pairs := make([]string, len(control))
	for i, c := range control {
		pairs[i] = c.Key + "=" + c.Value
	}
	out := append([]byte("\x1b_G"), strings.Join(pairs, ",")...)
	if len(payload) > 0 {
		out = append(out, ';')
		out = append(out, payload...)
	}
	return append(out, "\x1b\\"...)
}

// SerializeString is Serialize with a text payload, base64 encoded as the
// protocol requires.
func SerializeString(payload string, control ...Control) []byte {
	if payload == "" {
		return Serialize(nil, control...)
	}
	return Serialize([]byte(base64.StdEncoding.EncodeToString([]byte(payload))), control...)
}

// Clear deletes all images drawn on w.
func Clear(w io.Writer) error {
	_, err := w.Write(Serialize(nil, DeleteAll...))
	return err
}

// OpenTTY opens the controlling terminal for writing.
func OpenTTY() (*os.File, error) {
	f, err := os.OpenFile(TTYPath, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("open terminal: %w", err)
	}
	return f, nil
}
