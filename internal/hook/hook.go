// Package hook reads the JSON payload a session-stop hook receives on stdin.
package hook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// maxPayloadBytes caps how much of stdin is read.
const maxPayloadBytes = 1 << 20

// Payload is the subset of the stop-hook event the command uses.
type Payload struct {
	SessionID      string `json:"session_id,omitempty"`
	TranscriptPath string `json:"transcript_path,omitempty"`
	Cwd            string `json:"cwd,omitempty"`
	HookEventName  string `json:"hook_event_name,omitempty"`
	StopHookActive bool   `json:"stop_hook_active,omitempty"`
}

// Parse decodes a payload from r. Empty input yields a zero Payload and no
// error; malformed input yields a zero Payload and an error.
func Parse(r io.Reader) (Payload, error) {
	if r == nil {
		return Payload{}, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, maxPayloadBytes))
	if err != nil {
		return Payload{}, fmt.Errorf("failed to read hook payload: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return Payload{}, nil
	}

	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Payload{}, fmt.Errorf("invalid hook payload: %w", err)
	}
	return p, nil
}

// WorkDir returns the payload's cwd, or fallback when it has none.
func (p Payload) WorkDir(fallback string) string {
	if cwd := strings.TrimSpace(p.Cwd); cwd != "" {
		return cwd
	}
	return fallback
}
