package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// decodeRecordID returns the textual form of a JSON id that may have been
// stored either as a string or as a number.
func decodeRecordID(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("invalid record id: %w", err)
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("invalid record id: %w", err)
	}
	return n.String(), nil
}
