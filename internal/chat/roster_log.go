package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RosterLog is the write-only snapshot side-table of participants who joined,
// upserted by connection id on every join. Nothing in the service reads it
// back; the presence registry is rebuilt empty on restart and the message log
// remains the authoritative record of participation.
type RosterLog struct {
	mu   sync.Mutex
	path string
}

// NewRosterLog opens (or creates) the side-table at path.
func NewRosterLog(path string) (*RosterLog, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create roster directory: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("initialize roster file: %w", err)
		}
	}
	return &RosterLog{path: path}, nil
}

// Save upserts the participant record keyed by its connection id.
func (l *RosterLog) Save(participant Participant) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	var participants []Participant
	if data, err := os.ReadFile(l.path); err == nil {
		// Corrupt content starts the file over rather than failing the join.
		_ = json.Unmarshal(data, &participants)
	}

	replaced := false
	for i, existing := range participants {
		if existing.ConnectionID == participant.ConnectionID {
			participants[i] = participant
			replaced = true
			break
		}
	}
	if !replaced {
		participants = append(participants, participant)
	}

	data, err := json.MarshalIndent(participants, "", "  ")
	if err != nil {
		return fmt.Errorf("encode roster: %w", err)
	}
	if err := os.WriteFile(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write roster: %w", err)
	}
	return nil
}
