package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	// RetentionCap is the maximum number of messages the log retains. The cap
	// is enforced eagerly after every append, so the stored size never exceeds
	// it between operations.
	RetentionCap = 500

	// HistoryLimit is the most entries a history read serves to clients,
	// regardless of the retention cap.
	HistoryLimit = 100
)

// Store is the durable append-only message log.
//
// Append must serialize writes so that append order defines the total order of
// messages, and its errors must reach the caller: a silently dropped message
// would break the ordering contract the broadcast path relies on. Recent
// degrades to an empty result when the underlying medium is unreadable.
type Store interface {
	Append(msg *Message) error
	Recent(limit int) []*Message
}

// FileStore persists the log as a JSON array in a single file, rewritten on
// every append. The read-modify-write cycle runs under a mutex so at most one
// append is in flight against the file at a time.
type FileStore struct {
	mu   sync.Mutex
	path string
	cap  int
}

// NewFileStore opens (or creates) the message log at path, creating parent
// directories as needed.
func NewFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create message log directory: %w", err)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, []byte("[]"), 0o644); err != nil {
			return nil, fmt.Errorf("initialize message log: %w", err)
		}
	}
	return &FileStore{path: path, cap: RetentionCap}, nil
}

// Append writes msg to the end of the log and trims the oldest entries once
// the retention cap is exceeded.
func (s *FileStore) Append(msg *Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := s.load()
	messages = append(messages, msg)
	if len(messages) > s.cap {
		messages = messages[len(messages)-s.cap:]
	}

	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("encode message log: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write message log: %w", err)
	}
	return nil
}

// Recent returns up to limit of the most recently appended messages in append
// order, oldest first. An unreadable or corrupt log yields an empty result.
func (s *FileStore) Recent(limit int) []*Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := s.load()
	if limit <= 0 {
		return nil
	}
	if limit >= len(messages) {
		return messages
	}
	return messages[len(messages)-limit:]
}

// load reads the whole log, treating a missing or corrupt file as empty.
func (s *FileStore) load() []*Message {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil
	}
	var messages []*Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil
	}
	return messages
}
