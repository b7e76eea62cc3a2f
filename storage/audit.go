package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"ctiscope/core"

	"github.com/google/uuid"
)

// DefaultAuditLimit caps audit listings when the caller does not specify one.
const DefaultAuditLimit = 200

// AuditStore keeps the audit trail in a JSON array, newest entry first.
type AuditStore struct {
	mu   sync.Mutex
	path string
}

// NewAuditStore creates an audit store backed by audit_log.json under dataDir.
func NewAuditStore(dataDir string) *AuditStore {
	return &AuditStore{path: filepath.Join(dataDir, "audit_log.json")}
}

func (s *AuditStore) load() ([]core.AuditEntry, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return []core.AuditEntry{}, nil
		}
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}

	entries := []core.AuditEntry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode audit log: %w", err)
	}
	return entries, nil
}

// Log prepends one audit entry and persists the log.
func (s *AuditStore) Log(actor, action, target string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return err
	}

	entry := core.AuditEntry{
		ID:     uuid.NewString(),
		Time:   time.Now().UTC().Format(time.RFC3339),
		Actor:  actor,
		Action: action,
		Target: target,
	}
	entries = append([]core.AuditEntry{entry}, entries...)

	data, err := json.MarshalIndent(entries, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode audit log: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

// List returns up to limit entries, newest first. A non-positive limit uses
// DefaultAuditLimit.
func (s *AuditStore) List(limit int) ([]core.AuditEntry, error) {
	if limit <= 0 {
		limit = DefaultAuditLimit
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.load()
	if err != nil {
		return nil, err
	}
	if limit < len(entries) {
		entries = entries[:limit]
	}
	return entries, nil
}
