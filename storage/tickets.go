package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"
	"time"

	"ctiscope/core"
)

// ticketTimeFormat matches the display format used across the dashboard.
const ticketTimeFormat = "2006-01-02 15:04:05"

// TicketStore keeps investigation tickets in a JSON document mapping string
// ids to records.
type TicketStore struct {
	mu   sync.Mutex
	path string
}

// NewTicketStore creates a ticket store backed by tickets.json under dataDir.
func NewTicketStore(dataDir string) *TicketStore {
	return &TicketStore{path: filepath.Join(dataDir, "tickets.json")}
}

func (s *TicketStore) load() (map[string]core.Ticket, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]core.Ticket{}, nil
		}
		return nil, fmt.Errorf("failed to read ticket store: %w", err)
	}

	tickets := map[string]core.Ticket{}
	if err := json.Unmarshal(data, &tickets); err != nil {
		return nil, fmt.Errorf("failed to decode ticket store: %w", err)
	}
	return tickets, nil
}

func (s *TicketStore) save(tickets map[string]core.Ticket) error {
	data, err := json.MarshalIndent(tickets, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode ticket store: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write ticket store: %w", err)
	}
	return nil
}

// Create files a new ticket in the open state.
func (s *TicketStore) Create(title, description, severity, iocValue, createdBy string) (*core.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return nil, err
	}

	ticket := core.Ticket{
		ID:          strconv.Itoa(len(tickets) + 1),
		Title:       title,
		Description: description,
		Severity:    severity,
		IOCValue:    iocValue,
		Status:      core.TicketStatusOpen,
		CreatedBy:   createdBy,
		CreatedAt:   time.Now().UTC().Format(ticketTimeFormat) + " UTC",
	}
	tickets[ticket.ID] = ticket
	if err := s.save(tickets); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// Get returns one ticket by id.
func (s *TicketStore) Get(id string) (*core.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return nil, err
	}
	ticket, ok := tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}
	return &ticket, nil
}

// UpdateStatus moves a ticket to a new lifecycle state and stamps the
// update time.
func (s *TicketStore) UpdateStatus(id string, status core.TicketStatus) (*core.Ticket, error) {
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid ticket status: %s", status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return nil, err
	}
	ticket, ok := tickets[id]
	if !ok {
		return nil, ErrTicketNotFound
	}

	ticket.Status = status
	ticket.UpdatedAt = time.Now().UTC().Format(ticketTimeFormat) + " UTC"
	tickets[id] = ticket
	if err := s.save(tickets); err != nil {
		return nil, err
	}
	return &ticket, nil
}

// List returns all tickets, newest id first.
func (s *TicketStore) List() ([]core.Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tickets, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make([]core.Ticket, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool {
		a, _ := strconv.Atoi(out[i].ID)
		b, _ := strconv.Atoi(out[j].ID)
		return a > b
	})
	return out, nil
}
