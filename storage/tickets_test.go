package storage

import (
	"testing"

	"ctiscope/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketStoreCreate(t *testing.T) {
	store := NewTicketStore(t.TempDir())

	ticket, err := store.Create("C2 beacon", "Seen in proxy logs", "high", "1.2.3.4", "alice")
	require.NoError(t, err)

	assert.Equal(t, "1", ticket.ID)
	assert.Equal(t, core.TicketStatusOpen, ticket.Status)
	assert.Equal(t, "alice", ticket.CreatedBy)
	assert.Contains(t, ticket.CreatedAt, "UTC")
	assert.Empty(t, ticket.UpdatedAt)

	got, err := store.Get(ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.Title, got.Title)
}

func TestTicketStoreGetMissing(t *testing.T) {
	store := NewTicketStore(t.TempDir())
	_, err := store.Get("42")
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestTicketStoreUpdateStatus(t *testing.T) {
	store := NewTicketStore(t.TempDir())
	ticket, err := store.Create("Phishing domain", "Reported by user", "medium", "evil.example.com", "bob")
	require.NoError(t, err)

	updated, err := store.UpdateStatus(ticket.ID, core.TicketStatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, core.TicketStatusInProgress, updated.Status)
	assert.NotEmpty(t, updated.UpdatedAt)

	_, err = store.UpdateStatus(ticket.ID, core.TicketStatus("bogus"))
	assert.ErrorContains(t, err, "invalid ticket status")

	_, err = store.UpdateStatus("42", core.TicketStatusClosed)
	assert.ErrorIs(t, err, ErrTicketNotFound)
}

func TestTicketStoreListNewestFirst(t *testing.T) {
	store := NewTicketStore(t.TempDir())
	for _, title := range []string{"first", "second", "third"} {
		_, err := store.Create(title, "desc", "low", "", "alice")
		require.NoError(t, err)
	}

	tickets, err := store.List()
	require.NoError(t, err)
	require.Len(t, tickets, 3)
	assert.Equal(t, "third", tickets[0].Title)
	assert.Equal(t, "first", tickets[2].Title)
}
