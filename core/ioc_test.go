package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIOCTypeIsValid(t *testing.T) {
	for _, typ := range AllIOCTypes {
		assert.True(t, typ.IsValid(), "expected %s to be valid", typ)
	}
	assert.False(t, IOCType("email").IsValid())
	assert.False(t, IOCType("").IsValid())
}

func TestLookupSeverity(t *testing.T) {
	tests := []struct {
		name     string
		lookup   Lookup
		expected Severity
	}{
		{"malicious wins", Lookup{Malicious: 2, Suspicious: 5}, SeverityMalicious},
		{"suspicious without malicious", Lookup{Suspicious: 1}, SeveritySuspicious},
		{"all zero is harmless", Lookup{}, SeverityHarmless},
		{"undetected only is harmless", Lookup{Undetected: 40}, SeverityHarmless},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.lookup.Severity())
		})
	}
}

func TestTicketStatusIsValid(t *testing.T) {
	assert.True(t, TicketStatusOpen.IsValid())
	assert.True(t, TicketStatusInProgress.IsValid())
	assert.True(t, TicketStatusClosed.IsValid())
	assert.False(t, TicketStatus("resolved").IsValid())
}
