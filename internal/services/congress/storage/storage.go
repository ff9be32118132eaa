// Package storage defines the persistence interfaces for the congress service.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/statecraft/congress/internal/services/congress/domain/bill"
	"github.com/statecraft/congress/internal/services/congress/domain/member"
	"github.com/statecraft/congress/internal/services/congress/domain/nomination"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// RosterStore persists members and answers seat-count questions.
type RosterStore interface {
	// PutMember inserts a member record. Principals are unique forever; a
	// second insert for the same principal fails.
	PutMember(ctx context.Context, m member.Member) error
	// GetMember fetches a member by principal, expired or not.
	GetMember(ctx context.Context, principal string) (member.Member, error)
	// ListMembers returns every registered member ordered by term start.
	ListMembers(ctx context.Context) ([]member.Member, error)
	// ChamberSeatCount counts every seat ever registered in a chamber.
	// Expired members keep their seats; the count never shrinks.
	ChamberSeatCount(ctx context.Context, chamber member.Role) (int, error)
	// CurrentOfficer returns the most recently registered holder of a
	// singleton executive role, or ErrNotFound if the slot was never filled.
	CurrentOfficer(ctx context.Context, role member.Role) (member.Member, error)
}

// VoteRecord is one chamber member's recorded vote on a bill.
type VoteRecord struct {
	BillIndex int
	Stage     string // "house" or "senate"
	Principal string
	Decision  bill.Decision
	CastAt    time.Time
}

// BillStore persists the append-only bill ledger.
type BillStore interface {
	// AppendBill places the bill at the end of the ledger and returns it
	// with its assigned index.
	AppendBill(ctx context.Context, b bill.Bill) (bill.Bill, error)
	// GetBill fetches a bill and its full voting sub-state by index.
	GetBill(ctx context.Context, index int) (bill.Bill, error)
	// BillCount returns the ledger length.
	BillCount(ctx context.Context) (int, error)
	// UpdateVoting persists a bill's voting sub-state, recording the new
	// chamber vote (when the transition added one) in the same transaction.
	UpdateVoting(ctx context.Context, index int, v bill.Voting, vote *VoteRecord) error
}

// NominationStore persists pending nominations and their ratifier sets.
type NominationStore interface {
	// PutNomination inserts a live nomination. Candidates are unique; a
	// second live nomination for the same candidate fails.
	PutNomination(ctx context.Context, n nomination.Nomination) error
	// GetNomination fetches a live nomination with its ratifier set.
	GetNomination(ctx context.Context, candidate string) (nomination.Nomination, error)
	// RecordRatification adds one ratifier to a live nomination.
	RecordRatification(ctx context.Context, candidate, principal string, at time.Time) error
	// FinalizeNomination removes the nomination and registers the admitted
	// member in a single transaction.
	FinalizeNomination(ctx context.Context, candidate string, m member.Member) error
}

// JournalEntry is one audit record of a committed state transition.
type JournalEntry struct {
	ID         string
	Actor      string
	Action     string
	EntityType string
	EntityID   string
	Detail     string
	CreatedAt  time.Time
}

// JournalStore persists the audit journal.
type JournalStore interface {
	AppendEntry(ctx context.Context, entry JournalEntry) error
	ListEntries(ctx context.Context, limit int) ([]JournalEntry, error)
}

// Store aggregates every persistence interface the service needs.
type Store interface {
	RosterStore
	BillStore
	NominationStore
	JournalStore
	Close() error
}
