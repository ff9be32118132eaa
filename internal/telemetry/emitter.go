// Package telemetry records audit journal entries for committed transitions.
package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/statecraft/congress/internal/id"
	"github.com/statecraft/congress/internal/services/congress/storage"
)

// Well-known journal actions.
const (
	ActionMemberRegistered    = "member.registered"
	ActionBillProposed        = "bill.proposed"
	ActionVoteCast            = "vote.cast"
	ActionMemberNominated     = "member.nominated"
	ActionNominationRatified  = "nomination.ratified"
	ActionNominationFinalized = "nomination.finalized"
)

// Emitter records audit journal entries.
type Emitter struct {
	store storage.JournalStore
	clock func() time.Time
}

// NewEmitter creates a new journal emitter.
func NewEmitter(store storage.JournalStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// WithClock overrides the emitter clock.
func (e *Emitter) WithClock(clock func() time.Time) *Emitter {
	if e != nil && clock != nil {
		e.clock = clock
	}
	return e
}

// Emit records one journal entry. It is a no-op when the store is nil, and
// journal failures never fail the transition that produced them.
func (e *Emitter) Emit(ctx context.Context, entry storage.JournalEntry) {
	if e == nil || e.store == nil {
		return
	}
	if entry.ID == "" {
		generated, err := id.NewID()
		if err != nil {
			log.Printf("generate journal entry id: %v", err)
			return
		}
		entry.ID = generated
	}
	if entry.CreatedAt.IsZero() {
		if e.clock == nil {
			entry.CreatedAt = time.Now().UTC()
		} else {
			entry.CreatedAt = e.clock().UTC()
		}
	}
	if err := e.store.AppendEntry(ctx, entry); err != nil {
		log.Printf("append journal entry: %v", err)
	}
}
