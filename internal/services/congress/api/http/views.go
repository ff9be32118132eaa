package http

import (
	"time"

	"github.com/statecraft/congress/internal/services/congress/domain/bill"
	"github.com/statecraft/congress/internal/services/congress/domain/member"
	"github.com/statecraft/congress/internal/services/congress/domain/nomination"
	"github.com/statecraft/congress/internal/services/congress/storage"
)

type memberView struct {
	Principal string `json:"principal"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
	State     string `json:"state,omitempty"`
	District  int    `json:"district,omitempty"`
	TermStart string `json:"term_start"`
	TermEnd   string `json:"term_end"`
	Active    bool   `json:"active"`
}

func toMemberView(m member.Member, at time.Time) memberView {
	return memberView{
		Principal: m.Principal,
		FirstName: m.FirstName,
		LastName:  m.LastName,
		Role:      m.Role.String(),
		State:     m.State,
		District:  m.District,
		TermStart: m.TermStart.UTC().Format(time.RFC3339),
		TermEnd:   m.TermEnd.UTC().Format(time.RFC3339),
		Active:    m.ActiveAt(at),
	}
}

type tallyView struct {
	Yea     int `json:"yea"`
	Nay     int `json:"nay"`
	Abstain int `json:"abstain"`
}

type votingView struct {
	Phase            string    `json:"phase"`
	PassedHouse      bool      `json:"passed_house"`
	PassedSenate     bool      `json:"passed_senate"`
	Passed           bool      `json:"passed"`
	TieBreakRequired bool      `json:"tie_break_required"`
	VotingAllowed    bool      `json:"voting_allowed"`
	HouseTally       tallyView `json:"house_tally"`
	SenateTally      tallyView `json:"senate_tally"`
	HouseVotes       int       `json:"house_votes"`
	SenateVotes      int       `json:"senate_votes"`
}

type billView struct {
	Index          int        `json:"index"`
	Title          string     `json:"title,omitempty"`
	EnactingClause string     `json:"enacting_clause,omitempty"`
	ProposedAt     string     `json:"proposed_at"`
	EffectiveAt    string     `json:"effective_at"`
	Sponsors       []string   `json:"sponsors"`
	Cosponsors     []string   `json:"cosponsors,omitempty"`
	Sections       []string   `json:"sections"`
	Definitions    []string   `json:"definitions,omitempty"`
	Voting         votingView `json:"voting"`
}

func toBillView(b bill.Bill) billView {
	v := b.Voting
	return billView{
		Index:          b.Index,
		Title:          b.Title,
		EnactingClause: b.EnactingClause,
		ProposedAt:     b.ProposedAt.UTC().Format(time.RFC3339),
		EffectiveAt:    b.EffectiveAt.UTC().Format(time.RFC3339),
		Sponsors:       b.Sponsors,
		Cosponsors:     b.Cosponsors,
		Sections:       b.Sections,
		Definitions:    b.Definitions,
		Voting: votingView{
			Phase:            v.Phase().String(),
			PassedHouse:      v.PassedHouse,
			PassedSenate:     v.PassedSenate,
			Passed:           v.Passed,
			TieBreakRequired: v.TieBreakRequired,
			VotingAllowed:    v.VotingAllowed,
			HouseTally:       tallyView(v.HouseTally),
			SenateTally:      tallyView(v.SenateTally),
			HouseVotes:       len(v.HouseVoted),
			SenateVotes:      len(v.SenateVoted),
		},
	}
}

type nominationView struct {
	Candidate     string `json:"candidate"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Role          string `json:"role"`
	State         string `json:"state,omitempty"`
	District      int    `json:"district,omitempty"`
	NominatedAt   string `json:"nominated_at"`
	Ratifications int    `json:"ratifications"`
	Admitted      bool   `json:"admitted"`
}

func toNominationView(n nomination.Nomination, admitted bool) nominationView {
	return nominationView{
		Candidate:     n.Candidate,
		FirstName:     n.FirstName,
		LastName:      n.LastName,
		Role:          n.Role.String(),
		State:         n.State,
		District:      n.District,
		NominatedAt:   n.NominatedAt.UTC().Format(time.RFC3339),
		Ratifications: n.Count(),
		Admitted:      admitted,
	}
}

type journalEntryView struct {
	ID         string `json:"id"`
	Actor      string `json:"actor"`
	Action     string `json:"action"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
	Detail     string `json:"detail,omitempty"`
	CreatedAt  string `json:"created_at"`
}

func toJournalEntryView(entry storage.JournalEntry) journalEntryView {
	return journalEntryView{
		ID:         entry.ID,
		Actor:      entry.Actor,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		Detail:     entry.Detail,
		CreatedAt:  entry.CreatedAt.UTC().Format(time.RFC3339),
	}
}
