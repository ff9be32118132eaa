package bill

import (
	"strings"
	"time"

	apperrors "github.com/statecraft/congress/internal/platform/errors"
)

// Decision is a single vote value.
type Decision int

const (
	// DecisionUnspecified represents an invalid decision value.
	DecisionUnspecified Decision = iota
	// DecisionYea is a vote in favor.
	DecisionYea
	// DecisionNay is a vote against.
	DecisionNay
	// DecisionAbstain is a recorded abstention.
	DecisionAbstain
)

// decisionLabels maps decisions to their wire/storage labels.
var decisionLabels = map[Decision]string{
	DecisionYea:     "yea",
	DecisionNay:     "nay",
	DecisionAbstain: "abstain",
}

// String returns the storage label for the decision.
func (d Decision) String() string {
	if label, ok := decisionLabels[d]; ok {
		return label
	}
	return "unspecified"
}

// ParseDecision maps a label back to a Decision.
func ParseDecision(label string) (Decision, bool) {
	for decision, l := range decisionLabels {
		if l == strings.TrimSpace(strings.ToLower(label)) {
			return decision, true
		}
	}
	return DecisionUnspecified, false
}

// Tally counts yea, nay and abstain votes for one chamber.
type Tally struct {
	Yea     int
	Nay     int
	Abstain int
}

// Total returns the number of votes counted in the tally.
func (t Tally) Total() int {
	return t.Yea + t.Nay + t.Abstain
}

func (t *Tally) add(d Decision) {
	switch d {
	case DecisionYea:
		t.Yea++
	case DecisionNay:
		t.Nay++
	case DecisionAbstain:
		t.Abstain++
	}
}

// Phase is the bill's position in its voting state machine.
type Phase int

const (
	// PhaseHouse is the initial phase: House members vote.
	PhaseHouse Phase = iota
	// PhaseSenate follows a House pass: senators vote.
	PhaseSenate
	// PhaseTieBreak awaits the vice president's deciding vote.
	PhaseTieBreak
	// PhasePresidential awaits the president's signature or veto.
	PhasePresidential
	// PhaseClosed means no further votes are accepted.
	PhaseClosed
)

// String returns a label for the phase.
func (p Phase) String() string {
	switch p {
	case PhaseHouse:
		return "house"
	case PhaseSenate:
		return "senate"
	case PhaseTieBreak:
		return "tie_break"
	case PhasePresidential:
		return "presidential"
	case PhaseClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Voting is a bill's mutable voting sub-state.
type Voting struct {
	PassedHouse      bool
	PassedSenate     bool
	Passed           bool
	TieBreakRequired bool
	VotingAllowed    bool

	HouseTally  Tally
	SenateTally Tally

	// HouseVoted and SenateVoted record which principals have voted and how.
	HouseVoted  map[string]Decision
	SenateVoted map[string]Decision

	PresidentialDecision Decision
	PresidentialVoteCast bool
}

// NewVoting returns the initial voting sub-state for a freshly proposed bill.
func NewVoting() Voting {
	return Voting{
		VotingAllowed: true,
		HouseVoted:    make(map[string]Decision),
		SenateVoted:   make(map[string]Decision),
	}
}

// Phase derives the single current phase from the voting sub-state. Exactly
// one phase is current at any time.
func (v Voting) Phase() Phase {
	switch {
	case !v.VotingAllowed:
		return PhaseClosed
	case v.TieBreakRequired:
		return PhaseTieBreak
	case v.PassedHouse && v.PassedSenate:
		return PhasePresidential
	case !v.PassedHouse:
		return PhaseHouse
	default:
		return PhaseSenate
	}
}

// Bill is an entry in the append-only bill ledger. Metadata is immutable once
// proposed; only the voting sub-state changes afterwards.
type Bill struct {
	Index          int
	Title          string
	EnactingClause string
	ProposedAt     time.Time
	EffectiveAt    time.Time

	Sponsors   []string
	Cosponsors []string

	Sections    []string
	Definitions []string

	Voting Voting
}

// ProposeInput describes a bill proposal before ledger placement.
type ProposeInput struct {
	Title          string
	EnactingClause string
	EffectiveAt    time.Time
	Sponsors       []string
	Cosponsors     []string
	Sections       []string
	Definitions    []string
}

// Propose validates the proposal shape and mints a bill whose voting
// sub-state starts in the House phase. Sponsor eligibility is the caller's
// concern; this only checks structure and the effective date.
func Propose(input ProposeInput, now func() time.Time) (Bill, error) {
	if now == nil {
		now = time.Now
	}

	sponsors := trimAll(input.Sponsors)
	if len(sponsors) == 0 {
		return Bill{}, apperrors.New(apperrors.CodeSponsorRequired, "at least one sponsor is required")
	}
	sections := trimAll(input.Sections)
	if len(sections) == 0 {
		return Bill{}, apperrors.New(apperrors.CodeSectionRequired, "at least one section is required")
	}

	proposedAt := now().UTC()
	if input.EffectiveAt.Before(proposedAt) {
		return Bill{}, apperrors.New(apperrors.CodeEffectiveDatePast, "effective date must not be in the past")
	}

	return Bill{
		Title:          strings.TrimSpace(input.Title),
		EnactingClause: strings.TrimSpace(input.EnactingClause),
		ProposedAt:     proposedAt,
		EffectiveAt:    input.EffectiveAt.UTC(),
		Sponsors:       sponsors,
		Cosponsors:     trimAll(input.Cosponsors),
		Sections:       sections,
		Definitions:    trimAll(input.Definitions),
		Voting:         NewVoting(),
	}, nil
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
