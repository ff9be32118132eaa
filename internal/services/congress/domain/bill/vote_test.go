package bill

import (
	"fmt"
	"testing"
	"time"

	apperrors "github.com/statecraft/congress/internal/platform/errors"

	"github.com/statecraft/congress/internal/services/congress/domain/member"
)

func newTestBill(t *testing.T) *Bill {
	t.Helper()
	now := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	b, err := Propose(ProposeInput{
		Title:       "Test Act",
		EffectiveAt: now.AddDate(0, 1, 0),
		Sponsors:    []string{"rep-1"},
		Sections:    []string{"s1"},
	}, fixedClock(now))
	if err != nil {
		t.Fatalf("propose: %v", err)
	}
	return &b
}

func houseBallot(n int, d Decision) Ballot {
	return Ballot{Principal: fmt.Sprintf("rep-%d", n), Role: member.RoleHouse, Decision: d}
}

func senateBallot(n int, d Decision) Ballot {
	return Ballot{Principal: fmt.Sprintf("sen-%d", n), Role: member.RoleSenate, Decision: d}
}

// passHouse walks a bill through a 2-1 House pass with three seats.
func passHouse(t *testing.T, b *Bill, chambers Chambers, officers Officers) {
	t.Helper()
	for i, d := range []Decision{DecisionYea, DecisionYea, DecisionNay} {
		if err := b.CastVote(houseBallot(i+1, d), chambers, officers); err != nil {
			t.Fatalf("house vote %d: %v", i+1, err)
		}
	}
	if !b.Voting.PassedHouse {
		t.Fatal("expected house pass")
	}
}

func TestCastVote_HouseResolutionStrictMajority(t *testing.T) {
	chambers := Chambers{HouseSize: 3, SenateSize: 2}
	officers := Officers{}

	b := newTestBill(t)
	if err := b.CastVote(houseBallot(1, DecisionYea), chambers, officers); err != nil {
		t.Fatalf("vote 1: %v", err)
	}
	if b.Voting.PassedHouse {
		t.Fatal("house must not resolve before full participation")
	}
	if err := b.CastVote(houseBallot(2, DecisionNay), chambers, officers); err != nil {
		t.Fatalf("vote 2: %v", err)
	}
	if err := b.CastVote(houseBallot(3, DecisionYea), chambers, officers); err != nil {
		t.Fatalf("vote 3: %v", err)
	}

	if !b.Voting.PassedHouse {
		t.Fatal("expected house pass with yea=2 nay=1")
	}
	if b.Voting.Phase() != PhaseSenate {
		t.Fatalf("phase = %s, want %s", b.Voting.Phase(), PhaseSenate)
	}
}

func TestCastVote_HouseAbstentionsCountTowardParticipation(t *testing.T) {
	chambers := Chambers{HouseSize: 3, SenateSize: 2}
	b := newTestBill(t)

	for i, d := range []Decision{DecisionYea, DecisionAbstain, DecisionAbstain} {
		if err := b.CastVote(houseBallot(i+1, d), chambers, Officers{}); err != nil {
			t.Fatalf("vote %d: %v", i+1, err)
		}
	}
	// yea=1 nay=0: strict majority over nay passes regardless of abstentions.
	if !b.Voting.PassedHouse {
		t.Fatal("expected house pass with yea=1 nay=0 abstain=2")
	}
}

func TestCastVote_HouseTieStallsForever(t *testing.T) {
	chambers := Chambers{HouseSize: 2, SenateSize: 2}
	b := newTestBill(t)

	if err := b.CastVote(houseBallot(1, DecisionYea), chambers, Officers{}); err != nil {
		t.Fatalf("vote 1: %v", err)
	}
	if err := b.CastVote(houseBallot(2, DecisionNay), chambers, Officers{}); err != nil {
		t.Fatalf("vote 2: %v", err)
	}

	if b.Voting.PassedHouse {
		t.Fatal("tied house vote must not pass")
	}
	if b.Voting.Phase() != PhaseHouse {
		t.Fatalf("phase = %s, want %s", b.Voting.Phase(), PhaseHouse)
	}
	// Every seat has voted; nothing can move the bill forward.
	err := b.CastVote(houseBallot(1, DecisionYea), chambers, Officers{})
	if !apperrors.IsCode(err, apperrors.CodeAlreadyVoted) {
		t.Fatalf("revote after tie: got %v", err)
	}
	err = b.CastVote(senateBallot(1, DecisionYea), chambers, Officers{})
	if !apperrors.IsCode(err, apperrors.CodeOnlyHouse) {
		t.Fatalf("senator in house phase: got %v", err)
	}
}

func TestCastVote_HouseRoleAndDoubleVoteGates(t *testing.T) {
	chambers := Chambers{HouseSize: 3, SenateSize: 2}
	b := newTestBill(t)

	err := b.CastVote(senateBallot(1, DecisionYea), chambers, Officers{})
	if !apperrors.IsCode(err, apperrors.CodeOnlyHouse) {
		t.Fatalf("senator voting in house phase: got %v", err)
	}

	if err := b.CastVote(houseBallot(1, DecisionYea), chambers, Officers{}); err != nil {
		t.Fatalf("vote: %v", err)
	}
	err = b.CastVote(houseBallot(1, DecisionNay), chambers, Officers{})
	if !apperrors.IsCode(err, apperrors.CodeAlreadyVoted) {
		t.Fatalf("double vote: got %v", err)
	}
	if b.Voting.HouseTally.Total() != 1 {
		t.Fatalf("tally total = %d, want 1 after rejected double vote", b.Voting.HouseTally.Total())
	}
}

func TestCastVote_SenateTieRequiresTieBreak(t *testing.T) {
	chambers := Chambers{HouseSize: 3, SenateSize: 2}
	officers := Officers{VicePresident: "vp-1", President: "pres-1"}
	b := newTestBill(t)
	passHouse(t, b, chambers, officers)

	if err := b.CastVote(senateBallot(1, DecisionYea), chambers, officers); err != nil {
		t.Fatalf("senate vote 1: %v", err)
	}
	if err := b.CastVote(senateBallot(2, DecisionNay), chambers, officers); err != nil {
		t.Fatalf("senate vote 2: %v", err)
	}

	if !b.Voting.TieBreakRequired {
		t.Fatal("expected tie break required after tied full senate vote")
	}
	if b.Voting.Phase() != PhaseTieBreak {
		t.Fatalf("phase = %s, want %s", b.Voting.Phase(), PhaseTieBreak)
	}

	// Non-VP callers cannot act while the tie is pending.
	err := b.CastVote(senateBallot(1, DecisionYea), chambers, officers)
	if !apperrors.IsCode(err, apperrors.CodeNotCurrentVP) {
		t.Fatalf("senator during pending tie: got %v", err)
	}
}

func TestCastVote_VicePresidentBreaksTie(t *testing.T) {
	for _, tc := range []struct {
		decision Decision
		passed   bool
	}{
		{DecisionYea, true},
		{DecisionNay, false},
	} {
		chambers := Chambers{HouseSize: 3, SenateSize: 2}
		officers := Officers{VicePresident: "vp-1", President: "pres-1"}
		b := newTestBill(t)
		passHouse(t, b, chambers, officers)
		if err := b.CastVote(senateBallot(1, DecisionYea), chambers, officers); err != nil {
			t.Fatalf("senate vote 1: %v", err)
		}
		if err := b.CastVote(senateBallot(2, DecisionNay), chambers, officers); err != nil {
			t.Fatalf("senate vote 2: %v", err)
		}

		vp := Ballot{Principal: "vp-1", Role: member.RoleVicePresident, Decision: tc.decision}
		if err := b.CastVote(vp, chambers, officers); err != nil {
			t.Fatalf("tie break: %v", err)
		}
		if b.Voting.TieBreakRequired {
			t.Fatal("tie break flag must clear after the VP decision")
		}
		if b.Voting.PassedSenate != tc.passed {
			t.Fatalf("passed senate = %v, want %v for %s", b.Voting.PassedSenate, tc.passed, tc.decision)
		}
		// The VP decision is not tallied.
		if b.Voting.SenateTally.Total() != 2 {
			t.Fatalf("senate tally total = %d, want 2", b.Voting.SenateTally.Total())
		}
	}
}

func TestCastVote_VPWithoutPendingTieFails(t *testing.T) {
	chambers := Chambers{HouseSize: 3, SenateSize: 2}
	officers := Officers{VicePresident: "vp-1"}
	b := newTestBill(t)

	for _, d := range []Decision{DecisionYea, DecisionNay, DecisionAbstain} {
		vp := Ballot{Principal: "vp-1", Role: member.RoleVicePresident, Decision: d}
		err := b.CastVote(vp, chambers, officers)
		if !apperrors.IsCode(err, apperrors.CodeNoTieBreakRequired) {
			t.Fatalf("vp without tie (%s): got %v", d, err)
		}
	}
}

func TestCastVote_PresidentialDecisionClosesBill(t *testing.T) {
	for _, tc := range []struct {
		decision Decision
		passed   bool
	}{
		{DecisionYea, true},
		{DecisionNay, false},
	} {
		chambers := Chambers{HouseSize: 3, SenateSize: 2}
		officers := Officers{VicePresident: "vp-1", President: "pres-1"}
		b := newTestBill(t)
		passHouse(t, b, chambers, officers)
		for i := 1; i <= 2; i++ {
			if err := b.CastVote(senateBallot(i, DecisionYea), chambers, officers); err != nil {
				t.Fatalf("senate vote %d: %v", i, err)
			}
		}
		if b.Voting.Phase() != PhasePresidential {
			t.Fatalf("phase = %s, want %s", b.Voting.Phase(), PhasePresidential)
		}

		err := b.CastVote(houseBallot(1, DecisionYea), chambers, officers)
		if !apperrors.IsCode(err, apperrors.CodeOnlyPresident) {
			t.Fatalf("non-president in presidential phase: got %v", err)
		}

		pres := Ballot{Principal: "pres-1", Role: member.RolePresident, Decision: tc.decision}
		if err := b.CastVote(pres, chambers, officers); err != nil {
			t.Fatalf("presidential decision: %v", err)
		}
		if !b.Voting.PresidentialVoteCast {
			t.Fatal("expected presidential vote recorded")
		}
		if b.Voting.Passed != tc.passed {
			t.Fatalf("passed = %v, want %v for %s", b.Voting.Passed, tc.passed, tc.decision)
		}
		if b.Voting.VotingAllowed {
			t.Fatal("expected voting closed after presidential decision")
		}
		if b.Voting.Phase() != PhaseClosed {
			t.Fatalf("phase = %s, want %s", b.Voting.Phase(), PhaseClosed)
		}

		err = b.CastVote(pres, chambers, officers)
		if !apperrors.IsCode(err, apperrors.CodeVotingClosed) {
			t.Fatalf("vote on closed bill: got %v", err)
		}
	}
}

func TestCastVote_LiveChamberSizeReopensParticipation(t *testing.T) {
	// Two seats vote to a tie; a third seat registered later can still vote
	// because resolution is measured against the live chamber size.
	b := newTestBill(t)
	small := Chambers{HouseSize: 2, SenateSize: 2}
	if err := b.CastVote(houseBallot(1, DecisionYea), small, Officers{}); err != nil {
		t.Fatalf("vote 1: %v", err)
	}
	if err := b.CastVote(houseBallot(2, DecisionNay), small, Officers{}); err != nil {
		t.Fatalf("vote 2: %v", err)
	}
	if b.Voting.PassedHouse {
		t.Fatal("tied house vote must not pass")
	}

	grown := Chambers{HouseSize: 3, SenateSize: 2}
	if err := b.CastVote(houseBallot(3, DecisionYea), grown, Officers{}); err != nil {
		t.Fatalf("vote 3 after growth: %v", err)
	}
	if !b.Voting.PassedHouse {
		t.Fatal("expected house pass once the grown chamber fully voted")
	}
}

func TestCastVote_InvalidDecision(t *testing.T) {
	b := newTestBill(t)
	err := b.CastVote(Ballot{Principal: "rep-1", Role: member.RoleHouse}, Chambers{HouseSize: 1}, Officers{})
	if !apperrors.IsCode(err, apperrors.CodeInvalidDecision) {
		t.Fatalf("unspecified decision: got %v", err)
	}
}
