package bill

import (
	apperrors "github.com/statecraft/congress/internal/platform/errors"

	"github.com/statecraft/congress/internal/services/congress/domain/member"
)

// Ballot is a single vote attempt by an already-authenticated caller.
type Ballot struct {
	Principal string
	Role      member.Role
	Decision  Decision
}

// Chambers carries the live chamber sizes at the moment a ballot lands.
// Sizes count every seat ever registered in the chamber, expired or not,
// because seats are never reclaimed.
type Chambers struct {
	HouseSize  int
	SenateSize int
}

// Officers carries the current executive slot holders. Empty strings mean
// the slot has never been filled.
type Officers struct {
	VicePresident string
	President     string
}

// CastVote applies a ballot to the bill's voting sub-state.
//
// Dispatch is evaluated top to bottom, first match wins:
//
//  1. the sitting vice president resolving a pending Senate tie
//  2. the president deciding a bill both chambers passed
//  3. the closed-bill gate
//  4. the House phase
//  5. the Senate phase
//  6. fallback failure
//
// The ordering lets the vice president and president act out of band
// relative to the chamber-phase gates. On failure the sub-state is left
// untouched.
func (b *Bill) CastVote(ballot Ballot, chambers Chambers, officers Officers) error {
	if _, ok := decisionLabels[ballot.Decision]; !ok {
		return apperrors.New(apperrors.CodeInvalidDecision, "vote decision is required")
	}

	v := &b.Voting

	if officers.VicePresident != "" && ballot.Principal == officers.VicePresident {
		if !v.TieBreakRequired {
			return apperrors.New(apperrors.CodeNoTieBreakRequired, "no tie break is pending on this bill")
		}
		v.PassedSenate = ballot.Decision == DecisionYea
		v.TieBreakRequired = false
		return nil
	}

	if v.PassedHouse && v.PassedSenate && !v.PresidentialVoteCast {
		if officers.President == "" || ballot.Principal != officers.President {
			return apperrors.New(apperrors.CodeOnlyPresident, "only the president may decide this bill")
		}
		v.PresidentialDecision = ballot.Decision
		v.PresidentialVoteCast = true
		v.Passed = ballot.Decision == DecisionYea
		v.VotingAllowed = false
		return nil
	}

	if !v.VotingAllowed {
		return apperrors.New(apperrors.CodeVotingClosed, "voting on this bill is closed")
	}

	if !v.PassedHouse {
		if ballot.Role != member.RoleHouse {
			return apperrors.New(apperrors.CodeOnlyHouse, "only house members may vote in the house phase")
		}
		if _, voted := v.HouseVoted[ballot.Principal]; voted {
			return apperrors.New(apperrors.CodeAlreadyVoted, "principal already voted on this bill")
		}
		v.HouseVoted[ballot.Principal] = ballot.Decision
		v.HouseTally.add(ballot.Decision)
		// Resolution happens exactly when the last seat's vote lands,
		// measured against the live chamber size.
		if len(v.HouseVoted) == chambers.HouseSize {
			v.PassedHouse = v.HouseTally.Yea > v.HouseTally.Nay
		}
		return nil
	}

	if !v.PassedSenate {
		if v.TieBreakRequired {
			return apperrors.New(apperrors.CodeNotCurrentVP, "only the sitting vice president may break a senate tie")
		}
		if ballot.Role != member.RoleSenate {
			return apperrors.New(apperrors.CodeOnlySenate, "only senators may vote in the senate phase")
		}
		if _, voted := v.SenateVoted[ballot.Principal]; voted {
			return apperrors.New(apperrors.CodeAlreadyVoted, "principal already voted on this bill")
		}
		v.SenateVoted[ballot.Principal] = ballot.Decision
		v.SenateTally.add(ballot.Decision)
		if len(v.SenateVoted) == chambers.SenateSize {
			switch {
			case v.SenateTally.Yea > v.SenateTally.Nay:
				v.PassedSenate = true
			case v.SenateTally.Yea == v.SenateTally.Nay:
				v.TieBreakRequired = true
			}
		}
		return nil
	}

	return apperrors.New(apperrors.CodeVotingNotAllowed, "voting is not allowed on this bill")
}
