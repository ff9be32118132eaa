// Package nomination models peer nominations and their ratification quorum.
//
// A candidate has at most one live nomination. Each active member may ratify
// it once; the candidate is admitted the moment the ratification count
// strictly exceeds floor(chamberSize/2), with the chamber size read fresh at
// every ratification. A nomination whose ratifications stop exactly at the
// threshold stalls forever; there is no tie-break path.
package nomination

import (
	"strings"
	"time"

	apperrors "github.com/statecraft/congress/internal/platform/errors"

	"github.com/statecraft/congress/internal/services/congress/domain/member"
)

// Nomination is a pending membership proposal awaiting ratification.
type Nomination struct {
	Candidate   string
	FirstName   string
	LastName    string
	Role        member.Role
	State       string
	District    int
	NominatedAt time.Time

	// RatifiedBy records which principals have ratified, keyed by principal.
	RatifiedBy map[string]time.Time
}

// Count returns the number of ratifications recorded so far.
func (n Nomination) Count() int {
	return len(n.RatifiedBy)
}

// Input describes a nomination request.
type Input struct {
	Candidate string
	FirstName string
	LastName  string
	Role      member.Role
	State     string
	District  int
}

// New validates input and mints a nomination with no ratifications.
// Only chamber seats can be nominated; executive roles are not electable
// through this path.
func New(input Input, now func() time.Time) (Nomination, error) {
	if now == nil {
		now = time.Now
	}

	candidate := strings.TrimSpace(input.Candidate)
	if candidate == "" {
		return Nomination{}, apperrors.New(apperrors.CodeInvalidPrincipal, "candidate principal is required")
	}
	firstName := strings.TrimSpace(input.FirstName)
	lastName := strings.TrimSpace(input.LastName)
	if firstName == "" || lastName == "" {
		return Nomination{}, apperrors.New(apperrors.CodeNameRequired, "first and last name are required")
	}

	switch input.Role {
	case member.RoleHouse:
		if input.District == 0 {
			return Nomination{}, apperrors.New(apperrors.CodeHouseDistrictRequired, "house nominations require a nonzero district")
		}
	case member.RoleSenate:
		if input.District != 0 {
			return Nomination{}, apperrors.New(apperrors.CodeDistrictMustBeZero, "district must be zero for senate nominations")
		}
	default:
		return Nomination{}, apperrors.New(apperrors.CodeInvalidRole, "only house and senate seats can be nominated")
	}

	return Nomination{
		Candidate:   candidate,
		FirstName:   firstName,
		LastName:    lastName,
		Role:        input.Role,
		State:       strings.TrimSpace(input.State),
		District:    input.District,
		NominatedAt: now().UTC(),
		RatifiedBy:  make(map[string]time.Time),
	}, nil
}

// Threshold returns the ratification threshold for a chamber of the given
// size. The count must strictly exceed it to admit the candidate.
func Threshold(chamberSize int) int {
	return chamberSize / 2
}

// Ratify records one ratification by principal and reports whether the
// nomination has now cleared the chamber's threshold. Ratifying twice with
// the same principal fails without changing the count.
func (n *Nomination) Ratify(principal string, chamberSize int, now func() time.Time) (ratified bool, err error) {
	if now == nil {
		now = time.Now
	}
	principal = strings.TrimSpace(principal)
	if principal == "" {
		return false, apperrors.New(apperrors.CodeInvalidPrincipal, "ratifier principal is required")
	}
	if _, already := n.RatifiedBy[principal]; already {
		return false, apperrors.New(apperrors.CodeAlreadyRatified, "principal already ratified this nomination")
	}
	if n.RatifiedBy == nil {
		n.RatifiedBy = make(map[string]time.Time)
	}
	n.RatifiedBy[principal] = now().UTC()

	return n.Count() > Threshold(chamberSize), nil
}

// RegisterInput converts the nomination's stored fields into the roster
// registration input used once the quorum clears.
func (n Nomination) RegisterInput() member.RegisterInput {
	return member.RegisterInput{
		Principal: n.Candidate,
		FirstName: n.FirstName,
		LastName:  n.LastName,
		Role:      n.Role,
		State:     n.State,
		District:  n.District,
	}
}
