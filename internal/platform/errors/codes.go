package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Authorization errors
	CodeNotAdministrator  Code = "NOT_ADMINISTRATOR"
	CodeNotCurrentVP      Code = "NOT_CURRENT_VICE_PRESIDENT"
	CodeOnlyPresident     Code = "ONLY_PRESIDENT"
	CodeOnlyHouse         Code = "ONLY_HOUSE"
	CodeOnlySenate        Code = "ONLY_SENATE"
	CodeCredentialInvalid Code = "CREDENTIAL_INVALID"

	// Eligibility errors
	CodeNotActiveMember  Code = "NOT_ACTIVE_MEMBER"
	CodeInvalidSponsor   Code = "INVALID_SPONSOR"
	CodeInvalidCosponsor Code = "INVALID_COSPONSOR"

	// Capacity/structural errors
	CodeHouseFull             Code = "HOUSE_FULL"
	CodeSenateFull            Code = "SENATE_FULL"
	CodeHouseDistrictRequired Code = "HOUSE_DISTRICT_REQUIRED"
	CodeDistrictMustBeZero    Code = "DISTRICT_MUST_BE_ZERO"
	CodeInvalidRole           Code = "INVALID_ROLE"
	CodeInvalidPrincipal      Code = "INVALID_PRINCIPAL"
	CodeNameRequired          Code = "NAME_REQUIRED"

	// Bill validation errors
	CodeSponsorRequired   Code = "SPONSOR_REQUIRED"
	CodeSectionRequired   Code = "SECTION_REQUIRED"
	CodeEffectiveDatePast Code = "EFFECTIVE_DATE_PAST"
	CodeInvalidDecision   Code = "INVALID_DECISION"

	// State-conflict errors
	CodeAlreadyMember       Code = "ALREADY_MEMBER"
	CodeAlreadyNominated    Code = "ALREADY_NOMINATED"
	CodeAlreadyVoted        Code = "ALREADY_VOTED"
	CodeAlreadyRatified     Code = "ALREADY_RATIFIED"
	CodeVicePresidentActive Code = "VICE_PRESIDENT_ACTIVE"
	CodePresidentActive     Code = "PRESIDENT_ACTIVE"
	CodeNoTieBreakRequired  Code = "NO_TIE_BREAK_REQUIRED"

	// Protocol-closed errors
	CodeVotingClosed     Code = "VOTING_CLOSED"
	CodeVotingNotAllowed Code = "VOTING_NOT_ALLOWED"
	CodeInvalidBillIndex Code = "INVALID_BILL_INDEX"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// HTTPStatus maps domain codes to HTTP status codes for the JSON API.
func (c Code) HTTPStatus() int {
	switch c {
	// Unauthenticated - no verified caller identity
	case CodeCredentialInvalid:
		return http.StatusUnauthorized

	// Forbidden - wrong principal for the required role
	case CodeNotAdministrator,
		CodeNotCurrentVP,
		CodeOnlyPresident,
		CodeOnlyHouse,
		CodeOnlySenate,
		CodeNotActiveMember,
		CodeInvalidSponsor,
		CodeInvalidCosponsor:
		return http.StatusForbidden

	// Bad request - validation failures, bad input
	case CodeHouseDistrictRequired,
		CodeDistrictMustBeZero,
		CodeInvalidRole,
		CodeInvalidPrincipal,
		CodeNameRequired,
		CodeSponsorRequired,
		CodeSectionRequired,
		CodeEffectiveDatePast,
		CodeInvalidDecision:
		return http.StatusBadRequest

	// Conflict - state doesn't allow the operation
	case CodeAlreadyMember,
		CodeAlreadyNominated,
		CodeAlreadyVoted,
		CodeAlreadyRatified,
		CodeVicePresidentActive,
		CodePresidentActive,
		CodeNoTieBreakRequired,
		CodeVotingClosed,
		CodeVotingNotAllowed,
		CodeHouseFull,
		CodeSenateFull:
		return http.StatusConflict

	// Not found - resource doesn't exist
	case CodeNotFound,
		CodeInvalidBillIndex:
		return http.StatusNotFound

	default:
		return http.StatusInternalServerError
	}
}
