package member

import (
	"strings"
	"time"

	apperrors "github.com/statecraft/congress/internal/platform/errors"
)

// Role identifies the seat a member holds.
type Role int

const (
	// RoleUnspecified represents an invalid role value.
	RoleUnspecified Role = iota
	// RoleHouse is a voting House representative.
	RoleHouse
	// RoleSenate is a senator.
	RoleSenate
	// RoleNonVoting is a non-voting delegate.
	RoleNonVoting
	// RoleVicePresident is the vice president, who breaks Senate ties.
	RoleVicePresident
	// RolePresident is the president, who signs or vetoes bills.
	RolePresident
)

// Chamber capacities. Seats are never reclaimed, so these bound the
// total number of registrations per chamber, not the active headcount.
const (
	HouseCapacity  = 435
	SenateCapacity = 100
)

// roleLabels maps roles to their wire/storage labels.
var roleLabels = map[Role]string{
	RoleHouse:         "house",
	RoleSenate:        "senate",
	RoleNonVoting:     "non_voting",
	RoleVicePresident: "vice_president",
	RolePresident:     "president",
}

// String returns the storage label for the role.
func (r Role) String() string {
	if label, ok := roleLabels[r]; ok {
		return label
	}
	return "unspecified"
}

// ParseRole maps a label back to a Role. The second return reports whether
// the label named a known role.
func ParseRole(label string) (Role, bool) {
	for role, l := range roleLabels {
		if l == strings.TrimSpace(strings.ToLower(label)) {
			return role, true
		}
	}
	return RoleUnspecified, false
}

// TermYears returns the term length for the role in years.
func (r Role) TermYears() int {
	switch r {
	case RoleHouse, RoleNonVoting:
		return 2
	case RoleSenate:
		return 6
	case RoleVicePresident, RolePresident:
		return 4
	default:
		return 0
	}
}

// Chamber reports whether the role occupies a chamber seat and which one.
// Non-voting delegates and the executive roles sit in neither chamber.
func (r Role) Chamber() (Role, bool) {
	switch r {
	case RoleHouse:
		return RoleHouse, true
	case RoleSenate:
		return RoleSenate, true
	default:
		return RoleUnspecified, false
	}
}

// Member is a registered principal with a term-bounded seat.
//
// Members are created exactly once per principal and never deleted; expiry is
// the derived ActiveAt predicate, not a mutation.
type Member struct {
	Principal string
	FirstName string
	LastName  string
	Role      Role
	State     string
	District  int
	TermStart time.Time
	TermEnd   time.Time
}

// ActiveAt reports whether the member's term is still running at t.
func (m Member) ActiveAt(t time.Time) bool {
	return m.TermEnd.After(t)
}

// RegisterInput describes a registration request before term assignment.
type RegisterInput struct {
	Principal string
	FirstName string
	LastName  string
	Role      Role
	State     string
	District  int
}

// New validates input and mints a member whose term starts at now.
// The term end is derived from the role's term length.
func New(input RegisterInput, now func() time.Time) (Member, error) {
	if now == nil {
		now = time.Now
	}

	normalized, err := normalizeRegisterInput(input)
	if err != nil {
		return Member{}, err
	}

	start := now().UTC()
	return Member{
		Principal: normalized.Principal,
		FirstName: normalized.FirstName,
		LastName:  normalized.LastName,
		Role:      normalized.Role,
		State:     normalized.State,
		District:  normalized.District,
		TermStart: start,
		TermEnd:   start.AddDate(normalized.Role.TermYears(), 0, 0),
	}, nil
}

func normalizeRegisterInput(input RegisterInput) (RegisterInput, error) {
	input.Principal = strings.TrimSpace(input.Principal)
	if input.Principal == "" {
		return RegisterInput{}, apperrors.New(apperrors.CodeInvalidPrincipal, "principal is required")
	}
	input.FirstName = strings.TrimSpace(input.FirstName)
	input.LastName = strings.TrimSpace(input.LastName)
	if input.FirstName == "" || input.LastName == "" {
		return RegisterInput{}, apperrors.New(apperrors.CodeNameRequired, "first and last name are required")
	}
	input.State = strings.TrimSpace(input.State)

	switch input.Role {
	case RoleHouse:
		if input.District == 0 {
			return RegisterInput{}, apperrors.New(apperrors.CodeHouseDistrictRequired, "house members require a nonzero district")
		}
	case RoleSenate, RoleNonVoting, RoleVicePresident, RolePresident:
		if input.District != 0 {
			return RegisterInput{}, apperrors.WithMetadata(apperrors.CodeDistrictMustBeZero, "district must be zero for this role", map[string]string{
				"role": input.Role.String(),
			})
		}
	default:
		return RegisterInput{}, apperrors.New(apperrors.CodeInvalidRole, "role is required")
	}

	return input, nil
}
