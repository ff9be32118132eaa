// Package service implements the congress governance operations on top of
// the storage layer. All state transitions pass through here; a single
// mutex serializes writers so read-modify-write sequences see a consistent
// roster and ledger.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	apperrors "github.com/statecraft/congress/internal/platform/errors"
	"github.com/statecraft/congress/internal/services/congress/domain/bill"
	"github.com/statecraft/congress/internal/services/congress/domain/member"
	"github.com/statecraft/congress/internal/services/congress/domain/nomination"
	"github.com/statecraft/congress/internal/services/congress/storage"
	"github.com/statecraft/congress/internal/telemetry"
)

// Service coordinates roster, ledger and nomination transitions.
type Service struct {
	mu    sync.Mutex
	store storage.Store
	clock func() time.Time
	audit *telemetry.Emitter
	admin string
}

// Option customizes service construction.
type Option func(*Service)

// WithClock overrides the service clock. Used by tests to pin time.
func WithClock(clock func() time.Time) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithAudit attaches an audit journal emitter.
func WithAudit(emitter *telemetry.Emitter) Option {
	return func(s *Service) {
		s.audit = emitter
	}
}

// New creates a congress service. admin is the principal allowed to register
// members directly.
func New(store storage.Store, admin string, opts ...Option) *Service {
	s := &Service{
		store: store,
		clock: func() time.Time { return time.Now().UTC() },
		admin: admin,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) now() time.Time {
	return s.clock().UTC()
}

// Now reports the current instant on the service clock. Read surfaces use
// it so activity is computed against the same clock that drives
// transitions.
func (s *Service) Now() time.Time {
	return s.now()
}

func (s *Service) emit(ctx context.Context, entry storage.JournalEntry) {
	if s.audit != nil {
		s.audit.Emit(ctx, entry)
	}
}

// activeMember fetches the caller's member record and checks the term is
// still running. Every authenticated operation except direct registration
// starts here.
func (s *Service) activeMember(ctx context.Context, principal string) (member.Member, error) {
	m, err := s.store.GetMember(ctx, principal)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return member.Member{}, apperrors.New(apperrors.CodeNotActiveMember, "caller is not an active member")
		}
		return member.Member{}, apperrors.Wrap(apperrors.CodeUnknown, "load caller", err)
	}
	if !m.ActiveAt(s.now()) {
		return member.Member{}, apperrors.New(apperrors.CodeNotActiveMember, "caller's term has expired")
	}
	return m, nil
}

// admissionCheck enforces the roster invariants shared by direct
// registration and nomination finalization: one registration per principal
// forever, bounded chamber capacity, and singleton executive slots.
func (s *Service) admissionCheck(ctx context.Context, input member.RegisterInput) error {
	if _, err := s.store.GetMember(ctx, input.Principal); err == nil {
		return apperrors.New(apperrors.CodeAlreadyMember, "principal was already registered")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return apperrors.Wrap(apperrors.CodeUnknown, "check existing member", err)
	}

	switch input.Role {
	case member.RoleHouse:
		seats, err := s.store.ChamberSeatCount(ctx, member.RoleHouse)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeUnknown, "count house seats", err)
		}
		if seats >= member.HouseCapacity {
			return apperrors.New(apperrors.CodeHouseFull, "the house has no remaining seats")
		}
	case member.RoleSenate:
		seats, err := s.store.ChamberSeatCount(ctx, member.RoleSenate)
		if err != nil {
			return apperrors.Wrap(apperrors.CodeUnknown, "count senate seats", err)
		}
		if seats >= member.SenateCapacity {
			return apperrors.New(apperrors.CodeSenateFull, "the senate has no remaining seats")
		}
	case member.RoleVicePresident:
		if err := s.officerSlotFree(ctx, member.RoleVicePresident, apperrors.CodeVicePresidentActive, "an active vice president is already registered"); err != nil {
			return err
		}
	case member.RolePresident:
		if err := s.officerSlotFree(ctx, member.RolePresident, apperrors.CodePresidentActive, "an active president is already registered"); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) officerSlotFree(ctx context.Context, role member.Role, code apperrors.Code, message string) error {
	incumbent, err := s.store.CurrentOfficer(ctx, role)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return apperrors.Wrap(apperrors.CodeUnknown, "load incumbent officer", err)
	}
	if incumbent.ActiveAt(s.now()) {
		return apperrors.New(code, message)
	}
	return nil
}

// AddMember registers a member directly. Only the administrator principal
// may call it.
func (s *Service) AddMember(ctx context.Context, caller string, input member.RegisterInput) (member.Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.admin == "" || caller != s.admin {
		return member.Member{}, apperrors.New(apperrors.CodeNotAdministrator, "only the administrator may register members directly")
	}
	return s.registerMember(ctx, caller, input)
}

// registerMember runs the shared admission path. The caller holds the lock.
func (s *Service) registerMember(ctx context.Context, actor string, input member.RegisterInput) (member.Member, error) {
	m, err := member.New(input, s.clock)
	if err != nil {
		return member.Member{}, err
	}
	if err := s.admissionCheck(ctx, input); err != nil {
		return member.Member{}, err
	}
	if err := s.store.PutMember(ctx, m); err != nil {
		return member.Member{}, apperrors.Wrap(apperrors.CodeUnknown, "store member", err)
	}

	s.emit(ctx, storage.JournalEntry{
		Actor:      actor,
		Action:     telemetry.ActionMemberRegistered,
		EntityType: "member",
		EntityID:   m.Principal,
		Detail:     fmt.Sprintf("role=%s state=%s district=%d", m.Role, m.State, m.District),
	})
	return m, nil
}

// ProposeBill appends a bill to the ledger. The caller and every sponsor and
// cosponsor must be active members.
func (s *Service) ProposeBill(ctx context.Context, caller string, input bill.ProposeInput) (bill.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.activeMember(ctx, caller); err != nil {
		return bill.Bill{}, err
	}

	proposed, err := bill.Propose(input, s.clock)
	if err != nil {
		return bill.Bill{}, err
	}

	at := s.now()
	for _, sponsor := range proposed.Sponsors {
		if err := s.checkActive(ctx, sponsor, at); err != nil {
			return bill.Bill{}, apperrors.WithMetadata(apperrors.CodeInvalidSponsor, "sponsors must be active members", map[string]string{
				"principal": sponsor,
			})
		}
	}
	for _, cosponsor := range proposed.Cosponsors {
		if err := s.checkActive(ctx, cosponsor, at); err != nil {
			return bill.Bill{}, apperrors.WithMetadata(apperrors.CodeInvalidCosponsor, "cosponsors must be active members", map[string]string{
				"principal": cosponsor,
			})
		}
	}

	stored, err := s.store.AppendBill(ctx, proposed)
	if err != nil {
		return bill.Bill{}, apperrors.Wrap(apperrors.CodeUnknown, "store bill", err)
	}

	s.emit(ctx, storage.JournalEntry{
		Actor:      caller,
		Action:     telemetry.ActionBillProposed,
		EntityType: "bill",
		EntityID:   fmt.Sprintf("%d", stored.Index),
		Detail:     fmt.Sprintf("title=%q sponsors=%d sections=%d", stored.Title, len(stored.Sponsors), len(stored.Sections)),
	})
	return stored, nil
}

func (s *Service) checkActive(ctx context.Context, principal string, at time.Time) error {
	m, err := s.store.GetMember(ctx, principal)
	if err != nil {
		return err
	}
	if !m.ActiveAt(at) {
		return storage.ErrNotFound
	}
	return nil
}

// CastVote applies the caller's vote to a bill and persists the resulting
// voting sub-state.
func (s *Service) CastVote(ctx context.Context, caller string, index int, decision bill.Decision) (bill.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	voter, err := s.activeMember(ctx, caller)
	if err != nil {
		return bill.Bill{}, err
	}

	b, err := s.store.GetBill(ctx, index)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return bill.Bill{}, apperrors.New(apperrors.CodeInvalidBillIndex, "no bill exists at that index")
		}
		return bill.Bill{}, apperrors.Wrap(apperrors.CodeUnknown, "load bill", err)
	}

	chambers, err := s.liveChambers(ctx)
	if err != nil {
		return bill.Bill{}, err
	}
	officers, err := s.currentOfficers(ctx)
	if err != nil {
		return bill.Bill{}, err
	}

	houseBefore := len(b.Voting.HouseVoted)
	senateBefore := len(b.Voting.SenateVoted)

	ballot := bill.Ballot{Principal: caller, Role: voter.Role, Decision: decision}
	if err := b.CastVote(ballot, chambers, officers); err != nil {
		return bill.Bill{}, err
	}

	// Chamber votes get their own row; executive actions only mutate the
	// bill's voting columns.
	var record *storage.VoteRecord
	switch {
	case len(b.Voting.HouseVoted) > houseBefore:
		record = &storage.VoteRecord{BillIndex: index, Stage: "house", Principal: caller, Decision: decision, CastAt: s.now()}
	case len(b.Voting.SenateVoted) > senateBefore:
		record = &storage.VoteRecord{BillIndex: index, Stage: "senate", Principal: caller, Decision: decision, CastAt: s.now()}
	}

	if err := s.store.UpdateVoting(ctx, index, b.Voting, record); err != nil {
		return bill.Bill{}, apperrors.Wrap(apperrors.CodeUnknown, "store voting state", err)
	}

	s.emit(ctx, storage.JournalEntry{
		Actor:      caller,
		Action:     telemetry.ActionVoteCast,
		EntityType: "bill",
		EntityID:   fmt.Sprintf("%d", index),
		Detail:     fmt.Sprintf("decision=%s phase=%s", decision, b.Voting.Phase()),
	})
	return b, nil
}

func (s *Service) liveChambers(ctx context.Context) (bill.Chambers, error) {
	houseSize, err := s.store.ChamberSeatCount(ctx, member.RoleHouse)
	if err != nil {
		return bill.Chambers{}, apperrors.Wrap(apperrors.CodeUnknown, "count house seats", err)
	}
	senateSize, err := s.store.ChamberSeatCount(ctx, member.RoleSenate)
	if err != nil {
		return bill.Chambers{}, apperrors.Wrap(apperrors.CodeUnknown, "count senate seats", err)
	}
	return bill.Chambers{HouseSize: houseSize, SenateSize: senateSize}, nil
}

func (s *Service) currentOfficers(ctx context.Context) (bill.Officers, error) {
	var officers bill.Officers
	at := s.now()

	vp, err := s.store.CurrentOfficer(ctx, member.RoleVicePresident)
	switch {
	case err == nil:
		if vp.ActiveAt(at) {
			officers.VicePresident = vp.Principal
		}
	case !errors.Is(err, storage.ErrNotFound):
		return bill.Officers{}, apperrors.Wrap(apperrors.CodeUnknown, "load vice president", err)
	}

	president, err := s.store.CurrentOfficer(ctx, member.RolePresident)
	switch {
	case err == nil:
		if president.ActiveAt(at) {
			officers.President = president.Principal
		}
	case !errors.Is(err, storage.ErrNotFound):
		return bill.Officers{}, apperrors.Wrap(apperrors.CodeUnknown, "load president", err)
	}

	return officers, nil
}

// NominateMember opens a nomination for a candidate who has never held a
// seat.
func (s *Service) NominateMember(ctx context.Context, caller string, input nomination.Input) (nomination.Nomination, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.activeMember(ctx, caller); err != nil {
		return nomination.Nomination{}, err
	}

	nom, err := nomination.New(input, s.clock)
	if err != nil {
		return nomination.Nomination{}, err
	}

	// One registration per principal, forever. Expired members cannot be
	// renominated either.
	if _, err := s.store.GetMember(ctx, nom.Candidate); err == nil {
		return nomination.Nomination{}, apperrors.New(apperrors.CodeAlreadyMember, "candidate was already registered")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nomination.Nomination{}, apperrors.Wrap(apperrors.CodeUnknown, "check candidate registration", err)
	}

	if _, err := s.store.GetNomination(ctx, nom.Candidate); err == nil {
		return nomination.Nomination{}, apperrors.New(apperrors.CodeAlreadyNominated, "candidate already has a live nomination")
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nomination.Nomination{}, apperrors.Wrap(apperrors.CodeUnknown, "check live nomination", err)
	}

	if err := s.store.PutNomination(ctx, nom); err != nil {
		return nomination.Nomination{}, apperrors.Wrap(apperrors.CodeUnknown, "store nomination", err)
	}

	s.emit(ctx, storage.JournalEntry{
		Actor:      caller,
		Action:     telemetry.ActionMemberNominated,
		EntityType: "nomination",
		EntityID:   nom.Candidate,
		Detail:     fmt.Sprintf("role=%s state=%s district=%d", nom.Role, nom.State, nom.District),
	})
	return nom, nil
}

// RatifyMember records one ratification. The chamber size is read fresh at
// every call, so a growing chamber raises the bar for nominations still in
// flight. When the count clears the threshold the candidate is admitted and
// the nomination is removed atomically.
func (s *Service) RatifyMember(ctx context.Context, caller, candidate string) (nomination.Nomination, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.activeMember(ctx, caller); err != nil {
		return nomination.Nomination{}, false, err
	}

	nom, err := s.store.GetNomination(ctx, candidate)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nomination.Nomination{}, false, apperrors.New(apperrors.CodeNotFound, "no live nomination for that candidate")
		}
		return nomination.Nomination{}, false, apperrors.Wrap(apperrors.CodeUnknown, "load nomination", err)
	}

	chamberSize, err := s.store.ChamberSeatCount(ctx, nom.Role)
	if err != nil {
		return nomination.Nomination{}, false, apperrors.Wrap(apperrors.CodeUnknown, "count chamber seats", err)
	}

	ratified, err := nom.Ratify(caller, chamberSize, s.clock)
	if err != nil {
		return nomination.Nomination{}, false, err
	}

	// When this ratification clears the quorum, the admission invariants
	// run before anything is written. A candidate the roster can no longer
	// admit fails here with the nomination untouched.
	var admitted member.Member
	if ratified {
		admitted, err = member.New(nom.RegisterInput(), s.clock)
		if err != nil {
			return nomination.Nomination{}, false, err
		}
		if err := s.admissionCheck(ctx, nom.RegisterInput()); err != nil {
			return nomination.Nomination{}, false, err
		}
	}

	if err := s.store.RecordRatification(ctx, candidate, caller, nom.RatifiedBy[caller]); err != nil {
		return nomination.Nomination{}, false, apperrors.Wrap(apperrors.CodeUnknown, "store ratification", err)
	}

	s.emit(ctx, storage.JournalEntry{
		Actor:      caller,
		Action:     telemetry.ActionNominationRatified,
		EntityType: "nomination",
		EntityID:   candidate,
		Detail:     fmt.Sprintf("count=%d threshold=%d", nom.Count(), nomination.Threshold(chamberSize)),
	})

	if !ratified {
		return nom, false, nil
	}

	if err := s.store.FinalizeNomination(ctx, candidate, admitted); err != nil {
		return nomination.Nomination{}, false, apperrors.Wrap(apperrors.CodeUnknown, "finalize nomination", err)
	}

	s.emit(ctx, storage.JournalEntry{
		Actor:      caller,
		Action:     telemetry.ActionNominationFinalized,
		EntityType: "member",
		EntityID:   candidate,
		Detail:     fmt.Sprintf("role=%s ratifications=%d", admitted.Role, nom.Count()),
	})
	return nom, true, nil
}

// GetMember fetches a member record by principal.
func (s *Service) GetMember(ctx context.Context, principal string) (member.Member, error) {
	m, err := s.store.GetMember(ctx, principal)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return member.Member{}, apperrors.New(apperrors.CodeNotFound, "member not found")
		}
		return member.Member{}, apperrors.Wrap(apperrors.CodeUnknown, "load member", err)
	}
	return m, nil
}

// ListMembers returns every registered member.
func (s *Service) ListMembers(ctx context.Context) ([]member.Member, error) {
	members, err := s.store.ListMembers(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "list members", err)
	}
	return members, nil
}

// GetBill fetches a bill by ledger index.
func (s *Service) GetBill(ctx context.Context, index int) (bill.Bill, error) {
	b, err := s.store.GetBill(ctx, index)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return bill.Bill{}, apperrors.New(apperrors.CodeInvalidBillIndex, "no bill exists at that index")
		}
		return bill.Bill{}, apperrors.Wrap(apperrors.CodeUnknown, "load bill", err)
	}
	return b, nil
}

// ListBills returns every bill in ledger order.
func (s *Service) ListBills(ctx context.Context) ([]bill.Bill, error) {
	count, err := s.store.BillCount(ctx)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "count bills", err)
	}
	bills := make([]bill.Bill, 0, count)
	for i := 0; i < count; i++ {
		b, err := s.store.GetBill(ctx, i)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.CodeUnknown, "load bill", err)
		}
		bills = append(bills, b)
	}
	return bills, nil
}

// BillCount returns the ledger length.
func (s *Service) BillCount(ctx context.Context) (int, error) {
	count, err := s.store.BillCount(ctx)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeUnknown, "count bills", err)
	}
	return count, nil
}

// Journal returns recent audit entries, newest first.
func (s *Service) Journal(ctx context.Context, limit int) ([]storage.JournalEntry, error) {
	entries, err := s.store.ListEntries(ctx, limit)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeUnknown, "list journal", err)
	}
	return entries, nil
}
