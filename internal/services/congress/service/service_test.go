package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	apperrors "github.com/statecraft/congress/internal/platform/errors"
	"github.com/statecraft/congress/internal/services/congress/domain/bill"
	"github.com/statecraft/congress/internal/services/congress/domain/member"
	"github.com/statecraft/congress/internal/services/congress/domain/nomination"
	"github.com/statecraft/congress/internal/services/congress/storage/sqlite"
	"github.com/statecraft/congress/internal/telemetry"
)

const testAdmin = "admin"

type fakeClock struct {
	at time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.at
}

func (c *fakeClock) Advance(d time.Duration) {
	c.at = c.at.Add(d)
}

func newTestService(t *testing.T) (*Service, *fakeClock) {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "congress.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	clock := &fakeClock{at: time.Date(2026, time.January, 3, 12, 0, 0, 0, time.UTC)}
	svc := New(store, testAdmin,
		WithClock(clock.Now),
		WithAudit(telemetry.NewEmitter(store).WithClock(clock.Now)),
	)
	return svc, clock
}

func registerMember(t *testing.T, svc *Service, principal string, role member.Role, district int) member.Member {
	t.Helper()
	m, err := svc.AddMember(context.Background(), testAdmin, member.RegisterInput{
		Principal: principal,
		FirstName: "Test",
		LastName:  "Member",
		Role:      role,
		State:     "CA",
		District:  district,
	})
	if err != nil {
		t.Fatalf("AddMember(%s) returned error: %v", principal, err)
	}
	return m
}

func wantCode(t *testing.T, err error, code apperrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	if got := apperrors.GetCode(err); got != code {
		t.Fatalf("error code = %s, want %s (err: %v)", got, code, err)
	}
}

func TestAddMemberAdminOnly(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AddMember(context.Background(), "rando", member.RegisterInput{
		Principal: "rep-1",
		FirstName: "Test",
		LastName:  "Member",
		Role:      member.RoleHouse,
		District:  1,
	})
	wantCode(t, err, apperrors.CodeNotAdministrator)
}

func TestAddMemberOncePerPrincipalForever(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	registerMember(t, svc, "rep-1", member.RoleHouse, 1)

	_, err := svc.AddMember(ctx, testAdmin, member.RegisterInput{
		Principal: "rep-1",
		FirstName: "Test",
		LastName:  "Member",
		Role:      member.RoleSenate,
	})
	wantCode(t, err, apperrors.CodeAlreadyMember)

	// Expiry never frees the principal for re-registration.
	clock.Advance(3 * 365 * 24 * time.Hour)
	_, err = svc.AddMember(ctx, testAdmin, member.RegisterInput{
		Principal: "rep-1",
		FirstName: "Test",
		LastName:  "Member",
		Role:      member.RoleHouse,
		District:  2,
	})
	wantCode(t, err, apperrors.CodeAlreadyMember)
}

func TestAddMemberExecutiveSlots(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	registerMember(t, svc, "vp-1", member.RoleVicePresident, 0)

	_, err := svc.AddMember(ctx, testAdmin, member.RegisterInput{
		Principal: "vp-2",
		FirstName: "Test",
		LastName:  "Member",
		Role:      member.RoleVicePresident,
	})
	wantCode(t, err, apperrors.CodeVicePresidentActive)

	// A new principal may take the slot once the incumbent's term lapses.
	clock.Advance(5 * 365 * 24 * time.Hour)
	registerMember(t, svc, "vp-2", member.RoleVicePresident, 0)
}

func TestProposeBillRequiresActiveCaller(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	input := bill.ProposeInput{
		Title:       "Test Act",
		EffectiveAt: clock.Now().AddDate(1, 0, 0),
		Sponsors:    []string{"rep-1"},
		Sections:    []string{"Section 1."},
	}

	_, err := svc.ProposeBill(ctx, "rep-1", input)
	wantCode(t, err, apperrors.CodeNotActiveMember)

	registerMember(t, svc, "rep-1", member.RoleHouse, 1)
	if _, err := svc.ProposeBill(ctx, "rep-1", input); err != nil {
		t.Fatalf("ProposeBill returned error: %v", err)
	}

	// An expired caller is treated the same as an unknown one.
	clock.Advance(3 * 365 * 24 * time.Hour)
	input.EffectiveAt = clock.Now().AddDate(1, 0, 0)
	_, err = svc.ProposeBill(ctx, "rep-1", input)
	wantCode(t, err, apperrors.CodeNotActiveMember)
}

func TestProposeBillSponsorEligibility(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	registerMember(t, svc, "rep-1", member.RoleHouse, 1)

	_, err := svc.ProposeBill(ctx, "rep-1", bill.ProposeInput{
		Title:       "Test Act",
		EffectiveAt: clock.Now().AddDate(1, 0, 0),
		Sponsors:    []string{"ghost"},
		Sections:    []string{"Section 1."},
	})
	wantCode(t, err, apperrors.CodeInvalidSponsor)

	_, err = svc.ProposeBill(ctx, "rep-1", bill.ProposeInput{
		Title:       "Test Act",
		EffectiveAt: clock.Now().AddDate(1, 0, 0),
		Sponsors:    []string{"rep-1"},
		Cosponsors:  []string{"ghost"},
		Sections:    []string{"Section 1."},
	})
	wantCode(t, err, apperrors.CodeInvalidCosponsor)
}

func TestCastVoteInvalidIndex(t *testing.T) {
	svc, _ := newTestService(t)

	registerMember(t, svc, "rep-1", member.RoleHouse, 1)
	_, err := svc.CastVote(context.Background(), "rep-1", 7, bill.DecisionYea)
	wantCode(t, err, apperrors.CodeInvalidBillIndex)
}

// TestBillFullPipeline drives one bill from proposal through a House pass, a
// Senate tie, the vice president's tie break and the president's signature.
func TestBillFullPipeline(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	registerMember(t, svc, "rep-1", member.RoleHouse, 1)
	registerMember(t, svc, "sen-1", member.RoleSenate, 0)
	registerMember(t, svc, "sen-2", member.RoleSenate, 0)
	registerMember(t, svc, "vp-1", member.RoleVicePresident, 0)
	registerMember(t, svc, "pres-1", member.RolePresident, 0)

	proposed, err := svc.ProposeBill(ctx, "rep-1", bill.ProposeInput{
		Title:       "Budget Act",
		EffectiveAt: clock.Now().AddDate(0, 6, 0),
		Sponsors:    []string{"rep-1"},
		Sections:    []string{"Section 1."},
	})
	if err != nil {
		t.Fatalf("ProposeBill returned error: %v", err)
	}
	if got := proposed.Voting.Phase(); got != bill.PhaseHouse {
		t.Fatalf("initial phase = %s, want house", got)
	}

	// Senators cannot vote during the House phase.
	_, err = svc.CastVote(ctx, "sen-1", proposed.Index, bill.DecisionYea)
	wantCode(t, err, apperrors.CodeOnlyHouse)

	// The single House seat resolves the chamber.
	afterHouse, err := svc.CastVote(ctx, "rep-1", proposed.Index, bill.DecisionYea)
	if err != nil {
		t.Fatalf("house vote returned error: %v", err)
	}
	if got := afterHouse.Voting.Phase(); got != bill.PhaseSenate {
		t.Fatalf("phase after house pass = %s, want senate", got)
	}

	// The Senate splits one-one: tie break required.
	if _, err := svc.CastVote(ctx, "sen-1", proposed.Index, bill.DecisionYea); err != nil {
		t.Fatalf("senate yea returned error: %v", err)
	}
	tied, err := svc.CastVote(ctx, "sen-2", proposed.Index, bill.DecisionNay)
	if err != nil {
		t.Fatalf("senate nay returned error: %v", err)
	}
	if got := tied.Voting.Phase(); got != bill.PhaseTieBreak {
		t.Fatalf("phase after senate tie = %s, want tie_break", got)
	}

	// Only the sitting vice president may resolve the tie.
	_, err = svc.CastVote(ctx, "rep-1", proposed.Index, bill.DecisionYea)
	wantCode(t, err, apperrors.CodeNotCurrentVP)

	broken, err := svc.CastVote(ctx, "vp-1", proposed.Index, bill.DecisionYea)
	if err != nil {
		t.Fatalf("tie break returned error: %v", err)
	}
	if got := broken.Voting.Phase(); got != bill.PhasePresidential {
		t.Fatalf("phase after tie break = %s, want presidential", got)
	}

	// Only the president may decide now.
	_, err = svc.CastVote(ctx, "rep-1", proposed.Index, bill.DecisionYea)
	wantCode(t, err, apperrors.CodeOnlyPresident)

	signed, err := svc.CastVote(ctx, "pres-1", proposed.Index, bill.DecisionYea)
	if err != nil {
		t.Fatalf("presidential vote returned error: %v", err)
	}
	if !signed.Voting.Passed {
		t.Fatal("expected bill to pass after presidential yea")
	}
	if got := signed.Voting.Phase(); got != bill.PhaseClosed {
		t.Fatalf("phase after signature = %s, want closed", got)
	}

	_, err = svc.CastVote(ctx, "sen-1", proposed.Index, bill.DecisionYea)
	wantCode(t, err, apperrors.CodeVotingClosed)

	// Persistence check: a fresh read carries the closed state.
	reloaded, err := svc.GetBill(ctx, proposed.Index)
	if err != nil {
		t.Fatalf("GetBill returned error: %v", err)
	}
	if !reloaded.Voting.Passed || reloaded.Voting.VotingAllowed {
		t.Fatalf("reloaded voting state = %+v, want passed and closed", reloaded.Voting)
	}
}

func TestCastVoteDoubleVote(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	registerMember(t, svc, "rep-1", member.RoleHouse, 1)
	registerMember(t, svc, "rep-2", member.RoleHouse, 2)

	proposed, err := svc.ProposeBill(ctx, "rep-1", bill.ProposeInput{
		Title:       "Test Act",
		EffectiveAt: clock.Now().AddDate(1, 0, 0),
		Sponsors:    []string{"rep-1"},
		Sections:    []string{"Section 1."},
	})
	if err != nil {
		t.Fatalf("ProposeBill returned error: %v", err)
	}

	if _, err := svc.CastVote(ctx, "rep-1", proposed.Index, bill.DecisionYea); err != nil {
		t.Fatalf("first vote returned error: %v", err)
	}
	_, err = svc.CastVote(ctx, "rep-1", proposed.Index, bill.DecisionNay)
	wantCode(t, err, apperrors.CodeAlreadyVoted)
}

func TestNominationAdmitsOnQuorum(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registerMember(t, svc, "sen-1", member.RoleSenate, 0)
	registerMember(t, svc, "sen-2", member.RoleSenate, 0)

	nom, err := svc.NominateMember(ctx, "sen-1", nomination.Input{
		Candidate: "cand-1",
		FirstName: "Dana",
		LastName:  "Wells",
		Role:      member.RoleSenate,
		State:     "OR",
	})
	if err != nil {
		t.Fatalf("NominateMember returned error: %v", err)
	}
	if nom.Count() != 0 {
		t.Fatalf("fresh nomination count = %d, want 0", nom.Count())
	}

	// Chamber size two: the count must strictly exceed one.
	_, admitted, err := svc.RatifyMember(ctx, "sen-1", "cand-1")
	if err != nil {
		t.Fatalf("first ratification returned error: %v", err)
	}
	if admitted {
		t.Fatal("one ratification of two seats should not admit")
	}

	_, _, err = svc.RatifyMember(ctx, "sen-1", "cand-1")
	wantCode(t, err, apperrors.CodeAlreadyRatified)

	_, admitted, err = svc.RatifyMember(ctx, "sen-2", "cand-1")
	if err != nil {
		t.Fatalf("second ratification returned error: %v", err)
	}
	if !admitted {
		t.Fatal("two ratifications of two seats should admit")
	}

	m, err := svc.GetMember(ctx, "cand-1")
	if err != nil {
		t.Fatalf("GetMember after admission returned error: %v", err)
	}
	if m.Role != member.RoleSenate {
		t.Fatalf("admitted role = %s, want senate", m.Role)
	}

	// The nomination is consumed on admission.
	_, _, err = svc.RatifyMember(ctx, "sen-1", "cand-1")
	wantCode(t, err, apperrors.CodeNotFound)

	// Admitted members can never be nominated again.
	_, err = svc.NominateMember(ctx, "sen-1", nomination.Input{
		Candidate: "cand-1",
		FirstName: "Dana",
		LastName:  "Wells",
		Role:      member.RoleSenate,
		State:     "OR",
	})
	wantCode(t, err, apperrors.CodeAlreadyMember)
}

// TestRatifyAdmissionFailureWritesNothing covers the race where a nominated
// candidate gets registered directly while ratifications are pending. The
// quorum-clearing call must fail without recording the ratification.
func TestRatifyAdmissionFailureWritesNothing(t *testing.T) {
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "congress.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	clock := &fakeClock{at: time.Date(2026, time.January, 3, 12, 0, 0, 0, time.UTC)}
	svc := New(store, testAdmin, WithClock(clock.Now))
	ctx := context.Background()

	registerMember(t, svc, "sen-1", member.RoleSenate, 0)
	registerMember(t, svc, "sen-2", member.RoleSenate, 0)

	if _, err := svc.NominateMember(ctx, "sen-1", nomination.Input{
		Candidate: "cand-1",
		FirstName: "Dana",
		LastName:  "Wells",
		Role:      member.RoleSenate,
		State:     "OR",
	}); err != nil {
		t.Fatalf("NominateMember returned error: %v", err)
	}
	if _, _, err := svc.RatifyMember(ctx, "sen-1", "cand-1"); err != nil {
		t.Fatalf("first ratification returned error: %v", err)
	}

	// The candidate takes a House seat directly while the nomination is
	// still pending.
	registerMember(t, svc, "cand-1", member.RoleHouse, 3)

	_, _, err = svc.RatifyMember(ctx, "sen-2", "cand-1")
	wantCode(t, err, apperrors.CodeAlreadyMember)

	nom, err := store.GetNomination(ctx, "cand-1")
	if err != nil {
		t.Fatalf("GetNomination returned error: %v", err)
	}
	if nom.Count() != 1 {
		t.Fatalf("ratifier count after failed admission = %d, want 1", nom.Count())
	}
	if _, ok := nom.RatifiedBy["sen-2"]; ok {
		t.Fatal("failed ratification must not be recorded")
	}
}

func TestNominateRejectsDuplicatesAndMembers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registerMember(t, svc, "sen-1", member.RoleSenate, 0)

	input := nomination.Input{
		Candidate: "cand-1",
		FirstName: "Dana",
		LastName:  "Wells",
		Role:      member.RoleSenate,
		State:     "OR",
	}
	if _, err := svc.NominateMember(ctx, "sen-1", input); err != nil {
		t.Fatalf("NominateMember returned error: %v", err)
	}

	_, err := svc.NominateMember(ctx, "sen-1", input)
	wantCode(t, err, apperrors.CodeAlreadyNominated)

	_, err = svc.NominateMember(ctx, "sen-1", nomination.Input{
		Candidate: "sen-1",
		FirstName: "Dana",
		LastName:  "Wells",
		Role:      member.RoleSenate,
	})
	wantCode(t, err, apperrors.CodeAlreadyMember)
}

func TestJournalRecordsTransitions(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()

	registerMember(t, svc, "rep-1", member.RoleHouse, 1)
	if _, err := svc.ProposeBill(ctx, "rep-1", bill.ProposeInput{
		Title:       "Test Act",
		EffectiveAt: clock.Now().AddDate(1, 0, 0),
		Sponsors:    []string{"rep-1"},
		Sections:    []string{"Section 1."},
	}); err != nil {
		t.Fatalf("ProposeBill returned error: %v", err)
	}

	entries, err := svc.Journal(ctx, 10)
	if err != nil {
		t.Fatalf("Journal returned error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("journal entries = %d, want 2", len(entries))
	}

	actions := map[string]bool{}
	for _, entry := range entries {
		actions[entry.Action] = true
	}
	if !actions[telemetry.ActionMemberRegistered] || !actions[telemetry.ActionBillProposed] {
		t.Fatalf("journal actions = %v, want registration and proposal", actions)
	}
}
