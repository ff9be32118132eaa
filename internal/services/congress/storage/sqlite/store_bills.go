package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/statecraft/congress/internal/services/congress/domain/bill"
	"github.com/statecraft/congress/internal/services/congress/storage"
)

// Bill ledger methods.

const insertBillSQL = `
INSERT INTO bills (
    idx, title, enacting_clause, proposed_at, effective_at,
    sponsors, cosponsors, sections, definitions,
    passed_house, passed_senate, passed, tie_break_required, voting_allowed,
    house_yea, house_nay, house_abstain,
    senate_yea, senate_nay, senate_abstain,
    presidential_decision, presidential_vote_cast
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`

const getBillSQL = `
SELECT idx, title, enacting_clause, proposed_at, effective_at,
    sponsors, cosponsors, sections, definitions,
    passed_house, passed_senate, passed, tie_break_required, voting_allowed,
    house_yea, house_nay, house_abstain,
    senate_yea, senate_nay, senate_abstain,
    presidential_decision, presidential_vote_cast
FROM bills
WHERE idx = ?;
`

const updateVotingSQL = `
UPDATE bills SET
    passed_house = ?, passed_senate = ?, passed = ?,
    tie_break_required = ?, voting_allowed = ?,
    house_yea = ?, house_nay = ?, house_abstain = ?,
    senate_yea = ?, senate_nay = ?, senate_abstain = ?,
    presidential_decision = ?, presidential_vote_cast = ?
WHERE idx = ?;
`

// AppendBill places the bill at the end of the ledger. The assigned index is
// the ledger length at insert time, so indices are dense and append-only.
func (s *Store) AppendBill(ctx context.Context, b bill.Bill) (bill.Bill, error) {
	if err := ctx.Err(); err != nil {
		return bill.Bill{}, err
	}
	if s == nil || s.sqlDB == nil {
		return bill.Bill{}, fmt.Errorf("storage is not configured")
	}

	sponsors, err := encodeStrings(b.Sponsors)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("encode sponsors: %w", err)
	}
	cosponsors, err := encodeStrings(b.Cosponsors)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("encode cosponsors: %w", err)
	}
	sections, err := encodeStrings(b.Sections)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("encode sections: %w", err)
	}
	definitions, err := encodeStrings(b.Definitions)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("encode definitions: %w", err)
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("begin append bill: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM bills").Scan(&count); err != nil {
		return bill.Bill{}, fmt.Errorf("count bills: %w", err)
	}
	b.Index = count

	v := b.Voting
	if _, err := tx.ExecContext(ctx, insertBillSQL,
		b.Index, b.Title, b.EnactingClause, toMillis(b.ProposedAt), toMillis(b.EffectiveAt),
		sponsors, cosponsors, sections, definitions,
		boolToInt(v.PassedHouse), boolToInt(v.PassedSenate), boolToInt(v.Passed),
		boolToInt(v.TieBreakRequired), boolToInt(v.VotingAllowed),
		v.HouseTally.Yea, v.HouseTally.Nay, v.HouseTally.Abstain,
		v.SenateTally.Yea, v.SenateTally.Nay, v.SenateTally.Abstain,
		decisionLabel(v.PresidentialDecision), boolToInt(v.PresidentialVoteCast),
	); err != nil {
		return bill.Bill{}, fmt.Errorf("insert bill: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return bill.Bill{}, fmt.Errorf("commit append bill: %w", err)
	}
	return b, nil
}

// GetBill fetches a bill and rebuilds its voting sub-state, including the
// per-principal vote maps, from the ledger and vote rows.
func (s *Store) GetBill(ctx context.Context, index int) (bill.Bill, error) {
	if err := ctx.Err(); err != nil {
		return bill.Bill{}, err
	}
	if s == nil || s.sqlDB == nil {
		return bill.Bill{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, getBillSQL, index)
	b, err := scanBill(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return bill.Bill{}, storage.ErrNotFound
		}
		return bill.Bill{}, fmt.Errorf("get bill: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT stage, principal, decision FROM bill_votes WHERE bill_idx = ?", index)
	if err != nil {
		return bill.Bill{}, fmt.Errorf("get bill votes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var stage, principal, label string
		if err := rows.Scan(&stage, &principal, &label); err != nil {
			return bill.Bill{}, fmt.Errorf("scan bill vote: %w", err)
		}
		decision, ok := bill.ParseDecision(label)
		if !ok {
			return bill.Bill{}, fmt.Errorf("unknown vote decision %q", label)
		}
		switch stage {
		case "house":
			b.Voting.HouseVoted[principal] = decision
		case "senate":
			b.Voting.SenateVoted[principal] = decision
		default:
			return bill.Bill{}, fmt.Errorf("unknown vote stage %q", stage)
		}
	}
	if err := rows.Err(); err != nil {
		return bill.Bill{}, fmt.Errorf("read bill votes: %w", err)
	}
	return b, nil
}

// BillCount returns the ledger length.
func (s *Store) BillCount(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var count int
	if err := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM bills").Scan(&count); err != nil {
		return 0, fmt.Errorf("count bills: %w", err)
	}
	return count, nil
}

// UpdateVoting persists a bill's voting sub-state and, when the transition
// recorded a chamber vote, the vote row in the same transaction.
func (s *Store) UpdateVoting(ctx context.Context, index int, v bill.Voting, vote *storage.VoteRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update voting: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, updateVotingSQL,
		boolToInt(v.PassedHouse), boolToInt(v.PassedSenate), boolToInt(v.Passed),
		boolToInt(v.TieBreakRequired), boolToInt(v.VotingAllowed),
		v.HouseTally.Yea, v.HouseTally.Nay, v.HouseTally.Abstain,
		v.SenateTally.Yea, v.SenateTally.Nay, v.SenateTally.Abstain,
		decisionLabel(v.PresidentialDecision), boolToInt(v.PresidentialVoteCast),
		index,
	)
	if err != nil {
		return fmt.Errorf("update voting: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update voting rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if vote != nil {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO bill_votes (bill_idx, stage, principal, decision, cast_at) VALUES (?, ?, ?, ?, ?)",
			vote.BillIndex, vote.Stage, vote.Principal, vote.Decision.String(), toMillis(vote.CastAt),
		); err != nil {
			return fmt.Errorf("insert bill vote: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update voting: %w", err)
	}
	return nil
}

func scanBill(row rowScanner) (bill.Bill, error) {
	var (
		b                    bill.Bill
		proposedAt           int64
		effectiveAt          int64
		sponsors             string
		cosponsors           string
		sections             string
		definitions          string
		passedHouse          int
		passedSenate         int
		passed               int
		tieBreakRequired     int
		votingAllowed        int
		presidentialDecision string
		presidentialVoteCast int
	)
	if err := row.Scan(
		&b.Index, &b.Title, &b.EnactingClause, &proposedAt, &effectiveAt,
		&sponsors, &cosponsors, &sections, &definitions,
		&passedHouse, &passedSenate, &passed, &tieBreakRequired, &votingAllowed,
		&b.Voting.HouseTally.Yea, &b.Voting.HouseTally.Nay, &b.Voting.HouseTally.Abstain,
		&b.Voting.SenateTally.Yea, &b.Voting.SenateTally.Nay, &b.Voting.SenateTally.Abstain,
		&presidentialDecision, &presidentialVoteCast,
	); err != nil {
		return bill.Bill{}, err
	}

	b.ProposedAt = fromMillis(proposedAt)
	b.EffectiveAt = fromMillis(effectiveAt)

	var err error
	if b.Sponsors, err = decodeStrings(sponsors); err != nil {
		return bill.Bill{}, fmt.Errorf("decode sponsors: %w", err)
	}
	if b.Cosponsors, err = decodeStrings(cosponsors); err != nil {
		return bill.Bill{}, fmt.Errorf("decode cosponsors: %w", err)
	}
	if b.Sections, err = decodeStrings(sections); err != nil {
		return bill.Bill{}, fmt.Errorf("decode sections: %w", err)
	}
	if b.Definitions, err = decodeStrings(definitions); err != nil {
		return bill.Bill{}, fmt.Errorf("decode definitions: %w", err)
	}

	b.Voting.PassedHouse = passedHouse != 0
	b.Voting.PassedSenate = passedSenate != 0
	b.Voting.Passed = passed != 0
	b.Voting.TieBreakRequired = tieBreakRequired != 0
	b.Voting.VotingAllowed = votingAllowed != 0
	b.Voting.PresidentialVoteCast = presidentialVoteCast != 0
	if presidentialDecision != "" {
		decision, ok := bill.ParseDecision(presidentialDecision)
		if !ok {
			return bill.Bill{}, fmt.Errorf("unknown presidential decision %q", presidentialDecision)
		}
		b.Voting.PresidentialDecision = decision
	}

	b.Voting.HouseVoted = make(map[string]bill.Decision)
	b.Voting.SenateVoted = make(map[string]bill.Decision)
	return b, nil
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeStrings(data string) ([]string, error) {
	if data == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}

func decisionLabel(d bill.Decision) string {
	if d == bill.DecisionUnspecified {
		return ""
	}
	return d.String()
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
