package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/statecraft/congress/internal/services/congress/domain/member"
	"github.com/statecraft/congress/internal/services/congress/domain/nomination"
	"github.com/statecraft/congress/internal/services/congress/storage"
)

// Nomination methods.

const putNominationSQL = `
INSERT INTO nominations (candidate, first_name, last_name, role, state, district, nominated_at)
VALUES (?, ?, ?, ?, ?, ?, ?);
`

const getNominationSQL = `
SELECT candidate, first_name, last_name, role, state, district, nominated_at
FROM nominations
WHERE candidate = ?;
`

// PutNomination inserts a live nomination. The candidate is the primary key,
// so a second live nomination for the same candidate fails.
func (s *Store) PutNomination(ctx context.Context, n nomination.Nomination) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(n.Candidate) == "" {
		return fmt.Errorf("nomination candidate is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, putNominationSQL,
		n.Candidate,
		n.FirstName,
		n.LastName,
		n.Role.String(),
		n.State,
		n.District,
		toMillis(n.NominatedAt),
	); err != nil {
		return fmt.Errorf("put nomination: %w", err)
	}
	return nil
}

// GetNomination fetches a live nomination with its ratifier set.
func (s *Store) GetNomination(ctx context.Context, candidate string) (nomination.Nomination, error) {
	if err := ctx.Err(); err != nil {
		return nomination.Nomination{}, err
	}
	if s == nil || s.sqlDB == nil {
		return nomination.Nomination{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx, getNominationSQL, candidate)
	n, err := scanNomination(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nomination.Nomination{}, storage.ErrNotFound
		}
		return nomination.Nomination{}, fmt.Errorf("get nomination: %w", err)
	}

	rows, err := s.sqlDB.QueryContext(ctx,
		"SELECT principal, ratified_at FROM nomination_ratifiers WHERE candidate = ?", candidate)
	if err != nil {
		return nomination.Nomination{}, fmt.Errorf("get nomination ratifiers: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			principal  string
			ratifiedAt int64
		)
		if err := rows.Scan(&principal, &ratifiedAt); err != nil {
			return nomination.Nomination{}, fmt.Errorf("scan nomination ratifier: %w", err)
		}
		n.RatifiedBy[principal] = fromMillis(ratifiedAt)
	}
	if err := rows.Err(); err != nil {
		return nomination.Nomination{}, fmt.Errorf("read nomination ratifiers: %w", err)
	}
	return n, nil
}

// RecordRatification adds one ratifier to a live nomination.
func (s *Store) RecordRatification(ctx context.Context, candidate, principal string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	if _, err := s.sqlDB.ExecContext(ctx,
		"INSERT INTO nomination_ratifiers (candidate, principal, ratified_at) VALUES (?, ?, ?)",
		candidate, principal, toMillis(at),
	); err != nil {
		return fmt.Errorf("record ratification: %w", err)
	}
	return nil
}

// FinalizeNomination removes the nomination and registers the admitted member
// in one transaction, so a crash cannot leave an admitted member with a live
// nomination or vice versa.
func (s *Store) FinalizeNomination(ctx context.Context, candidate string, m member.Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin finalize nomination: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, "DELETE FROM nominations WHERE candidate = ?", candidate)
	if err != nil {
		return fmt.Errorf("delete nomination: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete nomination rows affected: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, putMemberSQL,
		m.Principal,
		m.FirstName,
		m.LastName,
		m.Role.String(),
		m.State,
		m.District,
		toMillis(m.TermStart),
		toMillis(m.TermEnd),
	); err != nil {
		return fmt.Errorf("insert admitted member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit finalize nomination: %w", err)
	}
	return nil
}

func scanNomination(row rowScanner) (nomination.Nomination, error) {
	var (
		n           nomination.Nomination
		roleLabel   string
		nominatedAt int64
	)
	if err := row.Scan(&n.Candidate, &n.FirstName, &n.LastName, &roleLabel, &n.State, &n.District, &nominatedAt); err != nil {
		return nomination.Nomination{}, err
	}
	role, ok := member.ParseRole(roleLabel)
	if !ok {
		return nomination.Nomination{}, fmt.Errorf("unknown nomination role %q", roleLabel)
	}
	n.Role = role
	n.NominatedAt = fromMillis(nominatedAt)
	n.RatifiedBy = make(map[string]time.Time)
	return n, nil
}
