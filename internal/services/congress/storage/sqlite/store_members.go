package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/statecraft/congress/internal/services/congress/domain/member"
	"github.com/statecraft/congress/internal/services/congress/storage"
)

// Member methods.

const putMemberSQL = `
INSERT INTO members (principal, first_name, last_name, role, state, district, term_start, term_end)
VALUES (?, ?, ?, ?, ?, ?, ?, ?);
`

const getMemberSQL = `
SELECT principal, first_name, last_name, role, state, district, term_start, term_end
FROM members
WHERE principal = ?;
`

const listMembersSQL = `
SELECT principal, first_name, last_name, role, state, district, term_start, term_end
FROM members
ORDER BY term_start, principal;
`

// PutMember inserts a member record. The principal is the primary key, so a
// second registration for the same identity fails at the database level too.
func (s *Store) PutMember(ctx context.Context, m member.Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(m.Principal) == "" {
		return fmt.Errorf("member principal is required")
	}

	if _, err := s.sqlDB.ExecContext(ctx, putMemberSQL,
		m.Principal,
		m.FirstName,
		m.LastName,
		m.Role.String(),
		m.State,
		m.District,
		toMillis(m.TermStart),
		toMillis(m.TermEnd),
	); err != nil {
		return fmt.Errorf("put member: %w", err)
	}
	return nil
}

// GetMember fetches a member record by principal.
func (s *Store) GetMember(ctx context.Context, principal string) (member.Member, error) {
	if err := ctx.Err(); err != nil {
		return member.Member{}, err
	}
	if s == nil || s.sqlDB == nil {
		return member.Member{}, fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(principal) == "" {
		return member.Member{}, fmt.Errorf("member principal is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, getMemberSQL, principal)
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return member.Member{}, storage.ErrNotFound
		}
		return member.Member{}, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// ListMembers returns every registered member ordered by term start.
func (s *Store) ListMembers(ctx context.Context) ([]member.Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}

	rows, err := s.sqlDB.QueryContext(ctx, listMembersSQL)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []member.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read members: %w", err)
	}
	return members, nil
}

// ChamberSeatCount counts every seat ever registered in a chamber.
func (s *Store) ChamberSeatCount(ctx context.Context, chamber member.Role) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if s == nil || s.sqlDB == nil {
		return 0, fmt.Errorf("storage is not configured")
	}

	var count int
	row := s.sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM members WHERE role = ?", chamber.String())
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count chamber seats: %w", err)
	}
	return count, nil
}

// CurrentOfficer returns the most recently registered holder of a singleton
// executive role.
func (s *Store) CurrentOfficer(ctx context.Context, role member.Role) (member.Member, error) {
	if err := ctx.Err(); err != nil {
		return member.Member{}, err
	}
	if s == nil || s.sqlDB == nil {
		return member.Member{}, fmt.Errorf("storage is not configured")
	}

	row := s.sqlDB.QueryRowContext(ctx,
		"SELECT principal, first_name, last_name, role, state, district, term_start, term_end FROM members WHERE role = ? ORDER BY term_start DESC, principal LIMIT 1",
		role.String(),
	)
	m, err := scanMember(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return member.Member{}, storage.ErrNotFound
		}
		return member.Member{}, fmt.Errorf("get current officer: %w", err)
	}
	return m, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMember(row rowScanner) (member.Member, error) {
	var (
		m         member.Member
		roleLabel string
		termStart int64
		termEnd   int64
	)
	if err := row.Scan(&m.Principal, &m.FirstName, &m.LastName, &roleLabel, &m.State, &m.District, &termStart, &termEnd); err != nil {
		return member.Member{}, err
	}
	role, ok := member.ParseRole(roleLabel)
	if !ok {
		return member.Member{}, fmt.Errorf("unknown member role %q", roleLabel)
	}
	m.Role = role
	m.TermStart = fromMillis(termStart)
	m.TermEnd = fromMillis(termEnd)
	return m, nil
}
