package sqlite

import (
	"context"
	"fmt"

	"github.com/statecraft/congress/internal/services/congress/storage"
)

// Journal methods.

const appendJournalSQL = `
INSERT INTO journal (id, actor, action, entity_type, entity_id, detail, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?);
`

const listJournalSQL = `
SELECT id, actor, action, entity_type, entity_id, detail, created_at
FROM journal
ORDER BY created_at DESC, id
LIMIT ?;
`

// AppendEntry records one audit journal entry.
func (s *Store) AppendEntry(ctx context.Context, entry storage.JournalEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	if _, err := s.sqlDB.ExecContext(ctx, appendJournalSQL,
		entry.ID,
		entry.Actor,
		entry.Action,
		entry.EntityType,
		entry.EntityID,
		entry.Detail,
		toMillis(entry.CreatedAt),
	); err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	return nil
}

// ListEntries returns the most recent journal entries, newest first.
func (s *Store) ListEntries(ctx context.Context, limit int) ([]storage.JournalEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.sqlDB.QueryContext(ctx, listJournalSQL, limit)
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	defer rows.Close()

	var entries []storage.JournalEntry
	for rows.Next() {
		var (
			entry     storage.JournalEntry
			createdAt int64
		)
		if err := rows.Scan(&entry.ID, &entry.Actor, &entry.Action, &entry.EntityType, &entry.EntityID, &entry.Detail, &createdAt); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		entry.CreatedAt = fromMillis(createdAt)
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read journal entries: %w", err)
	}
	return entries, nil
}
