package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/charsheet/internal/character"
)

// ErrCharacterExists is returned when creating a character whose ID is taken.
var ErrCharacterExists = errors.New("character already exists")

// CreateCharacter stores a new character with an empty log. The base memo is
// validated first and its cursor-0 snapshot is written in the same
// transaction.
func (s *Store) CreateCharacter(ctx context.Context, id, campaignID string, base character.Memo) error {
	if id == "" {
		return fmt.Errorf("create character: id is required")
	}
	c, err := character.FromMemo(base)
	if err != nil {
		return fmt.Errorf("create character: %w", err)
	}
	memo := c.Memo()
	data, hash, err := marshalMemo(memo)
	if err != nil {
		return fmt.Errorf("create character: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("create character: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO characters (id, campaign_id, name, base_memo, base_hash, cursor)
		VALUES (?, ?, ?, ?, ?, 0)
		ON CONFLICT(id) DO NOTHING
	`, id, campaignID, memo.Name, data, hash)
	if err != nil {
		return fmt.Errorf("create character: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create character: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("create character %s: %w", id, ErrCharacterExists)
	}

	if err := writeSnapshot(ctx, tx, id, 0, data, hash); err != nil {
		return fmt.Errorf("create character: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("create character: commit: %w", err)
	}
	return nil
}

// SaveHistory persists an event source for an existing character. Records
// are compared by content ID; everything from the first divergent sequence
// on is replaced. The cursor, name and snapshot are updated in the same
// transaction.
//
// Returns sql.ErrNoRows if the character does not exist.
func (s *Store) SaveHistory(ctx context.Context, id string, es *character.EventSource) error {
	records, err := encodeLog(id, es.Log())
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	_, baseHash, err := marshalMemo(es.Base())
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	current := es.Memo()
	memoData, memoHash, err := marshalMemo(current)
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save history: begin: %w", err)
	}
	defer tx.Rollback()

	var storedBase string
	err = tx.QueryRowContext(ctx, `SELECT base_hash FROM characters WHERE id = ?`, id).Scan(&storedBase)
	if err != nil {
		return fmt.Errorf("save history %s: %w", id, err)
	}
	if storedBase != baseHash {
		return fmt.Errorf("save history %s: base memo %s does not match stored base %s", id, baseHash, storedBase)
	}

	stored, err := readMutationIDs(ctx, tx, id)
	if err != nil {
		return fmt.Errorf("save history: %w", err)
	}
	first := firstDivergence(stored, records)

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM mutations
		WHERE character_id = ? AND seq > ?
	`, id, first); err != nil {
		return fmt.Errorf("save history: truncate log: %w", err)
	}

	for _, rec := range records[first:] {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO mutations (character_id, seq, id, type, payload)
			VALUES (?, ?, ?, ?, ?)
		`, rec.CharacterID, rec.Seq, rec.ID, string(rec.Type), string(rec.Payload)); err != nil {
			return fmt.Errorf("save history: write mutation %d: %w", rec.Seq, err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE characters SET name = ?, cursor = ?
		WHERE id = ?
	`, current.Name, es.Cursor(), id); err != nil {
		return fmt.Errorf("save history: update cursor: %w", err)
	}

	if err := writeSnapshot(ctx, tx, id, es.Cursor(), memoData, memoHash); err != nil {
		return fmt.Errorf("save history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save history: commit: %w", err)
	}
	return nil
}

// DeleteCharacter removes a character with its log and snapshot.
// Returns sql.ErrNoRows if the character does not exist.
func (s *Store) DeleteCharacter(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete character: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete character %s: %w", id, sql.ErrNoRows)
	}
	return nil
}

func writeSnapshot(ctx context.Context, tx *sql.Tx, id string, cursor int, memo, hash string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (character_id, cursor, memo, memo_hash)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(character_id) DO UPDATE SET
			cursor = excluded.cursor,
			memo = excluded.memo,
			memo_hash = excluded.memo_hash
	`, id, cursor, memo, hash)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// readMutationIDs returns stored mutation IDs in sequence order.
func readMutationIDs(ctx context.Context, tx *sql.Tx, id string) ([]string, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT id FROM mutations
		WHERE character_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("read mutation ids: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var mid string
		if err := rows.Scan(&mid); err != nil {
			return nil, fmt.Errorf("scan mutation id: %w", err)
		}
		ids = append(ids, mid)
	}
	return ids, rows.Err()
}

// firstDivergence is the number of leading records already stored.
func firstDivergence(stored []string, records []MutationRecord) int {
	n := 0
	for n < len(stored) && n < len(records) && stored[n] == records[n].ID {
		n++
	}
	return n
}
