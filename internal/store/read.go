package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/roach88/charsheet/internal/character"
)

// CharacterRecord summarizes a stored character.
type CharacterRecord struct {
	ID         string
	CampaignID string
	Name       string
	BaseHash   string
	Cursor     int
	LogLength  int
}

// Snapshot is the cached memo at a character's cursor.
type Snapshot struct {
	Cursor   int
	Memo     character.Memo
	MemoHash string
}

// ReadCharacter retrieves a character summary by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadCharacter(ctx context.Context, id string) (CharacterRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT c.id, c.campaign_id, c.name, c.base_hash, c.cursor,
			(SELECT COUNT(*) FROM mutations m WHERE m.character_id = c.id)
		FROM characters c
		WHERE c.id = ?
	`, id)

	var rec CharacterRecord
	if err := row.Scan(&rec.ID, &rec.CampaignID, &rec.Name, &rec.BaseHash, &rec.Cursor, &rec.LogLength); err != nil {
		return CharacterRecord{}, err
	}
	return rec, nil
}

// ListCharacters returns characters ordered by ID. An empty campaignID lists
// every character.
func (s *Store) ListCharacters(ctx context.Context, campaignID string) ([]CharacterRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.campaign_id, c.name, c.base_hash, c.cursor,
			(SELECT COUNT(*) FROM mutations m WHERE m.character_id = c.id)
		FROM characters c
		WHERE ? = '' OR c.campaign_id = ?
		ORDER BY c.id COLLATE BINARY ASC
	`, campaignID, campaignID)
	if err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	defer rows.Close()

	records := []CharacterRecord{}
	for rows.Next() {
		var rec CharacterRecord
		if err := rows.Scan(&rec.ID, &rec.CampaignID, &rec.Name, &rec.BaseHash, &rec.Cursor, &rec.LogLength); err != nil {
			return nil, fmt.Errorf("scan character: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list characters: %w", err)
	}
	return records, nil
}

// ReadBase returns a character's base memo.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadBase(ctx context.Context, id string) (character.Memo, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT base_memo FROM characters WHERE id = ?`, id).Scan(&data)
	if err != nil {
		return character.Memo{}, err
	}
	return unmarshalMemo(data)
}

// ReadLog returns a character's full mutation log in sequence order,
// including mutations past the cursor.
func (s *Store) ReadLog(ctx context.Context, id string) ([]MutationRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT character_id, seq, id, type, payload
		FROM mutations
		WHERE character_id = ?
		ORDER BY seq ASC
	`, id)
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	defer rows.Close()

	records := []MutationRecord{}
	for rows.Next() {
		var rec MutationRecord
		var typ, payload string
		if err := rows.Scan(&rec.CharacterID, &rec.Seq, &rec.ID, &typ, &payload); err != nil {
			return nil, fmt.Errorf("scan mutation: %w", err)
		}
		rec.Type = character.Type(typ)
		rec.Payload = json.RawMessage(payload)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	return records, nil
}

// ReadSnapshot returns the cached memo at a character's cursor.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadSnapshot(ctx context.Context, id string) (Snapshot, error) {
	var snap Snapshot
	var data string
	err := s.db.QueryRowContext(ctx, `
		SELECT cursor, memo, memo_hash
		FROM snapshots
		WHERE character_id = ?
	`, id).Scan(&snap.Cursor, &data, &snap.MemoHash)
	if err != nil {
		return Snapshot{}, err
	}
	memo, err := unmarshalMemo(data)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot: %w", err)
	}
	snap.Memo = memo
	return snap, nil
}

// LoadHistory rebuilds a character's event source from its base memo, log
// and cursor. Every record's content ID is verified before decoding.
// The error wraps sql.ErrNoRows if the character does not exist.
func (s *Store) LoadHistory(ctx context.Context, id string, opts ...character.Option) (*character.EventSource, error) {
	var data string
	var cursor int
	err := s.db.QueryRowContext(ctx, `
		SELECT base_memo, cursor FROM characters WHERE id = ?
	`, id).Scan(&data, &cursor)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", id, err)
	}
	base, err := unmarshalMemo(data)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", id, err)
	}

	records, err := s.ReadLog(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", id, err)
	}
	log := make([]character.Mutation, 0, len(records))
	for _, rec := range records {
		mut, err := decodeRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("load history %s: %w", id, err)
		}
		log = append(log, mut)
	}

	es, err := character.RestoreEventSource(base, log, cursor, opts...)
	if err != nil {
		return nil, fmt.Errorf("load history %s: %w", id, err)
	}
	return es, nil
}
