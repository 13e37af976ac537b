package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"
)

// UpsertAgentMeta merges fields into the agent's metadata row. Existing
// keys not named in fields are preserved.
func (s *Store) UpsertAgentMeta(ctx context.Context, id string, fields map[string]any) error {
	if s == nil || s.pool == nil {
		log.Printf("[store] unavailable, dropping metadata for %s", id)
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	merged := make(map[string]any, len(fields))
	var existing string
	err = tx.QueryRowContext(ctx, `SELECT fields FROM agents WHERE id = ?;`, id).Scan(&existing)
	switch {
	case err == nil:
		if uerr := json.Unmarshal([]byte(existing), &merged); uerr != nil {
			log.Printf("[store] corrupt metadata for %s, overwriting: %v", id, uerr)
			merged = make(map[string]any, len(fields))
		}
	case errors.Is(err, sql.ErrNoRows):
	default:
		return err
	}
	for k, v := range fields {
		merged[k] = v
	}

	b, err := json.Marshal(merged)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	now := time.Now().UTC().Format(time.RFC3339)
	if _, err := tx.ExecContext(ctx, `
INSERT INTO agents(id, fields, updated_at) VALUES(?,?,?)
ON CONFLICT(id) DO UPDATE SET fields = excluded.fields, updated_at = excluded.updated_at;`,
		id, string(b), now); err != nil {
		return err
	}
	return tx.Commit()
}

// AgentMeta reads one agent's metadata row.
func (s *Store) AgentMeta(ctx context.Context, id string) (map[string]any, error) {
	if s == nil || s.pool == nil {
		return nil, nil
	}
	var raw string
	err := s.pool.QueryRowContext(ctx, `SELECT fields FROM agents WHERE id = ?;`, id).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return fields, nil
}

// AppendRecords stores a batch of records for an agent. The batch is
// marshaled to JSON; arrays are split so each element gets its own row
// and ReadRecords limits apply per record.
func (s *Store) AppendRecords(ctx context.Context, id, kind string, records any) error {
	if s == nil || s.pool == nil {
		log.Printf("[store] unavailable, dropping %s records for %s", kind, id)
		return nil
	}

	b, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal %s records: %w", kind, err)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(b, &items); err != nil {
		items = []json.RawMessage{b}
	}
	if len(items) == 0 {
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(time.RFC3339)
	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO records(agent_id, kind, payload, created_at) VALUES(?,?,?,?);`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, item := range items {
		if _, err := stmt.ExecContext(ctx, id, kind, string(item), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ReadRecords returns up to limit stored records of one kind, oldest
// first. limit <= 0 means a sane default.
func (s *Store) ReadRecords(ctx context.Context, id, kind string, limit int) ([]json.RawMessage, error) {
	if s == nil || s.pool == nil {
		log.Printf("[store] unavailable, no %s records for %s", kind, id)
		return nil, nil
	}
	if limit <= 0 || limit > 2000 {
		limit = 500
	}

	rows, err := s.pool.QueryContext(ctx, `
SELECT payload FROM records
WHERE agent_id = ? AND kind = ?
ORDER BY id ASC
LIMIT ?;`, id, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []json.RawMessage
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		out = append(out, json.RawMessage(payload))
	}
	return out, rows.Err()
}

// StoredRecord is one record row with enough identity to rewrite it.
type StoredRecord struct {
	RowID   int64
	AgentID string
	Payload json.RawMessage
}

// AllRecords returns every stored record of one kind across agents,
// oldest first. Used by background workers that scan, not serve.
func (s *Store) AllRecords(ctx context.Context, kind string) ([]StoredRecord, error) {
	if s == nil || s.pool == nil {
		return nil, nil
	}
	rows, err := s.pool.QueryContext(ctx, `
SELECT id, agent_id, payload FROM records
WHERE kind = ?
ORDER BY id ASC;`, kind)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoredRecord
	for rows.Next() {
		var rec StoredRecord
		var payload string
		if err := rows.Scan(&rec.RowID, &rec.AgentID, &payload); err != nil {
			return nil, err
		}
		rec.Payload = json.RawMessage(payload)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ReplaceRecord rewrites one record row in place.
func (s *Store) ReplaceRecord(ctx context.Context, rowID int64, payload any) error {
	if s == nil || s.pool == nil {
		log.Printf("[store] unavailable, dropping record rewrite for row %d", rowID)
		return nil
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	_, err = s.pool.ExecContext(ctx, `UPDATE records SET payload = ? WHERE id = ?;`, string(b), rowID)
	return err
}

// DeleteAgent removes an agent's metadata row and every record batch
// stored under it.
func (s *Store) DeleteAgent(ctx context.Context, id string) error {
	if s == nil || s.pool == nil {
		log.Printf("[store] unavailable, nothing to delete for %s", id)
		return nil
	}

	tx, err := s.pool.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records WHERE agent_id = ?;`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM agents WHERE id = ?;`, id); err != nil {
		return err
	}
	return tx.Commit()
}

// CleanupOldRecords drops record rows older than three months.
func (s *Store) CleanupOldRecords() (int64, error) {
	if s == nil || s.pool == nil {
		return 0, nil
	}
	res, err := s.pool.Exec(`
DELETE FROM records
WHERE created_at < datetime('now', '-3 months');
`)
	if err != nil {
		return 0, fmt.Errorf("cleanup old records: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
