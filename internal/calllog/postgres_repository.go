package calllog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the slice of pgxpool.Pool the repository needs. pgxmock
// satisfies it in tests.
type PgxPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores call logs in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("calllog: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Insert writes the record unless one already exists for its call id. The
// unique constraint on call_id makes the duplicate check atomic under
// concurrent delivery; inserted reports whether this call won the insert.
func (r *PostgresRepository) Insert(ctx context.Context, rec *Record) (bool, error) {
	if strings.TrimSpace(rec.CallID) == "" {
		return false, ErrMissingCallID
	}
	query := `
		INSERT INTO call_logs (
			call_id, uuid, agent_name, call_type, call_date, call_time,
			end_time, duration, recording_url, agent_number, customer_number,
			status, description
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (call_id) DO NOTHING
	`
	ct, err := r.pool.Exec(ctx, query,
		rec.CallID,
		rec.UUID,
		rec.AgentName,
		string(rec.CallType),
		rec.CallDate,
		rec.CallTime,
		rec.EndTime,
		rec.Duration,
		rec.RecordingURL,
		rec.AgentNumber,
		rec.CustomerNumber,
		string(rec.Status),
		rec.Description,
	)
	if err != nil {
		return false, fmt.Errorf("calllog: insert failed: %w", err)
	}
	return ct.RowsAffected() > 0, nil
}

// GetByCallID fetches one record by provider call id.
func (r *PostgresRepository) GetByCallID(ctx context.Context, callID string) (*Record, error) {
	query := `
		SELECT call_id, uuid, agent_name, call_type, call_date, call_time,
		       end_time, duration, recording_url, agent_number, customer_number,
		       status, description, created_at
		FROM call_logs
		WHERE call_id = $1
	`
	row := r.pool.QueryRow(ctx, query, callID)
	var rec Record
	if err := row.Scan(
		&rec.CallID,
		&rec.UUID,
		&rec.AgentName,
		&rec.CallType,
		&rec.CallDate,
		&rec.CallTime,
		&rec.EndTime,
		&rec.Duration,
		&rec.RecordingURL,
		&rec.AgentNumber,
		&rec.CustomerNumber,
		&rec.Status,
		&rec.Description,
		&rec.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("calllog: select failed: %w", err)
	}
	return &rec, nil
}

// ReplaceMissedAgents replaces the missed-agent sub-list in one transaction.
func (r *PostgresRepository) ReplaceMissedAgents(ctx context.Context, callID string, entries []MissedAgentEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("calllog: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM call_log_missed_agents WHERE call_id = $1`, callID); err != nil {
		return fmt.Errorf("calllog: clear missed agents: %w", err)
	}
	for i, e := range entries {
		if _, err := tx.Exec(ctx, `
			INSERT INTO call_log_missed_agents (call_id, position, agent_name, number)
			VALUES ($1, $2, $3, $4)
		`, callID, i, e.AgentName, e.Number); err != nil {
			return fmt.Errorf("calllog: insert missed agent: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("calllog: commit missed agents: %w", err)
	}
	return nil
}

// ReplaceHangupRecords replaces the hangup sub-list in one transaction.
func (r *PostgresRepository) ReplaceHangupRecords(ctx context.Context, callID string, entries []HangupRecordEntry) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("calllog: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM call_log_hangup_records WHERE call_id = $1`, callID); err != nil {
		return fmt.Errorf("calllog: clear hangup records: %w", err)
	}
	for i, e := range entries {
		if _, err := tx.Exec(ctx, `
			INSERT INTO call_log_hangup_records (call_id, position, entry_id, agent_name, disposition, hangup_time)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, callID, i, e.ID, e.AgentName, e.Disposition, e.HangupTime); err != nil {
			return fmt.Errorf("calllog: insert hangup record: %w", err)
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("calllog: commit hangup records: %w", err)
	}
	return nil
}

// MissedAgents returns the ordered missed-agent sub-list for a call.
func (r *PostgresRepository) MissedAgents(ctx context.Context, callID string) ([]MissedAgentEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT agent_name, number
		FROM call_log_missed_agents
		WHERE call_id = $1
		ORDER BY position
	`, callID)
	if err != nil {
		return nil, fmt.Errorf("calllog: select missed agents: %w", err)
	}
	defer rows.Close()

	var entries []MissedAgentEntry
	for rows.Next() {
		var e MissedAgentEntry
		if err := rows.Scan(&e.AgentName, &e.Number); err != nil {
			return nil, fmt.Errorf("calllog: scan missed agent: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// HangupRecords returns the ordered hangup sub-list for a call.
func (r *PostgresRepository) HangupRecords(ctx context.Context, callID string) ([]HangupRecordEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT entry_id, agent_name, disposition, hangup_time
		FROM call_log_hangup_records
		WHERE call_id = $1
		ORDER BY position
	`, callID)
	if err != nil {
		return nil, fmt.Errorf("calllog: select hangup records: %w", err)
	}
	defer rows.Close()

	var entries []HangupRecordEntry
	for rows.Next() {
		var e HangupRecordEntry
		if err := rows.Scan(&e.ID, &e.AgentName, &e.Disposition, &e.HangupTime); err != nil {
			return nil, fmt.Errorf("calllog: scan hangup record: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
