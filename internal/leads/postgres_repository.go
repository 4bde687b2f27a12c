package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the slice of pgxpool.Pool the repository needs. pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool PgxPool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// Create inserts a new lead row.
func (r *PostgresRepository) Create(ctx context.Context, lead *Lead) (*Lead, error) {
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	id := lead.ID
	if id == "" {
		id = uuid.New().String()
	}
	query := `
		INSERT INTO leads (id, first_name, source, mobile_no, call_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		lead.FirstName,
		lead.Source,
		lead.MobileNo,
		lead.CallStatus,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}

	created := *lead
	created.ID = id
	created.CreatedAt = createdAt
	return &created, nil
}

const leadColumns = `id, first_name, source, mobile_no, call_status, call_id, created_at`

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	err := row.Scan(
		&lead.ID,
		&lead.FirstName,
		&lead.Source,
		&lead.MobileNo,
		&lead.CallStatus,
		&lead.CallID,
		&lead.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// GetByID fetches a single lead.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// FindByMobile returns every lead with the given mobile number.
func (r *PostgresRepository) FindByMobile(ctx context.Context, mobile string) ([]*Lead, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+leadColumns+` FROM leads WHERE mobile_no = $1 ORDER BY created_at`, mobile)
	if err != nil {
		return nil, fmt.Errorf("leads: select by mobile: %w", err)
	}
	defer rows.Close()

	var out []*Lead
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: scan: %w", err)
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

// ExistsByMobile reports whether any lead has the given mobile number.
func (r *PostgresRepository) ExistsByMobile(ctx context.Context, mobile string) (bool, error) {
	var exists int
	err := r.pool.QueryRow(ctx, `SELECT 1 FROM leads WHERE mobile_no = $1 LIMIT 1`, mobile).Scan(&exists)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("leads: exists check: %w", err)
	}
	return true, nil
}

// SetCallID stores or clears the in-flight call id on a lead.
func (r *PostgresRepository) SetCallID(ctx context.Context, leadID, callID string) error {
	ct, err := r.pool.Exec(ctx, `UPDATE leads SET call_id = $2 WHERE id = $1`, leadID, callID)
	if err != nil {
		return fmt.Errorf("leads: set call id: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// UpdateCallStatus sets the lead's call-status field.
func (r *PostgresRepository) UpdateCallStatus(ctx context.Context, leadID, status string) error {
	ct, err := r.pool.Exec(ctx, `UPDATE leads SET call_status = $2 WHERE id = $1`, leadID, status)
	if err != nil {
		return fmt.Errorf("leads: update call status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}

// SaveHistoryEntry upserts one calling-history entry. The (lead_id, call_id)
// unique constraint makes re-delivery idempotent: the entry is updated in
// place rather than appended twice.
func (r *PostgresRepository) SaveHistoryEntry(ctx context.Context, leadID string, entry CallingHistoryEntry) error {
	query := `
		INSERT INTO lead_calling_history (lead_id, call_id, agent_name, call_type, status, call_date, call_time, duration)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (lead_id, call_id) DO UPDATE SET
			agent_name = EXCLUDED.agent_name,
			call_type  = EXCLUDED.call_type,
			status     = EXCLUDED.status,
			call_date  = EXCLUDED.call_date,
			call_time  = EXCLUDED.call_time,
			duration   = EXCLUDED.duration
	`
	_, err := r.pool.Exec(ctx, query,
		leadID,
		entry.CallID,
		entry.AgentName,
		entry.CallType,
		entry.Status,
		entry.CallDate,
		entry.CallTime,
		entry.Duration,
	)
	if err != nil {
		return fmt.Errorf("leads: save history entry: %w", err)
	}
	return nil
}

// History returns the lead's calling history in append order.
func (r *PostgresRepository) History(ctx context.Context, leadID string) ([]CallingHistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT call_id, agent_name, call_type, status, call_date, call_time, duration
		FROM lead_calling_history
		WHERE lead_id = $1
		ORDER BY created_at
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("leads: select history: %w", err)
	}
	defer rows.Close()

	var out []CallingHistoryEntry
	for rows.Next() {
		var e CallingHistoryEntry
		if err := rows.Scan(&e.CallID, &e.AgentName, &e.CallType, &e.Status, &e.CallDate, &e.CallTime, &e.Duration); err != nil {
			return nil, fmt.Errorf("leads: scan history: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
