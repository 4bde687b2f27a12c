package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// PgxPool is the slice of pgxpool.Pool the repositories need. pgxmock
// satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresProviderRepository stores imported provider users.
type PostgresProviderRepository struct {
	pool PgxPool
}

// NewPostgresProviderRepository initializes a repo backed by pgxpool.
func NewPostgresProviderRepository(pool PgxPool) *PostgresProviderRepository {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &PostgresProviderRepository{pool: pool}
}

const providerUserColumns = `
	id, provider_id, login_id, agent_id, agent_name, status, phone, role,
	login_based_calling, international_outbound, local_user_id, created_at
`

// Insert writes one provider user.
func (r *PostgresProviderRepository) Insert(ctx context.Context, u *ProviderUser) (*ProviderUser, error) {
	if u.ProviderID == 0 {
		return nil, ErrMissingProviderID
	}
	stored := *u
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	query := `
		INSERT INTO provider_users (
			id, provider_id, login_id, agent_id, agent_name, status, phone,
			role, login_based_calling, international_outbound, local_user_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NULLIF($11, ''))
		RETURNING created_at
	`
	err := r.pool.QueryRow(ctx, query,
		stored.ID,
		stored.ProviderID,
		stored.LoginID,
		stored.AgentID,
		stored.AgentName,
		stored.Status,
		stored.Phone,
		stored.Role,
		stored.LoginBasedCalling,
		stored.InternationalOutbound,
		stored.LocalUserID,
	).Scan(&stored.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("users: insert provider user %d: %w", stored.ProviderID, err)
	}
	return &stored, nil
}

// ExistsByProviderID reports whether the provider id is already imported.
func (r *PostgresProviderRepository) ExistsByProviderID(ctx context.Context, providerID int) (bool, error) {
	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM provider_users WHERE provider_id = $1)`
	if err := r.pool.QueryRow(ctx, query, providerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("users: check provider user %d: %w", providerID, err)
	}
	return exists, nil
}

// GetByAgentName returns the provider user with the given agent name.
func (r *PostgresProviderRepository) GetByAgentName(ctx context.Context, agentName string) (*ProviderUser, error) {
	query := `SELECT ` + providerUserColumns + ` FROM provider_users WHERE agent_name = $1 LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, query, agentName))
}

// GetByPhone returns the provider user with the given cleaned phone.
func (r *PostgresProviderRepository) GetByPhone(ctx context.Context, phone string) (*ProviderUser, error) {
	query := `SELECT ` + providerUserColumns + ` FROM provider_users WHERE phone = $1 LIMIT 1`
	return r.scanOne(r.pool.QueryRow(ctx, query, phone))
}

// List returns all imported provider users.
func (r *PostgresProviderRepository) List(ctx context.Context) ([]*ProviderUser, error) {
	query := `SELECT ` + providerUserColumns + ` FROM provider_users ORDER BY created_at`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("users: list provider users: %w", err)
	}
	defer rows.Close()

	var out []*ProviderUser
	for rows.Next() {
		u, err := scanProviderUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *PostgresProviderRepository) scanOne(row pgx.Row) (*ProviderUser, error) {
	u, err := scanProviderUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func scanProviderUser(row pgx.Row) (*ProviderUser, error) {
	var u ProviderUser
	var localUserID *string
	err := row.Scan(
		&u.ID,
		&u.ProviderID,
		&u.LoginID,
		&u.AgentID,
		&u.AgentName,
		&u.Status,
		&u.Phone,
		&u.Role,
		&u.LoginBasedCalling,
		&u.InternationalOutbound,
		&localUserID,
		&u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if localUserID != nil {
		u.LocalUserID = *localUserID
	}
	return &u, nil
}

// PostgresDirectory reads local CRM users.
type PostgresDirectory struct {
	pool PgxPool
}

// NewPostgresDirectory initializes a directory backed by pgxpool.
func NewPostgresDirectory(pool PgxPool) *PostgresDirectory {
	if pool == nil {
		panic("users: pgx pool required")
	}
	return &PostgresDirectory{pool: pool}
}

// FindByMobile returns the local user with the given mobile number.
func (d *PostgresDirectory) FindByMobile(ctx context.Context, mobile string) (*User, error) {
	var u User
	query := `SELECT id, name, email, mobile_no FROM users WHERE mobile_no = $1 LIMIT 1`
	err := d.pool.QueryRow(ctx, query, mobile).Scan(&u.ID, &u.Name, &u.Email, &u.MobileNo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users: find user by mobile: %w", err)
	}
	return &u, nil
}

// GetByID returns the local user with the given id.
func (d *PostgresDirectory) GetByID(ctx context.Context, id string) (*User, error) {
	var u User
	query := `SELECT id, name, email, mobile_no FROM users WHERE id = $1`
	err := d.pool.QueryRow(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.MobileNo)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("users: get user %s: %w", id, err)
	}
	return &u, nil
}
