package users

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Upsert(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, org_id, email, name, role, created_at)
VALUES ($1, $2, $3, $4, $5, now())
ON CONFLICT (id) DO UPDATE SET
  org_id = EXCLUDED.org_id,
  email = EXCLUDED.email,
  name = EXCLUDED.name,
  role = EXCLUDED.role`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		nullableString(user.OrgID),
		user.Email,
		user.Name,
		user.Role,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	const query = `
SELECT id, org_id, email, name, role, created_at
FROM users
WHERE id = $1
LIMIT 1`
	var user User
	var orgID sql.NullString
	err := r.DB.QueryRowContext(ctx, query, userID).Scan(
		&user.ID,
		&orgID,
		&user.Email,
		&user.Name,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if orgID.Valid {
		user.OrgID = orgID.String
	}
	return user, nil
}

// GetByIDs returns the users that resolve; missing IDs are simply absent
// from the result.
func (r *PGRepo) GetByIDs(ctx context.Context, userIDs []string) (map[string]User, error) {
	out := make(map[string]User, len(userIDs))
	if len(userIDs) == 0 {
		return out, nil
	}
	const query = `
SELECT id, org_id, email, name, role, created_at
FROM users
WHERE id = ANY($1)`
	rows, err := r.DB.QueryContext(ctx, query, userIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var user User
		var orgID sql.NullString
		if err := rows.Scan(&user.ID, &orgID, &user.Email, &user.Name, &user.Role, &user.CreatedAt); err != nil {
			return nil, err
		}
		if orgID.Valid {
			user.OrgID = orgID.String
		}
		out[user.ID] = user
	}
	return out, rows.Err()
}

func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
