package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// PGRepo implements Repo using Postgres. Skills and recruiter lists are
// stored as jsonb arrays.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, job Job) error {
	const query = `
INSERT INTO jobs (id, org_id, created_by, title, description, skills, assigned_recruiters, is_active, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	skills, err := json.Marshal(emptyIfNil(job.Skills))
	if err != nil {
		return err
	}
	recruiters, err := json.Marshal(emptyIfNil(job.AssignedRecruiters))
	if err != nil {
		return err
	}
	var createdBy sql.NullString
	if job.CreatedBy != "" {
		createdBy = sql.NullString{String: job.CreatedBy, Valid: true}
	}
	_, err = r.DB.ExecContext(ctx, query,
		job.ID,
		job.OrgID,
		createdBy,
		job.Title,
		job.Description,
		skills,
		recruiters,
		job.IsActive,
		job.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, jobID string) (Job, error) {
	const query = `
SELECT id, org_id, created_by, title, description, skills, assigned_recruiters, is_active, created_at
FROM jobs
WHERE id = $1
LIMIT 1`
	return r.scanOne(r.DB.QueryRowContext(ctx, query, jobID))
}

func (r *PGRepo) ListByOrg(ctx context.Context, orgID string, limit, offset int) ([]Job, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, org_id, created_by, title, description, skills, assigned_recruiters, is_active, created_at
FROM jobs
WHERE org_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	rows, err := r.DB.QueryContext(ctx, query, orgID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		job, err := r.scanOne(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (r *PGRepo) SetRecruiters(ctx context.Context, jobID string, recruiterIDs []string) error {
	raw, err := json.Marshal(emptyIfNil(recruiterIDs))
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE jobs SET assigned_recruiters = $1 WHERE id = $2`, raw, jobID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) SetActive(ctx context.Context, jobID string, active bool) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE jobs SET is_active = $1 WHERE id = $2`, active, jobID)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *PGRepo) scanOne(row rowScanner) (Job, error) {
	var job Job
	var createdBy sql.NullString
	var skillsRaw, recruitersRaw []byte
	err := row.Scan(
		&job.ID,
		&job.OrgID,
		&createdBy,
		&job.Title,
		&job.Description,
		&skillsRaw,
		&recruitersRaw,
		&job.IsActive,
		&job.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Job{}, ErrNotFound
		}
		return Job{}, err
	}
	if createdBy.Valid {
		job.CreatedBy = createdBy.String
	}
	if len(skillsRaw) > 0 {
		if err := json.Unmarshal(skillsRaw, &job.Skills); err != nil {
			return Job{}, err
		}
	}
	if len(recruitersRaw) > 0 {
		if err := json.Unmarshal(recruitersRaw, &job.AssignedRecruiters); err != nil {
			return Job{}, err
		}
	}
	return job, nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func emptyIfNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

var _ Repo = (*PGRepo)(nil)
