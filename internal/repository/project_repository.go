package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/iliyamo/messestand-kalkulator/internal/model"
)

// ProjectRepo encapsulates all queries on the projects table.  Every
// method is scoped by the owning user id; there is no way to reach a
// project without it.
type ProjectRepo struct {
	db *sql.DB
}

func NewProjectRepo(db *sql.DB) *ProjectRepo {
	return &ProjectRepo{db: db}
}

// `system` is reserved in MySQL 8; SQLite accepts the backticks too.
const projectColumns = "id, user_id, projektname, breite, tiefe, hoehe, `system`, data, created_at, updated_at"

// ListByOwner returns the user's projects, most recently updated first.
func (r *ProjectRepo) ListByOwner(ctx context.Context, userID uint64) ([]*model.Project, error) {
	q := "SELECT " + projectColumns + " FROM projects WHERE user_id = ? ORDER BY updated_at DESC, id DESC"
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByIDAndOwner fetches one project of the user.
func (r *ProjectRepo) GetByIDAndOwner(ctx context.Context, id, userID uint64) (*model.Project, error) {
	q := "SELECT " + projectColumns + " FROM projects WHERE id = ? AND user_id = ?"
	p, err := scanProject(r.db.QueryRowContext(ctx, q, id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	return p, err
}

// Create stores p for p.UserID and fills in ID and both timestamps.
func (r *ProjectRepo) Create(ctx context.Context, p *model.Project) error {
	data, err := model.EncodePayload(p.Data)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	const q = "INSERT INTO projects (user_id, projektname, breite, tiefe, hoehe, `system`, data, created_at, updated_at) VALUES (?,?,?,?,?,?,?,?,?)"
	res, err := r.db.ExecContext(ctx, q,
		p.UserID, p.Projektname, p.Breite, p.Tiefe, p.Hoehe, p.System, string(data), now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.CreatedAt, p.UpdatedAt = now, now
	return nil
}

// Update replaces every field of the project p.ID owned by p.UserID and
// refreshes updated_at.  It returns ErrProjectNotFound when no row matches
// both ids.  Concurrent updates are last-write-wins.
func (r *ProjectRepo) Update(ctx context.Context, p *model.Project) error {
	data, err := model.EncodePayload(p.Data)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	const q = "UPDATE projects SET projektname = ?, breite = ?, tiefe = ?, hoehe = ?, `system` = ?, data = ?, updated_at = ? WHERE id = ? AND user_id = ?"
	res, err := r.db.ExecContext(ctx, q,
		p.Projektname, p.Breite, p.Tiefe, p.Hoehe, p.System, string(data), now, p.ID, p.UserID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProjectNotFound
	}
	p.UpdatedAt = now
	return nil
}

// DeleteByIDAndOwner removes the project if it belongs to userID.
func (r *ProjectRepo) DeleteByIDAndOwner(ctx context.Context, id, userID uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ? AND user_id = ?", id, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrProjectNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(s rowScanner) (*model.Project, error) {
	var (
		p                    model.Project
		breite, tiefe, hoehe sql.NullFloat64
		system, data         sql.NullString
	)
	if err := s.Scan(&p.ID, &p.UserID, &p.Projektname, &breite, &tiefe, &hoehe, &system, &data, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.Breite, p.Tiefe, p.Hoehe = nullFloat(breite), nullFloat(tiefe), nullFloat(hoehe)
	p.System = system.String
	payload, err := model.DecodePayload([]byte(data.String))
	if err != nil {
		return nil, fmt.Errorf("project %d: %w", p.ID, err)
	}
	p.Data = payload
	return &p, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
