package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/messestand-kalkulator/internal/model"
)

// catalogTable maps a catalog to its table and the column that holds the
// type tag.  Table names never come from user input.
type catalogTable struct {
	table   string
	typeCol string
}

var catalogTables = map[model.Catalog]catalogTable{
	model.CatalogAluvision: {"aluvision_templates", "typ"},
	model.CatalogPixlip:    {"pixlip_templates", "typ"},
	model.CatalogZusatz:    {"zusatz_templates", "kategorie"},
}

func tableFor(c model.Catalog) (catalogTable, error) {
	t, ok := catalogTables[c]
	if !ok {
		return catalogTable{}, model.ErrUnknownCatalog
	}
	return t, nil
}

// TemplateRepo reads and writes the three template catalogs.
type TemplateRepo struct {
	db *sql.DB
}

func NewTemplateRepo(db *sql.DB) *TemplateRepo {
	return &TemplateRepo{db: db}
}

// ListVisible returns the global templates of catalog c plus the ones
// owned by userID, in insertion order.
func (r *TemplateRepo) ListVisible(ctx context.Context, c model.Catalog, userID uint64) ([]model.Template, error) {
	t, err := tableFor(c)
	if err != nil {
		return nil, err
	}
	q := fmt.Sprintf(`SELECT id, user_id, name, %s, einheit, preis, is_global, created_at
	                  FROM %s WHERE is_global = 1 OR user_id = ? ORDER BY id`, t.typeCol, t.table)
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Template{}
	for rows.Next() {
		var (
			tpl          model.Template
			owner        sql.NullInt64
			typ, einheit sql.NullString
			preis        sql.NullFloat64
		)
		if err := rows.Scan(&tpl.ID, &owner, &tpl.Name, &typ, &einheit, &preis, &tpl.IsGlobal, &tpl.CreatedAt); err != nil {
			return nil, err
		}
		if owner.Valid {
			uid := uint64(owner.Int64)
			tpl.UserID = &uid
		}
		tpl.Catalog = c
		tpl.Typ, tpl.Einheit, tpl.Preis = typ.String, einheit.String, preis.Float64
		out = append(out, tpl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Create inserts tpl into its catalog and fills in ID and CreatedAt.
// Names are not unique.
func (r *TemplateRepo) Create(ctx context.Context, tpl *model.Template) error {
	t, err := tableFor(tpl.Catalog)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	q := fmt.Sprintf("INSERT INTO %s (user_id, name, %s, einheit, preis, is_global, created_at) VALUES (?,?,?,?,?,?,?)", t.table, t.typeCol)
	res, err := r.db.ExecContext(ctx, q, tpl.UserID, tpl.Name, tpl.Typ, tpl.Einheit, tpl.Preis, tpl.IsGlobal, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	tpl.ID = uint64(id)
	tpl.CreatedAt = now
	return nil
}

// EnsureDefaults inserts each default of catalog c as a global template
// unless a global row with the same name already exists.  The check and
// the inserts share one transaction; running it again inserts nothing.
// A unique index on seeded rows makes concurrent runs insert each default
// once; the losing insert is skipped.
func (r *TemplateRepo) EnsureDefaults(ctx context.Context, c model.Catalog, defaults []model.DefaultTemplate) (inserted int, err error) {
	t, err := tableFor(c)
	if err != nil {
		return 0, err
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	exists := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE name = ? AND is_global = 1 AND user_id IS NULL", t.table)
	insert := fmt.Sprintf("INSERT INTO %s (user_id, name, %s, einheit, preis, is_global, created_at) VALUES (NULL,?,?,?,?,1,?)", t.table, t.typeCol)
	now := time.Now().UTC()
	for _, d := range defaults {
		var n int
		if err = tx.QueryRowContext(ctx, exists, d.Name).Scan(&n); err != nil {
			return 0, err
		}
		if n > 0 {
			continue
		}
		if _, err = tx.ExecContext(ctx, insert, d.Name, d.Typ, d.Einheit, d.Preis, now); err != nil {
			if isDuplicateKey(err) {
				// another instance seeded it first
				err = nil
				continue
			}
			return 0, err
		}
		inserted++
	}
	return inserted, nil
}
