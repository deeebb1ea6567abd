package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cms-backend/internal/domains/menu"
	"cms-backend/pkg/database"
	"cms-backend/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation = "23505"

	constraintLocation = "uq_menus_location"
)

const menuColumns = "id, name, slug, location, description, is_active, created_at, updated_at"

// DBTX là *pgxpool.Pool hoặc pgxmock
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type postgresRepository struct {
	db DBTX
}

func NewPostgresRepository(db DBTX) menu.Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, m *menu.Menu) (*menu.Menu, error) {
	query := `
		INSERT INTO menus (name, slug, location, description, is_active)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		RETURNING ` + menuColumns

	var location string
	if m.Location != nil {
		location = *m.Location
	}

	created, err := scanMenu(r.db.QueryRow(ctx, query, m.Name, m.Slug, location, m.Description, m.IsActive))
	if err != nil {
		return nil, mapError("Create", err)
	}
	return created, nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*menu.Menu, error) {
	return r.getOne(ctx, "GetByID", "id = $1", id)
}

func (r *postgresRepository) GetBySlug(ctx context.Context, slug string) (*menu.Menu, error) {
	return r.getOne(ctx, "GetBySlug", "slug = $1", slug)
}

func (r *postgresRepository) GetByLocation(ctx context.Context, location string) (*menu.Menu, error) {
	return r.getOne(ctx, "GetByLocation", "location = $1", location)
}

func (r *postgresRepository) List(ctx context.Context) ([]*menu.Menu, error) {
	rows, err := r.db.Query(ctx, "SELECT "+menuColumns+" FROM menus ORDER BY name, id")
	if err != nil {
		return nil, mapError("List", err)
	}
	defer rows.Close()

	menus := make([]*menu.Menu, 0)
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, mapError("List", err)
		}
		menus = append(menus, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError("List", err)
	}
	return menus, nil
}

func (r *postgresRepository) Update(ctx context.Context, id int64, patch menu.MenuPatch) (*menu.Menu, error) {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 6)
	add := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf(expr, len(args)))
	}

	if patch.Name != nil {
		add("name = $%d", *patch.Name)
	}
	if patch.Slug != nil {
		add("slug = $%d", *patch.Slug)
	}
	if patch.Location != nil {
		add("location = NULLIF($%d, '')", *patch.Location)
	}
	if patch.Description != nil {
		add("description = $%d", *patch.Description)
	}
	if patch.IsActive != nil {
		add("is_active = $%d", *patch.IsActive)
	}
	sets = append(sets, "updated_at = NOW()")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE menus SET %s WHERE id = $%d RETURNING %s",
		strings.Join(sets, ", "), len(args), menuColumns)

	updated, err := scanMenu(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError("Update", err)
	}
	return updated, nil
}

// Delete: item trước, menu sau, cùng một transaction
func (r *postgresRepository) Delete(ctx context.Context, id int64) (int64, error) {
	return database.WithTransactionResult(ctx, r.db, func(tx pgx.Tx) (int64, error) {
		items, err := tx.Exec(ctx, "DELETE FROM menu_items WHERE menu_id = $1", id)
		if err != nil {
			return 0, mapError("Delete", err)
		}

		tag, err := tx.Exec(ctx, "DELETE FROM menus WHERE id = $1", id)
		if err != nil {
			return 0, mapError("Delete", err)
		}
		if tag.RowsAffected() == 0 {
			return 0, menu.ErrMenuNotFound
		}
		return items.RowsAffected(), nil
	})
}

func (r *postgresRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM menus WHERE slug = $1 AND ($2::bigint IS NULL OR id <> $2))",
		slug, excludeID,
	).Scan(&exists)
	if err != nil {
		return false, mapError("ExistsBySlug", err)
	}
	return exists, nil
}

// ========== HELPERS ==========

func (r *postgresRepository) getOne(ctx context.Context, op, where string, arg any) (*menu.Menu, error) {
	m, err := scanMenu(r.db.QueryRow(ctx, "SELECT "+menuColumns+" FROM menus WHERE "+where, arg))
	if err != nil {
		return nil, mapError(op, err)
	}
	return m, nil
}

func scanMenu(row pgx.Row) (*menu.Menu, error) {
	var m menu.Menu
	err := row.Scan(
		&m.ID,
		&m.Name,
		&m.Slug,
		&m.Location,
		&m.Description,
		&m.IsActive,
		&m.CreatedAt,
		&m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func mapError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return menu.ErrMenuNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		if pgErr.ConstraintName == constraintLocation {
			return menu.ErrLocationTaken
		}
		return menu.ErrDuplicateSlug
	}

	logger.Error(op+": menu database error", err)
	return fmt.Errorf("%s menu: %w", strings.ToLower(op), err)
}
