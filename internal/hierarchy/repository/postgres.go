package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"cms-backend/internal/hierarchy"
	"cms-backend/internal/shared/utils"
	"cms-backend/pkg/database"
	"cms-backend/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// DBTX là *pgxpool.Pool, pgx.Tx hoặc pgxmock
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

type postgresRepository struct {
	db   DBTX
	kind hierarchy.Kind
	inTx bool

	columns string
	orderBy string
}

// NewPostgresRepository build SQL theo Kind. Kind phải pass Validate()
// vì tên bảng/cột được nối thẳng vào query.
func NewPostgresRepository(db DBTX, kind hierarchy.Kind) (hierarchy.Repository, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	cols := []string{"id", "parent_id", kind.NameCol(), "slug", "sort_order"}
	if kind.Typed() {
		cols = append(cols, kind.TypeColumn)
	}
	if kind.Scoped() {
		cols = append(cols, kind.ScopeColumn)
	}
	cols = append(cols, kind.Attributes...)
	cols = append(cols, "created_at", "updated_at")

	return &postgresRepository{
		db:      db,
		kind:    kind,
		columns: strings.Join(cols, ", "),
		orderBy: "sort_order, " + kind.NameCol() + ", id",
	}, nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id int64) (*hierarchy.Node, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, r.columns, r.kind.Table)

	node, err := r.scanNode(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return nil, r.mapError("FindByID", err)
	}
	return node, nil
}

func (r *postgresRepository) FindBySlug(ctx context.Context, slug string) (*hierarchy.Node, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE slug = $1`, r.columns, r.kind.Table)

	node, err := r.scanNode(r.db.QueryRow(ctx, query, slug))
	if err != nil {
		return nil, r.mapError("FindBySlug", err)
	}
	return node, nil
}

func (r *postgresRepository) FindByParent(ctx context.Context, parentID *int64, scope hierarchy.Scope) ([]*hierarchy.Node, error) {
	conds := make([]string, 0, 3)
	args := make([]any, 0, 3)

	if parentID == nil {
		conds = append(conds, "parent_id IS NULL")
	} else {
		args = append(args, *parentID)
		conds = append(conds, fmt.Sprintf("parent_id = $%d", len(args)))
	}
	conds, args = r.scopeConditions(scope, conds, args)

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE %s ORDER BY %s`,
		r.columns, r.kind.Table, utils.JoinWithAnd(conds), r.orderBy)
	return r.queryNodes(ctx, "FindByParent", query, args...)
}

func (r *postgresRepository) FindByParentIDs(ctx context.Context, ids []int64) ([]*hierarchy.Node, error) {
	if len(ids) == 0 {
		return []*hierarchy.Node{}, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE parent_id = ANY($1) ORDER BY %s`,
		r.columns, r.kind.Table, r.orderBy)
	return r.queryNodes(ctx, "FindByParentIDs", query, ids)
}

func (r *postgresRepository) FindAll(ctx context.Context, scope hierarchy.Scope) ([]*hierarchy.Node, error) {
	conds, args := r.scopeConditions(scope, nil, nil)

	query := fmt.Sprintf(`SELECT %s FROM %s`, r.columns, r.kind.Table)
	if len(conds) > 0 {
		query += " WHERE " + utils.JoinWithAnd(conds)
	}
	query += " ORDER BY " + r.orderBy
	return r.queryNodes(ctx, "FindAll", query, args...)
}

func (r *postgresRepository) ExistsBySlug(ctx context.Context, slug string, excludeID *int64) (bool, error) {
	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE slug = $1 AND ($2::bigint IS NULL OR id <> $2))`, r.kind.Table)

	var exists bool
	if err := r.db.QueryRow(ctx, query, slug, excludeID).Scan(&exists); err != nil {
		logger.Error("ExistsBySlug: database error", err)
		return false, fmt.Errorf("check %s slug: %w", r.kind.Name, err)
	}
	return exists, nil
}

func (r *postgresRepository) Insert(ctx context.Context, node *hierarchy.Node) (*hierarchy.Node, error) {
	cols := []string{r.kind.NameCol(), "slug", "parent_id", "sort_order"}
	args := []any{node.Name, node.Slug, node.ParentID, node.SortOrder}

	if r.kind.Typed() {
		cols = append(cols, r.kind.TypeColumn)
		args = append(args, node.Type)
	}
	if r.kind.Scoped() {
		cols = append(cols, r.kind.ScopeColumn)
		args = append(args, node.ScopeID)
	}
	for _, key := range sortedKeys(node.Attributes) {
		if !r.kind.HasAttribute(key) {
			continue
		}
		cols = append(cols, key)
		args = append(args, node.Attributes[key])
	}

	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s) RETURNING %s`,
		r.kind.Table, strings.Join(cols, ", "), utils.Placeholders(len(args)), r.columns)

	created, err := r.scanNode(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, r.mapError("Insert", err)
	}
	return created, nil
}

func (r *postgresRepository) UpdateFields(ctx context.Context, id int64, fields hierarchy.Fields) error {
	sets, args := r.setClause(fields)
	args = append(args, id)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $%d`, r.kind.Table, strings.Join(sets, ", "), len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return r.mapError("UpdateFields", err)
	}
	if tag.RowsAffected() == 0 {
		return hierarchy.ErrNotFound
	}
	return nil
}

// UpdateMany hiện chỉ nhận predicate theo parent_id (re-parent khi xóa)
func (r *postgresRepository) UpdateMany(ctx context.Context, where hierarchy.Predicate, fields hierarchy.Fields) (int64, error) {
	if where.ParentID == nil {
		return 0, fmt.Errorf("update many %s: predicate is required", r.kind.Name)
	}

	sets, args := r.setClause(fields)
	args = append(args, *where.ParentID)

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE parent_id = $%d`, r.kind.Table, strings.Join(sets, ", "), len(args))

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, r.mapError("UpdateMany", err)
	}
	return tag.RowsAffected(), nil
}

func (r *postgresRepository) DeleteByID(ctx context.Context, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.kind.Table)

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return r.mapError("DeleteByID", err)
	}
	if tag.RowsAffected() == 0 {
		return hierarchy.ErrNotFound
	}
	return nil
}

func (r *postgresRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ANY($1)`, r.kind.Table)

	tag, err := r.db.Exec(ctx, query, ids)
	if err != nil {
		return 0, r.mapError("DeleteByIDs", err)
	}
	return tag.RowsAffected(), nil
}

// RunInTransaction: lồng nhau thì dùng lại transaction hiện tại
func (r *postgresRepository) RunInTransaction(ctx context.Context, fn func(repo hierarchy.Repository) error) error {
	if r.inTx {
		return fn(r)
	}

	return database.WithTransaction(ctx, r.db, func(tx pgx.Tx) error {
		txRepo := *r
		txRepo.db = tx
		txRepo.inTx = true
		return fn(&txRepo)
	})
}

// ========== HELPERS ==========

func (r *postgresRepository) scopeConditions(scope hierarchy.Scope, conds []string, args []any) ([]string, []any) {
	if scope.Type != "" && r.kind.Typed() {
		args = append(args, scope.Type)
		conds = append(conds, fmt.Sprintf("%s = $%d", r.kind.TypeColumn, len(args)))
	}
	if scope.ScopeID != nil && r.kind.Scoped() {
		args = append(args, *scope.ScopeID)
		conds = append(conds, fmt.Sprintf("%s = $%d", r.kind.ScopeColumn, len(args)))
	}
	return conds, args
}

// setClause luôn kèm updated_at = NOW() nên không bao giờ rỗng
func (r *postgresRepository) setClause(fields hierarchy.Fields) ([]string, []any) {
	sets := make([]string, 0, 6)
	args := make([]any, 0, 6)

	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if fields.Name != nil {
		add(r.kind.NameCol(), *fields.Name)
	}
	if fields.Slug != nil {
		add("slug", *fields.Slug)
	}
	if fields.SortOrder != nil {
		add("sort_order", *fields.SortOrder)
	}
	if fields.Parent != nil {
		add("parent_id", fields.Parent.ID)
	}
	for _, key := range sortedKeys(fields.Attributes) {
		if r.kind.HasAttribute(key) {
			add(key, fields.Attributes[key])
		}
	}

	sets = append(sets, "updated_at = NOW()")
	return sets, args
}

func (r *postgresRepository) queryNodes(ctx context.Context, op, query string, args ...any) ([]*hierarchy.Node, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapError(op, err)
	}
	defer rows.Close()

	nodes := make([]*hierarchy.Node, 0)
	for rows.Next() {
		node, err := r.scanNode(rows)
		if err != nil {
			return nil, r.mapError(op, err)
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapError(op, err)
	}
	return nodes, nil
}

func (r *postgresRepository) scanNode(row pgx.Row) (*hierarchy.Node, error) {
	n := &hierarchy.Node{}
	dest := []any{&n.ID, &n.ParentID, &n.Name, &n.Slug, &n.SortOrder}
	if r.kind.Typed() {
		dest = append(dest, &n.Type)
	}
	if r.kind.Scoped() {
		dest = append(dest, &n.ScopeID)
	}

	attrs := make([]any, len(r.kind.Attributes))
	for i := range attrs {
		dest = append(dest, &attrs[i])
	}
	dest = append(dest, &n.CreatedAt, &n.UpdatedAt)

	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	for i, key := range r.kind.Attributes {
		if attrs[i] == nil {
			continue
		}
		if n.Attributes == nil {
			n.Attributes = make(map[string]any, len(r.kind.Attributes))
		}
		n.Attributes[key] = attrs[i]
	}
	return n, nil
}

func (r *postgresRepository) mapError(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return hierarchy.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			logger.Info(op+": duplicate slug", map[string]interface{}{
				"table":      r.kind.Table,
				"constraint": pgErr.ConstraintName,
			})
			return hierarchy.ErrDuplicateSlug
		case foreignKeyViolation:
			logger.Info(op+": parent not found", map[string]interface{}{
				"table":      r.kind.Table,
				"constraint": pgErr.ConstraintName,
			})
			return hierarchy.ErrParentNotFound
		}
	}

	logger.Error(op+": database error", err)
	return fmt.Errorf("%s %s: %w", strings.ToLower(op), r.kind.Name, err)
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
