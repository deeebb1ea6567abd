package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"cms-backend/internal/hierarchy"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testKind = hierarchy.Kind{
	Name:       "category",
	Table:      "categories",
	TypeColumn: "type",
	Types:      []string{"post", "product"},
	Attributes: []string{"status"},
	Policy:     hierarchy.Reparent,
}

const testColumns = "id, parent_id, name, slug, sort_order, type, status, created_at, updated_at"

var rowColumns = []string{"id", "parent_id", "name", "slug", "sort_order", "type", "status", "created_at", "updated_at"}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, hierarchy.Repository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	repo, err := NewPostgresRepository(mock, testKind)
	require.NoError(t, err)
	return mock, repo
}

func parent(v int64) *int64 { return &v }

func TestNewPostgresRepository_RejectsUnsafeKind(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewPostgresRepository(mock, hierarchy.Kind{Name: "x", Table: "users; --"})
	assert.Error(t, err)
}

func TestFindByID(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	rows := mock.NewRows(rowColumns).
		AddRow(int64(2), parent(1), "AI", "ai", 0, "post", any("active"), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + testColumns + " FROM categories WHERE id = $1")).
		WithArgs(int64(2)).
		WillReturnRows(rows)

	node, err := repo.FindByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), node.ID)
	require.NotNil(t, node.ParentID)
	assert.Equal(t, int64(1), *node.ParentID)
	assert.Equal(t, "ai", node.Slug)
	assert.Equal(t, "post", node.Type)
	assert.Equal(t, "active", node.Attributes["status"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM categories WHERE id = $1")).
		WithArgs(int64(9)).
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, hierarchy.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindAll_WithTypeScope(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	rows := mock.NewRows(rowColumns).
		AddRow(int64(1), (*int64)(nil), "Blog", "blog", 0, "post", any("active"), now, now).
		AddRow(int64(3), parent(1), "Go", "go", 1, "post", any("draft"), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT " + testColumns + " FROM categories WHERE type = $1 ORDER BY sort_order, name, id")).
		WithArgs("post").
		WillReturnRows(rows)

	nodes, err := repo.FindAll(context.Background(), hierarchy.Scope{Type: "post"})
	require.NoError(t, err)
	require.Len(t, nodes, 2)
	assert.Nil(t, nodes[0].ParentID)
	assert.Equal(t, "go", nodes[1].Slug)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByParent_Root(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM categories WHERE parent_id IS NULL AND type = $1 ORDER BY")).
		WithArgs("product").
		WillReturnRows(mock.NewRows(rowColumns))

	nodes, err := repo.FindByParent(context.Background(), nil, hierarchy.Scope{Type: "product"})
	require.NoError(t, err)
	assert.Empty(t, nodes)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByParentIDs(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("FROM categories WHERE parent_id = ANY($1)")).
		WithArgs([]int64{1, 2}).
		WillReturnRows(mock.NewRows(rowColumns).
			AddRow(int64(5), parent(2), "x", "x", 0, "post", any("active"), now, now))

	nodes, err := repo.FindByParentIDs(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, int64(5), nodes[0].ID)

	empty, err := repo.FindByParentIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExistsBySlug(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS(SELECT 1 FROM categories WHERE slug = $1 AND ($2::bigint IS NULL OR id <> $2))")).
		WithArgs("tech", pgxmock.AnyArg()).
		WillReturnRows(mock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.ExistsBySlug(context.Background(), "tech", nil)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert(t *testing.T) {
	mock, repo := newMockRepo(t)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO categories (name, slug, parent_id, sort_order, type, status) VALUES ($1, $2, $3, $4, $5, $6) RETURNING " + testColumns)).
		WithArgs("Tech", "tech", pgxmock.AnyArg(), 0, "post", "active").
		WillReturnRows(mock.NewRows(rowColumns).
			AddRow(int64(1), (*int64)(nil), "Tech", "tech", 0, "post", any("active"), now, now))

	created, err := repo.Insert(context.Background(), &hierarchy.Node{
		Name:       "Tech",
		Slug:       "tech",
		Type:       "post",
		Attributes: map[string]any{"status": "active", "ignored": true},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_MapsConstraintErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{name: "unique slug", code: "23505", want: hierarchy.ErrDuplicateSlug},
		{name: "parent fk", code: "23503", want: hierarchy.ErrParentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, repo := newMockRepo(t)
			mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO categories")).
				WithArgs("Tech", "tech", pgxmock.AnyArg(), 0, "post").
				WillReturnError(&pgconn.PgError{Code: tt.code})

			_, err := repo.Insert(context.Background(), &hierarchy.Node{Name: "Tech", Slug: "tech", Type: "post"})
			assert.ErrorIs(t, err, tt.want)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestUpdateFields(t *testing.T) {
	mock, repo := newMockRepo(t)
	name, slug, order := "Go", "go", 3

	mock.ExpectExec(regexp.QuoteMeta("UPDATE categories SET name = $1, slug = $2, sort_order = $3, parent_id = $4, updated_at = NOW() WHERE id = $5")).
		WithArgs(name, slug, order, pgxmock.AnyArg(), int64(7)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := repo.UpdateFields(context.Background(), 7, hierarchy.Fields{
		Name:      &name,
		Slug:      &slug,
		SortOrder: &order,
		Parent:    hierarchy.ParentOf(nil),
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateFields_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)
	order := 1

	mock.ExpectExec(regexp.QuoteMeta("UPDATE categories SET sort_order = $1, updated_at = NOW() WHERE id = $2")).
		WithArgs(order, int64(404)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdateFields(context.Background(), 404, hierarchy.Fields{SortOrder: &order})
	assert.ErrorIs(t, err, hierarchy.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateMany_RequiresPredicate(t *testing.T) {
	_, repo := newMockRepo(t)

	_, err := repo.UpdateMany(context.Background(), hierarchy.Predicate{}, hierarchy.Fields{Parent: hierarchy.ParentOf(nil)})
	assert.Error(t, err)
}

func TestDeleteWithReparentInTransaction(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE categories SET parent_id = $1, updated_at = NOW() WHERE parent_id = $2")).
		WithArgs(pgxmock.AnyArg(), int64(1)).
		WillReturnResult(pgxmock.NewResult("UPDATE", 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	mock.ExpectCommit()

	err := repo.RunInTransaction(context.Background(), func(tx hierarchy.Repository) error {
		moved, err := tx.UpdateMany(context.Background(), hierarchy.ChildrenOf(1), hierarchy.Fields{Parent: hierarchy.ParentOf(nil)})
		if err != nil {
			return err
		}
		assert.Equal(t, int64(2), moved)
		return tx.DeleteByID(context.Background(), 1)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunInTransaction_RollsBack(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = ANY($1)")).
		WithArgs([]int64{10, 11, 12}).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.RunInTransaction(context.Background(), func(tx hierarchy.Repository) error {
		_, err := tx.DeleteByIDs(context.Background(), []int64{10, 11, 12})
		return err
	})
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByID_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM categories WHERE id = $1")).
		WithArgs(int64(3)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	assert.ErrorIs(t, repo.DeleteByID(context.Background(), 3), hierarchy.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
