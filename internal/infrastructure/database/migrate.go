package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"cms-backend/pkg/database"
	"cms-backend/pkg/logger"

	"github.com/jackc/pgx/v5"
)

//go:embed migrations/*.sql
var Migrations embed.FS

const (
	migrationsDir = "migrations"

	// khóa pg_advisory_xact_lock, chặn hai tiến trình migrate chạy song song
	migrationLockID = int64(0x636d73)
)

type Migration struct {
	Version string // 001
	Name    string // 001_hierarchy.sql
	Path    string
}

// Discover trả về các file *.sql trong dir theo thứ tự version.
// Version là phần trước dấu "_" đầu tiên.
func Discover(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations dir: %w", err)
	}

	migrations := make([]Migration, 0, len(entries))
	seen := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}

		version := strings.TrimSuffix(e.Name(), ".sql")
		if idx := strings.Index(version, "_"); idx > 0 {
			version = version[:idx]
		}
		if prev, ok := seen[version]; ok {
			return nil, fmt.Errorf("duplicate migration version %q in %s and %s", version, prev, e.Name())
		}
		seen[version] = e.Name()

		migrations = append(migrations, Migration{
			Version: version,
			Name:    e.Name(),
			Path:    path.Join(dir, e.Name()),
		})
	}

	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })
	return migrations, nil
}

// Migrate áp dụng các migration chưa chạy trong một transaction, ghi version vào schema_migrations.
// Trả về danh sách version vừa áp dụng.
func Migrate(ctx context.Context, db database.Beginner, fsys fs.FS) ([]string, error) {
	if db == nil || fsys == nil {
		return nil, errors.New("migrate: nil connection or filesystem")
	}

	migrations, err := Discover(fsys, migrationsDir)
	if err != nil {
		return nil, err
	}

	return database.WithTransactionResult(ctx, db, func(tx pgx.Tx) ([]string, error) {
		if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockID); err != nil {
			return nil, fmt.Errorf("acquire migration lock: %w", err)
		}

		if _, err := tx.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
			version    TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
			return nil, fmt.Errorf("ensure schema_migrations: %w", err)
		}

		applied, err := appliedVersions(ctx, tx)
		if err != nil {
			return nil, err
		}

		done := make([]string, 0)
		for _, m := range migrations {
			if _, ok := applied[m.Version]; ok {
				continue
			}

			raw, err := fs.ReadFile(fsys, m.Path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", m.Name, err)
			}
			if _, err := tx.Exec(ctx, string(raw)); err != nil {
				return nil, fmt.Errorf("apply %s: %w", m.Name, err)
			}
			if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.Version); err != nil {
				return nil, fmt.Errorf("record %s: %w", m.Version, err)
			}

			logger.Info("migration applied", map[string]interface{}{"version": m.Version, "file": m.Name})
			done = append(done, m.Version)
		}
		return done, nil
	})
}

func appliedVersions(ctx context.Context, tx pgx.Tx) (map[string]struct{}, error) {
	rows, err := tx.Query(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]struct{})
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("read applied migrations: %w", err)
		}
		applied[v] = struct{}{}
	}
	return applied, rows.Err()
}
