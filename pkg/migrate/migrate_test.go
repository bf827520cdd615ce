package migrate

import (
	"context"
	"database/sql"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	for _, driver := range []string{"postgres", "sqlite"} {
		fsys, err := EmbeddedFS(driver)
		require.NoError(t, err)
		require.NoError(t, ValidateFS(fsys), driver)
	}
}

func TestDialectsShareVersions(t *testing.T) {
	versions := func(driver string) []string {
		fsys, err := EmbeddedFS(driver)
		require.NoError(t, err)
		names, err := fs.Glob(fsys, "*.sql")
		require.NoError(t, err)
		out := make([]string, 0, len(names))
		for _, name := range names {
			out = append(out, name[:14])
		}
		return out
	}
	require.Equal(t, versions("postgres"), versions("sqlite"))
}

func TestDialectMapping(t *testing.T) {
	d, sub, err := Dialect("sqlite")
	require.NoError(t, err)
	require.Equal(t, goose.DialectSQLite3, d)
	require.Equal(t, "sqlite", sub)

	d, sub, err = Dialect("")
	require.NoError(t, err)
	require.Equal(t, goose.DialectPostgres, d)
	require.Equal(t, "postgres", sub)

	_, _, err = Dialect("mysql")
	require.Error(t, err)
}

func TestUpAppliesSQLiteSchema(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, Up(context.Background(), db, "sqlite"))

	for _, table := range []string{"shops", "products", "stock_adjustments", "stock_reconciliations", "orders", "order_items", "order_payments", "payment_transactions", "outbox_events"} {
		var name string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	// running again is a no-op
	require.NoError(t, Up(context.Background(), db, "sqlite"))
}

func TestStockCannotGoNegative(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, Up(context.Background(), db, "sqlite"))

	shopID := uuid.NewString()
	_, err := db.Exec(`INSERT INTO shops (id, name) VALUES (?, 'duka')`, shopID)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO products (id, shop_id, name, stock) VALUES (?, ?, 'sugar', -1)`, uuid.NewString(), shopID)
	require.Error(t, err)
}

func TestOrderNumbersAreUniquePerShop(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, Up(context.Background(), db, "sqlite"))

	shopA, shopB := uuid.NewString(), uuid.NewString()
	for _, id := range []string{shopA, shopB} {
		_, err := db.Exec(`INSERT INTO shops (id, name) VALUES (?, 'duka')`, id)
		require.NoError(t, err)
	}
	insert := func(shop string) error {
		_, err := db.Exec(`INSERT INTO orders (id, shop_id, cashier_id, order_number, subtotal, tax_rate, tax, total)
			VALUES (?, ?, ?, 1, 100, 0.16, 16, 116)`, uuid.NewString(), shop, uuid.NewString())
		return err
	}
	require.NoError(t, insert(shopA))
	require.NoError(t, insert(shopB))
	require.Error(t, insert(shopA))
}

func TestCreateMigrationPairAndValidate(t *testing.T) {
	root := t.TempDir()
	now := time.Date(2025, 3, 2, 8, 30, 0, 0, time.UTC)
	paths, err := CreateMigrationPair(root, "Add Branch Codes!", now)
	require.NoError(t, err)
	require.Len(t, paths, 2)
	for _, path := range paths {
		require.Equal(t, "20250302083000_add_branch_codes.sql", filepath.Base(path))
	}
	require.NoError(t, ValidateDir(filepath.Join(root, "postgres")))
	require.NoError(t, ValidateDir(filepath.Join(root, "sqlite")))

	_, err = CreateMigrationPair(root, "add branch codes", now)
	require.Error(t, err, "same version and name must not overwrite")
	_, err = CreateMigrationPair(root, "!!!", now)
	require.Error(t, err)

	dir := filepath.Join(root, "sqlite")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, ValidateDir(dir))
}

func openSQLite(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })
	return db
}
